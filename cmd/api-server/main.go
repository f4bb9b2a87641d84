package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"uk.co.dudmesh.checkup/internal/boot"
	"uk.co.dudmesh.checkup/internal/handlers"
	"uk.co.dudmesh.checkup/internal/keylock"
	"uk.co.dudmesh.checkup/internal/server"
	"uk.co.dudmesh.checkup/internal/service/credential"
	"uk.co.dudmesh.checkup/internal/service/token"
	"uk.co.dudmesh.checkup/internal/store"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}
	log.SetLevel(config.Level())

	db, err := store.New(config)
	if err != nil {
		log.Fatalf("opening store: %+v", err)
	}
	defer db.Close()

	codec, err := credential.New(config)
	if err != nil {
		log.Fatalf("creating codec: %+v", err)
	}

	tokens := token.New(db)
	locks := keylock.New()
	router := handlers.NewRouter(
		handlers.NewUsers(db, tokens, codec, locks),
		handlers.NewTokens(db, tokens, codec),
		handlers.NewChecks(db, tokens, locks, config.MaxChecks),
	)

	api := server.New(config, router)
	metrics := server.NewMetrics()

	go func() {
		if err := metrics.Start(config.MetricsAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		log.Infof("%s server listening on %s", config.Env, config.ListenAddress())
		if err := api.Start(config.ListenAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("shutting down the server: %+v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		log.Errorf("shutting down api server: %+v", err)
	}
	if err := metrics.Shutdown(ctx); err != nil {
		log.Errorf("shutting down metrics server: %+v", err)
	}
}
