package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.checkup/internal/boot"
	"uk.co.dudmesh.checkup/internal/handlers"
)

const metricsSubsystem = "checkup"

type Router interface {
	Route(req *handlers.Request) handlers.Response
}

var (
	instrumentOnce sync.Once
	instrument     echo.MiddlewareFunc
)

// metricsMiddleware registers its collectors with the default prometheus
// registry, which only accepts them once per process.
func metricsMiddleware() echo.MiddlewareFunc {
	instrumentOnce.Do(func() {
		instrument = echoprometheus.NewMiddleware(metricsSubsystem)
	})
	return instrument
}

func New(config *boot.Config, router Router) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.Use(middleware.BodyLimit(config.Server.BodyLimit))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(metricsMiddleware())
	server.Use(middleware.Recover())

	server.Logger.SetLevel(config.Level())

	server.Any("/*", Adapt(router))
	return server
}

// NewMetrics serves the prometheus scrape endpoint on its own listener.
func NewMetrics() *echo.Echo {
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.GET("/metrics", echoprometheus.NewHandler())
	return metrics
}

// Adapt turns an HTTP request into a router request and writes the result
// back as JSON. A body that is not a JSON object is treated as empty.
func Adapt(router Router) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		payload := map[string]interface{}{}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
				log.Debugf("ignoring malformed body on %s %s: %v", req.Method, req.URL.Path, err)
				payload = map[string]interface{}{}
			}
		}

		resp := router.Route(&handlers.Request{
			Method:  strings.ToLower(req.Method),
			Path:    strings.Trim(req.URL.Path, "/"),
			Query:   c.QueryParams(),
			Headers: req.Header,
			Payload: payload,
		})

		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		if resp.Payload == nil {
			return c.JSON(status, struct{}{})
		}
		return c.JSON(status, resp.Payload)
	}
}
