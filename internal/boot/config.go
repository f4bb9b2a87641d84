package boot

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"

	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"

	HashSchemeHMAC   = "hmac"
	HashSchemeBcrypt = "bcrypt"
)

type environment struct {
	port        string
	metricsPort string
}

var environments = map[string]environment{
	EnvStaging:    {port: "3000", metricsPort: "3001"},
	EnvProduction: {port: "5000", metricsPort: "5001"},
}

type Config struct {
	Env           string `env:"ENV,default=staging"`
	DataDirectory string `env:"DATA_DIR,default=.data"`
	StoreDriver   string `env:"STORE_DRIVER,default=file"`
	HashingSecret string `env:"HASHING_SECRET,default=thisIsASecret"`
	HashScheme    string `env:"HASH_SCHEME,default=hmac"`
	MaxChecks     int    `env:"MAX_CHECKS,default=5"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
	Server        struct {
		Port        string `env:"PORT"`
		MetricsPort string `env:"METRICS_PORT"`
		BodyLimit   string `env:"BODY_LIMIT,default=1M"`
	}
}

func Load() (*Config, error) {
	return LoadWith(envconfig.OsLookuper())
}

func LoadWith(lookuper envconfig.Lookuper) (*Config, error) {
	config := &Config{}
	if err := envconfig.ProcessWith(context.Background(), config, lookuper); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}

	config.Env = strings.ToLower(config.Env)
	env, ok := environments[config.Env]
	if !ok {
		config.Env = EnvStaging
		env = environments[EnvStaging]
	}
	if config.Server.Port == "" {
		config.Server.Port = env.port
	}
	if config.Server.MetricsPort == "" {
		config.Server.MetricsPort = env.metricsPort
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverFile, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.HashScheme {
	case HashSchemeHMAC, HashSchemeBcrypt:
	default:
		return fmt.Errorf("unknown hash scheme %q", c.HashScheme)
	}
	if c.MaxChecks < 1 {
		return fmt.Errorf("max checks must be at least 1, got %d", c.MaxChecks)
	}
	if c.HashingSecret == "" {
		return fmt.Errorf("hashing secret must not be empty")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) ListenAddress() string {
	return ":" + c.Server.Port
}

func (c *Config) MetricsAddress() string {
	return ":" + c.Server.MetricsPort
}

// Level maps LOG_LEVEL onto a gommon log level, defaulting to INFO.
func (c *Config) Level() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
