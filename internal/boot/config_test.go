package boot

import (
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := LoadWith(envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(EnvStaging, config.Env)
	assert.Equal(".data", config.DataDirectory)
	assert.Equal(StoreDriverFile, config.StoreDriver)
	assert.Equal(HashSchemeHMAC, config.HashScheme)
	assert.Equal(5, config.MaxChecks)
	assert.Equal(":3000", config.ListenAddress())
	assert.Equal(":3001", config.MetricsAddress())
	assert.Equal(log.INFO, config.Level())
	assert.False(config.IsProduction())
}

func TestLoadEnvironments(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		env     string
		address string
	}{
		{"production", map[string]string{"ENV": "PRODUCTION"}, EnvProduction, ":5000"},
		{"unknown falls back to staging", map[string]string{"ENV": "qa"}, EnvStaging, ":3000"},
		{"explicit port wins", map[string]string{"ENV": "production", "PORT": "8080"}, EnvProduction, ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadWith(envconfig.MapLookuper(tt.vars))
			require.NoError(t, err)
			assert.Equal(t, tt.env, config.Env)
			assert.Equal(t, tt.address, config.ListenAddress())
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":     {"STORE_DRIVER": "mongo"},
		"scheme":     {"HASH_SCHEME": "md5"},
		"max checks": {"MAX_CHECKS": "0"},
		"not a num":  {"MAX_CHECKS": "many"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(envconfig.MapLookuper(vars))
			assert.Error(t, err)
		})
	}
}
