package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(env string) *Config {
	return &Config{
		Env:          env,
		DBSSLMode:    "require",
		DBSchemaMode: SchemaModeHybrid,
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBPassword:   "secure-password",
		Port:         "8080",
		RedisURL:     "redis://localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig(tt.env)
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig("production")
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig("production")
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())

	c = validConfig("production")
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c = validConfig("production")
	c.DBSchemaMode = SchemaModeAuto
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateSchemaMode(t *testing.T) {
	c := validConfig("development")
	c.DBSchemaMode = "yolo"
	assert.Error(t, c.Validate())

	c.DBSchemaMode = SchemaModeSQL
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_SCHEMA_MODE", " SQL ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, SchemaModeSQL, c.DBSchemaMode)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, 60, c.CacheTTLSeconds)
	assert.Equal(t, "realtime_push=on", c.FeatureFlags)
}
