package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.URL)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_TTL", "10m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_USER", "pixel")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "pixels")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres://pixel:pw@db:6543/pixels", cfg.DatabaseURL())
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REQUEST_TIMEOUT", "soon")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
	})
}

func TestCloudinaryEnabled(t *testing.T) {
	cfg := &Config{CloudinaryCloudName: "c", CloudinaryAPIKey: "k"}
	assert.False(t, cfg.CloudinaryEnabled())
	cfg.CloudinaryAPISecret = "s"
	assert.True(t, cfg.CloudinaryEnabled())
}
