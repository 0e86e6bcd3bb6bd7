package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"1d12h", 36 * time.Hour},
		{"0.5d", 12 * time.Hour},
		{"3600", time.Hour},
		{" 2h ", 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "xd", "1dzz", "forever"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("REFRESH_SECRET", "refresh-secret")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 45*time.Second, cfg.Database.StatementTimeout)
	assert.False(t, cfg.Auth.RotateRefreshTokens)
	assert.True(t, cfg.Auth.OptionalFallbackOnStoreError)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	yml := []byte(`
jwt:
  access_secret: from-file-access
  refresh_secret: from-file-refresh
  access_ttl: 5m
database:
  driver: memory
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600))
	t.Setenv("REFRESH_EXPIRES_IN", "2d")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-file-access", cfg.JWT.AccessSecret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.JWT = JWTConfig{AccessSecret: "a", RefreshSecret: "b", AccessTTL: time.Minute, RefreshTTL: time.Hour}
		c.Auth.BcryptCost = 10
		c.Database.Driver = "postgres"
		return c
	}

	assert.NoError(t, valid().Validate())

	c := valid()
	c.JWT.AccessSecret = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.JWT.RefreshSecret = c.JWT.AccessSecret
	assert.ErrorContains(t, c.Validate(), "must differ")

	c = valid()
	c.JWT.RefreshTTL = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Auth.BcryptCost = 99
	assert.Error(t, c.Validate())

	c = valid()
	c.Database.Driver = "mongo"
	assert.Error(t, c.Validate())
}
