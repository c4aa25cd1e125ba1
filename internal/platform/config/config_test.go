package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, CacheLocal, cfg.CacheBackend)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.EmailWorkers)
	assert.Equal(t, "0 2 1 * *", cfg.PayrollCron)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hrms.yaml")
	content := "app_addr: \":9000\"\ndatabase_url: postgres://file\ncache_backend: REDIS\nredis_addr: localhost:6379\ntoken_ttl: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}

func TestTrustedProxiesFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7"}, cfg.TrustedProxies)

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "192.0.2.7/32", prefixes[1].String())
}

func TestValidate(t *testing.T) {
	base := Config{
		DatabaseURL:     "postgres://x",
		MaxBodyBytes:    2048,
		MaxUploadBytes:  4096,
		LoginRatePerMin: 10,
		EmailWorkers:    2,
		CacheBackend:    CacheLocal,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "weak production secret", mutate: func(c *Config) { c.Environment = "production"; c.JWTSecret = "short" }, wantErr: true},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.CacheBackend = CacheRedis }, wantErr: true},
		{name: "unknown cache", mutate: func(c *Config) { c.CacheBackend = "memcached" }, wantErr: true},
		{name: "upload smaller than body", mutate: func(c *Config) { c.MaxUploadBytes = 1024 }, wantErr: true},
		{name: "api limit disabled", mutate: func(c *Config) { c.APIRatePerMin = 0 }},
		{name: "negative api limit", mutate: func(c *Config) { c.APIRatePerMin = -1 }, wantErr: true},
		{name: "trusted proxies", mutate: func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.7"} }},
		{name: "bad trusted proxy", mutate: func(c *Config) { c.TrustedProxies = []string{"gateway"} }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
