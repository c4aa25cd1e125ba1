package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	TokenTTL          time.Duration
	FrontendDir       string
	Environment       string
	MigrationsDir     string
	SeedAdminUsername string
	SeedAdminEmail    string
	SeedAdminPassword string
	EmailFrom         string
	EmailEnabled      bool
	EmailWorkers      int
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPUseTLS        bool
	RunMigrations     bool
	RunSeed           bool
	MaxBodyBytes      int64
	MaxUploadBytes    int64
	LoginRatePerMin   int
	APIRatePerMin     int
	TrustedProxies    []string
	MetricsEnabled    bool
	CacheBackend      string
	CacheTTL          time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	PayrollCron       string
	JobLockTTL        time.Duration
	LogLevel          string
	LogFile           string
}

const (
	CacheNone  = "none"
	CacheLocal = "local"
	CacheRedis = "redis"
)

// Load reads config.yaml (from ., ./config or CONFIG_FILE) and lets
// environment variables override every key.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return Config{
		Addr:              v.GetString("app_addr"),
		DatabaseURL:       v.GetString("database_url"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		FrontendDir:       v.GetString("frontend_dir"),
		Environment:       v.GetString("app_env"),
		MigrationsDir:     v.GetString("migrations_dir"),
		SeedAdminUsername: v.GetString("seed_admin_username"),
		SeedAdminEmail:    v.GetString("seed_admin_email"),
		SeedAdminPassword: v.GetString("seed_admin_password"),
		EmailFrom:         v.GetString("email_from"),
		EmailEnabled:      v.GetBool("email_enabled"),
		EmailWorkers:      v.GetInt("email_workers"),
		SMTPHost:          v.GetString("smtp_host"),
		SMTPPort:          v.GetInt("smtp_port"),
		SMTPUser:          v.GetString("smtp_user"),
		SMTPPassword:      v.GetString("smtp_password"),
		SMTPUseTLS:        v.GetBool("smtp_use_tls"),
		RunMigrations:     v.GetBool("run_migrations"),
		RunSeed:           v.GetBool("run_seed"),
		MaxBodyBytes:      v.GetInt64("max_body_bytes"),
		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		LoginRatePerMin:   v.GetInt("login_rate_per_minute"),
		APIRatePerMin:     v.GetInt("api_rate_per_minute"),
		TrustedProxies:    splitList(v.GetStringSlice("trusted_proxies")),
		MetricsEnabled:    v.GetBool("metrics_enabled"),
		CacheBackend:      strings.ToLower(v.GetString("cache_backend")),
		CacheTTL:          v.GetDuration("cache_ttl"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisPassword:     v.GetString("redis_password"),
		RedisDB:           v.GetInt("redis_db"),
		PayrollCron:       v.GetString("payroll_generate_cron"),
		JobLockTTL:        v.GetDuration("job_lock_ttl"),
		LogLevel:          v.GetString("log_level"),
		LogFile:           v.GetString("log_file"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_addr", ":8080")
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 12*time.Hour)
	v.SetDefault("frontend_dir", "frontend/dist")
	v.SetDefault("app_env", "development")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("seed_admin_username", "admin")
	v.SetDefault("seed_admin_email", "")
	v.SetDefault("seed_admin_password", "")
	v.SetDefault("email_from", "no-reply@example.com")
	v.SetDefault("email_enabled", false)
	v.SetDefault("email_workers", 4)
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_use_tls", true)
	v.SetDefault("run_migrations", true)
	v.SetDefault("run_seed", true)
	v.SetDefault("max_body_bytes", 1048576)
	v.SetDefault("max_upload_bytes", 10485760)
	v.SetDefault("login_rate_per_minute", 20)
	v.SetDefault("api_rate_per_minute", 600)
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("cache_backend", CacheLocal)
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("payroll_generate_cron", "0 2 1 * *")
	v.SetDefault("job_lock_ttl", 10*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if len(strings.TrimSpace(c.JWTSecret)) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxUploadBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_UPLOAD_BYTES must not be smaller than MAX_BODY_BYTES")
	}
	if c.LoginRatePerMin <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive")
	}
	if c.APIRatePerMin < 0 {
		return fmt.Errorf("API_RATE_PER_MINUTE must not be negative")
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.EmailWorkers <= 0 {
		return fmt.Errorf("EMAIL_WORKERS must be positive")
	}
	switch c.CacheBackend {
	case CacheNone, CacheLocal:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR must be set when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of none, local, redis")
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address counts as a
// single-host prefix.
func (c Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, value := range c.TrustedProxies {
		if prefix, err := netip.ParsePrefix(value); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR", value)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// splitList accepts both a YAML list and a comma separated env value.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
