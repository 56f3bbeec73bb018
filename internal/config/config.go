package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Tenancy    TenancyConfig
	Cache      CacheConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
	Secure     SecureConfig
	CORS       CORSConfig
	Log        LogConfig
	VendorSeed string // VENDOR_SEED_FILE: JSON vendors for the in-memory repository (no database)
}

type ServerConfig struct {
	Port               string
	TrustForwardedHost bool
}

type DatabaseConfig struct {
	URL          string
	QueryTimeout time.Duration
}

type RedisConfig struct {
	URL                 string
	InvalidationChannel string
}

type TenancyConfig struct {
	RootDomain    string
	LookupTimeout time.Duration
}

type CacheConfig struct {
	TTL             time.Duration
	Capacity        uint64
	WarmOnStart     bool
	RefreshInterval time.Duration // 0 disables periodic re-warm
}

type AdminConfig struct {
	Secret string
}

type RateLimitConfig struct {
	RatePerIP     string // "100-M"; empty disables
	RatePerVendor string // applied on tenant-scoped routes; empty disables
}

type SecureConfig struct {
	IsDevelopment bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string // "console" or "json"
}

// Load reads configuration from the environment (and CONFIG_FILE when set).
func Load() (*Config, error) {
	viper.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read CONFIG_FILE: %w", err)
		}
	}
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("CACHE_CAPACITY", 10000)
	viper.SetDefault("DATABASE_QUERY_TIMEOUT", "2s")
	viper.SetDefault("RESOLVE_LOOKUP_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_PER_IP", "300-M")

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnvOrDefault("PORT", "8080"),
			TrustForwardedHost: viper.GetBool("TRUST_FORWARDED_HOST"),
		},
		Database: DatabaseConfig{
			URL:          viper.GetString("DATABASE_URL"),
			QueryTimeout: viper.GetDuration("DATABASE_QUERY_TIMEOUT"),
		},
		Redis: RedisConfig{
			URL:                 viper.GetString("REDIS_URL"),
			InvalidationChannel: viper.GetString("INVALIDATION_CHANNEL"),
		},
		Tenancy: TenancyConfig{
			RootDomain:    strings.ToLower(strings.TrimSpace(viper.GetString("ROOT_DOMAIN"))),
			LookupTimeout: viper.GetDuration("RESOLVE_LOOKUP_TIMEOUT"),
		},
		Cache: CacheConfig{
			TTL:             viper.GetDuration("CACHE_TTL"),
			Capacity:        viper.GetUint64("CACHE_CAPACITY"),
			WarmOnStart:     viper.GetBool("CACHE_WARM_ON_START"),
			RefreshInterval: viper.GetDuration("CACHE_REFRESH_INTERVAL"),
		},
		Admin: AdminConfig{
			Secret: viper.GetString("ADMIN_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RatePerIP:     viper.GetString("RATE_LIMIT_PER_IP"),
			RatePerVendor: viper.GetString("RATE_LIMIT_PER_VENDOR"),
		},
		Secure: SecureConfig{
			IsDevelopment: viper.GetBool("SECURE_DEV"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
		VendorSeed: viper.GetString("VENDOR_SEED_FILE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail at first request.
func (c *Config) Validate() error {
	if c.Tenancy.RootDomain == "" {
		return fmt.Errorf("ROOT_DOMAIN is required")
	}
	if strings.ContainsAny(c.Tenancy.RootDomain, "/: ") {
		return fmt.Errorf("ROOT_DOMAIN must be a bare host name, got %q", c.Tenancy.RootDomain)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.RefreshInterval < 0 {
		return fmt.Errorf("CACHE_REFRESH_INTERVAL must not be negative")
	}
	if c.Tenancy.LookupTimeout <= 0 {
		return fmt.Errorf("RESOLVE_LOOKUP_TIMEOUT must be positive")
	}
	if c.Database.URL == "" && c.VendorSeed == "" {
		return fmt.Errorf("one of DATABASE_URL or VENDOR_SEED_FILE is required")
	}
	return nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
