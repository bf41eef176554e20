package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultJWTSecret = "dev-only-secret-change-me"
)

type Config struct {
	Addr                 string
	Environment          string
	JWTSecret            string
	SessionTTL           time.Duration
	DBDriver             string
	MongoURI             string
	MongoDatabase        string
	DatabaseURL          string
	RedisURL             string
	CORSOrigins          []string
	DataEncryptionKey    string
	RunMigrations        bool
	RunSeed              bool
	SeedHREmail          string
	SeedHRPassword       string
	MaxBodyBytes         int64
	RateLimitPerMinute   int
	OverdueSweepInterval time.Duration
	MetricsEnabled       bool
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "perfeval")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("DATA_ENCRYPTION_KEY", "")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("RUN_SEED", true)
	v.SetDefault("SEED_HR_EMAIL", "")
	v.SetDefault("SEED_HR_PASSWORD", "")
	v.SetDefault("MAX_BODY_BYTES", 1048576)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("OVERDUE_SWEEP_INTERVAL", "1h")
	v.SetDefault("METRICS_ENABLED", true)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	if err := v.BindEnv("ENVIRONMENT", "ENVIRONMENT", "NODE_ENV"); err != nil {
		return Config{}, fmt.Errorf("binding environment: %w", err)
	}

	ttl, err := parseDuration(v, "SESSION_TTL")
	if err != nil {
		return Config{}, err
	}
	sweep, err := parseDuration(v, "OVERDUE_SWEEP_INTERVAL")
	if err != nil {
		return Config{}, err
	}

	port := strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":")
	cfg := Config{
		Addr:                 ":" + port,
		Environment:          strings.ToLower(strings.TrimSpace(v.GetString("ENVIRONMENT"))),
		JWTSecret:            v.GetString("JWT_SECRET"),
		SessionTTL:           ttl,
		DBDriver:             strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDatabase:        v.GetString("MONGO_DB"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		RedisURL:             v.GetString("REDIS_URL"),
		CORSOrigins:          splitList(v.GetString("CORS_ORIGINS")),
		DataEncryptionKey:    v.GetString("DATA_ENCRYPTION_KEY"),
		RunMigrations:        v.GetBool("RUN_MIGRATIONS"),
		RunSeed:              v.GetBool("RUN_SEED"),
		SeedHREmail:          strings.ToLower(strings.TrimSpace(v.GetString("SEED_HR_EMAIL"))),
		SeedHRPassword:       v.GetString("SEED_HR_PASSWORD"),
		MaxBodyBytes:         v.GetInt64("MAX_BODY_BYTES"),
		RateLimitPerMinute:   v.GetInt("RATE_LIMIT_PER_MINUTE"),
		OverdueSweepInterval: sweep,
		MetricsEnabled:       v.GetBool("METRICS_ENABLED"),
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = defaultJWTSecret
	}
	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("MONGO_URI is required when DB_DRIVER is mongo")
		}
		if strings.TrimSpace(c.MongoDatabase) == "" {
			return fmt.Errorf("MONGO_DB is required when DB_DRIVER is mongo")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is postgres")
		}
	case DriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("DB_DRIVER memory is not allowed in production")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q, %q or %q", DriverMongo, DriverPostgres, DriverMemory)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production to protect MFA secrets")
		}
		if c.RunSeed && c.SeedHREmail != "" && len(c.SeedHRPassword) < 12 {
			return fmt.Errorf("SEED_HR_PASSWORD must be at least 12 characters in production")
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.OverdueSweepInterval < 0 {
		return fmt.Errorf("OVERDUE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}
