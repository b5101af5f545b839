package config

import (
	"errors"
	"time"

	logconfig "github.com/lintang-b-s/nearest-cities/pkg/logger/config"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	APIPort    int
	APITimeout time.Duration

	DBPath          string
	LookupCacheSize int

	RateLimitRPS   float64
	RateLimitBurst int

	AuditWorkers int
	AuditBuffer  int

	LogLevel      int
	LogTimeFormat string
}

// New reads .env and config.yaml from the working directory when present. environment variables win over both.
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("DB_PATH", "cities.db")
	viper.SetDefault("LOOKUP_CACHE_SIZE", 1024)
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)
	viper.SetDefault("AUDIT_WORKERS", 2)
	viper.SetDefault("AUDIT_BUFFER", 256)
	viper.SetDefault("LOG_LEVEL", logconfig.INFO_LEVEL)
	viper.SetDefault("LOG_TIME_FORMAT", time.RFC3339Nano)

	if err := viper.ReadInConfig(); err != nil {
		var typeErr viper.ConfigFileNotFoundError
		if !errors.As(err, &typeErr) {
			return nil, err
		}
	}

	cfg := &Config{
		APIPort:         viper.GetInt("API_PORT"),
		APITimeout:      viper.GetDuration("API_TIMEOUT"),
		DBPath:          viper.GetString("DB_PATH"),
		LookupCacheSize: viper.GetInt("LOOKUP_CACHE_SIZE"),
		RateLimitRPS:    viper.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  viper.GetInt("RATE_LIMIT_BURST"),
		AuditWorkers:    viper.GetInt("AUDIT_WORKERS"),
		AuditBuffer:     viper.GetInt("AUDIT_BUFFER"),
		LogLevel:        viper.GetInt("LOG_LEVEL"),
		LogTimeFormat:   viper.GetString("LOG_TIME_FORMAT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, errors.New("API_PORT must be between 1 and 65535"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("API_TIMEOUT must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is empty"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.AuditWorkers <= 0 || c.AuditBuffer < 0 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be positive and AUDIT_BUFFER not negative"))
	}
	return errors.Join(errs...)
}
