package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"dev"`
	Address  string `env:"ADDRESS" env-default:"0.0.0.0"`
	Port     int    `env:"PORT" env-default:"8000"`
	BaseURL  string `env:"BASE_URL"`
	Cache    CacheConfig
	Exchange ExchangeConfig
	Mongo    MongoConfig
}

type CacheConfig struct {
	TTLSeconds int `env:"CACHE_TTL_SECONDS" env-default:"60"`
	Capacity   int `env:"CACHE_CAPACITY" env-default:"1024"`
}

type ExchangeConfig struct {
	Default         string        `env:"DEFAULT_EXCHANGE" env-default:"binance"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"10s"`
	BinanceURL      string        `env:"BINANCE_API_URL" env-default:"https://api.binance.com"`
	BybitURL        string        `env:"BYBIT_API_URL" env-default:"https://api.bybit.com"`
}

// MongoConfig enables the MongoDB request log when URI is set.
type MongoConfig struct {
	URI        string `env:"MONGO_URI"`
	Database   string `env:"MONGO_DB" env-default:"mcp_server"`
	Collection string `env:"MONGO_LOG_COLLECTION" env-default:"request_logs"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("invalid PORT value")
	}
	if c.Cache.TTLSeconds <= 0 {
		return errors.New("invalid CACHE_TTL_SECONDS value")
	}
	if c.Cache.Capacity <= 0 {
		return errors.New("invalid CACHE_CAPACITY value")
	}
	if c.Exchange.Default == "" {
		return errors.New("DEFAULT_EXCHANGE must not be empty")
	}
	if c.Exchange.UpstreamTimeout <= 0 {
		return errors.New("invalid UPSTREAM_TIMEOUT value")
	}
	if c.Env != EnvDev && c.Env != EnvProd {
		return fmt.Errorf("invalid APP_ENV value %q", c.Env)
	}
	return nil
}
