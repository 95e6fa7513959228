package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort               string `env:"HTTP_PORT" envDefault:"8080"`
	JWTSecret              string `env:"JWT_SECRET,required,notEmpty"`
	JWTTTLMinutes          int    `env:"JWT_TTL_MINUTES" envDefault:"60"`
	JWTIssuer              string `env:"JWT_ISSUER" envDefault:"secondchance"`
	StoreDriver            string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI               string `env:"MONGO_URI"`
	MongoDatabase          string `env:"MONGO_DATABASE" envDefault:"secondchance"`
	DatabaseURL            string `env:"DATABASE_URL"`
	RedisAddr              string `env:"REDIS_ADDR"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	RedisDB                int    `env:"REDIS_DB" envDefault:"0"`
	HashConcurrency        int    `env:"HASH_CONCURRENCY" envDefault:"0"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"10"`
}

var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que env no puede expresar con tags.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("%w: MONGO_URI is required for the mongo store", ErrInvalidConfig)
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.JWTTTLMinutes <= 0 {
		return fmt.Errorf("%w: JWT_TTL_MINUTES must be positive", ErrInvalidConfig)
	}
	return nil
}
