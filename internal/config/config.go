// Package config содержит логику чтения конфигурации магазина luxedropship.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Поддерживаемые хранилища.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config содержит параметры конфигурации магазина.
type Config struct {
	RunAddress      string `env:"RUN_ADDRESS"`
	Storage         string `env:"STORAGE"`
	StoragePath     string `env:"STORAGE_PATH"`
	DatabaseURI     string `env:"DATABASE_URI"`
	RedisAddr       string `env:"REDIS_ADDR"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB"`
	PaymentAPIURL   string `env:"PAYMENT_API_URL"`
	PaymentAPIKey   string `env:"PAYMENT_API_KEY"`
	ProductFetchURL string `env:"PRODUCT_FETCH_URL"`
	AMQPURL         string `env:"AMQP_URL"`
	CookieSecret    string `env:"COOKIE_SECRET"`
	PasswordHashing string `env:"PASSWORD_HASHING" envDefault:"bcrypt"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и
// переменных окружения. Переменные окружения важнее флагов, значения из
// .env не перекрывают уже заданные переменные окружения.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	overrides := map[*string]string{
		&cfg.RunAddress:      cfg.RunAddress,
		&cfg.Storage:         cfg.Storage,
		&cfg.StoragePath:     cfg.StoragePath,
		&cfg.DatabaseURI:     cfg.DatabaseURI,
		&cfg.RedisAddr:       cfg.RedisAddr,
		&cfg.PaymentAPIURL:   cfg.PaymentAPIURL,
		&cfg.ProductFetchURL: cfg.ProductFetchURL,
		&cfg.AMQPURL:         cfg.AMQPURL,
	}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.Storage, "s", "", "storage backend: memory, file, postgres, redis")
	flag.StringVar(&cfg.StoragePath, "f", "luxedropship.json", "file storage path")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.RedisAddr, "redis", "", "redis address")
	flag.StringVar(&cfg.PaymentAPIURL, "p", "", "payment invoice service address")
	flag.StringVar(&cfg.ProductFetchURL, "i", "", "product fetch service address")
	flag.StringVar(&cfg.AMQPURL, "q", "", "RabbitMQ URL for order events")

	flag.Parse()

	for field, envValue := range overrides {
		if envValue != "" {
			*field = envValue
		}
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if cfg.Storage == "" {
		cfg.Storage = StorageFile
		if cfg.DatabaseURI != "" {
			cfg.Storage = StoragePostgres
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageFile:
		if c.StoragePath == "" {
			return errors.New("file storage requires a storage path")
		}
	case StoragePostgres:
		if c.DatabaseURI == "" {
			return errors.New("postgres storage requires a database URI")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("redis storage requires a redis address")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	return nil
}
