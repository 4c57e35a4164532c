package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"
)

const (
	envPrefix         = "USERS_"
	minSecretKeyBytes = 32

	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"

	EventsDriverMemory   = "memory"
	EventsDriverChannels = "channels"
	EventsDriverRedis    = "redis"
	EventsDriverKafka    = "kafka"
)

type Config struct {
	AppName         string        `env:"APP_NAME"         envDefault:"users-service"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	HTTPAddress     string        `env:"HTTP_ADDRESS"     envDefault:":8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	AuthRequired    bool          `env:"AUTH_REQUIRED"    envDefault:"false"`
	HashCost        int           `env:"HASH_COST"        envDefault:"10"`

	Database DatabaseConfig `envPrefix:"DB_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	Events   EventsConfig   `envPrefix:"EVENTS_"`
}

type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	DSN    string `env:"DSN"    envDefault:"host=localhost user=users password=users dbname=users port=5432 sslmode=disable TimeZone=UTC"`
}

type JWTConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	Issuer    string        `env:"ISSUER"     envDefault:"users-service"`
	Audience  string        `env:"AUDIENCE"   envDefault:"users-api"`
	Expiry    time.Duration `env:"EXPIRY"     envDefault:"60m"`
}

type EventsConfig struct {
	Driver        string   `env:"DRIVER"         envDefault:"memory"`
	RedisAddr     string   `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string   `env:"REDIS_PASSWORD"`
	RedisDB       int      `env:"REDIS_DB"       envDefault:"0"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS"  envDefault:"localhost:9092" envSeparator:","`
	ConsumerGroup string   `env:"CONSUMER_GROUP" envDefault:"users-service"`
	Consumer      string   `env:"CONSUMER"       envDefault:"users-service-1"`
}

// Load lê a configuração das variáveis de ambiente com prefixo USERS_ e a valida.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs error

	if c.HTTPAddress == "" {
		errs = multierr.Append(errs, errors.New("USERS_HTTP_ADDRESS is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("USERS_REQUEST_TIMEOUT must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("USERS_SHUTDOWN_TIMEOUT must be positive"))
	}

	switch c.Database.Driver {
	case DBDriverPostgres:
		if c.Database.DSN == "" {
			errs = multierr.Append(errs, errors.New("USERS_DB_DSN is required for the postgres driver"))
		}
	case DBDriverMemory:
	default:
		errs = multierr.Append(errs, fmt.Errorf("USERS_DB_DRIVER %q is not supported", c.Database.Driver))
	}

	if len(c.JWT.SecretKey) < minSecretKeyBytes {
		errs = multierr.Append(errs, fmt.Errorf("USERS_JWT_SECRET_KEY must have at least %d bytes", minSecretKeyBytes))
	}
	if c.JWT.Expiry <= 0 {
		errs = multierr.Append(errs, errors.New("USERS_JWT_EXPIRY must be positive"))
	}

	switch c.Events.Driver {
	case EventsDriverMemory, EventsDriverChannels:
	case EventsDriverRedis:
		if c.Events.RedisAddr == "" {
			errs = multierr.Append(errs, errors.New("USERS_EVENTS_REDIS_ADDR is required for the redis driver"))
		}
	case EventsDriverKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			errs = multierr.Append(errs, errors.New("USERS_EVENTS_KAFKA_BROKERS is required for the kafka driver"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("USERS_EVENTS_DRIVER %q is not supported", c.Events.Driver))
	}

	return errs
}
