package config

import (
	"time"

	"github.com/maxviazov/movedex/internal/logger"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	PokeAPI  PokeAPIConfig       `mapstructure:"pokeapi"`
	Cache    CacheConfig         `mapstructure:"cache"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	HTTP     HTTPConfig          `mapstructure:"http"`
}

type AppConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// PokeAPIConfig describes the upstream the gateway reads through to.
type PokeAPIConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"min=0"`
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"min=1,max=100"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// CacheConfig selects the document store. TTL applies to every cached body.
type CacheConfig struct {
	Driver        string        `mapstructure:"driver" validate:"oneof=memory sqlite postgres"`
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	PurgeInterval time.Duration `mapstructure:"purge_interval" validate:"min=0"`
	SQLitePath    string        `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port" validate:"min=0,max=65535"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// HTTPConfig tunes the public listener. RateLimit requests are allowed per
// client IP within every RateWindow; zero disables limiting.
type HTTPConfig struct {
	RateLimit    int           `mapstructure:"rate_limit" validate:"min=0"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}
