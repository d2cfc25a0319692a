package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// devAuthSecret is the env-default for Auth.Secret. It is public, so prod refuses it.
const (
	devAuthSecret     = "dev-secret-change-me"
	minProdSecretSize = 32
)

// Config is the full application configuration.
type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Auth       `yaml:"auth"`
	Redis      `yaml:"redis"`
}

type HTTPServer struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"8080"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"https://*,http://*"`
}

// DB configures the PostgreSQL connection and pool.
type DB struct {
	URL           string `yaml:"url" env:"DATABASE_URL"`
	Host          string `yaml:"host" env:"BLUEPRINT_DB_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"BLUEPRINT_DB_PORT" env-default:"5432"`
	Database      string `yaml:"database" env:"BLUEPRINT_DB_DATABASE" env-default:"portfolio"`
	Username      string `yaml:"username" env:"BLUEPRINT_DB_USERNAME" env-default:"postgres"`
	Password      string `yaml:"password" env:"BLUEPRINT_DB_PASSWORD" env-default:"postgres"`
	Schema        string `yaml:"schema" env:"BLUEPRINT_DB_SCHEMA" env-default:"public"`
	RunMigrations bool   `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`

	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
}

type Auth struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-default:"dev-secret-change-me"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
}

// Redis is optional; an empty Addr keeps the rate limiter and list cache in memory.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// DSN prefers DATABASE_URL and falls back to the discrete BLUEPRINT_DB_* settings.
func (d DB) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable search_path=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.Schema)
}

// MustLoad reads the YAML file at path when one is given, otherwise the environment alone.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load reads configuration from the YAML file at path, or from the environment
// when path is empty, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(path) == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %w", err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env != EnvProd {
		return nil
	}
	secret := c.Auth.Secret
	if secret == "" || secret == devAuthSecret {
		return errors.New("config: AUTH_SECRET must be set in prod")
	}
	if len(secret) < minProdSecretSize {
		return fmt.Errorf("config: AUTH_SECRET must be at least %d bytes in prod", minProdSecretSize)
	}
	return nil
}
