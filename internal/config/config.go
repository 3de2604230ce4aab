package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
)

type Config struct {
	App       AppConfig        `yaml:"app"`
	Storage   StorageConfig    `yaml:"storage"`
	Database  DatabaseConfig   `yaml:"database"`
	Redis     RedisConfig      `yaml:"redis"`
	Session   SessionConfig    `yaml:"session"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Logging   LoggingConfig    `yaml:"logging"`
	Rates     map[string]int64 `yaml:"rates"`
}

type AppConfig struct {
	Name        string   `yaml:"name"`
	Environment string   `yaml:"environment"`
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StorageConfig struct {
	Backend  string `yaml:"backend"`
	BoltPath string `yaml:"bolt_path"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

type RateLimitConfig struct {
	// Auth limits register and login per client IP, in limiter format ("10-M").
	Auth string `yaml:"auth"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// Load reads .env (optional), then the YAML file at path (optional, with
// environment variables expanded), then environment overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.App.Environment, "ENV")
	setString(&cfg.App.Port, "PORT")
	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.BoltPath, "BOLT_PATH")

	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")

	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" || port != "" {
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "6379"
		}
		cfg.Redis.Address = host + ":" + port
	}
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}

	setString(&cfg.Session.Secret, "SESSION_SECRET")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.FilePath, "LOG_FILE")
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "driveezzy"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendBolt
	}
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.BoltPath == "" {
		cfg.Storage.BoltPath = "car_rental.db"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "car_rental"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 25
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "driveezzy_session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		cfg.Session.Secret = "dev-only-session-secret"
	}

	if cfg.RateLimit.Auth == "" {
		cfg.RateLimit.Auth = "10-M"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendPostgres, BackendRedis, BackendBolt:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}

	for carType, rate := range c.Rates {
		if rate < 0 {
			return fmt.Errorf("rate for %q must not be negative", carType)
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
