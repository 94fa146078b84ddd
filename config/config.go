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

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
}

type AppConfig struct {
	Env             string        `yaml:"env"`
	Port            string        `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogLevel        string        `yaml:"log_level"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	MigrationsPath  string        `yaml:"migrations_path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func Default() Config {
	return Config{
		App: AppConfig{
			Env:             EnvDevelopment,
			Port:            "8080",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "promptcms",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
			LogLevel:        "warn",
			MigrationsPath:  "migrations",
		},
		Kafka: KafkaConfig{
			Topic: "prompt-content-events",
		},
		Auth:  defaultAuth(),
		Cache: CacheConfig{TTL: 5 * time.Minute},
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// at path, then the environment. A .env file next to the binary fills in
// variables that are not already set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)

	return cfg, cfg.Validate()
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func getEnv(key string) (string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return "", false
	}
	return strings.TrimSpace(val), true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if val, ok := getEnv(key); ok {
			*dst = val
		}
	}
	setInt := func(key string, dst *int) {
		if val, ok := getEnv(key); ok {
			if n, err := strconv.Atoi(val); err == nil {
				*dst = n
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if val, ok := getEnv(key); ok {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if val, ok := getEnv(key); ok {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}
	setList := func(key string, dst *[]string) {
		if val, ok := getEnv(key); ok {
			*dst = splitList(val)
		}
	}

	setString("APP_ENV", &cfg.App.Env)
	setString("APP_PORT", &cfg.App.Port)
	setString("PORT", &cfg.App.Port)
	setString("APP_LOG_LEVEL", &cfg.App.LogLevel)
	setDuration("APP_SHUTDOWN_TIMEOUT", &cfg.App.ShutdownTimeout)

	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DATABASE_URL", &cfg.Database.URL)
	setString("DB_HOST", &cfg.Database.Host)
	setString("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.Name)
	setString("DB_SSLMODE", &cfg.Database.SSLMode)
	setInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	setDuration("DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime)
	setString("DB_LOG_LEVEL", &cfg.Database.LogLevel)
	setBool("DB_AUTO_MIGRATE", &cfg.Database.AutoMigrate)
	setString("DB_MIGRATIONS_PATH", &cfg.Database.MigrationsPath)

	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("REDIS_DB", &cfg.Redis.DB)

	setList("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	setString("KAFKA_TOPIC", &cfg.Kafka.Topic)

	setString("JWT_SECRET", &cfg.Auth.JWTSecret)
	setDuration("JWT_EXPIRATION", &cfg.Auth.TokenTTL)
	setList("ADMIN_EMAILS", &cfg.Auth.AdminEmails)
	setList("ALLOWED_SIGNUP_EMAILS", &cfg.Auth.AllowedSignupEmails)
	setBool("AUTH_REQUIRE_CONFIRMATION", &cfg.Auth.RequireConfirmation)
	setString("AUTH_COOKIE_NAME", &cfg.Auth.CookieName)
	setBool("AUTH_COOKIE_SECURE", &cfg.Auth.CookieSecure)

	setDuration("CACHE_TTL", &cfg.Cache.TTL)
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}

	if c.App.Port == "" {
		errs = append(errs, errors.New("app port is required"))
	}

	errs = append(errs, c.Auth.validate(c.App.Env == EnvProduction)...)

	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// DSN returns the connection string for the configured driver. An explicit
// URL wins over the individual parameters.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == DriverSQLite {
		return "promptcms.db"
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, sslMode)
}

// MigrationURL returns the database URL in the form golang-migrate expects.
func (d DatabaseConfig) MigrationURL() string {
	if d.URL != "" {
		return d.URL
	}
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslMode)
}
