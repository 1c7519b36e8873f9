package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBolt  = "bolt"
	StoreRedis = "redis"

	IdentityMock     = "mock"
	IdentityPostgres = "postgres"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Store       StoreConfig
	Identity    IdentityConfig
	Push        PushConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// StoreConfig selects where the current session record lives.
type StoreConfig struct {
	Backend    string
	BoltPath   string
	SessionKey string
	RedisTTL   time.Duration
}

type IdentityConfig struct {
	Backend          string
	Timeout          time.Duration
	SocialDelay      time.Duration
	OperatorEnabled  bool
	OperatorEmail    string
	OperatorPassword string
	AvatarBaseURL    string
	BcryptCost       int
}

type PushConfig struct {
	Endpoint     string
	Timeout      time.Duration
	SyncInterval time.Duration
	MaxRetry     int
	DeviceID     string
	Retention    time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults that boot a self-contained demo deployment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "academy"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "academy"),
			User:            getString("DB_USER", "academy"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "academy"),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(getString("STORE_BACKEND", StoreBolt)),
			BoltPath:   getString("BOLTDB_PATH", "./data/academy.db"),
			SessionKey: getString("SESSION_KEY", "user"),
			RedisTTL:   getDuration("SESSION_REDIS_TTL", 0),
		},
		Identity: IdentityConfig{
			Backend:          strings.ToLower(getString("IDENTITY_BACKEND", IdentityMock)),
			Timeout:          getDuration("IDENTITY_TIMEOUT", 10*time.Second),
			SocialDelay:      getDuration("SOCIAL_LOGIN_DELAY", time.Second),
			OperatorEnabled:  getBool("OPERATOR_BYPASS_ENABLED", true),
			OperatorEmail:    getString("OPERATOR_EMAIL", "admin@naver.com"),
			OperatorPassword: getString("OPERATOR_PASSWORD", "123456"),
			AvatarBaseURL:    getString("AVATAR_BASE_URL", "https://api.dicebear.com/7.x/bottts/svg?seed="),
			BcryptCost:       getInt("BCRYPT_COST", 12),
		},
		Push: PushConfig{
			Endpoint:     os.Getenv("PUSH_ENDPOINT"),
			Timeout:      getDuration("PUSH_TIMEOUT", 5*time.Second),
			SyncInterval: getDuration("PUSH_SYNC_INTERVAL", 30*time.Second),
			MaxRetry:     getInt("MAX_RETRY_ATTEMPTS", 3),
			DeviceID:     os.Getenv("PUSH_DEVICE_ID"),
			Retention:    getDuration("PUSH_OUTBOX_RETENTION", 7*24*time.Hour),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBolt, StoreRedis:
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Identity.Backend {
	case IdentityMock, IdentityPostgres:
	default:
		return fmt.Errorf("unsupported IDENTITY_BACKEND %q", c.Identity.Backend)
	}
	if c.JWT.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = "dev-secret"
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
