package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Lock      LockConfig
	Storage   StorageConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Admin     AdminConfig     `mapstructure:"admin"`

	// Set from command line flags, never from the file.
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	Level     string
	File      string
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

type DatabaseConfig struct {
	Driver    string // mysql or sqlite
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool   `mapstructure:"parse_time"`
	Path      string // sqlite file
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LockConfig selects how submissions for one (user, task) pair are
// serialized: "local" keeps an in-process mutex, "redis" shares the lock
// between instances.
type LockConfig struct {
	Type        string `mapstructure:"type"`
	TTLSeconds  int    `mapstructure:"ttl_seconds"`
	WaitSeconds int    `mapstructure:"wait_seconds"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// QuizConfig holds the engine constants. AttemptBudget and CooldownSeconds
// are the single source for the lockout rule.
type QuizConfig struct {
	AnswerKey       string `mapstructure:"answer_key"`
	AttemptBudget   int    `mapstructure:"attempt_budget"`
	CooldownSeconds int    `mapstructure:"cooldown_seconds"`
	Timezone        string `mapstructure:"timezone"`
}

func (q QuizConfig) Cooldown() time.Duration {
	return time.Duration(q.CooldownSeconds) * time.Second
}

// Location falls back to UTC when the zone cannot be loaded; LoadConfig
// rejects such zones up front.
func (q QuizConfig) Location() *time.Location {
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AdminConfig seeds the first admin account, see scripts/create_admin.go.
type AdminConfig struct {
	Name     string
	Username string
	Email    string
	Password string
}

const envPrefix = "JULEKALENDER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.path", "julekalender.db")

	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("lock.type", "local")
	v.SetDefault("lock.ttl_seconds", 10)
	v.SetDefault("lock.wait_seconds", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost", "http://localhost:5173"})
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("quiz.attempt_budget", 10)
	v.SetDefault("quiz.cooldown_seconds", 30)
	v.SetDefault("quiz.timezone", "Europe/Oslo")
}

// LoadConfig reads config.yaml from path. A .env file in the working
// directory is loaded first so JULEKALENDER_* variables can live there.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Secrets
	v.BindEnv("jwt.secret", envPrefix+"_SECRET_KEY")
	v.BindEnv("quiz.answer_key", envPrefix+"_ANSWER_KEY")
	v.BindEnv("database.password", envPrefix+"_DATABASE_PASSWORD")
	v.BindEnv("redis.password", envPrefix+"_REDIS_PASSWORD")
	v.BindEnv("admin.name", envPrefix+"_ADMIN_NAME")
	v.BindEnv("admin.username", envPrefix+"_ADMIN_USERNAME")
	v.BindEnv("admin.email", envPrefix+"_ADMIN_EMAIL")
	v.BindEnv("admin.password", envPrefix+"_ADMIN_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(filepath.Clean(cfg.Storage.LocalPath), 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if c.Server.Mode == "release" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
		}
		if c.Quiz.AnswerKey == "" {
			return errors.New("quiz.answer_key must be set in release mode")
		}
	}
	if c.Quiz.AttemptBudget <= 0 {
		return fmt.Errorf("quiz.attempt_budget must be positive, got %d", c.Quiz.AttemptBudget)
	}
	if c.Quiz.CooldownSeconds <= 0 {
		return fmt.Errorf("quiz.cooldown_seconds must be positive, got %d", c.Quiz.CooldownSeconds)
	}
	if _, err := time.LoadLocation(c.Quiz.Timezone); err != nil {
		return fmt.Errorf("quiz.timezone: %w", err)
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Lock.Type {
	case "local":
	case "redis":
		if !c.Redis.Enabled {
			return errors.New("lock.type redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("unsupported lock type %q", c.Lock.Type)
	}
	return nil
}
