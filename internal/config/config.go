package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary     Primary        `koanf:"primary"`
	Server      ServerConfig   `koanf:"server"`
	Database    DatabaseConfig `koanf:"database"`
	Daraja      DarajaConfig   `koanf:"daraja"`
	Redis       RedisConfig    `koanf:"redis"`
	TokenRetry  RetryConfig    `koanf:"token_retry"`
	SubmitRetry RetryConfig    `koanf:"submit_retry"`
	Logger      LoggerConfig   `koanf:"logger"`
	Worker      WorkerConfig   `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// DarajaConfig carries the provider credentials. ConsumerSecret and Passkey
// are shared secrets and must never be logged or echoed in errors.
type DarajaConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required"`
	ConsumerKey       string        `koanf:"consumer_key" validate:"required"`
	ConsumerSecret    string        `koanf:"consumer_secret" validate:"required"`
	Shortcode         string        `koanf:"shortcode" validate:"required"`
	Passkey           string        `koanf:"passkey" validate:"required"`
	CallbackURL       string        `koanf:"callback_url" validate:"required"`
	Timeout           time.Duration `koanf:"timeout" validate:"required"`
	TokenSafetyMargin time.Duration `koanf:"token_safety_margin" validate:"required"`
	AmountLimit       int64         `koanf:"amount_limit" validate:"required"`
}

type RedisConfig struct {
	Addr      string        `koanf:"addr" validate:"required"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db"`
	DedupeTTL time.Duration `koanf:"dedupe_ttl" validate:"required"`
}

type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"required"`
	Delay       time.Duration `koanf:"delay" validate:"required"`
}

type WorkerConfig struct {
	Interval       time.Duration `koanf:"interval" validate:"required"`
	PendingTimeout time.Duration `koanf:"pending_timeout" validate:"required"`
	BatchSize      int           `koanf:"batch_size" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func (c *LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
