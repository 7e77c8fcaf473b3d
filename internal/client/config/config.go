// Package config собирает настройки клиента из переменных окружения,
// необязательного .env файла и флагов командной строки.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreBolt   = "bolt"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config содержит настройки клиента. Флаги имеют приоритет над окружением.
type Config struct {
	ServerURL       string        `env:"LEUN_SERVER_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	DBPath          string        `env:"LEUN_DB_PATH" envDefault:"leun-client.db" validate:"required_unless=Store memory"`
	Store           string        `env:"LEUN_STORE" envDefault:"bolt" validate:"oneof=bolt sqlite memory"`
	StorePassphrase string        `env:"LEUN_STORE_PASSPHRASE"`
	LogLevel        string        `env:"LEUN_LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn error"`
	RequestTimeout  time.Duration `env:"LEUN_REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	RefreshTimeout  time.Duration `env:"LEUN_REFRESH_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	RefreshRetries  uint64        `env:"LEUN_REFRESH_RETRIES" envDefault:"2" validate:"lte=10"`
	ShowVersion     bool
}

// Load читает envFile (если он есть), окружение процесса и флаги из args.
// Возвращает конфигурацию и оставшиеся аргументы (команду).
func Load(envFile string, args []string, output io.Writer) (*Config, []string, error) {
	environment, err := environ(envFile)
	if err != nil {
		return nil, nil, err
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, nil, fmt.Errorf("parse env: %w", err)
	}

	fset := flag.NewFlagSet("leun", flag.ContinueOnError)
	fset.SetOutput(output)
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fset.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to local database")
	fset.StringVar(&cfg.Store, "store", cfg.Store, "Session store: bolt, sqlite or memory")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	if err := fset.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, fset.Args(), nil
}

// Validate проверяет значения по тегам validate
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel возвращает уровень логирования для slog
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// environ объединяет .env файл с окружением процесса; окружение важнее
func environ(envFile string) (map[string]string, error) {
	environment := make(map[string]string)

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range values {
				environment[k] = v
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	for k, v := range env.ToMap(os.Environ()) {
		environment[k] = v
	}

	return environment, nil
}
