package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"rentalhunter/internal/models"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

var ErrUnknownStoreDriver = errors.New("unknown store driver")

type Config struct {
	Telegram struct {
		BotToken string   `env:"TELEGRAM_BOT_TOKEN"`
		ChatIDs  []string `env:"TELEGRAM_CHAT_ID" envSeparator:","`
		APIURL   string   `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	}

	Scan struct {
		// Pause between the end of one scan and the start of the next
		PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`

		// Timeout of a single HTTP request to a source
		RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

		// Budget for one adapter, covering all of its strategies
		AdapterTimeout time.Duration `env:"ADAPTER_TIMEOUT" envDefault:"45s"`

		UserAgent string `env:"USER_AGENT" envDefault:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

		// Optional YAML search profile
		SearchProfile string `env:"SEARCH_PROFILE"`
	}

	Store struct {
		Driver      string `env:"STORE_DRIVER" envDefault:"sqlite"`
		Path        string `env:"DB_PATH" envDefault:"listings.db"`
		PostgresDSN string `env:"POSTGRES_DSN"`

		// Maximum number of retries for a failed write
		MaxRetries int `env:"PERSIST_MAX_RETRIES" envDefault:"3"`

		RetryDelay time.Duration `env:"PERSIST_RETRY_DELAY" envDefault:"1s"`
	}

	API struct {
		Addr string `env:"API_ADDR" envDefault:":5250"`
	}

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads an optional .env file and then the environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, cfg.Store.Driver)
	}
	return cfg, nil
}

// TelegramConfig returns the notifier settings
func (c *Config) TelegramConfig() *models.TelegramConfig {
	return &models.TelegramConfig{
		BotToken: c.Telegram.BotToken,
		ChatIDs:  c.Telegram.ChatIDs,
		APIURL:   c.Telegram.APIURL,
	}
}
