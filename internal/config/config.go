package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrEmptyAPIURL = errors.New(
		"error getting PP_API_URL: variable not specified or contains an empty string")
	ErrEmptyToken = errors.New(
		"error getting PP_TELEGRAM_TOKEN: variable not specified or contains an empty string")
)

type Config struct {
	Env         string // Env is the current environment: local, dev, prod.
	StoragePath string // StoragePath is the SQLite file the session token persists in.
	API         API
	Tg          Telegram
}

type API struct {
	URL     string        // URL is the base URL of the remote PricePulse service.
	Timeout time.Duration // Timeout is the per-request HTTP timeout.
}

type Telegram struct {
	Token   string        // Token is an unique telegram bot token.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("PP")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("STORAGE_PATH", "pricepulse.db")
	viper.SetDefault("API_TIMEOUT", "15s")
	viper.SetDefault("TELEGRAM_TIMEOUT", "15s")

	if viper.GetString("API_URL") == "" {
		panic(ErrEmptyAPIURL)
	}

	if viper.GetString("TELEGRAM_TOKEN") == "" {
		panic(ErrEmptyToken)
	}

	return &Config{
		Env:         viper.GetString("ENV"),
		StoragePath: viper.GetString("STORAGE_PATH"),
		API: API{
			URL:     viper.GetString("API_URL"),
			Timeout: viper.GetDuration("API_TIMEOUT"),
		},
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}
}
