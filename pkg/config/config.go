package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	API struct {
		BaseURL  string        `mapstructure:"base_url"`
		InitData string        `mapstructure:"init_data"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"api"`

	App struct {
		BookingURL string `mapstructure:"booking_url"`
		Locale     string `mapstructure:"locale"`
		Timezone   string `mapstructure:"timezone"`
	} `mapstructure:"app"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Console struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"console"`

	Metrics struct {
		Enabled   bool   `mapstructure:"enabled"`
		Namespace string `mapstructure:"namespace"`
		Addr      string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	Chart struct {
		Theme    string        `mapstructure:"theme"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"chart"`
}

var defaults = map[string]any{
	"api.base_url":      "",
	"api.init_data":     "",
	"api.timeout":       "15s",
	"app.booking_url":   "https://yclients.com",
	"app.locale":        "ru",
	"app.timezone":      "Europe/Moscow",
	"log.level":         "info",
	"log.format":        "console",
	"console.addr":      "127.0.0.1:8088",
	"metrics.enabled":   true,
	"metrics.namespace": "salon",
	"metrics.addr":      "127.0.0.1:9090",
	"chart.theme":       "westeros",
	"chart.cache_ttl":   "5m",
}

// Load reads .env, then the optional config file at path, then SALON_*
// environment variables. Later sources win.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("SALON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: decode: %w", err)
	}
	if c.API.BaseURL == "" {
		// BASE_URL is the variable the backend itself is deployed with.
		c.API.BaseURL = cast.ToString(getOrReturnDefault("BASE_URL", ""))
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	return c, nil
}

// Validate reports settings that make the client unusable.
func (c Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("config: api.base_url is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("config: api.timeout must be positive"))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("config: app.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location resolves App.Timezone, falling back to local time.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.App.Timezone); err == nil {
		return loc
	}
	return time.Local
}

func getOrReturnDefault(key string, defaultValue any) any {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
