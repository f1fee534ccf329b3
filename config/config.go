package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the pipeline needs for one run. Thresholds and
// site parameters live in config.yaml; credentials come from the
// environment and are never written to the file.
type Config struct {
	Argenprop struct {
		BaseURL    string `yaml:"base_url"`
		SearchPath string `yaml:"search_path"`
		MaxPages   int    `yaml:"max_pages"`
		RawCSVPath string `yaml:"raw_csv_path"`
	} `yaml:"argenprop"`

	Zonaprop struct {
		BaseURL    string `yaml:"base_url"`
		SearchPath string `yaml:"search_path"`
		MaxPages   int    `yaml:"max_pages"`
		MaxWorkers int    `yaml:"max_workers"`
		Headless   bool   `yaml:"headless"`
		RawCSVPath string `yaml:"raw_csv_path"`
	} `yaml:"zonaprop"`

	Filter struct {
		ExchangeRate float64 `yaml:"exchange_rate"` // ARS per USD, maintained by hand
		MinPriceUSD  float64 `yaml:"min_price_usd"`
		MaxPriceUSD  float64 `yaml:"max_price_usd"`
		MinSizeM2    float64 `yaml:"min_size_m2"`
		CleanCSVPath string  `yaml:"clean_csv_path"`
	} `yaml:"filter"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	AlertState struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"alert_state"`

	Archive struct {
		Enabled     bool   `yaml:"enabled"`
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"archive"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	MinDelay       time.Duration `yaml:"min_delay"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	MaxRetries     int           `yaml:"max_retries"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine: defaults plus environment must then
// carry everything.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Bool defaults must precede unmarshal so an explicit "headless: false"
	// in the file still wins.
	cfg.Zonaprop.Headless = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("EXCHANGE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse EXCHANGE_RATE %q: %w", v, err)
		}
		cfg.Filter.ExchangeRate = rate
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.AlertState.SQLitePath = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Archive.DatabaseURL = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Argenprop.BaseURL == "" {
		c.Argenprop.BaseURL = "https://www.argenprop.com"
	}
	if c.Argenprop.SearchPath == "" {
		c.Argenprop.SearchPath = "/inmuebles/alquiler/belgrano-o-br-norte-o-palermo/3-dormitorios-o-4-dormitorios-o-5-o-mas-dormitorios?pagina-1"
	}
	if c.Argenprop.MaxPages == 0 {
		c.Argenprop.MaxPages = 25
	}
	if c.Argenprop.RawCSVPath == "" {
		c.Argenprop.RawCSVPath = "output/argenprop_raw.csv"
	}
	if c.Zonaprop.BaseURL == "" {
		c.Zonaprop.BaseURL = "https://www.zonaprop.com.ar"
	}
	if c.Zonaprop.SearchPath == "" {
		c.Zonaprop.SearchPath = "/departamentos-alquiler-palermo-belgrano-barrio-norte-3-habitaciones"
	}
	if c.Zonaprop.MaxPages == 0 {
		c.Zonaprop.MaxPages = 10
	}
	if c.Zonaprop.MaxWorkers == 0 {
		c.Zonaprop.MaxWorkers = 3
	}
	if c.Zonaprop.RawCSVPath == "" {
		c.Zonaprop.RawCSVPath = "output/zonaprop_raw.csv"
	}
	if c.Filter.ExchangeRate == 0 {
		c.Filter.ExchangeRate = 1500
	}
	if c.Filter.MinPriceUSD == 0 {
		c.Filter.MinPriceUSD = 300
	}
	if c.Filter.MaxPriceUSD == 0 {
		c.Filter.MaxPriceUSD = 1500
	}
	if c.Filter.MinSizeM2 == 0 {
		c.Filter.MinSizeM2 = 90
	}
	if c.Filter.CleanCSVPath == "" {
		c.Filter.CleanCSVPath = "output/listings_clean.csv"
	}
	if c.AlertState.SQLitePath == "" {
		c.AlertState.SQLitePath = "data/alert_state.db"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.MinDelay == 0 {
		c.MinDelay = 1 * time.Second
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 4 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
}

// Validate checks everything a full pipeline run needs. Called before
// any network work so a misconfigured run dies early.
func (c *Config) Validate() error {
	if err := c.ValidateTelegram(); err != nil {
		return err
	}
	if err := c.ValidateFilter(); err != nil {
		return err
	}
	if c.Archive.Enabled && c.Archive.DatabaseURL == "" {
		return fmt.Errorf("archive.database_url is required when archive.enabled (set DATABASE_URL)")
	}
	return nil
}

// ValidateTelegram checks the credentials the alert stage cannot run
// without.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (set TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required (set TELEGRAM_CHAT_ID)")
	}
	return nil
}

// ValidateFilter checks the thresholds the clean stage depends on.
func (c *Config) ValidateFilter() error {
	if c.Filter.ExchangeRate <= 0 {
		return fmt.Errorf("filter.exchange_rate must be positive")
	}
	if c.Filter.MinPriceUSD > c.Filter.MaxPriceUSD {
		return fmt.Errorf("filter.min_price_usd exceeds filter.max_price_usd")
	}
	return nil
}
