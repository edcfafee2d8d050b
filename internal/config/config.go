// Package config loads the storefront bot configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
)

// NewsConfig points the scraper at the news index.
type NewsConfig struct {
	URL     string        `yaml:"url" envconfig:"NEWS_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"NEWS_TIMEOUT"`
}

// ContentConfig holds the static page texts. Reference and Help may contain Telegram HTML.
type ContentConfig struct {
	Welcome   string `yaml:"welcome"`
	Reference string `yaml:"reference"`
	Help      string `yaml:"help"`
	Currency  string `yaml:"currency" envconfig:"SHOP_CURRENCY"`
}

// SeedConfig enables loading a catalog fixture into an empty database.
type SeedConfig struct {
	CatalogFile string `yaml:"catalog_file" envconfig:"SEED_CATALOG_FILE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	News     NewsConfig          `yaml:"news"`
	Content  ContentConfig       `yaml:"content"`
	Seed     SeedConfig          `yaml:"seed"`
}

// CoreConfig exposes the framework part of the configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path (optional), .env and the environment. Every missing
// required value is reported in a single error.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}

	missing := append(cfg.Config.Missing(), cfg.Database.Missing()...)
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	cfg.Database.Normalize()
	if cfg.News.Timeout < 0 {
		return nil, fmt.Errorf("news.timeout must be >= 0")
	}
	return &cfg, nil
}
