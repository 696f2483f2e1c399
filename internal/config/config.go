// Package config loads the shop bot configuration: core bot settings plus
// database, CDEK and storefront sections.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "teashop/core/config"
	coredatabase "teashop/core/database"
)

// CDEKConfig holds courier API credentials and tuning.
type CDEKConfig struct {
	BaseURL        string `yaml:"base_url" envconfig:"CDEK_BASE_URL"`
	ClientID       string `yaml:"client_id" envconfig:"CDEK_CLIENT_ID"`
	ClientSecret   string `yaml:"client_secret" envconfig:"CDEK_CLIENT_SECRET"`
	PageSize       int    `yaml:"page_size" envconfig:"CDEK_PAGE_SIZE"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"CDEK_TIMEOUT_SECONDS"`
}

// Timeout returns the HTTP timeout as a duration.
func (c CDEKConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ShopConfig holds storefront behavior settings.
type ShopConfig struct {
	// StoreURL is the external marketplace page offered on the client menu.
	StoreURL   string `yaml:"store_url" envconfig:"SHOP_STORE_URL"`
	CensorFile string `yaml:"censor_file" envconfig:"SHOP_CENSOR_FILE"`

	ReviewsPerPage      int `yaml:"reviews_per_page" envconfig:"SHOP_REVIEWS_PER_PAGE"`
	PickupPointsPerPage int `yaml:"pickup_points_per_page" envconfig:"SHOP_PVZ_PER_PAGE"`

	// ContactSkipValues are answers treated as "no contact" in the review
	// and suggestion flows, compared case-insensitively.
	ContactSkipValues []string `yaml:"contact_skip_values" envconfig:"SHOP_CONTACT_SKIP_VALUES"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	CDEK     CDEKConfig          `yaml:"cdek"`
	Shop     ShopConfig          `yaml:"shop"`
}

// CoreConfig satisfies cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// Load reads configuration from a YAML file, applies environment overrides
// and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.CDEK.ClientID == "" || cfg.CDEK.ClientSecret == "" {
		return nil, fmt.Errorf("cdek client_id and client_secret are required")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.CDEK.BaseURL == "" {
		cfg.CDEK.BaseURL = "https://api.cdek.ru/v2"
	}
	if cfg.CDEK.PageSize <= 0 {
		cfg.CDEK.PageSize = 1000
	}
	if cfg.CDEK.TimeoutSeconds <= 0 {
		cfg.CDEK.TimeoutSeconds = 10
	}
	if cfg.Shop.ReviewsPerPage <= 0 {
		cfg.Shop.ReviewsPerPage = 3
	}
	if cfg.Shop.PickupPointsPerPage <= 0 {
		cfg.Shop.PickupPointsPerPage = 5
	}
	if len(cfg.Shop.ContactSkipValues) == 0 {
		cfg.Shop.ContactSkipValues = []string{
			"нет", "-", ".", "пропустить", "", "none", "skip",
		}
	}
	if cfg.Shop.CensorFile == "" {
		cfg.Shop.CensorFile = "censor_words.json"
	}
}
