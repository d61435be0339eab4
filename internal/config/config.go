package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds every knob the service reads from the environment.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	RunLocal           bool   `mapstructure:"RUN_LOCAL"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	CatalogTable       string `mapstructure:"CATALOG_TABLE"`
	CategoriesTable    string `mapstructure:"CATEGORIES_TABLE"`
	CountriesTable     string `mapstructure:"COUNTRIES_TABLE"`
	CartsTable         string `mapstructure:"CARTS_TABLE"`
	CartEventsQueueURL string `mapstructure:"CART_EVENTS_QUEUE_URL"`
	MetricsNamespace   string `mapstructure:"METRICS_NAMESPACE"`
}

// Load reads configuration from the environment, with an optional .env file
// taking lower precedence. Table names are required; everything else defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("RUN_LOCAL", false)
	v.SetDefault("METRICS_NAMESPACE", "Storefront")

	// .env is a local-dev convenience; absence is fine
	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	// AutomaticEnv alone does not feed Unmarshal; bind each key explicitly.
	for _, key := range []string{
		"SERVER_PORT", "RUN_LOCAL", "AWS_REGION",
		"CATALOG_TABLE", "CATEGORIES_TABLE", "COUNTRIES_TABLE",
		"CARTS_TABLE", "CART_EVENTS_QUEUE_URL", "METRICS_NAMESPACE",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cf.CatalogTable == "" || cf.CategoriesTable == "" || cf.CartsTable == "" {
		return nil, fmt.Errorf("CATALOG_TABLE, CATEGORIES_TABLE and CARTS_TABLE must be set")
	}
	return cf, nil
}
