// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"proposalgen/services"
)

// EnvPrefix is prepended to every environment variable, e.g. PROPOSAL_VAT_PERCENT.
const EnvPrefix = "PROPOSAL"

// Config holds all runtime settings.
type Config struct {
	VATPercent           float64 `mapstructure:"vat_percent"`
	DownPaymentThreshold float64 `mapstructure:"down_payment_threshold"`
	DownPaymentPercent   float64 `mapstructure:"down_payment_percent"`
	OfferValidDays       int     `mapstructure:"offer_valid_days"`
	SignatureName        string  `mapstructure:"signature_name"`
	Country              string  `mapstructure:"country"`

	// CatalogPath points at a catalog YAML file; empty means the embedded catalog.
	CatalogPath string `mapstructure:"catalog_path"`

	// DatabaseURL selects the Postgres client directory; empty means the app's own records.
	DatabaseURL string `mapstructure:"database_url"`

	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	LookupCacheTTL time.Duration `mapstructure:"lookup_cache_ttl"`

	Company services.CompanyProfile `mapstructure:"company"`
}

func setDefaults(v *viper.Viper) {
	opts := services.DefaultOptions()
	v.SetDefault("vat_percent", opts.VATPercent)
	v.SetDefault("down_payment_threshold", opts.DownPaymentThreshold.Float())
	v.SetDefault("down_payment_percent", opts.DownPaymentPercent)
	v.SetDefault("offer_valid_days", opts.OfferValidDays)
	v.SetDefault("signature_name", opts.SignatureName)
	v.SetDefault("country", opts.Country)
	v.SetDefault("catalog_path", "")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("lookup_cache_ttl", 10*time.Minute)

	c := opts.Company
	v.SetDefault("company.name", c.Name)
	v.SetDefault("company.legal_name", c.LegalName)
	v.SetDefault("company.manager", c.Manager)
	v.SetDefault("company.address", c.Address)
	v.SetDefault("company.register", c.Register)
	v.SetDefault("company.tax_id", c.TaxID)
	v.SetDefault("company.vat_id", c.VATID)
	v.SetDefault("company.bank_name", c.BankName)
	v.SetDefault("company.bank_iban", c.BankIBAN)
	v.SetDefault("company.contact_email", c.ContactEmail)
	v.SetDefault("company.contact_web", c.ContactWeb)
	v.SetDefault("company.contact_phone", c.ContactPhone)
}

// Load reads .env from the working directory if present, then the
// environment. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper applies defaults and environment bindings to v and decodes the result.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.VATPercent < 0:
		return fmt.Errorf("vat_percent must not be negative, got %v", c.VATPercent)
	case c.DownPaymentPercent < 0 || c.DownPaymentPercent > 100:
		return fmt.Errorf("down_payment_percent must be between 0 and 100, got %v", c.DownPaymentPercent)
	case c.OfferValidDays < 0:
		return fmt.Errorf("offer_valid_days must not be negative, got %d", c.OfferValidDays)
	}
	return nil
}

// Options converts the commercial settings into assembler options.
func (c *Config) Options() services.Options {
	return services.Options{
		VATPercent:           c.VATPercent,
		DownPaymentThreshold: services.MoneyFromFloat(c.DownPaymentThreshold),
		DownPaymentPercent:   c.DownPaymentPercent,
		OfferValidDays:       c.OfferValidDays,
		SignatureName:        c.SignatureName,
		Country:              c.Country,
		Company:              c.Company,
	}
}

// Catalog loads the configured catalog, or the embedded one.
func (c *Config) Catalog() (*services.Catalog, error) {
	if c.CatalogPath == "" {
		return services.DefaultCatalog()
	}
	return services.LoadCatalog(c.CatalogPath)
}
