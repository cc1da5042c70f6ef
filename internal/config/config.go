package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Plaid    PlaidConfig    `mapstructure:"plaid"`
	Tink     TinkConfig     `mapstructure:"tink"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"` // public URL used for Stripe/Tink redirects
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// StripeConfig holds Stripe billing configuration
type StripeConfig struct {
	SecretKey       string `mapstructure:"secret_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	PriceIDPro      string `mapstructure:"price_id_pro"`
	PriceIDBusiness string `mapstructure:"price_id_business"`
}

// PlaidConfig holds Plaid bank-linking configuration
type PlaidConfig struct {
	ClientID string `mapstructure:"client_id"`
	Secret   string `mapstructure:"secret"`
	Env      string `mapstructure:"env"` // "sandbox" or "production"
}

// TinkConfig holds Nordic open-banking (Tink) configuration
type TinkConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Market       string `mapstructure:"market"` // default market for BankID flows, e.g. "SE"
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	// AlertSchedule is the cron expression for periodic alert evaluation
	AlertSchedule string `mapstructure:"alert_schedule"`
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("plaid.env", "sandbox")
	v.SetDefault("tink.market", "SE")
	v.SetDefault("jobs.alert_schedule", "0 0 * * * *") // hourly

	// Read from environment variables
	v.SetEnvPrefix("KILLSUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind to the conventional non-prefixed environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "SUPABASE_SERVICE_KEY")
	v.BindEnv("stripe.secret_key", "STRIPE_SECRET_KEY")
	v.BindEnv("stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	v.BindEnv("stripe.price_id_pro", "STRIPE_PRICE_ID_PRO")
	v.BindEnv("stripe.price_id_business", "STRIPE_PRICE_ID_BUSINESS")
	v.BindEnv("plaid.client_id", "PLAID_CLIENT_ID")
	v.BindEnv("plaid.secret", "PLAID_SECRET")
	v.BindEnv("plaid.env", "PLAID_ENV")
	v.BindEnv("tink.client_id", "TINK_CLIENT_ID")
	v.BindEnv("tink.client_secret", "TINK_CLIENT_SECRET")

	// Read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// It's okay if config file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that all required configuration values are present.
// Vendor credentials are only required when the matching integration is
// configured at all, so local development can run with Supabase alone.
func (c *Config) Validate() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.Supabase.ServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if c.Stripe.SecretKey != "" && c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when Stripe is configured")
	}
	if c.Plaid.ClientID != "" && c.Plaid.Secret == "" {
		return fmt.Errorf("PLAID_SECRET is required when Plaid is configured")
	}
	if c.Tink.ClientID != "" && c.Tink.ClientSecret == "" {
		return fmt.Errorf("TINK_CLIENT_SECRET is required when Tink is configured")
	}
	return nil
}

// StripeEnabled reports whether Stripe billing is configured.
func (c *Config) StripeEnabled() bool { return c.Stripe.SecretKey != "" }

// PlaidEnabled reports whether Plaid bank linking is configured.
func (c *Config) PlaidEnabled() bool { return c.Plaid.ClientID != "" }

// TinkEnabled reports whether Tink bank linking is configured.
func (c *Config) TinkEnabled() bool { return c.Tink.ClientID != "" }
