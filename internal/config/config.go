// Package config handles configuration loading for fundamentals.
// It supports YAML config files with environment variable overrides and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source names accepted by provider.name.
const (
	SourceYFinance = "yfinance"
	SourceFMP      = "fmp"
	SourceSEC      = "sec"
	SourceSnapshot = "snapshot"
)

// Config represents the complete application configuration.
type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ProviderConfig selects and configures the statement source.
type ProviderConfig struct {
	Name       string         `mapstructure:"name"        yaml:"name"` // "yfinance", "fmp", "sec", "snapshot"
	TimeoutSec int            `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RateLimit  int            `mapstructure:"rate_limit"  yaml:"rate_limit"` // requests per second
	UserAgent  string         `mapstructure:"user_agent"  yaml:"user_agent"`
	YFinance   YFinanceConfig `mapstructure:"yfinance"    yaml:"yfinance"`
	FMP        FMPConfig      `mapstructure:"fmp"         yaml:"fmp"`
	SEC        SECConfig      `mapstructure:"sec"         yaml:"sec"`
	Snapshot   SnapshotConfig `mapstructure:"snapshot"    yaml:"snapshot"`
}

// YFinanceConfig holds Yahoo Finance settings.
type YFinanceConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// FMPConfig holds Financial Modeling Prep credentials and settings.
type FMPConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Limit   int    `mapstructure:"limit"    yaml:"limit"` // periods per statement
}

// SECConfig holds SEC EDGAR endpoints.
type SECConfig struct {
	DataURL    string `mapstructure:"data_url"    yaml:"data_url"`
	TickersURL string `mapstructure:"tickers_url" yaml:"tickers_url"`
	UserAgent  string `mapstructure:"user_agent"  yaml:"user_agent"` // SEC asks for a contact
}

// SnapshotConfig points at a recorded statements file.
type SnapshotConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ValuationConfig holds the parameters of the default DCF run.
type ValuationConfig struct {
	Symbol       string     `mapstructure:"symbol"        yaml:"symbol"`
	GrowthRate   float64    `mapstructure:"growth_rate"   yaml:"growth_rate"`   // decimal, 0.05 = 5%
	Years        int        `mapstructure:"years"         yaml:"years"`
	DiscountRate float64    `mapstructure:"discount_rate" yaml:"discount_rate"` // decimal, 0.05 = 5%
	FRED         FREDConfig `mapstructure:"fred"          yaml:"fred"`
}

// FREDConfig enables market discount rates read from a FRED series.
type FREDConfig struct {
	APIKey  string `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Series  string `mapstructure:"series"   yaml:"series"` // e.g. DGS10
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fundamentals/config.yaml (home directory)
//  3. /etc/fundamentals/config.yaml (system)
//
// A .env file in the working directory is loaded first, if present.
// Environment variables override config file values.
// Format: FUNDAMENTALS_<SECTION>_<KEY>, e.g., FUNDAMENTALS_PROVIDER_NAME
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fundamentals"))
	v.AddConfigPath("/etc/fundamentals")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case SourceYFinance, SourceSEC:
	case SourceFMP:
		if c.Provider.FMP.APIKey == "" {
			return fmt.Errorf("provider %q requires provider.fmp.api_key or FMP_API_KEY", SourceFMP)
		}
	case SourceSnapshot:
		if c.Provider.Snapshot.Path == "" {
			return fmt.Errorf("provider %q requires provider.snapshot.path", SourceSnapshot)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	if c.Valuation.Years < 1 {
		return fmt.Errorf("valuation.years must be at least 1, got %d", c.Valuation.Years)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FUNDAMENTALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.name", SourceYFinance)
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.rate_limit", 5)
	v.SetDefault("provider.user_agent", "")
	v.SetDefault("provider.yfinance.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.fmp.api_key", "")
	v.SetDefault("provider.fmp.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("provider.fmp.limit", 10)
	v.SetDefault("provider.sec.data_url", "https://data.sec.gov")
	v.SetDefault("provider.sec.tickers_url", "https://www.sec.gov/files/company_tickers.json")
	v.SetDefault("provider.sec.user_agent", "")
	v.SetDefault("provider.snapshot.path", "")

	// Valuation defaults (the example run)
	v.SetDefault("valuation.symbol", "AAPL")
	v.SetDefault("valuation.growth_rate", 0.05)
	v.SetDefault("valuation.years", 5)
	v.SetDefault("valuation.discount_rate", 0.05)
	v.SetDefault("valuation.fred.api_key", "")
	v.SetDefault("valuation.fred.base_url", "https://api.stlouisfed.org/fred")
	v.SetDefault("valuation.fred.series", "DGS10")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(envFMPKey); key != "" {
		cfg.Provider.FMP.APIKey = key
	}
	if key := os.Getenv(envFREDKey); key != "" {
		cfg.Valuation.FRED.APIKey = key
	}
}

// loadDotEnv loads ./.env into the process environment. Variables that are
// already set win over the file.
func loadDotEnv() {
	_ = godotenv.Load()
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
