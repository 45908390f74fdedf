package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Ledger LedgerConfig `mapstructure:"ledger"`
	Fees   FeesConfig   `mapstructure:"fees"`
	Log    LogConfig    `mapstructure:"log"`
}

// LedgerConfig locates the embedded key-value store.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// FeesConfig holds the static fee table used for transaction pricing.
// Fee = size * BaseFeePerByte * congestion multiplier / MaxSupply.
type FeesConfig struct {
	BaseFeePerByte     float64 `mapstructure:"base_fee_per_byte"`
	MaxSupply          float64 `mapstructure:"max_supply"`
	LowCongestion      float64 `mapstructure:"low_congestion"`
	ModerateCongestion float64 `mapstructure:"moderate_congestion"`
	HighCongestion     float64 `mapstructure:"high_congestion"`
	NormalCongestion   float64 `mapstructure:"normal_congestion"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: VALE_.
// Nested keys use underscore: VALE_LEDGER_PATH, VALE_FEES_MAX_SUPPLY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("ledger.path", "./vale.db")
	v.SetDefault("fees.base_fee_per_byte", 0.00001)
	v.SetDefault("fees.max_supply", 21_000_000.0)
	v.SetDefault("fees.low_congestion", 1.0)
	v.SetDefault("fees.moderate_congestion", 1.5)
	v.SetDefault("fees.high_congestion", 2.0)
	v.SetDefault("fees.normal_congestion", 1.2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: VALE_LEDGER_PATH -> ledger.path
	v.SetEnvPrefix("VALE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars and defaults can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
