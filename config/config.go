package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig      `mapstructure:"server"`
	Storage      StorageConfig     `mapstructure:"storage"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Redis        RedisConfig       `mapstructure:"redis"`
	Log          LogConfig         `mapstructure:"log"`
	Currencies   []CurrencyConfig  `mapstructure:"currencies"`
	Restrictions RestrictionConfig `mapstructure:"restrictions"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// StorageConfig selects the account store backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // postgres, redis, memory
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// CurrencyConfig defines one unit of account. Balances and amounts are
// decimal strings so no precision is lost in transit through the config
// layer.
type CurrencyConfig struct {
	ID              string `mapstructure:"id"`
	DisplayName     string `mapstructure:"display_name"`
	PluralName      string `mapstructure:"plural_name"`
	Symbol          string `mapstructure:"symbol"`
	DecimalPlaces   int32  `mapstructure:"decimal_places"`
	StartingBalance string `mapstructure:"starting_balance"`
	Transferable    string `mapstructure:"transferable"` // allowed, denied, unset
	Primary         bool   `mapstructure:"primary"`
	SymbolPosition  string `mapstructure:"symbol_position"` // before, after
}

// RestrictionConfig holds the numeric and permission bounds enforced on
// mutations. Read-only after service construction; changing it requires a
// restart.
type RestrictionConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	MinBalance            string `mapstructure:"min_balance"`
	MaxBalance            string `mapstructure:"max_balance"`
	AllowCrossCurrency    bool   `mapstructure:"allow_cross_currency"`
	AllowTransferOnUnset  bool   `mapstructure:"allow_transfer_on_unset"`
	MaxLeaderboardEntries int    `mapstructure:"max_leaderboard_entries"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: LEDGER_.
// Nested keys use underscore: LEDGER_DATABASE_HOST, LEDGER_STORAGE_BACKEND, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "economy_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("restrictions.enabled", true)
	v.SetDefault("restrictions.min_balance", "0")
	v.SetDefault("restrictions.max_balance", "1000000000")
	v.SetDefault("restrictions.allow_cross_currency", false)
	v.SetDefault("restrictions.allow_transfer_on_unset", true)
	v.SetDefault("restrictions.max_leaderboard_entries", 10)
	v.SetDefault("currencies", []map[string]any{
		{
			"id":               "dollar",
			"display_name":     "Dollar",
			"plural_name":      "Dollars",
			"symbol":           "$",
			"decimal_places":   2,
			"starting_balance": "0",
			"transferable":     "unset",
			"primary":          true,
			"symbol_position":  "before",
		},
	})

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: LEDGER_DATABASE_HOST -> database.host
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails fast on configurations the ledger cannot start with.
func (c *Config) Validate() error {
	if len(c.Currencies) == 0 {
		return fmt.Errorf("config: no currencies defined")
	}

	primaries := 0
	seen := make(map[string]bool, len(c.Currencies))
	for _, cur := range c.Currencies {
		if cur.ID == "" {
			return fmt.Errorf("config: currency with empty id")
		}
		if seen[cur.ID] {
			return fmt.Errorf("config: duplicate currency id %q", cur.ID)
		}
		seen[cur.ID] = true
		if cur.Primary {
			primaries++
		}
	}
	if primaries != 1 {
		return fmt.Errorf("config: exactly one currency must be primary, got %d", primaries)
	}
	return nil
}
