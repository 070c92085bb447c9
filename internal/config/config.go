// Package config loads service configuration from defaults, an optional
// config file, OPSLEDGER_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "OPSLEDGER"

// Missing inventory reference policies.
const (
	MissingItemsFail = "fail"
	MissingItemsSkip = "skip"
)

// Config is the full service configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	AdminUser  string        `mapstructure:"admin_user"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	LoginRate  float64       `mapstructure:"login_rate"`
	LoginBurst int           `mapstructure:"login_burst"`
}

type LedgerConfig struct {
	MissingItems string `mapstructure:"missing_items"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	DashboardTTL  time.Duration `mapstructure:"dashboard_ttl"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// flagKeys maps command-line flag names to configuration keys. Short and
// long forms of the same flag share a key.
var flagKeys = map[string]string{
	"db":   "database.dsn",
	"d":    "database.dsn",
	"addr": "server.addr",
	"a":    "server.addr",
	"user": "auth.admin_user",
	"u":    "auth.admin_user",
	"log":  "log.file",
	"l":    "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "opsledger.sqlite3")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("auth.admin_user", "Admin")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("ledger.missing_items", MissingItemsFail)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.dashboard_ttl", 30*time.Second)

	v.SetDefault("log.file", "")
}

// LoadDotEnv copies KEY=VALUE pairs from path into the process environment.
// Variables that are already set keep their value. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration. configFile may be empty. Only flags that were
// explicitly set on fs override lower layers.
func Load(configFile string, fs *flag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				v.Set(key, f.Value.String())
			}
		})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Ledger.MissingItems {
	case MissingItemsFail, MissingItemsSkip:
	default:
		return fmt.Errorf("ledger.missing_items must be %q or %q, got %q", MissingItemsFail, MissingItemsSkip, c.Ledger.MissingItems)
	}
	if c.Auth.LoginRate <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("auth.login_rate and auth.login_burst must be positive")
	}
	return nil
}
