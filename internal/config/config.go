// Package config loads nightkv's runtime configuration from an optional
// YAML file and environment variables, the same layering the teacher used
// for its own (persistence-oriented) config surface.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Set    SetConfig    `mapstructure:"set"`
	Expire ExpireConfig `mapstructure:"expire"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds the listen address.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// SetConfig controls the adaptive Set encoding (spec §4.4/§6).
type SetConfig struct {
	// MaxListSize is the IntSet->Dict upgrade threshold
	// (SET_MAX_ZIPLIST_ENTRIES, spec §6).
	MaxListSize int `mapstructure:"max_list_size"`
}

// ExpireConfig controls the active expiry sweep (spec §4.7).
type ExpireConfig struct {
	MaxLookupsPerCycle int `mapstructure:"max_lookups_per_cycle"`
}

// LogConfig defines logging verbosity and output style.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads the configuration from path and overrides it with environment
// variables. path may not exist; a missing config file is not an error.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("NIGHTKV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// SET_MAX_ZIPLIST_ENTRIES is spec §6's literal env var name, kept
	// alongside the NIGHTKV_SET_MAX_LIST_SIZE viper mapping rather than in
	// place of it, since that is the name clients of the original protocol
	// expect to be able to set.
	if raw, ok := os.LookupEnv("SET_MAX_ZIPLIST_ENTRIES"); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.Set.MaxListSize = n
		}
	}

	// DEBUG=1 forces debug logging regardless of configured level (spec §6).
	if debug, ok := os.LookupEnv("DEBUG"); ok && debug != "" && debug != "0" {
		cfg.Log.Level = "debug"
	}

	return &cfg, nil
}

// setDefaults populates viper with fallback values if they are not provided
// via file or environment.
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "2000")

	viper.SetDefault("set.max_list_size", 256)

	viper.SetDefault("expire.max_lookups_per_cycle", 20)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
}

// CronInterval is the event loop's nominal time-event cadence (spec §4.8).
const CronInterval = 100 * time.Millisecond
