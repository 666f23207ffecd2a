// Package config loads host-level queuectl configuration.
//
// Host configuration covers where the shared store and log artifacts live and
// how the local process behaves (poll interval, dashboard port). Queue tuning
// values that all workers must agree on (backoff_base, default_timeout,
// default_priority, max_retries) are stored in the database config table
// instead, so every process sharing the store sees the same values.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/rishiakkala/queuectl/errors"
)

// Config is the host configuration for a queuectl process.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logs      LogsConfig      `mapstructure:"logs"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogsConfig struct {
	// Dir holds one <job_id>.log artifact per job
	Dir string `mapstructure:"dir"`
}

type WorkerConfig struct {
	// PollIntervalSeconds is how long an idle worker sleeps between claim attempts
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

type DashboardConfig struct {
	Port int `mapstructure:"port"`
}

var globalConfig *Config
var viperInstance *viper.Viper

// SetDefaults registers default values on a viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "data/queuectl.db")
	v.SetDefault("logs.dir", "data/logs")
	v.SetDefault("worker.poll_interval_seconds", 1)
	v.SetDefault("dashboard.port", 5000)
}

// Load reads the queuectl configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadWithViper loads configuration using a provided Viper instance.
// Useful for tests that need isolation from user/system config files.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// GetDatabasePath returns the configured database path
func GetDatabasePath() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.Path, nil
}

// GetLogDir returns the configured job log directory
func GetLogDir() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Logs.Dir, nil
}

// initViper initializes Viper with configuration sources and defaults.
// Precedence (lowest to highest): defaults < queuectl.toml < env vars.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("QUEUECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("queuectl")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.queuectl")

	// Config file is optional; defaults and env vars are enough to run
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}
