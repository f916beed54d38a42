package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/swissknife/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Table input/output defaults
	Delimiter       string `mapstructure:"delimiter" yaml:"delimiter"`
	OutputDelimiter string `mapstructure:"output_delimiter" yaml:"output_delimiter"`
	Strip           bool   `mapstructure:"strip" yaml:"strip"`
	DateFormat      string `mapstructure:"date_format" yaml:"date_format"`

	// Aggregation defaults
	DefaultFunction string `mapstructure:"default_function" yaml:"default_function"`
	DefaultMode     string `mapstructure:"default_mode" yaml:"default_mode"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Remote sources
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	S3Endpoint     string `mapstructure:"s3_endpoint" yaml:"s3_endpoint"`
	S3Region       string `mapstructure:"s3_region" yaml:"s3_region"`
	S3UseSSL       bool   `mapstructure:"s3_use_ssl" yaml:"s3_use_ssl"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.swissknife/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SWISSKNIFE")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Defaults returns the built-in configuration without reading any file or
// environment variable.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("delimiter", "\t")
	v.SetDefault("output_delimiter", "")
	v.SetDefault("strip", false)
	v.SetDefault("date_format", "%Y-%m-%d")
	v.SetDefault("default_function", "mean")
	v.SetDefault("default_mode", "multiple")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("s3_endpoint", "s3.amazonaws.com")
	v.SetDefault("s3_region", "")
	v.SetDefault("s3_use_ssl", true)
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".swissknife"), nil
}
