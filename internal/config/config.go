package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mcncl/textjson/internal/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TEXTJSON_PRETTY_PRINT
const EnvPrefix = "TEXTJSON"

// Config represents the complete configuration for textjson
type Config struct {
	PrettyPrint   bool                `yaml:"pretty_print" envconfig:"PRETTY_PRINT"`
	CombineArrays bool                `yaml:"combine_arrays" envconfig:"COMBINE_ARRAYS"`
	Repair        bool                `yaml:"repair" envconfig:"REPAIR"`
	Highlight     string              `yaml:"highlight" envconfig:"HIGHLIGHT"`
	Delay         time.Duration       `yaml:"delay" envconfig:"DELAY"`
	PreviewLength int                 `yaml:"preview_length" envconfig:"PREVIEW_LENGTH"`
	Notifications NotificationsConfig `yaml:"notifications" envconfig:"NOTIFICATIONS"`
	Server        ServerConfig        `yaml:"server" envconfig:"SERVER"`
	Dev           DevConfig           `yaml:"dev" envconfig:"DEV"`
}

// NotificationsConfig controls how long notifications stay visible
type NotificationsConfig struct {
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	ErrorTimeout time.Duration `yaml:"error_timeout" envconfig:"ERROR_TIMEOUT"`
}

// ServerConfig controls the HTTP adapter
type ServerConfig struct {
	Addr  string        `yaml:"addr" envconfig:"ADDR"`
	Delay time.Duration `yaml:"delay" envconfig:"DELAY"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug" envconfig:"DEBUG"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		PrettyPrint:   true,
		CombineArrays: true,
		Repair:        false,
		Highlight:     "none",
		Delay:         0,
		PreviewLength: 200,
		Notifications: NotificationsConfig{
			Timeout:      3 * time.Second,
			ErrorTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:  ":8080",
			Delay: 500 * time.Millisecond,
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to parse config file '%s'", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".textjson.yml", ".textjson.yaml", "textjson.yml", "textjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ApplyEnv overlays TEXTJSON_* environment variables, reading a .env file
// first when one exists. Unset variables leave the current value alone.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return errors.NewConfigError("invalid environment configuration", err)
	}
	return cfg.Validate()
}

// Load builds the configuration: defaults, then the config file (explicit
// path or the nearest one found), then the environment.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		fileConfig, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Set overrides a single value. Keys may use any case style, so
// "prettyPrint", "pretty-print" and "notifications.errorTimeout" all work.
func (c *Config) Set(key, value string) error {
	name := strcase.ToSnake(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	var err error
	switch name {
	case "pretty_print":
		c.PrettyPrint, err = strconv.ParseBool(value)
	case "combine_arrays":
		c.CombineArrays, err = strconv.ParseBool(value)
	case "repair":
		c.Repair, err = strconv.ParseBool(value)
	case "highlight":
		c.Highlight = value
	case "delay":
		c.Delay, err = time.ParseDuration(value)
	case "preview_length":
		c.PreviewLength, err = strconv.Atoi(value)
	case "notifications_timeout":
		c.Notifications.Timeout, err = time.ParseDuration(value)
	case "notifications_error_timeout":
		c.Notifications.ErrorTimeout, err = time.ParseDuration(value)
	case "server_addr":
		c.Server.Addr = value
	case "server_delay":
		c.Server.Delay, err = time.ParseDuration(value)
	case "debug", "dev_debug":
		c.Dev.Debug, err = strconv.ParseBool(value)
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown key '%s'", key), errors.ErrUnknownOption)
	}
	if err != nil {
		return errors.NewConfigError(fmt.Sprintf("invalid value '%s' for '%s'", value, key), err)
	}
	return c.Validate()
}

// ApplyOverrides applies "key=value" pairs in order
func (c *Config) ApplyOverrides(pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.NewConfigError(fmt.Sprintf("override '%s' must look like key=value", pair), nil)
		}
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch c.Highlight {
	case "none", "ansi", "html":
	default:
		return errors.NewConfigError(fmt.Sprintf("highlight must be one of none, ansi, html (got '%s')", c.Highlight), nil)
	}
	if c.PreviewLength <= 0 {
		return errors.NewConfigError("preview_length must be positive", nil)
	}
	if c.Delay < 0 || c.Server.Delay < 0 {
		return errors.NewConfigError("delay cannot be negative", nil)
	}
	if c.Notifications.Timeout <= 0 || c.Notifications.ErrorTimeout <= 0 {
		return errors.NewConfigError("notification timeouts must be positive", nil)
	}
	return nil
}
