// Package config loads the YAML configuration file.
package config

import (
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"domotic/internal/domain/model"
	"domotic/internal/domain/validation"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig `yaml:"server"`
	Store        StoreConfig  `yaml:"store"`
	Cloud        CloudConfig  `yaml:"cloud"`
	Ledger       LedgerConfig `yaml:"ledger"`
	Log          LogConfig    `yaml:"log"`
	DefaultScene *model.Scene `yaml:"default_scene" validate:"-"` // Applied to devices without a stored scene
}

type ServerConfig struct {
	Addr            string   `yaml:"addr" default:":8080" validate:"required"`
	AllowedPrefixes []string `yaml:"allowed_prefixes"` // Remote address prefixes allowed on admin routes
	ShutdownTimeout Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

func (c *ServerConfig) SetDefaults() {
	if c.AllowedPrefixes == nil {
		c.AllowedPrefixes = []string{"192.168.1."}
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(5 * time.Second)
	}
}

type StoreConfig struct {
	Path string `yaml:"path" default:"./devices.json" validate:"required"`
}

// CloudConfig contains TP-Link cloud settings
type CloudConfig struct {
	URL      string   `yaml:"url" default:"https://wap.tplinkcloud.com" validate:"required,url"`
	Token    string   `yaml:"token" validate:"required"`
	Timeout  Duration `yaml:"timeout" validate:"gt=0"`
	CacheTTL Duration `yaml:"cache_ttl"` // Device list cache, negative disables
}

func (c *CloudConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = Duration(10 * time.Second)
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = Duration(30 * time.Second)
	}
}

type LedgerConfig struct {
	Enabled         *bool    `yaml:"enabled" default:"true"`
	Path            string   `yaml:"path" default:"./domotic.sqlite"`
	Retention       Duration `yaml:"retention"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

func (c *LedgerConfig) SetDefaults() {
	if c.Retention == 0 {
		c.Retention = Duration(30 * 24 * time.Hour)
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = Duration(24 * time.Hour)
	}
}

// IsEnabled reports whether activities are recorded.
func (c LedgerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
	Colors bool   `yaml:"colors"`
}

func (c *Config) SetDefaults() {
	if c.DefaultScene == nil {
		scene := DefaultScene()
		c.DefaultScene = &scene
	}
}

// DefaultScene is the scene used when neither the store nor the file provides one.
func DefaultScene() model.Scene {
	return model.Scene{
		DurationValue: 1,
		DurationUnit:  model.DurationMinute,
		Brightness:    100,
		Temperature:   model.Int(5750),
	}
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads, expands, defaults and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "apply config defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the default scene.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	if err := v.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return errors.Errorf("invalid config field %s: failed %s", strings.TrimPrefix(errs[0].Namespace(), "Config."), errs[0].Tag())
		}
		return errors.Wrap(err, "validate config")
	}
	if c.DefaultScene != nil {
		if err := validation.New().Scene(model.DeviceTypeColorBulb, *c.DefaultScene); err != nil {
			return errors.Wrap(err, "invalid config field default_scene")
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if val := os.Getenv(parts[1]); val != "" {
			return val
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
