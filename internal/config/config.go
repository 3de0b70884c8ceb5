package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// validate is shared; building a validator caches struct metadata.
var validate = validator.New()

// Config holds all configuration for the host bridge server.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Redis       RedisConfig       `yaml:"redis"`
	Plugin      PluginSettings    `yaml:"plugin"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port       string `yaml:"port" validate:"required"`
	HookSecret string `yaml:"hook_secret"` // Empty disables hook authentication
}

// PermissionsConfig selects the permission backend.
type PermissionsConfig struct {
	Strategy   string `yaml:"strategy" validate:"oneof=memory redis sqlite"`
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Strategy sqlite"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db" validate:"gte=0"`
	KeyPrefix string `yaml:"key_prefix"`
}

// PluginSettings points at the versioned plugin configuration document.
type PluginSettings struct {
	ConfigPath string `yaml:"config_path" validate:"required"`
	Version    string `yaml:"version" validate:"required"`
}

// Load reads a YAML config file, applies defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills in defaults and checks the result.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		c.Server.Port = ":8081"
	}
	if c.Permissions.Strategy == "" {
		c.Permissions.Strategy = "memory"
	}
	if c.Plugin.ConfigPath == "" {
		c.Plugin.ConfigPath = "config/InfiniteWaterBucket.yaml"
	}
	if c.Plugin.Version == "" {
		c.Plugin.Version = CurrentVersion
	}
	if c.Permissions.Strategy == "redis" && c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
