package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/infinitewater/bucket/pkg/registry"
)

// CurrentVersion is the running plugin version stamped into migrated configs.
const CurrentVersion = "1.0.1"

// PluginConfig is the persisted, versioned plugin configuration.
type PluginConfig struct {
	Version         string   `yaml:"version" json:"version" validate:"required"`
	RefillableItems []string `yaml:"refillable_items" json:"refillable_items" validate:"dive,required"`
}

// DefaultPluginConfig returns the full default configuration stamped with version.
func DefaultPluginConfig(version string) PluginConfig {
	return PluginConfig{
		Version: version,
		RefillableItems: []string{
			"bucket.water",
			"water jug",
			"small water bottle",
			"waterskin",
		},
	}
}

// migration upgrades a config that predates version.
type migration struct {
	version string
	apply   func(cfg PluginConfig, running string) PluginConfig
}

// migrations run in order for every step whose version is newer than the stored one.
var migrations = []migration{
	{
		// Pre-release layouts are not worth salvaging.
		version: "1.0.0",
		apply: func(_ PluginConfig, running string) PluginConfig {
			return DefaultPluginConfig(running)
		},
	},
	{
		version: "1.0.1",
		apply: func(cfg PluginConfig, _ string) PluginConfig {
			if !slices.Contains(cfg.RefillableItems, "waterskin") {
				cfg.RefillableItems = append(cfg.RefillableItems, "waterskin")
			}
			return cfg
		},
	},
}

// Migrate upgrades old to the running version. It reports whether anything
// changed; a config that is already current is returned as is.
func Migrate(old PluginConfig, running string) (PluginConfig, bool) {
	if CompareVersions(old.Version, running) >= 0 {
		return old, false
	}

	cfg := PluginConfig{
		Version:         old.Version,
		RefillableItems: slices.Clone(old.RefillableItems),
	}
	for _, m := range migrations {
		if CompareVersions(old.Version, m.version) < 0 && CompareVersions(m.version, running) <= 0 {
			cfg = m.apply(cfg, running)
		}
	}
	cfg.Version = running
	return cfg, true
}

// CompareVersions orders two version strings. Valid semantic versions
// ("1.0.1", "v1.0.1") are compared numerically; anything else falls back to
// plain string comparison.
func CompareVersions(a, b string) int {
	va, vb := canonicalVersion(a), canonicalVersion(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}

func canonicalVersion(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// PluginStore persists the plugin configuration as YAML.
type PluginStore struct {
	path string
}

// NewPluginStore creates a store for the document at path.
func NewPluginStore(path string) *PluginStore {
	return &PluginStore{path: path}
}

// Path returns the location of the backing file.
func (s *PluginStore) Path() string {
	return s.path
}

// LoadOrCreate reads the stored config, migrating it to running when it is
// older. A missing or unreadable document is replaced by the defaults. The
// result is always written back.
func (s *PluginStore) LoadOrCreate(running string) (PluginConfig, error) {
	cfg, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[CONFIG] %s is unreadable, generating defaults: %v", s.path, err)
		} else {
			log.Printf("[CONFIG] creating default configuration at %s", s.path)
		}
		cfg = DefaultPluginConfig(running)
	} else if migrated, changed := Migrate(cfg, running); changed {
		log.Printf("[CONFIG] config changes detected, updating...")
		log.Printf("[CONFIG] config update complete, updated from version %s to %s", cfg.Version, running)
		cfg = migrated
	}

	cfg.RefillableItems = registry.Dedupe(cfg.RefillableItems)
	if err := ValidatePlugin(cfg); err != nil {
		return PluginConfig{}, err
	}

	if err := s.Save(cfg); err != nil {
		return PluginConfig{}, err
	}
	return cfg, nil
}

// Save writes cfg to the backing file, creating directories as needed.
func (s *PluginStore) Save(cfg PluginConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal plugin config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write plugin config: %w", err)
	}
	return nil
}

func (s *PluginStore) read() (PluginConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return PluginConfig{}, err
	}

	var cfg PluginConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PluginConfig{}, fmt.Errorf("failed to parse plugin config: %w", err)
	}
	if cfg.Version == "" && cfg.RefillableItems == nil {
		return PluginConfig{}, fmt.Errorf("plugin config is empty")
	}
	return cfg, nil
}

// ValidatePlugin checks a plugin config after migration.
func ValidatePlugin(cfg PluginConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
