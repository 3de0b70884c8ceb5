package plugin

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/infinitewater/bucket/internal/config"
	"github.com/infinitewater/bucket/pkg/permission"
	"github.com/infinitewater/bucket/pkg/refill"
	"github.com/infinitewater/bucket/pkg/registry"
)

// Name is the plugin's display name.
const Name = "Infinite Water Bucket"

// ErrNotInitialized is returned by operations that need Init to have run.
var ErrNotInitialized = errors.New("plugin not initialized")

// Plugin carries everything the hook needs: config, registry, permissions and
// the decision rule. Hosts hold one per loaded plugin instance.
type Plugin struct {
	version     string
	store       *config.PluginStore
	permissions permission.Store
	registry    *registry.Registry
	rule        *refill.Rule

	mu     sync.RWMutex
	config config.PluginConfig
	loaded bool
}

// New creates an unloaded plugin. Call Init before routing events to it.
func New(version string, store *config.PluginStore, permissions permission.Store) *Plugin {
	reg := registry.New(nil)
	return &Plugin{
		version:     version,
		store:       store,
		permissions: permissions,
		registry:    reg,
		rule:        refill.NewRule(reg, permissions),
	}
}

// Init registers the plugin's permission and loads its configuration.
func (p *Plugin) Init() error {
	if err := p.permissions.Register(permission.Use); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if _, err := p.Reload(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	log.Printf("[PLUGIN] %s v%s loaded (%d refillable items)", Name, p.version, p.registry.Len())
	return nil
}

// Reload re-reads the configuration and swaps the registry contents.
func (p *Plugin) Reload() (config.PluginConfig, error) {
	cfg, err := p.store.LoadOrCreate(p.version)
	if err != nil {
		return config.PluginConfig{}, err
	}
	p.registry.Replace(cfg.RefillableItems)

	p.mu.Lock()
	p.config = cfg
	p.loaded = true
	p.mu.Unlock()
	return cfg, nil
}

// Unload drops the active configuration; subsequent events are left alone.
func (p *Plugin) Unload() {
	p.mu.Lock()
	p.config = config.PluginConfig{}
	p.loaded = false
	p.mu.Unlock()

	p.registry.Replace(nil)
	log.Printf("[PLUGIN] %s unloaded", Name)
}

// OnItemUse is the "substance used" hook. It returns the amount the host should
// actually consume.
func (p *Plugin) OnItemUse(event refill.ConsumptionEvent) int {
	amount, _ := p.Explain(event)
	return amount
}

// Explain runs the hook and also reports why it decided as it did.
func (p *Plugin) Explain(event refill.ConsumptionEvent) (int, refill.Reason) {
	return p.rule.Explain(event)
}

// Config returns the active configuration.
func (p *Plugin) Config() (config.PluginConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.loaded {
		return config.PluginConfig{}, ErrNotInitialized
	}
	return p.config, nil
}

// Version returns the running plugin version.
func (p *Plugin) Version() string {
	return p.version
}

// Permissions returns the permission store the plugin checks against.
func (p *Plugin) Permissions() permission.Store {
	return p.permissions
}

// RefillableItems returns the active registry contents.
func (p *Plugin) RefillableItems() []string {
	return p.registry.Items()
}
