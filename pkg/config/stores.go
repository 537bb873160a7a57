package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/propstore/propstore/pkg/registry"
	"github.com/propstore/propstore/pkg/transient"
)

// StoreDefinition declares one store created at startup.
type StoreDefinition struct {
	// Name is the registry name of the store.
	Name string `mapstructure:"name" yaml:"name"`

	// Props are the property descriptors; requests address them by index.
	Props []string `mapstructure:"props" yaml:"props"`

	// Timeout is the idle lifetime of an entry. Default: 5m.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// LockTimeout is the maximum lock age before it stops blocking.
	// Must not exceed half of Timeout. Default: 30s.
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
}

// Validate checks the definition.
func (d *StoreDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("store name is required")
	}
	if len(d.Props) == 0 {
		return fmt.Errorf("at least one property descriptor is required")
	}
	for i, p := range d.Props {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("props[%d] must not be empty", i)
		}
	}
	return d.storeConfig().Validate()
}

func (d *StoreDefinition) storeConfig() transient.Config {
	cfg := transient.DefaultStoreConfig()
	if d.Timeout != 0 {
		cfg.TimeOut = d.Timeout
	}
	if d.LockTimeout != 0 {
		cfg.LockTimeOut = d.LockTimeout
	}
	return cfg
}

// BuildStores creates and registers every declared store. newMetrics builds
// the per-store metrics receiver and may be nil.
func BuildStores(cfg *Config, reg *registry.Registry, newMetrics func(string) transient.StoreMetrics) error {
	for i := range cfg.Stores {
		def := &cfg.Stores[i]

		var sm transient.StoreMetrics
		if newMetrics != nil {
			sm = newMetrics(def.Name)
		}
		store, err := transient.NewStore(def.Name, def.Props, def.storeConfig(), sm)
		if err != nil {
			return fmt.Errorf("store %q: %w", def.Name, err)
		}
		if err := reg.Add(def.Name, store); err != nil {
			return fmt.Errorf("store %q: %w", def.Name, err)
		}
	}
	return nil
}
