package provider

import (
	"fmt"

	"github.com/repodocai/repodoc/internal/config"
)

// Constructor builds a Backend from its configuration section.
type Constructor func(cfg config.BackendConfig) (Backend, error)

// registry holds registered backend constructors.
var registry = map[string]Constructor{}

// Register registers a backend constructor by name. Backend packages
// call this from init.
func Register(name string, constructor Constructor) {
	registry[name] = constructor
}

// New creates a Backend based on the given configuration.
func New(cfg config.BackendConfig) (Backend, error) {
	constructor, ok := registry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown backend provider: %q", cfg.Provider)
	}
	return constructor(cfg)
}
