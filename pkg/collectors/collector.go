// Package collectors keeps the set of network counter sources selectable at startup.
package collectors

import (
	"fmt"
	"strings"

	"github.com/danpilch/netspeed/pkg/collectors/network"
)

// Registry holds all registered counter sources.
type Registry struct {
	sources []network.Source
}

// NewRegistry creates a new source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make([]network.Source, 0),
	}
}

// Default returns a registry with the built-in sources. procMount is passed to the netdev source.
func Default(procMount string) *Registry {
	r := NewRegistry()
	r.Register(network.NewPsutil())
	r.Register(network.NewNetDev(procMount))
	return r
}

// Register adds a source to the registry.
func (r *Registry) Register(s network.Source) {
	r.sources = append(r.sources, s)
}

// Sources returns all registered sources.
func (r *Registry) Sources() []network.Source {
	return r.sources
}

// Names returns the names of all registered sources in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

// GetByName returns a source by name, or nil if not found.
func (r *Registry) GetByName(name string) network.Source {
	for _, s := range r.sources {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Lookup is GetByName with an error listing the valid names.
func (r *Registry) Lookup(name string) (network.Source, error) {
	if s := r.GetByName(name); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("unknown source %q: must be one of %s", name, strings.Join(r.Names(), ", "))
}
