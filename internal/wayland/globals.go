package wayland

import (
	"fmt"
	"slices"
	"time"

	"github.com/yaslama/go-wayland/wayland/client"
)

// Global is a global object advertised by the compositor.
type Global struct {
	Name      uint32
	Interface string
	Version   uint32
}

// Globals tracks what wl_registry advertises.
type Globals struct {
	registry *client.Registry
	globals  []Global
}

// Globals requests the registry and waits for the initial burst of globals.
func (c *Conn) Globals(timeout time.Duration) (*Globals, error) {
	registry, err := c.GetRegistry()
	if err != nil {
		return nil, err
	}

	g := &Globals{registry: registry}
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		g.globals = append(g.globals, Global{
			Name:      e.Name,
			Interface: e.Interface,
			Version:   e.Version,
		})
	})
	registry.SetGlobalRemoveHandler(func(e client.RegistryGlobalRemoveEvent) {
		g.globals = slices.DeleteFunc(g.globals, func(global Global) bool { return global.Name == e.Name })
	})

	if err := c.Roundtrip(timeout); err != nil {
		return nil, err
	}

	return g, nil
}

// List returns every advertised global.
func (g *Globals) List() []Global {
	return slices.Clone(g.globals)
}

// Find returns the first global implementing iface.
func (g *Globals) Find(iface string) (Global, error) {
	for _, global := range g.globals {
		if global.Interface == iface {
			return global, nil
		}
	}
	return Global{}, fmt.Errorf("%s: %w", iface, ErrGlobalNotFound)
}

// Bind binds p, which must already be registered on the connection, to the
// global implementing iface. The version is clamped to what the compositor
// advertises and must be at least minVersion.
func (g *Globals) Bind(iface string, minVersion, maxVersion uint32, p client.Proxy) (uint32, error) {
	global, err := g.Find(iface)
	if err != nil {
		return 0, err
	}

	version := min(global.Version, maxVersion)
	if version < minVersion {
		return 0, fmt.Errorf("%s: version %d is older than %d", iface, global.Version, minVersion)
	}

	if err := g.registry.Bind(global.Name, global.Interface, version, p); err != nil {
		return 0, err
	}
	return version, nil
}
