package bundle

import (
	"context"
	"fmt"
	"sync"

	"github.com/woxQAQ/go-draco/internal/engine"
	"github.com/woxQAQ/go-draco/internal/wasm"
	"go.uber.org/zap"
)

// Manager manages engine bundle lifecycle and produces engines from them.
type Manager struct {
	paths    []string
	runtime  *wasm.Runtime
	loader   *Loader
	registry *Registry
	logger   *zap.Logger

	mu     sync.RWMutex
	loaded bool
}

// NewManager creates a new bundle manager.
func NewManager(paths []string, runtime *wasm.Runtime, logger *zap.Logger) *Manager {
	return &Manager{
		paths:    paths,
		runtime:  runtime,
		loader:   NewLoader(runtime, logger),
		registry: NewRegistry(logger),
		logger:   logger.With(zap.String("component", "bundle-manager")),
	}
}

// LoadAll discovers and loads all bundles from configured paths.
func (m *Manager) LoadAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return fmt.Errorf("bundles already loaded")
	}

	m.logger.Info("Loading engine bundles",
		zap.Strings("paths", m.paths),
	)

	bundles, err := m.loader.Discover(ctx, m.paths)
	if err != nil {
		// No bundles is survivable; engines just become unavailable.
		if _, ok := err.(*NoBundlesFoundError); ok {
			m.logger.Warn("No engine bundles found in configured paths",
				zap.Strings("paths", m.paths),
			)
			m.loaded = true
			return nil
		}
		return err
	}

	for _, bundle := range bundles {
		if err := m.registry.Register(bundle); err != nil {
			m.logger.Error("Failed to register bundle",
				zap.String("name", bundle.Manifest.Name),
				zap.Error(err),
			)
			continue
		}
	}

	m.loaded = true

	m.logger.Info("Engine bundles loaded",
		zap.Int("count", len(bundles)),
	)

	return nil
}

// Get retrieves a bundle by name.
func (m *Manager) Get(name string) (*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bundle, ok := m.registry.Get(name)
	if !ok {
		return nil, &NotFoundError{BundleName: name}
	}

	return bundle, nil
}

// FindByCapability finds a bundle declaring a capability.
func (m *Manager) FindByCapability(capability string) (*Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bundles := m.registry.LookupByCapability(capability)
	if len(bundles) == 0 {
		return nil, fmt.Errorf("no bundle found with capability '%s'", capability)
	}

	// Return first match (future: support version selection)
	return bundles[0], nil
}

// NewEngine instantiates a decode engine from a registered bundle.
func (m *Manager) NewEngine(ctx context.Context, name string) (engine.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bundle, ok := m.registry.Get(name)
	if !ok {
		return nil, &engine.UnavailableError{Name: name, Err: &NotFoundError{BundleName: name}}
	}

	return engine.New(ctx, m.runtime, bundle.Manifest.Name, m.logger)
}

// Registry returns the bundle registry (for testing/inspection).
func (m *Manager) Registry() *Registry {
	return m.registry
}

// IsLoaded returns whether bundles have been loaded.
func (m *Manager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}
