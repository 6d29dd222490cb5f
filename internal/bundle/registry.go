package bundle

import (
	"sync"

	"go.uber.org/zap"
)

// Registry manages loaded engine bundles.
type Registry struct {
	sync.RWMutex
	bundles      map[string]*Bundle   // name -> bundle
	byCapability map[string][]*Bundle // capability -> bundles
	logger       *zap.Logger
}

// NewRegistry creates a new bundle registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		bundles:      make(map[string]*Bundle),
		byCapability: make(map[string][]*Bundle),
		logger:       logger.With(zap.String("component", "bundle-registry")),
	}
}

// Register adds a bundle to the registry.
func (r *Registry) Register(bundle *Bundle) error {
	r.Lock()
	defer r.Unlock()

	name := bundle.Manifest.Name

	if _, exists := r.bundles[name]; exists {
		return &AlreadyRegisteredError{BundleName: name}
	}

	r.bundles[name] = bundle

	for _, capability := range bundle.Manifest.Capabilities {
		r.byCapability[capability] = append(r.byCapability[capability], bundle)
	}

	r.logger.Info("Bundle registered",
		zap.String("name", name),
		zap.Strings("capabilities", bundle.Manifest.Capabilities),
	)

	return nil
}

// Get retrieves a bundle by name.
func (r *Registry) Get(name string) (*Bundle, bool) {
	r.RLock()
	defer r.RUnlock()

	bundle, ok := r.bundles[name]
	return bundle, ok
}

// LookupByCapability finds bundles declaring a capability.
func (r *Registry) LookupByCapability(capability string) []*Bundle {
	r.RLock()
	defer r.RUnlock()

	bundles, ok := r.byCapability[capability]
	if !ok || len(bundles) == 0 {
		return []*Bundle{}
	}
	// Return copy to avoid race conditions
	result := make([]*Bundle, len(bundles))
	copy(result, bundles)
	return result
}

// List returns all registered bundles.
func (r *Registry) List() []*Bundle {
	r.RLock()
	defer r.RUnlock()

	result := make([]*Bundle, 0, len(r.bundles))
	for _, bundle := range r.bundles {
		result = append(result, bundle)
	}
	return result
}

// Unregister removes a bundle from the registry.
func (r *Registry) Unregister(name string) {
	r.Lock()
	defer r.Unlock()

	bundle, ok := r.bundles[name]
	if !ok {
		return
	}

	for _, capability := range bundle.Manifest.Capabilities {
		entries := r.byCapability[capability]
		for i, b := range entries {
			if b.Manifest.Name == name {
				r.byCapability[capability] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}

	delete(r.bundles, name)

	r.logger.Info("Bundle unregistered", zap.String("name", name))
}

// Count returns the number of registered bundles.
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.bundles)
}
