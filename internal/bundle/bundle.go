package bundle

import (
	"time"

	"github.com/woxQAQ/go-draco/internal/wasm"
)

// Capabilities an engine bundle may declare.
const (
	CapabilityMesh       = "mesh"
	CapabilityPointCloud = "point_cloud"
)

// Bundle represents a loaded engine bundle: its manifest and the compiled
// decoder module.
type Bundle struct {
	// Manifest is the parsed bundle metadata
	Manifest *Manifest

	// Compiled is the compiled decoder module
	Compiled *wasm.CompiledModule

	// LoadedAt is the timestamp when the bundle was loaded
	LoadedAt time.Time
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.Manifest.Name
}

// Version returns the bundle version.
func (b *Bundle) Version() string {
	return b.Manifest.Version
}

// HasCapability reports whether the bundle declares the capability.
func (b *Bundle) HasCapability(capability string) bool {
	for _, c := range b.Manifest.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
