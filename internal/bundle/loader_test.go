package bundle

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/woxQAQ/go-draco/internal/wasm"
	"go.uber.org/zap/zaptest"
)

func newTestRuntime(t *testing.T) *wasm.Runtime {
	t.Helper()
	runtime, err := wasm.NewRuntime(context.Background(), zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		runtime.Close(context.Background())
	})
	return runtime
}

func TestLoadBundle(t *testing.T) {
	runtime := newTestRuntime(t)
	loader := NewLoader(runtime, zaptest.NewLogger(t))

	b, err := loader.LoadBundle(context.Background(), filepath.Join("testdata", "bundles", "valid-draco"))
	if err != nil {
		t.Fatalf("LoadBundle() failed: %v", err)
	}

	if b.Name() != "draco" {
		t.Errorf("bundle name = '%s', want 'draco'", b.Name())
	}
	if !b.HasCapability(CapabilityMesh) || !b.HasCapability(CapabilityPointCloud) {
		t.Errorf("bundle missing declared capabilities: %v", b.Manifest.Capabilities)
	}

	// The compiled module must be cached under the bundle name so engines
	// can be instantiated from it later.
	if _, ok := runtime.GetCompiledModule("draco"); !ok {
		t.Error("compiled module not cached under the bundle name")
	}
}

func TestLoadBundle_BadManifest(t *testing.T) {
	runtime := newTestRuntime(t)
	loader := NewLoader(runtime, zaptest.NewLogger(t))

	_, err := loader.LoadBundle(context.Background(), filepath.Join("testdata", "bundles", "missing-fields"))
	if err == nil {
		t.Fatal("LoadBundle() should fail on an invalid manifest")
	}
}

func TestDiscover(t *testing.T) {
	runtime := newTestRuntime(t)
	loader := NewLoader(runtime, zaptest.NewLogger(t))

	// The directory holds one valid bundle and several broken ones; the
	// valid one must load and the rest must be skipped with diagnostics.
	bundles, err := loader.Discover(context.Background(), []string{filepath.Join("testdata", "bundles")})
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(bundles) != 1 {
		t.Fatalf("Discover() loaded %d bundles, want 1", len(bundles))
	}
	if bundles[0].Name() != "draco" {
		t.Errorf("loaded bundle '%s', want 'draco'", bundles[0].Name())
	}
}

func TestDiscover_NoBundles(t *testing.T) {
	runtime := newTestRuntime(t)
	loader := NewLoader(runtime, zaptest.NewLogger(t))

	_, err := loader.Discover(context.Background(), []string{t.TempDir(), "/nonexistent/path"})
	if err == nil {
		t.Fatal("Discover() should fail when no bundles exist")
	}
	if _, ok := err.(*NoBundlesFoundError); !ok {
		t.Errorf("expected NoBundlesFoundError, got %T", err)
	}
}
