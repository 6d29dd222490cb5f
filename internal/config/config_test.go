package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.EngineBundle != "draco" {
		t.Errorf("EngineBundle = '%s', want 'draco'", cfg.EngineBundle)
	}
	if len(cfg.BundlePaths) != 1 || cfg.BundlePaths[0] != "./bundles" {
		t.Errorf("BundlePaths = %v", cfg.BundlePaths)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = '%s', want 'info'", cfg.LogLevel)
	}
	if cfg.Wasm.MemoryPages != 1024 {
		t.Errorf("Wasm.MemoryPages = %d, want 1024", cfg.Wasm.MemoryPages)
	}
	if cfg.Wasm.MaxInstances != 16 {
		t.Errorf("Wasm.MaxInstances = %d, want 16", cfg.Wasm.MaxInstances)
	}
	if cfg.Worker.QueueSize != 32 {
		t.Errorf("Worker.QueueSize = %d, want 32", cfg.Worker.QueueSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
bundle_paths:
  - /opt/draco/bundles
engine_bundle: draco-edge
log_level: debug
wasm:
  memory_pages: 2048
worker:
  queue_size: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.EngineBundle != "draco-edge" {
		t.Errorf("EngineBundle = '%s', want 'draco-edge'", cfg.EngineBundle)
	}
	if cfg.Wasm.MemoryPages != 2048 {
		t.Errorf("Wasm.MemoryPages = %d, want 2048", cfg.Wasm.MemoryPages)
	}
	if cfg.Worker.QueueSize != 8 {
		t.Errorf("Worker.QueueSize = %d, want 8", cfg.Worker.QueueSize)
	}
	// Unset keys keep their defaults.
	if cfg.Wasm.MaxInstances != 16 {
		t.Errorf("Wasm.MaxInstances = %d, want 16", cfg.Wasm.MaxInstances)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() should fail for a missing config file")
	}
}
