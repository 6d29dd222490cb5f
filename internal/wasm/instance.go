package wasm

import (
	"context"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// InstanceManager creates and manages decoder module instances.
type InstanceManager struct {
	runtime *Runtime
	logger  *zap.Logger
}

// NewInstanceManager creates a new instance manager.
func NewInstanceManager(runtime *Runtime, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime: runtime,
		logger:  logger.With(zap.String("component", "wasm-instance")),
	}
}

// Instance represents an instantiated decoder module.
type Instance struct {
	// wazero module instance.
	module api.Module

	// Instance metadata.
	ID        string
	Name      string
	CreatedAt int64

	runtime *Runtime

	// Exported functions (cached for performance).
	exports map[string]api.Function
}

// Instantiate creates a new instance from a compiled module.
// The host "env" module (guest logging) is instantiated on first use.
func (m *InstanceManager) Instantiate(ctx context.Context, moduleName string) (*Instance, error) {
	compiled, ok := m.runtime.GetCompiledModule(moduleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: moduleName}
	}

	instanceID := fmt.Sprintf("%s-%d", moduleName, time.Now().UnixNano())

	m.logger.Info("Instantiating decoder module",
		zap.String("module", moduleName),
		zap.String("instance_id", instanceID),
	)

	if err := m.runtime.EnsureHostModule(ctx); err != nil {
		return nil, fmt.Errorf("failed to set up host module: %w", err)
	}

	// Instantiate the guest module in its own sandbox. The decoder entry
	// points are plain exports, so _start is suppressed.
	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions()

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, &InstantiationError{
			ModuleName: moduleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	instance := &Instance{
		module:    module,
		ID:        instanceID,
		Name:      moduleName,
		CreatedAt: time.Now().Unix(),
		runtime:   m.runtime,
		exports:   cacheExportedFunctions(module),
	}

	// Track active instance for runtime shutdown.
	m.runtime.StoreInstance(instanceID, module)

	m.logger.Info("Decoder module instantiated",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(instance.exports)),
	)

	return instance, nil
}

// cacheExportedFunctions caches references to the decoder entry points.
// This avoids repeated lookups on every decode call.
func cacheExportedFunctions(module api.Module) map[string]api.Function {
	exports := make(map[string]api.Function)

	for _, name := range []string{
		"malloc",
		"free",
		"result_ptr",
		"decode_point_cloud",
		"create_mesh",
		"compute_mesh_config",
		"decode_mesh_to_buffer",
		"release_mesh",
	} {
		if fn := module.ExportedFunction(name); fn != nil {
			exports[name] = fn
		}
	}

	return exports
}

// Export returns a cached exported function.
func (i *Instance) Export(name string) (api.Function, error) {
	fn, ok := i.exports[name]
	if !ok {
		return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
	}
	return fn, nil
}

// HasExport reports whether the module exports the named function.
func (i *Instance) HasExport(name string) bool {
	_, ok := i.exports[name]
	return ok
}

// Memory returns a helper over the instance's linear memory.
func (i *Instance) Memory() *Memory {
	return NewMemory(i.module)
}

// Close closes the instance and releases resources.
func (i *Instance) Close(ctx context.Context) error {
	if i.runtime != nil {
		i.runtime.DeleteInstance(i.ID)
	}
	return i.module.Close(ctx)
}
