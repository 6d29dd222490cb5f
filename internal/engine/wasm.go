package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/woxQAQ/go-draco/internal/wasm"
	"go.uber.org/zap"
)

// requiredExports are the guest functions every decoder module must
// provide. Missing any of them makes the engine unavailable.
var requiredExports = []string{
	"malloc",
	"free",
	"result_ptr",
	"decode_point_cloud",
	"create_mesh",
	"compute_mesh_config",
	"decode_mesh_to_buffer",
	"release_mesh",
}

// WasmEngine runs the Draco decoder compiled to WebAssembly inside a
// wazero sandbox. All engine state lives in guest memory; the host only
// moves bytes across the boundary.
//
// Guest instances are single-threaded, so every call sequence holds the
// engine mutex for its duration.
type WasmEngine struct {
	name     string
	instance *wasm.Instance
	mem      *wasm.Memory
	logger   *zap.Logger

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// New instantiates a decoder engine from a compiled module in the runtime
// cache.
func New(ctx context.Context, runtime *wasm.Runtime, moduleName string, logger *zap.Logger) (*WasmEngine, error) {
	instance, err := wasm.NewInstanceManager(runtime, logger).Instantiate(ctx, moduleName)
	if err != nil {
		return nil, &UnavailableError{Name: moduleName, Err: err}
	}

	for _, name := range requiredExports {
		if !instance.HasExport(name) {
			closeErr := instance.Close(ctx)
			if closeErr != nil {
				logger.Warn("Failed to close incomplete engine instance", zap.Error(closeErr))
			}
			return nil, &UnavailableError{
				Name: moduleName,
				Err:  fmt.Errorf("module does not export '%s'", name),
			}
		}
	}

	return &WasmEngine{
		name:     moduleName,
		instance: instance,
		mem:      instance.Memory(),
		logger:   logger.With(zap.String("component", "wasm-engine"), zap.String("engine", moduleName)),
	}, nil
}

// call invokes a guest export returning a single value.
func (e *WasmEngine) call(ctx context.Context, name string, params ...uint64) (uint64, error) {
	fn, err := e.instance.Export(name)
	if err != nil {
		return 0, &CallError{Function: name, Err: err}
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, &CallError{Function: name, Err: err}
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0], nil
}

// Alloc reserves a guest region via the module's exported malloc.
func (e *WasmEngine) Alloc(ctx context.Context, size uint32) (uint32, error) {
	ptr, err := e.call(ctx, "malloc", uint64(size))
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, &CallError{Function: "malloc"}
	}
	return uint32(ptr), nil
}

// Free releases a guest region via the module's exported free.
func (e *WasmEngine) Free(ctx context.Context, ptr uint32) error {
	_, err := e.call(ctx, "free", uint64(ptr))
	return err
}

// writeInput copies an encoded blob into guest memory. The returned
// release func must run before the engine mutex is given up.
func (e *WasmEngine) writeInput(ctx context.Context, data []byte) (uint32, func(), error) {
	ptr, err := e.mem.WriteBytes(ctx, e, data)
	if err != nil {
		return 0, nil, err
	}
	release := func() {
		if freeErr := e.Free(ctx, ptr); freeErr != nil {
			e.logger.Warn("Failed to free guest input buffer", zap.Error(freeErr))
		}
	}
	return ptr, release, nil
}

// readResult copies length bytes out of the guest's scratch result buffer.
func (e *WasmEngine) readResult(ctx context.Context, length uint32) ([]byte, error) {
	ptr, err := e.call(ctx, "result_ptr")
	if err != nil {
		return nil, err
	}
	return e.mem.ReadBytes(uint32(ptr), length)
}

// DecodePointCloud decodes a point cloud into raw float32 position
// triples.
func (e *WasmEngine) DecodePointCloud(ctx context.Context, data []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ptr, release, err := e.writeInput(ctx, data)
	if err != nil {
		return nil, err
	}
	defer release()

	outLen, err := e.call(ctx, "decode_point_cloud", uint64(ptr), uint64(len(data)))
	if err != nil {
		return nil, err
	}
	if outLen == 0 {
		return nil, &CallError{Function: "decode_point_cloud"}
	}

	return e.readResult(ctx, uint32(outLen))
}

// NewMesh parses the encoded blob into a guest-side mesh handle.
func (e *WasmEngine) NewMesh(ctx context.Context, data []byte) (Mesh, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ptr, release, err := e.writeInput(ctx, data)
	if err != nil {
		return nil, err
	}
	defer release()

	id, err := e.call(ctx, "create_mesh", uint64(ptr), uint64(len(data)))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, &CallError{Function: "create_mesh"}
	}

	return &wasmMesh{engine: e, id: uint32(id)}, nil
}

// Close releases the engine instance. Idempotent.
func (e *WasmEngine) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		e.closeErr = e.instance.Close(ctx)
	})
	return e.closeErr
}

// wasmMesh is a uniquely-owned guest mesh handle.
type wasmMesh struct {
	engine *WasmEngine
	id     uint32

	closeOnce sync.Once
	closeErr  error
}

// Info queries and parses the engine-computed mesh config.
func (m *wasmMesh) Info(ctx context.Context) (*MeshInfo, error) {
	e := m.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	cfgLen, err := e.call(ctx, "compute_mesh_config", uint64(m.id))
	if err != nil {
		return nil, err
	}
	if cfgLen == 0 {
		return nil, &CallError{Function: "compute_mesh_config"}
	}

	raw, err := e.readResult(ctx, uint32(cfgLen))
	if err != nil {
		return nil, err
	}

	return parseMeshInfo(raw)
}

// DecodeInto decodes the mesh through a guest staging buffer into buf.
func (m *wasmMesh) DecodeInto(ctx context.Context, buf []byte) (int, error) {
	e := m.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	outPtr, err := e.Alloc(ctx, uint32(len(buf)))
	if err != nil {
		return 0, err
	}
	defer func() {
		if freeErr := e.Free(ctx, outPtr); freeErr != nil {
			e.logger.Warn("Failed to free guest output buffer", zap.Error(freeErr))
		}
	}()

	written, err := e.call(ctx, "decode_mesh_to_buffer", uint64(m.id), uint64(outPtr), uint64(len(buf)))
	if err != nil {
		return 0, err
	}
	if written > uint64(len(buf)) {
		return 0, &MalformedConfigError{
			Reason: fmt.Sprintf("engine reported %d bytes written into a %d byte buffer", written, len(buf)),
		}
	}
	if written == 0 {
		return 0, nil
	}

	out, err := e.mem.ReadBytes(outPtr, uint32(written))
	if err != nil {
		return 0, err
	}
	copy(buf, out)

	return int(written), nil
}

// Close releases the guest handle. Idempotent.
func (m *wasmMesh) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		e := m.engine
		e.mu.Lock()
		defer e.mu.Unlock()
		_, m.closeErr = e.call(ctx, "release_mesh", uint64(m.id))
	})
	return m.closeErr
}

// Serialized mesh config layout, all fields little-endian uint32:
// header {vertex_count, index_count, buffer_size, attribute_count}
// followed by attribute_count records of {dim, data_type, offset, length}.
const (
	configHeaderSize = 16
	attrRecordSize   = 16
)

func parseMeshInfo(raw []byte) (*MeshInfo, error) {
	if len(raw) < configHeaderSize {
		return nil, &MalformedConfigError{
			Reason: fmt.Sprintf("config blob is %d bytes, header needs %d", len(raw), configHeaderSize),
		}
	}

	info := &MeshInfo{
		VertexCount: binary.LittleEndian.Uint32(raw[0:]),
		IndexCount:  binary.LittleEndian.Uint32(raw[4:]),
		BufferSize:  int(binary.LittleEndian.Uint32(raw[8:])),
	}

	attrCount := binary.LittleEndian.Uint32(raw[12:])
	want := configHeaderSize + int(attrCount)*attrRecordSize
	if len(raw) != want {
		return nil, &MalformedConfigError{
			Reason: fmt.Sprintf("config blob is %d bytes, %d attributes need %d", len(raw), attrCount, want),
		}
	}

	info.Attributes = make([]AttributeInfo, 0, attrCount)
	for i := 0; i < int(attrCount); i++ {
		rec := raw[configHeaderSize+i*attrRecordSize:]
		info.Attributes = append(info.Attributes, AttributeInfo{
			Dim:      binary.LittleEndian.Uint32(rec[0:]),
			DataType: binary.LittleEndian.Uint32(rec[4:]),
			Offset:   binary.LittleEndian.Uint32(rec[8:]),
			Length:   binary.LittleEndian.Uint32(rec[12:]),
		})
	}

	return info, nil
}
