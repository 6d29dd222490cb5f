package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

// Memory provides safe operations on a decoder module's linear memory.
//
// Guest memory is isolated from Go's memory; every transfer is an explicit
// bounds-checked copy. Writes go through the guest's own allocator so the
// guest and host never disagree about ownership of a region.
type Memory struct {
	mem api.Memory
}

// NewMemory creates a memory helper.
func NewMemory(module api.Module) *Memory {
	return &Memory{mem: module.Memory()}
}

// Allocator reserves and releases regions of guest memory. Decoder modules
// satisfy it via their exported malloc/free.
type Allocator interface {
	Alloc(ctx context.Context, size uint32) (uint32, error)
	Free(ctx context.Context, ptr uint32) error
}

// ReadBytes copies length bytes at ptr out of guest memory.
func (m *Memory) ReadBytes(ptr, length uint32) ([]byte, error) {
	buf, ok := m.mem.Read(ptr, length)
	if !ok {
		return nil, &MemoryAccessError{Operation: "read", Address: ptr, Length: length}
	}
	// wazero returns a view into guest memory; copy so later guest calls
	// cannot mutate the result under us.
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// ReadUint32 reads a little-endian uint32 at ptr.
func (m *Memory) ReadUint32(ptr uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(ptr)
	if !ok {
		return 0, &MemoryAccessError{Operation: "read-u32", Address: ptr, Length: 4}
	}
	return v, nil
}

// WriteBytes allocates a guest region for data and copies it in. The
// caller owns the returned pointer and must release it via the allocator.
func (m *Memory) WriteBytes(ctx context.Context, alloc Allocator, data []byte) (uint32, error) {
	size := uint32(len(data))
	ptr, err := alloc.Alloc(ctx, size)
	if err != nil {
		return 0, &AllocationError{Size: size, Err: err}
	}

	if !m.mem.Write(ptr, data) {
		// Best effort: hand the region back before reporting.
		_ = alloc.Free(ctx, ptr)
		return 0, &MemoryAccessError{Operation: "write", Address: ptr, Length: size}
	}

	return ptr, nil
}

// WriteAt copies data into an already-allocated guest region.
func (m *Memory) WriteAt(ptr uint32, data []byte) error {
	if !m.mem.Write(ptr, data) {
		return &MemoryAccessError{Operation: "write", Address: ptr, Length: uint32(len(data))}
	}
	return nil
}
