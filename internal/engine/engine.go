// Package engine defines the capability surface of an external Draco
// decode engine and provides a wazero-sandboxed implementation of it.
//
// The interfaces are deliberately narrow so orchestration code and tests
// can substitute a fake engine without touching any global state.
package engine

import (
	"context"
)

// AttributeInfo is one attribute as reported by the engine: shape plus the
// byte range the engine assigned inside the decoded buffer. DataType is
// the raw wire code (0..6); interpreting it is the caller's job.
type AttributeInfo struct {
	Dim      uint32
	DataType uint32
	Offset   uint32
	Length   uint32
}

// MeshInfo is the engine-computed decode metadata for one mesh.
type MeshInfo struct {
	VertexCount uint32
	IndexCount  uint32
	BufferSize  int
	Attributes  []AttributeInfo
}

// Mesh is an opaque engine-side mesh handle. It is uniquely owned by its
// creator and must be closed on every exit path, including failures.
type Mesh interface {
	// Info queries the engine for the mesh layout metadata.
	Info(ctx context.Context) (*MeshInfo, error)

	// DecodeInto decodes the mesh into buf and returns the number of
	// bytes written. buf must hold at least MeshInfo.BufferSize bytes;
	// the engine may write less than it estimated.
	DecodeInto(ctx context.Context, buf []byte) (int, error)

	// Close releases the engine-side handle. Idempotent.
	Close(ctx context.Context) error
}

// Engine decodes Draco-encoded blobs.
type Engine interface {
	// DecodePointCloud decodes a self-contained point cloud: the result
	// is little-endian float32 position triples with no layout config.
	DecodePointCloud(ctx context.Context, data []byte) ([]byte, error)

	// NewMesh parses the encoded blob into an opaque mesh handle.
	NewMesh(ctx context.Context, data []byte) (Mesh, error)

	// Close releases the engine.
	Close(ctx context.Context) error
}
