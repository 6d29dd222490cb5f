package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"

	"github.com/woxQAQ/go-draco/internal/engine"
)

// fakeEngine is a deterministic stand-in for the Draco engine. It treats
// any input equal to wantInput as the fixture mesh/point cloud and rejects
// everything else, the way the real engine rejects malformed blobs.
type fakeEngine struct {
	wantInput []byte

	// Fixture mesh reported by Info.
	info engine.MeshInfo

	// Bytes DecodeInto claims to have written. Defaults to
	// info.BufferSize when zero and failDecode is unset.
	written    int
	failInfo   bool
	failDecode bool

	// Fixture point cloud.
	points []float32

	// Every handle ever created, so tests can assert release.
	meshes []*fakeMesh

	closed bool
}

func (f *fakeEngine) DecodePointCloud(ctx context.Context, data []byte) ([]byte, error) {
	if !bytes.Equal(data, f.wantInput) {
		return nil, errors.New("unrecognized point cloud blob")
	}
	out := make([]byte, 0, len(f.points)*4)
	for _, v := range f.points {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out, nil
}

func (f *fakeEngine) NewMesh(ctx context.Context, data []byte) (engine.Mesh, error) {
	if !bytes.Equal(data, f.wantInput) {
		return nil, errors.New("unrecognized mesh blob")
	}
	mesh := &fakeMesh{engine: f}
	f.meshes = append(f.meshes, mesh)
	return mesh, nil
}

func (f *fakeEngine) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

type fakeMesh struct {
	engine *fakeEngine
	closed bool
}

func (m *fakeMesh) Info(ctx context.Context) (*engine.MeshInfo, error) {
	if m.engine.failInfo {
		return nil, errors.New("config query failed")
	}
	info := m.engine.info
	info.Attributes = append([]engine.AttributeInfo(nil), m.engine.info.Attributes...)
	return &info, nil
}

func (m *fakeMesh) DecodeInto(ctx context.Context, buf []byte) (int, error) {
	if m.engine.failDecode {
		return 0, nil
	}
	written := m.engine.written
	if written == 0 {
		written = m.engine.info.BufferSize
	}
	for i := 0; i < written && i < len(buf); i++ {
		buf[i] = byte(i)
	}
	return written, nil
}

func (m *fakeMesh) Close(ctx context.Context) error {
	m.closed = true
	return nil
}

// fixtureEngine returns a fake engine describing a mesh with
// vertex_count=3254, index_count=4368 and three float32 attributes laid
// out contiguously after the 16-bit index segment.
func fixtureEngine(input []byte) *fakeEngine {
	const vertexCount, indexCount = 3254, 4368
	const indexLength = indexCount * 2

	attrs := []engine.AttributeInfo{
		{Dim: 3, DataType: 6}, // position
		{Dim: 3, DataType: 6}, // normal
		{Dim: 2, DataType: 6}, // texcoord
	}
	offset := uint32(indexLength)
	for i := range attrs {
		attrs[i].Offset = offset
		attrs[i].Length = attrs[i].Dim * vertexCount * 4
		offset += attrs[i].Length
	}

	return &fakeEngine{
		wantInput: input,
		info: engine.MeshInfo{
			VertexCount: vertexCount,
			IndexCount:  indexCount,
			BufferSize:  int(offset),
			Attributes:  attrs,
		},
	}
}
