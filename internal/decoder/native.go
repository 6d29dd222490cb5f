// Package decoder orchestrates Draco decodes against an engine.
//
// Two paths produce the same buffer layout for the same logical mesh: the
// native path drives a synchronous call sequence against an in-process
// engine and trusts its explicit byte ranges; the worker path round-trips
// through a message-passing worker and re-derives the ranges from shape
// alone. Cross-path layout equality is the central correctness property.
package decoder

import (
	"context"
	"errors"

	"github.com/woxQAQ/go-draco/internal/engine"
	"github.com/woxQAQ/go-draco/pkg/draco"
	"go.uber.org/zap"
)

// Decoder is the native-path orchestrator. Each call is self-contained;
// a Decoder is safe for concurrent use if its engine is.
type Decoder struct {
	engine engine.Engine
	logger *zap.Logger
}

// New creates a native-path decoder on top of an engine.
func New(eng engine.Engine, logger *zap.Logger) *Decoder {
	return &Decoder{
		engine: eng,
		logger: logger.With(zap.String("component", "decoder")),
	}
}

// DecodeMesh decodes an encoded mesh blob into a buffer plus its layout.
//
// The engine reports the full layout up front (explicit mode), the buffer
// is preallocated to exactly that size, and after decoding both the buffer
// and the config are truncated to the bytes actually written.
func (d *Decoder) DecodeMesh(ctx context.Context, data []byte) (*draco.MeshDecodeResult, error) {
	if len(data) == 0 {
		return nil, &InputError{Stage: StageInput, Err: errors.New("empty input")}
	}

	mesh, err := d.engine.NewMesh(ctx, data)
	if err != nil {
		return nil, &InputError{Stage: StageCreateMesh, Err: err}
	}
	// The handle is uniquely owned; release it on every exit path.
	defer func() {
		if closeErr := mesh.Close(ctx); closeErr != nil {
			d.logger.Warn("Failed to release mesh handle", zap.Error(closeErr))
		}
	}()

	info, err := mesh.Info(ctx)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	config, err := configFromInfo(info)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, info.BufferSize)
	written, err := mesh.DecodeInto(ctx, buf)
	if err != nil {
		return nil, &InputError{Stage: StageDecode, Err: err}
	}
	if written == 0 {
		return nil, &InputError{Stage: StageDecode, Err: errors.New("engine wrote zero bytes")}
	}

	// The reported buffer size is an upper bound; keep data and config in
	// agreement with what was actually written.
	buf = buf[:written]
	config.SetBufferSize(written)

	d.logger.Debug("Mesh decoded",
		zap.Uint32("vertex_count", config.VertexCount()),
		zap.Uint32("index_count", config.IndexCount()),
		zap.Int("buffer_size", config.BufferSize()),
		zap.Int("attributes", len(config.Attributes())),
	)

	return &draco.MeshDecodeResult{Data: buf, Config: config}, nil
}

// DecodeMeshAsync is the async flavor of DecodeMesh. Decoding is
// synchronous CPU work, so the returned channel completes inline.
func (d *Decoder) DecodeMeshAsync(ctx context.Context, data []byte) <-chan Result {
	out := make(chan Result, 1)
	res, err := d.DecodeMesh(ctx, data)
	out <- Result{Result: res, Err: err}
	close(out)
	return out
}

// Result pairs a decode outcome with its error for channel delivery.
type Result struct {
	Result *draco.MeshDecodeResult
	Err    error
}

// DecodePointCloud decodes a self-contained point cloud: little-endian
// float32 triples, 3 per point, in engine-determined order.
func (d *Decoder) DecodePointCloud(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &InputError{Stage: StageInput, Err: errors.New("empty input")}
	}

	out, err := d.engine.DecodePointCloud(ctx, data)
	if err != nil {
		return nil, &InputError{Stage: StagePointCloud, Err: err}
	}
	if len(out)%12 != 0 {
		return nil, &InputError{Stage: StagePointCloud, Err: errors.New("output is not a whole number of points")}
	}

	return out, nil
}

// configFromInfo builds an explicit-mode config from engine-reported
// ranges. Unknown data type codes are a hard error, never a guess.
func configFromInfo(info *engine.MeshInfo) (*draco.Config, error) {
	config := draco.NewConfigWithBufferSize(info.VertexCount, info.IndexCount, info.BufferSize)

	for _, attr := range info.Attributes {
		dataType, err := draco.ParseDataType(attr.DataType)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		if err := config.AddAttributeAt(attr.Dim, dataType, attr.Offset, attr.Length); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	return config, nil
}
