package decoder

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/woxQAQ/go-draco/pkg/draco"
	"go.uber.org/zap/zaptest"
)

var fixtureBlob = []byte("encoded-mesh-fixture")

func TestDecodeMesh(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(fixtureBlob)
	d := New(eng, zaptest.NewLogger(t))

	res, err := d.DecodeMesh(ctx, fixtureBlob)
	if err != nil {
		t.Fatalf("DecodeMesh() failed: %v", err)
	}

	cfg := res.Config
	if cfg.VertexCount() != 3254 {
		t.Errorf("VertexCount() = %d, want 3254", cfg.VertexCount())
	}
	if cfg.IndexCount() != 4368 {
		t.Errorf("IndexCount() = %d, want 4368", cfg.IndexCount())
	}
	if len(cfg.Attributes()) != 3 {
		t.Fatalf("got %d attributes, want 3", len(cfg.Attributes()))
	}

	var attrTotal int
	for _, attr := range cfg.Attributes() {
		attrTotal += int(attr.Length)
	}
	if cfg.BufferSize() != int(cfg.IndexLength())+attrTotal {
		t.Errorf("BufferSize() = %d, want index %d + attributes %d",
			cfg.BufferSize(), cfg.IndexLength(), attrTotal)
	}

	if len(res.Data) != cfg.BufferSize() {
		t.Errorf("len(Data) = %d, config says %d", len(res.Data), cfg.BufferSize())
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("decoded config failed validation: %v", err)
	}
}

func TestDecodeMesh_TruncatesToWritten(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.written = eng.info.BufferSize - 100 // engine over-estimated

	res, err := New(eng, zaptest.NewLogger(t)).DecodeMesh(context.Background(), fixtureBlob)
	if err != nil {
		t.Fatalf("DecodeMesh() failed: %v", err)
	}

	if len(res.Data) != eng.written {
		t.Errorf("len(Data) = %d, want %d", len(res.Data), eng.written)
	}
	if res.Config.BufferSize() != eng.written {
		t.Errorf("BufferSize() = %d, want %d", res.Config.BufferSize(), eng.written)
	}
}

func TestDecodeMesh_RejectsMalformedInput(t *testing.T) {
	d := New(fixtureEngine(fixtureBlob), zaptest.NewLogger(t))

	for _, input := range [][]byte{nil, {}, []byte("garbage"), fixtureBlob[:5]} {
		res, err := d.DecodeMesh(context.Background(), input)
		if err == nil {
			t.Fatalf("DecodeMesh(%q) should fail", input)
		}
		if res != nil {
			t.Errorf("DecodeMesh(%q) returned a result alongside the error", input)
		}
		if _, ok := err.(*InputError); !ok {
			t.Errorf("expected InputError, got %T: %v", err, err)
		}
	}
}

func TestDecodeMesh_ConfigFailure(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.failInfo = true

	_, err := New(eng, zaptest.NewLogger(t)).DecodeMesh(context.Background(), fixtureBlob)
	if err == nil {
		t.Fatal("DecodeMesh() should fail when the config query fails")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestDecodeMesh_ZeroBytesWritten(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.failDecode = true

	_, err := New(eng, zaptest.NewLogger(t)).DecodeMesh(context.Background(), fixtureBlob)
	if err == nil {
		t.Fatal("DecodeMesh() should fail when the engine writes zero bytes")
	}
	typed, ok := err.(*InputError)
	if !ok {
		t.Fatalf("expected InputError, got %T", err)
	}
	if typed.Stage != StageDecode {
		t.Errorf("error stage = %s, want %s", typed.Stage, StageDecode)
	}
}

func TestDecodeMesh_UnknownDataTypeCode(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.info.Attributes[1].DataType = 9

	_, err := New(eng, zaptest.NewLogger(t)).DecodeMesh(context.Background(), fixtureBlob)
	if err == nil {
		t.Fatal("DecodeMesh() should fail on an unknown data type code")
	}
	typed, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("expected ConfigError, got %T", err)
	}
	var unknown *draco.UnknownDataTypeError
	if !errors.As(typed, &unknown) {
		t.Errorf("ConfigError should wrap UnknownDataTypeError, got %v", typed)
	}
}

func TestDecodeMesh_ReleasesHandleOnEveryPath(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	d := New(eng, zaptest.NewLogger(t))

	// Success path.
	if _, err := d.DecodeMesh(context.Background(), fixtureBlob); err != nil {
		t.Fatal(err)
	}

	// Failure paths: config query failure, then zero bytes written.
	eng.failInfo = true
	if _, err := d.DecodeMesh(context.Background(), fixtureBlob); err == nil {
		t.Fatal("expected config failure")
	}
	eng.failInfo = false
	eng.failDecode = true
	if _, err := d.DecodeMesh(context.Background(), fixtureBlob); err == nil {
		t.Fatal("expected decode failure")
	}

	if len(eng.meshes) != 3 {
		t.Fatalf("engine created %d handles, want 3", len(eng.meshes))
	}
	for i, mesh := range eng.meshes {
		if !mesh.closed {
			t.Errorf("mesh handle %d was never released", i)
		}
	}
}

func TestDecodeMeshAsync_CompletesInline(t *testing.T) {
	d := New(fixtureEngine(fixtureBlob), zaptest.NewLogger(t))

	ch := d.DecodeMeshAsync(context.Background(), fixtureBlob)

	// The channel must already hold the result; no goroutine is involved.
	select {
	case r := <-ch:
		if r.Err != nil {
			t.Fatalf("async decode failed: %v", r.Err)
		}
		if r.Result == nil {
			t.Fatal("async decode returned no result")
		}
	default:
		t.Fatal("async decode did not complete inline")
	}
}

func TestDecodePointCloud(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.points = []float32{0, 0, 0, 1, 1, 1, 2, 2, 2}

	out, err := New(eng, zaptest.NewLogger(t)).DecodePointCloud(context.Background(), fixtureBlob)
	if err != nil {
		t.Fatalf("DecodePointCloud() failed: %v", err)
	}

	if len(out)%12 != 0 {
		t.Fatalf("output length %d is not a multiple of 12", len(out))
	}

	points, err := draco.Points(out)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[[3]int32]bool)
	for _, p := range points {
		got[[3]int32{
			int32(math.Round(float64(p[0]) * 1000)),
			int32(math.Round(float64(p[1]) * 1000)),
			int32(math.Round(float64(p[2]) * 1000)),
		}] = true
	}
	for _, want := range [][3]int32{{0, 0, 0}, {1000, 1000, 1000}, {2000, 2000, 2000}} {
		if !got[want] {
			t.Errorf("missing point %v", want)
		}
	}
}

func TestDecodePointCloud_RejectsMalformedInput(t *testing.T) {
	eng := fixtureEngine(fixtureBlob)
	eng.points = []float32{0, 0, 0}

	_, err := New(eng, zaptest.NewLogger(t)).DecodePointCloud(context.Background(), []byte("garbage"))
	if err == nil {
		t.Fatal("DecodePointCloud() should fail on unrecognized input")
	}
	if _, ok := err.(*InputError); !ok {
		t.Errorf("expected InputError, got %T", err)
	}
}
