package draco

import (
	"encoding/binary"
	"math"
	"testing"
)

func encodePoints(points []Point) []byte {
	buf := make([]byte, 0, len(points)*12)
	for _, p := range points {
		for _, v := range p {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return buf
}

func quantize(p Point) [3]int32 {
	return [3]int32{
		int32(math.Round(float64(p[0]) * 1000)),
		int32(math.Round(float64(p[1]) * 1000)),
		int32(math.Round(float64(p[2]) * 1000)),
	}
}

func TestPoints(t *testing.T) {
	want := []Point{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}

	points, err := Points(encodePoints(want))
	if err != nil {
		t.Fatalf("Points() failed: %v", err)
	}

	if len(points) != len(want) {
		t.Fatalf("decoded %d points, want %d", len(points), len(want))
	}

	// Engine output order is not guaranteed; compare as sets of quantized
	// triples.
	got := make(map[[3]int32]bool)
	for _, p := range points {
		got[quantize(p)] = true
	}
	for _, p := range want {
		if !got[quantize(p)] {
			t.Errorf("missing point %v", p)
		}
	}
}

func TestPoints_BadLength(t *testing.T) {
	_, err := Points(make([]byte, 13))
	if err == nil {
		t.Fatal("Points() should reject a buffer that is not a multiple of 12")
	}
	if _, ok := err.(*LayoutError); !ok {
		t.Errorf("expected LayoutError, got %T", err)
	}
}
