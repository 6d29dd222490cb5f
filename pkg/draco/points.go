package draco

import (
	"encoding/binary"
	"math"
)

// Point is one decoded point-cloud position.
type Point [3]float32

// Points reinterprets a decoded point-cloud buffer as little-endian
// float32 triples. The buffer length must be a multiple of 12 bytes
// (3 floats per point). Point order is engine-determined.
func Points(data []byte) ([]Point, error) {
	if len(data)%12 != 0 {
		return nil, &LayoutError{Index: -1, Message: "point cloud buffer length is not a multiple of 12"}
	}
	points := make([]Point, 0, len(data)/12)
	for i := 0; i < len(data); i += 12 {
		points = append(points, Point{
			math.Float32frombits(binary.LittleEndian.Uint32(data[i:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[i+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[i+8:])),
		})
	}
	return points, nil
}
