package draco

import (
	"math"
)

type configMode int

const (
	autoOffset configMode = iota
	explicitOffset
)

func (m configMode) String() string {
	if m == explicitOffset {
		return "explicit-offset"
	}
	return "auto-offset"
}

// Config describes the layout of a decoded mesh buffer: the index segment
// first, then each attribute segment.
//
// A Config is built in one of two modes which must never be mixed on the
// same instance:
//
//   - auto-offset (NewConfig): only attribute shape is known; offsets are
//     derived by appending each attribute at the current end of the buffer.
//   - explicit (NewConfigWithBufferSize): the engine already knows the true
//     total size and every attribute's byte range; values are trusted
//     verbatim.
//
// Both modes must describe the identical layout for the same logical mesh.
type Config struct {
	vertexCount uint32
	indexCount  uint32
	indexLength uint32
	bufferSize  int
	attributes  []MeshAttribute
	mode        configMode
}

// indexLengthFor returns the byte length of the index segment. Index
// elements use the narrowest fixed width that fits: 16-bit when every index
// fits in a uint16, 32-bit otherwise.
func indexLengthFor(indexCount uint32) uint32 {
	if indexCount <= math.MaxUint16 {
		return indexCount * 2
	}
	return indexCount * 4
}

// NewConfig creates an auto-offset config. The buffer size starts at the
// index segment length and grows as attributes are added.
func NewConfig(vertexCount, indexCount uint32) *Config {
	indexLength := indexLengthFor(indexCount)
	return &Config{
		vertexCount: vertexCount,
		indexCount:  indexCount,
		indexLength: indexLength,
		bufferSize:  int(indexLength),
		mode:        autoOffset,
	}
}

// NewConfigWithBufferSize creates an explicit-mode config with a total
// buffer size supplied by an engine that already computed the full layout.
func NewConfigWithBufferSize(vertexCount, indexCount uint32, bufferSize int) *Config {
	return &Config{
		vertexCount: vertexCount,
		indexCount:  indexCount,
		indexLength: indexLengthFor(indexCount),
		bufferSize:  bufferSize,
		mode:        explicitOffset,
	}
}

// AddAttribute appends an attribute with derived placement: its offset is
// the current buffer size and its length is dim * vertexCount * element
// size. The buffer grows by the attribute length. Only valid in
// auto-offset mode.
func (c *Config) AddAttribute(dim uint32, dataType AttributeDataType) error {
	if c.mode != autoOffset {
		return &ModeViolationError{Op: "AddAttribute", Mode: c.mode.String()}
	}
	length := dim * c.vertexCount * dataType.SizeInBytes()
	c.attributes = append(c.attributes, MeshAttribute{
		Dim:      dim,
		DataType: dataType,
		Offset:   uint32(c.bufferSize),
		Length:   length,
	})
	c.bufferSize += int(length)
	return nil
}

// AddAttributeAt appends an attribute with an engine-reported byte range,
// trusted verbatim. The buffer size is not extended. Only valid in
// explicit mode.
func (c *Config) AddAttributeAt(dim uint32, dataType AttributeDataType, offset, length uint32) error {
	if c.mode != explicitOffset {
		return &ModeViolationError{Op: "AddAttributeAt", Mode: c.mode.String()}
	}
	c.attributes = append(c.attributes, MeshAttribute{
		Dim:      dim,
		DataType: dataType,
		Offset:   offset,
		Length:   length,
	})
	return nil
}

// SetBufferSize records the byte count the engine actually wrote. Engines
// may preallocate an upper bound and write less.
func (c *Config) SetBufferSize(size int) {
	c.bufferSize = size
}

// Validate checks the contiguity invariant: attributes tile
// [IndexLength, BufferSize) in order, without gaps or overlap, and the
// buffer size equals the index segment plus the attribute lengths.
func (c *Config) Validate() error {
	next := c.indexLength
	for i, attr := range c.attributes {
		if attr.Offset != next {
			return &LayoutError{Index: i, Message: "segment is not contiguous with the previous one"}
		}
		next += attr.Length
	}
	if int(next) != c.bufferSize {
		return &LayoutError{Index: -1, Message: "buffer size does not equal index segment plus attribute lengths"}
	}
	return nil
}

// VertexCount returns the number of vertices in the mesh.
func (c *Config) VertexCount() uint32 {
	return c.vertexCount
}

// IndexCount returns the number of indices in the mesh.
func (c *Config) IndexCount() uint32 {
	return c.indexCount
}

// IndexLength returns the byte length of the index segment.
func (c *Config) IndexLength() uint32 {
	return c.indexLength
}

// BufferSize returns the total decoded buffer size in bytes.
func (c *Config) BufferSize() int {
	return c.bufferSize
}

// Attribute returns the attribute at the given position in decode order.
func (c *Config) Attribute(i int) (MeshAttribute, bool) {
	if i < 0 || i >= len(c.attributes) {
		return MeshAttribute{}, false
	}
	return c.attributes[i], true
}

// Attributes returns a copy of the attributes in decode order. The order
// is significant and is never rearranged.
func (c *Config) Attributes() []MeshAttribute {
	out := make([]MeshAttribute, len(c.attributes))
	copy(out, c.attributes)
	return out
}

// Equal reports whether two configs describe the same layout. The
// construction mode is not part of the comparison: a native (explicit) and
// a worker (auto-offset) config for the same mesh compare equal.
func (c *Config) Equal(o *Config) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.vertexCount != o.vertexCount ||
		c.indexCount != o.indexCount ||
		c.indexLength != o.indexLength ||
		c.bufferSize != o.bufferSize ||
		len(c.attributes) != len(o.attributes) {
		return false
	}
	for i := range c.attributes {
		if c.attributes[i] != o.attributes[i] {
			return false
		}
	}
	return true
}
