package draco

// Core types for decoded Draco geometry
// This package defines the buffer layout model shared by the native and
// worker decode paths

// AttributeDataType identifies the scalar element type of a mesh attribute.
type AttributeDataType int

const (
	Int8 AttributeDataType = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
)

// SizeInBytes returns the size of a single element of this type.
func (t AttributeDataType) SizeInBytes() uint32 {
	switch t {
	case Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	default:
		return 4
	}
}

// Code returns the wire code used for this type at the engine boundary.
func (t AttributeDataType) Code() uint32 {
	return uint32(t)
}

func (t AttributeDataType) String() string {
	switch t {
	case Int8:
		return "int8"
	case UInt8:
		return "uint8"
	case Int16:
		return "int16"
	case UInt16:
		return "uint16"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// ParseDataType maps a wire code reported by a decode engine to an
// AttributeDataType. Codes outside 0..6 are a decode error, never a guess:
// a wrong element size would corrupt every offset derived after it.
func ParseDataType(code uint32) (AttributeDataType, error) {
	if code > uint32(Float32) {
		return 0, &UnknownDataTypeError{Code: code}
	}
	return AttributeDataType(code), nil
}

// MeshAttribute describes one per-vertex data channel and its byte range
// within the decoded buffer. Attributes are immutable once constructed;
// equality is structural.
type MeshAttribute struct {
	Dim      uint32
	DataType AttributeDataType
	Offset   uint32
	Length   uint32
}

// MeshDecodeResult is the final owned pair returned by a decode: the raw
// decoded buffer and the layout describing it. len(Data) equals
// Config.BufferSize() after any engine-side truncation.
type MeshDecodeResult struct {
	Data   []byte
	Config *Config
}
