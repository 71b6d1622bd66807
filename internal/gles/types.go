package gles

import "fmt"

// DataType is a GL component type enumerant.
type DataType uint32

const (
	Byte          DataType = 0x1400
	UnsignedByte  DataType = 0x1401
	Short         DataType = 0x1402
	UnsignedShort DataType = 0x1403
	Float         DataType = 0x1406
	Fixed         DataType = 0x140C
)

// Size returns the size in bytes of one component, or 0 for unknown types.
func (t DataType) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case Float, Fixed:
		return 4
	default:
		return 0
	}
}

func (t DataType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case Float:
		return "FLOAT"
	case Fixed:
		return "FIXED"
	default:
		return fmt.Sprintf("DataType(0x%04x)", uint32(t))
	}
}

// ArrayKind identifies a client-side vertex array.
type ArrayKind uint32

const (
	VertexArray       ArrayKind = 0x8074
	NormalArray       ArrayKind = 0x8075
	ColorArray        ArrayKind = 0x8076
	TextureCoordArray ArrayKind = 0x8078
	PointSizeArray    ArrayKind = 0x8B9C
)

func (k ArrayKind) String() string {
	switch k {
	case VertexArray:
		return "VERTEX_ARRAY"
	case NormalArray:
		return "NORMAL_ARRAY"
	case ColorArray:
		return "COLOR_ARRAY"
	case TextureCoordArray:
		return "TEXTURE_COORD_ARRAY"
	case PointSizeArray:
		return "POINT_SIZE_ARRAY_OES"
	default:
		return fmt.Sprintf("ArrayKind(0x%04x)", uint32(k))
	}
}

func supportedArray(k ArrayKind) bool {
	switch k {
	case VertexArray, NormalArray, ColorArray, TextureCoordArray, PointSizeArray:
		return true
	}
	return false
}

// validArrayType reports whether typ is a legal component type for kind.
func validArrayType(kind ArrayKind, typ DataType) bool {
	switch typ {
	case Fixed, Float:
		return true
	case Byte, Short:
		return kind == VertexArray || kind == NormalArray || kind == TextureCoordArray
	case UnsignedByte:
		return kind == ColorArray
	}
	return false
}

// Primitive is a draw mode.
type Primitive uint32

const (
	Points        Primitive = 0x0000
	Lines         Primitive = 0x0001
	LineLoop      Primitive = 0x0002
	LineStrip     Primitive = 0x0003
	Triangles     Primitive = 0x0004
	TriangleStrip Primitive = 0x0005
	TriangleFan   Primitive = 0x0006
)

func (m Primitive) String() string {
	switch m {
	case Points:
		return "POINTS"
	case Lines:
		return "LINES"
	case LineLoop:
		return "LINE_LOOP"
	case LineStrip:
		return "LINE_STRIP"
	case Triangles:
		return "TRIANGLES"
	case TriangleStrip:
		return "TRIANGLE_STRIP"
	case TriangleFan:
		return "TRIANGLE_FAN"
	default:
		return fmt.Sprintf("Primitive(0x%04x)", uint32(m))
	}
}

func validMode(m Primitive) bool {
	return m <= TriangleFan
}

// Target is a buffer object binding point.
type Target uint32

const (
	ArrayBuffer        Target = 0x8892
	ElementArrayBuffer Target = 0x8893
)

// ErrorCode is a GL error enumerant.
type ErrorCode uint32

const (
	NoError          ErrorCode = 0
	InvalidEnum      ErrorCode = 0x0500
	InvalidValue     ErrorCode = 0x0501
	InvalidOperation ErrorCode = 0x0502
)

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "NO_ERROR"
	case InvalidEnum:
		return "INVALID_ENUM"
	case InvalidValue:
		return "INVALID_VALUE"
	case InvalidOperation:
		return "INVALID_OPERATION"
	default:
		return fmt.Sprintf("ErrorCode(0x%04x)", uint32(e))
	}
}

// Integer state queried from the renderer.
const (
	ParamMaxTextureUnits uint32 = 0x84E2
)

// MaxTextureUnits caps the number of texture units tracked per context,
// whatever the renderer reports.
const MaxTextureUnits = 8
