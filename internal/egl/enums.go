package egl

import "fmt"

// Attribute and query enumerants understood by the entry points.
const (
	None int32 = 0x3038

	BufferSize     int32 = 0x3020
	AlphaSize      int32 = 0x3021
	BlueSize       int32 = 0x3022
	GreenSize      int32 = 0x3023
	RedSize        int32 = 0x3024
	DepthSize      int32 = 0x3025
	StencilSize    int32 = 0x3026
	ConfigID       int32 = 0x3028
	Samples        int32 = 0x3031
	SurfaceType    int32 = 0x3033
	RenderableType int32 = 0x3040

	Height int32 = 0x3056
	Width  int32 = 0x3057

	ContextClientVersion int32 = 0x3098

	Vendor     int32 = 0x3053
	Version    int32 = 0x3054
	Extensions int32 = 0x3055
	ClientAPIs int32 = 0x308D

	Draw int32 = 0x3059
	Read int32 = 0x305A
)

var attribNames = map[int32]string{
	BufferSize:     "buffer_size",
	AlphaSize:      "alpha_size",
	BlueSize:       "blue_size",
	GreenSize:      "green_size",
	RedSize:        "red_size",
	DepthSize:      "depth_size",
	StencilSize:    "stencil_size",
	ConfigID:       "config_id",
	Samples:        "samples",
	SurfaceType:    "surface_type",
	RenderableType: "renderable_type",
}

// AttribName returns the lower-case name of a config attribute, as used in
// configuration files.
func AttribName(attr int32) string {
	if name, ok := attribNames[attr]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", attr)
}

// AttribByName looks up a config attribute by its AttribName.
func AttribByName(name string) (int32, bool) {
	for attr, n := range attribNames {
		if n == name {
			return attr, true
		}
	}
	return 0, false
}

// Surface type bits of the SurfaceType config attribute.
const (
	PbufferBit int32 = 0x0001
	PixmapBit  int32 = 0x0002
	WindowBit  int32 = 0x0004
)

// OpenGLESBit is the RenderableType bit for GLES 1.x.
const OpenGLESBit int32 = 0x0001

// API is a client rendering API selector.
type API uint32

const (
	NoAPI       API = 0
	OpenGLESAPI API = 0x30A0
	OpenVGAPI   API = 0x30A1
	OpenGLAPI   API = 0x30A2
)

// NativeDisplay identifies a native display connection.
type NativeDisplay uintptr

// DefaultDisplay is the only native display GetDisplay accepts.
const DefaultDisplay NativeDisplay = 0

// Config is the ordinal of a configuration in the display's config table.
type Config int

// PixelFormat is the color buffer format derived from a config.
type PixelFormat uint32

const (
	FormatRGBA    PixelFormat = 0x1908
	FormatRGB     PixelFormat = 0x1907
	FormatRGB565  PixelFormat = 0x8D62
	FormatRGB5A1  PixelFormat = 0x8057
	FormatRGBA4   PixelFormat = 0x8056
	FormatUnknown PixelFormat = 0
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA8888"
	case FormatRGB:
		return "RGB888"
	case FormatRGB565:
		return "RGB565"
	case FormatRGB5A1:
		return "RGB5A1"
	case FormatRGBA4:
		return "RGBA4444"
	default:
		return "unknown"
	}
}

// attribPairs walks a (key, value) attribute list until a zero or None key
// or the end of the slice.
func attribPairs(list []int32, fn func(key, value int32)) {
	for i := 0; i+1 < len(list); i += 2 {
		if list[i] == 0 || list[i] == None {
			return
		}
		fn(list[i], list[i+1])
	}
}
