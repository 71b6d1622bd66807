package egl

import "fmt"

// ErrorCode is an EGL error code as reported by GetError.
type ErrorCode int32

const (
	Success           ErrorCode = 0x3000
	NotInitialized    ErrorCode = 0x3001
	BadAccess         ErrorCode = 0x3002
	BadAlloc          ErrorCode = 0x3003
	BadAttribute      ErrorCode = 0x3004
	BadConfig         ErrorCode = 0x3005
	BadContext        ErrorCode = 0x3006
	BadCurrentSurface ErrorCode = 0x3007
	BadDisplay        ErrorCode = 0x3008
	BadMatch          ErrorCode = 0x3009
	BadNativePixmap   ErrorCode = 0x300A
	BadNativeWindow   ErrorCode = 0x300B
	BadParameter      ErrorCode = 0x300C
	BadSurface        ErrorCode = 0x300D
)

var errorNames = map[ErrorCode]string{
	Success:           "EGL_SUCCESS",
	NotInitialized:    "EGL_NOT_INITIALIZED",
	BadAccess:         "EGL_BAD_ACCESS",
	BadAlloc:          "EGL_BAD_ALLOC",
	BadAttribute:      "EGL_BAD_ATTRIBUTE",
	BadConfig:         "EGL_BAD_CONFIG",
	BadContext:        "EGL_BAD_CONTEXT",
	BadCurrentSurface: "EGL_BAD_CURRENT_SURFACE",
	BadDisplay:        "EGL_BAD_DISPLAY",
	BadMatch:          "EGL_BAD_MATCH",
	BadNativePixmap:   "EGL_BAD_NATIVE_PIXMAP",
	BadNativeWindow:   "EGL_BAD_NATIVE_WINDOW",
	BadParameter:      "EGL_BAD_PARAMETER",
	BadSurface:        "EGL_BAD_SURFACE",
}

func (e ErrorCode) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EGL_ERROR(0x%04x)", int32(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
