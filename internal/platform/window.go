package platform

// NativeWindowMagic tags a valid native window ('_wnd').
const NativeWindowMagic uint32 = 0x5f776e64

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// NativeWindow is a window a surface can render into. Surfaces hold a
// reference between Acquire and Release and read the size once, when they
// are created.
type NativeWindow interface {
	Magic() uint32
	Acquire()
	Release()
	Width() int
	Height() int
}

// StaticWindow is a NativeWindow of fixed size with no backing window
// system object.
type StaticWindow struct {
	W, H int
	refs int
}

var _ NativeWindow = (*StaticWindow)(nil)

func (w *StaticWindow) Magic() uint32 { return NativeWindowMagic }
func (w *StaticWindow) Acquire()      { w.refs++ }
func (w *StaticWindow) Release()      { w.refs-- }
func (w *StaticWindow) Width() int    { return w.W }
func (w *StaticWindow) Height() int   { return w.H }

// Refs returns the number of references currently held.
func (w *StaticWindow) Refs() int { return w.refs }
