package gles

import (
	"fmt"
	"io"
	"log/slog"
)

// Context is the client-side state of one GLES 1.x rendering context: the
// attribute pointer table, buffer objects and the sticky error. It is used
// by one goroutine at a time.
type Context struct {
	d      Dispatcher
	caps   *Caps
	logger *slog.Logger

	vertex    pointer
	normal    pointer
	color     pointer
	pointSize pointer
	texCoords []pointer

	clientActive int

	arrayBuffer   uint32
	elementBuffer uint32
	buffers       map[uint32]*buffer
	nextBuffer    uint32

	err ErrorCode

	// Set by setupArrays when the point size array was converted for the
	// current draw.
	pointsSlot   int
	pointsStride int
}

// NewContext returns a context drawing through d. The first context
// created against caps fills it from the renderer.
func NewContext(d Dispatcher, caps *Caps, logger *slog.Logger) (*Context, error) {
	if d == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if caps == nil {
		caps = NewCaps()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := caps.init(d); err != nil {
		return nil, err
	}
	return &Context{
		d:          d,
		caps:       caps,
		logger:     logger,
		texCoords:  make([]pointer, MaxTextureUnits),
		buffers:    make(map[uint32]*buffer),
		nextBuffer: 1,
		pointsSlot: -1,
	}, nil
}

// setError records code unless an earlier error is still pending.
func (c *Context) setError(code ErrorCode) {
	if c.err == NoError {
		c.err = code
	}
}

// GetError returns the pending error and clears it.
func (c *Context) GetError() ErrorCode {
	code := c.err
	c.err = NoError
	return code
}

// Pointer returns the recorded state of an attribute. Texture coordinates
// are reported for the client active unit.
func (c *Context) Pointer(kind ArrayKind) Attrib {
	p := c.slot(kind)
	if p == nil {
		return Attrib{}
	}
	return p.attrib()
}

// ClientActive returns the client active texture unit.
func (c *Context) ClientActive() int {
	return c.clientActive
}

func (c *Context) slot(kind ArrayKind) *pointer {
	switch kind {
	case VertexArray:
		return &c.vertex
	case NormalArray:
		return &c.normal
	case ColorArray:
		return &c.color
	case PointSizeArray:
		return &c.pointSize
	case TextureCoordArray:
		return &c.texCoords[c.clientActive]
	}
	return nil
}

func (c *Context) setPointer(kind ArrayKind, size int, typ DataType, stride int, src Source) {
	if !validArrayType(kind, typ) {
		c.setError(InvalidEnum)
		return
	}
	p := c.slot(kind)
	var buf *buffer
	if c.arrayBuffer != 0 {
		buf = c.buffers[c.arrayBuffer]
	}
	p.set(size, typ, stride, c.arrayBuffer, buf, src)
}

// VertexPointer records the position attribute.
func (c *Context) VertexPointer(size int, typ DataType, stride int, src Source) {
	if size < 2 || size > 4 || stride < 0 {
		c.setError(InvalidValue)
		return
	}
	c.setPointer(VertexArray, size, typ, stride, src)
}

// NormalPointer records the normal attribute, always three components.
func (c *Context) NormalPointer(typ DataType, stride int, src Source) {
	if stride < 0 {
		c.setError(InvalidValue)
		return
	}
	c.setPointer(NormalArray, 3, typ, stride, src)
}

// ColorPointer records the color attribute.
func (c *Context) ColorPointer(size int, typ DataType, stride int, src Source) {
	if size < 3 || size > 4 || stride < 0 {
		c.setError(InvalidValue)
		return
	}
	c.setPointer(ColorArray, size, typ, stride, src)
}

// TexCoordPointer records the texture coordinates of the client active unit.
func (c *Context) TexCoordPointer(size int, typ DataType, stride int, src Source) {
	if size < 1 || size > 4 || stride < 0 {
		c.setError(InvalidValue)
		return
	}
	c.setPointer(TextureCoordArray, size, typ, stride, src)
}

// PointSizePointer records the per-vertex point size attribute, FIXED or
// FLOAT only.
func (c *Context) PointSizePointer(typ DataType, stride int, src Source) {
	if stride < 0 {
		c.setError(InvalidValue)
		return
	}
	c.setPointer(PointSizeArray, 1, typ, stride, src)
}

// ClientActiveTexture selects the unit TexCoordPointer and the client state
// calls apply to.
func (c *Context) ClientActiveTexture(unit int) error {
	if unit < 0 || unit >= c.caps.MaxTexUnits() {
		c.setError(InvalidEnum)
		return nil
	}
	c.clientActive = unit
	return c.d.ClientActiveTexture(unit)
}

// EnableClientState enables an attribute array. The point size array is
// tracked locally only.
func (c *Context) EnableClientState(kind ArrayKind) error {
	return c.clientState(kind, true)
}

// DisableClientState disables an attribute array.
func (c *Context) DisableClientState(kind ArrayKind) error {
	return c.clientState(kind, false)
}

func (c *Context) clientState(kind ArrayKind, enable bool) error {
	if !supportedArray(kind) {
		c.setError(InvalidEnum)
		return nil
	}
	c.slot(kind).enabled = enable
	if kind == PointSizeArray {
		return nil
	}
	if enable {
		return c.d.EnableClientState(kind)
	}
	return c.d.DisableClientState(kind)
}

// GenBuffers returns n new buffer object names.
func (c *Context) GenBuffers(n int) []uint32 {
	if n < 0 {
		c.setError(InvalidValue)
		return nil
	}
	names := make([]uint32, n)
	for i := range names {
		names[i] = c.nextBuffer
		c.buffers[c.nextBuffer] = &buffer{}
		c.nextBuffer++
	}
	return names
}

// BindBuffer binds name to target. Binding an unknown non-zero name creates
// the buffer.
func (c *Context) BindBuffer(target Target, name uint32) {
	if target != ArrayBuffer && target != ElementArrayBuffer {
		c.setError(InvalidEnum)
		return
	}
	if name != 0 {
		if _, ok := c.buffers[name]; !ok {
			c.buffers[name] = &buffer{}
			if name >= c.nextBuffer {
				c.nextBuffer = name + 1
			}
		}
	}
	switch target {
	case ArrayBuffer:
		c.arrayBuffer = name
	case ElementArrayBuffer:
		c.elementBuffer = name
	}
}

func (c *Context) bound(target Target) *buffer {
	var name uint32
	switch target {
	case ArrayBuffer:
		name = c.arrayBuffer
	case ElementArrayBuffer:
		name = c.elementBuffer
	default:
		c.setError(InvalidEnum)
		return nil
	}
	if name == 0 {
		c.setError(InvalidOperation)
		return nil
	}
	return c.buffers[name]
}

// BufferData replaces the contents of the buffer bound to target.
func (c *Context) BufferData(target Target, data []byte) {
	b := c.bound(target)
	if b == nil {
		return
	}
	b.data = append([]byte(nil), data...)
}

// BufferSubData overwrites part of the buffer bound to target.
func (c *Context) BufferSubData(target Target, offset int, data []byte) {
	b := c.bound(target)
	if b == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		c.setError(InvalidValue)
		return
	}
	copy(b.data[offset:], data)
}

// DeleteBuffers deletes buffer objects. Deleting a bound buffer unbinds it;
// attributes already pointing into it keep reading the old storage.
func (c *Context) DeleteBuffers(names ...uint32) {
	for _, name := range names {
		if name == 0 {
			continue
		}
		delete(c.buffers, name)
		if c.arrayBuffer == name {
			c.arrayBuffer = 0
		}
		if c.elementBuffer == name {
			c.elementBuffer = 0
		}
	}
}

// DrawArrays draws count vertices starting at first.
func (c *Context) DrawArrays(mode Primitive, first, count int) error {
	if count < 0 || first < 0 {
		c.setError(InvalidValue)
		return nil
	}
	if !validMode(mode) {
		c.setError(InvalidEnum)
		return nil
	}
	dc := &drawCall{first: first, count: count}
	return c.draw(mode, dc)
}

// DrawElements draws count vertices selected by an 8 or 16 bit index list.
// With an element array buffer bound, indices is read from it at
// src.Offset.
func (c *Context) DrawElements(mode Primitive, count int, typ DataType, src Source) error {
	if count < 0 {
		c.setError(InvalidValue)
		return nil
	}
	if !validMode(mode) || (typ != UnsignedByte && typ != UnsignedShort) {
		c.setError(InvalidEnum)
		return nil
	}

	indices := src.Data
	if c.elementBuffer != 0 {
		b := c.buffers[c.elementBuffer]
		if src.Offset < 0 || src.Offset > len(b.data) {
			c.setError(InvalidOperation)
			return nil
		}
		indices = b.data[src.Offset:]
	}
	if len(indices) < count*typ.Size() {
		c.setError(InvalidOperation)
		return nil
	}
	indices = indices[:count*typ.Size()]

	dc := &drawCall{count: count, indexed: true, indexType: typ, indices: indices}
	return c.draw(mode, dc)
}

func (c *Context) draw(mode Primitive, dc *drawCall) error {
	if dc.count == 0 {
		return nil
	}
	arrs := &conversionArrays{}
	if err := c.setupArrays(arrs, dc); err != nil {
		return fmt.Errorf("failed to set up arrays: %w", err)
	}

	if mode == Points && c.pointSize.enabled {
		return c.drawPoints(arrs, dc)
	}
	if dc.indexed {
		return c.d.DrawElements(mode, dc.count, dc.indexType, dc.indices)
	}
	return c.d.DrawArrays(mode, dc.first, dc.count)
}

// SetDispatcher redirects the context's commands, used when the context
// becomes current on another connection.
func (c *Context) SetDispatcher(d Dispatcher) {
	if d != nil {
		c.d = d
	}
}
