package gles

import (
	"encoding/binary"
	"math"
)

// drawCall describes the vertices one draw reads: the range
// [first, first+count) for DrawArrays, or count entries of an 8 or 16 bit
// index list for DrawElements.
type drawCall struct {
	first     int
	count     int
	indexed   bool
	indexType DataType
	indices   []byte
}

func (dc *drawCall) index(i int) int {
	if dc.indexType == UnsignedByte {
		return int(dc.indices[i])
	}
	return int(binary.LittleEndian.Uint16(dc.indices[2*i:]))
}

// vertex returns the i-th vertex the draw references.
func (dc *drawCall) vertex(i int) int {
	if dc.indexed {
		return dc.index(i)
	}
	return dc.first + i
}

// extent returns one past the highest vertex index the draw references.
func (dc *drawCall) extent() int {
	if !dc.indexed {
		return dc.first + dc.count
	}
	maxIndex := -1
	for i := 0; i < dc.count; i++ {
		if v := dc.index(i); v > maxIndex {
			maxIndex = v
		}
	}
	return maxIndex + 1
}

// conversionArrays holds the arrays materialized for one draw call. Each
// converted attribute takes the slot under the cursor.
type conversionArrays struct {
	arrays [][]byte
	cursor int
}

// alloc returns a zeroed array of n bytes for the current slot.
func (a *conversionArrays) alloc(n int) []byte {
	for len(a.arrays) <= a.cursor {
		a.arrays = append(a.arrays, nil)
	}
	a.arrays[a.cursor] = make([]byte, n)
	return a.arrays[a.cursor]
}

func (a *conversionArrays) current() []byte {
	if a.cursor >= len(a.arrays) {
		return nil
	}
	return a.arrays[a.cursor]
}

func (a *conversionArrays) at(slot int) []byte {
	if slot < 0 || slot >= len(a.arrays) {
		return nil
	}
	return a.arrays[slot]
}

func (a *conversionArrays) advance() {
	a.cursor++
}

// needsConversion reports whether the renderer cannot consume the attribute
// as is: fixed point data always, byte data only for positions and texture
// coordinates.
func needsConversion(kind ArrayKind, typ DataType) bool {
	switch typ {
	case Fixed:
		return true
	case Byte:
		return kind == VertexArray || kind == TextureCoordArray
	default:
		return false
	}
}

// convertedType is the component type a converted attribute is installed with.
func convertedType(typ DataType) DataType {
	if typ == Fixed {
		return Float
	}
	return Short
}

func fixedToFloat(x int32) float32 {
	return float32(x) / 65536
}

// convertVertex writes the size components of one source vertex into dst.
func convertVertex(dst, src []byte, typ DataType, size int) {
	switch typ {
	case Fixed:
		for j := 0; j < size; j++ {
			x := int32(binary.LittleEndian.Uint32(src[4*j:]))
			binary.LittleEndian.PutUint32(dst[4*j:], math.Float32bits(fixedToFloat(x)))
		}
	case Byte:
		for j := 0; j < size; j++ {
			binary.LittleEndian.PutUint16(dst[2*j:], uint16(int16(int8(src[j]))))
		}
	}
}

// convert materializes the vertices referenced by dc into the current slot.
// Client-memory sources are packed tightly, one vertex per output element
// at its own index; buffer-backed fixed data keeps the buffer layout so the
// attribute's stride still applies. It returns the stride to install.
func (c *Context) convert(arrs *conversionArrays, dc *drawCall, p *pointer) int {
	src := p.bytes()
	inStride := p.effectiveStride()
	inVertex := p.size * p.typ.Size()
	extent := dc.extent()

	if p.isBuffer() {
		// Fixed data in a buffer object: same layout, converted in place in a
		// copy of the referenced region.
		n := 0
		if extent > 0 {
			n = (extent-1)*inStride + inVertex
		}
		if n > len(src) {
			n = len(src)
		}
		out := arrs.alloc(n)
		copy(out, src[:n])
		for i := 0; i < dc.count; i++ {
			off := dc.vertex(i) * inStride
			if off+inVertex > len(out) {
				continue
			}
			convertVertex(out[off:], src[off:], p.typ, p.size)
		}
		// Buffer-bound non-byte data keeps its layout, so its stride stays.
		return p.stride
	}

	outVertex := p.size * convertedType(p.typ).Size()
	out := arrs.alloc(extent * outVertex)
	for i := 0; i < dc.count; i++ {
		v := dc.vertex(i)
		off := v * inStride
		if off+inVertex > len(src) {
			continue
		}
		convertVertex(out[v*outVertex:], src[off:], p.typ, p.size)
	}
	// Client and redirected byte data is packed, so the stride is 0.
	return 0
}

// setupPointer installs one enabled attribute for the draw, converting it
// first when the renderer needs a different type.
func (c *Context) setupPointer(arrs *conversionArrays, dc *drawCall, kind ArrayKind, p *pointer) error {
	if !needsConversion(kind, p.typ) {
		return c.installPointer(kind, p.size, p.typ, p.stride, p.bytes())
	}

	if p.typ == Byte && p.isBuffer() {
		p.redirect()
	}
	stride := c.convert(arrs, dc, p)
	data := arrs.current()
	if kind == PointSizeArray {
		c.pointsSlot = arrs.cursor
		c.pointsStride = 1
		if stride != 0 {
			c.pointsStride = stride / 4
		}
	}
	err := c.installPointer(kind, p.size, convertedType(p.typ), stride, data)
	arrs.advance()
	return err
}

func (c *Context) installPointer(kind ArrayKind, size int, typ DataType, stride int, data []byte) error {
	if data == nil {
		return nil
	}
	switch kind {
	case VertexArray:
		return c.d.VertexPointer(size, typ, stride, data)
	case NormalArray:
		return c.d.NormalPointer(typ, stride, data)
	case ColorArray:
		return c.d.ColorPointer(size, typ, stride, data)
	case TextureCoordArray:
		return c.d.TexCoordPointer(size, typ, stride, data)
	}
	// Point sizes never reach the renderer as an array.
	return nil
}

// setupArrays walks every enabled attribute in a fixed order and installs
// it on the renderer. Texture coordinates are visited per unit through the
// client active texture, which is restored afterwards.
func (c *Context) setupArrays(arrs *conversionArrays, dc *drawCall) (err error) {
	c.pointsSlot = -1

	scalars := []struct {
		kind ArrayKind
		p    *pointer
	}{
		{VertexArray, &c.vertex},
		{NormalArray, &c.normal},
		{ColorArray, &c.color},
		{PointSizeArray, &c.pointSize},
	}
	for _, s := range scalars {
		if !s.p.enabled {
			continue
		}
		if err := c.setupPointer(arrs, dc, s.kind, s.p); err != nil {
			return err
		}
	}

	active := c.clientActive
	defer func() {
		c.clientActive = active
		if rerr := c.d.ClientActiveTexture(active); err == nil {
			err = rerr
		}
	}()

	units := c.caps.MaxTexUnits()
	if units > len(c.texCoords) {
		units = len(c.texCoords)
	}
	for unit := 0; unit < units; unit++ {
		c.clientActive = unit
		if err := c.d.ClientActiveTexture(unit); err != nil {
			return err
		}
		p := &c.texCoords[unit]
		if !p.enabled {
			continue
		}
		if err := c.setupPointer(arrs, dc, TextureCoordArray, p); err != nil {
			return err
		}
	}
	return nil
}
