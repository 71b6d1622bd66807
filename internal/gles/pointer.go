package gles

// Source locates attribute or index data. While a buffer object is bound to
// the matching target, Offset is used and Data is ignored; otherwise Data is
// read directly from client memory.
type Source struct {
	Data   []byte
	Offset int
}

// ClientData is a Source reading from client memory.
func ClientData(b []byte) Source {
	return Source{Data: b}
}

// BufferOffset is a Source reading from the bound buffer object.
func BufferOffset(off int) Source {
	return Source{Offset: off}
}

type buffer struct {
	data []byte
}

// Attrib is a snapshot of one attribute slot of the pointer table.
type Attrib struct {
	Size    int
	Type    DataType
	Stride  int
	Enabled bool
	// Buffer is the buffer object name the attribute reads from, 0 for
	// client memory.
	Buffer uint32
	Offset int
}

// pointer is one attribute slot.
type pointer struct {
	size    int
	typ     DataType
	stride  int
	enabled bool

	bufName uint32
	buf     *buffer
	offset  int
	data    []byte
}

func (p *pointer) set(size int, typ DataType, stride int, name uint32, buf *buffer, src Source) {
	p.size = size
	p.typ = typ
	p.stride = stride
	p.bufName = name
	p.buf = buf
	if buf != nil {
		p.offset = src.Offset
		p.data = nil
	} else {
		p.offset = 0
		p.data = src.Data
	}
}

func (p *pointer) attrib() Attrib {
	return Attrib{
		Size:    p.size,
		Type:    p.typ,
		Stride:  p.stride,
		Enabled: p.enabled,
		Buffer:  p.bufName,
		Offset:  p.offset,
	}
}

func (p *pointer) isBuffer() bool {
	return p.buf != nil
}

// bytes returns the attribute data starting at its first vertex.
func (p *pointer) bytes() []byte {
	if p.buf == nil {
		return p.data
	}
	if p.offset < 0 || p.offset > len(p.buf.data) {
		return nil
	}
	return p.buf.data[p.offset:]
}

// effectiveStride is the distance in bytes between two vertices.
func (p *pointer) effectiveStride() int {
	if p.stride != 0 {
		return p.stride
	}
	return p.size * p.typ.Size()
}

// redirect makes a buffer-backed attribute read the same bytes as client
// memory, detaching it from the buffer binding.
func (p *pointer) redirect() {
	if p.buf == nil {
		return
	}
	p.data = p.bytes()
	p.buf = nil
	p.bufName = 0
	p.offset = 0
}
