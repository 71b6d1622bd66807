package gles

import (
	"encoding/binary"
	"fmt"
	"math"
)

type pointerCall struct {
	kind   ArrayKind
	size   int
	typ    DataType
	stride int
	data   []byte
}

type elementsCall struct {
	mode    Primitive
	count   int
	typ     DataType
	indices []uint16
}

// recorder is a Dispatcher that records every call.
type recorder struct {
	maxTexUnits int
	queries     int

	calls      []string
	pointers   []pointerCall
	activeUnit []int
	pointSizes []float32
	elements   []elementsCall
}

func newRecorder() *recorder {
	return &recorder{maxTexUnits: 2}
}

func (r *recorder) pointer(kind ArrayKind, size int, typ DataType, stride int, data []byte) error {
	r.calls = append(r.calls, fmt.Sprintf("%sPointer", kind))
	r.pointers = append(r.pointers, pointerCall{kind, size, typ, stride, append([]byte(nil), data...)})
	return nil
}

func (r *recorder) VertexPointer(size int, typ DataType, stride int, data []byte) error {
	return r.pointer(VertexArray, size, typ, stride, data)
}

func (r *recorder) NormalPointer(typ DataType, stride int, data []byte) error {
	return r.pointer(NormalArray, 3, typ, stride, data)
}

func (r *recorder) ColorPointer(size int, typ DataType, stride int, data []byte) error {
	return r.pointer(ColorArray, size, typ, stride, data)
}

func (r *recorder) TexCoordPointer(size int, typ DataType, stride int, data []byte) error {
	return r.pointer(TextureCoordArray, size, typ, stride, data)
}

func (r *recorder) ClientActiveTexture(unit int) error {
	r.calls = append(r.calls, "ClientActiveTexture")
	r.activeUnit = append(r.activeUnit, unit)
	return nil
}

func (r *recorder) EnableClientState(array ArrayKind) error {
	r.calls = append(r.calls, "EnableClientState")
	return nil
}

func (r *recorder) DisableClientState(array ArrayKind) error {
	r.calls = append(r.calls, "DisableClientState")
	return nil
}

func (r *recorder) PointSize(size float32) error {
	r.calls = append(r.calls, "PointSize")
	r.pointSizes = append(r.pointSizes, size)
	return nil
}

func (r *recorder) DrawArrays(mode Primitive, first, count int) error {
	r.calls = append(r.calls, fmt.Sprintf("DrawArrays(%d,%d,%d)", mode, first, count))
	return nil
}

func (r *recorder) DrawElements(mode Primitive, count int, typ DataType, indices []byte) error {
	r.calls = append(r.calls, "DrawElements")
	call := elementsCall{mode: mode, count: count, typ: typ}
	for i := 0; i < count; i++ {
		if typ == UnsignedByte {
			call.indices = append(call.indices, uint16(indices[i]))
			continue
		}
		call.indices = append(call.indices, binary.LittleEndian.Uint16(indices[2*i:]))
	}
	r.elements = append(r.elements, call)
	return nil
}

func (r *recorder) GetInteger(pname uint32) (int, error) {
	r.queries++
	if pname == ParamMaxTextureUnits {
		return r.maxTexUnits, nil
	}
	return 0, fmt.Errorf("unknown pname 0x%x", pname)
}

func (r *recorder) pointersOf(kind ArrayKind) []pointerCall {
	var out []pointerCall
	for _, p := range r.pointers {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

func floats(v ...float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func fixeds(v ...int32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(x))
	}
	return b
}

func readFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

func readShorts(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return out
}

func newTestContext(r *recorder) *Context {
	ctx, err := NewContext(r, NewCaps(), nil)
	if err != nil {
		panic(err)
	}
	return ctx
}
