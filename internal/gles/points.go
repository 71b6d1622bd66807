package gles

import (
	"encoding/binary"
	"errors"
	"math"
)

var errIndexRange = errors.New("vertex index does not fit 16 bits")

// pointGroup is the set of vertices drawn with one point size, in the order
// the draw referenced them.
type pointGroup struct {
	size    float32
	indices []uint16
}

// pointGroups maps point sizes to groups, keeping first-seen order.
type pointGroups struct {
	bySize map[float32]int
	groups []pointGroup
}

func (g *pointGroups) add(size float32, index uint16) {
	if g.bySize == nil {
		g.bySize = make(map[float32]int)
	}
	i, ok := g.bySize[size]
	if !ok {
		i = len(g.groups)
		g.bySize[size] = i
		g.groups = append(g.groups, pointGroup{size: size})
	}
	g.groups[i].indices = append(g.groups[i].indices, index)
}

// pointSizes returns the float array point sizes are read from and its
// stride in floats.
func (c *Context) pointSizes(arrs *conversionArrays) ([]byte, int) {
	if c.pointsSlot >= 0 {
		return arrs.at(c.pointsSlot), c.pointsStride
	}
	stride := 1
	if c.pointSize.stride != 0 {
		stride = c.pointSize.stride / 4
	}
	return c.pointSize.bytes(), stride
}

// groupPoints buckets the vertices of dc by point size.
func (c *Context) groupPoints(arrs *conversionArrays, dc *drawCall) (*pointGroups, error) {
	data, stride := c.pointSizes(arrs)
	groups := &pointGroups{}
	for i := 0; i < dc.count; i++ {
		v := dc.vertex(i)
		if v > math.MaxUint16 {
			return nil, errIndexRange
		}
		off := v * stride * 4
		if off < 0 || off+4 > len(data) {
			c.logger.Debug("point size out of range", "vertex", v)
			continue
		}
		size := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		groups.add(size, uint16(v))
	}
	return groups, nil
}

// drawPoints replaces one point draw by one sized point draw per distinct
// point size.
func (c *Context) drawPoints(arrs *conversionArrays, dc *drawCall) error {
	groups, err := c.groupPoints(arrs, dc)
	if err != nil {
		c.setError(InvalidValue)
		return nil
	}

	var scratch []byte
	for _, g := range groups.groups {
		n := 2 * len(g.indices)
		if n > cap(scratch) {
			scratch = make([]byte, n)
		}
		buf := scratch[:n]
		for i, idx := range g.indices {
			binary.LittleEndian.PutUint16(buf[2*i:], idx)
		}
		if err := c.d.PointSize(g.size); err != nil {
			return err
		}
		if err := c.d.DrawElements(Points, len(g.indices), UnsignedShort, buf); err != nil {
			return err
		}
	}
	return nil
}
