package gles

import (
	"fmt"
	"sync"
)

// Dispatcher is the renderer-side command interface every translated call
// ends up on. Calls are synchronous. Implementations must not retain the
// data or index slices after a call returns: they point into per-draw
// scratch storage.
type Dispatcher interface {
	VertexPointer(size int, typ DataType, stride int, data []byte) error
	NormalPointer(typ DataType, stride int, data []byte) error
	ColorPointer(size int, typ DataType, stride int, data []byte) error
	TexCoordPointer(size int, typ DataType, stride int, data []byte) error
	ClientActiveTexture(unit int) error
	EnableClientState(array ArrayKind) error
	DisableClientState(array ArrayKind) error
	PointSize(size float32) error
	DrawArrays(mode Primitive, first, count int) error
	DrawElements(mode Primitive, count int, typ DataType, indices []byte) error
	GetInteger(pname uint32) (int, error)
}

// Caps holds renderer capabilities shared by every context of the process.
// They are queried once and only read afterwards.
type Caps struct {
	mu          sync.Mutex
	initialized bool
	maxTexUnits int
}

// NewCaps returns an empty capability set, filled by the first context.
func NewCaps() *Caps {
	return &Caps{}
}

func (c *Caps) init(d Dispatcher) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	units, err := d.GetInteger(ParamMaxTextureUnits)
	if err != nil {
		return fmt.Errorf("failed to query max texture units: %w", err)
	}
	if units > MaxTextureUnits {
		units = MaxTextureUnits
	}
	if units < 1 {
		units = 1
	}

	c.mu.Lock()
	if !c.initialized {
		c.maxTexUnits = units
		c.initialized = true
	}
	c.mu.Unlock()
	return nil
}

// MaxTexUnits returns the number of texture units the drawing path iterates.
func (c *Caps) MaxTexUnits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxTexUnits
}
