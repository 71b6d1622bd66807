package host

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
	"github.com/1broseidon/rcgl/internal/rc"
	"github.com/1broseidon/rcgl/internal/tracelog"
)

// attribState is the last pointer a session installed for one array.
type attribState struct {
	size    int
	typ     gles.DataType
	stride  int
	bytes   int
	enabled bool
}

func (a *attribState) describe(kind gles.ArrayKind) string {
	return fmt.Sprintf("%s:%s/%d", kind, a.typ, a.size)
}

// Session is the per-connection state: the current binding and the pointer
// state of the renderer. It is driven by one connection goroutine.
type Session struct {
	h  *Host
	id uint64

	context uint32
	draw    uint32
	read    uint32

	vertex     attribState
	normal     attribState
	color      attribState
	texCoords  []attribState
	activeUnit int
	pointSize  float32
}

var _ egl.Conn = (*Session)(nil)

func newSession(h *Host, id uint64) *Session {
	return &Session{
		h:         h,
		id:        id,
		texCoords: make([]attribState, h.opts.MaxTextureUnits),
		pointSize: 1,
	}
}

// ID returns the session number used in resource listings.
func (s *Session) ID() uint64 {
	return s.id
}

func (s *Session) fail(call string, err error) error {
	s.h.logger.Error("host call failed", "session", s.id, "call", call, "error", err)
	s.h.trace.Log(tracelog.EventFailure, call, s.id, map[string]interface{}{"error": err.Error()})
	return err
}

// refuse logs a create call that returns a zero handle.
func (s *Session) refuse(call, reason string) (uint32, error) {
	s.h.logger.Error("host call returned 0", "session", s.id, "call", call, "reason", reason)
	s.h.trace.Log(tracelog.EventFailure, call, s.id, map[string]interface{}{"reason": reason})
	return 0, nil
}

func (s *Session) RendererVersion() (int, error) {
	return s.h.opts.RendererVersion, nil
}

func (s *Session) EGLVersion() (int, int, error) {
	return s.h.opts.EGLMajor, s.h.opts.EGLMinor, nil
}

func (s *Session) QueryEGLString(name int32) (string, error) {
	switch name {
	case egl.Vendor:
		return s.h.opts.Vendor, nil
	case egl.Version:
		return fmt.Sprintf("%d.%d", s.h.opts.EGLMajor, s.h.opts.EGLMinor), nil
	case egl.Extensions:
		return strings.Join(s.h.opts.Extensions, " "), nil
	case egl.ClientAPIs:
		return "OpenGL_ES", nil
	}
	return "", s.fail("QueryEGLString", fmt.Errorf("unknown string 0x%04x", name))
}

func (s *Session) Configs() (*egl.ConfigTable, error) {
	src := s.h.opts.Configs
	table := &egl.ConfigTable{
		Attribs: append([]int32(nil), src.Attribs...),
		Values:  make([][]int32, len(src.Values)),
	}
	for i, row := range src.Values {
		table.Values[i] = append([]int32(nil), row...)
	}
	return table, nil
}

func (s *Session) CreateContext(config egl.Config, share uint32, version int) (uint32, error) {
	h := s.h
	h.mu.Lock()
	if !h.validConfig(config) {
		h.mu.Unlock()
		return s.refuse("CreateContext", fmt.Sprintf("invalid config %d", config))
	}
	if version < 1 || version > 2 {
		h.mu.Unlock()
		return s.refuse("CreateContext", fmt.Sprintf("unsupported client version %d", version))
	}
	if share != 0 {
		if _, ok := h.contexts[share]; !ok {
			h.mu.Unlock()
			return s.refuse("CreateContext", fmt.Sprintf("unknown share context %d", share))
		}
	}
	handle := h.allocHandle()
	h.contexts[handle] = &contextRes{session: s.id, config: config, version: version, share: share}
	h.mu.Unlock()

	h.trace.Log(tracelog.EventLifecycle, "CreateContext", s.id, map[string]interface{}{
		"handle": handle, "config": int(config), "version": version, "share": share,
	})
	return handle, nil
}

func (s *Session) DestroyContext(handle uint32) error {
	h := s.h
	h.mu.Lock()
	c, ok := h.contexts[handle]
	if !ok {
		h.mu.Unlock()
		return s.fail("DestroyContext", fmt.Errorf("unknown context %d", handle))
	}
	if c.session != s.id {
		h.mu.Unlock()
		return s.fail("DestroyContext", fmt.Errorf("context %d belongs to session %d", handle, c.session))
	}
	delete(h.contexts, handle)
	h.mu.Unlock()

	if s.context == handle {
		s.context, s.draw, s.read = 0, 0, 0
	}
	h.trace.Log(tracelog.EventLifecycle, "DestroyContext", s.id, map[string]interface{}{"handle": handle})
	return nil
}

func (s *Session) CreateWindowSurface(config egl.Config, width, height int) (uint32, error) {
	h := s.h
	if width <= 0 || height <= 0 {
		return s.refuse("CreateWindowSurface", fmt.Sprintf("invalid size %dx%d", width, height))
	}
	h.mu.Lock()
	if !h.validConfig(config) {
		h.mu.Unlock()
		return s.refuse("CreateWindowSurface", fmt.Sprintf("invalid config %d", config))
	}
	handle := h.allocHandle()
	h.surfaces[handle] = &surfaceRes{session: s.id, config: config, width: width, height: height}
	h.mu.Unlock()

	h.trace.Log(tracelog.EventLifecycle, "CreateWindowSurface", s.id, map[string]interface{}{
		"handle": handle, "config": int(config), "width": width, "height": height,
	})
	return handle, nil
}

func (s *Session) DestroyWindowSurface(handle uint32) error {
	h := s.h
	h.mu.Lock()
	surf, ok := h.surfaces[handle]
	if !ok {
		h.mu.Unlock()
		return s.fail("DestroyWindowSurface", fmt.Errorf("unknown surface %d", handle))
	}
	if surf.session != s.id {
		h.mu.Unlock()
		return s.fail("DestroyWindowSurface", fmt.Errorf("surface %d belongs to session %d", handle, surf.session))
	}
	delete(h.surfaces, handle)
	h.mu.Unlock()

	if s.draw == handle {
		s.draw = 0
	}
	if s.read == handle {
		s.read = 0
	}
	h.trace.Log(tracelog.EventLifecycle, "DestroyWindowSurface", s.id, map[string]interface{}{"handle": handle})
	return nil
}

func (s *Session) CreateColorBuffer(width, height int, format egl.PixelFormat) (uint32, error) {
	h := s.h
	if width <= 0 || height <= 0 {
		return s.refuse("CreateColorBuffer", fmt.Sprintf("invalid size %dx%d", width, height))
	}
	if format.String() == "unknown" {
		return s.refuse("CreateColorBuffer", fmt.Sprintf("unsupported format 0x%04x", uint32(format)))
	}
	h.mu.Lock()
	handle := h.allocHandle()
	h.colorBuffers[handle] = &colorBufferRes{session: s.id, width: width, height: height, format: format}
	h.mu.Unlock()

	h.trace.Log(tracelog.EventLifecycle, "CreateColorBuffer", s.id, map[string]interface{}{
		"handle": handle, "width": width, "height": height, "format": format.String(),
	})
	return handle, nil
}

func (s *Session) CloseColorBuffer(handle uint32) error {
	h := s.h
	h.mu.Lock()
	cb, ok := h.colorBuffers[handle]
	if !ok {
		h.mu.Unlock()
		return s.fail("CloseColorBuffer", fmt.Errorf("unknown color buffer %d", handle))
	}
	if cb.session != s.id {
		h.mu.Unlock()
		return s.fail("CloseColorBuffer", fmt.Errorf("color buffer %d belongs to session %d", handle, cb.session))
	}
	delete(h.colorBuffers, handle)
	h.mu.Unlock()

	h.trace.Log(tracelog.EventLifecycle, "CloseColorBuffer", s.id, map[string]interface{}{"handle": handle})
	return nil
}

// MakeCurrent binds ctx with its surfaces to the session, or releases the
// binding when all three handles are 0. A context can be current on one
// session at a time.
func (s *Session) MakeCurrent(ctx, draw, read uint32) (bool, error) {
	h := s.h
	h.mu.Lock()

	if ctx == 0 && draw == 0 && read == 0 {
		if c, ok := h.contexts[s.context]; ok && c.boundTo == s.id {
			c.boundTo = 0
		}
		h.mu.Unlock()
		s.context, s.draw, s.read = 0, 0, 0
		h.trace.Log(tracelog.EventState, "MakeCurrent", s.id, map[string]interface{}{"release": true})
		return true, nil
	}

	reason := ""
	c, ok := h.contexts[ctx]
	switch {
	case !ok:
		reason = fmt.Sprintf("unknown context %d", ctx)
	case c.boundTo != 0 && c.boundTo != s.id:
		reason = fmt.Sprintf("context %d is current on session %d", ctx, c.boundTo)
	case h.surfaces[draw] == nil:
		reason = fmt.Sprintf("unknown draw surface %d", draw)
	case h.surfaces[read] == nil:
		reason = fmt.Sprintf("unknown read surface %d", read)
	}
	if reason != "" {
		h.mu.Unlock()
		s.h.logger.Warn("make current refused", "session", s.id, "reason", reason)
		h.trace.Log(tracelog.EventFailure, "MakeCurrent", s.id, map[string]interface{}{"reason": reason})
		return false, nil
	}

	if prev, ok := h.contexts[s.context]; ok && prev.boundTo == s.id {
		prev.boundTo = 0
	}
	c.boundTo = s.id
	h.mu.Unlock()

	s.context, s.draw, s.read = ctx, draw, read
	h.trace.Log(tracelog.EventState, "MakeCurrent", s.id, map[string]interface{}{
		"context": ctx, "draw": draw, "read": read,
	})
	return true, nil
}

func (s *Session) array(kind gles.ArrayKind) *attribState {
	switch kind {
	case gles.VertexArray:
		return &s.vertex
	case gles.NormalArray:
		return &s.normal
	case gles.ColorArray:
		return &s.color
	case gles.TextureCoordArray:
		return &s.texCoords[s.activeUnit]
	}
	return nil
}

func (s *Session) setPointer(call string, kind gles.ArrayKind, size int, typ gles.DataType, stride int, data []byte) error {
	if typ.Size() == 0 {
		return s.fail(call, fmt.Errorf("unsupported type %s", typ))
	}
	a := s.array(kind)
	a.size, a.typ, a.stride, a.bytes = size, typ, stride, len(data)
	s.h.trace.Log(tracelog.EventState, call, s.id, map[string]interface{}{
		"size": size, "type": typ.String(), "stride": stride, "bytes": len(data),
	})
	return nil
}

func (s *Session) VertexPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return s.setPointer("VertexPointer", gles.VertexArray, size, typ, stride, data)
}

func (s *Session) NormalPointer(typ gles.DataType, stride int, data []byte) error {
	return s.setPointer("NormalPointer", gles.NormalArray, 3, typ, stride, data)
}

func (s *Session) ColorPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return s.setPointer("ColorPointer", gles.ColorArray, size, typ, stride, data)
}

func (s *Session) TexCoordPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return s.setPointer("TexCoordPointer", gles.TextureCoordArray, size, typ, stride, data)
}

func (s *Session) ClientActiveTexture(unit int) error {
	if unit < 0 || unit >= len(s.texCoords) {
		return s.fail("ClientActiveTexture", fmt.Errorf("texture unit %d out of range", unit))
	}
	s.activeUnit = unit
	return nil
}

func (s *Session) clientState(call string, kind gles.ArrayKind, enable bool) error {
	a := s.array(kind)
	if a == nil {
		return s.fail(call, fmt.Errorf("unsupported array %s", kind))
	}
	a.enabled = enable
	s.h.trace.Log(tracelog.EventState, call, s.id, map[string]interface{}{"array": kind.String()})
	return nil
}

func (s *Session) EnableClientState(array gles.ArrayKind) error {
	return s.clientState("EnableClientState", array, true)
}

func (s *Session) DisableClientState(array gles.ArrayKind) error {
	return s.clientState("DisableClientState", array, false)
}

func (s *Session) PointSize(size float32) error {
	if size <= 0 {
		return s.fail("PointSize", fmt.Errorf("invalid point size %v", size))
	}
	s.pointSize = size
	return nil
}

// enabledArrays describes the arrays a draw reads, in a stable order.
func (s *Session) enabledArrays() []string {
	var out []string
	for _, k := range []gles.ArrayKind{gles.VertexArray, gles.NormalArray, gles.ColorArray} {
		if a := s.array(k); a.enabled {
			out = append(out, a.describe(k))
		}
	}
	for unit := range s.texCoords {
		if a := &s.texCoords[unit]; a.enabled {
			out = append(out, fmt.Sprintf("%s[%d]", a.describe(gles.TextureCoordArray), unit))
		}
	}
	return out
}

func (s *Session) recordDraw(call string, mode gles.Primitive, count int) error {
	if s.context == 0 {
		return s.fail(call, fmt.Errorf("no current context"))
	}
	rec := rc.DrawRecord{
		Session: s.id,
		Context: s.context,
		Surface: s.draw,
		Call:    call,
		Mode:    mode.String(),
		Count:   count,
		Arrays:  s.enabledArrays(),
		Time:    time.Now().Format(time.RFC3339Nano),
	}
	if mode == gles.Points {
		rec.PointSize = s.pointSize
	}
	s.h.recordDraw(rec)
	s.h.trace.Log(tracelog.EventDraw, call, s.id, map[string]interface{}{
		"mode": mode.String(), "count": count, "context": s.context,
	})
	return nil
}

func (s *Session) DrawArrays(mode gles.Primitive, first, count int) error {
	if first < 0 || count < 0 {
		return s.fail("DrawArrays", fmt.Errorf("invalid range first=%d count=%d", first, count))
	}
	return s.recordDraw("DrawArrays", mode, count)
}

func (s *Session) DrawElements(mode gles.Primitive, count int, typ gles.DataType, indices []byte) error {
	if typ != gles.UnsignedByte && typ != gles.UnsignedShort {
		return s.fail("DrawElements", fmt.Errorf("unsupported index type %s", typ))
	}
	if count < 0 || len(indices) < count*typ.Size() {
		return s.fail("DrawElements", fmt.Errorf("%d indices of %s need %d bytes, got %d", count, typ, count*typ.Size(), len(indices)))
	}
	return s.recordDraw("DrawElements", mode, count)
}

func (s *Session) GetInteger(pname uint32) (int, error) {
	if pname == gles.ParamMaxTextureUnits {
		return s.h.opts.MaxTextureUnits, nil
	}
	return 0, s.fail("GetInteger", fmt.Errorf("unsupported parameter 0x%04x", pname))
}

// Close releases every resource the session still owns.
func (s *Session) Close() error {
	contexts, surfaces, colorBuffers := s.h.releaseSession(s.id)
	s.context, s.draw, s.read = 0, 0, 0

	s.h.logger.Info("session closed", "session", s.id,
		"contexts", contexts, "surfaces", surfaces, "color_buffers", colorBuffers)
	s.h.trace.Log(tracelog.EventSession, "close", s.id, map[string]interface{}{
		"contexts": contexts, "surfaces": surfaces, "color_buffers": colorBuffers,
	})
	return nil
}
