package rc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/gles"
	"github.com/1broseidon/rcgl/internal/runtimepath"
)

// Client is one persistent connection to the rendering host. Calls are
// synchronous and serialized; there is no per-call deadline.
type Client struct {
	socketPath string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

var _ egl.Conn = (*Client)(nil)

// Dial connects to the host socket. An empty path selects the default
// runtime socket.
func Dial(socketPath string) (*Client, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve host socket path: %w", err)
		}
		socketPath = p
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host: %w (is the host running?)", err)
	}
	return &Client{
		socketPath: socketPath,
		conn:       conn,
		reader:     bufio.NewReader(conn),
	}, nil
}

// Dialer returns an egl.Dialer opening a new Client per call.
func Dialer(socketPath string) egl.Dialer {
	return func() (egl.Conn, error) {
		return Dial(socketPath)
	}
}

// call sends one request and decodes the reply data into out.
func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection closed")
	}
	if _, err := c.conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := c.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return fmt.Errorf("host error: %s", resp.Error)
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", cmd, err)
		}
	}
	return nil
}

// Close closes the connection. The host releases every resource created
// through it.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) RendererVersion() (int, error) {
	var data IntData
	err := c.call(CommandRendererVersion, nil, &data)
	return data.Value, err
}

func (c *Client) EGLVersion() (int, int, error) {
	var data VersionData
	err := c.call(CommandEGLVersion, nil, &data)
	return data.Major, data.Minor, err
}

func (c *Client) QueryEGLString(name int32) (string, error) {
	var data StringData
	err := c.call(CommandQueryEGLString, NamePayload{Name: name}, &data)
	return data.Value, err
}

func (c *Client) Configs() (*egl.ConfigTable, error) {
	var table egl.ConfigTable
	if err := c.call(CommandGetConfigs, nil, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

func (c *Client) CreateContext(config egl.Config, share uint32, version int) (uint32, error) {
	var data HandleData
	err := c.call(CommandCreateContext, CreateContextPayload{Config: int(config), Share: share, Version: version}, &data)
	return data.Handle, err
}

func (c *Client) DestroyContext(handle uint32) error {
	return c.call(CommandDestroyContext, HandlePayload{Handle: handle}, nil)
}

func (c *Client) CreateWindowSurface(config egl.Config, width, height int) (uint32, error) {
	var data HandleData
	err := c.call(CommandCreateWindowSurface, CreateWindowSurfacePayload{Config: int(config), Width: width, Height: height}, &data)
	return data.Handle, err
}

func (c *Client) DestroyWindowSurface(handle uint32) error {
	return c.call(CommandDestroyWindowSurface, HandlePayload{Handle: handle}, nil)
}

func (c *Client) CreateColorBuffer(width, height int, format egl.PixelFormat) (uint32, error) {
	var data HandleData
	err := c.call(CommandCreateColorBuffer, CreateColorBufferPayload{Width: width, Height: height, Format: uint32(format)}, &data)
	return data.Handle, err
}

func (c *Client) CloseColorBuffer(handle uint32) error {
	return c.call(CommandCloseColorBuffer, HandlePayload{Handle: handle}, nil)
}

func (c *Client) MakeCurrent(ctx, draw, read uint32) (bool, error) {
	var data BoolData
	err := c.call(CommandMakeCurrent, MakeCurrentPayload{Context: ctx, Draw: draw, Read: read}, &data)
	return data.OK, err
}

func (c *Client) pointer(cmd CommandType, size int, typ gles.DataType, stride int, data []byte) error {
	return c.call(cmd, PointerPayload{Size: size, Type: uint32(typ), Stride: stride, Data: data}, nil)
}

func (c *Client) VertexPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return c.pointer(CommandVertexPointer, size, typ, stride, data)
}

func (c *Client) NormalPointer(typ gles.DataType, stride int, data []byte) error {
	return c.pointer(CommandNormalPointer, 3, typ, stride, data)
}

func (c *Client) ColorPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return c.pointer(CommandColorPointer, size, typ, stride, data)
}

func (c *Client) TexCoordPointer(size int, typ gles.DataType, stride int, data []byte) error {
	return c.pointer(CommandTexCoordPointer, size, typ, stride, data)
}

func (c *Client) ClientActiveTexture(unit int) error {
	return c.call(CommandClientActiveTexture, UnitPayload{Unit: unit}, nil)
}

func (c *Client) EnableClientState(array gles.ArrayKind) error {
	return c.call(CommandEnableClientState, ArrayPayload{Array: uint32(array)}, nil)
}

func (c *Client) DisableClientState(array gles.ArrayKind) error {
	return c.call(CommandDisableClientState, ArrayPayload{Array: uint32(array)}, nil)
}

func (c *Client) PointSize(size float32) error {
	return c.call(CommandPointSize, PointSizePayload{Size: size}, nil)
}

func (c *Client) DrawArrays(mode gles.Primitive, first, count int) error {
	return c.call(CommandDrawArrays, DrawArraysPayload{Mode: uint32(mode), First: first, Count: count}, nil)
}

func (c *Client) DrawElements(mode gles.Primitive, count int, typ gles.DataType, indices []byte) error {
	return c.call(CommandDrawElements, DrawElementsPayload{Mode: uint32(mode), Count: count, Type: uint32(typ), Indices: indices}, nil)
}

func (c *Client) GetInteger(pname uint32) (int, error) {
	var data IntData
	err := c.call(CommandGetInteger, GetIntegerPayload{Pname: pname}, &data)
	return data.Value, err
}

// GetStatus retrieves host status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListResources retrieves every live host object
func (c *Client) ListResources() (*ResourcesData, error) {
	var data ResourcesData
	if err := c.call(CommandListResources, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RecentDraws retrieves up to limit of the most recent draws, newest last
func (c *Client) RecentDraws(limit int) (*DrawsData, error) {
	var data DrawsData
	if err := c.call(CommandRecentDraws, RecentDrawsPayload{Limit: limit}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
