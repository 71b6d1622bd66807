package rc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents the render-control and GLES commands carried on
// the wire
type CommandType string

const (
	CommandRendererVersion      CommandType = "RENDERER_VERSION"
	CommandEGLVersion           CommandType = "EGL_VERSION"
	CommandQueryEGLString       CommandType = "QUERY_EGL_STRING"
	CommandGetConfigs           CommandType = "GET_CONFIGS"
	CommandCreateContext        CommandType = "CREATE_CONTEXT"
	CommandDestroyContext       CommandType = "DESTROY_CONTEXT"
	CommandCreateWindowSurface  CommandType = "CREATE_WINDOW_SURFACE"
	CommandDestroyWindowSurface CommandType = "DESTROY_WINDOW_SURFACE"
	CommandCreateColorBuffer    CommandType = "CREATE_COLOR_BUFFER"
	CommandCloseColorBuffer     CommandType = "CLOSE_COLOR_BUFFER"
	CommandMakeCurrent          CommandType = "MAKE_CURRENT"

	CommandVertexPointer       CommandType = "VERTEX_POINTER"
	CommandNormalPointer       CommandType = "NORMAL_POINTER"
	CommandColorPointer        CommandType = "COLOR_POINTER"
	CommandTexCoordPointer     CommandType = "TEX_COORD_POINTER"
	CommandClientActiveTexture CommandType = "CLIENT_ACTIVE_TEXTURE"
	CommandEnableClientState   CommandType = "ENABLE_CLIENT_STATE"
	CommandDisableClientState  CommandType = "DISABLE_CLIENT_STATE"
	CommandPointSize           CommandType = "POINT_SIZE"
	CommandDrawArrays          CommandType = "DRAW_ARRAYS"
	CommandDrawElements        CommandType = "DRAW_ELEMENTS"
	CommandGetInteger          CommandType = "GET_INTEGER"

	CommandGetStatus     CommandType = "GET_STATUS"
	CommandListResources CommandType = "LIST_RESOURCES"
	CommandRecentDraws   CommandType = "RECENT_DRAWS"
)

// Request represents one command sent from client to host
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents the host's reply to one request
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type HandlePayload struct {
	Handle uint32 `json:"handle"`
}

type NamePayload struct {
	Name int32 `json:"name"`
}

type CreateContextPayload struct {
	Config  int    `json:"config"`
	Share   uint32 `json:"share"`
	Version int    `json:"version"`
}

type CreateWindowSurfacePayload struct {
	Config int `json:"config"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CreateColorBufferPayload struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format uint32 `json:"format"`
}

type MakeCurrentPayload struct {
	Context uint32 `json:"context"`
	Draw    uint32 `json:"draw"`
	Read    uint32 `json:"read"`
}

// PointerPayload carries attribute data inline; Data is base64 on the wire.
type PointerPayload struct {
	Size   int    `json:"size"`
	Type   uint32 `json:"type"`
	Stride int    `json:"stride"`
	Data   []byte `json:"data"`
}

type UnitPayload struct {
	Unit int `json:"unit"`
}

type ArrayPayload struct {
	Array uint32 `json:"array"`
}

type PointSizePayload struct {
	Size float32 `json:"size"`
}

type DrawArraysPayload struct {
	Mode  uint32 `json:"mode"`
	First int    `json:"first"`
	Count int    `json:"count"`
}

type DrawElementsPayload struct {
	Mode    uint32 `json:"mode"`
	Count   int    `json:"count"`
	Type    uint32 `json:"type"`
	Indices []byte `json:"indices"`
}

type GetIntegerPayload struct {
	Pname uint32 `json:"pname"`
}

type RecentDrawsPayload struct {
	Limit int `json:"limit"`
}

type HandleData struct {
	Handle uint32 `json:"handle"`
}

type BoolData struct {
	OK bool `json:"ok"`
}

type IntData struct {
	Value int `json:"value"`
}

type StringData struct {
	Value string `json:"value"`
}

type VersionData struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	RendererVersion int   `json:"renderer_version"`
	Sessions        int   `json:"sessions"`
	Contexts        int   `json:"contexts"`
	Surfaces        int   `json:"surfaces"`
	ColorBuffers    int   `json:"color_buffers"`
	Draws           int64 `json:"draws"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
}

// Resource describes one live host object
type Resource struct {
	Kind    string `json:"kind"`
	Handle  uint32 `json:"handle"`
	Session uint64 `json:"session"`
	Config  int    `json:"config,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	Version int    `json:"version,omitempty"`
}

// ResourcesData represents the data returned by LIST_RESOURCES
type ResourcesData struct {
	Resources []Resource `json:"resources"`
}

// DrawRecord describes one draw the host received
type DrawRecord struct {
	Session   uint64   `json:"session"`
	Context   uint32   `json:"context"`
	Surface   uint32   `json:"surface"`
	Call      string   `json:"call"`
	Mode      string   `json:"mode"`
	Count     int      `json:"count"`
	PointSize float32  `json:"point_size,omitempty"`
	Arrays    []string `json:"arrays,omitempty"`
	Time      string   `json:"time"`
}

// DrawsData represents the data returned by RECENT_DRAWS
type DrawsData struct {
	Draws []DrawRecord `json:"draws"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
