package mcp

// HostStatusInput is the input for the host_status tool.
type HostStatusInput struct{}

// HostStatusOutput is the output for the host_status tool.
type HostStatusOutput struct {
	RendererVersion int   `json:"renderer_version"`
	Sessions        int   `json:"sessions"`
	Contexts        int   `json:"contexts"`
	Surfaces        int   `json:"surfaces"`
	ColorBuffers    int   `json:"color_buffers"`
	Draws           int64 `json:"draws"`
	UptimeSeconds   int64 `json:"uptime_seconds"`
}

// ListResourcesInput is the input for the list_resources tool.
type ListResourcesInput struct {
	Kind    string `json:"kind,omitempty" jsonschema:"Only list resources of this kind: context, surface or color_buffer"`
	Session uint64 `json:"session,omitempty" jsonschema:"Only list resources owned by this session number"`
}

// ResourceInfo describes one live host object.
type ResourceInfo struct {
	Kind    string `json:"kind"`
	Handle  uint32 `json:"handle"`
	Session uint64 `json:"session"`
	Config  int    `json:"config,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	Version int    `json:"version,omitempty"`
}

// ListResourcesOutput is the output for the list_resources tool.
type ListResourcesOutput struct {
	Resources []ResourceInfo `json:"resources"`
}

// RecentDrawsInput is the input for the recent_draws tool.
type RecentDrawsInput struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of draws to return, newest last (default: 20, max: 200)"`
	Session uint64 `json:"session,omitempty" jsonschema:"Only return draws issued by this session number"`
}

// DrawInfo describes one draw the host received.
type DrawInfo struct {
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

// RecentDrawsOutput is the output for the recent_draws tool.
type RecentDrawsOutput struct {
	Draws []DrawInfo `json:"draws"`
}

// ListConfigsInput is the input for the list_configs tool.
type ListConfigsInput struct{}

// ConfigInfo is one host config with named attributes.
type ConfigInfo struct {
	Index   int              `json:"index"`
	Format  string           `json:"format"`
	Attribs map[string]int32 `json:"attribs"`
}

// ListConfigsOutput is the output for the list_configs tool.
type ListConfigsOutput struct {
	Configs []ConfigInfo `json:"configs"`
}
