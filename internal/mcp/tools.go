package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/rc"
)

const (
	defaultDrawLimit = 20
	maxDrawLimit     = 200
)

func (s *Server) handleHostStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ HostStatusInput) (*mcpsdk.CallToolResult, HostStatusOutput, error) {
	var out HostStatusOutput
	err := s.withHost("host_status", func(h Inspector) error {
		st, err := h.GetStatus()
		if err != nil {
			return err
		}
		out = HostStatusOutput{
			RendererVersion: st.RendererVersion,
			Sessions:        st.Sessions,
			Contexts:        st.Contexts,
			Surfaces:        st.Surfaces,
			ColorBuffers:    st.ColorBuffers,
			Draws:           st.Draws,
			UptimeSeconds:   st.UptimeSeconds,
		}
		return nil
	})
	if err != nil {
		return nil, HostStatusOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListResources(_ context.Context, _ *mcpsdk.CallToolRequest, args ListResourcesInput) (*mcpsdk.CallToolResult, ListResourcesOutput, error) {
	switch args.Kind {
	case "", "context", "surface", "color_buffer":
	default:
		return nil, ListResourcesOutput{}, fmt.Errorf("kind must be one of: context, surface, color_buffer")
	}

	out := ListResourcesOutput{Resources: []ResourceInfo{}}
	err := s.withHost("list_resources", func(h Inspector) error {
		data, err := h.ListResources()
		if err != nil {
			return err
		}
		for _, r := range data.Resources {
			if args.Kind != "" && r.Kind != args.Kind {
				continue
			}
			if args.Session != 0 && r.Session != args.Session {
				continue
			}
			out.Resources = append(out.Resources, resourceInfo(r))
		}
		return nil
	})
	if err != nil {
		return nil, ListResourcesOutput{}, err
	}
	return nil, out, nil
}

func resourceInfo(r rc.Resource) ResourceInfo {
	return ResourceInfo{
		Kind:    r.Kind,
		Handle:  r.Handle,
		Session: r.Session,
		Config:  r.Config,
		Width:   r.Width,
		Height:  r.Height,
		Format:  r.Format,
		Version: r.Version,
	}
}

func (s *Server) handleRecentDraws(_ context.Context, _ *mcpsdk.CallToolRequest, args RecentDrawsInput) (*mcpsdk.CallToolResult, RecentDrawsOutput, error) {
	limit := args.Limit
	if limit <= 0 {
		limit = defaultDrawLimit
	}
	if limit > maxDrawLimit {
		limit = maxDrawLimit
	}

	out := RecentDrawsOutput{Draws: []DrawInfo{}}
	err := s.withHost("recent_draws", func(h Inspector) error {
		// A session filter applies after the host trims to limit, so ask
		// for the whole history in that case.
		query := limit
		if args.Session != 0 {
			query = 0
		}
		data, err := h.RecentDraws(query)
		if err != nil {
			return err
		}
		for _, d := range data.Draws {
			if args.Session != 0 && d.Session != args.Session {
				continue
			}
			out.Draws = append(out.Draws, DrawInfo{
				Session:   d.Session,
				Context:   d.Context,
				Surface:   d.Surface,
				Call:      d.Call,
				Mode:      d.Mode,
				Count:     d.Count,
				PointSize: d.PointSize,
				Arrays:    d.Arrays,
				Time:      d.Time,
			})
		}
		if len(out.Draws) > limit {
			out.Draws = out.Draws[len(out.Draws)-limit:]
		}
		return nil
	})
	if err != nil {
		return nil, RecentDrawsOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListConfigs(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListConfigsInput) (*mcpsdk.CallToolResult, ListConfigsOutput, error) {
	out := ListConfigsOutput{Configs: []ConfigInfo{}}
	err := s.withHost("list_configs", func(h Inspector) error {
		table, err := h.Configs()
		if err != nil {
			return err
		}
		for i, row := range table.Values {
			info := ConfigInfo{Index: i, Attribs: make(map[string]int32, len(table.Attribs))}
			for j, attr := range table.Attribs {
				if j < len(row) {
					info.Attribs[egl.AttribName(attr)] = row[j]
				}
			}
			a := info.Attribs
			info.Format = egl.PixelFormatFor(a["red_size"], a["green_size"], a["blue_size"], a["alpha_size"]).String()
			out.Configs = append(out.Configs, info)
		}
		return nil
	})
	if err != nil {
		return nil, ListConfigsOutput{}, err
	}
	return nil, out, nil
}
