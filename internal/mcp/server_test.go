package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/rcgl/internal/egl"
	"github.com/1broseidon/rcgl/internal/rc"
)

type fakeInspector struct {
	status    rc.StatusData
	resources []rc.Resource
	draws     []rc.DrawRecord
	table     egl.ConfigTable
	err       error

	lastLimit int
	closed    int
}

func (f *fakeInspector) GetStatus() (*rc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

func (f *fakeInspector) ListResources() (*rc.ResourcesData, error) {
	return &rc.ResourcesData{Resources: f.resources}, f.err
}

func (f *fakeInspector) RecentDraws(limit int) (*rc.DrawsData, error) {
	f.lastLimit = limit
	draws := f.draws
	if limit > 0 && limit < len(draws) {
		draws = draws[len(draws)-limit:]
	}
	return &rc.DrawsData{Draws: draws}, f.err
}

func (f *fakeInspector) Configs() (*egl.ConfigTable, error) {
	return &f.table, f.err
}

func (f *fakeInspector) Close() error {
	f.closed++
	return nil
}

func newTestServer(f *fakeInspector) *Server {
	return newServer(func() (Inspector, error) { return f, nil }, nil)
}

func TestHostStatus(t *testing.T) {
	f := &fakeInspector{status: rc.StatusData{RendererVersion: 2, Sessions: 1, Contexts: 3, Draws: 40}}
	s := newTestServer(f)

	_, out, err := s.handleHostStatus(context.Background(), nil, HostStatusInput{})
	if err != nil {
		t.Fatalf("host_status: %v", err)
	}
	if out.RendererVersion != 2 || out.Contexts != 3 || out.Draws != 40 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if f.closed != 1 {
		t.Fatalf("host connection closed %d times, want 1", f.closed)
	}
}

func TestHostStatusDialError(t *testing.T) {
	s := newServer(func() (Inspector, error) { return nil, errors.New("no host") }, nil)
	_, _, err := s.handleHostStatus(context.Background(), nil, HostStatusInput{})
	if err == nil || !strings.Contains(err.Error(), "host_status") || !strings.Contains(err.Error(), "no host") {
		t.Fatalf("err = %v", err)
	}
}

func TestListResourcesFilters(t *testing.T) {
	f := &fakeInspector{resources: []rc.Resource{
		{Kind: "context", Handle: 1, Session: 1},
		{Kind: "surface", Handle: 2, Session: 1, Width: 8, Height: 8},
		{Kind: "context", Handle: 3, Session: 2},
	}}
	s := newTestServer(f)

	tests := []struct {
		name string
		args ListResourcesInput
		want []uint32
	}{
		{"all", ListResourcesInput{}, []uint32{1, 2, 3}},
		{"by kind", ListResourcesInput{Kind: "context"}, []uint32{1, 3}},
		{"by session", ListResourcesInput{Session: 1}, []uint32{1, 2}},
		{"both", ListResourcesInput{Kind: "context", Session: 2}, []uint32{3}},
		{"none", ListResourcesInput{Kind: "color_buffer"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListResources(context.Background(), nil, tt.args)
			if err != nil {
				t.Fatalf("list_resources: %v", err)
			}
			if len(out.Resources) != len(tt.want) {
				t.Fatalf("got %+v, want handles %v", out.Resources, tt.want)
			}
			for i, r := range out.Resources {
				if r.Handle != tt.want[i] {
					t.Fatalf("got %+v, want handles %v", out.Resources, tt.want)
				}
			}
		})
	}

	if _, _, err := s.handleListResources(context.Background(), nil, ListResourcesInput{Kind: "pixmap"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRecentDrawsLimitAndSession(t *testing.T) {
	var draws []rc.DrawRecord
	for i := 0; i < 30; i++ {
		draws = append(draws, rc.DrawRecord{Session: uint64(i%2 + 1), Count: i})
	}
	f := &fakeInspector{draws: draws}
	s := newTestServer(f)

	_, out, err := s.handleRecentDraws(context.Background(), nil, RecentDrawsInput{})
	if err != nil {
		t.Fatalf("recent_draws: %v", err)
	}
	if f.lastLimit != defaultDrawLimit || len(out.Draws) != defaultDrawLimit || out.Draws[len(out.Draws)-1].Count != 29 {
		t.Fatalf("default limit: host limit %d, got %d draws", f.lastLimit, len(out.Draws))
	}

	_, out, err = s.handleRecentDraws(context.Background(), nil, RecentDrawsInput{Limit: 3, Session: 1})
	if err != nil {
		t.Fatalf("recent_draws: %v", err)
	}
	if f.lastLimit != 0 {
		t.Fatalf("session filter should query full history, asked for %d", f.lastLimit)
	}
	want := []int{24, 26, 28}
	if len(out.Draws) != len(want) {
		t.Fatalf("got %+v", out.Draws)
	}
	for i, d := range out.Draws {
		if d.Count != want[i] || d.Session != 1 {
			t.Fatalf("got %+v, want counts %v", out.Draws, want)
		}
	}

	if _, _, err := s.handleRecentDraws(context.Background(), nil, RecentDrawsInput{Limit: 1000}); err != nil {
		t.Fatalf("recent_draws: %v", err)
	}
	if f.lastLimit != maxDrawLimit {
		t.Fatalf("limit not clamped: %d", f.lastLimit)
	}
}

func TestListConfigs(t *testing.T) {
	f := &fakeInspector{table: egl.ConfigTable{
		Attribs: []int32{egl.RedSize, egl.GreenSize, egl.BlueSize, egl.AlphaSize, egl.ConfigID},
		Values: [][]int32{
			{8, 8, 8, 8, 1},
			{5, 6, 5, 0, 2},
			{3, 3, 2, 0, 3},
		},
	}}
	s := newTestServer(f)

	_, out, err := s.handleListConfigs(context.Background(), nil, ListConfigsInput{})
	if err != nil {
		t.Fatalf("list_configs: %v", err)
	}
	wantFormats := []string{"RGBA8888", "RGB565", "unknown"}
	if len(out.Configs) != len(wantFormats) {
		t.Fatalf("got %+v", out.Configs)
	}
	for i, c := range out.Configs {
		if c.Index != i || c.Format != wantFormats[i] || c.Attribs["config_id"] != int32(i+1) {
			t.Fatalf("config %d = %+v", i, c)
		}
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer("/nonexistent/rcgl.sock", nil)
	if s.mcpServer == nil {
		t.Fatalf("expected MCP server")
	}
	if _, _, err := s.handleHostStatus(context.Background(), nil, HostStatusInput{}); err == nil {
		t.Fatalf("expected dial error for missing socket")
	}
}
