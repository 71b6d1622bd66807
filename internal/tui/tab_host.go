package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/rcgl/internal/rc"
)

// hostState is the last snapshot polled from the running host.
type hostState struct {
	connected bool
	status    rc.StatusData
	resources []rc.Resource
	draws     []rc.DrawRecord
	err       string
}

// resourceItem is a list item for one live host object.
type resourceItem struct {
	res rc.Resource
}

func (i resourceItem) Title() string {
	color := "42"
	switch i.res.Kind {
	case "surface":
		color = "39"
	case "color_buffer":
		color = "226"
	}
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
	return fmt.Sprintf("%s %s %d", dot, i.res.Kind, i.res.Handle)
}

func (i resourceItem) Description() string {
	r := i.res
	switch r.Kind {
	case "context":
		return fmt.Sprintf("session %d  config %d  GLES %d", r.Session, r.Config, r.Version)
	case "color_buffer":
		return fmt.Sprintf("session %d  %dx%d %s", r.Session, r.Width, r.Height, r.Format)
	default:
		return fmt.Sprintf("session %d  config %d  %dx%d", r.Session, r.Config, r.Width, r.Height)
	}
}

func (i resourceItem) FilterValue() string { return i.res.Kind }

// HostTab shows the live objects and recent draws of the running host.
type HostTab struct {
	list   list.Model
	state  hostState
	width  int
	height int
}

// NewHostTab creates an empty HostTab; it fills in on the first poll.
func NewHostTab() HostTab {
	return HostTab{list: newList("Live Objects", nil)}
}

// SetState replaces the displayed snapshot, keeping the selection when the
// same object is still alive.
func (h *HostTab) SetState(state hostState) {
	var selected uint32
	if item, ok := h.list.SelectedItem().(resourceItem); ok {
		selected = item.res.Handle
	}
	h.state = state

	items := make([]list.Item, 0, len(state.resources))
	idx := 0
	for i, r := range state.resources {
		if r.Handle == selected {
			idx = i
		}
		items = append(items, resourceItem{res: r})
	}
	h.list.SetItems(items)
	if len(items) > 0 {
		h.list.Select(idx)
	}
}

// Update handles messages for the host tab.
func (h HostTab) Update(msg tea.Msg) (HostTab, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		h.width = msg.Width
		h.height = msg.Height
		h.list.SetSize(listWidth(h.width), h.height)
		return h, nil
	}
	var cmd tea.Cmd
	h.list, cmd = h.list.Update(msg)
	return h, cmd
}

// View implements tea.Model.
func (h HostTab) View() string {
	if h.width == 0 || h.height == 0 {
		return ""
	}
	if !h.state.connected {
		msg := "Host not running\nStart it with: rcgl host"
		if h.state.err != "" {
			msg += "\n\n" + h.state.err
		}
		return placeholder(msg, h.width, h.height)
	}

	leftWidth := listWidth(h.width)
	rightWidth := h.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(h.height).
		Render(h.list.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, detailPane(h.renderDraws(h.height-4), rightWidth, h.height))
}

// renderDraws lists the most recent draws, newest last, in at most rows
// lines.
func (h HostTab) renderDraws(rows int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Recent Draws"))
	b.WriteString("\n\n")

	draws := h.state.draws
	if len(draws) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(none)"))
		return b.String()
	}
	if rows < 1 {
		rows = 1
	}
	if len(draws) > rows {
		draws = draws[len(draws)-rows:]
	}

	callStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for _, d := range draws {
		line := callStyle.Render(fmt.Sprintf("%s %s ×%d", d.Call, d.Mode, d.Count))
		extra := fmt.Sprintf(" ctx %d", d.Context)
		if d.PointSize > 0 {
			extra += fmt.Sprintf(" size %g", d.PointSize)
		}
		if len(d.Arrays) > 0 {
			extra += " " + strings.Join(d.Arrays, " ")
		}
		b.WriteString(line + dimStyle.Render(extra) + "\n")
	}
	return b.String()
}
