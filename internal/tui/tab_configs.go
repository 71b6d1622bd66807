package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/rcgl/internal/config"
	"github.com/1broseidon/rcgl/internal/egl"
)

// configItem is a list item for one entry of host.configs.
type configItem struct {
	index   int
	attribs map[string]int
}

func attr(m map[string]int, a int32) int32 {
	return int32(m[egl.AttribName(a)])
}

func (i configItem) format() egl.PixelFormat {
	m := i.attribs
	return egl.PixelFormatFor(attr(m, egl.RedSize), attr(m, egl.GreenSize), attr(m, egl.BlueSize), attr(m, egl.AlphaSize))
}

func (i configItem) Title() string {
	return fmt.Sprintf("#%d %s", i.attribs[egl.AttribName(egl.ConfigID)], i.format())
}

func (i configItem) Description() string {
	return fmt.Sprintf("depth %d  stencil %d  %s",
		i.attribs[egl.AttribName(egl.DepthSize)],
		i.attribs[egl.AttribName(egl.StencilSize)],
		surfaceTypes(attr(i.attribs, egl.SurfaceType)))
}

func (i configItem) FilterValue() string { return i.Title() }

func surfaceTypes(v int32) string {
	var parts []string
	if v&egl.WindowBit != 0 {
		parts = append(parts, "window")
	}
	if v&egl.PbufferBit != 0 {
		parts = append(parts, "pbuffer")
	}
	if v&egl.PixmapBit != 0 {
		parts = append(parts, "pixmap")
	}
	if len(parts) == 0 {
		return "no surfaces"
	}
	return strings.Join(parts, "|")
}

// ConfigsTab lists the EGL configs the host offers and edits their
// attributes.
type ConfigsTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	// Attribute edit mode
	editing   bool
	textInput textinput.Model
	lastError string
}

func newList(title string, items []list.Item) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

// NewConfigsTab creates a ConfigsTab editing cfg in place.
func NewConfigsTab(cfg *config.Config) ConfigsTab {
	ti := textinput.New()
	ti.Placeholder = "e.g. depth_size=16 (value - removes)"
	ti.CharLimit = 64

	return ConfigsTab{
		list:      newList("EGL Configs", buildConfigItems(cfg)),
		cfg:       cfg,
		textInput: ti,
	}
}

// Update handles messages for the configs tab.
func (c ConfigsTab) Update(msg tea.Msg) (ConfigsTab, tea.Cmd) {
	if c.editing {
		return c.updateEditing(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.list.SetSize(listWidth(c.width), c.height)
		return c, nil

	case tea.KeyMsg:
		item, ok := c.list.SelectedItem().(configItem)
		switch msg.String() {
		case "e":
			if ok {
				c.editing = true
				c.lastError = ""
				c.textInput.Reset()
				c.textInput.Focus()
				return c, textinput.Blink
			}
			return c, nil
		case "c":
			if ok {
				c.cloneConfig(item.index)
				c.refresh()
				c.list.Select(len(c.cfg.Host.Configs) - 1)
			}
			return c, nil
		case "x", "delete":
			if ok {
				c.removeConfig(item.index)
				c.refresh()
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.list, cmd = c.list.Update(msg)
	return c, cmd
}

func (c ConfigsTab) updateEditing(msg tea.Msg) (ConfigsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := c.list.SelectedItem().(configItem); ok {
				if err := c.setAttribute(item.index, c.textInput.Value()); err != nil {
					c.lastError = err.Error()
					return c, nil
				}
				c.refresh()
			}
			c.editing = false
			c.textInput.Blur()
			return c, nil
		case "esc":
			c.editing = false
			c.lastError = ""
			c.textInput.Blur()
			return c, nil
		}
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		return c, nil
	}

	var cmd tea.Cmd
	c.textInput, cmd = c.textInput.Update(msg)
	return c, cmd
}

func (c *ConfigsTab) refresh() {
	c.list.SetItems(buildConfigItems(c.cfg))
}

// cloneConfig appends a copy of config i with the next free config id.
func (c *ConfigsTab) cloneConfig(i int) {
	if c.cfg == nil || i < 0 || i >= len(c.cfg.Host.Configs) {
		return
	}
	idKey := egl.AttribName(egl.ConfigID)
	next := 0
	for _, m := range c.cfg.Host.Configs {
		if m[idKey] > next {
			next = m[idKey]
		}
	}
	clone := make(map[string]int, len(c.cfg.Host.Configs[i]))
	for k, v := range c.cfg.Host.Configs[i] {
		clone[k] = v
	}
	clone[idKey] = next + 1
	c.cfg.Host.Configs = append(c.cfg.Host.Configs, clone)
}

// removeConfig deletes config i. The last config is kept.
func (c *ConfigsTab) removeConfig(i int) {
	if c.cfg == nil || len(c.cfg.Host.Configs) <= 1 || i < 0 || i >= len(c.cfg.Host.Configs) {
		return
	}
	c.cfg.Host.Configs = append(c.cfg.Host.Configs[:i], c.cfg.Host.Configs[i+1:]...)
}

// setAttribute applies "name=value" to config i. A value of "-" removes the
// attribute.
func (c *ConfigsTab) setAttribute(i int, input string) error {
	if c.cfg == nil || i < 0 || i >= len(c.cfg.Host.Configs) {
		return fmt.Errorf("no config selected")
	}
	name, value, ok := strings.Cut(strings.TrimSpace(input), "=")
	if !ok {
		return fmt.Errorf("expected name=value")
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if _, known := egl.AttribByName(name); !known {
		return fmt.Errorf("unknown attribute %q", name)
	}
	m := c.cfg.Host.Configs[i]
	if value == "-" {
		delete(m, name)
		return nil
	}
	v, err := strconv.ParseInt(value, 0, 32)
	if err != nil || v < 0 {
		return fmt.Errorf("invalid value %q", value)
	}
	m[name] = int(v)
	return nil
}

// View implements tea.Model.
func (c ConfigsTab) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}

	leftWidth := listWidth(c.width)
	rightWidth := c.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	leftContent := c.list.View()
	if c.editing {
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(leftWidth)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Set attribute:") + "\n" +
			c.textInput.View() + "\n"
		if c.lastError != "" {
			prompt += lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(c.lastError) + "\n"
		}
		prompt += lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := c.height - lipgloss.Height(inputBlock)
		if listHeight < 1 {
			listHeight = 1
		}
		c.list.SetSize(leftWidth, listHeight)
		leftContent = inputBlock + "\n" + c.list.View()
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(c.height).
		Render(leftContent)

	var right string
	if item, ok := c.list.SelectedItem().(configItem); ok {
		right = detailPane(renderConfigDetail(item), rightWidth, c.height)
	} else {
		right = placeholder("No configs", rightWidth, c.height)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func buildConfigItems(cfg *config.Config) []list.Item {
	if cfg == nil {
		return nil
	}
	items := make([]list.Item, 0, len(cfg.Host.Configs))
	for i, m := range cfg.Host.Configs {
		items = append(items, configItem{index: i, attribs: m})
	}
	return items
}

func renderConfigDetail(item configItem) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	b.WriteString(titleStyle.Render(item.Title()))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	names := make([]string, 0, len(item.attribs))
	for name := range item.attribs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := strconv.Itoa(item.attribs[name])
		if name == egl.AttribName(egl.SurfaceType) {
			value += " (" + surfaceTypes(int32(item.attribs[name])) + ")"
		}
		b.WriteString(labelStyle.Render(name + ":"))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	b.WriteString(helpStyle.Render("e: set attribute  c: clone  x: remove"))
	return b.String()
}
