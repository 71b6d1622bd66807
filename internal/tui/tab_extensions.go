package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/rcgl/internal/config"
)

// extensionItem is a list item for one host EGL extension.
type extensionItem struct {
	name string
}

func (i extensionItem) Title() string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓") + " " + i.name
}

func (i extensionItem) Description() string {
	if strings.HasPrefix(i.name, "EGL_KHR_") {
		return "Khronos extension"
	}
	return "vendor extension"
}

func (i extensionItem) FilterValue() string { return i.name }

// ExtensionsTab edits the extension list the host reports. Clients still
// filter it against what they support.
type ExtensionsTab struct {
	list   list.Model
	cfg    *config.Config
	width  int
	height int

	// Add mode
	adding    bool
	textInput textinput.Model
}

// NewExtensionsTab creates an ExtensionsTab editing cfg in place.
func NewExtensionsTab(cfg *config.Config) ExtensionsTab {
	ti := textinput.New()
	ti.Placeholder = "e.g. EGL_KHR_image_base"
	ti.CharLimit = 96

	return ExtensionsTab{
		list:      newList("Host Extensions", buildExtensionItems(cfg)),
		cfg:       cfg,
		textInput: ti,
	}
}

// Update handles messages for the extensions tab.
func (e ExtensionsTab) Update(msg tea.Msg) (ExtensionsTab, tea.Cmd) {
	if e.adding {
		return e.updateAdding(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		e.list.SetSize(listWidth(e.width), e.height)
		return e, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			e.adding = true
			e.textInput.Reset()
			e.textInput.Focus()
			return e, textinput.Blink
		case "x", "delete":
			if item, ok := e.list.SelectedItem().(extensionItem); ok {
				e.removeExtension(item.name)
				e.list.SetItems(buildExtensionItems(e.cfg))
			}
			return e, nil
		}
	}

	var cmd tea.Cmd
	e.list, cmd = e.list.Update(msg)
	return e, cmd
}

func (e ExtensionsTab) updateAdding(msg tea.Msg) (ExtensionsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			for _, name := range strings.Fields(e.textInput.Value()) {
				e.addExtension(name)
			}
			e.list.SetItems(buildExtensionItems(e.cfg))
			e.adding = false
			e.textInput.Blur()
			return e, nil
		case "esc":
			e.adding = false
			e.textInput.Blur()
			return e, nil
		}
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		return e, nil
	}

	var cmd tea.Cmd
	e.textInput, cmd = e.textInput.Update(msg)
	return e, cmd
}

func (e *ExtensionsTab) addExtension(name string) {
	if e.cfg == nil {
		return
	}
	for _, ext := range e.cfg.Host.Extensions {
		if ext == name {
			return
		}
	}
	e.cfg.Host.Extensions = append(e.cfg.Host.Extensions, name)
}

func (e *ExtensionsTab) removeExtension(name string) {
	if e.cfg == nil {
		return
	}
	for i, ext := range e.cfg.Host.Extensions {
		if ext == name {
			e.cfg.Host.Extensions = append(e.cfg.Host.Extensions[:i], e.cfg.Host.Extensions[i+1:]...)
			return
		}
	}
}

// View implements tea.Model.
func (e ExtensionsTab) View() string {
	if e.width == 0 || e.height == 0 {
		return ""
	}

	leftWidth := listWidth(e.width)
	rightWidth := e.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	leftContent := e.list.View()
	if e.adding {
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(leftWidth)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Add extensions:") + "\n" +
			e.textInput.View() + "\n" +
			lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := e.height - lipgloss.Height(inputBlock)
		if listHeight < 1 {
			listHeight = 1
		}
		e.list.SetSize(leftWidth, listHeight)
		leftContent = inputBlock + "\n" + e.list.View()
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(e.height).
		Render(leftContent)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render("Extension string"))
	b.WriteString("\n\n")
	if e.cfg != nil && len(e.cfg.Host.Extensions) > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(rightWidth - 6).
			Render(strings.Join(e.cfg.Host.Extensions, " ")))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(empty)"))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true).Render("a: add  x: remove"))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, detailPane(b.String(), rightWidth, e.height))
}

func buildExtensionItems(cfg *config.Config) []list.Item {
	if cfg == nil {
		return nil
	}
	items := make([]list.Item, 0, len(cfg.Host.Extensions))
	for _, name := range cfg.Host.Extensions {
		items = append(items, extensionItem{name: name})
	}
	return items
}
