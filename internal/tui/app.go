package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/rcgl/internal/config"
	"github.com/1broseidon/rcgl/internal/rc"
)

const (
	pollInterval = time.Second
	drawsShown   = 50
)

// HostClient is the part of the render-control client the TUI polls.
type HostClient interface {
	GetStatus() (*rc.StatusData, error)
	ListResources() (*rc.ResourcesData, error)
	RecentDraws(limit int) (*rc.DrawsData, error)
	Close() error
}

// DialFunc opens a connection to the running host.
type DialFunc func() (HostClient, error)

type hostMsg hostState

type hostTickMsg struct{}

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	dial       DialFunc

	activeTab Tab

	generalTab    GeneralTab
	configsTab    ConfigsTab
	extensionsTab ExtensionsTab
	hostTab       HostTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	host hostState

	width  int
	height int
}

func newModel(configPath string, dial DialFunc) model {
	m := model{
		configPath: configPath,
		dial:       dial,
		activeTab:  TabGeneral,
	}

	if configPath == "" {
		m.result, m.loadErr = config.LoadWithSources()
	} else {
		m.result, m.loadErr = config.LoadFromPath(configPath)
	}

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
		// Snapshot for the diff preview on save.
		m.originalConfig = cloneConfig(cfg)
	}
	m.generalTab = NewGeneralTab(cfg)
	m.configsTab = NewConfigsTab(cfg)
	m.extensionsTab = NewExtensionsTab(cfg)
	m.hostTab = NewHostTab()
	return m
}

// pollHost queries the host on a fresh connection.
func pollHost(dial DialFunc) tea.Cmd {
	return func() tea.Msg {
		if dial == nil {
			return hostMsg{}
		}
		client, err := dial()
		if err != nil {
			return hostMsg{err: err.Error()}
		}
		defer client.Close()

		status, err := client.GetStatus()
		if err != nil {
			return hostMsg{err: err.Error()}
		}
		state := hostState{connected: true, status: *status}
		if res, err := client.ListResources(); err == nil {
			state.resources = res.Resources
		}
		if draws, err := client.RecentDraws(drawsShown); err == nil {
			state.draws = draws.Draws
		}
		return hostMsg(state)
	}
}

func tickHost() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return hostTickMsg{} })
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) editingConfig() bool {
	return m.result != nil && m.result.Config != nil
}

func (m model) resize(msg tea.WindowSizeMsg) model {
	m.width = msg.Width
	m.height = msg.Height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.generalTab, _ = m.generalTab.Update(subMsg)
	m.configsTab, _ = m.configsTab.Update(subMsg)
	m.extensionsTab, _ = m.extensionsTab.Update(subMsg)
	m.hostTab, _ = m.hostTab.Update(subMsg)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return pollHost(m.dial)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Host polling runs regardless of what has focus.
	switch msg := msg.(type) {
	case hostMsg:
		m.host = hostState(msg)
		m.hostTab.SetState(m.host)
		return m, tickHost()
	case hostTickMsg:
		return m, pollHost(m.dial)
	case tea.WindowSizeMsg:
		return m.resize(msg), nil
	}

	if m.saveOverlay.Active() {
		if msg, ok := msg.(tea.KeyMsg); ok {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.result.Config, m.configPath)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
			}
		}
		return m, nil
	}

	// ctrl+s opens the save overlay from any context, including forms.
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.editingConfig() {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// A tab capturing input gets every key; only ctrl+c escapes.
	capturing := (m.activeTab == TabGeneral && m.generalTab.editing) ||
		(m.activeTab == TabConfigs && m.configsTab.editing) ||
		(m.activeTab == TabExtensions && m.extensionsTab.adding)
	if capturing {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.updateActive(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3", "4":
			m.activeTab = Tab(km.String()[0] - '1')
			return m, nil
		case "r":
			if m.activeTab == TabHost {
				return m, pollHost(m.dial)
			}
		}
	}

	return m.updateActive(msg)
}

func (m model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabConfigs:
		m.configsTab, cmd = m.configsTab.Update(msg)
	case TabExtensions:
		m.extensionsTab, cmd = m.extensionsTab.Update(msg)
	case TabHost:
		m.hostTab, cmd = m.hostTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.host, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch {
	case m.saveOverlay.Active():
		content = m.saveOverlay.View(m.width, contentHeight)
	case m.loadErr != nil && m.activeTab != TabHost:
		content = placeholder("Config failed to load:\n"+m.loadErr.Error(), m.width, contentHeight)
	default:
		switch m.activeTab {
		case TabGeneral:
			content = m.generalTab.View()
		case TabConfigs:
			content = m.configsTab.View()
		case TabExtensions:
			content = m.extensionsTab.View()
		case TabHost:
			content = m.hostTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
