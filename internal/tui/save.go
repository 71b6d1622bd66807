package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/rcgl/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // showing changes, awaiting confirm
	saveResult            // showing outcome message
)

type diffKind int

const (
	diffRemoved diffKind = iota
	diffAdded
)

// diffLine is one changed leaf of the config, as "path: value".
type diffLine struct {
	kind diffKind
	text string
}

// SaveOverlay shows the pending config changes and writes the file on
// confirmation.
type SaveOverlay struct {
	phase        savePhase
	diffLines    []diffLine
	err          error
	savedTo      string
	scrollOffset int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show computes the changes between original and current and opens the
// preview. With nothing changed it goes straight to the result.
func (s *SaveOverlay) Show(original, current *config.Config) {
	s.err = nil
	s.savedTo = ""
	s.scrollOffset = 0

	s.diffLines = computeDiffLines(original, current)
	if len(s.diffLines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. Confirming writes cfg
// to path, or to the default config path when path is empty.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}

	switch km.String() {
	case "esc":
		s.phase = saveHidden
	case "enter", "y":
		s.err = save(cfg, path)
		if s.err == nil {
			s.savedTo = path
			if s.savedTo == "" {
				s.savedTo, _ = config.DefaultConfigPath()
			}
		}
		s.phase = saveResult
	case "up", "k":
		if s.scrollOffset > 0 {
			s.scrollOffset--
		}
	case "down", "j":
		if s.scrollOffset < len(s.diffLines)-1 {
			s.scrollOffset++
		}
	}
	return s
}

func save(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	switch s.phase {
	case savePreview:
		return s.viewPreview(width, height)
	case saveResult:
		return s.viewResult(width, height)
	}
	return ""
}

func overlayBox(areaW, areaH, maxW int, content string) string {
	boxW := areaW - 8
	if boxW > maxW {
		boxW = maxW
	}
	if boxW < 30 {
		boxW = 30
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(areaW, areaH, lipgloss.Center, lipgloss.Center, box)
}

func (s SaveOverlay) viewPreview(areaW, areaH int) string {
	addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Title, blank lines, footer, border and padding take ten rows.
	rows := areaH - 10
	if rows < 3 {
		rows = 3
	}
	start := s.scrollOffset
	if start > len(s.diffLines)-rows {
		start = len(s.diffLines) - rows
	}
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > len(s.diffLines) {
		end = len(s.diffLines)
	}

	lines := make([]string, 0, end-start)
	for _, dl := range s.diffLines[start:end] {
		if dl.kind == diffAdded {
			lines = append(lines, addStyle.Render("+ "+dl.text))
		} else {
			lines = append(lines, rmStyle.Render("- "+dl.text))
		}
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
		Render(fmt.Sprintf("Save Config: %d pending changes", changedPaths(s.diffLines)))
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
		Render("enter: save  esc: cancel  j/k: scroll")
	return overlayBox(areaW, areaH, 80, title+"\n\n"+strings.Join(lines, "\n")+"\n\n"+footer)
}

func (s SaveOverlay) viewResult(areaW, areaH int) string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Config saved to "+s.savedTo) +
			"\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("Restart the host to apply it")
	}
	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	return overlayBox(areaW, areaH, 60, msg+"\n\n"+footer)
}

func changedPaths(lines []diffLine) int {
	paths := make(map[string]struct{})
	for _, l := range lines {
		path, _, _ := strings.Cut(l.text, ":")
		paths[path] = struct{}{}
	}
	return len(paths)
}

// computeDiffLines lists every leaf whose value differs, sorted by path,
// the old value before the new one.
func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}
	before, err := flattenConfig(original)
	if err != nil {
		return nil
	}
	after, err := flattenConfig(current)
	if err != nil {
		return nil
	}

	paths := make([]string, 0, len(before)+len(after))
	for p := range before {
		paths = append(paths, p)
	}
	for p := range after {
		if _, ok := before[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var out []diffLine
	for _, p := range paths {
		old, hadOld := before[p]
		cur, hasCur := after[p]
		if hadOld && hasCur && old == cur {
			continue
		}
		if hadOld {
			out = append(out, diffLine{kind: diffRemoved, text: p + ": " + old})
		}
		if hasCur {
			out = append(out, diffLine{kind: diffAdded, text: p + ": " + cur})
		}
	}
	return out
}

// flattenConfig maps the dotted path of every scalar in cfg's YAML form to
// its value. Sequence entries use their index as a path segment.
func flattenConfig(cfg *config.Config) (map[string]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if len(doc.Content) > 0 {
		flattenNode(doc.Content[0], "", out)
	}
	return out, nil
}

func flattenNode(n *yaml.Node, prefix string, out map[string]string) {
	join := func(seg string) string {
		if prefix == "" {
			return seg
		}
		return prefix + "." + seg
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			flattenNode(n.Content[i+1], join(n.Content[i].Value), out)
		}
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			out[prefix] = "[]"
		}
		for i, item := range n.Content {
			flattenNode(item, join(fmt.Sprint(i)), out)
		}
	case yaml.ScalarNode:
		out[prefix] = n.Value
	}
}

// cloneConfig deep-copies cfg through YAML so maps and slices are not
// shared with the edited config.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
