package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/ion-engine/stream"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	crumbStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseModel struct {
	filename string
	format   string
	maxDepth int

	err    error
	roots  []*renderNode
	stack  []*renderNode // drill-down path; empty = top level
	cursor int
	height int

	filter    textinput.Model
	filtering bool
}

type loadedMsg struct {
	err   error
	roots []*renderNode
}

func newBrowseModel(filename, format string, maxDepth int) *browseModel {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.CharLimit = 64
	return &browseModel{
		filename: filename,
		format:   format,
		maxDepth: maxDepth,
		height:   24,
		filter:   filter,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load
}

func (m *browseModel) load() tea.Msg {
	opts := []stream.Option{}
	if m.maxDepth > 0 {
		opts = append(opts, stream.WithMaxDepth(m.maxDepth))
	}
	r, err := openReader(m.filename, m.format, opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	var roots []*renderNode
	for {
		v, ok, err := r.Next()
		if err != nil {
			return loadedMsg{err: err}
		}
		if !ok {
			break
		}
		node, err := renderValue(v)
		if err != nil {
			return loadedMsg{err: err}
		}
		roots = append(roots, node)
	}
	return loadedMsg{roots: roots}
}

// visible returns the current listing: the top-level values or the
// children of the drilled-into container, filtered when a filter is set.
func (m *browseModel) visible() []*renderNode {
	items := m.roots
	if len(m.stack) > 0 {
		items = m.stack[len(m.stack)-1].children
	}
	query := strings.ToLower(m.filter.Value())
	if query == "" {
		return items
	}
	var out []*renderNode
	for _, n := range items {
		if strings.Contains(strings.ToLower(n.label), query) {
			out = append(out, n)
		}
	}
	return out
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.roots = msg.roots
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter.Blur()
				m.cursor = 0
				return m, nil
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.cursor = 0
				return m, cmd
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "enter", "right", "l":
			items := m.visible()
			if m.cursor < len(items) && len(items[m.cursor].children) > 0 {
				m.stack = append(m.stack, items[m.cursor])
				m.cursor = 0
				m.filter.SetValue("")
			}
		case "esc", "left", "h":
			if len(m.stack) > 0 {
				m.stack = m.stack[:len(m.stack)-1]
				m.cursor = 0
				m.filter.SetValue("")
			}
		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ionview - "+m.filename) + "\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
		b.WriteString(helpStyle.Render("q: quit") + "\n")
		return b.String()
	}
	if m.roots == nil {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if len(m.stack) > 0 {
		crumbs := make([]string, len(m.stack))
		for i, n := range m.stack {
			crumbs[i] = n.label
		}
		b.WriteString(crumbStyle.Render(strings.Join(crumbs, " > ")) + "\n\n")
	}

	items := m.visible()
	if len(items) == 0 {
		b.WriteString(helpStyle.Render("(empty)") + "\n")
	}
	window := m.height - 8
	if window < 1 {
		window = 1
	}
	start := 0
	if m.cursor >= window {
		start = m.cursor - window + 1
	}
	for i := start; i < len(items) && i < start+window; i++ {
		line := items[i].label
		if len(items[i].children) > 0 {
			line += " ..."
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(valueStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(m.filter.View() + "\n")
	}
	b.WriteString(helpStyle.Render("up/down: move  enter: open  esc: back  /: filter  q: quit") + "\n")
	return b.String()
}

func runInteractive(filename, format string, maxDepth int) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newBrowseModel(filename, format, maxDepth), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
