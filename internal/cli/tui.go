package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// glyphBrowser - Interactive glyph listing
// =============================================================================

// glyphBrowser is the bubbletea model behind `glyphs --interactive`.
// Typing "/" starts a name filter; enter picks the highlighted glyph.
type glyphBrowser struct {
	Opts     options.Options
	Glyphs   []glyph.Glyph
	Selected *glyph.Glyph

	visible   []int
	cursor    int
	offset    int
	height    int
	filter    string
	filtering bool
}

func newGlyphBrowser(opts options.Options, glyphs []glyph.Glyph) glyphBrowser {
	m := glyphBrowser{Opts: opts, Glyphs: glyphs, height: 15}
	m.applyFilter()
	return m
}

func (m glyphBrowser) Init() tea.Cmd {
	return nil
}

func (m glyphBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.filtering = true
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			g := m.Glyphs[m.visible[m.cursor]]
			m.Selected = &g
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m glyphBrowser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
	}
	m.applyFilter()
	return m, nil
}

// applyFilter recomputes the visible rows and clamps the cursor.
func (m *glyphBrowser) applyFilter() {
	m.visible = nil
	needle := strings.ToLower(m.filter)
	for i, g := range m.Glyphs {
		if needle == "" || strings.Contains(strings.ToLower(g.Name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
	m.offset = min(m.offset, m.cursor)
}

func (m *glyphBrowser) move(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.visible) {
		return
	}
	m.cursor = next
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m glyphBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Opts.FontName))
	b.WriteString("\n")
	if m.filtering {
		b.WriteString(listSelectedStyle.Render("/" + m.filter + "█"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ print rule  q quit"))
	}
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.visible))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		g := m.Glyphs[m.visible[i]]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, m.Opts.Selector + "-" + g.Name, glyphCodepoint(g)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Class", "Codepoint").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	pos := 0
	if len(m.visible) > 0 {
		pos = m.cursor + 1
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", pos, len(m.visible))))

	return b.String()
}
