package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/iconfont/pkg/glyph"
	"github.com/matzehuels/iconfont/pkg/options"
)

func browserFixture() glyphBrowser {
	glyphs := []glyph.Glyph{
		glyph.New("arrow-left", 0xE001),
		glyph.New("arrow-right", 0xE002),
		glyph.New("star", 0xE003),
	}
	return newGlyphBrowser(options.Resolve(options.Config{}), glyphs)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m glyphBrowser, keys ...string) (glyphBrowser, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(glyphBrowser)
	}
	return m, cmd
}

func TestGlyphBrowserNavigate(t *testing.T) {
	m, _ := press(browserFixture(), "down", "down", "down", "up")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	m, cmd := press(m, "enter")
	if m.Selected == nil || m.Selected.Name != "arrow-right" {
		t.Fatalf("Selected = %+v", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
	if got := cssContent(*m.Selected); got != `content: "\e002";` {
		t.Errorf("cssContent = %q", got)
	}
}

func TestGlyphBrowserFilter(t *testing.T) {
	m, _ := press(browserFixture(), "/", "a", "r", "r")
	if !m.filtering || m.filter != "arr" {
		t.Fatalf("filtering=%v filter=%q", m.filtering, m.filter)
	}
	if len(m.visible) != 2 {
		t.Errorf("visible = %v, want the two arrows", m.visible)
	}

	m, _ = press(m, "o", "w", "-", "r")
	if len(m.visible) != 1 || m.Glyphs[m.visible[0]].Name != "arrow-right" {
		t.Errorf("visible = %v", m.visible)
	}

	m, _ = press(m, "enter", "enter")
	if m.Selected == nil || m.Selected.Name != "arrow-right" {
		t.Errorf("Selected = %+v", m.Selected)
	}
}

func TestGlyphBrowserFilterNoMatch(t *testing.T) {
	m, _ := press(browserFixture(), "/", "z", "enter")
	if len(m.visible) != 0 {
		t.Fatalf("visible = %v", m.visible)
	}
	m, cmd := press(m, "enter")
	if m.Selected != nil || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "[0/0]") {
		t.Error("view should show an empty position")
	}

	m, _ = press(m, "/", "backspace", "esc")
	if m.filter != "" || len(m.visible) != 3 {
		t.Errorf("esc should clear the filter, visible = %v", m.visible)
	}
}

func TestGlyphBrowserView(t *testing.T) {
	view := browserFixture().View()
	for _, want := range []string{"AppIcons", ".icon-arrow-left", "U+E001", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestGlyphBrowserWindowSize(t *testing.T) {
	next, _ := browserFixture().Update(tea.WindowSizeMsg{Width: 80, Height: 6})
	if m := next.(glyphBrowser); m.height != 5 {
		t.Errorf("height = %d, want the minimum of 5", m.height)
	}
}
