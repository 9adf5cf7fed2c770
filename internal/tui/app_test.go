package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arangr/arangr/internal/preview"
	"github.com/arangr/arangr/internal/tree"
)

// fakeLister serves a fixed directory layout without touching the
// filesystem.
type fakeLister struct {
	entries map[string][]tree.Entry
}

func (f fakeLister) List(path string) ([]tree.Entry, error) { return f.entries[path], nil }
func (f fakeLister) Probe(path string) error                { return nil }

func newTestModel(t *testing.T) Model {
	t.Helper()
	loader := tree.NewLoaderWith(fakeLister{entries: map[string][]tree.Entry{
		"/root": {
			{Name: "docs", IsDir: true},
			{Name: "main.go"},
			{Name: ".hidden"},
		},
		"/root/docs": {
			{Name: "notes.md"},
		},
	}})
	root := &tree.Node{Path: "/root", Name: "root", IsDir: true}
	return New(root, Options{Loader: loader})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNew(t *testing.T) {
	m := newTestModel(t)

	if m.panel != PanelTree {
		t.Errorf("initial panel = %v, want PanelTree", m.panel)
	}
	if m.cursor != 0 {
		t.Errorf("initial cursor = %d, want 0", m.cursor)
	}
	// Root plus its two visible children; the dotfile stays hidden.
	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	if m.rows[0].node.Name != "root" || m.rows[0].depth != 0 {
		t.Errorf("rows[0] = %q depth %d", m.rows[0].node.Name, m.rows[0].depth)
	}
	if m.rows[1].node.Name != "docs" || m.rows[1].depth != 1 {
		t.Errorf("rows[1] = %q depth %d, want docs at depth 1", m.rows[1].node.Name, m.rows[1].depth)
	}
}

func TestModelUpdateWindowSize(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	got := updated.(Model)

	if got.width != 120 || got.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", got.width, got.height)
	}
}

func TestEnterExpandsAndCollapsesDirectory(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 1 // docs

	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)
	if len(m.rows) != 4 {
		t.Fatalf("rows after expand = %d, want 4", len(m.rows))
	}
	if m.rows[2].node.Name != "notes.md" || m.rows[2].depth != 2 {
		t.Errorf("rows[2] = %q depth %d, want notes.md at depth 2", m.rows[2].node.Name, m.rows[2].depth)
	}

	updated, _ = m.Update(keyMsg("enter"))
	m = updated.(Model)
	if len(m.rows) != 3 {
		t.Errorf("rows after collapse = %d, want 3", len(m.rows))
	}
}

func TestCollapseKey(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 1
	updated, _ := m.Update(keyMsg("enter"))
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("h"))
	m = updated.(Model)
	if len(m.rows) != 3 {
		t.Errorf("rows = %d, want collapsed back to 3", len(m.rows))
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("k"))
	m = updated.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want clamped at 0", m.cursor)
	}

	for i := 0; i < 10; i++ {
		updated, _ = m.Update(keyMsg("j"))
		m = updated.(Model)
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want clamped at %d", m.cursor, len(m.rows)-1)
	}
}

func TestGotoStartAndEnd(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("G"))
	m = updated.(Model)
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor after G = %d, want last row", m.cursor)
	}

	updated, _ = m.Update(keyMsg("g"))
	m = updated.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", m.cursor)
	}
}

func TestHiddenToggle(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("."))
	m = updated.(Model)
	if len(m.rows) != 4 {
		t.Fatalf("rows with hidden shown = %d, want 4", len(m.rows))
	}

	updated, _ = m.Update(keyMsg("."))
	m = updated.(Model)
	if len(m.rows) != 3 {
		t.Errorf("rows with hidden filtered = %d, want 3", len(m.rows))
	}
}

func TestTabCyclesPanels(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(keyMsg("tab"))
	m = updated.(Model)
	if m.panel != PanelPreview {
		t.Errorf("panel = %v, want PanelPreview", m.panel)
	}

	updated, _ = m.Update(keyMsg("esc"))
	m = updated.(Model)
	if m.panel != PanelTree {
		t.Errorf("panel after esc = %v, want PanelTree", m.panel)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestStalePreviewResultIsDropped(t *testing.T) {
	m := newTestModel(t)
	m.currentPath = "/root/main.go"
	m.loading = true

	updated, _ := m.Update(previewMsg{
		path:    "/root/other.go",
		preview: preview.Preview{Category: preview.CategoryText, Text: "old"},
	})
	m = updated.(Model)

	if m.current != nil {
		t.Error("a result for a superseded path should not land")
	}
	if !m.loading {
		t.Error("loading flag should survive a stale result")
	}
}

func TestPreviewResultLands(t *testing.T) {
	m := newTestModel(t)
	m.currentPath = "/root/main.go"
	m.loading = true

	updated, _ := m.Update(previewMsg{
		path:    "/root/main.go",
		preview: preview.Preview{Category: preview.CategoryText, Text: "package main"},
	})
	m = updated.(Model)

	if m.loading {
		t.Error("loading should clear")
	}
	if m.current == nil || m.current.Text != "package main" {
		t.Errorf("current = %+v, want the delivered preview", m.current)
	}
}

func TestRenderPreviewText(t *testing.T) {
	p := &preview.Preview{
		Category: preview.CategoryText,
		Text:     "hello world",
		Metadata: map[string]string{"type": "Text Document"},
	}
	out := renderPreview(p)
	if !strings.Contains(out, "hello world") {
		t.Errorf("output missing content: %q", out)
	}
	if !strings.Contains(out, "Text Document") {
		t.Errorf("output missing type label: %q", out)
	}
}

func TestRenderPreviewError(t *testing.T) {
	p := preview.ErrorPreview("office", preview.ErrCorruptOrEncrypted)
	out := renderPreview(&p)
	if !strings.Contains(out, "error") {
		t.Errorf("output missing error badge: %q", out)
	}
}

func TestRenderPreviewTruncatedNote(t *testing.T) {
	p := &preview.Preview{
		Category:  preview.CategoryText,
		Text:      "partial",
		Truncated: true,
	}
	out := renderPreview(p)
	if !strings.Contains(out, "(preview truncated)") {
		t.Errorf("output missing truncation note: %q", out)
	}
}

func TestRenderTable(t *testing.T) {
	tbl := &preview.Table{Sheets: []preview.Sheet{
		{Name: "Budget", Rows: [][]string{{"Item", "Cost"}, {"Coffee", "4"}}, Truncated: true},
	}}
	out := renderTable(tbl)
	if !strings.Contains(out, "Budget") {
		t.Errorf("output missing sheet name: %q", out)
	}
	if !strings.Contains(out, "Item │ Cost") {
		t.Errorf("output missing joined row: %q", out)
	}
	if !strings.Contains(out, "(more rows not shown)") {
		t.Errorf("output missing truncation note: %q", out)
	}
	if renderTable(nil) != "" {
		t.Error("nil table should render empty")
	}
}

func TestRenderMetadata(t *testing.T) {
	p := &preview.Preview{
		Category: preview.CategoryImage,
		Metadata: map[string]string{
			"format": "png",
			"width":  "640",
			"height": "480",
		},
	}
	out := renderMetadata(p)
	if !strings.Contains(out, "format: png") || !strings.Contains(out, "width: 640") {
		t.Errorf("renderMetadata = %q", out)
	}
}
