package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/arangr/arangr/internal/assistant"
	"github.com/arangr/arangr/internal/preview"
	"github.com/arangr/arangr/internal/scheduler"
	"github.com/arangr/arangr/internal/tree"
	"github.com/arangr/arangr/internal/tui/styles"
)

// Panel represents which panel is focused.
type Panel int

const (
	PanelTree Panel = iota
	PanelPreview
	PanelAsk
)

// row is one visible line of the flattened tree.
type row struct {
	node  *tree.Node
	depth int
}

// Model is the main application model.
type Model struct {
	// Engine
	loader  *tree.Loader
	sched   *scheduler.Scheduler
	client  *assistant.Client
	history *assistant.History

	// Tree state
	root     *tree.Node
	rows     []row
	expanded map[string]bool
	cursor   int

	// Preview state
	previewPane viewport.Model
	current     *preview.Preview
	currentPath string
	loading     bool

	// Assistant state
	askInput     textinput.Model
	answer       string
	asking       bool
	contextChars int

	// State
	panel       Panel
	showHidden  bool
	showHelp    bool
	statusMsg   string
	statusIsErr bool

	// Dimensions
	width  int
	height int

	// Keybindings
	keys KeyMap
}

// Options configures the TUI.
type Options struct {
	Loader       *tree.Loader
	Scheduler    *scheduler.Scheduler
	Client       *assistant.Client
	History      *assistant.History
	ContextChars int
}

// New creates a new Model rooted at the given directory.
func New(root *tree.Node, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about the selected file..."
	ti.PromptStyle = styles.AskPromptStyle
	ti.TextStyle = styles.AskInputStyle
	ti.PlaceholderStyle = styles.AskPlaceholderStyle
	ti.Prompt = "? "
	ti.CharLimit = 512

	vp := viewport.New(0, 0)

	contextChars := opts.ContextChars
	if contextChars <= 0 {
		contextChars = assistant.DefaultContextChars
	}

	m := Model{
		loader:       opts.Loader,
		sched:        opts.Scheduler,
		client:       opts.Client,
		history:      opts.History,
		root:         root,
		expanded:     map[string]bool{root.Path: true},
		previewPane:  vp,
		askInput:     ti,
		contextChars: contextChars,
		panel:        PanelTree,
		keys:         DefaultKeyMap(),
	}
	m.loader.Expand(root)
	m.rebuildRows()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// rebuildRows flattens the expanded portion of the tree into visible rows.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	m.appendRows(m.root, 0)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) appendRows(n *tree.Node, depth int) {
	m.rows = append(m.rows, row{node: n, depth: depth})
	if n.IsDir && m.expanded[n.Path] {
		for _, child := range n.Children() {
			m.appendRows(child, depth+1)
		}
	}
}

// loadPreview requests extraction for a file through the scheduler.
func (m Model) loadPreview(path string) tea.Cmd {
	sched := m.sched
	return func() tea.Msg {
		p, err := sched.Preview(context.Background(), path)
		return previewMsg{path: path, preview: p, err: err}
	}
}

// askAssistant sends the current file's content and a question to the model.
func (m Model) askAssistant(path string, pv preview.Preview, question string) tea.Cmd {
	client := m.client
	history := m.history
	ceiling := m.contextChars
	return func() tea.Msg {
		prompt := assistant.BuildPrompt(pv, path, question, ceiling)
		answer, err := client.Ask(context.Background(), prompt)
		if err != nil {
			return answerMsg{err: err}
		}
		if history != nil {
			// History is best effort; the answer still renders if it fails.
			_ = history.Append(context.Background(), path, question, answer)
		}
		return answerMsg{answer: answer}
	}
}

// Message types
type previewMsg struct {
	path    string
	preview preview.Preview
	err     error
}

type answerMsg struct {
	answer string
	err    error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The ask input captures most keys while focused
		if m.panel == PanelAsk {
			return m.updateAsk(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Tab):
			m.nextPanel()
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.prevPanel()
			return m, nil

		case key.Matches(msg, m.keys.Ask):
			return m.focusAsk()

		case key.Matches(msg, m.keys.Escape):
			m.panel = PanelTree
			return m, nil
		}

		switch m.panel {
		case PanelTree:
			return m.updateTree(msg)
		case PanelPreview:
			var cmd tea.Cmd
			m.previewPane, cmd = m.previewPane.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		return m, nil

	case previewMsg:
		if msg.path != m.currentPath {
			return m, nil // stale result for a previously selected file
		}
		m.loading = false
		if msg.err != nil {
			m.current = nil
			m.statusMsg = msg.err.Error()
			m.statusIsErr = true
			m.previewPane.SetContent(styles.PreviewErrorStyle.Render(msg.err.Error()))
			return m, nil
		}
		p := msg.preview
		m.current = &p
		m.statusMsg = fmt.Sprintf("%s preview", p.Category)
		m.statusIsErr = p.Category == preview.CategoryError
		m.previewPane.SetContent(renderPreview(&p))
		m.previewPane.GotoTop()
		return m, nil

	case answerMsg:
		m.asking = false
		if msg.err != nil {
			m.answer = ""
			m.statusMsg = msg.err.Error()
			m.statusIsErr = true
			return m, nil
		}
		m.answer = msg.answer
		m.statusMsg = "answer received"
		m.statusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) updateTree(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			return m.selectCurrent()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			return m.selectCurrent()
		}
		return m, nil

	case key.Matches(msg, m.keys.GotoStart):
		m.cursor = 0
		return m.selectCurrent()

	case key.Matches(msg, m.keys.GotoEnd):
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
			return m.selectCurrent()
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.activateCurrent()

	case key.Matches(msg, m.keys.Collapse):
		if n := m.currentNode(); n != nil && n.IsDir && m.expanded[n.Path] {
			delete(m.expanded, n.Path)
			m.loader.Collapse(n)
			m.rebuildRows()
		}
		return m, nil

	case key.Matches(msg, m.keys.Hidden):
		m.showHidden = !m.showHidden
		m.loader.SetShowHidden(m.showHidden)
		m.loader.Collapse(m.root)
		m.expanded = map[string]bool{m.root.Path: true}
		m.loader.Expand(m.root)
		m.cursor = 0
		m.rebuildRows()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if n := m.currentNode(); n != nil && n.IsDir {
			m.loader.Collapse(n)
			delete(m.expanded, n.Path)
			return m.activateCurrent()
		}
		return m, nil
	}

	return m, nil
}

// activateCurrent expands/collapses a directory or previews a file.
func (m Model) activateCurrent() (Model, tea.Cmd) {
	n := m.currentNode()
	if n == nil {
		return m, nil
	}
	if n.IsDir {
		if m.expanded[n.Path] {
			delete(m.expanded, n.Path)
		} else {
			m.expanded[n.Path] = true
			m.loader.Expand(n)
		}
		m.rebuildRows()
		return m, nil
	}
	return m.selectCurrent()
}

// selectCurrent requests a preview for the file under the cursor.
func (m Model) selectCurrent() (Model, tea.Cmd) {
	n := m.currentNode()
	if n == nil || n.IsDir || n.Err != nil {
		return m, nil
	}
	if n.Path == m.currentPath && m.current != nil {
		return m, nil
	}
	m.currentPath = n.Path
	m.current = nil
	m.answer = ""
	m.loading = true
	m.previewPane.SetContent(styles.PreviewMetadataStyle.Render("Loading..."))
	return m, m.loadPreview(n.Path)
}

func (m Model) currentNode() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func (m Model) focusAsk() (Model, tea.Cmd) {
	if m.currentPath == "" || m.current == nil {
		m.statusMsg = "select a file first"
		m.statusIsErr = true
		return m, nil
	}
	if !m.client.Configured() {
		m.statusMsg = "assistant not configured: set ARANGR_API_KEY"
		m.statusIsErr = true
		return m, nil
	}
	m.panel = PanelAsk
	m.askInput.Focus()
	return m, textinput.Blink
}

func (m Model) updateAsk(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.panel = PanelTree
		m.askInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		question := strings.TrimSpace(m.askInput.Value())
		if question == "" || m.asking || m.current == nil {
			return m, nil
		}
		m.asking = true
		m.answer = ""
		m.statusMsg = "asking..."
		m.statusIsErr = false
		return m, m.askAssistant(m.currentPath, *m.current, question)
	}

	var cmd tea.Cmd
	m.askInput, cmd = m.askInput.Update(msg)
	return m, cmd
}

func (m *Model) nextPanel() {
	m.panel = (m.panel + 1) % 3
	m.updateFocus()
}

func (m *Model) prevPanel() {
	m.panel = (m.panel + 2) % 3
	m.updateFocus()
}

func (m *Model) updateFocus() {
	if m.panel == PanelAsk {
		m.askInput.Focus()
	} else {
		m.askInput.Blur()
	}
}

func (m *Model) updateViewportSize() {
	previewWidth := m.width * 60 / 100
	previewHeight := m.height - 10 // Header, ask box, answer, status
	if previewHeight < 1 {
		previewHeight = 1
	}
	m.previewPane.Width = previewWidth
	m.previewPane.Height = previewHeight
}

// renderPreview renders a Preview for the viewport.
func renderPreview(p *preview.Preview) string {
	var sb strings.Builder

	badge := styles.CategoryBadge(string(p.Category)).Render(string(p.Category))
	sb.WriteString(badge)
	if t := p.Meta("type"); t != "" {
		sb.WriteString(" " + styles.PreviewMetadataStyle.Render(t))
	}
	sb.WriteString("\n\n")

	switch p.Category {
	case preview.CategoryError:
		sb.WriteString(styles.PreviewErrorStyle.Render(p.Meta("error")))

	case preview.CategoryTable:
		sb.WriteString(renderTable(p.Table))

	case preview.CategoryImage:
		sb.WriteString(styles.PreviewMetadataStyle.Render(renderMetadata(p)))

	default:
		if p.Text != "" {
			sb.WriteString(styles.PreviewContentStyle.Render(p.Text))
		} else {
			sb.WriteString(styles.PreviewMetadataStyle.Render(renderMetadata(p)))
		}
	}

	if p.Truncated {
		sb.WriteString("\n\n")
		sb.WriteString(styles.TruncatedNoteStyle.Render("(preview truncated)"))
	}

	return sb.String()
}

func renderTable(t *preview.Table) string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, sheet := range t.Sheets {
		sb.WriteString(styles.PreviewTitleStyle.Render(sheet.Name))
		sb.WriteString("\n")
		for _, r := range sheet.Rows {
			sb.WriteString(strings.Join(r, " │ "))
			sb.WriteString("\n")
		}
		if sheet.Truncated {
			sb.WriteString(styles.TruncatedNoteStyle.Render("(more rows not shown)"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderMetadata(p *preview.Preview) string {
	keys := []string{"format", "width", "height", "color_mode", "size", "encoding", "camera_make", "camera_model", "taken", "note"}
	var sb strings.Builder
	for _, k := range keys {
		if v := p.Meta(k); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Calculate layout
	treeWidth := m.width*40/100 - 4
	previewWidth := m.width*60/100 - 4
	contentHeight := m.height - 9 // Header, ask box, answer, status

	// Header
	header := styles.TitleStyle.Render("Arangr") +
		styles.SubtitleStyle.Render(" - File Explorer")

	// Tree panel
	treeStyle := styles.PanelStyle.Width(treeWidth).Height(contentHeight)
	if m.panel == PanelTree {
		treeStyle = styles.FocusedPanelStyle.Width(treeWidth).Height(contentHeight)
	}
	treePanel := treeStyle.Render(
		styles.PanelTitleStyle.Render("Files") + "\n" + m.renderTree(treeWidth-2, contentHeight-2),
	)

	// Preview panel
	previewStyle := styles.PanelStyle.Width(previewWidth).Height(contentHeight)
	if m.panel == PanelPreview {
		previewStyle = styles.FocusedPanelStyle.Width(previewWidth).Height(contentHeight)
	}
	m.previewPane.Width = previewWidth - 2
	m.previewPane.Height = contentHeight - 3
	previewPanel := previewStyle.Render(
		styles.PanelTitleStyle.Render("Preview") + "\n" + m.previewPane.View(),
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top, treePanel, previewPanel)

	// Ask input
	askStyle := styles.PanelStyle
	if m.panel == PanelAsk {
		askStyle = styles.FocusedPanelStyle
	}
	askBox := askStyle.Width(m.width - 4).Render(m.askInput.View())

	// Answer area
	answer := ""
	if m.asking {
		answer = styles.AnswerStyle.Render("Thinking...")
	} else if m.answer != "" {
		answer = styles.AnswerStyle.Render(m.answer)
	}

	statusBar := m.renderStatusBar()

	parts := []string{header, content, askBox}
	if answer != "" {
		parts = append(parts, answer)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTree(width, height int) string {
	if len(m.rows) == 0 {
		return styles.TreeItemStyle.Render("Empty directory")
	}

	visibleCount := height
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if m.cursor >= visibleCount {
		start = m.cursor - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		r := m.rows[i]
		indent := strings.Repeat("  ", r.depth)

		var label string
		switch {
		case r.node.Err != nil:
			label = styles.TreeErrorStyle.Render(r.node.Name)
		case r.node.IsDir:
			marker := "▸ "
			if m.expanded[r.node.Path] {
				marker = "▾ "
			}
			label = marker + styles.DirNameStyle.Render(r.node.Name)
		default:
			label = "  " + r.node.Name
		}

		line := indent + label
		if lipgloss.Width(line) > width-2 && width > 5 {
			line = line[:width-5] + "..."
		}

		if i == m.cursor {
			sb.WriteString(styles.SelectedTreeItemStyle.Render(line))
		} else {
			sb.WriteString(styles.TreeItemStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	if len(m.rows) > visibleCount {
		sb.WriteString(fmt.Sprintf("\n%d/%d", m.cursor+1, len(m.rows)))
	}

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var status string
	if m.statusIsErr {
		status = styles.StatusErrorStyle.Render(m.statusMsg)
	} else {
		status = styles.StatusValueStyle.Render(m.statusMsg)
	}

	cached := styles.StatusValueStyle.Render(
		fmt.Sprintf("%s cached", humanize.Comma(int64(m.sched.Cache().Len()))),
	)

	help := styles.HelpKeyStyle.Render("?") +
		styles.HelpDescStyle.Render(" help") +
		styles.HelpSeparatorStyle.Render(" • ") +
		styles.HelpKeyStyle.Render("q") +
		styles.HelpDescStyle.Render(" quit")

	gap := m.width - lipgloss.Width(status) - lipgloss.Width(cached) - lipgloss.Width(help) - 8
	if gap < 1 {
		gap = 1
	}

	return styles.StatusBarStyle.Render(
		status + strings.Repeat(" ", gap) + cached + "  " + help,
	)
}

func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(styles.TitleStyle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n\n")

	helpItems := []struct {
		key  string
		desc string
	}{
		{"j/k or ↑/↓", "Navigate tree"},
		{"Enter", "Expand directory / preview file"},
		{"h", "Collapse directory"},
		{"a", "Ask the assistant about the selected file"},
		{"r", "Reload the selected directory"},
		{"Tab", "Cycle panels"},
		{"Shift+Tab", "Cycle panels (reverse)"},
		{"g/G", "Go to start/end"},
		{"Esc", "Back to the file tree"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		sb.WriteString(styles.HelpKeyStyle.Render(fmt.Sprintf("%12s", item.key)))
		sb.WriteString("  ")
		sb.WriteString(styles.HelpDescStyle.Render(item.desc))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.HelpDescStyle.Render("Press ? to close help"))

	return styles.AppStyle.Render(sb.String())
}
