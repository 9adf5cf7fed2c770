// Package styles provides styling for the TUI components.
package styles

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the application.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
	ColorHighlight = lipgloss.Color("#F3F4F6") // Light gray
)

// App-level styles.
var (
	AppStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginBottom(1)
)

// Panel styles.
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			Padding(0, 1)
)

// Tree panel styles.
var (
	TreeItemStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	SelectedTreeItemStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(ColorPrimary)

	DirNameStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	TreeErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Italic(true)
)

// Preview panel styles.
var (
	PreviewTitleStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				MarginBottom(1)

	PreviewContentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E5E7EB"))

	PreviewMetadataStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	PreviewErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	TruncatedNoteStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Italic(true)
)

// Ask input styles.
var (
	AskPromptStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	AskInputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	AskPlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	AnswerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB")).
			Padding(0, 1)
)

// Status bar styles.
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	StatusValueStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError)

	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary)
)

// Help styles.
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpSeparatorStyle = lipgloss.NewStyle().
				Foreground(ColorBorder)
)

// Spinner style.
var SpinnerStyle = lipgloss.NewStyle().
	Foreground(ColorPrimary)

// CategoryBadge returns a style for a preview category label.
func CategoryBadge(category string) lipgloss.Style {
	colors := map[string]lipgloss.Color{
		"text":    lipgloss.Color("#3B82F6"), // Blue
		"table":   lipgloss.Color("#10B981"), // Green
		"image":   lipgloss.Color("#8B5CF6"), // Purple
		"pdf":     lipgloss.Color("#EF4444"), // Red
		"archive": lipgloss.Color("#F59E0B"), // Yellow
		"media":   lipgloss.Color("#06B6D4"), // Cyan
		"binary":  lipgloss.Color("#6B7280"), // Gray
		"error":   lipgloss.Color("#EF4444"), // Red
	}

	color, ok := colors[category]
	if !ok {
		color = ColorMuted
	}

	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Padding(0, 1)
}
