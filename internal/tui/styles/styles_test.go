package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestColorsAreDefined(t *testing.T) {
	colors := []struct {
		name  string
		color lipgloss.Color
	}{
		{"ColorPrimary", ColorPrimary},
		{"ColorSecondary", ColorSecondary},
		{"ColorMuted", ColorMuted},
		{"ColorError", ColorError},
		{"ColorWarning", ColorWarning},
		{"ColorBorder", ColorBorder},
		{"ColorHighlight", ColorHighlight},
	}

	for _, c := range colors {
		t.Run(c.name, func(t *testing.T) {
			if c.color == "" {
				t.Errorf("%s is empty", c.name)
			}
		})
	}
}

func TestStylesRender(t *testing.T) {
	// Styles should render without panicking
	tests := []struct {
		name  string
		style lipgloss.Style
	}{
		{"AppStyle", AppStyle},
		{"TitleStyle", TitleStyle},
		{"SubtitleStyle", SubtitleStyle},
		{"PanelStyle", PanelStyle},
		{"FocusedPanelStyle", FocusedPanelStyle},
		{"PanelTitleStyle", PanelTitleStyle},
		{"TreeItemStyle", TreeItemStyle},
		{"SelectedTreeItemStyle", SelectedTreeItemStyle},
		{"DirNameStyle", DirNameStyle},
		{"TreeErrorStyle", TreeErrorStyle},
		{"PreviewTitleStyle", PreviewTitleStyle},
		{"PreviewContentStyle", PreviewContentStyle},
		{"PreviewMetadataStyle", PreviewMetadataStyle},
		{"PreviewErrorStyle", PreviewErrorStyle},
		{"TruncatedNoteStyle", TruncatedNoteStyle},
		{"AskPromptStyle", AskPromptStyle},
		{"AskInputStyle", AskInputStyle},
		{"AskPlaceholderStyle", AskPlaceholderStyle},
		{"AnswerStyle", AnswerStyle},
		{"StatusBarStyle", StatusBarStyle},
		{"StatusValueStyle", StatusValueStyle},
		{"StatusErrorStyle", StatusErrorStyle},
		{"StatusSuccessStyle", StatusSuccessStyle},
		{"HelpKeyStyle", HelpKeyStyle},
		{"HelpDescStyle", HelpDescStyle},
		{"HelpSeparatorStyle", HelpSeparatorStyle},
		{"SpinnerStyle", SpinnerStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := tt.style.Render("sample"); out == "" {
				t.Errorf("%s rendered empty output", tt.name)
			}
		})
	}
}

func TestCategoryBadge(t *testing.T) {
	categories := []string{"text", "table", "image", "pdf", "archive", "media", "binary", "error"}
	for _, c := range categories {
		t.Run(c, func(t *testing.T) {
			if out := CategoryBadge(c).Render(c); out == "" {
				t.Errorf("badge for %s rendered empty", c)
			}
		})
	}
}

func TestCategoryBadgeUnknownFallsBack(t *testing.T) {
	if out := CategoryBadge("mystery").Render("mystery"); out == "" {
		t.Error("unknown category should still render")
	}
}
