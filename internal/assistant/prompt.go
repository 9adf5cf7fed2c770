// Package assistant answers questions about previewed files through an
// OpenAI-compatible chat endpoint. The context builder works strictly from
// already-extracted previews; it never triggers extraction itself.
package assistant

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arangr/arangr/internal/preview"
	"github.com/arangr/arangr/pkg/excerpt"
)

// DefaultContextChars is the default character budget for a prompt. A
// character count is a conservative stand-in for tokens.
const DefaultContextChars = 4000

// systemPrompt frames every request.
const systemPrompt = "You are a helpful file analysis assistant. Provide clear, concise, and useful responses."

// Prompt is a request-ready pair of messages.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt assembles a prompt from an already-produced preview, the file's
// path, and the user's question, keeping the user message within ceiling
// characters. The file excerpt absorbs all truncation; the question is always
// included verbatim. A non-positive ceiling uses the default.
func BuildPrompt(p preview.Preview, path, question string, ceiling int) Prompt {
	if ceiling <= 0 {
		ceiling = DefaultContextChars
	}

	name := filepath.Base(path)
	frame := promptFrame(name, string(p.Category), "", question)

	budget := ceiling - len(frame)
	content := p.ContentText()
	if budget < 0 {
		budget = 0
	}
	content, cut := excerpt.Truncate(content, budget)
	if cut {
		// The marker must also fit the budget; trim again to make room.
		const marker = "\n[content truncated]"
		content, _ = excerpt.Truncate(content, budget-len(marker))
		content += marker
	}

	return Prompt{
		System: systemPrompt,
		User:   promptFrame(name, string(p.Category), content, question),
	}
}

// promptFrame renders the fixed prompt structure around a content excerpt.
func promptFrame(name, category, content, question string) string {
	return fmt.Sprintf("I have a file named %q (%s) with the following content:\n\n```\n%s\n```\n\nQuestion: %s\n\nPlease answer based on the file content.",
		name, category, content, question)
}

// AnalysisQuestion returns the canned question used by the one-shot
// "analyze this file" action, chosen by file class.
func AnalysisQuestion(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".js", ".ts", ".go", ".rs", ".java", ".c", ".cpp", ".html", ".css":
		return "Analyze this code file and describe its structure, purpose, and any suggestions for improvement."
	case ".txt", ".md":
		return "Summarize this document and list its key points."
	case ".csv", ".xlsx", ".tsv":
		return "Describe the structure of this data and what insights can be gained from it."
	default:
		return "Analyze this file and provide useful insights about its content and purpose."
	}
}
