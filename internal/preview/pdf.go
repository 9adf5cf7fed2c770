package preview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/arangr/arangr/pkg/excerpt"
)

// PDFExtractor previews PDF documents by extracting text per page up to a
// page ceiling. Encrypted or scanned files become a partial preview with
// empty content instead of a failure.
type PDFExtractor struct{}

func (p *PDFExtractor) ID() string { return "pdf" }

func (p *PDFExtractor) Extract(ctx context.Context, path string, limits Limits) (prev Preview, err error) {
	// The pdf library panics on some malformed files; a corrupt file must
	// still degrade to a preview value.
	defer func() {
		if r := recover(); r != nil {
			prev = p.partial(fmt.Sprintf("malformed pdf: %v", r))
			err = nil
		}
	}()

	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return p.partial(openErr.Error()), nil
	}
	defer f.Close()

	numPages := reader.NumPage()

	var sb strings.Builder
	extracted := 0
	for i := 1; i <= numPages && i <= limits.MaxPDFPages; i++ {
		select {
		case <-ctx.Done():
			return p.partial(ctx.Err().Error()), nil
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			fmt.Fprintf(&sb, "Page %d: no extractable text\n\n", i)
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) > limits.MaxPDFPageChars {
			text, _ = excerpt.Truncate(text, limits.MaxPDFPageChars)
		}
		fmt.Fprintf(&sb, "Page %d:\n%s\n\n", i, text)
		extracted++
	}

	truncated := numPages > limits.MaxPDFPages
	if truncated {
		fmt.Fprintf(&sb, "... and %d more pages\n", numPages-limits.MaxPDFPages)
	}

	out := Preview{
		Category:    CategoryPDF,
		Text:        strings.TrimSpace(sb.String()),
		Truncated:   truncated,
		ExtractorID: p.ID(),
	}
	out.SetMeta("pages", strconv.Itoa(numPages))
	if extracted == 0 {
		out.SetMeta("partial", "true")
		out.SetMeta("note", "no extractable text (scanned or image-only pdf)")
	}
	return out, nil
}

// partial builds the degraded preview for encrypted or unparseable PDFs:
// still category pdf, flagged partial, with an empty body.
func (p *PDFExtractor) partial(reason string) Preview {
	out := Preview{
		Category:    CategoryPDF,
		ExtractorID: p.ID(),
	}
	out.SetMeta("partial", "true")
	out.SetMeta("error", reason)
	return out
}
