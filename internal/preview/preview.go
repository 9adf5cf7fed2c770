// Package preview turns arbitrary files on disk into normalized, displayable
// preview records. It contains the format detector, the per-format extractors,
// and the shared data model they produce.
package preview

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"
)

// Format is the content class the detector assigns to a path. It selects
// which extractor runs; it is not necessarily the category of the result
// (a spreadsheet is FormatOffice but previews as CategoryTable).
type Format string

const (
	FormatOffice  Format = "office"
	FormatPDF     Format = "pdf"
	FormatImage   Format = "image"
	FormatText    Format = "text"
	FormatArchive Format = "archive"
	FormatMedia   Format = "media"
	FormatBinary  Format = "binary"
)

// Category describes what kind of content a Preview carries.
type Category string

const (
	CategoryText    Category = "text"
	CategoryTable   Category = "table"
	CategoryImage   Category = "image"
	CategoryPDF     Category = "pdf"
	CategoryArchive Category = "archive"
	CategoryMedia   Category = "media"
	CategoryBinary  Category = "binary"
	CategoryError   Category = "error"
)

// FileIdentity identifies one observed state of a file. Two identities are
// equal iff path, size and modification time all match, so any write to the
// file produces a new identity and makes cached previews for the old one
// stale.
type FileIdentity struct {
	Path    string
	Size    int64
	ModTime int64 // Unix nanoseconds
}

// Identify stats a path and returns its current identity.
func Identify(path string) (FileIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileIdentity{}, &FilesystemError{Path: path, Err: err}
	}
	return FileIdentity{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

// Modified returns the identity's modification time.
func (id FileIdentity) Modified() time.Time {
	return time.Unix(0, id.ModTime)
}

// Sheet is one worksheet rendered into rows of cell strings.
type Sheet struct {
	Name      string
	Rows      [][]string
	Truncated bool // rows or columns were cut to fit the preview caps
}

// Table is the structured content of a spreadsheet preview.
type Table struct {
	Sheets []Sheet
}

// Preview is the normalized result of extracting one file. Exactly one
// content field is populated, consistent with Category: Text for textual
// categories (text, pdf, archive, media listings), Table for spreadsheets,
// Image for decoded bitmaps. Error previews carry a diagnostic in metadata
// under "error".
type Preview struct {
	Category    Category
	Text        string
	Table       *Table
	Image       image.Image
	Metadata    map[string]string
	Truncated   bool
	ExtractorID string
}

// Meta returns the metadata value for key, or "" when absent.
func (p *Preview) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

// SetMeta records a metadata value, allocating the map on first use.
func (p *Preview) SetMeta(key, value string) {
	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}
	p.Metadata[key] = value
}

// ContentText renders the preview's primary content as plain text. Tables
// are joined row-wise with " | ", image and binary previews fall back to
// their metadata. Used by the assistant's context builder, which never
// re-extracts.
func (p *Preview) ContentText() string {
	switch {
	case p.Table != nil:
		var sb strings.Builder
		for _, sheet := range p.Table.Sheets {
			fmt.Fprintf(&sb, "Sheet: %s\n", sheet.Name)
			for _, row := range sheet.Rows {
				sb.WriteString(strings.Join(row, " | "))
				sb.WriteByte('\n')
			}
			sb.WriteByte('\n')
		}
		return strings.TrimSpace(sb.String())
	case p.Text != "":
		return p.Text
	default:
		var sb strings.Builder
		for k, v := range p.Metadata {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
		return strings.TrimSpace(sb.String())
	}
}

// Clone returns an independent copy of the preview. The cache hands clones
// to callers so cached state is never mutated through shared references.
// The decoded image is shared; bitmaps are treated as immutable once built.
func (p *Preview) Clone() Preview {
	out := *p
	if p.Metadata != nil {
		out.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}
	if p.Table != nil {
		t := &Table{Sheets: make([]Sheet, len(p.Table.Sheets))}
		for i, sheet := range p.Table.Sheets {
			rows := make([][]string, len(sheet.Rows))
			for j, row := range sheet.Rows {
				rows[j] = append([]string(nil), row...)
			}
			t.Sheets[i] = Sheet{Name: sheet.Name, Rows: rows, Truncated: sheet.Truncated}
		}
		out.Table = t
	}
	return out
}
