package preview

import (
	"context"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// TextExtractor previews plain-text and source files. Content is capped at
// the configured byte ceiling and decoded through the encoding cascade.
type TextExtractor struct{}

func (t *TextExtractor) ID() string { return "text" }

// Extract reads at most limits.MaxTextBytes of the file. Anything beyond the
// ceiling sets the truncated flag; the kept content is exactly the ceiling.
func (t *TextExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}

	ceiling := limits.MaxTextBytes
	data := make([]byte, ceiling)
	n, err := io.ReadFull(f, data)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ErrorPreview(t.ID(), err), nil
	}
	data = data[:n]
	truncated := info.Size() > int64(ceiling)
	if truncated {
		// The byte-boundary cut can split a multibyte rune; a dangling
		// partial sequence would make valid UTF-8 look like windows-1252.
		data = trimPartialRune(data)
	}

	text, encoding := Decode(data)

	p := Preview{
		Category:    CategoryText,
		Text:        text,
		Truncated:   truncated,
		ExtractorID: t.ID(),
	}
	p.SetMeta("encoding", encoding)
	p.SetMeta("size", humanize.IBytes(uint64(info.Size())))
	p.SetMeta("size_bytes", strconv.FormatInt(info.Size(), 10))
	if truncated {
		p.SetMeta("truncated", "true")
		p.SetMeta("shown", humanize.IBytes(uint64(len(data))))
	}
	return p, nil
}

// trimPartialRune drops an incomplete trailing UTF-8 sequence left by a
// byte-boundary cut. Complete runes and non-UTF-8 data pass through
// untouched.
func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}
