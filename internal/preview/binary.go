package preview

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// BinaryExtractor is the fallback for anything no other extractor claims.
// It never fails: the preview is best-effort metadata plus a hex sample of
// the leading bytes.
type BinaryExtractor struct{}

func (b *BinaryExtractor) ID() string { return "binary" }

func (b *BinaryExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}

	sample := make([]byte, limits.MaxBinarySample)
	n, _ := f.Read(sample)
	sample = sample[:n]

	p := Preview{
		Category:    CategoryBinary,
		Text:        hexDump(sample),
		ExtractorID: b.ID(),
	}
	p.SetMeta("size", humanize.IBytes(uint64(info.Size())))
	p.SetMeta("size_bytes", strconv.FormatInt(info.Size(), 10))
	return p, nil
}

// hexDump renders bytes as offset, hex pairs and a printable-ASCII gutter,
// 16 bytes per line.
func hexDump(data []byte) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		fmt.Fprintf(&sb, "%08x  ", off)
		for i := 0; i < 16; i++ {
			if i < len(line) {
				fmt.Fprintf(&sb, "%02x ", line[i])
			} else {
				sb.WriteString("   ")
			}
		}
		sb.WriteString(" ")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
