package preview

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ArchiveExtractor lists archive entries without extracting any content.
type ArchiveExtractor struct{}

func (a *ArchiveExtractor) ID() string { return "archive" }

func (a *ArchiveExtractor) Extract(ctx context.Context, path string, limits Limits) (Preview, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".docx", ".xlsx", ".pptx":
		return a.listZip(path, limits)
	case ".tar":
		return a.listTar(path, false, limits)
	case ".gz", ".tgz":
		if strings.HasSuffix(strings.ToLower(path), ".tar.gz") || strings.HasSuffix(strings.ToLower(path), ".tgz") {
			return a.listTar(path, true, limits)
		}
		return a.describeGzip(path)
	default:
		// Unknown archive flavor (rar, 7z, xz): degrade to a note rather
		// than fail.
		p := Preview{Category: CategoryArchive, ExtractorID: a.ID()}
		p.SetMeta("note", "listing not supported for this archive format")
		return p, nil
	}
}

func (a *ArchiveExtractor) listZip(path string, limits Limits) (Preview, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return ErrorPreview(a.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
	}
	defer zr.Close()

	var (
		sb           strings.Builder
		uncompressed uint64
		compressed   uint64
		listed       int
	)
	for _, f := range zr.File {
		uncompressed += f.UncompressedSize64
		compressed += f.CompressedSize64
		if listed < limits.MaxArchiveEntries {
			fmt.Fprintf(&sb, "%s  (%s)\n", f.Name, humanize.IBytes(f.UncompressedSize64))
			listed++
		}
	}
	truncated := len(zr.File) > limits.MaxArchiveEntries
	if truncated {
		fmt.Fprintf(&sb, "... and %d more entries\n", len(zr.File)-limits.MaxArchiveEntries)
	}

	p := Preview{
		Category:    CategoryArchive,
		Text:        strings.TrimSpace(sb.String()),
		Truncated:   truncated,
		ExtractorID: a.ID(),
	}
	p.SetMeta("entries", strconv.Itoa(len(zr.File)))
	p.SetMeta("uncompressed", humanize.IBytes(uncompressed))
	p.SetMeta("compressed", humanize.IBytes(compressed))
	return p, nil
}

func (a *ArchiveExtractor) listTar(path string, gzipped bool, limits Limits) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return ErrorPreview(a.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
		}
		defer gz.Close()
		r = gz
	}

	var (
		sb    strings.Builder
		total uint64
		count int
	)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if count == 0 {
				return ErrorPreview(a.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
			}
			break
		}
		total += uint64(hdr.Size)
		if count < limits.MaxArchiveEntries {
			fmt.Fprintf(&sb, "%s  (%s)\n", hdr.Name, humanize.IBytes(uint64(hdr.Size)))
		}
		count++
	}
	truncated := count > limits.MaxArchiveEntries
	if truncated {
		fmt.Fprintf(&sb, "... and %d more entries\n", count-limits.MaxArchiveEntries)
	}

	p := Preview{
		Category:    CategoryArchive,
		Text:        strings.TrimSpace(sb.String()),
		Truncated:   truncated,
		ExtractorID: a.ID(),
	}
	p.SetMeta("entries", strconv.Itoa(count))
	p.SetMeta("uncompressed", humanize.IBytes(total))
	return p, nil
}

// describeGzip summarizes a single-member gzip file without decompressing
// its payload.
func (a *ArchiveExtractor) describeGzip(path string) (Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return Preview{}, &FilesystemError{Path: path, Err: err}
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return ErrorPreview(a.ID(), fmt.Errorf("%w: %v", ErrCorruptOrEncrypted, err)), nil
	}
	defer gz.Close()

	name := gz.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), ".gz")
	}

	p := Preview{
		Category:    CategoryArchive,
		Text:        name,
		ExtractorID: a.ID(),
	}
	p.SetMeta("entries", "1")
	if !gz.ModTime.IsZero() {
		p.SetMeta("modified", gz.ModTime.Format("2006-01-02 15:04:05"))
	}
	return p, nil
}
