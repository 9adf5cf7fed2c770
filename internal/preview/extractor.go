package preview

import (
	"context"
	"errors"
)

// Limits bound how much work a single extraction may do.
type Limits struct {
	MaxTextBytes      int // ceiling on decoded text content
	MaxPDFPages       int // pages of text extracted from a PDF
	MaxPDFPageChars   int // characters kept per PDF page
	MaxImageDim       int // longest edge of a decoded bitmap
	MaxSheetRows      int // rows rendered per spreadsheet sheet
	MaxSheetCols      int // columns rendered per spreadsheet row
	MaxArchiveEntries int // entries listed from an archive
	MaxBinarySample   int // bytes hex-dumped by the binary fallback
}

// DefaultLimits returns the standard extraction bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxTextBytes:      2 * 1024 * 1024,
		MaxPDFPages:       5,
		MaxPDFPageChars:   1000,
		MaxImageDim:       1600,
		MaxSheetRows:      20,
		MaxSheetCols:      10,
		MaxArchiveEntries: 500,
		MaxBinarySample:   64,
	}
}

// Extractor converts one file into a Preview. Implementations fold every
// internal failure into an error-category Preview; the returned error is
// reserved for filesystem-level failures where the path itself cannot be
// read.
type Extractor interface {
	ID() string
	Extract(ctx context.Context, path string, limits Limits) (Preview, error)
}

// Registry dispatches extraction across the format classes. It is built once
// at startup; lookup is the capability probe, and any format without a
// registered extractor degrades to the binary fallback.
type Registry struct {
	byFormat map[Format]Extractor
	fallback Extractor
	limits   Limits
}

// NewRegistry builds a registry with the full extractor set.
func NewRegistry(limits Limits) *Registry {
	r := &Registry{
		byFormat: make(map[Format]Extractor),
		fallback: &BinaryExtractor{},
		limits:   limits,
	}
	r.Register(FormatText, &TextExtractor{})
	r.Register(FormatPDF, &PDFExtractor{})
	r.Register(FormatOffice, &OfficeExtractor{})
	r.Register(FormatImage, &ImageExtractor{})
	r.Register(FormatArchive, &ArchiveExtractor{})
	r.Register(FormatMedia, &MediaExtractor{})
	r.Register(FormatBinary, r.fallback)
	return r
}

// Register installs an extractor for a format class.
func (r *Registry) Register(f Format, e Extractor) {
	r.byFormat[f] = e
}

// Limits returns the registry's extraction bounds.
func (r *Registry) Limits() Limits { return r.limits }

// Extract classifies the path and runs the matching extractor. A missing or
// unreadable path is the only error return; everything else comes back as a
// Preview, possibly of category error.
func (r *Registry) Extract(ctx context.Context, path string) (Preview, error) {
	if _, err := Identify(path); err != nil {
		return Preview{}, err
	}

	ext := r.byFormat[Classify(path)]
	if ext == nil {
		ext = r.fallback
	}

	p, err := ext.Extract(ctx, path, r.limits)
	if err != nil {
		var fsErr *FilesystemError
		if errors.As(err, &fsErr) {
			return Preview{}, err
		}
		// Extractors should not return non-filesystem errors, but if one
		// does, degrade instead of failing the request.
		return ErrorPreview(ext.ID(), err), nil
	}

	if p.Meta("type") == "" {
		p.SetMeta("type", Describe(path))
	}
	return p, nil
}
