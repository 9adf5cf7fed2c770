package preview

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying extraction failures. Extractors never let these
// escape: each failure is folded into an error-category Preview so a bad file
// degrades one panel instead of crashing the pipeline. The single exception
// is FilesystemError for a path that cannot be read at all, which surfaces as
// a request-level failure because no preview can be synthesized for it.
var (
	// ErrUnsupportedFormat marks a format with no extraction capability.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrCorruptOrEncrypted marks a file the parser opened but could not read.
	ErrCorruptOrEncrypted = errors.New("corrupt or encrypted content")

	// ErrTimeout marks an extraction that exceeded its time budget.
	ErrTimeout = errors.New("extraction timed out")
)

// FilesystemError wraps a stat/read failure for a path.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem: %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ErrorPreview folds an extraction failure into a data value. Error previews
// are cached like any other result: a corrupt file stays corrupt, and caching
// the failure avoids re-parsing it on every visit.
func ErrorPreview(extractorID string, err error) Preview {
	p := Preview{
		Category:    CategoryError,
		ExtractorID: extractorID,
	}
	p.SetMeta("error", err.Error())
	return p
}
