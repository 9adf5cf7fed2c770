package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sniffLen is how many bytes Classify reads when the extension is not enough.
const sniffLen = 1024

// extFormats maps known extensions (lowercase, with dot) to a format class.
var extFormats = map[string]Format{
	// Office documents.
	".docx": FormatOffice, ".xlsx": FormatOffice, ".pptx": FormatOffice,

	".pdf": FormatPDF,

	// Images.
	".jpg": FormatImage, ".jpeg": FormatImage, ".png": FormatImage,
	".gif": FormatImage, ".bmp": FormatImage, ".webp": FormatImage,
	".tiff": FormatImage, ".tif": FormatImage, ".ico": FormatImage,

	// Text and code.
	".txt": FormatText, ".md": FormatText, ".py": FormatText, ".js": FormatText,
	".ts": FormatText, ".html": FormatText, ".css": FormatText, ".json": FormatText,
	".xml": FormatText, ".csv": FormatText, ".tsv": FormatText, ".log": FormatText,
	".ini": FormatText, ".cfg": FormatText, ".conf": FormatText, ".yaml": FormatText,
	".yml": FormatText, ".toml": FormatText, ".sql": FormatText, ".sh": FormatText,
	".bat": FormatText, ".c": FormatText, ".cpp": FormatText, ".h": FormatText,
	".go": FormatText, ".rs": FormatText, ".java": FormatText, ".rb": FormatText,
	".php": FormatText, ".swift": FormatText, ".kt": FormatText, ".scala": FormatText,
	".lua": FormatText, ".pl": FormatText, ".r": FormatText, ".cs": FormatText,
	".vue": FormatText, ".jsx": FormatText, ".tsx": FormatText, ".scss": FormatText,
	".less": FormatText, ".env": FormatText, ".gitignore": FormatText,
	".properties": FormatText, ".rtf": FormatText,

	// Archives.
	".zip": FormatArchive, ".tar": FormatArchive, ".gz": FormatArchive,
	".tgz": FormatArchive, ".bz2": FormatArchive, ".xz": FormatArchive,

	// Audio and video (metadata only).
	".mp3": FormatMedia, ".wav": FormatMedia, ".flac": FormatMedia,
	".aac": FormatMedia, ".ogg": FormatMedia, ".m4a": FormatMedia,
	".mp4": FormatMedia, ".m4v": FormatMedia, ".mov": FormatMedia,
	".avi": FormatMedia, ".mkv": FormatMedia, ".webm": FormatMedia,
}

// textFilenames are extensionless files conventionally containing text.
var textFilenames = map[string]bool{
	"readme": true, "license": true, "changelog": true, "authors": true,
	"contributors": true, "makefile": true, "dockerfile": true,
	"vagrantfile": true, "gemfile": true, "rakefile": true,
}

// Classify assigns a format class to a path. Extension mapping wins; when the
// extension is absent or unrecognized a bounded byte prefix is sniffed for
// well-known signatures. Classification never fails: anything unrecognizable
// is FormatBinary.
func Classify(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f
	}

	if ext == "" {
		name := strings.ToLower(filepath.Base(path))
		if textFilenames[name] {
			return FormatText
		}
	}

	return sniff(path)
}

// sniff reads a small prefix and applies magic-byte checks.
func sniff(path string) Format {
	f, err := os.Open(path)
	if err != nil {
		return FormatBinary
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	if n == 0 {
		// Empty files preview as (empty) text.
		return FormatText
	}
	buf = buf[:n]

	switch {
	case bytes.HasPrefix(buf, []byte("%PDF")):
		return FormatPDF
	case bytes.HasPrefix(buf, []byte("\x89PNG\r\n\x1a\n")),
		bytes.HasPrefix(buf, []byte("\xff\xd8\xff")),
		bytes.HasPrefix(buf, []byte("GIF87a")),
		bytes.HasPrefix(buf, []byte("GIF89a")),
		bytes.HasPrefix(buf, []byte("BM")):
		return FormatImage
	case bytes.HasPrefix(buf, []byte("PK\x03\x04")):
		// ZIP family covers plain archives and OOXML containers; without an
		// extension the safe reading is an archive listing.
		return FormatArchive
	case bytes.HasPrefix(buf, []byte("\x1f\x8b")):
		return FormatArchive
	case bytes.HasPrefix(buf, []byte("ID3")), bytes.HasPrefix(buf, []byte("RIFF")):
		return FormatMedia
	case looksTextual(buf):
		return FormatText
	}
	return FormatBinary
}

// looksTextual reports whether a byte sample reads as text: no NUL bytes and
// mostly valid UTF-8.
func looksTextual(sample []byte) bool {
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	if utf8.Valid(sample) {
		return true
	}
	// A multibyte rune cut at the sample boundary still counts as text.
	for trim := 1; trim <= 3 && trim < len(sample); trim++ {
		if utf8.Valid(sample[:len(sample)-trim]) {
			return true
		}
	}
	return false
}

// extDescriptions are user-facing names for common file types.
var extDescriptions = map[string]string{
	".py": "Python Script", ".js": "JavaScript File", ".ts": "TypeScript File",
	".html": "HTML Document", ".css": "CSS Stylesheet", ".json": "JSON Data",
	".xml": "XML Document", ".yaml": "YAML Configuration", ".yml": "YAML Configuration",
	".go": "Go Source File", ".txt": "Text Document", ".md": "Markdown Document",
	".pdf": "PDF Document", ".docx": "Word Document", ".xlsx": "Excel Spreadsheet",
	".pptx": "PowerPoint Presentation", ".csv": "CSV Data File",
	".jpg": "JPEG Image", ".jpeg": "JPEG Image", ".png": "PNG Image",
	".gif": "GIF Animation", ".bmp": "Bitmap Image", ".webp": "WebP Image",
	".tiff": "TIFF Image", ".mp3": "MP3 Audio", ".wav": "WAV Audio",
	".flac": "FLAC Audio (Lossless)", ".mp4": "MP4 Video", ".avi": "AVI Video",
	".mov": "QuickTime Video", ".zip": "ZIP Archive", ".tar": "TAR Archive",
	".gz": "Gzip Archive", ".sh": "Shell Script",
}

// Describe returns a user-friendly type description for a path.
func Describe(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if d, ok := extDescriptions[ext]; ok {
		return d
	}
	if ext != "" {
		return strings.ToUpper(ext[1:]) + " File"
	}
	return "File"
}
