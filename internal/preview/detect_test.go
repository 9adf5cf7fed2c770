package preview

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassifyByExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.docx", FormatOffice},
		{"data.xlsx", FormatOffice},
		{"slides.pptx", FormatOffice},
		{"manual.pdf", FormatPDF},
		{"photo.jpg", FormatImage},
		{"icon.png", FormatImage},
		{"notes.txt", FormatText},
		{"main.go", FormatText},
		{"config.yaml", FormatText},
		{"data.csv", FormatText},
		{"backup.zip", FormatArchive},
		{"dump.tar", FormatArchive},
		{"logs.gz", FormatArchive},
		{"song.mp3", FormatMedia},
		{"clip.mp4", FormatMedia},
		{"voice.wav", FormatMedia},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"REPORT.DOCX", FormatOffice},
		{"Photo.JPG", FormatImage},
		{"NOTES.TXT", FormatText},
		{"Song.Mp3", FormatMedia},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassifyWellKnownFilenames(t *testing.T) {
	for _, name := range []string{"README", "Makefile", "Dockerfile", "LICENSE"} {
		// These have no extension, so the filename convention applies even
		// when the file does not exist on disk.
		if got := Classify(name); got != FormatText {
			t.Errorf("Classify(%q) = %v, want %v", name, got, FormatText)
		}
	}
}

func TestClassifySniffsMagicBytes(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
		want    Format
	}{
		{"pdf_magic", []byte("%PDF-1.7 fake"), FormatPDF},
		{"png_magic", []byte("\x89PNG\r\n\x1a\nrest"), FormatImage},
		{"jpeg_magic", []byte("\xff\xd8\xff\xe0rest"), FormatImage},
		{"zip_magic", []byte("PK\x03\x04rest"), FormatArchive},
		{"gzip_magic", []byte("\x1f\x8brest"), FormatArchive},
		{"id3_magic", []byte("ID3\x04rest"), FormatMedia},
		{"plain_text", []byte("just ordinary prose\n"), FormatText},
		{"binary_noise", []byte{0x00, 0x01, 0x02, 0xff, 0xfe}, FormatBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("writing fixture: %v", err)
			}
			if got := Classify(path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassifyEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if got := Classify(path); got != FormatText {
		t.Errorf("Classify(empty file) = %v, want %v", got, FormatText)
	}
}

func TestClassifyMissingFileWithoutExtension(t *testing.T) {
	if got := Classify("/nonexistent/mystery"); got != FormatBinary {
		t.Errorf("Classify(missing file) = %v, want %v", got, FormatBinary)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "Go Source File"},
		{"report.docx", "Word Document"},
		{"photo.JPG", "JPEG Image"},
		{"odd.zzz", "ZZZ File"},
		{"noext", "File"},
	}

	for _, tt := range tests {
		if got := Describe(tt.path); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLooksTextual(t *testing.T) {
	if looksTextual([]byte{'h', 'i', 0x00}) {
		t.Error("sample with NUL byte should not look textual")
	}
	if !looksTextual([]byte("héllo wörld")) {
		t.Error("valid UTF-8 should look textual")
	}

	// A multibyte rune cut at the sample boundary still counts as text.
	if !looksTextual(append([]byte("plain ascii then "), 0xc3)) {
		t.Error("sample ending mid-rune should still look textual")
	}
}
