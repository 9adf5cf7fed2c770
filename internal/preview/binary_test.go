package preview

import (
	"context"
	"strings"
	"testing"
)

func TestBinaryExtractor(t *testing.T) {
	content := []byte{0x7f, 'E', 'L', 'F', 0x02, 0x01, 0x00, 0xff}
	path := writeFixture(t, "program.bin", content)

	ext := &BinaryExtractor{}
	p, err := ext.Extract(context.Background(), path, DefaultLimits())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if p.Category != CategoryBinary {
		t.Errorf("Category = %v, want %v", p.Category, CategoryBinary)
	}
	if !strings.HasPrefix(p.Text, "00000000  ") {
		t.Errorf("hex dump should start with a zero offset: %q", p.Text)
	}
	if !strings.Contains(p.Text, "7f 45 4c 46") {
		t.Errorf("hex dump missing leading bytes: %q", p.Text)
	}
	if !strings.Contains(p.Text, ".ELF") {
		t.Errorf("ASCII gutter missing printable run: %q", p.Text)
	}
	if p.Meta("size_bytes") != "8" {
		t.Errorf("size_bytes = %q, want 8", p.Meta("size_bytes"))
	}
}

func TestBinaryExtractorSampleCap(t *testing.T) {
	content := make([]byte, 1024)
	for i := range content {
		content[i] = byte(i)
	}
	path := writeFixture(t, "large.bin", content)

	limits := DefaultLimits()
	limits.MaxBinarySample = 32

	ext := &BinaryExtractor{}
	p, err := ext.Extract(context.Background(), path, limits)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// 32 bytes fit in two 16-byte dump lines.
	lines := strings.Split(p.Text, "\n")
	if len(lines) != 2 {
		t.Errorf("hex dump lines = %d, want 2", len(lines))
	}
	if p.Meta("size_bytes") != "1024" {
		t.Errorf("size_bytes = %q, want full file size", p.Meta("size_bytes"))
	}
}

func TestHexDump(t *testing.T) {
	got := hexDump([]byte("Hi!"))
	if !strings.HasPrefix(got, "00000000  48 69 21 ") {
		t.Errorf("hexDump() = %q, want hex pairs after offset", got)
	}
	if !strings.HasSuffix(got, " Hi!") {
		t.Errorf("hexDump() = %q, want ASCII gutter suffix", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("three bytes should dump as one line: %q", got)
	}
}

func TestHexDumpEmpty(t *testing.T) {
	if got := hexDump(nil); got != "" {
		t.Errorf("hexDump(nil) = %q, want empty", got)
	}
}
