package preview

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeUTF8(t *testing.T) {
	text, enc := Decode([]byte("héllo wörld"))
	if enc != "utf-8" {
		t.Errorf("Decode() encoding = %q, want utf-8", enc)
	}
	if text != "héllo wörld" {
		t.Errorf("Decode() text = %q", text)
	}
}

func TestDecodeWindows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 and invalid UTF-8.
	raw := []byte{0x93, 'h', 'i', 0x94}
	text, enc := Decode(raw)
	if enc != "windows-1252" {
		t.Fatalf("Decode() encoding = %q, want windows-1252", enc)
	}
	if text != "“hi”" {
		t.Errorf("Decode() text = %q, want curly-quoted hi", text)
	}
}

func TestDecodeLatin1Fallback(t *testing.T) {
	// 0x81 is undefined in Windows-1252, so only Latin-1 accepts it.
	raw := []byte{'o', 'k', 0x81}
	text, enc := Decode(raw)
	if enc != "latin-1" {
		t.Fatalf("Decode() encoding = %q, want latin-1", enc)
	}
	if !strings.HasPrefix(text, "ok") {
		t.Errorf("Decode() text = %q, want ok prefix", text)
	}
	if !utf8.ValidString(text) {
		t.Error("Decode() returned invalid UTF-8")
	}
}

func TestDecodeNeverFails(t *testing.T) {
	// Every possible byte value decodes to something.
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	text, enc := Decode(raw)
	if text == "" {
		t.Error("Decode() returned empty text for non-empty input")
	}
	if enc == "" {
		t.Error("Decode() returned empty encoding name")
	}
	if !utf8.ValidString(text) {
		t.Error("Decode() returned invalid UTF-8")
	}
}

func TestDecodeEmpty(t *testing.T) {
	text, enc := Decode(nil)
	if text != "" {
		t.Errorf("Decode(nil) text = %q, want empty", text)
	}
	if enc != "utf-8" {
		t.Errorf("Decode(nil) encoding = %q, want utf-8", enc)
	}
}
