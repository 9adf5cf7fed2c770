package preview

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw text bytes to a string, trying UTF-8 strictly first,
// then Windows-1252, then Latin-1 as the permissive fallback. Latin-1 maps
// every byte to a rune, so Decode always returns text; the name of the
// encoding that succeeded is returned so it can be recorded in the preview
// metadata.
func Decode(data []byte) (text string, encoding string) {
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}

	if s, ok := decodeCharmap(data, charmap.Windows1252); ok {
		return s, "windows-1252"
	}

	// Latin-1 cannot fail: each byte decodes to the code point of the same
	// value.
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(s), "latin-1"
}

// decodeCharmap decodes with a single-byte charmap and rejects the result if
// any input byte was undefined in the map (surfaced as U+FFFD).
func decodeCharmap(data []byte, cm *charmap.Charmap) (string, bool) {
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}
