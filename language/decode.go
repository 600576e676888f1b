package language

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// IsBinaryContent checks the first 512 bytes (or less) for null bytes, which indicates binary data.
// Content starting with a UTF-16 byte order mark is treated as text.
func IsBinaryContent(data []byte) bool {
	if hasUTF16BOM(data) {
		return false
	}
	checkSize := 512
	if len(data) < checkSize {
		checkSize = len(data)
	}
	for i := 0; i < checkSize; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}

// DecodeText converts raw file bytes to a string without ever failing.
// A UTF-8 or UTF-16 byte order mark selects the encoding and is stripped;
// otherwise the bytes are read as UTF-8 and invalid sequences become U+FFFD.
// Line endings are normalized to "\n".
func DecodeText(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		out = data
	}
	text := string(out)
	if !utf8.Valid(out) {
		text = strings.ToValidUTF8(text, "�")
	}
	return normalizeNewlines(text)
}

// normalizeNewlines converts \r\n and lone \r line endings to \n.
func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// SplitLines splits text into lines that keep their trailing "\n".
// A final newline does not start an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hasUTF16BOM(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)
}
