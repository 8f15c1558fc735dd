package share

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// minCharsetConfidence is the chardet confidence (0-100) below which a detection is ignored.
const minCharsetConfidence = 30

// DecodeText converts file content to a string without ever failing: byte sequences that
// are not valid UTF-8 become U+FFFD. With detect set, content that is not valid UTF-8 is
// first transcoded from the detected character set.
func DecodeText(data []byte, detect bool) string {
	if detect && !utf8.Valid(data) {
		if text, ok := decodeDetected(data); ok {
			return text
		}
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}
	return string(decoded)
}

// DetectCharset returns the lower-cased name of the most likely character set of data.
func DetectCharset(data []byte) (string, bool) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minCharsetConfidence {
		return "", false
	}
	return strings.ToLower(result.Charset), true
}

func decodeDetected(data []byte) (string, bool) {
	name, ok := DetectCharset(data)
	if !ok || name == "utf-8" {
		return "", false
	}
	enc, _ := charset.Lookup(name)
	if enc == nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
