// Package urlcode carries plain-text values (typically an email address)
// through a URL path segment as base64. Decoding is strict: anything that is
// not the exact encoding of printable ASCII text comes back empty.
package urlcode

import (
	"encoding/base64"
	"strings"
)

const symbols = "~`!@#$%^&*()-_=+[{]}\\|;:'\",<.>/?"

// Encode returns the standard base64 encoding of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode. It returns "" unless code is valid base64, the
// decoded bytes are plain ASCII text, and re-encoding reproduces code
// exactly. The round-trip check rejects alternate encodings of the same
// bytes (padding or alphabet ambiguity) and binary payloads. Decode never
// fails loudly.
func Decode(code string) string {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return ""
	}
	plain := string(raw)
	if !IsPlainText(plain) {
		return ""
	}
	if base64.StdEncoding.EncodeToString(raw) != code {
		return ""
	}
	return plain
}

// IsPlainText reports whether every character of s is an ASCII alphanumeric
// or one of the accepted symbols.
func IsPlainText(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case strings.IndexByte(symbols, c) >= 0:
		default:
			return false
		}
	}
	return true
}
