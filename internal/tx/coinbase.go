package tx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractHeight pulls the BIP34 block height from a coinbase unlock script.
// The first byte is the push length; 1 to 8 following bytes hold the height
// little-endian. Returns false when the push is malformed.
func ExtractHeight(script []byte) (int64, bool) {
	if len(script) < 2 {
		return 0, false
	}
	n := int(script[0])
	if n < 1 || n > 8 || len(script) <= n {
		return 0, false
	}
	var h uint64
	for i := n; i >= 1; i-- {
		h = h<<8 | uint64(script[i])
	}
	return int64(h), true
}

// ExtractTag returns the printable pool identity tag and the untouched raw
// bytes following the height push. UTF-8 is attempted first with a
// byte-per-rune fallback, then control characters are stripped and the
// result trimmed. The raw bytes are kept for display regardless.
func ExtractTag(script []byte) (string, []byte) {
	if len(script) < 2 {
		return "", nil
	}
	start := 1 + int(script[0])
	if start >= len(script) {
		return "", nil
	}
	raw := script[start:]

	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		text = string(runes)
	}
	text = strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
	return strings.TrimSpace(text), raw
}
