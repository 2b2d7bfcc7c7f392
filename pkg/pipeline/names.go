package pipeline

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identifier derives a skin identifier from a block key: the part after the
// first ':' (if any), lowercased, with every character outside [a-z0-9_]
// replaced by '_'. It reports false when the result is empty.
func Identifier(key string) (string, bool) {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
		if j := strings.IndexByte(key, ':'); j >= 0 {
			key = key[:j]
		}
	}
	id := CleanIdentifier(key)
	return id, id != ""
}

// CleanIdentifier lowercases s and replaces every character outside
// [a-z0-9_] with '_'.
func CleanIdentifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DisplayName turns "polished_andesite" into "Polished Andesite". Empty
// segments are dropped; a name with no words falls back to id.
func DisplayName(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || unicode.IsSpace(r) })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return id
	}
	return strings.Join(words, " ")
}
