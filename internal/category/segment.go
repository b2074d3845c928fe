package category

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var trailingDigits = regexp.MustCompile(`[0-9-]+$`)

// DeriveSegment returns the leading hyphen-delimited segment of name with one
// trailing run of digits and hyphens stripped.
func DeriveSegment(name string) string {
	segment := name
	if i := strings.IndexByte(name, '-'); i >= 0 {
		segment = name[:i]
	}
	return trailingDigits.ReplaceAllString(segment, "")
}

// titleCase upper-cases the first rune of s.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
