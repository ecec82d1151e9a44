package planner

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxTitleCodeUnits bounds normalized title/language metadata to 24
// UTF-16 code units (spec §8, §9 open question: no clear provenance in
// the original, exposed here as a named constant rather than an inline
// literal).
const MaxTitleCodeUnits = 24

var stripControl = runes.Remove(runes.In(unicode.C))

// normalizeTitle strips control characters and unpaired surrogates,
// trims whitespace, and caps the result at MaxTitleCodeUnits UTF-16
// code units. An empty result after normalization returns "", which
// callers treat as "omit this metadata field".
func normalizeTitle(s string) string {
	cleaned, _, err := transform.String(stripControl, s)
	if err != nil {
		cleaned = s
	}
	cleaned = stripUnpairedSurrogates(cleaned)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	return truncateToCodeUnits(cleaned, MaxTitleCodeUnits)
}

// stripUnpairedSurrogates drops any rune that decoded as
// utf8.RuneError from a source that wasn't a legitimate 1-byte
// sequence — the signature of a lone UTF-16 surrogate that leaked into
// a UTF-8 string through a naive transcode.
func stripUnpairedSurrogates(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncateToCodeUnits cuts s so its UTF-16 encoding has at most n code
// units, never splitting a surrogate pair.
func truncateToCodeUnits(s string, n int) string {
	units := utf16.Encode([]rune(s))
	if len(units) <= n {
		return s
	}
	if n > 0 && units[n-1] >= 0xD800 && units[n-1] <= 0xDBFF {
		n--
	}
	return string(utf16.Decode(units[:n]))
}
