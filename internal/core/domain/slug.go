package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolder strips diacritics: decompose, drop combining marks, recompose.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// WorkSlug derives the deterministic event key for a job. Two participants
// describing the same job (same title and date range) converge on the same
// slug regardless of casing, accents, or punctuation.
func WorkSlug(title string, from, to time.Time) string {
	folded, _, err := transform.String(asciiFolder, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	return slug + "-" + from.UTC().Format("2006-01-02") + "-" + to.UTC().Format("2006-01-02")
}
