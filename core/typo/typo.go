// Package typo applies French typography rules to display text.
//
// French typography requires a non-breaking space before double punctuation
// marks (; : ! ?) and closing guillemets (»), and after opening guillemets
// («). Regular spaces there let renderers break the line between a word and
// its punctuation, which reads badly on projected lyrics.
package typo

import "regexp"

// NBSP is the non-breaking space character (U+00A0).
const NBSP = "\u00a0"

// The whitespace class here must include NBSP itself so that normalization
// is idempotent: a run already reduced to a single NBSP matches and is
// rewritten to the same single NBSP.
var (
	doublePunct       = regexp.MustCompile(`[\s\x{00A0}]+([;:!?»])`)
	openingGuillemets = regexp.MustCompile(`(«)[\s\x{00A0}]+`)
)

// Normalize rewrites text so that any whitespace run before one of ; : ! ? »
// becomes a single non-breaking space, and any whitespace run after « becomes
// a single non-breaking space. Empty input is returned unchanged.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return text
	}

	text = doublePunct.ReplaceAllString(text, NBSP+"$1")
	text = openingGuillemets.ReplaceAllString(text, "$1"+NBSP)

	return text
}
