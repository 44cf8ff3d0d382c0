// Package chordpro parses ChordPro songbook markup into a structured
// document model: an ordered list of directives and an ordered list of
// typed sections.
//
// The parser is line oriented. It recognizes a fixed set of line shapes
// (comment labels, section boundaries, generic directives) and treats
// everything else as section content. It deliberately does not validate
// input against a formal ChordPro grammar; malformed directive lines are
// kept as content or discarded depending on parser state, never rejected.
package chordpro

import "strings"

// Directive is a {key} or {key: value} metadata line.
type Directive struct {
	Key   string
	Value string
}

// Section is a bounded block of lyric/chord content with a semantic type.
type Section struct {
	// Name is the display label, e.g. "Strophe 1" or "Refrain".
	// Defaults to the title-cased block type when no label precedes the
	// section start marker.
	Name string

	// Type is one of verse, chorus, bridge, intro, outro, or the literal
	// block type token when no synonym matches.
	Type string

	// Ordinal distinguishes same-type sections ("1", "2", "a"). Empty when
	// the label carries no trailing token.
	Ordinal string

	// Content holds the raw lines between the section boundaries, in
	// original order, including nested directive and label lines verbatim.
	Content []string
}

// RawContent returns the section content joined with newlines.
func (s *Section) RawContent() string {
	return strings.Join(s.Content, "\n")
}

// Document is the result of parsing one ChordPro source.
type Document struct {
	// Directives lists every recognized directive in order of appearance.
	// Duplicate keys are retained; lookups resolve to the last occurrence.
	Directives []Directive

	// Sections lists the emitted sections in source order.
	Sections []Section
}

// Directive returns the value of the last occurrence of key.
func (d *Document) Directive(key string) (string, bool) {
	for i := len(d.Directives) - 1; i >= 0; i-- {
		if d.Directives[i].Key == key {
			return d.Directives[i].Value, true
		}
	}
	return "", false
}

// typeSynonyms maps label phrases to canonical section types. Lookup is by
// substring containment against the lowercased phrase, first entry wins, so
// declaration order matters.
var typeSynonyms = []struct {
	keyword   string
	canonical string
}{
	{"refrain", "chorus"},
	{"chorus", "chorus"},
	{"strophe", "verse"},
	{"verse", "verse"},
	{"pont", "bridge"},
	{"bridge", "bridge"},
	{"introduction", "intro"},
	{"intro", "intro"},
	{"fin", "outro"},
	{"outro", "outro"},
}

// canonicalType resolves a label phrase to a canonical section type, or
// returns fallback when no synonym matches.
func canonicalType(phrase, fallback string) string {
	for _, syn := range typeSynonyms {
		if strings.Contains(phrase, syn.keyword) {
			return syn.canonical
		}
	}
	return fallback
}

// titleCase capitalizes the first letter of every word, where a word starts
// after any non-letter character. "pre_chorus" becomes "Pre_Chorus".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
		case isLetter:
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
