// Package chord extracts inline bracketed chord annotations from lyric lines.
//
// A ChordPro lyric line anchors chords to syllables with bracketed tokens:
//
//	Dieu [C]est [G]amour
//
// Extraction removes the bracket tokens and records, for each chord, the
// offset in the stripped text where the chord should be anchored.
package chord

import (
	"encoding/hex"
	"regexp"
	"strconv"

	"github.com/bricedupuy/chordshow/core/typo"
	"github.com/zeebo/blake3"
)

// Annotation is one inline chord anchored to a lyric line.
type Annotation struct {
	// ID is a short deterministic token derived from the chord symbol and
	// its original bracket position, so identical chords at different
	// positions in the same line do not collide.
	ID string `json:"id"`

	// Pos is the anchor offset within the chord-stripped line. Never
	// negative.
	Pos int `json:"pos"`

	// Key is the chord symbol as written between the brackets.
	Key string `json:"key"`
}

// Line is the result of extracting chords from one content line.
type Line struct {
	// Chords lists the annotations in left-to-right order.
	Chords []Annotation

	// Text is the input with all bracket tokens removed and nothing else
	// changed. Annotation offsets index into this string.
	Text string

	// Display is Text prepared for presentation: a leading enumeration
	// marker ("1. ") is stripped and typography normalization applied.
	Display string
}

var (
	chordPattern = regexp.MustCompile(`\[([^\]]+)\]`)
	enumPrefix   = regexp.MustCompile(`^\d+\.\s*`)
)

// Extract scans a content line for bracketed chord tokens and returns the
// annotations plus the chord-stripped text.
//
// Each annotation's offset equals its bracket position in the original line
// minus the total bracket markup length of the chords found to its left,
// clamped at zero. The stripped text is therefore exactly the original with
// the bracket tokens cut out, and offsets stay consistent with it.
func Extract(line string) Line {
	var chords []Annotation
	removed := 0

	for _, m := range chordPattern.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[0], m[1]
		symbol := line[m[2]:m[3]]

		pos := start - removed
		if pos < 0 {
			pos = 0
		}

		chords = append(chords, Annotation{
			ID:  annotationID(symbol, start),
			Pos: pos,
			Key: symbol,
		})
		removed += end - start
	}

	text := chordPattern.ReplaceAllString(line, "")

	return Line{
		Chords:  chords,
		Text:    text,
		Display: typo.Normalize(enumPrefix.ReplaceAllString(text, "")),
	}
}

// annotationID derives a short stable identifier from the chord symbol and
// its original bracket offset.
func annotationID(symbol string, originalPos int) string {
	sum := blake3.Sum256([]byte(symbol + strconv.Itoa(originalPos)))
	return hex.EncodeToString(sum[:])[:5]
}
