package show

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"
)

// Identifier derivation. All ids are the leading 11 hex characters of a
// BLAKE3 hash over a canonical input string, so reprocessing the same input
// reproduces the same identifiers.

const idLen = 11

func shortHash(input string) string {
	sum := blake3.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idLen]
}

// ShowID derives the show identifier from the source file stem.
func ShowID(stem string) string {
	return shortHash(stem)
}

// SlideID derives a slide identifier from the section type, its position in
// the canonical sequence, and its raw content.
func SlideID(sectionType string, position int, rawContent string) string {
	return shortHash(sectionType + strconv.Itoa(position) + rawContent)
}

// LayoutID derives the layout identifier from a fixed literal plus the
// source file stem.
func LayoutID(stem string) string {
	return shortHash("layout" + stem)
}
