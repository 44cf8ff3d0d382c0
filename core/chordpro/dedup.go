package chordpro

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint computes the content fingerprint of a section: the BLAKE3 hash
// of its content lines with comment-label lines filtered out, preserving the
// order and exact text of the remaining lines.
//
// Two sections share a fingerprint iff their non-label content is identical
// line for line. Hash collisions between differing sections are not handled;
// with a collision-resistant hash the birthday bound is far below any
// realistic songbook size, and this keeps deduplication O(n) instead of the
// O(n²) of pairwise comparison.
func Fingerprint(s *Section) string {
	lines := make([]string, 0, len(s.Content))
	for _, line := range s.Content {
		if strings.HasPrefix(strings.TrimSpace(line), "{c:") {
			continue
		}
		lines = append(lines, line)
	}

	sum := blake3.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// Deduplicate collapses content-identical sections into a canonical set.
//
// The returned canonical slice holds the first occurrence of each distinct
// fingerprint, in first-seen order. The index map has one entry per input
// section, in input order, giving the index of its canonical representative.
// Repeated choruses therefore collapse to one canonical section that the
// index map references multiple times.
func Deduplicate(sections []Section) (canonical []Section, indexMap []int) {
	canonical = make([]Section, 0, len(sections))
	indexMap = make([]int, 0, len(sections))
	byFingerprint := make(map[string]int, len(sections))

	for i := range sections {
		fp := Fingerprint(&sections[i])
		idx, seen := byFingerprint[fp]
		if !seen {
			idx = len(canonical)
			byFingerprint[fp] = idx
			canonical = append(canonical, sections[i])
		}
		indexMap = append(indexMap, idx)
	}

	return canonical, indexMap
}
