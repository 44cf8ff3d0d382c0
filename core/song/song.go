// Package song drives the full per-song pipeline: merge catalogue metadata
// into a parsed ChordPro document, emit the enriched ChordPro text, and
// synthesize the FreeShow show from it.
package song

import (
	"regexp"
	"strings"

	"github.com/bricedupuy/chordshow/core/chordpro"
	"github.com/bricedupuy/chordshow/core/errors"
	"github.com/bricedupuy/chordshow/core/meta"
	"github.com/bricedupuy/chordshow/core/show"
	"github.com/bricedupuy/chordshow/core/typo"
)

var yearPattern = regexp.MustCompile(`(\d{4})`)

// Result bundles the two artifacts produced for one song.
type Result struct {
	Stem     string
	Enhanced string
	Show     *show.Show
}

// EnhancedFilename names the enriched ChordPro artifact for a stem.
func EnhancedFilename(stem string) string {
	return stem + "-enhanced.chordpro"
}

// ShowFilename names the FreeShow artifact for a stem.
func ShowFilename(stem string) string {
	return stem + ".show"
}

// Enhance renders the enriched ChordPro text for a document: a metadata
// header built from the catalogue record, the song key carried over from the
// source, then every section re-serialized in order with French punctuation
// applied to its lyric lines. Sections are NOT deduplicated here; the
// enhanced file preserves the full song structure.
func Enhance(doc *chordpro.Document, rec *meta.Record) string {
	var out []string

	if rec != nil {
		out = append(out, "{number: "+rec.Number+"}")
		out = append(out, "{title: "+typo.Normalize(rec.Title)+"}")
		if rec.Author != "" {
			out = append(out, "{lyricist: "+typo.Normalize(rec.Author)+"}")
		}
		if rec.Composer != "" {
			out = append(out, "{composer: "+typo.Normalize(rec.Composer)+"}")
		}
		if rec.Copyright != "" {
			out = append(out, "{copyright: "+typo.Normalize(rec.Copyright)+"}")
			if m := yearPattern.FindStringSubmatch(rec.Copyright); m != nil {
				out = append(out, "{year: "+m[1]+"}")
			}
		}
	}

	if key, ok := doc.Directive("key"); ok {
		out = append(out, "{key: "+key+"}")
	}

	out = append(out, "")

	for i := range doc.Sections {
		section := &doc.Sections[i]
		out = append(out, "{start_of_"+section.Type+"}")
		for _, line := range section.Content {
			if !strings.HasPrefix(strings.TrimSpace(line), "{") {
				line = typo.Normalize(line)
			}
			out = append(out, line)
		}
		out = append(out, "{end_of_"+section.Type+"}")
		out = append(out, "")
	}

	return strings.Join(out, "\n")
}

// Process runs the pipeline for one song: parse the raw ChordPro source,
// look up its catalogue record by stem, build the enhanced text, then parse
// that text again and synthesize the show from it. Re-parsing the enhanced
// output rather than reusing the first parse keeps the .show a faithful
// rendering of the file actually written to disk.
func Process(stem string, raw string, table meta.Table) (*Result, error) {
	if stem == "" {
		return nil, errors.NewValidation("stem", "must not be empty")
	}

	doc := chordpro.Parse(raw)

	var rec *meta.Record
	if table != nil {
		if r, ok := table.Lookup(stem); ok {
			rec = &r
		}
	}

	enhanced := Enhance(doc, rec)
	sh := show.Synthesize(stem, chordpro.Parse(enhanced))

	return &Result{
		Stem:     stem,
		Enhanced: enhanced,
		Show:     sh,
	}, nil
}
