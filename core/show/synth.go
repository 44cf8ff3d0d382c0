package show

import (
	"strings"

	"github.com/bricedupuy/chordshow/core/chord"
	"github.com/bricedupuy/chordshow/core/chordpro"
	"github.com/bricedupuy/chordshow/core/typo"
)

// Fixed presentation lookups per section type. Owned here as immutable data;
// types absent from a table fall back to the zero value.
var sectionColors = map[string]string{
	"verse":      "",
	"chorus":     "#f525d2",
	"bridge":     "#f52598",
	"pre_chorus": "#25d2f5",
	"tag":        "#f5d225",
	"intro":      "",
	"outro":      "",
}

// globalGroups marks the section types that share a FreeShow global group,
// so every chorus (say) across songs picks up the same template.
var globalGroups = map[string]string{
	"chorus":     "chorus",
	"bridge":     "bridge",
	"pre_chorus": "pre_chorus",
}

const (
	originName       = "jemaf"
	defaultItemStyle = "top:120px;left:50px;height:840px;width:1820px;"
	defaultTextStyle = "font-size: 100px;"
	layoutName       = "Default"
	layoutNotes      = "1 voix"
)

// Synthesize maps a parsed document onto the FreeShow show shape.
//
// Sections are deduplicated first: one slide is created per canonical
// section, and the layout mirrors the original section order through the
// index map, so repeated sections reuse one slide identifier at several
// layout positions. Identical lyrical content is stored once, referenced
// many times.
func Synthesize(stem string, doc *chordpro.Document) *Show {
	canonical, indexMap := chordpro.Deduplicate(doc.Sections)

	slides := make(map[string]*Slide, len(canonical))
	slideIDs := make([]string, len(canonical))
	for i := range canonical {
		id := SlideID(canonical[i].Type, i, canonical[i].RawContent())
		slides[id] = buildSlide(&canonical[i])
		slideIDs[i] = id
	}

	layoutID := LayoutID(stem)
	refs := make([]SlideRef, len(indexMap))
	for i, canonicalIdx := range indexMap {
		refs[i] = SlideRef{ID: slideIDs[canonicalIdx]}
	}

	title := directiveOr(doc, "title", stem)

	return &Show{
		ID:       ShowID(stem),
		Name:     typo.Normalize(title),
		Origin:   originName,
		Private:  false,
		Category: categoryFor(stem),
		Settings: Settings{
			ActiveLayout: layoutID,
			Template:     nil,
		},
		QuickAccess: QuickAccess{
			Number: directiveOr(doc, "number", ""),
		},
		Meta: Meta{
			Number:    directiveOr(doc, "number", ""),
			Title:     typo.Normalize(title),
			Author:    typo.Normalize(directiveOr(doc, "lyricist", "")),
			Composer:  typo.Normalize(directiveOr(doc, "composer", "")),
			Copyright: typo.Normalize(directiveOr(doc, "copyright", "")),
			Year:      directiveOr(doc, "year", ""),
			Key:       directiveOr(doc, "key", ""),
		},
		Slides: slides,
		Layouts: map[string]*Layout{
			layoutID: {
				Name:   layoutName,
				Notes:  layoutNotes,
				Slides: refs,
			},
		},
		Media: map[string]any{},
	}
}

// buildSlide turns one canonical section into a slide. Comment-label lines
// and blank lines carry no lyrics and are dropped; everything else becomes
// one display line with its chords extracted.
func buildSlide(section *chordpro.Section) *Slide {
	lines := make([]Line, 0, len(section.Content))
	for _, raw := range section.Content {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "{c:") {
			continue
		}

		extracted := chord.Extract(raw)
		chords := extracted.Chords
		if chords == nil {
			chords = []chord.Annotation{}
		}

		lines = append(lines, Line{
			Align: "",
			Text: []Text{{
				Value: extracted.Display,
				Style: defaultTextStyle,
			}},
			Chords: chords,
		})
	}

	slide := &Slide{
		Group:    section.Name,
		Color:    sectionColors[section.Type],
		Settings: map[string]any{},
		Notes:    "",
		Items: []Item{{
			Lines:  lines,
			Style:  defaultItemStyle,
			Align:  "",
			Auto:   false,
			Chords: ChordSettings{Enabled: false},
		}},
		GlobalGroup: globalGroups[section.Type],
	}

	return slide
}

// categoryFor classifies a song by its file stem prefix.
func categoryFor(stem string) string {
	lower := strings.ToLower(stem)
	if strings.HasPrefix(stem, "jem") {
		if strings.Contains(lower, "jemk") {
			return "JEM Kids"
		}
		return "JEM"
	}
	return "song"
}

func directiveOr(doc *chordpro.Document, key, fallback string) string {
	if v, ok := doc.Directive(key); ok {
		return v
	}
	return fallback
}
