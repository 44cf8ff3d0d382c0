package song

import (
	"strings"
	"testing"

	"github.com/bricedupuy/chordshow/core/chordpro"
	"github.com/bricedupuy/chordshow/core/meta"
)

const nbsp = "\u00a0"

const rawSong = `{title: vieux titre}
{key: G}

{c: Refrain}
{start_of_chorus}
A toi la gloire !
{end_of_chorus}

{c: Strophe 1}
{start_of_verse}
1. Il [G]dit : Bonjour
{end_of_verse}

{c: Refrain}
{start_of_chorus}
A toi la gloire !
{end_of_chorus}
`

func sampleRecord() *meta.Record {
	return &meta.Record{
		Number:    "JEM132",
		Title:     "À toi la gloire !",
		Author:    "Edmond Budry",
		Composer:  "G. F. Haendel",
		Copyright: "© 1984 JEM",
	}
}

func TestEnhanceHeader(t *testing.T) {
	doc := chordpro.Parse(rawSong)
	enhanced := Enhance(doc, sampleRecord())
	lines := strings.Split(enhanced, "\n")

	want := []string{
		"{number: JEM132}",
		"{title: À toi la gloire" + nbsp + "!}",
		"{lyricist: Edmond Budry}",
		"{composer: G. F. Haendel}",
		"{copyright: © 1984 JEM}",
		"{year: 1984}",
		"{key: G}",
		"",
	}
	if len(lines) < len(want) {
		t.Fatalf("enhanced output too short: %d lines", len(lines))
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestEnhanceHeaderOmitsEmptyFields(t *testing.T) {
	doc := chordpro.Parse("{start_of_verse}\ntexte\n{end_of_verse}")
	rec := &meta.Record{Number: "jem001", Title: "Titre"}
	enhanced := Enhance(doc, rec)

	for _, key := range []string{"{lyricist:", "{composer:", "{copyright:", "{year:", "{key:"} {
		if strings.Contains(enhanced, key) {
			t.Errorf("enhanced output contains %q for an empty field", key)
		}
	}
}

func TestEnhanceWithoutRecord(t *testing.T) {
	doc := chordpro.Parse(rawSong)
	enhanced := Enhance(doc, nil)

	if strings.Contains(enhanced, "{number:") || strings.Contains(enhanced, "{title:") {
		t.Error("header fields emitted without a catalog record")
	}
	// The source key still carries over.
	if !strings.Contains(enhanced, "{key: G}") {
		t.Error("source key directive lost")
	}
}

func TestEnhanceKeepsAllSections(t *testing.T) {
	doc := chordpro.Parse(rawSong)
	enhanced := Enhance(doc, sampleRecord())

	// No dedup in the enhanced file: both chorus repetitions survive.
	if got := strings.Count(enhanced, "{start_of_chorus}"); got != 2 {
		t.Errorf("chorus count = %d, want 2", got)
	}
	if got := strings.Count(enhanced, "{start_of_verse}"); got != 1 {
		t.Errorf("verse count = %d, want 1", got)
	}
	// Each section block is followed by a blank separator line.
	if !strings.Contains(enhanced, "{end_of_chorus}\n\n") {
		t.Error("missing blank line after section")
	}
}

func TestEnhanceNormalizesLyricLines(t *testing.T) {
	doc := chordpro.Parse(rawSong)
	enhanced := Enhance(doc, sampleRecord())

	if !strings.Contains(enhanced, "A toi la gloire"+nbsp+"!") {
		t.Error("lyric punctuation not normalized")
	}
	if !strings.Contains(enhanced, "1. Il [G]dit"+nbsp+": Bonjour") {
		t.Error("chord brackets must survive normalization")
	}
}

func TestProcess(t *testing.T) {
	table := meta.Table{"jem132": *sampleRecord()}

	res, err := Process("jem132", rawSong, table)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if res.Stem != "jem132" {
		t.Errorf("Stem = %q", res.Stem)
	}
	if !strings.Contains(res.Enhanced, "{number: JEM132}") {
		t.Error("enhanced text missing catalog number")
	}

	sh := res.Show
	if sh.Name != "À toi la gloire"+nbsp+"!" {
		t.Errorf("show name = %q", sh.Name)
	}
	if sh.Meta.Year != "1984" || sh.Meta.Key != "G" {
		t.Errorf("show meta year/key = %q/%q", sh.Meta.Year, sh.Meta.Key)
	}
	if sh.Category != "JEM" {
		t.Errorf("show category = %q", sh.Category)
	}

	// Dedup applies at show level: 2 slides, 3 layout positions.
	if len(sh.Slides) != 2 {
		t.Errorf("slides = %d, want 2", len(sh.Slides))
	}
	layout := sh.Layouts[sh.Settings.ActiveLayout]
	if layout == nil || len(layout.Slides) != 3 {
		t.Fatalf("layout = %+v, want 3 entries", layout)
	}
	if layout.Slides[0].ID != layout.Slides[2].ID {
		t.Error("repeated chorus should reuse one slide id")
	}
}

func TestProcessGroupsComeFromEnhancedText(t *testing.T) {
	// The enhanced file carries no {c:} labels, so re-parsing it gives the
	// sections their default names; those are what the show displays.
	res, err := Process("jem132", rawSong, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	groups := make(map[string]bool)
	for _, s := range res.Show.Slides {
		groups[s.Group] = true
	}
	if !groups["Chorus"] {
		t.Errorf("missing default chorus group, got %v", groups)
	}
	if groups["Refrain"] {
		t.Error("original label leaked into the show groups")
	}
}

func TestProcessWithoutTable(t *testing.T) {
	res, err := Process("inconnu", rawSong, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Show.Meta.Number != "" {
		t.Errorf("number = %q without a catalog", res.Show.Meta.Number)
	}
	// The enhanced text only carries header fields from the catalog record,
	// so without one the show name falls back to the stem.
	if res.Show.Name != "inconnu" {
		t.Errorf("name = %q", res.Show.Name)
	}
}

func TestProcessEmptyStem(t *testing.T) {
	if _, err := Process("", rawSong, nil); err == nil {
		t.Error("empty stem must be rejected")
	}
}

func TestFilenames(t *testing.T) {
	if got := EnhancedFilename("jem001"); got != "jem001-enhanced.chordpro" {
		t.Errorf("EnhancedFilename = %q", got)
	}
	if got := ShowFilename("jem001"); got != "jem001.show" {
		t.Errorf("ShowFilename = %q", got)
	}
}
