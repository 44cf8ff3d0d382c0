package chordpro

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseDirectives(t *testing.T) {
	doc := Parse(strings.Join([]string{
		"{title: Dieu est amour}",
		"{key: C}",
		"{composer}",
		"not a directive, outside any section",
	}, "\n"))

	if len(doc.Sections) != 0 {
		t.Fatalf("got %d sections, want 0", len(doc.Sections))
	}
	if len(doc.Directives) != 3 {
		t.Fatalf("got %d directives, want 3", len(doc.Directives))
	}

	if v, ok := doc.Directive("title"); !ok || v != "Dieu est amour" {
		t.Errorf("title = %q, %v", v, ok)
	}
	if v, ok := doc.Directive("key"); !ok || v != "C" {
		t.Errorf("key = %q, %v", v, ok)
	}
	if v, ok := doc.Directive("composer"); !ok || v != "" {
		t.Errorf("composer = %q, %v; want empty value present", v, ok)
	}
	if _, ok := doc.Directive("missing"); ok {
		t.Error("missing key reported present")
	}
}

func TestParseDuplicateDirectiveLastWins(t *testing.T) {
	doc := Parse("{key: C}\n{key: G}")

	if v, _ := doc.Directive("key"); v != "G" {
		t.Errorf("key = %q, want G (last occurrence wins)", v)
	}
	if len(doc.Directives) != 2 {
		t.Errorf("got %d directives, want both occurrences retained", len(doc.Directives))
	}
}

func TestParseSections(t *testing.T) {
	doc := Parse(strings.Join([]string{
		"{c: Strophe 1}",
		"{start_of_verse}",
		"Dieu est amour",
		"Dieu est lumière",
		"{end_of_verse}",
		"",
		"{c: Refrain}",
		"{start_of_chorus}",
		"Alléluia",
		"{end_of_chorus}",
	}, "\n"))

	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}

	verse := doc.Sections[0]
	if verse.Name != "Strophe 1" || verse.Type != "verse" || verse.Ordinal != "1" {
		t.Errorf("verse = %+v", verse)
	}
	if !reflect.DeepEqual(verse.Content, []string{"Dieu est amour", "Dieu est lumière"}) {
		t.Errorf("verse content = %q", verse.Content)
	}

	chorus := doc.Sections[1]
	if chorus.Name != "Refrain" || chorus.Type != "chorus" {
		t.Errorf("chorus = %+v", chorus)
	}
	if !reflect.DeepEqual(chorus.Content, []string{"Alléluia"}) {
		t.Errorf("chorus content = %q", chorus.Content)
	}
}

func TestParseSectionDefaults(t *testing.T) {
	// No label: name defaults to the title-cased block type.
	doc := Parse("{start_of_bridge}\nligne\n{end_of_bridge}")

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	s := doc.Sections[0]
	if s.Name != "Bridge" || s.Type != "bridge" || s.Ordinal != "" {
		t.Errorf("section = %+v", s)
	}
}

func TestParseLabelSynonyms(t *testing.T) {
	tests := []struct {
		label     string
		blockType string
		wantType  string
		wantOrd   string
	}{
		{"Strophe 2", "verse", "verse", "2"},
		{"Couplet a", "verse", "verse", "a"},
		{"Pont 1", "bridge", "bridge", "1"},
		{"Introduction 1", "intro", "intro", "1"},
		{"Fin 1", "outro", "outro", "1"},
		// No trailing token and no matching synonym: block type survives.
		{"Interlude 3", "verse", "verse", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			doc := Parse("{c: " + tt.label + "}\n{start_of_" + tt.blockType + "}\nx\n{end_of_" + tt.blockType + "}")
			if len(doc.Sections) != 1 {
				t.Fatalf("got %d sections", len(doc.Sections))
			}
			s := doc.Sections[0]
			if s.Name != tt.label {
				t.Errorf("Name = %q, want %q", s.Name, tt.label)
			}
			if s.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", s.Type, tt.wantType)
			}
			if s.Ordinal != tt.wantOrd {
				t.Errorf("Ordinal = %q, want %q", s.Ordinal, tt.wantOrd)
			}
		})
	}
}

func TestParseLabelConsumedOnce(t *testing.T) {
	doc := Parse(strings.Join([]string{
		"{c: Strophe 1}",
		"{start_of_verse}",
		"un",
		"{end_of_verse}",
		"{start_of_verse}",
		"deux",
		"{end_of_verse}",
	}, "\n"))

	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Strophe 1" {
		t.Errorf("first section name = %q", doc.Sections[0].Name)
	}
	// The label was consumed by the first section.
	if doc.Sections[1].Name != "Verse" {
		t.Errorf("second section name = %q, want default Verse", doc.Sections[1].Name)
	}
}

func TestParseNestedLinesKeptVerbatim(t *testing.T) {
	doc := Parse(strings.Join([]string{
		"{start_of_verse}",
		"{c: note interne}",
		"{key: D}",
		"  ligne avec espaces  ",
		"{end_of_verse}",
	}, "\n"))

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections", len(doc.Sections))
	}
	want := []string{"{c: note interne}", "{key: D}", "  ligne avec espaces  "}
	if !reflect.DeepEqual(doc.Sections[0].Content, want) {
		t.Errorf("content = %q, want %q", doc.Sections[0].Content, want)
	}

	// The nested directive is still recorded document-wide.
	if v, ok := doc.Directive("key"); !ok || v != "D" {
		t.Errorf("key = %q, %v", v, ok)
	}
}

func TestParseAutoCloseOnNewStart(t *testing.T) {
	// Missing end marker: the next start marker must flush the open
	// section instead of dropping it.
	doc := Parse(strings.Join([]string{
		"{start_of_verse}",
		"premier",
		"{start_of_chorus}",
		"second",
		"{end_of_chorus}",
	}, "\n"))

	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Type != "verse" || doc.Sections[0].RawContent() != "premier" {
		t.Errorf("first section = %+v", doc.Sections[0])
	}
	if doc.Sections[1].Type != "chorus" || doc.Sections[1].RawContent() != "second" {
		t.Errorf("second section = %+v", doc.Sections[1])
	}
}

func TestParseFlushesOpenSectionAtEOF(t *testing.T) {
	doc := Parse("{start_of_verse}\ncontenu final")

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want trailing section flushed", len(doc.Sections))
	}
	if doc.Sections[0].RawContent() != "contenu final" {
		t.Errorf("content = %q", doc.Sections[0].RawContent())
	}
}

func TestParseStrayEndIgnored(t *testing.T) {
	doc := Parse("{end_of_verse}\ntexte libre")

	if len(doc.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(doc.Sections))
	}
	if len(doc.Directives) != 0 {
		t.Errorf("got %d directives, want 0", len(doc.Directives))
	}
}

func TestParseMalformedDirectiveIgnored(t *testing.T) {
	doc := Parse(strings.Join([]string{
		"{start_of_verse}",
		"{pas fermé",
		"{end_of_verse}",
	}, "\n"))

	if len(doc.Directives) != 0 {
		t.Errorf("malformed line recorded as directive: %+v", doc.Directives)
	}
	// Inside a section the malformed line is still content.
	if len(doc.Sections) != 1 || doc.Sections[0].RawContent() != "{pas fermé" {
		t.Errorf("sections = %+v", doc.Sections)
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"verse", "Verse"},
		{"pre_chorus", "Pre_Chorus"},
		{"CHORUS", "Chorus"},
		{"two words", "Two Words"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
