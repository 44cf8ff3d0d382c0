package typo

import (
	"strings"
	"testing"
)

const nbsp = "\u00a0"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no punctuation", "Dieu est amour", "Dieu est amour"},
		{"space before colon", "Il dit : Bonjour", "Il dit" + nbsp + ": Bonjour"},
		{"space before exclamation", "Alléluia !", "Alléluia" + nbsp + "!"},
		{"space before question", "Où es-tu ?", "Où es-tu" + nbsp + "?"},
		{"space before semicolon", "un ; deux", "un" + nbsp + "; deux"},
		{"closing guillemet", "la vie »", "la vie" + nbsp + "»"},
		{"opening guillemet", "« Venez", "«" + nbsp + "Venez"},
		{"no space stays untouched", "salut:tous", "salut:tous"},
		{"multiple spaces collapse", "Il dit  : oui", "Il dit" + nbsp + ": oui"},
		{"existing nbsp preserved", "Il dit" + nbsp + ": oui", "Il dit" + nbsp + ": oui"},
		{"mixed space and nbsp run", "Il dit " + nbsp + ": oui", "Il dit" + nbsp + ": oui"},
		{"several marks", "Quoi ? Vraiment !", "Quoi" + nbsp + "? Vraiment" + nbsp + "!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Il dit : Bonjour",
		"« Venez ! » dit-il ; tous vinrent.",
		"Sans ponctuation",
		"Déjà normalisé" + nbsp + "!",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizePreservesPunctuationCount(t *testing.T) {
	in := "« Quoi ? » dit-il ; puis : rien ! Vraiment ?"
	out := Normalize(in)

	for _, mark := range []string{";", ":", "!", "?", "»", "«"} {
		if strings.Count(out, mark) != strings.Count(in, mark) {
			t.Errorf("count of %q changed: in=%d out=%d",
				mark, strings.Count(in, mark), strings.Count(out, mark))
		}
	}
}
