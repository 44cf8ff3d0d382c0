// Package show synthesizes FreeShow .show documents from parsed ChordPro
// songs.
//
// A .show file is a two-element JSON array: the show identifier followed by
// the show body. The body's shape (key names and nesting) is a compatibility
// contract with FreeShow and must not drift.
package show

import (
	"encoding/json"

	"github.com/bricedupuy/chordshow/core/chord"
)

// Show is one presentation document.
type Show struct {
	// ID is the deterministic show identifier. It is the first element of
	// the serialized array, not a body field.
	ID string `json:"-"`

	Name        string             `json:"name"`
	Origin      string             `json:"origin"`
	Private     bool               `json:"private"`
	Category    string             `json:"category"`
	Settings    Settings           `json:"settings"`
	QuickAccess QuickAccess        `json:"quickAccess"`
	Meta        Meta               `json:"meta"`
	Slides      map[string]*Slide  `json:"slides"`
	Layouts     map[string]*Layout `json:"layouts"`
	Media       map[string]any     `json:"media"`
}

// MarshalJSON emits the [id, body] array shape FreeShow expects.
func (s *Show) MarshalJSON() ([]byte, error) {
	type body Show
	return json.Marshal([]any{s.ID, (*body)(s)})
}

// UnmarshalJSON reads the [id, body] array shape back into a Show.
func (s *Show) UnmarshalJSON(data []byte) error {
	type body Show
	var id string
	b := (*body)(s)
	parts := []any{&id, b}
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Settings selects the active layout.
type Settings struct {
	ActiveLayout string  `json:"activeLayout"`
	Template     *string `json:"template"`
}

// QuickAccess exposes the song number for FreeShow's quick lookup.
type QuickAccess struct {
	Number string `json:"number"`
}

// Meta is the show's metadata summary.
type Meta struct {
	Number    string `json:"number"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Composer  string `json:"composer"`
	Copyright string `json:"copyright"`
	Year      string `json:"year"`
	Key       string `json:"key"`
}

// Slide is one renderable unit, corresponding to one canonical section.
type Slide struct {
	Group       string         `json:"group"`
	Color       string         `json:"color"`
	Settings    map[string]any `json:"settings"`
	Notes       string         `json:"notes"`
	Items       []Item         `json:"items"`
	GlobalGroup string         `json:"globalGroup,omitempty"`
}

// Item is one text box on a slide.
type Item struct {
	Lines  []Line        `json:"lines"`
	Style  string        `json:"style"`
	Align  string        `json:"align"`
	Auto   bool          `json:"auto"`
	Chords ChordSettings `json:"chords"`
}

// ChordSettings toggles chord display for an item.
type ChordSettings struct {
	Enabled bool `json:"enabled"`
}

// Line is one display line with its anchored chords.
type Line struct {
	Align  string             `json:"align"`
	Text   []Text             `json:"text"`
	Chords []chord.Annotation `json:"chords"`
}

// Text is one styled text run within a line.
type Text struct {
	Value string `json:"value"`
	Style string `json:"style"`
}

// Layout is the ordered list of slide references for playback. Repeated
// sections reference the same slide id multiple times.
type Layout struct {
	Name   string     `json:"name"`
	Notes  string     `json:"notes"`
	Slides []SlideRef `json:"slides"`
}

// SlideRef points a layout position at a slide.
type SlideRef struct {
	ID string `json:"id"`
}
