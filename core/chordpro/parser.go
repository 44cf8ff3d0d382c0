package chordpro

import (
	"regexp"
	"strings"
)

// Parser state. Section boundaries and pending labels are stateful, so input
// must be processed strictly line by line.
type state int

const (
	stateOutside state = iota
	stateInside
)

// eventKind classifies one input line into a recognized shape.
type eventKind int

const (
	// eventText is any line that matches no marker. Content when inside a
	// section, noise otherwise.
	eventText eventKind = iota
	// eventLabel is a {c: <text>} comment label.
	eventLabel
	// eventStart is a {start_of_<blocktype>} boundary.
	eventStart
	// eventEnd is an {end_of_<blocktype>} boundary.
	eventEnd
	// eventDirective is a generic {key} or {key: value} line.
	eventDirective
)

// event is one classified input line.
type event struct {
	kind eventKind
	raw  string // original line, whitespace preserved
	arg  string // label text or block type, depending on kind
	key  string // directive key, trimmed
	val  string // directive value, trimmed (may be empty)
}

var (
	labelPattern     = regexp.MustCompile(`^\{c:(.*)\}$`)
	startPattern     = regexp.MustCompile(`^\{start_of_(.+)\}$`)
	endPattern       = regexp.MustCompile(`^\{end_of_(.+)\}$`)
	directivePattern = regexp.MustCompile(`^\{([^:}]+)(?::(.*))?\}$`)

	// labelSplit separates a leading alphabetic type phrase from a trailing
	// numeric-or-single-letter ordinal, e.g. "strophe 1" or "couplet a".
	labelSplit = regexp.MustCompile(`^([a-zA-Z\s]+?)\s*([0-9]+|[a-zA-Z])$`)
)

// classify maps one raw line to an event. Label and boundary markers take
// precedence over the generic directive shape.
func classify(line string) event {
	trimmed := strings.TrimSpace(line)

	if m := labelPattern.FindStringSubmatch(trimmed); m != nil {
		return event{kind: eventLabel, raw: line, arg: strings.TrimSpace(m[1])}
	}
	if m := startPattern.FindStringSubmatch(trimmed); m != nil {
		return event{kind: eventStart, raw: line, arg: strings.TrimSpace(m[1])}
	}
	if m := endPattern.FindStringSubmatch(trimmed); m != nil {
		return event{kind: eventEnd, raw: line, arg: strings.TrimSpace(m[1])}
	}
	if m := directivePattern.FindStringSubmatch(trimmed); m != nil {
		return event{
			kind: eventDirective,
			raw:  line,
			key:  strings.TrimSpace(m[1]),
			val:  strings.TrimSpace(m[2]),
		}
	}
	return event{kind: eventText, raw: line}
}

// parser drives the outside/inside state machine over classified lines.
type parser struct {
	state   state
	doc     *Document
	current Section

	pendingLabel string
	hasPending   bool
}

// Parse turns raw ChordPro text into a Document.
//
// A section left open at end of input is flushed rather than dropped:
// a missing {end_of_*} marker must not lose content.
func Parse(text string) *Document {
	p := &parser{
		state: stateOutside,
		doc:   &Document{},
	}

	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	if p.state == stateInside {
		p.flush()
	}

	return p.doc
}

// feed processes one line through the transition table.
func (p *parser) feed(line string) {
	ev := classify(line)

	switch ev.kind {
	case eventLabel:
		// The label primes the next section boundary. Inside a section it
		// is also literal content and must round-trip.
		p.pendingLabel = ev.arg
		p.hasPending = true
		if p.state == stateInside {
			p.current.Content = append(p.current.Content, ev.raw)
		}

	case eventStart:
		// Defensive auto-close: a new start marker while inside a section
		// emits the open one first so its content is not dropped.
		if p.state == stateInside {
			p.flush()
		}
		p.open(ev.arg)
		p.state = stateInside

	case eventEnd:
		if p.state == stateInside {
			p.flush()
			p.state = stateOutside
		}

	case eventDirective:
		p.doc.Directives = append(p.doc.Directives, Directive{Key: ev.key, Value: ev.val})
		if p.state == stateInside {
			p.current.Content = append(p.current.Content, ev.raw)
		}

	case eventText:
		if p.state == stateInside {
			p.current.Content = append(p.current.Content, ev.raw)
		}
	}
}

// open starts a new section for the given block type, consuming any pending
// label to derive name, canonical type, and ordinal.
func (p *parser) open(blockType string) {
	p.current = Section{
		Name: titleCase(blockType),
		Type: blockType,
	}

	if p.hasPending {
		p.current.Name = p.pendingLabel

		lowered := strings.ToLower(p.pendingLabel)
		phrase := lowered
		if m := labelSplit.FindStringSubmatch(lowered); m != nil {
			phrase = strings.TrimSpace(m[1])
			p.current.Ordinal = m[2]
		}
		p.current.Type = canonicalType(phrase, blockType)

		p.pendingLabel = ""
		p.hasPending = false
	}
}

// flush emits the accumulated section.
func (p *parser) flush() {
	p.doc.Sections = append(p.doc.Sections, p.current)
	p.current = Section{}
}
