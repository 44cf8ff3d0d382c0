// Package picker is the interactive song selector. It presents the remote
// song listing, enriched with catalog titles, as a filterable multi-select
// list.
package picker

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item is one selectable song.
type Item struct {
	Filename string
	Title    string
	Author   string
}

// label renders the listing line for an item.
func (it Item) label() string {
	label := it.Filename
	if it.Title != "" {
		label += " - " + it.Title
	}
	if it.Author != "" {
		label += " (" + it.Author + ")"
	}
	return label
}

// matches reports whether the item matches a lowercased filter term in its
// file name, title, or author.
func (it Item) matches(term string) bool {
	return strings.Contains(strings.ToLower(it.Filename), term) ||
		strings.Contains(strings.ToLower(it.Title), term) ||
		strings.Contains(strings.ToLower(it.Author), term)
}

type pickerKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	ToggleAll key.Binding
	Filter    key.Binding
	Confirm   key.Binding
	Quit      key.Binding
}

type pickerStyles struct {
	Title      lipgloss.Style
	Cursor     lipgloss.Style
	Checked    lipgloss.Style
	Unchecked  lipgloss.Style
	Help       lipgloss.Style
	FilterHint lipgloss.Style
}

func defaultPickerStyles() pickerStyles {
	return pickerStyles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginBottom(1),
		Cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Checked:    lipgloss.NewStyle().Foreground(lipgloss.Color("76")),
		Unchecked:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1),
		FilterHint: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q/esc", "quit"),
		),
	}
}

// Model is the picker's bubbletea model.
type Model struct {
	title   string
	items   []Item
	visible []int // indexes into items matching the active filter
	cursor  int
	checked map[int]bool

	filter    textinput.Model
	filtering bool

	keyMap    pickerKeyMap
	styles    pickerStyles
	submitted bool
	cancelled bool
}

// New creates a picker over the given items.
func New(title string, items []Item) Model {
	filter := textinput.New()
	filter.Placeholder = "filtrer..."
	filter.CharLimit = 64

	m := Model{
		title:   title,
		items:   items,
		checked: make(map[int]bool),
		filter:  filter,
		keyMap:  defaultPickerKeyMap(),
		styles:  defaultPickerStyles(),
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.filtering = false
			m.filter.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keyMap.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keyMap.Toggle):
		if m.cursor < len(m.visible) {
			idx := m.visible[m.cursor]
			m.checked[idx] = !m.checked[idx]
		}
	case key.Matches(keyMsg, m.keyMap.ToggleAll):
		m.toggleAllVisible()
	case key.Matches(keyMsg, m.keyMap.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(keyMsg, m.keyMap.Confirm):
		m.submitted = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keyMap.Quit):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

// toggleAllVisible checks every visible item, or unchecks them all if every
// visible item is already checked.
func (m *Model) toggleAllVisible() {
	all := true
	for _, idx := range m.visible {
		if !m.checked[idx] {
			all = false
			break
		}
	}
	for _, idx := range m.visible {
		m.checked[idx] = !all
	}
}

// applyFilter recomputes the visible set from the filter term.
func (m *Model) applyFilter() {
	term := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i := range m.items {
		if term == "" || m.items[i].matches(term) {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.styles.FilterHint.Render("/ " + m.filter.View()))
		b.WriteString("\n\n")
	}

	for pos, idx := range m.visible {
		cursor := "  "
		if pos == m.cursor {
			cursor = m.styles.Cursor.Render("") + " "
		}

		box := "[ ]"
		style := m.styles.Unchecked
		if m.checked[idx] {
			box = "[x]"
			style = m.styles.Checked
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(box + " " + m.items[idx].label()))
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(m.styles.Unchecked.Render("  aucun résultat"))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("\n↑/↓ navigate • space toggle • a all • / filter • enter confirm • q quit"))
	return b.String()
}

// Submitted returns true if the user confirmed the selection.
func (m Model) Submitted() bool {
	return m.submitted
}

// Cancelled returns true if the user cancelled the selection.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Selected returns the checked items in their original listing order.
func (m Model) Selected() []Item {
	var idxs []int
	for idx, on := range m.checked {
		if on {
			idxs = append(idxs, idx)
		}
	}
	sort.Ints(idxs)

	selected := make([]Item, 0, len(idxs))
	for _, idx := range idxs {
		selected = append(selected, m.items[idx])
	}
	return selected
}

// Run displays the picker and returns the confirmed selection. A cancelled
// picker returns an empty selection and no error.
func Run(title string, items []Item) ([]Item, error) {
	final, err := tea.NewProgram(New(title, items)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(Model)
	if !ok || !m.Submitted() {
		return nil, nil
	}
	return m.Selected(), nil
}
