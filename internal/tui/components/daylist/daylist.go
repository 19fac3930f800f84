package daylist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/models"
)

type StartTaskMsg struct {
	TaskID string
}

type CompleteTaskMsg struct {
	TaskID string
}

type SkipTaskMsg struct {
	TaskID string
	Title  string
}

type ResetTaskMsg struct {
	TaskID string
}

type RefreshMsg struct{}

// Entry is one task of the day joined with its progress record.
type Entry struct {
	TaskID    string
	Title     string
	TimeLabel string
	Duration  int
	Status    models.Status
	Notes     string
}

type Item struct {
	Entry Entry
}

func (i Item) Title() string {
	switch i.Entry.Status {
	case models.StatusCompleted:
		return "✓ " + i.Entry.Title
	case models.StatusInProgress:
		return "▶ " + i.Entry.Title
	case models.StatusSkipped:
		return "~ " + i.Entry.Title
	case models.StatusMissed:
		return "✗ " + i.Entry.Title
	default:
		return "○ " + i.Entry.Title
	}
}

func (i Item) Description() string {
	desc := string(i.Entry.Status)
	if i.Entry.TimeLabel != "" {
		desc += " at " + i.Entry.TimeLabel
		if i.Entry.Duration > 0 {
			desc += fmt.Sprintf(" (%dm)", i.Entry.Duration)
		}
	}
	if i.Entry.Notes != "" {
		desc += " — " + i.Entry.Notes
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Title }

type KeyMap struct {
	Start    key.Binding
	Complete key.Binding
	Skip     key.Binding
	Reset    key.Binding
	Refresh  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Skip: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "skip"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(entries []Entry, width, height int) Model {
	l := list.New(toItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Start, keys.Complete, keys.Skip, keys.Reset, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Start, keys.Complete, keys.Skip, keys.Reset, keys.Refresh}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func (m *Model) SetEntries(entries []Entry) {
	m.list.SetItems(toItems(entries))
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Start):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return StartTaskMsg{TaskID: i.Entry.TaskID} }
			}
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return CompleteTaskMsg{TaskID: i.Entry.TaskID} }
			}
		case key.Matches(msg, m.keys.Skip):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return SkipTaskMsg{TaskID: i.Entry.TaskID, Title: i.Entry.Title} }
			}
		case key.Matches(msg, m.keys.Reset):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ResetTaskMsg{TaskID: i.Entry.TaskID} }
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func toItems(entries []Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return items
}
