package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/tui/components/daylist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dayList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if m.state == stateDay {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			}
		}

	case daylist.StartTaskMsg:
		m.applyTransition("started", func() error {
			_, err := m.status.StartTask(m.user.ID, msg.TaskID)
			return err
		})
		return m, nil

	case daylist.CompleteTaskMsg:
		m.applyTransition("completed", func() error {
			_, err := m.status.CompleteTask(m.user.ID, msg.TaskID)
			return err
		})
		return m, nil

	case daylist.SkipTaskMsg:
		m.skipTask = msg.TaskID
		m.confirm = false
		m.form = newSkipConfirm(msg.Title, &m.confirm)
		m.state = stateConfirmSkip
		return m, m.form.Init()

	case daylist.ResetTaskMsg:
		m.applyTransition("reset", func() error {
			_, err := m.status.ResetTask(m.user.ID, msg.TaskID)
			return err
		})
		return m, nil

	case daylist.RefreshMsg:
		if err := m.status.UpdateDailyTaskStatuses(m.user.ID); err != nil {
			m.statusLine = fmt.Sprintf("sweep failed: %v", err)
			return m, nil
		}
		if err := m.status.UpdateExpiredTasks(m.user.ID); err != nil {
			m.statusLine = fmt.Sprintf("sweep failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.statusLine = "refreshed"
		return m, nil
	}

	if m.state == stateConfirmSkip {
		return m.updateConfirmSkip(msg)
	}

	var cmd tea.Cmd
	m.dayList, cmd = m.dayList.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmSkip(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = stateDay
		m.skipTask = ""
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.confirm && m.skipTask != "" {
			m.applyTransition("skipped", func() error {
				_, err := m.status.SkipTask(m.user.ID, m.skipTask)
				return err
			})
		}
		m.skipTask = ""
		m.state = stateDay
	case huh.StateAborted:
		m.skipTask = ""
		m.state = stateDay
	}
	return m, cmd
}

func (m *Model) applyTransition(verb string, op func() error) {
	if err := op(); err != nil {
		m.statusLine = fmt.Sprintf("error: %v", err)
		return
	}
	m.refresh()
	m.statusLine = verb
}

func newSkipConfirm(title string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Skip %q for today?", title)).
				Value(value),
		),
	)
}
