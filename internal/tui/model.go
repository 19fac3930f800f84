// Package tui is the interactive day view: today's tasks with their
// statuses, driven by the same status service as the CLI commands.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/status"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/tui/components/daylist"
	"github.com/julianstephens/routinely/internal/utils"
)

type sessionState int

const (
	stateDay sessionState = iota
	stateConfirmSkip
)

type Model struct {
	store  storage.Provider
	status *status.Service
	stats  *stats.Aggregator
	user   models.User

	state    sessionState
	keys     KeyMap
	help     help.Model
	dayList  daylist.Model
	daily    stats.DailyStats
	form     *huh.Form
	confirm  bool
	skipTask string

	statusLine string
	quitting   bool
	width      int
	height     int
}

func NewModel(store storage.Provider, svc *status.Service, agg *stats.Aggregator, user models.User) Model {
	m := Model{
		store:  store,
		status: svc,
		stats:  agg,
		user:   user,
		state:  stateDay,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}

	entries, daily, err := m.loadDay()
	if err != nil {
		m.statusLine = fmt.Sprintf("load failed: %v", err)
	}
	m.dayList = daylist.New(entries, 0, 0)
	m.daily = daily
	return m
}

// Run starts the program. It sweeps once up front so the first paint shows
// current statuses.
func Run(store storage.Provider, svc *status.Service, agg *stats.Aggregator, user models.User) error {
	if err := svc.UpdateDailyTaskStatuses(user.ID); err != nil {
		return err
	}
	if err := svc.UpdateExpiredTasks(user.ID); err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(store, svc, agg, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Quit, m.keys.Help},
	}
}

// loadDay joins today's progress rows with template data for rendering.
func (m *Model) loadDay() ([]daylist.Entry, stats.DailyStats, error) {
	today := utils.DateLocal(time.Now())

	records, err := m.store.GetProgressByUserAndDate(m.user.ID, today)
	if err != nil {
		return nil, stats.DailyStats{}, err
	}

	routineCache := make(map[string]models.Routine)
	entries := make([]daylist.Entry, 0, len(records))
	for _, record := range records {
		task, err := m.store.GetTemplateTask(record.TemplateTaskID)
		if err != nil {
			continue
		}

		routine, ok := routineCache[task.RoutineID]
		if !ok {
			routine, err = m.store.GetRoutine(task.RoutineID)
			if err != nil {
				return nil, stats.DailyStats{}, err
			}
			routineCache[task.RoutineID] = routine
		}

		timeLabel := task.EffectiveTime(routine.DefaultTime)
		if len(timeLabel) == 8 {
			timeLabel = timeLabel[:5]
		}
		entries = append(entries, daylist.Entry{
			TaskID:    task.ID,
			Title:     task.Title,
			TimeLabel: timeLabel,
			Duration:  task.DurationMin,
			Status:    record.Status,
			Notes:     record.Notes,
		})
	}

	daily, err := m.stats.Daily(m.user.ID, today)
	if err != nil {
		return nil, stats.DailyStats{}, err
	}
	return entries, daily, nil
}

func (m *Model) refresh() {
	entries, daily, err := m.loadDay()
	if err != nil {
		m.statusLine = fmt.Sprintf("refresh failed: %v", err)
		return
	}
	m.dayList.SetEntries(entries)
	m.daily = daily
}
