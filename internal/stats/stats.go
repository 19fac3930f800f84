// Package stats aggregates task progress into daily and weekly metrics. It
// is a pure read layer: callers run the status sweep first so the numbers
// reflect the current time windows.
package stats

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/utils"
)

// DailyStats is the per-day breakdown for one user.
type DailyStats struct {
	DateLocal         string  `json:"date_local"`
	Completed         int     `json:"completed"`
	Missed            int     `json:"missed"`
	InProgress        int     `json:"in_progress"`
	Pending           int     `json:"pending"`
	Skipped           int     `json:"skipped"`
	Total             int     `json:"total"`
	CompletionPercent float64 `json:"completion_percent"`
}

// WeeklyStats compares the current Monday-start week against the previous one.
type WeeklyStats struct {
	WeekStart             string  `json:"week_start"`
	CurrentCompleted      int     `json:"current_completed"`
	PreviousCompleted     int     `json:"previous_completed"`
	ImprovementPercentage float64 `json:"improvement_percentage"`
}

// RoutineStats counts the user's routine inventory.
type RoutineStats struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

type Aggregator struct {
	store storage.Provider

	// Now is the clock used to resolve "today" and the current week.
	Now func() time.Time
}

func NewAggregator(store storage.Provider) *Aggregator {
	return &Aggregator{
		store: store,
		Now:   time.Now,
	}
}

// Daily computes status counts and completion percentage for one day.
func (a *Aggregator) Daily(userID, dateLocal string) (DailyStats, error) {
	records, err := a.store.GetProgressByUserAndDate(userID, dateLocal)
	if err != nil {
		return DailyStats{}, err
	}
	return tally(dateLocal, records), nil
}

// Weekly computes completed counts for the current Monday-start week and the
// week before it, with the week-over-week improvement percentage. The
// improvement is defined as 0 when the previous week had no completions.
func (a *Aggregator) Weekly(userID string) (WeeklyStats, error) {
	now := a.Now()
	currentStart := utils.WeekStart(now)
	previousStart := currentStart.AddDate(0, 0, -7)

	current, err := a.completedInRange(userID, currentStart, currentStart.AddDate(0, 0, 6))
	if err != nil {
		return WeeklyStats{}, err
	}
	previous, err := a.completedInRange(userID, previousStart, previousStart.AddDate(0, 0, 6))
	if err != nil {
		return WeeklyStats{}, err
	}

	improvement := 0.0
	if previous > 0 {
		improvement = float64(current-previous) / float64(previous) * 100
		improvement = math.Round(improvement*100) / 100
	}

	return WeeklyStats{
		WeekStart:             utils.DateLocal(currentStart),
		CurrentCompleted:      current,
		PreviousCompleted:     previous,
		ImprovementPercentage: improvement,
	}, nil
}

// Routines counts active and total routines for the user.
func (a *Aggregator) Routines(userID string) (RoutineStats, error) {
	routines, err := a.store.GetRoutinesByUser(userID)
	if err != nil {
		return RoutineStats{}, err
	}

	stats := RoutineStats{Total: len(routines)}
	for _, r := range routines {
		if r.Active {
			stats.Active++
		}
	}
	return stats, nil
}

// BuildDailySummary recomputes the cached DailySummary for a day from the
// progress rows and persists it. The summary is derived data and can be
// rebuilt at any time.
func (a *Aggregator) BuildDailySummary(userID, dateLocal string) (models.DailySummary, error) {
	daily, err := a.Daily(userID, dateLocal)
	if err != nil {
		return models.DailySummary{}, err
	}

	now := a.Now()
	summary, err := a.store.GetDailySummary(userID, dateLocal)
	if err != nil {
		summary, err = models.NewDailySummary(uuid.NewString(), userID, dateLocal,
			0, 0, 0, 0, 0, 0, now)
		if err != nil {
			return models.DailySummary{}, err
		}
	}

	if err := summary.SetCounts(daily.Completed, daily.Missed, daily.InProgress, daily.Pending, daily.Skipped, now); err != nil {
		return models.DailySummary{}, err
	}

	if err := a.store.SaveDailySummary(summary); err != nil {
		return models.DailySummary{}, err
	}
	return summary, nil
}

func (a *Aggregator) completedInRange(userID string, start, end time.Time) (int, error) {
	records, err := a.store.GetProgressByUserAndDateRange(userID, utils.DateLocal(start), utils.DateLocal(end))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range records {
		if r.Status == models.StatusCompleted {
			count++
		}
	}
	return count, nil
}

func tally(dateLocal string, records []models.TaskProgress) DailyStats {
	stats := DailyStats{DateLocal: dateLocal}
	for _, r := range records {
		switch r.Status {
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusMissed:
			stats.Missed++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusPending:
			stats.Pending++
		case models.StatusSkipped:
			stats.Skipped++
		}
	}
	stats.Total = len(records)
	if stats.Total > 0 {
		stats.CompletionPercent = math.Round(float64(stats.Completed)/float64(stats.Total)*100*100) / 100
	}
	return stats
}
