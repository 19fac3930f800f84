package models

import (
	"math"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/validation"
)

// progressTolerance is the rounding slack allowed between a stored
// ProgressPercent and the value recomputed from the counts.
const progressTolerance = 0.01

// DailySummary is a cached per-user per-day aggregate of progress records. It
// is derived data: always recomputable from TaskProgress rows, never a source
// of truth.
type DailySummary struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DateLocal       string    `json:"date_local"`
	TotalCompleted  int       `json:"total_completed"`
	TotalMissed     int       `json:"total_missed"`
	TotalInProgress int       `json:"total_in_progress"`
	TotalPending    int       `json:"total_pending"`
	TotalSkipped    int       `json:"total_skipped"`
	ProgressPercent float64   `json:"progress_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewDailySummary builds a validated summary, checking count/percent consistency.
func NewDailySummary(id, userID, dateLocal string, completed, missed, inProgress, pending, skipped int, progressPercent float64, now time.Time) (DailySummary, error) {
	s := DailySummary{
		ID:              id,
		UserID:          userID,
		DateLocal:       dateLocal,
		TotalCompleted:  completed,
		TotalMissed:     missed,
		TotalInProgress: inProgress,
		TotalPending:    pending,
		TotalSkipped:    skipped,
		ProgressPercent: progressPercent,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Validate(); err != nil {
		return DailySummary{}, err
	}
	return s, nil
}

// Validate checks identity fields, count ranges, and that the stored percent
// matches the counts within rounding tolerance.
func (s *DailySummary) Validate() error {
	if s.ID == "" {
		return apperrors.Validationf("summary id cannot be empty")
	}
	if s.UserID == "" {
		return apperrors.Validationf("user id cannot be empty")
	}
	if err := validation.Date(s.DateLocal); err != nil {
		return err
	}
	if s.TotalCompleted < 0 || s.TotalMissed < 0 || s.TotalInProgress < 0 || s.TotalPending < 0 || s.TotalSkipped < 0 {
		return apperrors.Validationf("task counts cannot be negative")
	}
	if s.ProgressPercent < 0 || s.ProgressPercent > 100 {
		return apperrors.Validationf("progress percent must be between 0 and 100")
	}

	total := s.TotalTasks()
	if total == 0 {
		if s.ProgressPercent != 0 {
			return apperrors.Validationf("progress percent must be 0 when there are no tasks")
		}
		return nil
	}

	expected := float64(s.TotalCompleted) / float64(total) * 100
	if math.Abs(s.ProgressPercent-expected) > progressTolerance {
		return apperrors.Validationf("progress percent %.2f does not match completed/total (%.2f)", s.ProgressPercent, expected)
	}
	return nil
}

// TotalTasks returns the number of progress records the summary covers.
func (s *DailySummary) TotalTasks() int {
	return s.TotalCompleted + s.TotalMissed + s.TotalInProgress + s.TotalPending + s.TotalSkipped
}

// SetCounts replaces all counts and recomputes the percentage.
func (s *DailySummary) SetCounts(completed, missed, inProgress, pending, skipped int, now time.Time) error {
	if completed < 0 || missed < 0 || inProgress < 0 || pending < 0 || skipped < 0 {
		return apperrors.Validationf("task counts cannot be negative")
	}
	s.TotalCompleted = completed
	s.TotalMissed = missed
	s.TotalInProgress = inProgress
	s.TotalPending = pending
	s.TotalSkipped = skipped
	s.recalculate()
	s.UpdatedAt = now
	return nil
}

// CompletionRate returns completed/total as a fraction, 0 when empty.
func (s *DailySummary) CompletionRate() float64 {
	total := s.TotalTasks()
	if total == 0 {
		return 0
	}
	return float64(s.TotalCompleted) / float64(total)
}

// FullyCompleted reports whether every task of the day is completed.
func (s *DailySummary) FullyCompleted() bool {
	total := s.TotalTasks()
	return total > 0 && s.TotalCompleted == total
}

// HasActiveTasks reports whether any task is still pending or in progress.
func (s *DailySummary) HasActiveTasks() bool {
	return s.TotalInProgress > 0 || s.TotalPending > 0
}

func (s *DailySummary) recalculate() {
	total := s.TotalTasks()
	if total == 0 {
		s.ProgressPercent = 0
		return
	}
	// Round to two decimal places to keep stored values stable across backends.
	s.ProgressPercent = math.Round(float64(s.TotalCompleted)/float64(total)*100*100) / 100
}
