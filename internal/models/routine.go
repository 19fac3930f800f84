package models

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/validation"
)

// Routine is a recurring block of template tasks owned by a user. Deleting a
// routine cascades to its template tasks and their progress records.
type Routine struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	DefaultTime string    `json:"default_time,omitempty"` // HH:MM:SS, inherited by tasks without their own time
	RepeatDays  []int     `json:"repeat_days"`            // 1=Monday..7=Sunday
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRoutine builds a validated routine with normalized repeat days.
func NewRoutine(id, userID, title, defaultTime string, repeatDays []int, now time.Time) (Routine, error) {
	r := Routine{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		DefaultTime: defaultTime,
		RepeatDays:  normalizeDays(repeatDays),
		Active:      true,
		CreatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	return r, nil
}

// Validate checks all routine invariants.
func (r *Routine) Validate() error {
	if r.ID == "" {
		return apperrors.Validationf("routine id cannot be empty")
	}
	if r.UserID == "" {
		return apperrors.Validationf("user id cannot be empty")
	}
	if err := validation.Title(r.Title); err != nil {
		return err
	}
	if err := validation.TimeOfDay(r.DefaultTime); err != nil {
		return err
	}
	return validation.RepeatDays(r.RepeatDays)
}

// RepeatsOn reports whether the routine recurs on the given ISO weekday
// (1=Monday..7=Sunday).
func (r *Routine) RepeatsOn(weekday int) bool {
	for _, day := range r.RepeatDays {
		if day == weekday {
			return true
		}
	}
	return false
}

// UpdateTitle replaces the routine title after validation.
func (r *Routine) UpdateTitle(title string) error {
	if err := validation.Title(title); err != nil {
		return err
	}
	r.Title = strings.TrimSpace(title)
	return nil
}

// UpdateDefaultTime replaces the routine's default time-of-day. Empty clears it.
func (r *Routine) UpdateDefaultTime(timeStr string) error {
	if err := validation.TimeOfDay(timeStr); err != nil {
		return err
	}
	r.DefaultTime = timeStr
	return nil
}

// UpdateRepeatDays replaces the weekday set after validation.
func (r *Routine) UpdateRepeatDays(days []int) error {
	normalized := normalizeDays(days)
	if err := validation.RepeatDays(normalized); err != nil {
		return err
	}
	r.RepeatDays = normalized
	return nil
}

// Activate marks the routine active.
func (r *Routine) Activate() {
	r.Active = true
}

// Deactivate marks the routine inactive; its tasks stop materializing.
func (r *Routine) Deactivate() {
	r.Active = false
}

func normalizeDays(days []int) []int {
	out := make([]int, len(days))
	copy(out, days)
	sort.Ints(out)
	return out
}
