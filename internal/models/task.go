package models

import (
	"strings"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/validation"
)

// Priority ranks a template task within its routine.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TemplateTask is the immutable-per-day definition of a task belonging to a
// routine. Daily progress records reference it; they are instantiated from it
// each day the routine recurs.
type TemplateTask struct {
	ID          string    `json:"id"`
	RoutineID   string    `json:"routine_id"`
	Title       string    `json:"title"`
	Time        string    `json:"time,omitempty"` // HH:MM:SS; empty inherits the routine default
	DurationMin int       `json:"duration_min,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	Priority    Priority  `json:"priority"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTemplateTask builds a validated template task.
func NewTemplateTask(id, routineID, title string, now time.Time) (TemplateTask, error) {
	t := TemplateTask{
		ID:        id,
		RoutineID: routineID,
		Title:     strings.TrimSpace(title),
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return TemplateTask{}, err
	}
	return t, nil
}

// Validate checks all template-task invariants.
func (t *TemplateTask) Validate() error {
	if t.ID == "" {
		return apperrors.Validationf("template task id cannot be empty")
	}
	if t.RoutineID == "" {
		return apperrors.Validationf("routine id cannot be empty")
	}
	if err := validation.Title(t.Title); err != nil {
		return err
	}
	if err := validation.TimeOfDay(t.Time); err != nil {
		return err
	}
	if err := validation.Duration(t.DurationMin); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return apperrors.Validationf("unknown priority %q", t.Priority)
	}
	if err := validation.Description(t.Description); err != nil {
		return err
	}
	return validation.SortOrder(t.SortOrder)
}

// EffectiveTime resolves the task's scheduled time-of-day, falling back to the
// owning routine's default when the task has none. Empty means the task is
// untimed and only expires at end of day.
func (t *TemplateTask) EffectiveTime(routineDefault string) string {
	if t.Time != "" {
		return t.Time
	}
	return routineDefault
}

// UpdateTitle replaces the task title after validation.
func (t *TemplateTask) UpdateTitle(title string) error {
	if err := validation.Title(title); err != nil {
		return err
	}
	t.Title = strings.TrimSpace(title)
	return nil
}

// UpdateTime replaces the time-of-day. Empty clears it back to inheriting the
// routine default.
func (t *TemplateTask) UpdateTime(timeStr string) error {
	if err := validation.TimeOfDay(timeStr); err != nil {
		return err
	}
	t.Time = timeStr
	return nil
}

// UpdateDuration replaces the duration in minutes. Zero clears it.
func (t *TemplateTask) UpdateDuration(minutes int) error {
	if err := validation.Duration(minutes); err != nil {
		return err
	}
	t.DurationMin = minutes
	return nil
}

// UpdateDescription replaces the free-text description.
func (t *TemplateTask) UpdateDescription(desc string) error {
	if err := validation.Description(desc); err != nil {
		return err
	}
	t.Description = desc
	return nil
}

// UpdateSortOrder replaces the ordering index within the routine.
func (t *TemplateTask) UpdateSortOrder(order int) error {
	if err := validation.SortOrder(order); err != nil {
		return err
	}
	t.SortOrder = order
	return nil
}
