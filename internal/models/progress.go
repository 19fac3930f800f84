package models

import (
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/utils"
	"github.com/julianstephens/routinely/internal/validation"
)

// Status is the lifecycle state of a task's daily progress record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusMissed     Status = "missed"
)

// AllStatuses lists every legal status value, used for validation and scans.
var AllStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusSkipped, StatusMissed}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is an end state for the day. Terminal states can
// still be reopened by the user, subject to time-window gating.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusMissed
}

// TaskProgress is the per-day instance of a template task. One row exists per
// (TemplateTaskID, DateLocal) pair; rows are materialized lazily by the status
// service, never created by clients.
type TaskProgress struct {
	ID             string     `json:"id"`
	TemplateTaskID string     `json:"template_task_id"`
	UserID         string     `json:"user_id"`
	DateLocal      string     `json:"date_local"` // YYYY-MM-DD
	Status         Status     `json:"status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTaskProgress builds a validated progress record. Inconsistent timestamps
// (startedAt after completedAt) are repaired by clamping startedAt rather than
// rejected, since they stem from clock skew, not user error.
func NewTaskProgress(id, templateTaskID, userID, dateLocal string, status Status, now time.Time) (TaskProgress, error) {
	p := TaskProgress{
		ID:             id,
		TemplateTaskID: templateTaskID,
		UserID:         userID,
		DateLocal:      dateLocal,
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.Validate(); err != nil {
		return TaskProgress{}, err
	}
	return p, nil
}

// Validate checks identity fields and repairs timestamp inconsistencies.
func (p *TaskProgress) Validate() error {
	if p.ID == "" {
		return apperrors.Validationf("progress id cannot be empty")
	}
	if p.TemplateTaskID == "" {
		return apperrors.Validationf("template task id cannot be empty")
	}
	if p.UserID == "" {
		return apperrors.Validationf("user id cannot be empty")
	}
	if err := validation.Date(p.DateLocal); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return apperrors.Validationf("unknown status %q", p.Status)
	}
	if err := validation.Notes(p.Notes); err != nil {
		return err
	}

	if p.StartedAt != nil && p.CompletedAt != nil && p.StartedAt.After(*p.CompletedAt) {
		logger.Warn("Inconsistent progress timestamps, clamping start time",
			"templateTaskID", p.TemplateTaskID, "dateLocal", p.DateLocal)
		clamped := *p.CompletedAt
		p.StartedAt = &clamped
	}

	return nil
}

// Start moves the record to in_progress. Reopening a completed task is the
// caller's decision and must pass CanChangeToStatus first.
func (p *TaskProgress) Start(now time.Time) {
	p.Status = StatusInProgress
	p.StartedAt = &now
	p.CompletedAt = nil
	p.UpdatedAt = now
}

// Complete marks the record completed. Calling Complete on an already
// completed record is a no-op, which tolerates duplicate client retries.
func (p *TaskProgress) Complete(now time.Time) {
	if p.Status == StatusCompleted {
		return
	}

	p.Status = StatusCompleted
	p.CompletedAt = &now
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
	p.UpdatedAt = now
}

// Skip marks the record skipped and clears its timestamps.
func (p *TaskProgress) Skip(now time.Time) {
	p.Status = StatusSkipped
	p.StartedAt = nil
	p.CompletedAt = nil
	p.UpdatedAt = now
}

// Reset returns the record to pending and clears its timestamps.
func (p *TaskProgress) Reset(now time.Time) {
	p.Status = StatusPending
	p.StartedAt = nil
	p.CompletedAt = nil
	p.UpdatedAt = now
}

// UpdateNotes replaces the free-text annotation, independent of status.
func (p *TaskProgress) UpdateNotes(notes string, now time.Time) error {
	if err := validation.Notes(notes); err != nil {
		return err
	}
	p.Notes = notes
	p.UpdatedAt = now
	return nil
}

// CanChangeToStatus is the gating predicate consulted before a backward
// transition. Transitions into completed, skipped, or missed are always
// allowed. Reopening a completed record (to pending or in_progress) is allowed
// only while the current moment still falls inside the task's window for its
// own calendar day: before the scheduled start, within start+duration, or
// within constants.NoDurationEditWindow of the start when no duration is set.
// Tasks with no scheduled time carry no temporal constraint at all.
func (p *TaskProgress) CanChangeToStatus(now time.Time, taskTime string, durationMin int, target Status) bool {
	if taskTime == "" {
		return true
	}

	if target == StatusCompleted || target == StatusSkipped || target == StatusMissed {
		return true
	}

	if p.Status == StatusCompleted && (target == StatusPending || target == StatusInProgress) {
		return p.withinTimeWindow(now, taskTime, durationMin)
	}

	return true
}

func (p *TaskProgress) withinTimeWindow(now time.Time, taskTime string, durationMin int) bool {
	// Edits are only permitted on the record's own day.
	if p.DateLocal != utils.DateLocal(now) {
		return false
	}

	start, err := utils.CombineDateAndTime(p.DateLocal, taskTime)
	if err != nil {
		logger.Error("Failed to resolve task time window", "taskTime", taskTime, "error", err)
		return false
	}

	// Editing ahead of time is always fine.
	if now.Before(start) {
		return true
	}

	if durationMin > 0 {
		return !now.After(start.Add(time.Duration(durationMin) * time.Minute))
	}

	return !now.After(start.Add(constants.NoDurationEditWindow))
}
