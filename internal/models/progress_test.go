package models

import (
	"testing"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
)

func mustLocalTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("failed to parse test time %q: %v", value, err)
	}
	return parsed
}

func TestNewTaskProgress_Validation(t *testing.T) {
	now := mustLocalTime(t, "2026-03-02 08:00:00")

	tests := []struct {
		name      string
		id        string
		taskID    string
		userID    string
		dateLocal string
		status    Status
		wantErr   bool
	}{
		{
			name:      "valid pending record",
			id:        "p1",
			taskID:    "t1",
			userID:    "u1",
			dateLocal: "2026-03-02",
			status:    StatusPending,
			wantErr:   false,
		},
		{
			name:      "empty id",
			id:        "",
			taskID:    "t1",
			userID:    "u1",
			dateLocal: "2026-03-02",
			status:    StatusPending,
			wantErr:   true,
		},
		{
			name:      "empty template task id",
			id:        "p1",
			taskID:    "",
			userID:    "u1",
			dateLocal: "2026-03-02",
			status:    StatusPending,
			wantErr:   true,
		},
		{
			name:      "bad date",
			id:        "p1",
			taskID:    "t1",
			userID:    "u1",
			dateLocal: "03/02/2026",
			status:    StatusPending,
			wantErr:   true,
		},
		{
			name:      "unknown status",
			id:        "p1",
			taskID:    "t1",
			userID:    "u1",
			dateLocal: "2026-03-02",
			status:    Status("paused"),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTaskProgress(tt.id, tt.taskID, tt.userID, tt.dateLocal, tt.status, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTaskProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrValidation) {
				t.Errorf("NewTaskProgress() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTaskProgress_ValidateClampsTimestamps(t *testing.T) {
	now := mustLocalTime(t, "2026-03-02 10:00:00")
	started := mustLocalTime(t, "2026-03-02 11:00:00")
	completed := mustLocalTime(t, "2026-03-02 09:00:00")

	p := TaskProgress{
		ID:             "p1",
		TemplateTaskID: "t1",
		UserID:         "u1",
		DateLocal:      "2026-03-02",
		Status:         StatusCompleted,
		StartedAt:      &started,
		CompletedAt:    &completed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !p.StartedAt.Equal(*p.CompletedAt) {
		t.Errorf("StartedAt = %v, want clamped to CompletedAt %v", p.StartedAt, p.CompletedAt)
	}
}

func TestTaskProgress_Transitions(t *testing.T) {
	now := mustLocalTime(t, "2026-03-02 09:05:00")
	later := now.Add(30 * time.Minute)

	p, err := NewTaskProgress("p1", "t1", "u1", "2026-03-02", StatusPending, now)
	if err != nil {
		t.Fatalf("NewTaskProgress() failed: %v", err)
	}

	p.Start(now)
	if p.Status != StatusInProgress {
		t.Errorf("after Start: status = %s, want %s", p.Status, StatusInProgress)
	}
	if p.StartedAt == nil || !p.StartedAt.Equal(now) {
		t.Errorf("after Start: StartedAt = %v, want %v", p.StartedAt, now)
	}

	p.Complete(later)
	if p.Status != StatusCompleted {
		t.Errorf("after Complete: status = %s, want %s", p.Status, StatusCompleted)
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(later) {
		t.Errorf("after Complete: CompletedAt = %v, want %v", p.CompletedAt, later)
	}

	// Completing again must not move the completion timestamp.
	p.Complete(later.Add(time.Hour))
	if !p.CompletedAt.Equal(later) {
		t.Errorf("second Complete moved CompletedAt to %v, want %v", p.CompletedAt, later)
	}

	p.Reset(later)
	if p.Status != StatusPending {
		t.Errorf("after Reset: status = %s, want %s", p.Status, StatusPending)
	}
	if p.StartedAt != nil || p.CompletedAt != nil {
		t.Error("after Reset: timestamps should be cleared")
	}

	p.Skip(later)
	if p.Status != StatusSkipped {
		t.Errorf("after Skip: status = %s, want %s", p.Status, StatusSkipped)
	}
}

func TestTaskProgress_CompleteWithoutStartBackfillsStartedAt(t *testing.T) {
	now := mustLocalTime(t, "2026-03-02 12:00:00")

	p, err := NewTaskProgress("p1", "t1", "u1", "2026-03-02", StatusPending, now)
	if err != nil {
		t.Fatalf("NewTaskProgress() failed: %v", err)
	}

	p.Complete(now)
	if p.StartedAt == nil || !p.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want backfilled to %v", p.StartedAt, now)
	}
}

func TestTaskProgress_StartClearsCompletedAt(t *testing.T) {
	now := mustLocalTime(t, "2026-03-02 09:10:00")

	p, err := NewTaskProgress("p1", "t1", "u1", "2026-03-02", StatusPending, now)
	if err != nil {
		t.Fatalf("NewTaskProgress() failed: %v", err)
	}

	p.Complete(now)
	p.Start(now.Add(time.Minute))
	if p.CompletedAt != nil {
		t.Errorf("CompletedAt = %v after reopening, want nil", p.CompletedAt)
	}
}

func TestTaskProgress_CanChangeToStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		dateLocal   string
		taskTime    string
		durationMin int
		now         string
		target      Status
		want        bool
	}{
		{
			name:      "untimed tasks are never gated",
			status:    StatusCompleted,
			dateLocal: "2026-03-02",
			taskTime:  "",
			now:       "2026-03-02 23:00:00",
			target:    StatusPending,
			want:      true,
		},
		{
			name:        "forward transition always allowed",
			status:      StatusInProgress,
			dateLocal:   "2026-03-02",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 18:00:00",
			target:      StatusCompleted,
			want:        true,
		},
		{
			name:        "skip allowed outside window",
			status:      StatusPending,
			dateLocal:   "2026-03-02",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 18:00:00",
			target:      StatusSkipped,
			want:        true,
		},
		{
			name:        "reopen inside window",
			status:      StatusCompleted,
			dateLocal:   "2026-03-02",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 09:20:00",
			target:      StatusInProgress,
			want:        true,
		},
		{
			name:        "reopen before scheduled start",
			status:      StatusCompleted,
			dateLocal:   "2026-03-02",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 08:00:00",
			target:      StatusPending,
			want:        true,
		},
		{
			name:        "reopen after window end denied",
			status:      StatusCompleted,
			dateLocal:   "2026-03-02",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 12:00:00",
			target:      StatusPending,
			want:        false,
		},
		{
			name:      "no duration uses the two hour fallback",
			status:    StatusCompleted,
			dateLocal: "2026-03-02",
			taskTime:  "09:00:00",
			now:       "2026-03-02 10:30:00",
			target:    StatusInProgress,
			want:      true,
		},
		{
			name:      "no duration fallback expires",
			status:    StatusCompleted,
			dateLocal: "2026-03-02",
			taskTime:  "09:00:00",
			now:       "2026-03-02 11:30:00",
			target:    StatusInProgress,
			want:      false,
		},
		{
			name:        "reopen on a later day denied even inside time window",
			status:      StatusCompleted,
			dateLocal:   "2026-03-01",
			taskTime:    "09:00:00",
			durationMin: 30,
			now:         "2026-03-02 09:10:00",
			target:      StatusPending,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := TaskProgress{
				ID:             "p1",
				TemplateTaskID: "t1",
				UserID:         "u1",
				DateLocal:      tt.dateLocal,
				Status:         tt.status,
			}
			now := mustLocalTime(t, tt.now)
			got := p.CanChangeToStatus(now, tt.taskTime, tt.durationMin, tt.target)
			if got != tt.want {
				t.Errorf("CanChangeToStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range AllStatuses {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false, want true", s)
		}
	}
	if Status("done").Valid() {
		t.Error(`Status("done").Valid() = true, want false`)
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:    false,
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusSkipped:    true,
		StatusMissed:     true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("Status(%q).Terminal() = %v, want %v", s, got, want)
		}
	}
}
