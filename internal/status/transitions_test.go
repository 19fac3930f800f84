package status

import (
	"testing"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func TestStartCompleteResetTask(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 09:05:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	// No sweep has run, so the first command materializes the day itself.
	progress, err := svc.StartTask(userID, task.ID)
	if err != nil {
		t.Fatalf("StartTask() failed: %v", err)
	}
	if progress.Status != models.StatusInProgress {
		t.Errorf("after StartTask: status = %s, want %s", progress.Status, models.StatusInProgress)
	}
	if progress.StartedAt == nil {
		t.Error("after StartTask: StartedAt is nil")
	}

	progress, err = svc.CompleteTask(userID, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}
	if progress.Status != models.StatusCompleted {
		t.Errorf("after CompleteTask: status = %s, want %s", progress.Status, models.StatusCompleted)
	}
	if progress.CompletedAt == nil {
		t.Error("after CompleteTask: CompletedAt is nil")
	}

	// Still inside the 09:00-09:30 window, so reopening is allowed.
	progress, err = svc.ResetTask(userID, task.ID)
	if err != nil {
		t.Fatalf("ResetTask() failed: %v", err)
	}
	if progress.Status != models.StatusPending {
		t.Errorf("after ResetTask: status = %s, want %s", progress.Status, models.StatusPending)
	}
}

func TestReopenOutsideWindowIsGated(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 09:05:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	if _, err := svc.CompleteTask(userID, task.ID); err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 12:00:00")
	_, err := svc.ResetTask(userID, task.ID)
	if !apperrors.Is(err, apperrors.ErrGatingViolation) {
		t.Errorf("ResetTask() outside window: error = %v, want ErrGatingViolation", err)
	}
	_, err = svc.StartTask(userID, task.ID)
	if !apperrors.Is(err, apperrors.ErrGatingViolation) {
		t.Errorf("StartTask() outside window: error = %v, want ErrGatingViolation", err)
	}

	// The stored row must be untouched by the rejected transitions.
	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusCompleted {
		t.Errorf("stored status = %s after rejected transitions, want %s", record.Status, models.StatusCompleted)
	}
}

func TestSkipTaskAllowedOutsideWindow(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 18:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	progress, err := svc.SkipTask(userID, task.ID)
	if err != nil {
		t.Fatalf("SkipTask() failed: %v", err)
	}
	if progress.Status != models.StatusSkipped {
		t.Errorf("status = %s, want %s", progress.Status, models.StatusSkipped)
	}
}

func TestReopenUntimedTaskAnytime(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 09:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "", 0)

	if _, err := svc.CompleteTask(userID, task.ID); err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 23:30:00")
	progress, err := svc.ResetTask(userID, task.ID)
	if err != nil {
		t.Fatalf("ResetTask() on an untimed task failed: %v", err)
	}
	if progress.Status != models.StatusPending {
		t.Errorf("status = %s, want %s", progress.Status, models.StatusPending)
	}
}

func TestSetTaskNotesIgnoresGating(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 09:05:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	if _, err := svc.CompleteTask(userID, task.ID); err != nil {
		t.Fatalf("CompleteTask() failed: %v", err)
	}

	// Long past the window; notes still go through.
	svc.Now = fixedClock(t, "2026-03-02 22:00:00")
	progress, err := svc.SetTaskNotes(userID, task.ID, "ran long today")
	if err != nil {
		t.Fatalf("SetTaskNotes() failed: %v", err)
	}
	if progress.Notes != "ran long today" {
		t.Errorf("Notes = %q, want the new annotation", progress.Notes)
	}
	if progress.Status != models.StatusCompleted {
		t.Errorf("status = %s, notes must not change status", progress.Status)
	}
}

func TestTransitionOnUnknownTask(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 09:05:00")
	userID, _ := seedUserRoutine(t, store, []int{1})

	_, err := svc.StartTask(userID, "no-such-task")
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("StartTask() on unknown task: error = %v, want ErrNotFound", err)
	}
}

func TestTransitionOnUnscheduledDay(t *testing.T) {
	// Routine repeats on Tuesday only; today is Monday, so there is no
	// progress row to act on even after materialization.
	svc, store := newTestService(t, "2026-03-02 09:05:00")
	userID, routineID := seedUserRoutine(t, store, []int{2})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	_, err := svc.CompleteTask(userID, task.ID)
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("CompleteTask() on unscheduled day: error = %v, want ErrNotFound", err)
	}
}
