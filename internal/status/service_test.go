package status

import (
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

// newTestService builds a service over a fresh SQLite store with the clock
// pinned to the given local wall time.
func newTestService(t *testing.T, now string) (*Service, *sqlite.Store) {
	t.Helper()

	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := NewService(store)
	svc.Now = fixedClock(t, now)
	return svc, store
}

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local)
	if err != nil {
		t.Fatalf("failed to parse test time %q: %v", value, err)
	}
	return func() time.Time { return parsed }
}

// seedUserRoutine inserts a user and an active routine repeating on the given
// weekdays, returning their ids.
func seedUserRoutine(t *testing.T, store *sqlite.Store, repeatDays []int) (string, string) {
	t.Helper()

	now := time.Now()
	user := models.User{ID: "u1", Name: "Test User", Active: true, CreatedAt: now}
	if err := store.AddUser(user); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}

	routine, err := models.NewRoutine("r1", user.ID, "Morning routine", "", repeatDays, now)
	if err != nil {
		t.Fatalf("failed to build routine: %v", err)
	}
	if err := store.AddRoutine(routine); err != nil {
		t.Fatalf("failed to add routine: %v", err)
	}
	return user.ID, routine.ID
}

func seedTask(t *testing.T, store *sqlite.Store, routineID, id, timeOfDay string, durationMin int) models.TemplateTask {
	t.Helper()

	task, err := models.NewTemplateTask(id, routineID, "Task "+id, time.Now())
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}
	if timeOfDay != "" {
		if err := task.UpdateTime(timeOfDay); err != nil {
			t.Fatalf("failed to set task time: %v", err)
		}
	}
	if durationMin > 0 {
		if err := task.UpdateDuration(durationMin); err != nil {
			t.Fatalf("failed to set task duration: %v", err)
		}
	}
	if err := store.AddTemplateTask(task); err != nil {
		t.Fatalf("failed to add task: %v", err)
	}
	return task
}

// 2026-03-02 is a Monday.

func TestUpdateDailyTaskStatuses_MaterializesPendingRows(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	seedTask(t, store, routineID, "t1", "09:00:00", 30)
	seedTask(t, store, routineID, "t2", "", 0)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("UpdateDailyTaskStatuses() failed: %v", err)
	}

	records, err := store.GetProgressByUserAndDate(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByUserAndDate() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d progress rows, want 2", len(records))
	}
	for _, r := range records {
		if r.Status != models.StatusPending {
			t.Errorf("row for task %s has status %s, want %s", r.TemplateTaskID, r.Status, models.StatusPending)
		}
	}
}

func TestUpdateDailyTaskStatuses_Idempotent(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	seedTask(t, store, routineID, "t1", "09:00:00", 30)

	for i := 0; i < 3; i++ {
		if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
			t.Fatalf("sweep %d failed: %v", i, err)
		}
	}

	records, err := store.GetProgressByUserAndDate(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByUserAndDate() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d progress rows after repeated sweeps, want 1", len(records))
	}
}

func TestUpdateDailyTaskStatuses_SkipsNonRepeatingRoutines(t *testing.T) {
	// Routine repeats on Tuesday only; today is Monday.
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{2})
	seedTask(t, store, routineID, "t1", "09:00:00", 30)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("UpdateDailyTaskStatuses() failed: %v", err)
	}

	records, err := store.GetProgressByUserAndDate(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByUserAndDate() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d progress rows for a non-repeating day, want 0", len(records))
	}
}

func TestUpdateDailyTaskStatuses_SkipsInactiveRoutines(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	seedTask(t, store, routineID, "t1", "09:00:00", 30)

	routine, err := store.GetRoutine(routineID)
	if err != nil {
		t.Fatalf("GetRoutine() failed: %v", err)
	}
	routine.Deactivate()
	if err := store.UpdateRoutine(routine); err != nil {
		t.Fatalf("UpdateRoutine() failed: %v", err)
	}

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("UpdateDailyTaskStatuses() failed: %v", err)
	}

	records, err := store.GetProgressByUserAndDate(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByUserAndDate() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d progress rows for an inactive routine, want 0", len(records))
	}
}

func TestUpdateDailyTaskStatuses_AllUsers(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	now := time.Now()

	for _, u := range []models.User{
		{ID: "u1", Name: "Active One", Active: true, CreatedAt: now},
		{ID: "u2", Name: "Active Two", Active: true, CreatedAt: now},
		{ID: "u3", Name: "Dormant", Active: false, CreatedAt: now},
	} {
		if err := store.AddUser(u); err != nil {
			t.Fatalf("failed to add user %s: %v", u.ID, err)
		}
	}

	for _, uid := range []string{"u1", "u2", "u3"} {
		rid := "r" + uid
		routine, err := models.NewRoutine(rid, uid, "Routine "+uid, "", []int{1}, now)
		if err != nil {
			t.Fatalf("failed to build routine: %v", err)
		}
		if err := store.AddRoutine(routine); err != nil {
			t.Fatalf("failed to add routine: %v", err)
		}
		seedTask(t, store, rid, "t"+uid, "09:00:00", 30)
	}

	if err := svc.UpdateDailyTaskStatuses(""); err != nil {
		t.Fatalf("UpdateDailyTaskStatuses(\"\") failed: %v", err)
	}

	for uid, want := range map[string]int{"u1": 1, "u2": 1, "u3": 0} {
		records, err := store.GetProgressByUserAndDate(uid, "2026-03-02")
		if err != nil {
			t.Fatalf("GetProgressByUserAndDate(%s) failed: %v", uid, err)
		}
		if len(records) != want {
			t.Errorf("user %s has %d progress rows, want %d", uid, len(records), want)
		}
	}
}

func TestResetDailyTasksForUser_Validation(t *testing.T) {
	svc, _ := newTestService(t, "2026-03-02 08:00:00")

	if err := svc.ResetDailyTasksForUser("", "2026-03-02"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty user id: error = %v, want ErrValidation", err)
	}
	if err := svc.ResetDailyTasksForUser("u1", "not-a-date"); !apperrors.Is(err, apperrors.ErrValidation) {
		t.Errorf("bad date: error = %v, want ErrValidation", err)
	}
}

func TestUpdateExpiredTasks_WindowTransitions(t *testing.T) {
	// Task scheduled 09:00 with a 30 minute window.
	tests := []struct {
		name string
		now  string
		want models.Status
	}{
		{"before the window stays pending", "2026-03-02 08:59:00", models.StatusPending},
		{"inside the window becomes in progress", "2026-03-02 09:15:00", models.StatusInProgress},
		{"past the window becomes missed", "2026-03-02 09:31:00", models.StatusMissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, "2026-03-02 08:00:00")
			userID, routineID := seedUserRoutine(t, store, []int{1})
			task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

			if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
				t.Fatalf("materialization failed: %v", err)
			}

			svc.Now = fixedClock(t, tt.now)
			if err := svc.UpdateExpiredTasks(userID); err != nil {
				t.Fatalf("UpdateExpiredTasks() failed: %v", err)
			}

			record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
			if err != nil {
				t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
			}
			if record.Status != tt.want {
				t.Errorf("status = %s, want %s", record.Status, tt.want)
			}
		})
	}
}

func TestUpdateExpiredTasks_MissedIsSticky(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("materialization failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 10:00:00")
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("first expiry sweep failed: %v", err)
	}

	// A later same-day materialization must not resurrect the missed row.
	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("second materialization failed: %v", err)
	}
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("second expiry sweep failed: %v", err)
	}

	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusMissed {
		t.Errorf("status = %s, want %s to stay sticky", record.Status, models.StatusMissed)
	}
}

func TestUpdateExpiredTasks_NoDurationFallbackWindow(t *testing.T) {
	// Timed task with no duration gets a two hour grace window.
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 0)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("materialization failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 10:30:00")
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("UpdateExpiredTasks() failed: %v", err)
	}
	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusInProgress {
		t.Errorf("status inside grace window = %s, want %s", record.Status, models.StatusInProgress)
	}

	svc.Now = fixedClock(t, "2026-03-02 11:01:00")
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("UpdateExpiredTasks() failed: %v", err)
	}
	record, err = store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusMissed {
		t.Errorf("status past grace window = %s, want %s", record.Status, models.StatusMissed)
	}
}

func TestUpdateExpiredTasks_UntimedOnlyExpiresAfterEndOfDay(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "", 0)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("materialization failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 23:00:00")
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("UpdateExpiredTasks() failed: %v", err)
	}
	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusPending {
		t.Errorf("status before end of day = %s, want %s", record.Status, models.StatusPending)
	}
}

func TestUpdateExpiredTasks_InheritsRoutineDefaultTime(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")

	now := time.Now()
	user := models.User{ID: "u1", Name: "Test User", Active: true, CreatedAt: now}
	if err := store.AddUser(user); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	routine, err := models.NewRoutine("r1", user.ID, "Evening routine", "20:00:00", []int{1}, now)
	if err != nil {
		t.Fatalf("failed to build routine: %v", err)
	}
	if err := store.AddRoutine(routine); err != nil {
		t.Fatalf("failed to add routine: %v", err)
	}
	task := seedTask(t, store, routine.ID, "t1", "", 30)

	if err := svc.UpdateDailyTaskStatuses(user.ID); err != nil {
		t.Fatalf("materialization failed: %v", err)
	}

	// 21:00 is past 20:00 + 30min, so the inherited time drives expiry.
	svc.Now = fixedClock(t, "2026-03-02 21:00:00")
	if err := svc.UpdateExpiredTasks(user.ID); err != nil {
		t.Fatalf("UpdateExpiredTasks() failed: %v", err)
	}

	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusMissed {
		t.Errorf("status = %s, want %s via the routine default time", record.Status, models.StatusMissed)
	}
}

func TestUpdateExpiredTasks_LeavesTerminalStatesAlone(t *testing.T) {
	svc, store := newTestService(t, "2026-03-02 08:00:00")
	userID, routineID := seedUserRoutine(t, store, []int{1})
	task := seedTask(t, store, routineID, "t1", "09:00:00", 30)

	if err := svc.UpdateDailyTaskStatuses(userID); err != nil {
		t.Fatalf("materialization failed: %v", err)
	}

	record, err := store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	record.Complete(svc.Now())
	if err := store.UpdateProgress(record); err != nil {
		t.Fatalf("UpdateProgress() failed: %v", err)
	}

	svc.Now = fixedClock(t, "2026-03-02 12:00:00")
	if err := svc.UpdateExpiredTasks(userID); err != nil {
		t.Fatalf("UpdateExpiredTasks() failed: %v", err)
	}

	record, err = store.GetProgressByTaskAndDate(task.ID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	if record.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed rows untouched by expiry", record.Status)
	}
}
