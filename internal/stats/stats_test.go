package stats

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

func newTestAggregator(t *testing.T, now string) (*Aggregator, *sqlite.Store) {
	t.Helper()

	store := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	agg := NewAggregator(store)
	fixed, err := time.ParseInLocation("2006-01-02 15:04:05", now, time.Local)
	if err != nil {
		t.Fatalf("failed to parse test time %q: %v", now, err)
	}
	agg.Now = func() time.Time { return fixed }
	return agg, store
}

// seedFixture inserts a user, a daily routine, and numTasks template tasks,
// returning the user id and the task ids.
func seedFixture(t *testing.T, store *sqlite.Store, numTasks int) (string, []string) {
	t.Helper()

	now := time.Now()
	user := models.User{ID: "u1", Name: "Test User", Active: true, CreatedAt: now}
	if err := store.AddUser(user); err != nil {
		t.Fatalf("failed to add user: %v", err)
	}
	routine, err := models.NewRoutine("r1", user.ID, "Daily routine", "", []int{1, 2, 3, 4, 5, 6, 7}, now)
	if err != nil {
		t.Fatalf("failed to build routine: %v", err)
	}
	if err := store.AddRoutine(routine); err != nil {
		t.Fatalf("failed to add routine: %v", err)
	}

	taskIDs := make([]string, 0, numTasks)
	for i := 0; i < numTasks; i++ {
		id := fmt.Sprintf("t%d", i+1)
		task, err := models.NewTemplateTask(id, routine.ID, "Task "+id, now)
		if err != nil {
			t.Fatalf("failed to build task: %v", err)
		}
		if err := store.AddTemplateTask(task); err != nil {
			t.Fatalf("failed to add task: %v", err)
		}
		taskIDs = append(taskIDs, id)
	}
	return user.ID, taskIDs
}

func seedProgress(t *testing.T, store *sqlite.Store, taskID, userID, dateLocal string, status models.Status) {
	t.Helper()

	now := time.Now()
	progress, err := models.NewTaskProgress("p-"+taskID+"-"+dateLocal, taskID, userID, dateLocal, status, now)
	if err != nil {
		t.Fatalf("failed to build progress: %v", err)
	}
	if err := store.CreateProgressIfAbsent(progress); err != nil {
		t.Fatalf("failed to seed progress: %v", err)
	}
}

func TestDaily(t *testing.T) {
	agg, store := newTestAggregator(t, "2026-03-02 12:00:00")
	userID, tasks := seedFixture(t, store, 6)

	statuses := []models.Status{
		models.StatusCompleted,
		models.StatusCompleted,
		models.StatusMissed,
		models.StatusInProgress,
		models.StatusPending,
		models.StatusSkipped,
	}
	for i, status := range statuses {
		seedProgress(t, store, tasks[i], userID, "2026-03-02", status)
	}

	daily, err := agg.Daily(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("Daily() failed: %v", err)
	}

	if daily.Completed != 2 || daily.Missed != 1 || daily.InProgress != 1 || daily.Pending != 1 || daily.Skipped != 1 {
		t.Errorf("Daily() counts = %+v, want 2/1/1/1/1", daily)
	}
	if daily.Total != 6 {
		t.Errorf("Total = %d, want 6", daily.Total)
	}
	if math.Abs(daily.CompletionPercent-33.33) > 0.01 {
		t.Errorf("CompletionPercent = %.2f, want 33.33", daily.CompletionPercent)
	}
}

func TestDaily_EmptyDay(t *testing.T) {
	agg, store := newTestAggregator(t, "2026-03-02 12:00:00")
	userID, _ := seedFixture(t, store, 1)

	daily, err := agg.Daily(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("Daily() failed: %v", err)
	}
	if daily.Total != 0 || daily.CompletionPercent != 0 {
		t.Errorf("Daily() on empty day = %+v, want zeros", daily)
	}
}

func TestWeekly(t *testing.T) {
	// 2026-03-02 is a Monday; the previous week starts 2026-02-23.
	agg, store := newTestAggregator(t, "2026-03-04 12:00:00")
	userID, tasks := seedFixture(t, store, 1)
	taskID := tasks[0]

	// Two completions in the current week.
	seedProgress(t, store, taskID, userID, "2026-03-02", models.StatusCompleted)
	seedProgress(t, store, taskID, userID, "2026-03-03", models.StatusCompleted)
	// One completion and one miss in the previous week.
	seedProgress(t, store, taskID, userID, "2026-02-24", models.StatusCompleted)
	seedProgress(t, store, taskID, userID, "2026-02-25", models.StatusMissed)
	// Outside either week, must be ignored.
	seedProgress(t, store, taskID, userID, "2026-02-16", models.StatusCompleted)

	weekly, err := agg.Weekly(userID)
	if err != nil {
		t.Fatalf("Weekly() failed: %v", err)
	}

	if weekly.WeekStart != "2026-03-02" {
		t.Errorf("WeekStart = %s, want 2026-03-02", weekly.WeekStart)
	}
	if weekly.CurrentCompleted != 2 {
		t.Errorf("CurrentCompleted = %d, want 2", weekly.CurrentCompleted)
	}
	if weekly.PreviousCompleted != 1 {
		t.Errorf("PreviousCompleted = %d, want 1", weekly.PreviousCompleted)
	}
	if weekly.ImprovementPercentage != 100 {
		t.Errorf("ImprovementPercentage = %.2f, want 100", weekly.ImprovementPercentage)
	}
}

func TestWeekly_NoPreviousCompletions(t *testing.T) {
	agg, store := newTestAggregator(t, "2026-03-04 12:00:00")
	userID, tasks := seedFixture(t, store, 1)

	seedProgress(t, store, tasks[0], userID, "2026-03-02", models.StatusCompleted)

	weekly, err := agg.Weekly(userID)
	if err != nil {
		t.Fatalf("Weekly() failed: %v", err)
	}
	if weekly.ImprovementPercentage != 0 {
		t.Errorf("ImprovementPercentage = %.2f with empty previous week, want 0", weekly.ImprovementPercentage)
	}
}

func TestRoutines(t *testing.T) {
	agg, store := newTestAggregator(t, "2026-03-02 12:00:00")
	userID, _ := seedFixture(t, store, 0)

	inactive, err := models.NewRoutine("r2", userID, "Paused routine", "", []int{6}, time.Now())
	if err != nil {
		t.Fatalf("failed to build routine: %v", err)
	}
	inactive.Deactivate()
	if err := store.AddRoutine(inactive); err != nil {
		t.Fatalf("failed to add routine: %v", err)
	}

	stats, err := agg.Routines(userID)
	if err != nil {
		t.Fatalf("Routines() failed: %v", err)
	}
	if stats.Total != 2 || stats.Active != 1 {
		t.Errorf("Routines() = %+v, want total 2 active 1", stats)
	}
}

func TestBuildDailySummary(t *testing.T) {
	agg, store := newTestAggregator(t, "2026-03-02 12:00:00")
	userID, tasks := seedFixture(t, store, 4)

	for i, status := range []models.Status{
		models.StatusCompleted,
		models.StatusCompleted,
		models.StatusCompleted,
		models.StatusPending,
	} {
		seedProgress(t, store, tasks[i], userID, "2026-03-02", status)
	}

	summary, err := agg.BuildDailySummary(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("BuildDailySummary() failed: %v", err)
	}
	if summary.TotalCompleted != 3 || summary.TotalPending != 1 {
		t.Errorf("summary counts = %+v, want 3 completed 1 pending", summary)
	}
	if summary.ProgressPercent != 75 {
		t.Errorf("ProgressPercent = %.2f, want 75", summary.ProgressPercent)
	}

	// The summary is persisted and a rebuild updates it in place.
	stored, err := store.GetDailySummary(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("GetDailySummary() failed: %v", err)
	}
	if stored.ID != summary.ID {
		t.Errorf("stored summary id = %s, want %s", stored.ID, summary.ID)
	}

	record, err := store.GetProgressByTaskAndDate(tasks[3], "2026-03-02")
	if err != nil {
		t.Fatalf("GetProgressByTaskAndDate() failed: %v", err)
	}
	record.Complete(time.Now())
	if err := store.UpdateProgress(record); err != nil {
		t.Fatalf("UpdateProgress() failed: %v", err)
	}

	rebuilt, err := agg.BuildDailySummary(userID, "2026-03-02")
	if err != nil {
		t.Fatalf("BuildDailySummary() rebuild failed: %v", err)
	}
	if rebuilt.ID != summary.ID {
		t.Errorf("rebuild created a new summary id %s, want %s reused", rebuilt.ID, summary.ID)
	}
	if rebuilt.ProgressPercent != 100 {
		t.Errorf("ProgressPercent after rebuild = %.2f, want 100", rebuilt.ProgressPercent)
	}
}
