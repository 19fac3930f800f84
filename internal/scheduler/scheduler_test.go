package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSweeper records the sweep calls made by the scheduler.
type fakeSweeper struct {
	mu        sync.Mutex
	calls     []string
	dailyErr  error
	expireErr error
}

func (f *fakeSweeper) UpdateDailyTaskStatuses(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "daily:"+userID)
	return f.dailyErr
}

func (f *fakeSweeper) UpdateExpiredTasks(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "expire:"+userID)
	return f.expireErr
}

func (f *fakeSweeper) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func waitForCalls(t *testing.T, f *fakeSweeper, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := f.snapshot(); len(calls) >= n {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sweeper calls, got %v", n, f.snapshot())
	return nil
}

func TestRunManualUpdate_MaterializesBeforeExpiring(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper)

	if err := s.RunManualUpdate(); err != nil {
		t.Fatalf("RunManualUpdate() failed: %v", err)
	}

	calls := sweeper.snapshot()
	want := []string{"daily:", "expire:"}
	if len(calls) != len(want) || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestRunManualUpdate_StopsOnMaterializationError(t *testing.T) {
	sweeper := &fakeSweeper{dailyErr: errors.New("db down")}
	s := New(sweeper)

	if err := s.RunManualUpdate(); err == nil {
		t.Fatal("RunManualUpdate() should propagate the materialization error")
	}
	if calls := sweeper.snapshot(); len(calls) != 1 {
		t.Errorf("calls = %v, expiry must not run after a failed materialization", calls)
	}
}

func TestStartScheduledTasks_RunsStartupSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper)
	s.ExpiryInterval = time.Hour

	s.StartScheduledTasks()
	defer s.Stop()

	calls := waitForCalls(t, sweeper, 2)
	if calls[0] != "daily:" || calls[1] != "expire:" {
		t.Errorf("startup calls = %v, want daily then expire", calls[:2])
	}
}

func TestStartScheduledTasks_ExpiryTicks(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper)
	s.ExpiryInterval = 20 * time.Millisecond

	s.StartScheduledTasks()
	defer s.Stop()

	// Startup sweep (2 calls) plus at least two expiry ticks.
	calls := waitForCalls(t, sweeper, 4)
	expiries := 0
	for _, c := range calls[2:] {
		if c == "expire:" {
			expiries++
		}
	}
	if expiries < 2 {
		t.Errorf("got %d expiry ticks, want at least 2 (calls: %v)", expiries, calls)
	}
}

func TestStartScheduledTasks_Idempotent(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper)
	s.ExpiryInterval = time.Hour

	s.StartScheduledTasks()
	s.StartScheduledTasks()
	defer s.Stop()

	waitForCalls(t, sweeper, 2)
	// A second Start must not have spawned a second loop.
	time.Sleep(50 * time.Millisecond)
	if calls := sweeper.snapshot(); len(calls) != 2 {
		t.Errorf("calls = %v, a double Start should run one startup sweep", calls)
	}
}

func TestStop_WaitsAndIsReentrant(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper)
	s.ExpiryInterval = time.Hour

	s.StartScheduledTasks()
	waitForCalls(t, sweeper, 2)

	s.Stop()
	before := len(sweeper.snapshot())
	time.Sleep(50 * time.Millisecond)
	if after := len(sweeper.snapshot()); after != before {
		t.Errorf("sweeps continued after Stop: %d -> %d", before, after)
	}

	// Stopping an already stopped scheduler is a no-op.
	s.Stop()

	// The scheduler can be started again after a stop.
	s.StartScheduledTasks()
	defer s.Stop()
	waitForCalls(t, sweeper, before+2)
}

func TestTickSurvivesSweeperErrors(t *testing.T) {
	sweeper := &fakeSweeper{dailyErr: errors.New("flaky"), expireErr: errors.New("flaky")}
	s := New(sweeper)
	s.ExpiryInterval = 20 * time.Millisecond

	s.StartScheduledTasks()
	defer s.Stop()

	// Errors are logged, not fatal: ticks keep coming.
	waitForCalls(t, sweeper, 4)
}
