// Package status implements the daily task lifecycle sweep: materializing
// progress rows for the day's routines and promoting them through
// pending, in_progress, and missed as their time windows pass.
package status

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/utils"
)

// Service drives status transitions for daily task progress. All operations
// are idempotent: each transition depends only on the stored status, the
// clock, and static template fields, so running a sweep repeatedly or
// concurrently converges on the same state.
type Service struct {
	store storage.Provider

	// Now is the clock used for all decisions, injectable for tests.
	Now func() time.Time

	// SweepWorkers bounds the per-user fan-out of the all-users sweep.
	SweepWorkers int
}

func NewService(store storage.Provider) *Service {
	return &Service{
		store:        store,
		Now:          time.Now,
		SweepWorkers: constants.DefaultSweepWorkers,
	}
}

// UpdateDailyTaskStatuses materializes today's progress rows for the given
// user, or for every user when userID is empty. One row ends up existing per
// (template task, day) pair for every active routine that repeats today.
func (s *Service) UpdateDailyTaskStatuses(userID string) error {
	now := s.Now()
	dateLocal := utils.DateLocal(now)

	if userID != "" {
		return s.materializeForUser(userID, dateLocal, now)
	}

	return s.forAllUsers("materialize", func(uid string) error {
		return s.materializeForUser(uid, dateLocal, now)
	})
}

// ResetDailyTasksForUser materializes one user's progress rows for an
// arbitrary date. It is the targeted-repair form of UpdateDailyTaskStatuses.
func (s *Service) ResetDailyTasksForUser(userID, dateLocal string) error {
	if userID == "" {
		return apperrors.Validationf("user id cannot be empty")
	}
	if !utils.ValidateDateFormat(dateLocal) {
		return apperrors.Validationf("invalid date %q, expected YYYY-MM-DD", dateLocal)
	}
	return s.materializeForUser(userID, dateLocal, s.Now())
}

func (s *Service) materializeForUser(userID, dateLocal string, now time.Time) error {
	date, err := utils.ParseDate(dateLocal)
	if err != nil {
		return err
	}
	weekday := utils.ISOWeekday(date)

	routines, err := s.store.GetActiveRoutinesForDay(userID, weekday)
	if err != nil {
		return fmt.Errorf("failed to load routines for user %s: %w", userID, err)
	}

	for _, routine := range routines {
		tasks, err := s.store.GetTemplateTasksByRoutine(routine.ID)
		if err != nil {
			return fmt.Errorf("failed to load tasks for routine %s: %w", routine.ID, err)
		}

		for _, task := range tasks {
			if err := s.ensureProgress(task, userID, dateLocal, now); err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureProgress creates the day's row if absent and repairs a stale missed
// record left behind by a sweep that ran late across a day boundary. A record
// missed on its own day stays missed.
func (s *Service) ensureProgress(task models.TemplateTask, userID, dateLocal string, now time.Time) error {
	existing, err := s.store.GetProgressByTaskAndDate(task.ID, dateLocal)
	if err == nil {
		if existing.Status == models.StatusMissed && utils.DateLocal(existing.UpdatedAt) != dateLocal {
			existing.Reset(now)
			if err := s.store.UpdateProgress(existing); err != nil {
				return fmt.Errorf("failed to reset stale progress %s: %w", existing.ID, err)
			}
			logger.Debug("Reset stale missed progress", "taskID", task.ID, "date", dateLocal)
		}
		return nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	progress, err := models.NewTaskProgress(uuid.NewString(), task.ID, userID, dateLocal, models.StatusPending, now)
	if err != nil {
		return err
	}

	// The conflict-do-nothing insert closes the check-then-act race when two
	// sweeps materialize the same task concurrently.
	if err := s.store.CreateProgressIfAbsent(progress); err != nil {
		return fmt.Errorf("failed to create progress for task %s: %w", task.ID, err)
	}
	return nil
}

// UpdateExpiredTasks promotes today's pending and in-progress records through
// their time windows: not yet due stays pending, inside the window becomes
// in_progress, past the window becomes missed. Tasks with no scheduled time
// only expire once the day itself is over.
func (s *Service) UpdateExpiredTasks(userID string) error {
	if userID != "" {
		return s.expireForUser(userID)
	}

	return s.forAllUsers("expire", s.expireForUser)
}

func (s *Service) expireForUser(userID string) error {
	now := s.Now()
	dateLocal := utils.DateLocal(now)

	records, err := s.store.GetProgressByUserDateAndStatuses(userID, dateLocal,
		[]models.Status{models.StatusPending, models.StatusInProgress})
	if err != nil {
		return fmt.Errorf("failed to load open progress for user %s: %w", userID, err)
	}

	// Routines are cached per sweep since every task under a routine shares
	// the same default time.
	routineCache := make(map[string]models.Routine)

	for _, record := range records {
		task, err := s.store.GetTemplateTask(record.TemplateTaskID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				// Template deleted since materialization; cascade handles the
				// row eventually, nothing to promote.
				continue
			}
			return err
		}

		routine, ok := routineCache[task.RoutineID]
		if !ok {
			routine, err = s.store.GetRoutine(task.RoutineID)
			if err != nil {
				return err
			}
			routineCache[task.RoutineID] = routine
		}

		target, changed := nextStatus(record, task.EffectiveTime(routine.DefaultTime), task.DurationMin, now)
		if !changed {
			continue
		}

		if err := s.store.UpdateProgressStatus(record.ID, target); err != nil {
			return fmt.Errorf("failed to update progress %s: %w", record.ID, err)
		}
		logger.Debug("Promoted task progress", "taskID", task.ID, "from", record.Status, "to", target)
	}

	return nil
}

// nextStatus decides the window-driven transition for an open record.
func nextStatus(record models.TaskProgress, timeOfDay string, durationMin int, now time.Time) (models.Status, bool) {
	if timeOfDay == "" {
		// Untimed tasks only expire at end of day.
		endOfDay, err := utils.EndOfDay(record.DateLocal)
		if err != nil {
			logger.Error("Failed to resolve end of day", "date", record.DateLocal, "error", err)
			return record.Status, false
		}
		if now.After(endOfDay) {
			return models.StatusMissed, record.Status != models.StatusMissed
		}
		return record.Status, false
	}

	start, err := utils.CombineDateAndTime(record.DateLocal, timeOfDay)
	if err != nil {
		logger.Error("Failed to resolve task start time", "timeOfDay", timeOfDay, "error", err)
		return record.Status, false
	}

	windowEnd := start.Add(constants.NoDurationEditWindow)
	if durationMin > 0 {
		windowEnd = start.Add(time.Duration(durationMin) * time.Minute)
	}

	switch {
	case now.Before(start):
		return record.Status, false
	case now.After(windowEnd):
		return models.StatusMissed, true
	case record.Status == models.StatusPending:
		return models.StatusInProgress, true
	default:
		return record.Status, false
	}
}

// forAllUsers runs op for every stored user with bounded concurrency. A
// failure for one user is logged and reported but never blocks the others.
func (s *Service) forAllUsers(opName string, op func(userID string) error) error {
	users, err := s.store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	workers := s.SweepWorkers
	if workers < 1 {
		workers = 1
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	sem := make(chan struct{}, workers)

	for _, user := range users {
		if !user.Active {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(uid string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := op(uid); err != nil {
				logger.Error("Sweep failed for user", "op", opName, "userID", uid, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s: %w", uid, err))
				mu.Unlock()
			}
		}(user.ID)
	}
	wg.Wait()

	return errors.Join(errs...)
}
