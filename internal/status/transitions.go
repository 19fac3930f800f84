package status

import (
	"fmt"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// StartTask moves today's progress for the template task to in_progress.
// Reopening a completed record is gated on the task's time window.
func (s *Service) StartTask(userID, templateTaskID string) (models.TaskProgress, error) {
	return s.transition(userID, templateTaskID, models.StatusInProgress, func(p *models.TaskProgress, now time.Time) {
		p.Start(now)
	})
}

// CompleteTask marks today's progress completed. Completing an already
// completed task is a no-op.
func (s *Service) CompleteTask(userID, templateTaskID string) (models.TaskProgress, error) {
	return s.transition(userID, templateTaskID, models.StatusCompleted, func(p *models.TaskProgress, now time.Time) {
		p.Complete(now)
	})
}

// SkipTask marks today's progress skipped.
func (s *Service) SkipTask(userID, templateTaskID string) (models.TaskProgress, error) {
	return s.transition(userID, templateTaskID, models.StatusSkipped, func(p *models.TaskProgress, now time.Time) {
		p.Skip(now)
	})
}

// ResetTask returns today's progress to pending, subject to the same gating
// as any other backward move out of completed.
func (s *Service) ResetTask(userID, templateTaskID string) (models.TaskProgress, error) {
	return s.transition(userID, templateTaskID, models.StatusPending, func(p *models.TaskProgress, now time.Time) {
		p.Reset(now)
	})
}

// SetTaskNotes replaces the notes on today's progress record. Notes carry no
// temporal constraint.
func (s *Service) SetTaskNotes(userID, templateTaskID, notes string) (models.TaskProgress, error) {
	now := s.Now()
	progress, _, _, err := s.loadToday(userID, templateTaskID, now)
	if err != nil {
		return models.TaskProgress{}, err
	}

	if err := progress.UpdateNotes(notes, now); err != nil {
		return models.TaskProgress{}, err
	}
	if err := s.store.UpdateProgress(progress); err != nil {
		return models.TaskProgress{}, err
	}
	return progress, nil
}

func (s *Service) transition(userID, templateTaskID string, target models.Status, apply func(*models.TaskProgress, time.Time)) (models.TaskProgress, error) {
	now := s.Now()
	progress, task, routine, err := s.loadToday(userID, templateTaskID, now)
	if err != nil {
		return models.TaskProgress{}, err
	}

	effectiveTime := task.EffectiveTime(routine.DefaultTime)
	if !progress.CanChangeToStatus(now, effectiveTime, task.DurationMin, target) {
		return models.TaskProgress{}, fmt.Errorf(
			"%w: cannot change task %q from %s to %s outside its time window",
			apperrors.ErrGatingViolation, task.Title, progress.Status, target)
	}

	apply(&progress, now)
	if err := s.store.UpdateProgress(progress); err != nil {
		return models.TaskProgress{}, err
	}
	return progress, nil
}

// loadToday fetches today's progress row for the task, materializing the
// user's day first so explicit commands work before any sweep has run.
func (s *Service) loadToday(userID, templateTaskID string, now time.Time) (models.TaskProgress, models.TemplateTask, models.Routine, error) {
	task, err := s.store.GetTemplateTask(templateTaskID)
	if err != nil {
		return models.TaskProgress{}, models.TemplateTask{}, models.Routine{}, err
	}

	routine, err := s.store.GetRoutine(task.RoutineID)
	if err != nil {
		return models.TaskProgress{}, models.TemplateTask{}, models.Routine{}, err
	}

	dateLocal := utils.DateLocal(now)
	progress, err := s.store.GetProgressByTaskAndDate(templateTaskID, dateLocal)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		if err := s.materializeForUser(userID, dateLocal, now); err != nil {
			return models.TaskProgress{}, models.TemplateTask{}, models.Routine{}, err
		}
		progress, err = s.store.GetProgressByTaskAndDate(templateTaskID, dateLocal)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return models.TaskProgress{}, models.TemplateTask{}, models.Routine{}, apperrors.NotFoundf(
				"task %q is not scheduled for today", task.Title)
		}
	}
	if err != nil {
		return models.TaskProgress{}, models.TemplateTask{}, models.Routine{}, err
	}

	return progress, task, routine, nil
}
