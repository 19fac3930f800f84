package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

func (s *Store) AddRoutine(routine models.Routine) error {
	return s.writeRoutine(routine)
}

func (s *Store) UpdateRoutine(routine models.Routine) error {
	return s.writeRoutine(routine)
}

func (s *Store) writeRoutine(routine models.Routine) error {
	daysJSON, err := json.Marshal(routine.RepeatDays)
	if err != nil {
		return fmt.Errorf("failed to marshal repeat days: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO routines (id, user_id, title, default_time, repeat_days, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		routine.ID, routine.UserID, routine.Title, routine.DefaultTime,
		string(daysJSON), routine.Active, formatTime(routine.CreatedAt),
	)
	return err
}

func (s *Store) GetRoutine(id string) (models.Routine, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, default_time, repeat_days, active, created_at
		FROM routines WHERE id = ?`, id)

	routine, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Routine{}, apperrors.NotFoundf("routine %s", id)
		}
		return models.Routine{}, err
	}
	return routine, nil
}

func (s *Store) GetRoutinesByUser(userID string) ([]models.Routine, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, default_time, repeat_days, active, created_at
		FROM routines WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []models.Routine
	for rows.Next() {
		routine, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		routines = append(routines, routine)
	}

	return routines, rows.Err()
}

// GetActiveRoutinesForDay filters on the weekday set in Go since repeat_days
// is stored as a JSON array.
func (s *Store) GetActiveRoutinesForDay(userID string, weekday int) ([]models.Routine, error) {
	routines, err := s.GetRoutinesByUser(userID)
	if err != nil {
		return nil, err
	}

	var matched []models.Routine
	for _, routine := range routines {
		if routine.Active && routine.RepeatsOn(weekday) {
			matched = append(matched, routine)
		}
	}
	return matched, nil
}

func (s *Store) DeleteRoutine(id string) error {
	res, err := s.db.Exec(`DELETE FROM routines WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("routine %s", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoutine(row rowScanner) (models.Routine, error) {
	var r models.Routine
	var daysJSON, createdAt string

	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.DefaultTime, &daysJSON, &r.Active, &createdAt); err != nil {
		return models.Routine{}, err
	}

	if err := json.Unmarshal([]byte(daysJSON), &r.RepeatDays); err != nil {
		return models.Routine{}, fmt.Errorf("failed to unmarshal repeat days for routine %s: %w", r.ID, err)
	}
	r.CreatedAt = parseTime(createdAt)

	return r, nil
}

func (s *Store) AddTemplateTask(task models.TemplateTask) error {
	return s.writeTemplateTask(task)
}

func (s *Store) UpdateTemplateTask(task models.TemplateTask) error {
	return s.writeTemplateTask(task)
}

func (s *Store) writeTemplateTask(task models.TemplateTask) error {
	var categoryID sql.NullString
	if task.CategoryID != "" {
		categoryID = sql.NullString{String: task.CategoryID, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO routine_tasks (
			id, routine_id, title, time_of_day, duration_min, category_id,
			priority, description, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.RoutineID, task.Title, task.Time, task.DurationMin, categoryID,
		task.Priority, task.Description, task.SortOrder,
		formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
	)
	return err
}

func (s *Store) GetTemplateTask(id string) (models.TemplateTask, error) {
	row := s.db.QueryRow(`
		SELECT id, routine_id, title, time_of_day, duration_min, category_id,
		       priority, description, sort_order, created_at, updated_at
		FROM routine_tasks WHERE id = ?`, id)

	task, err := scanTemplateTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TemplateTask{}, apperrors.NotFoundf("template task %s", id)
		}
		return models.TemplateTask{}, err
	}
	return task, nil
}

func (s *Store) GetTemplateTasksByRoutine(routineID string) ([]models.TemplateTask, error) {
	rows, err := s.db.Query(`
		SELECT id, routine_id, title, time_of_day, duration_min, category_id,
		       priority, description, sort_order, created_at, updated_at
		FROM routine_tasks WHERE routine_id = ? ORDER BY sort_order, created_at`, routineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.TemplateTask
	for rows.Next() {
		task, err := scanTemplateTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (s *Store) DeleteTemplateTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM routine_tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("template task %s", id)
	}
	return nil
}

func scanTemplateTask(row rowScanner) (models.TemplateTask, error) {
	var t models.TemplateTask
	var categoryID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.RoutineID, &t.Title, &t.Time, &t.DurationMin, &categoryID,
		&t.Priority, &t.Description, &t.SortOrder, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.TemplateTask{}, err
	}

	if categoryID.Valid {
		t.CategoryID = categoryID.String
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)

	return t, nil
}
