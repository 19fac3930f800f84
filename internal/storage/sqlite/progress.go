package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
)

const progressColumns = `id, template_task_id, user_id, date_local, status,
	started_at, completed_at, notes, created_at, updated_at`

// CreateProgressIfAbsent inserts the record unless a row already exists for
// the same (template_task_id, date_local). The conflict clause makes the
// materialization race-free without application-level locking.
func (s *Store) CreateProgressIfAbsent(p models.TaskProgress) error {
	_, err := s.db.Exec(`
		INSERT INTO task_progress (
			id, template_task_id, user_id, date_local, status,
			started_at, completed_at, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (template_task_id, date_local) DO NOTHING`,
		p.ID, p.TemplateTaskID, p.UserID, p.DateLocal, p.Status,
		nullableTime(p.StartedAt), nullableTime(p.CompletedAt), p.Notes,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return err
}

func (s *Store) GetProgressByTaskAndDate(templateTaskID, dateLocal string) (models.TaskProgress, error) {
	row := s.db.QueryRow(`
		SELECT `+progressColumns+`
		FROM task_progress WHERE template_task_id = ? AND date_local = ?`,
		templateTaskID, dateLocal)

	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TaskProgress{}, apperrors.NotFoundf("progress for task %s on %s", templateTaskID, dateLocal)
		}
		return models.TaskProgress{}, err
	}
	return p, nil
}

func (s *Store) GetProgressByUserAndDate(userID, dateLocal string) ([]models.TaskProgress, error) {
	return s.queryProgress(`
		SELECT `+progressColumns+`
		FROM task_progress WHERE user_id = ? AND date_local = ?
		ORDER BY created_at`, userID, dateLocal)
}

func (s *Store) GetProgressByUserDateAndStatuses(userID, dateLocal string, statuses []models.Status) ([]models.TaskProgress, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]

	args := []interface{}{userID, dateLocal}
	for _, st := range statuses {
		args = append(args, st)
	}

	return s.queryProgress(fmt.Sprintf(`
		SELECT %s
		FROM task_progress WHERE user_id = ? AND date_local = ? AND status IN (%s)
		ORDER BY created_at`, progressColumns, placeholders), args...)
}

func (s *Store) GetProgressByUserAndDateRange(userID, startDate, endDate string) ([]models.TaskProgress, error) {
	return s.queryProgress(`
		SELECT `+progressColumns+`
		FROM task_progress WHERE user_id = ? AND date_local >= ? AND date_local <= ?
		ORDER BY date_local, created_at`, userID, startDate, endDate)
}

func (s *Store) UpdateProgress(p models.TaskProgress) error {
	res, err := s.db.Exec(`
		UPDATE task_progress
		SET status = ?, started_at = ?, completed_at = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		p.Status, nullableTime(p.StartedAt), nullableTime(p.CompletedAt), p.Notes,
		formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, "progress "+p.ID)
}

func (s *Store) UpdateProgressStatus(id string, status models.Status) error {
	res, err := s.db.Exec(`
		UPDATE task_progress SET status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(time.Now()), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, "progress "+id)
}

func (s *Store) queryProgress(query string, args ...interface{}) ([]models.TaskProgress, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TaskProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

func scanProgress(row rowScanner) (models.TaskProgress, error) {
	var p models.TaskProgress
	var startedAt, completedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID, &p.TemplateTaskID, &p.UserID, &p.DateLocal, &p.Status,
		&startedAt, &completedAt, &p.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return models.TaskProgress{}, err
	}

	p.StartedAt = timePtr(startedAt)
	p.CompletedAt = timePtr(completedAt)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	return p, nil
}

func (s *Store) SaveDailySummary(summary models.DailySummary) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_summaries (
			id, user_id, date_local, total_completed, total_missed,
			total_in_progress, total_pending, total_skipped, progress_percent,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date_local) DO UPDATE SET
			total_completed = excluded.total_completed,
			total_missed = excluded.total_missed,
			total_in_progress = excluded.total_in_progress,
			total_pending = excluded.total_pending,
			total_skipped = excluded.total_skipped,
			progress_percent = excluded.progress_percent,
			updated_at = excluded.updated_at`,
		summary.ID, summary.UserID, summary.DateLocal, summary.TotalCompleted,
		summary.TotalMissed, summary.TotalInProgress, summary.TotalPending,
		summary.TotalSkipped, summary.ProgressPercent,
		formatTime(summary.CreatedAt), formatTime(summary.UpdatedAt),
	)
	return err
}

func (s *Store) GetDailySummary(userID, dateLocal string) (models.DailySummary, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, date_local, total_completed, total_missed,
		       total_in_progress, total_pending, total_skipped, progress_percent,
		       created_at, updated_at
		FROM daily_summaries WHERE user_id = ? AND date_local = ?`,
		userID, dateLocal)

	var sm models.DailySummary
	var createdAt, updatedAt string
	err := row.Scan(
		&sm.ID, &sm.UserID, &sm.DateLocal, &sm.TotalCompleted, &sm.TotalMissed,
		&sm.TotalInProgress, &sm.TotalPending, &sm.TotalSkipped, &sm.ProgressPercent,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailySummary{}, apperrors.NotFoundf("summary for user %s on %s", userID, dateLocal)
		}
		return models.DailySummary{}, err
	}
	sm.CreatedAt = parseTime(createdAt)
	sm.UpdatedAt = parseTime(updatedAt)

	return sm, nil
}

func requireAffected(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFoundf("%s", what)
	}
	return nil
}
