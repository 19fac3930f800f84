package postgres

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
// the same (template_task_id, date_local).
func (s *Store) CreateProgressIfAbsent(p models.TaskProgress) error {
	_, err := s.db.Exec(`
		INSERT INTO task_progress (
			id, template_task_id, user_id, date_local, status,
			started_at, completed_at, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (template_task_id, date_local) DO NOTHING`,
		p.ID, p.TemplateTaskID, p.UserID, p.DateLocal, p.Status,
		nullableTime(p.StartedAt), nullableTime(p.CompletedAt), p.Notes,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return err
}

func (s *Store) GetProgressByTaskAndDate(templateTaskID, dateLocal string) (models.TaskProgress, error) {
	row := s.db.QueryRow(`
		SELECT `+progressColumns+`
		FROM task_progress WHERE template_task_id = $1 AND date_local = $2`,
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
		FROM task_progress WHERE user_id = $1 AND date_local = $2
		ORDER BY created_at`, userID, dateLocal)
}

func (s *Store) GetProgressByUserDateAndStatuses(userID, dateLocal string, statuses []models.Status) ([]models.TaskProgress, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := []interface{}{userID, dateLocal}
	for i, st := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, st)
	}

	return s.queryProgress(fmt.Sprintf(`
		SELECT %s
		FROM task_progress WHERE user_id = $1 AND date_local = $2 AND status IN (%s)
		ORDER BY created_at`, progressColumns, strings.Join(placeholders, ",")), args...)
}

func (s *Store) GetProgressByUserAndDateRange(userID, startDate, endDate string) ([]models.TaskProgress, error) {
	return s.queryProgress(`
		SELECT `+progressColumns+`
		FROM task_progress WHERE user_id = $1 AND date_local >= $2 AND date_local <= $3
		ORDER BY date_local, created_at`, userID, startDate, endDate)
}

func (s *Store) UpdateProgress(p models.TaskProgress) error {
	res, err := s.db.Exec(`
		UPDATE task_progress
		SET status = $1, started_at = $2, completed_at = $3, notes = $4, updated_at = $5
		WHERE id = $6`,
		p.Status, nullableTime(p.StartedAt), nullableTime(p.CompletedAt), p.Notes,
		p.UpdatedAt.UTC(), p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, "progress "+p.ID)
}

func (s *Store) UpdateProgressStatus(id string, status models.Status) error {
	res, err := s.db.Exec(`
		UPDATE task_progress SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
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
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.TemplateTaskID, &p.UserID, &p.DateLocal, &p.Status,
		&startedAt, &completedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.TaskProgress{}, err
	}

	p.StartedAt = timePtr(startedAt)
	p.CompletedAt = timePtr(completedAt)
	p.CreatedAt = p.CreatedAt.Local()
	p.UpdatedAt = p.UpdatedAt.Local()

	return p, nil
}

func (s *Store) SaveDailySummary(summary models.DailySummary) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_summaries (
			id, user_id, date_local, total_completed, total_missed,
			total_in_progress, total_pending, total_skipped, progress_percent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, date_local) DO UPDATE SET
			total_completed = EXCLUDED.total_completed,
			total_missed = EXCLUDED.total_missed,
			total_in_progress = EXCLUDED.total_in_progress,
			total_pending = EXCLUDED.total_pending,
			total_skipped = EXCLUDED.total_skipped,
			progress_percent = EXCLUDED.progress_percent,
			updated_at = EXCLUDED.updated_at`,
		summary.ID, summary.UserID, summary.DateLocal, summary.TotalCompleted,
		summary.TotalMissed, summary.TotalInProgress, summary.TotalPending,
		summary.TotalSkipped, summary.ProgressPercent,
		summary.CreatedAt.UTC(), summary.UpdatedAt.UTC(),
	)
	return err
}

func (s *Store) GetDailySummary(userID, dateLocal string) (models.DailySummary, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, date_local, total_completed, total_missed,
		       total_in_progress, total_pending, total_skipped, progress_percent,
		       created_at, updated_at
		FROM daily_summaries WHERE user_id = $1 AND date_local = $2`,
		userID, dateLocal)

	var sm models.DailySummary
	err := row.Scan(
		&sm.ID, &sm.UserID, &sm.DateLocal, &sm.TotalCompleted, &sm.TotalMissed,
		&sm.TotalInProgress, &sm.TotalPending, &sm.TotalSkipped, &sm.ProgressPercent,
		&sm.CreatedAt, &sm.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailySummary{}, apperrors.NotFoundf("summary for user %s on %s", userID, dateLocal)
		}
		return models.DailySummary{}, err
	}
	sm.CreatedAt = sm.CreatedAt.Local()
	sm.UpdatedAt = sm.UpdatedAt.Local()

	return sm, nil
}
