package storage

import "github.com/julianstephens/routinely/internal/models"

// Provider is the persistence surface consumed by the status service, the
// stats aggregator, and the CLI. Two implementations exist: SQLite (default)
// and PostgreSQL.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Users
	AddUser(models.User) error
	GetUser(id string) (models.User, error)
	GetAllUsers() ([]models.User, error)

	// Categories
	AddCategory(models.Category) error
	GetAllCategories() ([]models.Category, error)

	// Routines
	AddRoutine(models.Routine) error
	GetRoutine(id string) (models.Routine, error)
	GetRoutinesByUser(userID string) ([]models.Routine, error)
	// GetActiveRoutinesForDay returns the user's active routines whose repeat
	// days include the given ISO weekday (1=Monday..7=Sunday).
	GetActiveRoutinesForDay(userID string, weekday int) ([]models.Routine, error)
	UpdateRoutine(models.Routine) error
	DeleteRoutine(id string) error

	// Template tasks
	AddTemplateTask(models.TemplateTask) error
	GetTemplateTask(id string) (models.TemplateTask, error)
	GetTemplateTasksByRoutine(routineID string) ([]models.TemplateTask, error)
	UpdateTemplateTask(models.TemplateTask) error
	DeleteTemplateTask(id string) error

	// Progress. CreateProgressIfAbsent must be an atomic insert-on-conflict-
	// do-nothing keyed on (template_task_id, date_local) so concurrent
	// materialization cannot produce duplicate rows.
	CreateProgressIfAbsent(models.TaskProgress) error
	GetProgressByTaskAndDate(templateTaskID, dateLocal string) (models.TaskProgress, error)
	GetProgressByUserAndDate(userID, dateLocal string) ([]models.TaskProgress, error)
	GetProgressByUserDateAndStatuses(userID, dateLocal string, statuses []models.Status) ([]models.TaskProgress, error)
	GetProgressByUserAndDateRange(userID, startDate, endDate string) ([]models.TaskProgress, error)
	UpdateProgress(models.TaskProgress) error
	UpdateProgressStatus(id string, status models.Status) error

	// Summaries
	SaveDailySummary(models.DailySummary) error
	GetDailySummary(userID, dateLocal string) (models.DailySummary, error)

	// Utils
	GetConfigPath() string
}
