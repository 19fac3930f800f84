package system

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/postgres"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
	"github.com/julianstephens/routinely/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	if dbReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (database not reachable)\n")
	}

	if dbReachable {
		if err := checkProgressIntegrity(ctx); err != nil {
			fmt.Printf("❌ Progress integrity: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Progress integrity: OK\n")
		}
	} else {
		fmt.Printf("⊘ Progress integrity: SKIPPED (database not reachable)\n")
	}

	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	if pid, err := runningDaemonPID(); err != nil {
		fmt.Printf("⚠ Scheduler process: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else if pid != 0 {
		fmt.Printf("✓ Scheduler process: running (pid %d)\n", pid)
	} else {
		fmt.Printf("⚠ Scheduler process: not running (statuses only update when commands run)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var runner *migration.Runner
	switch ctx.Store.(type) {
	case *postgres.Store:
		runner = migration.NewRunner(db, migrations.Postgres(), migration.DialectPostgres)
	default:
		runner = migration.NewRunner(db, migrations.SQLite(), migration.DialectSQLite)
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", currentVersion, latestVersion)
	}
	if currentVersion < latestVersion {
		return fmt.Errorf("pending migrations: database at version %d, latest is %d (run 'routinely init')", currentVersion, latestVersion)
	}
	return nil
}

// checkProgressIntegrity scans for duplicate per-day rows and unknown status
// values. The unique key should make duplicates impossible; a hit means the
// schema was tampered with.
func checkProgressIntegrity(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var dupes int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM (
			SELECT template_task_id, date_local FROM task_progress
			GROUP BY template_task_id, date_local HAVING COUNT(*) > 1
		) d`).Scan(&dupes)
	if err != nil {
		return fmt.Errorf("failed to check for duplicates: %w", err)
	}
	if dupes > 0 {
		return fmt.Errorf("found %d duplicate (task, date) progress pairs", dupes)
	}

	rows, err := db.Query(`SELECT DISTINCT status FROM task_progress`)
	if err != nil {
		return fmt.Errorf("failed to scan statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		if !models.Status(s).Valid() {
			return fmt.Errorf("unknown status value %q in task_progress", s)
		}
	}
	return rows.Err()
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock appears wrong: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset < -14*3600 || offset > 14*3600 {
		return fmt.Errorf("timezone offset out of range: %d seconds", offset)
	}
	return nil
}

func storeDB(ctx *cli.Context) *sql.DB {
	switch s := ctx.Store.(type) {
	case *sqlite.Store:
		return s.GetDB()
	case *postgres.Store:
		return s.GetDB()
	default:
		return nil
	}
}
