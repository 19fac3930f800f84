package views

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/utils"
)

type SummaryCmd struct {
	Date string `arg:"" optional:"" help:"Day to summarize (YYYY-MM-DD), defaults to today."`
}

// Run recomputes and prints the cached daily summary for a date.
func (c *SummaryCmd) Run(ctx *cli.Context) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}

	dateLocal := c.Date
	today := utils.DateLocal(time.Now())
	if dateLocal == "" {
		dateLocal = today
	} else if !utils.ValidateDateFormat(dateLocal) {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateLocal)
	}

	if dateLocal == today {
		if err := ctx.Status.UpdateDailyTaskStatuses(user.ID); err != nil {
			return err
		}
		if err := ctx.Status.UpdateExpiredTasks(user.ID); err != nil {
			return err
		}
	}

	summary, err := ctx.Stats.BuildDailySummary(user.ID, dateLocal)
	if err != nil {
		return err
	}

	fmt.Printf("Summary for %s (%s)\n", user.Name, summary.DateLocal)
	fmt.Printf("  Total tasks:  %d\n", summary.TotalTasks())
	fmt.Printf("  Completed:    %d\n", summary.TotalCompleted)
	fmt.Printf("  In progress:  %d\n", summary.TotalInProgress)
	fmt.Printf("  Pending:      %d\n", summary.TotalPending)
	fmt.Printf("  Skipped:      %d\n", summary.TotalSkipped)
	fmt.Printf("  Missed:       %d\n", summary.TotalMissed)
	fmt.Printf("  Progress:     %.2f%%\n", summary.ProgressPercent)
	return nil
}
