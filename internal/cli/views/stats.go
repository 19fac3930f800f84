package views

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/utils"
)

type StatsCmd struct{}

// Run prints daily and weekly aggregates after a catch-up sweep.
func (c *StatsCmd) Run(ctx *cli.Context) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}

	if err := ctx.Status.UpdateDailyTaskStatuses(user.ID); err != nil {
		return err
	}
	if err := ctx.Status.UpdateExpiredTasks(user.ID); err != nil {
		return err
	}

	today := utils.DateLocal(time.Now())
	daily, err := ctx.Stats.Daily(user.ID, today)
	if err != nil {
		return err
	}
	weekly, err := ctx.Stats.Weekly(user.ID)
	if err != nil {
		return err
	}
	routines, err := ctx.Stats.Routines(user.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Today (%s)\n", today)
	fmt.Printf("  Completed:    %d\n", daily.Completed)
	fmt.Printf("  In progress:  %d\n", daily.InProgress)
	fmt.Printf("  Pending:      %d\n", daily.Pending)
	fmt.Printf("  Skipped:      %d\n", daily.Skipped)
	fmt.Printf("  Missed:       %d\n", daily.Missed)
	fmt.Printf("  Completion:   %.1f%%\n", daily.CompletionPercent)
	fmt.Println()
	fmt.Printf("Week of %s\n", weekly.WeekStart)
	fmt.Printf("  Completed this week:  %d\n", weekly.CurrentCompleted)
	fmt.Printf("  Completed last week:  %d\n", weekly.PreviousCompleted)
	fmt.Printf("  Improvement:          %+.1f%%\n", weekly.ImprovementPercentage)
	fmt.Println()
	fmt.Printf("Routines: %d active of %d\n", routines.Active, routines.Total)
	return nil
}
