package system

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
)

type SweepCmd struct {
	User string `help:"Sweep a single user instead of all users."`
}

// Run performs the full catch-up sweep synchronously: materialize today's
// progress rows, then expire overdue tasks.
func (c *SweepCmd) Run(ctx *cli.Context) error {
	if c.User != "" {
		if err := ctx.Status.UpdateDailyTaskStatuses(c.User); err != nil {
			return err
		}
		if err := ctx.Status.UpdateExpiredTasks(c.User); err != nil {
			return err
		}
	} else if err := ctx.Scheduler.RunManualUpdate(); err != nil {
		return err
	}

	fmt.Println("Sweep complete.")
	return nil
}
