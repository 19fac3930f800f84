package tasks

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
)

// The status commands are the explicit state-change surface. They go through
// the status service so time-window gating applies uniformly.

type StatusStartCmd struct {
	Task string `arg:"" help:"Template task ID."`
}

func (c *StatusStartCmd) Run(ctx *cli.Context) error {
	return runTransition(ctx, c.Task, func(userID string) (models.TaskProgress, error) {
		return ctx.Status.StartTask(userID, c.Task)
	})
}

type StatusCompleteCmd struct {
	Task string `arg:"" help:"Template task ID."`
}

func (c *StatusCompleteCmd) Run(ctx *cli.Context) error {
	return runTransition(ctx, c.Task, func(userID string) (models.TaskProgress, error) {
		return ctx.Status.CompleteTask(userID, c.Task)
	})
}

type StatusSkipCmd struct {
	Task string `arg:"" help:"Template task ID."`
}

func (c *StatusSkipCmd) Run(ctx *cli.Context) error {
	return runTransition(ctx, c.Task, func(userID string) (models.TaskProgress, error) {
		return ctx.Status.SkipTask(userID, c.Task)
	})
}

type StatusResetCmd struct {
	Task string `arg:"" help:"Template task ID."`
}

func (c *StatusResetCmd) Run(ctx *cli.Context) error {
	return runTransition(ctx, c.Task, func(userID string) (models.TaskProgress, error) {
		return ctx.Status.ResetTask(userID, c.Task)
	})
}

type StatusNotesCmd struct {
	Task  string `arg:"" help:"Template task ID."`
	Notes string `arg:"" help:"Notes text (empty string clears)."`
}

func (c *StatusNotesCmd) Run(ctx *cli.Context) error {
	return runTransition(ctx, c.Task, func(userID string) (models.TaskProgress, error) {
		return ctx.Status.SetTaskNotes(userID, c.Task, c.Notes)
	})
}

func runTransition(ctx *cli.Context, taskID string, op func(userID string) (models.TaskProgress, error)) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}

	progress, err := op(user.ID)
	if err != nil {
		return err
	}

	task, err := ctx.Store.GetTemplateTask(taskID)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s is now %s\n", cli.StatusGlyph(progress.Status), task.Title, progress.Status)
	return nil
}
