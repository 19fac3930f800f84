package tasks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
)

type TaskAddCmd struct {
	Routine     string `arg:"" help:"Routine ID the task belongs to."`
	Title       string `arg:"" help:"Task title."`
	Time        string `short:"t" help:"Time of day (HH:MM or HH:MM:SS); empty inherits the routine default."`
	Duration    int    `short:"d" help:"Duration in minutes."`
	Category    string `short:"c" help:"Category ID."`
	Priority    string `short:"p" help:"Priority (low|medium|high)." default:"medium"`
	Description string `help:"Free-text description."`
	Order       int    `short:"o" help:"Sort order within the routine."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.Store.GetRoutine(c.Routine)
	if err != nil {
		return err
	}

	task, err := models.NewTemplateTask(uuid.NewString(), routine.ID, c.Title, time.Now())
	if err != nil {
		return err
	}

	if c.Time != "" {
		if err := task.UpdateTime(normalizeTime(c.Time)); err != nil {
			return err
		}
	}
	if c.Duration != 0 {
		if err := task.UpdateDuration(c.Duration); err != nil {
			return err
		}
	}
	if c.Description != "" {
		if err := task.UpdateDescription(c.Description); err != nil {
			return err
		}
	}
	if c.Order != 0 {
		if err := task.UpdateSortOrder(c.Order); err != nil {
			return err
		}
	}
	task.CategoryID = c.Category
	task.Priority = models.Priority(c.Priority)
	if err := task.Validate(); err != nil {
		return err
	}

	if err := ctx.Store.AddTemplateTask(task); err != nil {
		return err
	}
	fmt.Printf("Added task %q (%s) to routine %q\n", task.Title, task.ID, routine.Title)
	return nil
}

type TaskEditCmd struct {
	ID          string `arg:"" help:"Task ID."`
	Title       string `help:"New title."`
	Time        string `short:"t" help:"New time of day ('none' clears it back to the routine default)."`
	Duration    int    `short:"d" help:"New duration in minutes (0 clears)."`
	Priority    string `short:"p" help:"New priority (low|medium|high)."`
	Description string `help:"New description."`
	Order       int    `short:"o" help:"New sort order." default:"-1"`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTemplateTask(c.ID)
	if err != nil {
		return err
	}

	if c.Title != "" {
		if err := task.UpdateTitle(c.Title); err != nil {
			return err
		}
	}
	if c.Time != "" {
		timeStr := c.Time
		if timeStr == "none" {
			timeStr = ""
		}
		if err := task.UpdateTime(normalizeTime(timeStr)); err != nil {
			return err
		}
	}
	if c.Duration != 0 {
		duration := c.Duration
		if duration < 0 {
			duration = 0
		}
		if err := task.UpdateDuration(duration); err != nil {
			return err
		}
	}
	if c.Priority != "" {
		task.Priority = models.Priority(c.Priority)
	}
	if c.Description != "" {
		if err := task.UpdateDescription(c.Description); err != nil {
			return err
		}
	}
	if c.Order >= 0 {
		if err := task.UpdateSortOrder(c.Order); err != nil {
			return err
		}
	}

	task.UpdatedAt = time.Now()
	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.UpdateTemplateTask(task); err != nil {
		return err
	}
	fmt.Printf("Updated task %q\n", task.Title)
	return nil
}

type TaskListCmd struct {
	Routine string `arg:"" help:"Routine ID."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.Store.GetRoutine(c.Routine)
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.GetTemplateTasksByRoutine(routine.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Printf("Routine %q has no tasks.\n", routine.Title)
		return nil
	}

	for _, t := range tasks {
		timeLabel := t.EffectiveTime(routine.DefaultTime)
		if timeLabel == "" {
			timeLabel = "anytime"
		}
		duration := "-"
		if t.DurationMin > 0 {
			duration = fmt.Sprintf("%dm", t.DurationMin)
		}
		fmt.Printf("%s  %-30s %-9s %-5s [%s]\n", t.ID, t.Title, timeLabel, duration, t.Priority)
	}
	return nil
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := ctx.Store.GetTemplateTask(c.ID)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteTemplateTask(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted task %q\n", task.Title)
	return nil
}

func normalizeTime(timeStr string) string {
	if len(timeStr) == 5 {
		return timeStr + ":00"
	}
	return timeStr
}
