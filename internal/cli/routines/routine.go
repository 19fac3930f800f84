package routines

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
)

type RoutineAddCmd struct {
	Title string `arg:"" help:"Routine title."`
	Days  string `short:"d" required:"" help:"Comma-separated repeat days (mon..sun or 1..7)."`
	Time  string `short:"t" help:"Default time of day (HH:MM or HH:MM:SS) inherited by tasks."`
}

func (c *RoutineAddCmd) Run(ctx *cli.Context) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}

	days, err := cli.ParseRepeatDays(c.Days)
	if err != nil {
		return err
	}

	routine, err := models.NewRoutine(uuid.NewString(), user.ID, c.Title, normalizeTime(c.Time), days, time.Now())
	if err != nil {
		return err
	}

	if err := ctx.Store.AddRoutine(routine); err != nil {
		return err
	}
	fmt.Printf("Added routine %q (%s) on %s\n", routine.Title, routine.ID, cli.FormatRepeatDays(routine.RepeatDays))
	return nil
}

type RoutineListCmd struct{}

func (c *RoutineListCmd) Run(ctx *cli.Context) error {
	user, err := ctx.ResolveUser()
	if err != nil {
		return err
	}

	routines, err := ctx.Store.GetRoutinesByUser(user.ID)
	if err != nil {
		return err
	}
	if len(routines) == 0 {
		fmt.Println("No routines yet. Add one with 'routinely routine add'.")
		return nil
	}

	for _, r := range routines {
		state := "active"
		if !r.Active {
			state = "inactive"
		}
		timeLabel := r.DefaultTime
		if timeLabel == "" {
			timeLabel = "-"
		}
		fmt.Printf("%s  %-30s %-12s %-9s %s\n", r.ID, r.Title, cli.FormatRepeatDays(r.RepeatDays), timeLabel, state)
	}
	return nil
}

type RoutineShowCmd struct {
	ID string `arg:"" help:"Routine ID."`
}

func (c *RoutineShowCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.Store.GetRoutine(c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Routine: %s\n", routine.Title)
	fmt.Printf("  ID:      %s\n", routine.ID)
	fmt.Printf("  Days:    %s\n", cli.FormatRepeatDays(routine.RepeatDays))
	if routine.DefaultTime != "" {
		fmt.Printf("  Time:    %s\n", routine.DefaultTime)
	}
	fmt.Printf("  Active:  %v\n", routine.Active)

	tasks, err := ctx.Store.GetTemplateTasksByRoutine(routine.ID)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("  Tasks:   none")
		return nil
	}

	fmt.Println("  Tasks:")
	for _, t := range tasks {
		timeLabel := t.EffectiveTime(routine.DefaultTime)
		if timeLabel == "" {
			timeLabel = "anytime"
		}
		duration := ""
		if t.DurationMin > 0 {
			duration = fmt.Sprintf(" (%dm)", t.DurationMin)
		}
		fmt.Printf("    %s  %-30s %s%s [%s]\n", t.ID, t.Title, timeLabel, duration, t.Priority)
	}
	return nil
}

type RoutineEnableCmd struct {
	ID string `arg:"" help:"Routine ID."`
}

func (c *RoutineEnableCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.ID, true)
}

type RoutineDisableCmd struct {
	ID string `arg:"" help:"Routine ID."`
}

func (c *RoutineDisableCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.ID, false)
}

func setActive(ctx *cli.Context, id string, active bool) error {
	routine, err := ctx.Store.GetRoutine(id)
	if err != nil {
		return err
	}

	if active {
		routine.Activate()
	} else {
		routine.Deactivate()
	}
	if err := ctx.Store.UpdateRoutine(routine); err != nil {
		return err
	}

	state := "enabled"
	if !active {
		state = "disabled"
	}
	fmt.Printf("Routine %q %s\n", routine.Title, state)
	return nil
}

type RoutineEditCmd struct {
	ID    string `arg:"" help:"Routine ID."`
	Title string `help:"New title."`
	Days  string `short:"d" help:"New comma-separated repeat days."`
	Time  string `short:"t" help:"New default time of day ('none' clears it)."`
}

func (c *RoutineEditCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.Store.GetRoutine(c.ID)
	if err != nil {
		return err
	}

	if c.Title != "" {
		if err := routine.UpdateTitle(c.Title); err != nil {
			return err
		}
	}
	if c.Days != "" {
		days, err := cli.ParseRepeatDays(c.Days)
		if err != nil {
			return err
		}
		if err := routine.UpdateRepeatDays(days); err != nil {
			return err
		}
	}
	if c.Time != "" {
		timeStr := c.Time
		if timeStr == "none" {
			timeStr = ""
		}
		if err := routine.UpdateDefaultTime(normalizeTime(timeStr)); err != nil {
			return err
		}
	}

	if err := ctx.Store.UpdateRoutine(routine); err != nil {
		return err
	}
	fmt.Printf("Updated routine %q\n", routine.Title)
	return nil
}

type RoutineDeleteCmd struct {
	ID string `arg:"" help:"Routine ID."`
}

func (c *RoutineDeleteCmd) Run(ctx *cli.Context) error {
	routine, err := ctx.Store.GetRoutine(c.ID)
	if err != nil {
		return err
	}

	// Template tasks and progress records go with it via foreign keys.
	if err := ctx.Store.DeleteRoutine(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted routine %q and its tasks\n", routine.Title)
	return nil
}

// normalizeTime pads HH:MM input to the stored HH:MM:SS form.
func normalizeTime(timeStr string) string {
	if len(timeStr) == 5 {
		return timeStr + ":00"
	}
	return timeStr
}
