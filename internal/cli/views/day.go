package views

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD), defaults to today."`
}

// Run shows the day's tasks with their current statuses. For today it runs
// the catch-up sweep first so the statuses reflect the current time.
func (c *DayCmd) Run(ctx *cli.Context) error {
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

	records, err := ctx.Store.GetProgressByUserAndDate(user.ID, dateLocal)
	if err != nil {
		return err
	}

	fmt.Printf("%s — %s\n\n", user.Name, dateLocal)
	if len(records) == 0 {
		fmt.Println("No tasks scheduled.")
		return nil
	}

	entries, err := resolveEntries(ctx, records)
	if err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].timeLabel != entries[j].timeLabel {
			return entries[i].timeLabel < entries[j].timeLabel
		}
		return entries[i].title < entries[j].title
	})

	completed := 0
	for _, e := range entries {
		timeLabel := e.timeLabel
		if timeLabel == "" {
			timeLabel = "anytime "
		}
		line := fmt.Sprintf("%s %s  %s", cli.StatusGlyph(e.status), timeLabel, e.title)
		if e.notes != "" {
			line += fmt.Sprintf("  (%s)", e.notes)
		}
		fmt.Println(line)
		if e.status == models.StatusCompleted {
			completed++
		}
	}

	fmt.Printf("\n%d/%d completed\n", completed, len(entries))
	return nil
}

type dayEntry struct {
	title     string
	timeLabel string
	status    models.Status
	notes     string
}

// resolveEntries joins progress records with their template tasks and
// routines to recover titles and effective times.
func resolveEntries(ctx *cli.Context, records []models.TaskProgress) ([]dayEntry, error) {
	routineCache := make(map[string]models.Routine)

	var entries []dayEntry
	for _, record := range records {
		task, err := ctx.Store.GetTemplateTask(record.TemplateTaskID)
		if err != nil {
			// Template deleted after materialization; show what we have.
			entries = append(entries, dayEntry{
				title:  "(deleted task)",
				status: record.Status,
				notes:  record.Notes,
			})
			continue
		}

		routine, ok := routineCache[task.RoutineID]
		if !ok {
			routine, err = ctx.Store.GetRoutine(task.RoutineID)
			if err != nil {
				return nil, err
			}
			routineCache[task.RoutineID] = routine
		}

		timeLabel := task.EffectiveTime(routine.DefaultTime)
		if len(timeLabel) == 8 {
			timeLabel = timeLabel[:5]
		}
		entries = append(entries, dayEntry{
			title:     task.Title,
			timeLabel: timeLabel,
			status:    record.Status,
			notes:     record.Notes,
		})
	}
	return entries, nil
}
