package cli

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/scheduler"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/status"
	"github.com/julianstephens/routinely/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Status    *status.Service
	Scheduler *scheduler.Scheduler
	Stats     *stats.Aggregator

	// UserID is the --user flag, resolved lazily by ResolveUser.
	UserID string
}

// ResolveUser returns the user the command should act on. With no --user flag
// a single-user install resolves unambiguously; anything else is an error.
func (c *Context) ResolveUser() (models.User, error) {
	if c.UserID != "" {
		return c.Store.GetUser(c.UserID)
	}

	users, err := c.Store.GetAllUsers()
	if err != nil {
		return models.User{}, err
	}
	switch len(users) {
	case 0:
		return models.User{}, apperrors.NotFoundf("no users exist, run 'routinely user add' first")
	case 1:
		return users[0], nil
	default:
		return models.User{}, fmt.Errorf("multiple users exist, pass --user to pick one")
	}
}

var dayNames = map[string]int{
	"mon": 1, "monday": 1,
	"tue": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
	"sun": 7, "sunday": 7,
}

var dayLabels = [8]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ParseRepeatDays parses a comma-separated weekday list into ISO weekday
// numbers (1=Monday..7=Sunday). Names and numbers can be mixed.
func ParseRepeatDays(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	var days []int

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if day, ok := dayNames[part]; ok {
			days = append(days, day)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 1 || num > 7 {
			return nil, fmt.Errorf("invalid weekday %q (use mon..sun or 1..7)", part)
		}
		days = append(days, num)
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays given")
	}
	return days, nil
}

// FormatRepeatDays renders an ISO weekday set as short names.
func FormatRepeatDays(days []int) string {
	labels := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 1 && d <= 7 {
			labels = append(labels, dayLabels[d])
		}
	}
	return strings.Join(labels, ",")
}

// StatusGlyph maps a progress status to a one-character marker for lists.
func StatusGlyph(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "✓"
	case models.StatusInProgress:
		return "▶"
	case models.StatusSkipped:
		return "~"
	case models.StatusMissed:
		return "✗"
	default:
		return "·"
	}
}
