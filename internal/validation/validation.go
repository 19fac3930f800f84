package validation

import (
	"strings"

	"github.com/julianstephens/routinely/internal/constants"
	apperrors "github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/utils"
)

// Field validators shared by the entities and the CLI. Each returns an error
// wrapping apperrors.ErrValidation so callers reject bad input before any
// state mutation.

// Title checks routine and task titles.
func Title(title string) error {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < constants.MinTitleLen {
		return apperrors.Validationf("title must be at least %d characters", constants.MinTitleLen)
	}
	if len(title) > constants.MaxTitleLen {
		return apperrors.Validationf("title cannot exceed %d characters", constants.MaxTitleLen)
	}
	return nil
}

// Date checks a YYYY-MM-DD calendar date string.
func Date(dateStr string) error {
	if !utils.ValidateDateFormat(dateStr) {
		return apperrors.Validationf("invalid date %q, use YYYY-MM-DD", dateStr)
	}
	return nil
}

// TimeOfDay checks an HH:MM:SS time-of-day string. Empty is allowed; a task
// without a time never auto-expires before end of day.
func TimeOfDay(timeStr string) error {
	if timeStr == "" {
		return nil
	}
	if !utils.ValidateTimeFormat(timeStr) {
		return apperrors.Validationf("invalid time %q, use HH:MM:SS", timeStr)
	}
	return nil
}

// Duration checks a task duration in minutes. Zero means "no duration".
func Duration(minutes int) error {
	if minutes == 0 {
		return nil
	}
	if minutes < constants.MinDurationMin || minutes > constants.MaxDurationMin {
		return apperrors.Validationf("duration must be between %d and %d minutes", constants.MinDurationMin, constants.MaxDurationMin)
	}
	return nil
}

// RepeatDays checks a routine's weekday set (1=Monday..7=Sunday, non-empty).
func RepeatDays(days []int) error {
	if len(days) == 0 {
		return apperrors.Validationf("repeat days must be provided")
	}
	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if day < constants.MinWeekday || day > constants.MaxWeekday {
			return apperrors.Validationf("repeat day %d out of range, use 1 (Monday) to 7 (Sunday)", day)
		}
		if seen[day] {
			return apperrors.Validationf("repeat day %d given more than once", day)
		}
		seen[day] = true
	}
	return nil
}

// Description checks an optional template-task description.
func Description(desc string) error {
	if len(desc) > constants.MaxDescriptionLen {
		return apperrors.Validationf("description cannot exceed %d characters", constants.MaxDescriptionLen)
	}
	return nil
}

// Notes checks an optional progress annotation.
func Notes(notes string) error {
	if len(notes) > constants.MaxNotesLen {
		return apperrors.Validationf("notes cannot exceed %d characters", constants.MaxNotesLen)
	}
	return nil
}

// SortOrder checks a template task's ordering index.
func SortOrder(order int) error {
	if order < 0 {
		return apperrors.Validationf("sort order must be non-negative")
	}
	return nil
}
