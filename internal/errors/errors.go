package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/routinely/internal/logger"
)

// Sentinel errors for the failure taxonomy. Callers branch with errors.Is;
// storage and service layers wrap these with context via %w.
var (
	// ErrNotFound indicates a referenced user/routine/task/progress row is absent.
	ErrNotFound = stderrors.New("not found")

	// ErrValidation indicates malformed input (dates, times, durations, lengths)
	// rejected before any state mutation.
	ErrValidation = stderrors.New("validation failed")

	// ErrGatingViolation indicates a backward status transition attempted outside
	// the task's permitted time window.
	ErrGatingViolation = stderrors.New("status change not allowed outside task time window")
)

// NotFoundf wraps ErrNotFound with a formatted description.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// Validationf wraps ErrValidation with a formatted description.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// Is reports whether err matches target. Re-exported so callers that alias
// this package over the standard library keep access to errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
