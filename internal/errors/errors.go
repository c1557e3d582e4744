package errors

import (
	"fmt"

	"github.com/julianstephens/taskdash/internal/logger"
)

const (
	// InitHint is the next step for errors caused by missing storage.
	InitHint = "run 'taskdash init' first"
	// GraphHint is the next step when the notes graph is missing.
	GraphHint = "run 'taskdash init' or 'taskdash graph import' first"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Hinted is an error carrying the next step the user should take.
type Hinted struct {
	Err  error
	Hint string
}

func (h *Hinted) Error() string {
	return fmt.Sprintf("%v (%s)", h.Err, h.Hint)
}

func (h *Hinted) Unwrap() error { return h.Err }

// WithHint attaches a suggested next step to err. A nil err stays nil.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &Hinted{Err: err, Hint: hint}
}

// Absorb logs a failed best-effort operation and swallows the error.
func Absorb(op string, err error) {
	if err != nil {
		logger.Warn("best-effort operation failed", "op", op, "error", err)
	}
}
