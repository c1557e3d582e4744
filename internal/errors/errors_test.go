package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("view not found"), expected: "Error: view not found"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("failed to save views: %w", errors.New("disk full")),
			expected: "Error: failed to save views: disk full",
		},
		{
			name:     "hinted error",
			err:      WithHint(errors.New("not initialized"), InitHint),
			expected: "Error: not initialized (run 'taskdash init' first)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestWithHint(t *testing.T) {
	base := errors.New("graph missing")
	err := WithHint(fmt.Errorf("open: %w", base), "import a graph")

	assert.ErrorIs(t, err, base)
	var h *Hinted
	assert.True(t, errors.As(err, &h))
	assert.Equal(t, "import a graph", h.Hint)
	assert.NoError(t, WithHint(nil, "anything"))
}

func TestAbsorbWithoutLogger(t *testing.T) {
	// must not panic when the logger was never initialized
	Absorb("save views", errors.New("boom"))
	Absorb("save views", nil)
}
