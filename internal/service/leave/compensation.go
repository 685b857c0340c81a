package leave

import (
	"context"
	"log/slog"
)

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// compensator records the inverse of each completed write so a multi-record
// operation can return the stores to their pre-call state on a non-atomic
// store. On an atomic store it records nothing and the transaction rollback
// does the work.
type compensator struct {
	enabled bool
	steps   []undoStep
}

func (c *compensator) add(name string, fn func(ctx context.Context) error) {
	if !c.enabled {
		return
	}
	c.steps = append(c.steps, undoStep{name: name, fn: fn})
}

// rollback runs the recorded steps newest first. Failures are logged and do
// not stop the remaining steps.
func (c *compensator) rollback(ctx context.Context) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "compensation step failed", "step", step.name, "error", err)
		}
	}
	c.steps = nil
}
