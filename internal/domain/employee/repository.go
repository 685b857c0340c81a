package employee

import "context"

// Directory resolves employee identifiers owned by the employee directory.
// The leave core only needs to know whether an employee exists.
type Directory interface {
	Exists(ctx context.Context, id string) (bool, error)
}
