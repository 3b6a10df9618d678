package roster

import "context"

type RosterRepository interface {
	// ListEmployees returns the roster ordered by full name. Resigned and
	// terminated employees are only included when includeInactive is set.
	ListEmployees(ctx context.Context, includeInactive bool) ([]EmployeeIdentity, error)
}
