package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-dtr-go/internal/domain/roster"
	"github.com/cmlabs-hris/hris-dtr-go/internal/pkg/database"
)

const employmentStatusActive = "active"

type rosterRepositoryImpl struct {
	db *database.DB
}

func NewRosterRepository(db *database.DB) roster.RosterRepository {
	return &rosterRepositoryImpl{db: db}
}

// ListEmployees implements roster.RosterRepository.
func (r *rosterRepositoryImpl) ListEmployees(ctx context.Context, includeInactive bool) ([]roster.EmployeeIdentity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, COALESCE(biometric_codes, '{}'), COALESCE(employee_no, ''),
			   full_name, employment_status
		FROM employees
		WHERE deleted_at IS NULL
		  AND ($1 OR employment_status = $2)
		ORDER BY full_name, id
	`

	rows, err := q.Query(ctx, query, includeInactive, employmentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer rows.Close()

	employees := make([]roster.EmployeeIdentity, 0)
	for rows.Next() {
		var emp roster.EmployeeIdentity
		var status string
		if err := rows.Scan(
			&emp.ID, &emp.EmployeeID, &emp.AlternateIDs, &emp.EmployeeNo,
			&emp.FullName, &status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		emp.Active = status == employmentStatusActive
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roster: %w", err)
	}

	return employees, nil
}
