package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/hris-dtr-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterRepository_ListEmployees(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewRosterRepository(setup.DB)
	ctx := context.Background()

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO employees (employee_code, full_name, employment_status, biometric_codes, employee_no, deleted_at) VALUES
			('03-0946', 'Maria Cruz', 'active', ARRAY['B-555'], '0042', NULL),
			('03-0947', 'Jose Rizal', 'resigned', '{}', NULL, NULL),
			('03-0948', 'Ana Santos', 'active', '{}', NULL, NOW())
	`)
	require.NoError(t, err)

	active, err := repo.ListEmployees(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.NotEmpty(t, active[0].ID)
	assert.Equal(t, "03-0946", active[0].EmployeeID)
	assert.Equal(t, []string{"B-555"}, active[0].AlternateIDs)
	assert.Equal(t, "0042", active[0].EmployeeNo)
	assert.True(t, active[0].Active)

	all, err := repo.ListEmployees(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Jose Rizal", all[0].FullName)
	assert.False(t, all[0].Active)
	assert.Equal(t, "", all[0].EmployeeNo)
	assert.Empty(t, all[0].AlternateIDs)
}
