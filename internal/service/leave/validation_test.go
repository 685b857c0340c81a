package leave

import (
	"testing"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRange(t *testing.T) {
	existing := []leave.ApprovedLeave{
		{ID: "approved-1", EmployeeID: employeeOne, StartDate: date(t, "2025-06-10"), EndDate: date(t, "2025-06-12")},
		{ID: "approved-2", EmployeeID: employeeTwo, StartDate: date(t, "2025-06-01"), EndDate: date(t, "2025-06-30")},
	}

	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"before existing", "2025-06-01", "2025-06-09", nil},
		{"after existing", "2025-06-13", "2025-06-20", nil},
		{"touches first day", "2025-06-05", "2025-06-10", leave.ErrOverlappingLeave},
		{"touches last day", "2025-06-12", "2025-06-15", leave.ErrOverlappingLeave},
		{"inside existing", "2025-06-11", "2025-06-11", leave.ErrOverlappingLeave},
		{"covers existing", "2025-06-01", "2025-06-30", leave.ErrOverlappingLeave},
		{"end before start", "2025-06-05", "2025-06-04", leave.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(employeeOne, date(t, tt.start), date(t, tt.end), existing)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, leave.ErrValidation)
		})
	}
}

func TestValidateRange_NamesConflictingLeave(t *testing.T) {
	existing := []leave.ApprovedLeave{
		{ID: "approved-1", EmployeeID: employeeOne, StartDate: date(t, "2025-06-10"), EndDate: date(t, "2025-06-12")},
	}

	err := ValidateRange(employeeOne, date(t, "2025-06-11"), date(t, "2025-06-14"), existing)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "overlaps approved leave approved-1 (2025-06-10 to 2025-06-12)", verrs.ToMap()["start_date"])
}
