package leave

import (
	"strings"
	"testing"

	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLeaveRequestRequest_ReasonCountsCharacters(t *testing.T) {
	withReason := func(reason string) *CreateLeaveRequestRequest {
		return &CreateLeaveRequestRequest{
			EmployeeID: "0190f3a2-7c4e-7b1a-9d2e-000000000001",
			StartDate:  "2024-03-04",
			EndDate:    "2024-03-06",
			LeaveType:  string(LeaveTypeAnnual),
			Reason:     &reason,
		}
	}

	// é takes two bytes in UTF-8 and 休 three.
	assert.NoError(t, withReason(strings.Repeat("é", MaxReasonLength)).Validate())
	assert.NoError(t, withReason(strings.Repeat("休", MaxReasonLength)).Validate())

	err := withReason(strings.Repeat("é", MaxReasonLength+1)).Validate()
	var fields validator.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields.ToMap(), "reason")
}
