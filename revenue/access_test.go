package revenue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/revenue"
)

var (
	admin = revenue.Caller{UserID: "u-admin", LawFirmID: "firm-1", Role: revenue.RoleFirmAdmin}
	head  = revenue.Caller{UserID: "u-head", LawFirmID: "firm-1", Role: revenue.RoleDepartmentHead, DepartmentID: "litigation"}
	clerk = revenue.Caller{UserID: "u-clerk", LawFirmID: "firm-1", Role: "clerk", DepartmentID: "litigation"}
)

func TestAccess_RoleMatrix(t *testing.T) {
	cases := []struct {
		name   string
		caller revenue.Caller
		dept   revenue.DepartmentID
		manage bool
		read   bool
	}{
		{"admin firm-wide", admin, revenue.FirmWide, true, true},
		{"admin any department", admin, "conveyancing", true, true},
		{"head own department", head, "litigation", true, true},
		{"head other department", head, "conveyancing", false, false},
		{"head firm-wide", head, revenue.FirmWide, false, false},
		{"other role firm-wide", clerk, revenue.FirmWide, false, true},
		{"other role own department", clerk, "litigation", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.manage, revenue.CanManage(tc.caller, tc.dept), "manage")
			assert.Equal(t, tc.read, revenue.CanRead(tc.caller, tc.dept), "read")
		})
	}
}

func TestAccess_HeadWithoutDepartment(t *testing.T) {
	// GIVEN: A department head whose department is unknown
	// THEN: They cannot reach the firm-wide scope through the empty id

	orphan := revenue.Caller{LawFirmID: "firm-1", Role: revenue.RoleDepartmentHead}
	assert.False(t, revenue.CanManage(orphan, revenue.FirmWide))
	assert.False(t, revenue.CanRead(orphan, revenue.FirmWide))
}

func TestAuthorizeManage_ErrorNamesScope(t *testing.T) {
	err := revenue.AuthorizeManage(head, "conveyancing")

	require.ErrorIs(t, err, revenue.ErrUnauthorized)
	var aerr *revenue.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, revenue.RoleDepartmentHead, aerr.Role)
	assert.Equal(t, revenue.DepartmentID("conveyancing"), aerr.DepartmentID)
	assert.True(t, revenue.IsClientError(err))
}

func TestVisibleTargets(t *testing.T) {
	targets := []revenue.RevenueTarget{
		{ID: "t-firm", LawFirmID: "firm-1", Year: 2025, DepartmentID: revenue.FirmWide},
		{ID: "t-lit", LawFirmID: "firm-1", Year: 2025, DepartmentID: "litigation"},
		{ID: "t-conv", LawFirmID: "firm-1", Year: 2025, DepartmentID: "conveyancing"},
		{ID: "t-foreign", LawFirmID: "firm-2", Year: 2025, DepartmentID: "litigation"},
	}

	ids := func(ts []revenue.RevenueTarget) []revenue.TargetID {
		out := make([]revenue.TargetID, len(ts))
		for i, tg := range ts {
			out[i] = tg.ID
		}
		return out
	}

	assert.Equal(t, []revenue.TargetID{"t-firm", "t-lit", "t-conv"}, ids(revenue.VisibleTargets(admin, targets)))
	assert.Equal(t, []revenue.TargetID{"t-lit"}, ids(revenue.VisibleTargets(head, targets)))
	assert.Equal(t, []revenue.TargetID{"t-firm"}, ids(revenue.VisibleTargets(clerk, targets)))
}
