/*
access.go - Role-based scoping of targets and performance reads

POLICY TABLE:
  Role             manage (set/delete)          read (targets, performance)
  firm_admin       any department or firm-wide  any department or firm-wide
  department_head  own department only          own department only
  anything else    nothing                      firm-wide only

Out-of-scope requests always fail with an AuthorizationError. The scoper
never narrows a request to something the caller is allowed to see.
*/
package revenue

// =============================================================================
// CALLER
// =============================================================================

type Role string

const (
	RoleFirmAdmin      Role = "firm_admin"
	RoleDepartmentHead Role = "department_head"
)

// Caller is the identity of the request, supplied by the identity subsystem.
type Caller struct {
	UserID       UserID
	LawFirmID    LawFirmID
	Role         Role
	DepartmentID DepartmentID // department the caller belongs to, if any
}

type Action string

const (
	ActionManage Action = "manage targets of"
	ActionRead   Action = "read performance of"
)

// =============================================================================
// POLICY TABLE
// =============================================================================

type scopeFunc func(c Caller, dept DepartmentID) bool

type scopeRule struct {
	manage scopeFunc
	read   scopeFunc
}

func anyDepartment(Caller, DepartmentID) bool { return true }
func nothing(Caller, DepartmentID) bool { return false }

func ownDepartment(c Caller, dept DepartmentID) bool {
	return !c.DepartmentID.IsFirmWide() && dept == c.DepartmentID
}

func firmWideOnly(_ Caller, dept DepartmentID) bool { return dept.IsFirmWide() }

var accessPolicy = map[Role]scopeRule{
	RoleFirmAdmin:      {manage: anyDepartment, read: anyDepartment},
	RoleDepartmentHead: {manage: ownDepartment, read: ownDepartment},
}

var defaultRule = scopeRule{manage: nothing, read: firmWideOnly}

func ruleFor(role Role) scopeRule {
	if r, ok := accessPolicy[role]; ok {
		return r
	}
	return defaultRule
}

// =============================================================================
// CHECKS
// =============================================================================

func CanManage(c Caller, dept DepartmentID) bool { return ruleFor(c.Role).manage(c, dept) }
func CanRead(c Caller, dept DepartmentID) bool { return ruleFor(c.Role).read(c, dept) }

// AuthorizeManage returns an AuthorizationError unless the caller may set or
// delete targets of dept.
func AuthorizeManage(c Caller, dept DepartmentID) error {
	if !CanManage(c, dept) {
		return &AuthorizationError{Role: c.Role, Action: ActionManage, DepartmentID: dept}
	}
	return nil
}

// AuthorizeRead returns an AuthorizationError unless the caller may read
// targets and performance of dept.
func AuthorizeRead(c Caller, dept DepartmentID) error {
	if !CanRead(c, dept) {
		return &AuthorizationError{Role: c.Role, Action: ActionRead, DepartmentID: dept}
	}
	return nil
}

// VisibleTargets filters targets down to the ones the caller may read.
func VisibleTargets(c Caller, targets []RevenueTarget) []RevenueTarget {
	visible := make([]RevenueTarget, 0, len(targets))
	for _, t := range targets {
		if t.LawFirmID == c.LawFirmID && CanRead(c, t.DepartmentID) {
			visible = append(visible, t)
		}
	}
	return visible
}
