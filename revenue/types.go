/*
Package revenue provides the revenue target and performance tracking engine.

PURPOSE:
  A law firm sets one revenue target per year, either firm-wide or for a
  single department. Dashboards ask how the firm (or a department) is doing
  for a month, a week, or a single day. The engine answers by prorating the
  yearly target onto that sub-period, summing completed payments inside it,
  and classifying the result.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: integer minor currency units (cents, KES cents)
  - RevenueTarget: the stored yearly target row
  - Payment: a read-only payment record produced by case collaborators
  - PerformanceResult: the derived, never-persisted answer

DESIGN PRINCIPLES:
  1. Precision: Money is an integer count of minor units; fractional math
     goes through decimal.Decimal and is rounded half-to-even.
  2. Purity: resolution, aggregation and evaluation never mutate anything.
  3. Type Safety: firm and department IDs are distinct types.

USAGE:
  target := revenue.RevenueTarget{
      LawFirmID:    "firm-1",
      Year:         2025,
      DepartmentID: revenue.FirmWide,
      YearlyTarget: revenue.Money(1_200_000),
  }

SEE ALSO:
  - period.go: Period resolution and proration
  - aggregate.go: Actual revenue aggregation
  - evaluate.go: Status classification
  - access.go: Role-based scoping
  - engine.go: Request-level orchestration
*/
package revenue

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer minor currency units
// =============================================================================

// Money is an amount in minor currency units. 1 KES = 100 Money.
type Money int64

func (m Money) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(m)) }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsZero() bool { return m == 0 }
func (m Money) Add(o Money) Money { return m + o }
func (m Money) Sub(o Money) Money { return m - o }
func (m Money) String() string { return strconv.FormatInt(int64(m), 10) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type LawFirmID string
type DepartmentID string
type TargetID string
type UserID string

// FirmWide is the department value of a target that covers the whole firm.
// It is a key value of its own, never a wildcard.
const FirmWide DepartmentID = ""

func (d DepartmentID) IsFirmWide() bool { return d == FirmWide }

// String renders the department for logs and error messages.
func (d DepartmentID) String() string {
	if d.IsFirmWide() {
		return "firm-wide"
	}
	return string(d)
}

// =============================================================================
// REVENUE TARGET - One row per (firm, year, department)
// =============================================================================

type RevenueTarget struct {
	ID           TargetID
	LawFirmID    LawFirmID
	Year         int
	DepartmentID DepartmentID
	YearlyTarget Money
	CreatedBy    UserID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the uniqueness key of the target.
func (t RevenueTarget) Key() TargetKey {
	return TargetKey{LawFirmID: t.LawFirmID, Year: t.Year, DepartmentID: t.DepartmentID}
}

// TargetKey identifies at most one RevenueTarget.
type TargetKey struct {
	LawFirmID    LawFirmID
	Year         int
	DepartmentID DepartmentID
}

// =============================================================================
// PAYMENT - Read-only capability shared by every payment-producing case type
// =============================================================================

type PaymentPurpose string

const (
	PurposeFilingFee     PaymentPurpose = "filing_fee"
	PurposeLegalPayment  PaymentPurpose = "legal_payment"
	PurposeCreditPayment PaymentPurpose = "credit_payment"
	PurposeEscalationFee PaymentPurpose = "escalation_fee"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID           string
	LawFirmID    LawFirmID
	DepartmentID DepartmentID // FirmWide when the case has no department
	Amount       Money
	Purpose      PaymentPurpose
	Status       PaymentStatus
	PaidAt       time.Time
}

// =============================================================================
// PERFORMANCE RESULT - Derived on demand, never stored
// =============================================================================

type Status string

const (
	StatusOnTrack  Status = "on_track"
	StatusAtRisk   Status = "at_risk"
	StatusBehind   Status = "behind"
	StatusNoTarget Status = "no_target"
)

type PerformanceResult struct {
	PeriodLabel  string
	Granularity  Granularity
	PeriodStart  time.Time
	PeriodEnd    time.Time // exclusive
	DepartmentID DepartmentID
	HasTarget    bool
	YearlyTarget Money
	PeriodTarget Money
	Actual       Money
	Percentage   decimal.Decimal
	Status       Status
	Delta        Money
}
