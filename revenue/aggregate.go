package revenue

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PAYMENT SOURCE - Collaborator contract implemented by case types
// =============================================================================

// PaymentFilter bounds a payment listing. An empty DepartmentID means every
// department of the firm, including payments with no department.
type PaymentFilter struct {
	DepartmentID DepartmentID
	From         time.Time // inclusive
	To           time.Time // exclusive
}

// PaymentSource lists completed payments for a firm. Credit cases and legal
// cases each provide one; the aggregator treats them identically.
type PaymentSource interface {
	ListCompletedPayments(ctx context.Context, lawFirmID LawFirmID, filter PaymentFilter) ([]Payment, error)
}

// =============================================================================
// AGGREGATOR - Sums actual revenue over a range
// =============================================================================

// Aggregator sums completed payments across every source. It holds no state
// besides its sources, so one instance serves concurrent requests.
type Aggregator struct {
	Sources []PaymentSource
}

func NewAggregator(sources ...PaymentSource) *Aggregator {
	return &Aggregator{Sources: sources}
}

// AggregateActual sums completed payments with PaidAt in [start, end).
// Sources are trusted for the query but every record is re-checked, so a
// source that over-returns cannot leak pending, failed or foreign rows.
func (a *Aggregator) AggregateActual(ctx context.Context, lawFirmID LawFirmID, departmentID DepartmentID, start, end time.Time) (Money, error) {
	if !start.Before(end) {
		return 0, invalid("range", "start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	filter := PaymentFilter{DepartmentID: departmentID, From: start, To: end}
	var total Money
	for _, src := range a.Sources {
		payments, err := src.ListCompletedPayments(ctx, lawFirmID, filter)
		if err != nil {
			return 0, fmt.Errorf("list payments: %w", err)
		}
		for _, p := range payments {
			if counts(p, lawFirmID, filter) {
				total = total.Add(p.Amount)
			}
		}
	}
	return total, nil
}

func counts(p Payment, lawFirmID LawFirmID, f PaymentFilter) bool {
	if p.Status != PaymentCompleted || p.LawFirmID != lawFirmID {
		return false
	}
	if !f.DepartmentID.IsFirmWide() && p.DepartmentID != f.DepartmentID {
		return false
	}
	return !p.PaidAt.Before(f.From) && p.PaidAt.Before(f.To)
}
