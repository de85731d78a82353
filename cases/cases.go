/*
Package cases provides the payment-producing case collaborators.

PURPOSE:
  Credit cases (debt recovery) and legal cases (litigation) both collect
  money from clients. Each exposes its payments to the revenue engine as a
  revenue.PaymentSource; the engine never learns which one produced a
  record.

CASE TYPES AND PURPOSES:
  credit: credit_payment, escalation_fee
  legal:  filing_fee, legal_payment

STORAGE:
  Both case types share one PaymentLedger, partitioned by CaseType.
  Implementations: revenue/store (memory), store/sqlite, store/postgres.

USAGE:
  ledger := sqlite.New("revenue.db")
  agg := revenue.NewAggregator(cases.Sources(ledger)...)
*/
package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// CASE TYPE
// =============================================================================

type CaseType string

const (
	CaseCredit CaseType = "credit"
	CaseLegal  CaseType = "legal"
)

var purposes = map[CaseType][]revenue.PaymentPurpose{
	CaseCredit: {revenue.PurposeCreditPayment, revenue.PurposeEscalationFee},
	CaseLegal:  {revenue.PurposeFilingFee, revenue.PurposeLegalPayment},
}

// Allows reports whether a case type can produce a payment with this purpose.
func (t CaseType) Allows(p revenue.PaymentPurpose) bool {
	for _, allowed := range purposes[t] {
		if allowed == p {
			return true
		}
	}
	return false
}

// =============================================================================
// CASE PAYMENT - A payment with the case that produced it
// =============================================================================

type CasePayment struct {
	revenue.Payment
	CaseType CaseType
	CaseID   string
}

// Validate checks the payment before it is recorded.
func (p CasePayment) Validate() error {
	if _, ok := purposes[p.CaseType]; !ok {
		return &revenue.ValidationError{Field: "case_type", Message: fmt.Sprintf("unknown case type %q", p.CaseType)}
	}
	if !p.CaseType.Allows(p.Purpose) {
		return &revenue.ValidationError{Field: "purpose", Message: fmt.Sprintf("%s cases do not produce %s payments", p.CaseType, p.Purpose)}
	}
	switch p.Status {
	case revenue.PaymentCompleted, revenue.PaymentPending, revenue.PaymentFailed:
	default:
		return &revenue.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", p.Status)}
	}
	if !p.Amount.IsPositive() {
		return &revenue.ValidationError{Field: "amount", Message: "must be positive"}
	}
	if p.ID == "" || p.LawFirmID == "" || p.CaseID == "" {
		return &revenue.ValidationError{Field: "id", Message: "payment, firm and case ids are required"}
	}
	if p.PaidAt.IsZero() {
		return &revenue.ValidationError{Field: "paid_at", Message: "is required"}
	}
	return nil
}

// PaymentLedger stores case payments for both case types.
type PaymentLedger interface {
	SaveCasePayment(ctx context.Context, p CasePayment) error

	// ListCasePayments returns completed payments of one case type matching
	// the filter, ordered by PaidAt.
	ListCasePayments(ctx context.Context, caseType CaseType, lawFirmID revenue.LawFirmID, filter revenue.PaymentFilter) ([]revenue.Payment, error)
}

// RecordPayment validates and stores a case payment.
func RecordPayment(ctx context.Context, ledger PaymentLedger, p CasePayment) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.PaidAt = p.PaidAt.UTC()
	return ledger.SaveCasePayment(ctx, p)
}

// =============================================================================
// PAYMENT SOURCES
// =============================================================================

// CreditCases exposes credit-case payments as a revenue.PaymentSource.
type CreditCases struct {
	Ledger PaymentLedger
}

func (c CreditCases) ListCompletedPayments(ctx context.Context, lawFirmID revenue.LawFirmID, filter revenue.PaymentFilter) ([]revenue.Payment, error) {
	return c.Ledger.ListCasePayments(ctx, CaseCredit, lawFirmID, filter)
}

// LegalCases exposes legal-case payments as a revenue.PaymentSource.
type LegalCases struct {
	Ledger PaymentLedger
}

func (l LegalCases) ListCompletedPayments(ctx context.Context, lawFirmID revenue.LawFirmID, filter revenue.PaymentFilter) ([]revenue.Payment, error) {
	return l.Ledger.ListCasePayments(ctx, CaseLegal, lawFirmID, filter)
}

var (
	_ revenue.PaymentSource = CreditCases{}
	_ revenue.PaymentSource = LegalCases{}
)

// Sources returns every payment source backed by the ledger.
func Sources(ledger PaymentLedger) []revenue.PaymentSource {
	return []revenue.PaymentSource{CreditCases{Ledger: ledger}, LegalCases{Ledger: ledger}}
}

// InRange is a helper for ledgers that filter in memory.
func InRange(t time.Time, f revenue.PaymentFilter) bool {
	return !t.Before(f.From) && t.Before(f.To)
}
