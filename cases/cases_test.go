package cases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
	"github.com/warp/revenue-engine/revenue/store"
)

func legalPayment(id string, amount revenue.Money, status revenue.PaymentStatus, at time.Time) cases.CasePayment {
	return cases.CasePayment{
		Payment: revenue.Payment{
			ID:           id,
			LawFirmID:    "firm-1",
			DepartmentID: "litigation",
			Amount:       amount,
			Purpose:      revenue.PurposeFilingFee,
			Status:       status,
			PaidAt:       at,
		},
		CaseType: cases.CaseLegal,
		CaseID:   "legal-42",
	}
}

func TestCaseType_Allows(t *testing.T) {
	assert.True(t, cases.CaseCredit.Allows(revenue.PurposeCreditPayment))
	assert.True(t, cases.CaseCredit.Allows(revenue.PurposeEscalationFee))
	assert.True(t, cases.CaseLegal.Allows(revenue.PurposeFilingFee))
	assert.True(t, cases.CaseLegal.Allows(revenue.PurposeLegalPayment))

	assert.False(t, cases.CaseCredit.Allows(revenue.PurposeFilingFee))
	assert.False(t, cases.CaseLegal.Allows(revenue.PurposeEscalationFee))
}

func TestCasePayment_Validate(t *testing.T) {
	at := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(p *cases.CasePayment)
		field  string
	}{
		{"unknown case type", func(p *cases.CasePayment) { p.CaseType = "probate" }, "case_type"},
		{"purpose of other case type", func(p *cases.CasePayment) { p.Purpose = revenue.PurposeCreditPayment }, "purpose"},
		{"unknown status", func(p *cases.CasePayment) { p.Status = "refunded" }, "status"},
		{"zero amount", func(p *cases.CasePayment) { p.Amount = 0 }, "amount"},
		{"missing case id", func(p *cases.CasePayment) { p.CaseID = "" }, "id"},
		{"missing paid_at", func(p *cases.CasePayment) { p.PaidAt = time.Time{} }, "paid_at"},
	}

	require.NoError(t, legalPayment("p-ok", 100, revenue.PaymentCompleted, at).Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := legalPayment("p-1", 100, revenue.PaymentCompleted, at)
			tc.mutate(&p)

			err := p.Validate()
			require.ErrorIs(t, err, revenue.ErrValidation)
			var verr *revenue.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestSources_SplitByCaseType(t *testing.T) {
	// GIVEN: One legal and one credit payment in the same ledger
	// THEN: Each source only sees its own case type

	ledger := store.NewMemory()
	ctx := context.Background()
	at := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	require.NoError(t, cases.RecordPayment(ctx, ledger, legalPayment("p-legal", 300, revenue.PaymentCompleted, at)))

	credit := legalPayment("p-credit", 700, revenue.PaymentCompleted, at)
	credit.CaseType = cases.CaseCredit
	credit.Purpose = revenue.PurposeEscalationFee
	require.NoError(t, cases.RecordPayment(ctx, ledger, credit))

	filter := revenue.PaymentFilter{From: at.AddDate(0, 0, -1), To: at.AddDate(0, 0, 1)}

	legal, err := cases.LegalCases{Ledger: ledger}.ListCompletedPayments(ctx, "firm-1", filter)
	require.NoError(t, err)
	require.Len(t, legal, 1)
	assert.Equal(t, "p-legal", legal[0].ID)

	creditOnly, err := cases.CreditCases{Ledger: ledger}.ListCompletedPayments(ctx, "firm-1", filter)
	require.NoError(t, err)
	require.Len(t, creditOnly, 1)
	assert.Equal(t, revenue.Money(700), creditOnly[0].Amount)

	assert.Len(t, cases.Sources(ledger), 2)
}

func TestRecordPayment_RejectsInvalid(t *testing.T) {
	ledger := store.NewMemory()
	ctx := context.Background()

	bad := legalPayment("p-bad", -5, revenue.PaymentCompleted, time.Now())
	assert.ErrorIs(t, cases.RecordPayment(ctx, ledger, bad), revenue.ErrValidation)

	got, err := ledger.ListCasePayments(ctx, cases.CaseLegal, "firm-1", revenue.PaymentFilter{
		From: time.Time{}, To: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordPayment_NormalizesToUTC(t *testing.T) {
	ledger := store.NewMemory()
	ctx := context.Background()
	nairobi := time.FixedZone("EAT", 3*60*60)

	// 02:00 on 1 July in Nairobi is still 30 June in UTC.
	p := legalPayment("p-tz", 100, revenue.PaymentCompleted, time.Date(2025, 7, 1, 2, 0, 0, 0, nairobi))
	require.NoError(t, cases.RecordPayment(ctx, ledger, p))

	june := revenue.PaymentFilter{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	got, err := ledger.ListCasePayments(ctx, cases.CaseLegal, "firm-1", june)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.UTC, got[0].PaidAt.Location())
}

func TestInRange(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f := revenue.PaymentFilter{From: from, To: to}

	assert.True(t, cases.InRange(from, f))
	assert.False(t, cases.InRange(to, f))
	assert.False(t, cases.InRange(from.Add(-time.Nanosecond), f))
}
