package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// TEST SOURCES
// =============================================================================

// sliceSource returns every payment it holds, ignoring the filter, so the
// aggregator's own re-check is what is under test.
type sliceSource []revenue.Payment

func (s sliceSource) ListCompletedPayments(context.Context, revenue.LawFirmID, revenue.PaymentFilter) ([]revenue.Payment, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) ListCompletedPayments(context.Context, revenue.LawFirmID, revenue.PaymentFilter) ([]revenue.Payment, error) {
	return nil, errors.New("ledger unavailable")
}

func pay(id string, dept revenue.DepartmentID, amount revenue.Money, status revenue.PaymentStatus, at time.Time) revenue.Payment {
	return revenue.Payment{
		ID:           id,
		LawFirmID:    "firm-1",
		DepartmentID: dept,
		Amount:       amount,
		Purpose:      revenue.PurposeLegalPayment,
		Status:       status,
		PaidAt:       at,
	}
}

var (
	june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	july1 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
)

// =============================================================================
// TESTS
// =============================================================================

func TestAggregateActual_OnlyCompleted(t *testing.T) {
	// GIVEN: 500 completed and 300 pending in June
	// THEN: Actual is 500

	agg := revenue.NewAggregator(sliceSource{
		pay("p1", "litigation", 500, revenue.PaymentCompleted, june1.Add(48*time.Hour)),
		pay("p2", "litigation", 300, revenue.PaymentPending, june1.Add(72*time.Hour)),
		pay("p3", "litigation", 200, revenue.PaymentFailed, june1.Add(96*time.Hour)),
	})

	actual, err := agg.AggregateActual(context.Background(), "firm-1", revenue.FirmWide, june1, july1)
	require.NoError(t, err)
	assert.Equal(t, revenue.Money(500), actual)
}

func TestAggregateActual_HalfOpenRange(t *testing.T) {
	// GIVEN: Payments exactly at start and exactly at end
	// THEN: Start is included, end is not

	agg := revenue.NewAggregator(sliceSource{
		pay("p-start", "litigation", 100, revenue.PaymentCompleted, june1),
		pay("p-last", "litigation", 10, revenue.PaymentCompleted, july1.Add(-time.Second)),
		pay("p-end", "litigation", 1000, revenue.PaymentCompleted, july1),
	})

	actual, err := agg.AggregateActual(context.Background(), "firm-1", revenue.FirmWide, june1, july1)
	require.NoError(t, err)
	assert.Equal(t, revenue.Money(110), actual)
}

func TestAggregateActual_DepartmentAndFirmScope(t *testing.T) {
	foreign := pay("p-foreign", "litigation", 9_999, revenue.PaymentCompleted, june1)
	foreign.LawFirmID = "firm-2"

	agg := revenue.NewAggregator(
		sliceSource{pay("p1", "litigation", 400, revenue.PaymentCompleted, june1), foreign},
		sliceSource{
			pay("p2", "conveyancing", 250, revenue.PaymentCompleted, june1),
			pay("p3", revenue.FirmWide, 50, revenue.PaymentCompleted, june1),
		},
	)
	ctx := context.Background()

	lit, err := agg.AggregateActual(ctx, "firm-1", "litigation", june1, july1)
	require.NoError(t, err)
	assert.Equal(t, revenue.Money(400), lit)

	// Firm-wide includes every department and unassigned payments.
	all, err := agg.AggregateActual(ctx, "firm-1", revenue.FirmWide, june1, july1)
	require.NoError(t, err)
	assert.Equal(t, revenue.Money(700), all)
}

func TestAggregateActual_EmptyRangeIsZero(t *testing.T) {
	agg := revenue.NewAggregator(sliceSource{})

	actual, err := agg.AggregateActual(context.Background(), "firm-1", revenue.FirmWide, june1, july1)
	require.NoError(t, err)
	assert.True(t, actual.IsZero())
}

func TestAggregateActual_InvertedRange(t *testing.T) {
	agg := revenue.NewAggregator(sliceSource{})

	_, err := agg.AggregateActual(context.Background(), "firm-1", revenue.FirmWide, july1, june1)
	assert.ErrorIs(t, err, revenue.ErrValidation)
}

func TestAggregateActual_SourceError(t *testing.T) {
	agg := revenue.NewAggregator(sliceSource{}, failingSource{})

	_, err := agg.AggregateActual(context.Background(), "firm-1", revenue.FirmWide, june1, july1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger unavailable")
}
