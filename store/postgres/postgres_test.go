package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
	"github.com/warp/revenue-engine/store/postgres"
)

// These tests need a disposable database; every test truncates it.
//
//	REVENUE_TEST_DATABASE_URL=postgres://localhost/revenue_test go test ./store/postgres/
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	url := os.Getenv("REVENUE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("REVENUE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := postgres.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Reset(ctx))
	return store
}

func target(id string, dept revenue.DepartmentID, yearly revenue.Money) revenue.RevenueTarget {
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	return revenue.RevenueTarget{
		ID:           revenue.TargetID(id),
		LawFirmID:    "firm-1",
		Year:         2025,
		DepartmentID: dept,
		YearlyTarget: yearly,
		CreatedBy:    "u-admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUpsertTarget_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertTarget(ctx, target("t-1", revenue.FirmWide, 100))
	require.NoError(t, err)
	second, err := store.UpsertTarget(ctx, target("t-2", revenue.FirmWide, 200))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, revenue.Money(200), second.YearlyTarget)

	all, err := store.ListTargets(ctx, "firm-1", 2025)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertTarget_ConcurrentWritersLeaveOneRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.UpsertTarget(ctx, target(fmt.Sprintf("t-%d", i), "litigation", revenue.Money(i*100)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := store.ListTargets(ctx, "firm-1", 2025)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTargets_FindGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertTarget(ctx, target("t-firm", revenue.FirmWide, 1_000))
	require.NoError(t, err)
	_, err = store.UpsertTarget(ctx, target("t-lit", "litigation", 400))
	require.NoError(t, err)

	firm, err := store.FindTarget(ctx, revenue.TargetKey{LawFirmID: "firm-1", Year: 2025})
	require.NoError(t, err)
	require.NotNil(t, firm)
	assert.Equal(t, revenue.TargetID("t-firm"), firm.ID)

	foreign, err := store.GetTarget(ctx, "firm-2", "t-lit")
	require.NoError(t, err)
	assert.Nil(t, foreign)

	require.NoError(t, store.DeleteTarget(ctx, "firm-1", "t-lit"))
	assert.ErrorIs(t, store.DeleteTarget(ctx, "firm-1", "t-lit"), revenue.ErrNotFound)
}

func TestAggregateActual_AcrossCaseTypes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

	record := func(id string, ct cases.CaseType, purpose revenue.PaymentPurpose, amount revenue.Money, status revenue.PaymentStatus) {
		require.NoError(t, cases.RecordPayment(ctx, store, cases.CasePayment{
			Payment: revenue.Payment{
				ID: id, LawFirmID: "firm-1", DepartmentID: "litigation",
				Amount: amount, Purpose: purpose, Status: status, PaidAt: at,
			},
			CaseType: ct,
			CaseID:   "case-" + id,
		}))
	}
	record("p1", cases.CaseLegal, revenue.PurposeFilingFee, 500, revenue.PaymentCompleted)
	record("p2", cases.CaseCredit, revenue.PurposeEscalationFee, 250, revenue.PaymentCompleted)
	record("p3", cases.CaseCredit, revenue.PurposeCreditPayment, 300, revenue.PaymentPending)

	agg := revenue.NewAggregator(cases.Sources(store)...)
	actual, err := agg.AggregateActual(ctx, "firm-1", "litigation",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, revenue.Money(750), actual)
}
