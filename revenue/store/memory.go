// Package store provides in-memory implementations of the engine's stores.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements revenue.TargetStore and cases.PaymentLedger.
type Memory struct {
	mu       sync.RWMutex
	targets  map[revenue.TargetKey]revenue.RevenueTarget
	byID     map[revenue.TargetID]revenue.TargetKey
	payments map[cases.CaseType][]cases.CasePayment
}

func NewMemory() *Memory {
	return &Memory{
		targets:  make(map[revenue.TargetKey]revenue.RevenueTarget),
		byID:     make(map[revenue.TargetID]revenue.TargetKey),
		payments: make(map[cases.CaseType][]cases.CasePayment),
	}
}

var (
	_ revenue.TargetStore = (*Memory)(nil)
	_ cases.PaymentLedger = (*Memory)(nil)
)

// UpsertTarget inserts or replaces the row for t.Key() under the write lock.
func (m *Memory) UpsertTarget(_ context.Context, t revenue.RevenueTarget) (revenue.RevenueTarget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := t.Key()
	if existing, ok := m.targets[k]; ok {
		existing.YearlyTarget = t.YearlyTarget
		existing.UpdatedAt = t.UpdatedAt
		m.targets[k] = existing
		return existing, nil
	}
	m.targets[k] = t
	m.byID[t.ID] = k
	return t, nil
}

func (m *Memory) GetTarget(_ context.Context, lawFirmID revenue.LawFirmID, id revenue.TargetID) (*revenue.RevenueTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k, ok := m.byID[id]
	if !ok || k.LawFirmID != lawFirmID {
		return nil, nil
	}
	t := m.targets[k]
	return &t, nil
}

func (m *Memory) FindTarget(_ context.Context, key revenue.TargetKey) (*revenue.RevenueTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.targets[key]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) ListTargets(_ context.Context, lawFirmID revenue.LawFirmID, year int) ([]revenue.RevenueTarget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []revenue.RevenueTarget
	for k, t := range m.targets {
		if k.LawFirmID == lawFirmID && k.Year == year {
			result = append(result, t)
		}
	}
	// FirmWide is "", so it sorts first.
	sort.Slice(result, func(i, j int) bool { return result[i].DepartmentID < result[j].DepartmentID })
	return result, nil
}

func (m *Memory) DeleteTarget(_ context.Context, lawFirmID revenue.LawFirmID, id revenue.TargetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k, ok := m.byID[id]
	if !ok || k.LawFirmID != lawFirmID {
		return &revenue.NotFoundError{Kind: "target", ID: string(id)}
	}
	delete(m.targets, k)
	delete(m.byID, id)
	return nil
}

// =============================================================================
// CASE PAYMENTS
// =============================================================================

func (m *Memory) SaveCasePayment(_ context.Context, p cases.CasePayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := m.payments[p.CaseType]
	// Keep ordered by PaidAt; binary search for the insertion point.
	i := sort.Search(len(txs), func(i int) bool { return txs[i].PaidAt.After(p.PaidAt) })
	txs = append(txs, cases.CasePayment{})
	copy(txs[i+1:], txs[i:])
	txs[i] = p
	m.payments[p.CaseType] = txs
	return nil
}

func (m *Memory) ListCasePayments(_ context.Context, caseType cases.CaseType, lawFirmID revenue.LawFirmID, f revenue.PaymentFilter) ([]revenue.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []revenue.Payment
	for _, p := range m.payments[caseType] {
		if p.LawFirmID != lawFirmID || p.Status != revenue.PaymentCompleted {
			continue
		}
		if !f.DepartmentID.IsFirmWide() && p.DepartmentID != f.DepartmentID {
			continue
		}
		if cases.InRange(p.PaidAt, f) {
			result = append(result, p.Payment)
		}
	}
	return result, nil
}

// Reset drops every target and payment.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = make(map[revenue.TargetKey]revenue.RevenueTarget)
	m.byID = make(map[revenue.TargetID]revenue.TargetKey)
	m.payments = make(map[cases.CaseType][]cases.CasePayment)
	return nil
}
