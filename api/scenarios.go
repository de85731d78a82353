/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Populates the database with a realistic firm: targets for a year plus
  credit-case and legal-case payments, some pending or failed, so the
  dashboards have something to show.

AVAILABLE SCENARIOS:
  nairobi-firm:      Firm-wide and department targets, mixed payments
  revenue-no-target: Payments recorded but no target configured

HOW SCENARIOS WORK:
  1. Reset database (clear all data)
  2. Upsert targets directly in the store (system seed, no caller scoping)
  3. Record case payments through cases.RecordPayment

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "nairobi-firm"}

NOTE:
  Scenarios reset the database. The endpoints are only mounted when the
  server runs with -scenarios.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/warp/revenue-engine/cases"
	"github.com/warp/revenue-engine/revenue"
)

// Demo identifiers, also used in the scenario tests.
const (
	DemoFirm       revenue.LawFirmID    = "firm-nairobi"
	DemoLitigation revenue.DepartmentID = "litigation"
	DemoRecovery   revenue.DepartmentID = "debt-recovery"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "nairobi-firm",
		Name:        "Nairobi Firm",
		Description: "KES 1.2M firm-wide target, two department targets, credit and legal payments",
	},
	{
		ID:          "revenue-no-target",
		Name:        "Revenue Without Target",
		Description: "Completed payments but no target row: every period reports no_target",
	},
}

// EnableScenarios mounts the demo endpoints; reset must wipe every table.
func (h *Handler) EnableScenarios(reset func(ctx context.Context) error) {
	h.reset = reset
}

// ScenariosEnabled reports whether EnableScenarios was called.
func (h *Handler) ScenariosEnabled() bool { return h.reset != nil }

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(ctx context.Context) error
	switch req.ScenarioID {
	case "nairobi-firm":
		load = h.loadNairobiFirmScenario
	case "revenue-no-target":
		load = h.loadNoTargetScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		h.Logger.ErrorContext(ctx, "scenario load failed", "scenario", req.ScenarioID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadNairobiFirmScenario(ctx context.Context) error {
	const year = 2025
	targets := []struct {
		dept   revenue.DepartmentID
		yearly revenue.Money
	}{
		{revenue.FirmWide, 120_000_000}, // KES 1,200,000
		{DemoLitigation, 60_000_000},
		{DemoRecovery, 48_000_000},
	}
	for _, t := range targets {
		if err := h.seedTarget(ctx, year, t.dept, t.yearly); err != nil {
			return err
		}
	}

	// Monthly pattern: litigation fees and filing fees, recovery instalments
	// and escalation fees. Every third month has a pending and a failed payment.
	for m := time.January; m <= time.June; m++ {
		payments := []cases.CasePayment{
			demoPayment(cases.CaseLegal, DemoLitigation, revenue.PurposeLegalPayment, 4_200_000, revenue.PaymentCompleted, year, m, 5),
			demoPayment(cases.CaseLegal, DemoLitigation, revenue.PurposeFilingFee, 350_000, revenue.PaymentCompleted, year, m, 12),
			demoPayment(cases.CaseCredit, DemoRecovery, revenue.PurposeCreditPayment, 3_100_000, revenue.PaymentCompleted, year, m, 18),
			demoPayment(cases.CaseCredit, DemoRecovery, revenue.PurposeEscalationFee, 500_000, revenue.PaymentCompleted, year, m, 25),
		}
		if m%3 == 0 {
			payments = append(payments,
				demoPayment(cases.CaseLegal, DemoLitigation, revenue.PurposeLegalPayment, 2_000_000, revenue.PaymentPending, year, m, 27),
				demoPayment(cases.CaseCredit, DemoRecovery, revenue.PurposeCreditPayment, 900_000, revenue.PaymentFailed, year, m, 28),
			)
		}
		for _, p := range payments {
			if err := cases.RecordPayment(ctx, h.Ledger, p); err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
		}
	}
	return nil
}

func (h *Handler) loadNoTargetScenario(ctx context.Context) error {
	for m := time.January; m <= time.March; m++ {
		p := demoPayment(cases.CaseLegal, DemoLitigation, revenue.PurposeLegalPayment, 1_500_000, revenue.PaymentCompleted, 2025, m, 10)
		if err := cases.RecordPayment(ctx, h.Ledger, p); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
	}
	return nil
}

func (h *Handler) seedTarget(ctx context.Context, year int, dept revenue.DepartmentID, yearly revenue.Money) error {
	now := time.Now().UTC()
	_, err := h.Engine.Targets.UpsertTarget(ctx, revenue.RevenueTarget{
		ID:           revenue.TargetID(uuid.NewString()),
		LawFirmID:    DemoFirm,
		Year:         year,
		DepartmentID: dept,
		YearlyTarget: yearly,
		CreatedBy:    "scenario",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("seed target %s: %w", dept, err)
	}
	return nil
}

func demoPayment(ct cases.CaseType, dept revenue.DepartmentID, purpose revenue.PaymentPurpose, amount revenue.Money, status revenue.PaymentStatus, year int, month time.Month, day int) cases.CasePayment {
	return cases.CasePayment{
		Payment: revenue.Payment{
			ID:           uuid.NewString(),
			LawFirmID:    DemoFirm,
			DepartmentID: dept,
			Amount:       amount,
			Purpose:      purpose,
			Status:       status,
			PaidAt:       time.Date(year, month, day, 10, 0, 0, 0, time.UTC),
		},
		CaseType: ct,
		CaseID:   fmt.Sprintf("%s-%s-%02d", ct, dept, month),
	}
}
