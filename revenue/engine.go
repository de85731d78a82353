/*
engine.go - Request-level orchestration

REQUEST FLOW (performance):
  1. Access Scoper:      may the caller read this department?
  2. Period Resolver:    validate indices, compute [start, end) and days
  3. Target Store:       fetch the row for (firm, year, department)
  4. Revenue Aggregator: sum completed payments in range
  5. Evaluator:          percentage, status, delta

Steps 1 and 2 fail fast: no aggregation work is done for a request that is
unauthorized or malformed.

FIRM-WIDE BASELINE:
  A firm-wide performance figure is compared against the firm-wide target
  row only. Department rows are never summed into it; with no firm-wide row
  the firm-wide result is no_target even if departments have targets.
*/
package revenue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Engine wires the store, the aggregator and the access policy together.
type Engine struct {
	Targets    TargetStore
	Aggregator *Aggregator
	Logger     *slog.Logger
	Now        func() time.Time
}

func NewEngine(targets TargetStore, aggregator *Aggregator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Targets:    targets,
		Aggregator: aggregator,
		Logger:     logger,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// TARGETS
// =============================================================================

type SetTargetInput struct {
	Year         int
	DepartmentID DepartmentID
	YearlyTarget Money
}

// SetTarget upserts the caller's firm target for (year, department).
func (e *Engine) SetTarget(ctx context.Context, c Caller, in SetTargetInput) (RevenueTarget, error) {
	if !in.YearlyTarget.IsPositive() {
		return RevenueTarget{}, invalid("yearly_target", "must be positive, got %s", in.YearlyTarget)
	}
	if in.Year < 1 || in.Year > 9999 {
		return RevenueTarget{}, invalid("year", "%d is out of range", in.Year)
	}
	if err := AuthorizeManage(c, in.DepartmentID); err != nil {
		e.Logger.WarnContext(ctx, "set target denied",
			"firm", c.LawFirmID, "user", c.UserID, "role", c.Role, "department", in.DepartmentID.String())
		return RevenueTarget{}, err
	}

	now := e.Now()
	stored, err := e.Targets.UpsertTarget(ctx, RevenueTarget{
		ID:           TargetID(uuid.NewString()),
		LawFirmID:    c.LawFirmID,
		Year:         in.Year,
		DepartmentID: in.DepartmentID,
		YearlyTarget: in.YearlyTarget,
		CreatedBy:    c.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return RevenueTarget{}, fmt.Errorf("upsert target: %w", err)
	}

	e.Logger.InfoContext(ctx, "target set",
		"firm", c.LawFirmID, "year", in.Year, "department", in.DepartmentID.String(),
		"target_id", stored.ID, "yearly_target", int64(in.YearlyTarget))
	return stored, nil
}

// ListTargets returns the year's targets the caller may read.
func (e *Engine) ListTargets(ctx context.Context, c Caller, year int) ([]RevenueTarget, error) {
	if year < 1 || year > 9999 {
		return nil, invalid("year", "%d is out of range", year)
	}
	targets, err := e.Targets.ListTargets(ctx, c.LawFirmID, year)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	return VisibleTargets(c, targets), nil
}

// DeleteTarget removes a target of the caller's firm.
func (e *Engine) DeleteTarget(ctx context.Context, c Caller, id TargetID) error {
	t, err := e.Targets.GetTarget(ctx, c.LawFirmID, id)
	if err != nil {
		return fmt.Errorf("get target: %w", err)
	}
	if t == nil {
		return &NotFoundError{Kind: "target", ID: string(id)}
	}
	if err := AuthorizeManage(c, t.DepartmentID); err != nil {
		return err
	}
	if err := e.Targets.DeleteTarget(ctx, c.LawFirmID, id); err != nil {
		return err
	}

	e.Logger.InfoContext(ctx, "target deleted",
		"firm", c.LawFirmID, "target_id", id, "user", c.UserID)
	return nil
}

// =============================================================================
// PERFORMANCE
// =============================================================================

// PerformanceQuery selects one period and one scope. An empty Granularity
// is inferred from which of Month, Week and Day are set.
type PerformanceQuery struct {
	Year         int
	Granularity  Granularity
	Month        int
	Week         int
	Day          int
	DepartmentID DepartmentID

	// Breakdown adds one result per department that has a target for the
	// year. Only honoured for firm-wide queries by callers who may read
	// every department.
	Breakdown bool
}

// Performance evaluates the requested scope and, with Breakdown, each
// department with a target. The requested scope always comes first.
func (e *Engine) Performance(ctx context.Context, c Caller, q PerformanceQuery) ([]PerformanceResult, error) {
	if err := AuthorizeRead(c, q.DepartmentID); err != nil {
		return nil, err
	}
	if q.Breakdown && !q.DepartmentID.IsFirmWide() {
		return nil, invalid("breakdown", "only valid for firm-wide queries")
	}

	g := q.Granularity
	if g == "" {
		g = InferGranularity(q.Month, q.Week, q.Day)
	}
	period, err := ResolvePeriod(PeriodRequest{Year: q.Year, Granularity: g, Month: q.Month, Week: q.Week, Day: q.Day})
	if err != nil {
		return nil, err
	}

	scopes := []DepartmentID{q.DepartmentID}
	if q.Breakdown {
		targets, err := e.Targets.ListTargets(ctx, c.LawFirmID, q.Year)
		if err != nil {
			return nil, fmt.Errorf("list targets: %w", err)
		}
		for _, t := range targets {
			if t.DepartmentID.IsFirmWide() {
				continue
			}
			if err := AuthorizeRead(c, t.DepartmentID); err != nil {
				return nil, err
			}
			scopes = append(scopes, t.DepartmentID)
		}
	}

	results := make([]PerformanceResult, 0, len(scopes))
	for _, dept := range scopes {
		r, err := e.evaluate(ctx, c.LawFirmID, dept, period)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Series returns the twelve monthly results of a year for one scope.
func (e *Engine) Series(ctx context.Context, c Caller, year int, dept DepartmentID) ([]PerformanceResult, error) {
	if err := AuthorizeRead(c, dept); err != nil {
		return nil, err
	}
	periods, err := MonthlyPeriods(year)
	if err != nil {
		return nil, err
	}

	results := make([]PerformanceResult, 0, len(periods))
	for _, p := range periods {
		r, err := e.evaluate(ctx, c.LawFirmID, dept, p)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (e *Engine) evaluate(ctx context.Context, firm LawFirmID, dept DepartmentID, p ResolvedPeriod) (PerformanceResult, error) {
	target, err := e.Targets.FindTarget(ctx, TargetKey{LawFirmID: firm, Year: p.Year, DepartmentID: dept})
	if err != nil {
		return PerformanceResult{}, fmt.Errorf("find target: %w", err)
	}
	actual, err := e.Aggregator.AggregateActual(ctx, firm, dept, p.Start, p.End)
	if err != nil {
		return PerformanceResult{}, err
	}

	result := PerformanceResult{
		PeriodLabel:  p.Label,
		Granularity:  p.Granularity,
		PeriodStart:  p.Start,
		PeriodEnd:    p.End,
		DepartmentID: dept,
		Actual:       actual,
	}

	var periodTarget *Money
	if target != nil {
		pt := p.Prorate(target.YearlyTarget)
		periodTarget = &pt
		result.HasTarget = true
		result.YearlyTarget = target.YearlyTarget
		result.PeriodTarget = pt
	}

	ev := Evaluate(periodTarget, actual)
	result.Percentage = ev.Percentage
	result.Status = ev.Status
	result.Delta = ev.Delta

	e.Logger.DebugContext(ctx, "performance evaluated",
		"firm", firm, "department", dept.String(), "period", p.Label,
		"status", ev.Status, "actual", int64(actual), "period_target", int64(result.PeriodTarget))
	return result, nil
}
