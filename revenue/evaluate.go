package revenue

import "github.com/shopspring/decimal"

// Classification thresholds, in percent of the period target.
var (
	onTrackThreshold = decimal.NewFromInt(100)
	atRiskThreshold  = decimal.NewFromInt(80)
	hundred          = decimal.NewFromInt(100)
)

// Evaluation is the outcome of comparing actual revenue with a period target.
type Evaluation struct {
	Percentage decimal.Decimal
	Status     Status
	Delta      Money
}

// Evaluate compares actual revenue with the period target. A nil target
// means no target row exists: the result is no_target at 0% whatever the
// actual, and the delta is the actual itself.
//
// Status is classified on exact values; Percentage is rounded half-to-even
// to two decimals for display only, so 99.996% is still at_risk.
func Evaluate(periodTarget *Money, actual Money) Evaluation {
	if periodTarget == nil {
		return Evaluation{Percentage: decimal.Zero, Status: StatusNoTarget, Delta: actual}
	}
	// A tiny yearly target can prorate to zero for a single day.
	if !periodTarget.IsPositive() {
		return Evaluation{Percentage: hundred, Status: StatusOnTrack, Delta: actual.Sub(*periodTarget)}
	}

	target := periodTarget.Decimal()
	scaled := actual.Decimal().Mul(hundred)

	status := StatusBehind
	switch {
	case scaled.GreaterThanOrEqual(target.Mul(onTrackThreshold)):
		status = StatusOnTrack
	case scaled.GreaterThanOrEqual(target.Mul(atRiskThreshold)):
		status = StatusAtRisk
	}

	return Evaluation{
		Percentage: scaled.Div(target).RoundBank(2),
		Status:     status,
		Delta:      actual.Sub(*periodTarget),
	}
}
