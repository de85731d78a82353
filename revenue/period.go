package revenue

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRANULARITY - Size of the requested time bucket
// =============================================================================

type Granularity string

const (
	GranularityYearly  Granularity = "yearly"
	GranularityMonthly Granularity = "monthly"
	GranularityWeekly  Granularity = "weekly"
	GranularityDaily   Granularity = "daily"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityYearly, GranularityMonthly, GranularityWeekly, GranularityDaily:
		return true
	}
	return false
}

// InferGranularity picks the finest bucket whose index is present:
// day, then week, then month, else the whole year.
func InferGranularity(month, week, day int) Granularity {
	switch {
	case day != 0:
		return GranularityDaily
	case week != 0:
		return GranularityWeekly
	case month != 0:
		return GranularityMonthly
	default:
		return GranularityYearly
	}
}

// =============================================================================
// PERIOD - A resolved sub-period of one calendar year
// =============================================================================

// PeriodRequest selects a sub-period. Month is required for monthly,
// weekly and daily requests; Week only for weekly, Day only for daily.
type PeriodRequest struct {
	Year        int
	Granularity Granularity
	Month       int
	Week        int
	Day         int
}

// ResolvedPeriod is the half-open range [Start, End) and its share of the year.
type ResolvedPeriod struct {
	Label       string
	Granularity Granularity
	Year        int
	Start       time.Time
	End         time.Time
	Days        int
	DaysInYear  int
}

// FractionOfYear returns Days / DaysInYear.
func (p ResolvedPeriod) FractionOfYear() decimal.Decimal {
	return decimal.NewFromInt(int64(p.Days)).Div(decimal.NewFromInt(int64(p.DaysInYear)))
}

// Contains reports whether t falls in [Start, End).
func (p ResolvedPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Prorate allocates the period's share of a yearly amount, rounded
// half-to-even on minor units. The division is done as an exact quotient
// and remainder so ties are detected without precision loss.
func (p ResolvedPeriod) Prorate(yearly Money) Money {
	if p.Days == p.DaysInYear {
		return yearly
	}
	num := yearly.Decimal().Mul(decimal.NewFromInt(int64(p.Days)))
	q, r := num.QuoRem(decimal.NewFromInt(int64(p.DaysInYear)), 0)
	twice := r.Abs().Mul(decimal.NewFromInt(2))
	half := twice.Cmp(decimal.NewFromInt(int64(p.DaysInYear)))
	if half > 0 || (half == 0 && q.IntPart()%2 != 0) {
		if r.IsNegative() {
			q = q.Sub(decimal.NewFromInt(1))
		} else {
			q = q.Add(decimal.NewFromInt(1))
		}
	}
	return Money(q.IntPart())
}

// String returns a string representation of the period.
func (p ResolvedPeriod) String() string {
	return p.Label + " [" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + ")"
}

// =============================================================================
// PERIOD RESOLVER
// =============================================================================

// ResolvePeriod validates the request and computes the period's date range.
func ResolvePeriod(req PeriodRequest) (ResolvedPeriod, error) {
	if req.Year < 1 || req.Year > 9999 {
		return ResolvedPeriod{}, invalid("year", "%d is out of range", req.Year)
	}
	diy := DaysInYear(req.Year)

	switch req.Granularity {
	case GranularityYearly:
		return ResolvedPeriod{
			Label:       fmt.Sprintf("%04d", req.Year),
			Granularity: GranularityYearly,
			Year:        req.Year,
			Start:       StartOfYear(req.Year),
			End:         StartOfYear(req.Year + 1),
			Days:        diy,
			DaysInYear:  diy,
		}, nil

	case GranularityMonthly:
		month, err := validMonth(req.Month)
		if err != nil {
			return ResolvedPeriod{}, err
		}
		start := StartOfMonth(req.Year, month)
		return ResolvedPeriod{
			Label:       fmt.Sprintf("%04d-%02d", req.Year, req.Month),
			Granularity: GranularityMonthly,
			Year:        req.Year,
			Start:       start,
			End:         start.AddDate(0, 1, 0),
			Days:        DaysInMonth(req.Year, month),
			DaysInYear:  diy,
		}, nil

	case GranularityWeekly:
		month, err := validMonth(req.Month)
		if err != nil {
			return ResolvedPeriod{}, err
		}
		weeks := WeeksInMonth(req.Year, month)
		if req.Week < 1 || req.Week > weeks {
			return ResolvedPeriod{}, invalid("week", "%d is outside 1..%d for %04d-%02d", req.Week, weeks, req.Year, req.Month)
		}
		firstDay := (req.Week-1)*7 + 1
		lastDay := min(req.Week*7, DaysInMonth(req.Year, month))
		start := Date(req.Year, month, firstDay)
		return ResolvedPeriod{
			Label:       fmt.Sprintf("%04d-%02d-W%d", req.Year, req.Month, req.Week),
			Granularity: GranularityWeekly,
			Year:        req.Year,
			Start:       start,
			End:         start.AddDate(0, 0, lastDay-firstDay+1),
			Days:        lastDay - firstDay + 1,
			DaysInYear:  diy,
		}, nil

	case GranularityDaily:
		month, err := validMonth(req.Month)
		if err != nil {
			return ResolvedPeriod{}, err
		}
		dim := DaysInMonth(req.Year, month)
		if req.Day < 1 || req.Day > dim {
			return ResolvedPeriod{}, invalid("day", "%d is outside 1..%d for %04d-%02d", req.Day, dim, req.Year, req.Month)
		}
		start := Date(req.Year, month, req.Day)
		return ResolvedPeriod{
			Label:       fmt.Sprintf("%04d-%02d-%02d", req.Year, req.Month, req.Day),
			Granularity: GranularityDaily,
			Year:        req.Year,
			Start:       start,
			End:         start.AddDate(0, 0, 1),
			Days:        1,
			DaysInYear:  diy,
		}, nil
	}

	return ResolvedPeriod{}, invalid("granularity", "unknown granularity %q", req.Granularity)
}

func validMonth(m int) (time.Month, error) {
	if m < 1 || m > 12 {
		return 0, invalid("month", "%d is outside 1..12", m)
	}
	return time.Month(m), nil
}

// MonthlyPeriods returns the twelve monthly periods of a year in order.
func MonthlyPeriods(year int) ([]ResolvedPeriod, error) {
	periods := make([]ResolvedPeriod, 0, 12)
	for m := 1; m <= 12; m++ {
		p, err := ResolvePeriod(PeriodRequest{Year: year, Granularity: GranularityMonthly, Month: m})
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}
