package revenue

import "time"

// =============================================================================
// CALENDAR - Gregorian day counts, all dates UTC at midnight
// =============================================================================

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// WeeksInMonth counts the 7-day blocks starting on day 1; the last one may be short.
func WeeksInMonth(year int, month time.Month) int {
	return (DaysInMonth(year, month) + 6) / 7
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func StartOfYear(year int) time.Time { return Date(year, time.January, 1) }
func StartOfMonth(year int, month time.Month) time.Time { return Date(year, month, 1) }
