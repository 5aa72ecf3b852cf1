// Package period resolves named aggregation windows against the local
// calendar. Windows are computed on local day/week/month boundaries and then
// converted to UTC for store queries, because readings are stored in UTC
// while tariff analysis follows the household's clock.
package period

import (
	"time"

	indicatordomain "github.com/orwelltherazer/statelec/internal/indicator/domain"
)

// Resolve returns the window for a token around now, interpreted in loc.
// Weeks run Monday through Sunday, months cover the full calendar month.
// An unknown token resolves to the current day.
func Resolve(token string, now time.Time, loc *time.Location) indicatordomain.Period {
	local := now.In(loc)

	var start, end time.Time
	switch token {
	case indicatordomain.PeriodWeek:
		monday := startOfWeek(local)
		start = monday
		end = endOfDay(monday.AddDate(0, 0, 6))
	case indicatordomain.PeriodMonth:
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		start = first
		end = endOfDay(first.AddDate(0, 1, -1))
	default:
		start = startOfDay(local)
		end = endOfDay(local)
	}

	return indicatordomain.Period{Start: start.UTC(), End: end.UTC()}
}

// Previous returns the calendar-aligned window immediately preceding the
// current one: yesterday, last week or last month. Not a rolling window.
func Previous(token string, now time.Time, loc *time.Location) indicatordomain.Period {
	local := now.In(loc)

	switch token {
	case indicatordomain.PeriodWeek:
		return Resolve(token, local.AddDate(0, 0, -7), loc)
	case indicatordomain.PeriodMonth:
		// Step to the last day of the previous month so short months
		// resolve correctly regardless of today's day-of-month.
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
		return Resolve(token, first.AddDate(0, 0, -1), loc)
	default:
		return Resolve(token, local.AddDate(0, 0, -1), loc)
	}
}

// Days returns the number of local days a token spans, used for
// subscription proration.
func Days(token string, now time.Time, loc *time.Location) int {
	switch token {
	case indicatordomain.PeriodWeek:
		return 7
	case indicatordomain.PeriodMonth:
		return DaysInMonth(now, loc)
	default:
		return 1
	}
}

// DaysInMonth returns the length of now's local month.
func DaysInMonth(now time.Time, loc *time.Location) int {
	local := now.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return first.AddDate(0, 1, -1).Day()
}

// Day returns the window of one specific local calendar day.
func Day(year int, month time.Month, day int, loc *time.Location) indicatordomain.Period {
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return indicatordomain.Period{Start: start.UTC(), End: endOfDay(start).UTC()}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
