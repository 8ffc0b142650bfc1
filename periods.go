package main

import "time"

// Supported values for the period query parameter of GET /habits/logs.
const (
	periodWeek  = "week"
	periodMonth = "month"
	periodYear  = "year"
)

// normalizePeriod maps unknown or empty periods to week.
func normalizePeriod(p string) string {
	switch p {
	case periodWeek, periodMonth, periodYear:
		return p
	default:
		return periodWeek
	}
}

// mondayOf returns the Monday of the week containing d.
// Uses AddDate to safely handle month/year boundaries.
func mondayOf(d DateOnly) DateOnly {
	weekday := int(d.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	return DateOnly{d.AddDate(0, 0, -(weekday - 1))}
}

// periodBounds returns the first and last calendar date of the period
// containing anchor. Month and year ends come from normalising day 0 of the
// following month/year, which accounts for month length and leap years.
func periodBounds(period string, anchor DateOnly) (start, end DateOnly) {
	y, m, _ := anchor.Date()
	switch normalizePeriod(period) {
	case periodMonth:
		start = DateOnly{time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}
		end = DateOnly{time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)}
	case periodYear:
		start = DateOnly{time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)}
		end = DateOnly{time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)}
	default:
		start = mondayOf(anchor)
		end = DateOnly{start.AddDate(0, 0, 6)}
	}
	return start, end
}

// datesBetween returns every date from start to end inclusive, ascending.
func datesBetween(start, end DateOnly) []DateOnly {
	var dates []DateOnly
	for d := start.Time; !d.After(end.Time); d = d.AddDate(0, 0, 1) {
		dates = append(dates, DateOnly{d})
	}
	return dates
}

// periodDates is the ordered date sequence for period around anchor.
func periodDates(period string, anchor DateOnly) []DateOnly {
	return datesBetween(periodBounds(period, anchor))
}

// buildProgress lays each habit's logs onto dates. Logs outside dates or
// for habits not in the list are ignored.
func buildProgress(habits []habit, logs []habitLog, dates []DateOnly) []habitProgress {
	logged := make(map[int]map[string]bool, len(habits))
	for _, l := range logs {
		if logged[l.HabitID] == nil {
			logged[l.HabitID] = make(map[string]bool)
		}
		logged[l.HabitID][l.Date.String()] = true
	}

	rows := make([]habitProgress, 0, len(habits))
	for _, h := range habits {
		row := habitProgress{
			ID:   h.ID,
			Name: h.Name,
			Goal: h.Goal,
			Logs: make([]bool, len(dates)),
		}
		for i, d := range dates {
			if logged[h.ID][d.String()] {
				row.Logs[i] = true
				row.Achieved++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// lastNDays returns the n dates ending at today, oldest first.
func lastNDays(today DateOnly, n int) []DateOnly {
	return datesBetween(DateOnly{today.AddDate(0, 0, -(n - 1))}, today)
}
