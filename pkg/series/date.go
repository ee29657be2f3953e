package series

import (
	"time"

	"cloud.google.com/go/civil"
)

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in year (365 or 366).
func DaysIn(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// FirstDay returns January 1 of year.
func FirstDay(year int) civil.Date {
	return civil.Date{Year: year, Month: time.January, Day: 1}
}

// LastDay returns December 31 of year.
func LastDay(year int) civil.Date {
	return civil.Date{Year: year, Month: time.December, Day: 31}
}

// DayOfYear returns the zero-based index of d within its year.
func DayOfYear(d civil.Date) int {
	return d.DaysSince(FirstDay(d.Year))
}

// Days returns every date of year from January 1 to December 31.
func Days(year int) []civil.Date {
	n := DaysIn(year)
	days := make([]civil.Date, 0, n)
	for d := FirstDay(year); d.Year == year; d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// ParseDate parses an ISO date, accepting a trailing time component
// ("2023-01-02T15:04:05Z") as produced by most APIs.
func ParseDate(s string) (civil.Date, error) {
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10]
	}
	return civil.ParseDate(s)
}
