// Package series holds the per-day input of a heatmap poster.
//
// A [DaySeries] maps calendar dates to an [Entry]. An entry is either a single
// scalar (one tracked type) or a map from type label to scalar (several types
// on one poster). Dates missing from the series count as zero for every type.
//
// Dates are [civil.Date] values: a year, month and day with no time zone, so
// iteration uses true calendar arithmetic and Feb 29 only exists in leap
// years. The JSON form of a series is an object keyed by ISO dates:
//
//	{"2023-01-01": 3, "2023-01-02": {"running": 5, "reading": 1}}
//
// The package also provides [YearSet], the sorted list of years a poster
// covers, and [ValueRange], the running min/max used to normalize values
// before color mapping.
package series
