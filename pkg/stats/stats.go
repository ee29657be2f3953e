// Package stats computes per-year aggregate statistics for a day series.
//
// For each requested year, [Compute] walks every calendar date from January 1
// to December 31 and collects totals, the number of active days (value > 0),
// streaks of consecutive active days, and the mean, population standard
// deviation and extrema of the active days. Streaks never carry across a
// year boundary.
//
// Averages, standard deviations and extrema are rounded to two decimals.
// A year without active days reports Max and Min as null rather than a
// placeholder number.
package stats

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	moremath "github.com/aclements/go-moremath/stats"
	mstats "github.com/montanaflynn/stats"
	"gopkg.in/guregu/null.v3"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Precision is the number of decimals kept for derived statistics.
const Precision = 2

// YearStatistics summarizes one type over one calendar year.
type YearStatistics struct {
	Year              int        `json:"year"`
	Type              string     `json:"type,omitempty"`
	Total             float64    `json:"total"`
	Count             int        `json:"count"`
	Average           float64    `json:"average"`
	LongestStreak     int        `json:"longest_streak"`
	CurrentStreak     int        `json:"current_streak"`
	StandardDeviation float64    `json:"standard_deviation"`
	Max               null.Float `json:"max"`
	Min               null.Float `json:"min"`
}

// HasData reports whether the year had at least one active day.
func (s YearStatistics) HasData() bool { return s.Count > 0 }

// Table holds statistics keyed by year.
type Table map[int]YearStatistics

// Years returns the table's years in ascending order.
func (t Table) Years() []int {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Total returns the sum of all yearly totals.
func (t Table) Total() float64 {
	var total float64
	for _, s := range t {
		total += s.Total
	}
	return total
}

type options struct {
	asOf    civil.Date
	hasAsOf bool
}

// Option configures [Compute].
type Option func(*options)

// WithAsOf sets the day the current streak is measured at. By default it is
// the latest date present in the series.
func WithAsOf(d civil.Date) Option {
	return func(o *options) {
		o.asOf = d
		o.hasAsOf = true
	}
}

// Compute returns statistics of typ for every year in years.
//
// Years must be non-empty and in range. Dates absent from the series count as
// zero. A negative value anywhere in a requested year aborts the computation.
func Compute(s *series.DaySeries, years series.YearSet, typ string, opts ...Option) (Table, error) {
	if err := years.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasAsOf {
		if latest, ok := s.Latest(); ok {
			o.asOf, o.hasAsOf = latest, true
		}
	}

	table := make(Table, len(years))
	for _, year := range years {
		ys, err := computeYear(s, year, typ, o)
		if err != nil {
			return nil, err
		}
		table[year] = ys
	}
	return table, nil
}

// ComputeAll returns one table per type.
func ComputeAll(s *series.DaySeries, years series.YearSet, types []string, opts ...Option) (map[string]Table, error) {
	if err := errors.ValidateTypeList(types); err != nil {
		return nil, err
	}
	out := make(map[string]Table, len(types))
	for _, typ := range types {
		t, err := Compute(s, years, typ, opts...)
		if err != nil {
			return nil, err
		}
		out[typ] = t
	}
	return out, nil
}

func computeYear(s *series.DaySeries, year int, typ string, o options) (YearStatistics, error) {
	out := YearStatistics{Year: year, Type: typ}

	// The current streak is read on the as-of day, capped to this year.
	// A year entirely after the as-of day has no current streak.
	streakDay := series.LastDay(year)
	if o.hasAsOf && o.asOf.Before(streakDay) {
		streakDay = o.asOf
	}

	var (
		running moremath.StreamStats
		active  mstats.Float64Data
		streak  int
	)
	for _, d := range series.Days(year) {
		v := s.Value(d, typ)
		if v < 0 {
			return YearStatistics{}, errors.New(errors.ErrCodeNegativeValue, "value %v on %s is negative", v, d)
		}
		out.Total += v
		if v > 0 {
			running.Add(v)
			active = append(active, v)
			streak++
			if streak > out.LongestStreak {
				out.LongestStreak = streak
			}
		} else {
			streak = 0
		}
		if d == streakDay {
			out.CurrentStreak = streak
		}
	}

	out.Count = int(running.Count)
	if out.Count == 0 {
		return out, nil
	}

	out.Average = round(running.Total / float64(out.Count))
	if sd, err := mstats.StandardDeviationPopulation(active); err == nil {
		out.StandardDeviation = round(sd)
	}
	out.Max = null.FloatFrom(round(running.Max))
	out.Min = null.FloatFrom(round(running.Min))
	return out, nil
}

func round(v float64) float64 {
	r, err := mstats.Round(v, Precision)
	if err != nil || math.IsInf(r, 0) {
		return 0
	}
	return r
}
