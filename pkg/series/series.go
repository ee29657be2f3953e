package series

import (
	"slices"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/matzehuels/heatposter/pkg/errors"
)

// Entry is the value recorded for one date: a scalar, or a value per type.
type Entry struct {
	scalar float64
	byType map[string]float64
}

// Scalar returns an entry holding a single value.
func Scalar(v float64) Entry {
	return Entry{scalar: v}
}

// ByType returns an entry holding one value per type label.
// The map is copied.
func ByType(values map[string]float64) Entry {
	m := make(map[string]float64, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Entry{byType: m}
}

// IsScalar reports whether the entry holds a single untyped value.
func (e Entry) IsScalar() bool { return e.byType == nil }

// Value returns the entry's value for typ. A scalar entry returns its scalar
// for any type; a typed entry returns 0 for labels it does not carry.
func (e Entry) Value(typ string) float64 {
	if e.byType == nil {
		return e.scalar
	}
	return e.byType[typ]
}

// Types returns the sorted type labels of a typed entry.
func (e Entry) Types() []string {
	keys := lo.Keys(e.byType)
	sort.Strings(keys)
	return keys
}

func (e Entry) validate(d civil.Date) error {
	if e.byType == nil {
		if err := errors.ValidateValue(e.scalar); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "invalid value on %s", d)
		}
		return nil
	}
	for typ, v := range e.byType {
		if err := errors.ValidateTypeName(typ); err != nil {
			return err
		}
		if err := errors.ValidateValue(v); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "invalid %s value on %s", typ, d)
		}
	}
	return nil
}

// DaySeries maps calendar dates to entries. The zero value is not usable;
// create one with [New].
type DaySeries struct {
	entries map[civil.Date]Entry
}

// New returns an empty series.
func New() *DaySeries {
	return &DaySeries{entries: make(map[civil.Date]Entry)}
}

// Set stores e for date d, replacing any previous entry.
// Invalid dates and negative or non-finite values are rejected.
func (s *DaySeries) Set(d civil.Date, e Entry) error {
	if !d.IsValid() {
		return errors.New(errors.ErrCodeInvalidDate, "invalid date %v", d)
	}
	if err := e.validate(d); err != nil {
		return err
	}
	s.entries[d] = e
	return nil
}

// Add accumulates v onto date d. An empty typ adds to the scalar value;
// otherwise v is added to that type's value. Mixing scalar and typed values
// on one date is an error.
func (s *DaySeries) Add(d civil.Date, typ string, v float64) error {
	if !d.IsValid() {
		return errors.New(errors.ErrCodeInvalidDate, "invalid date %v", d)
	}
	if err := errors.ValidateValue(v); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "invalid value on %s", d)
	}
	e, ok := s.entries[d]
	if typ == "" {
		if ok && !e.IsScalar() {
			return errors.New(errors.ErrCodeInvalidInput, "date %s already holds typed values", d)
		}
		s.entries[d] = Scalar(e.scalar + v)
		return nil
	}
	if err := errors.ValidateTypeName(typ); err != nil {
		return err
	}
	if ok && e.IsScalar() {
		return errors.New(errors.ErrCodeInvalidInput, "date %s already holds a scalar value", d)
	}
	if e.byType == nil {
		e.byType = make(map[string]float64)
	}
	e.byType[typ] += v
	s.entries[d] = e
	return nil
}

// Entry returns the entry stored for d.
func (s *DaySeries) Entry(d civil.Date) (Entry, bool) {
	e, ok := s.entries[d]
	return e, ok
}

// Value returns the value of typ on d, or 0 when d is absent.
func (s *DaySeries) Value(d civil.Date, typ string) float64 {
	e, ok := s.entries[d]
	if !ok {
		return 0
	}
	return e.Value(typ)
}

// Len returns the number of dates with an entry.
func (s *DaySeries) Len() int { return len(s.entries) }

// Dates returns all dates with an entry in ascending order.
func (s *DaySeries) Dates() []civil.Date {
	dates := lo.Keys(s.entries)
	slices.SortFunc(dates, func(a, b civil.Date) int { return a.Compare(b) })
	return dates
}

// Latest returns the most recent date with an entry.
func (s *DaySeries) Latest() (civil.Date, bool) {
	var latest civil.Date
	found := false
	for d := range s.entries {
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found
}

// Types returns the sorted union of type labels across typed entries.
// A purely scalar series returns nil.
func (s *DaySeries) Types() []string {
	var types []string
	for _, e := range s.entries {
		types = append(types, lo.Keys(e.byType)...)
	}
	types = lo.Uniq(types)
	sort.Strings(types)
	return types
}

// Years returns the set of years that have at least one entry.
func (s *DaySeries) Years() YearSet {
	years := lo.Map(lo.Keys(s.entries), func(d civil.Date, _ int) int { return d.Year })
	return NewYearSet(years...)
}

// Range returns the value range of typ over positive values in years.
func (s *DaySeries) Range(typ string, years YearSet) ValueRange {
	var r ValueRange
	for d, e := range s.entries {
		if !years.Contains(d.Year) {
			continue
		}
		if v := e.Value(typ); v > 0 {
			r.Extend(v)
		}
	}
	return r
}

// CountByYear returns the number of dates with an entry per year.
func (s *DaySeries) CountByYear() map[int]int {
	counts := make(map[int]int)
	for d := range s.entries {
		counts[d.Year]++
	}
	return counts
}

// Merge copies the scalar values of other into s under type typ.
// Typed entries of other keep their own labels.
func (s *DaySeries) Merge(typ string, other *DaySeries) error {
	for d, e := range other.entries {
		if e.IsScalar() {
			if err := s.Add(d, typ, e.scalar); err != nil {
				return err
			}
			continue
		}
		for t, v := range e.byType {
			if err := s.Add(d, t, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarshalJSON encodes the series as an object keyed by ISO date.
func (s *DaySeries) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.entries))
	for d, e := range s.entries {
		if e.IsScalar() {
			out[d.String()] = e.scalar
		} else {
			out[d.String()] = e.byType
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object keyed by ISO date whose values are numbers
// or objects of numbers. Every date and value is validated.
func (s *DaySeries) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode series")
	}
	s.entries = make(map[civil.Date]Entry, len(raw))
	for key, msg := range raw {
		d, err := errors.ValidateDate(key)
		if err != nil {
			return err
		}
		var v float64
		if err := json.Unmarshal(msg, &v); err == nil {
			if err := s.Set(d, Scalar(v)); err != nil {
				return err
			}
			continue
		}
		var typed map[string]float64
		if err := json.Unmarshal(msg, &typed); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "value on %s must be a number or an object of numbers", key)
		}
		if err := s.Set(d, ByType(typed)); err != nil {
			return err
		}
	}
	return nil
}
