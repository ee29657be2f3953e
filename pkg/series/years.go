package series

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/matzehuels/heatposter/pkg/errors"
)

// YearSet is a sorted, de-duplicated list of years.
type YearSet []int

// NewYearSet sorts and de-duplicates years.
func NewYearSet(years ...int) YearSet {
	ys := lo.Uniq(years)
	slices.Sort(ys)
	return YearSet(ys)
}

// YearRange returns every year from..to inclusive. Both bounds must be
// renderable years.
func YearRange(from, to int) (YearSet, error) {
	if err := errors.ValidateYear(from); err != nil {
		return nil, err
	}
	if err := errors.ValidateYear(to); err != nil {
		return nil, err
	}
	if to < from {
		from, to = to, from
	}
	ys := make(YearSet, 0, to-from+1)
	for y := from; y <= to; y++ {
		ys = append(ys, y)
	}
	return ys, nil
}

// ParseYears parses a year list such as "2023", "2020-2023" or "2019,2021-2022".
func ParseYears(s string) (YearSet, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			a, err := parseYear(from)
			if err != nil {
				return nil, err
			}
			b, err := parseYear(to)
			if err != nil {
				return nil, err
			}
			r, err := YearRange(a, b)
			if err != nil {
				return nil, err
			}
			years = append(years, r...)
			continue
		}
		y, err := parseYear(part)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	ys := NewYearSet(years...)
	return ys, ys.Validate()
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidYear, "invalid year %q", s)
	}
	return y, nil
}

// Validate checks that the set is non-empty and every year is renderable.
func (ys YearSet) Validate() error {
	if len(ys) == 0 {
		return errors.New(errors.ErrCodeEmptyYears, "at least one year is required")
	}
	for _, y := range ys {
		if err := errors.ValidateYear(y); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether year is in the set.
func (ys YearSet) Contains(year int) bool {
	_, ok := slices.BinarySearch(ys, year)
	return ok
}

// String renders the set as a comma separated list.
func (ys YearSet) String() string {
	return strings.Join(lo.Map(ys, func(y int, _ int) string { return strconv.Itoa(y) }), ",")
}
