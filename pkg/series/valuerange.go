package series

// Neutral is the normalized position reported by an empty or degenerate range.
const Neutral = 0.5

// ValueRange tracks the observed minimum and maximum of a set of values.
// The zero value is an empty range.
type ValueRange struct {
	lower, upper float64
	valid        bool
}

// NewValueRange returns a range spanning lower..upper.
func NewValueRange(lower, upper float64) ValueRange {
	if upper < lower {
		lower, upper = upper, lower
	}
	return ValueRange{lower: lower, upper: upper, valid: true}
}

// Extend folds v into the range. The first call sets both bounds.
func (r *ValueRange) Extend(v float64) {
	if !r.valid {
		r.lower, r.upper, r.valid = v, v, true
		return
	}
	if v < r.lower {
		r.lower = v
	}
	if v > r.upper {
		r.upper = v
	}
}

// IsValid reports whether at least one value has been observed.
func (r ValueRange) IsValid() bool { return r.valid }

// Lower returns the smallest observed value.
func (r ValueRange) Lower() float64 { return r.lower }

// Upper returns the largest observed value.
func (r ValueRange) Upper() float64 { return r.upper }

// Diameter returns Upper - Lower, or 0 for an empty range.
func (r ValueRange) Diameter() float64 {
	if !r.valid {
		return 0
	}
	return r.upper - r.lower
}

// Normalize maps v to [0,1]: 0 at Lower, 1 at Upper, clamped outside.
// An empty or degenerate range returns [Neutral] for every input.
func (r ValueRange) Normalize(v float64) float64 {
	d := r.Diameter()
	if d <= 0 {
		return Neutral
	}
	n := (v - r.lower) / d
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}
