package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"cloud.google.com/go/civil"
)

// Year bounds accepted for rendering.
const (
	MinYear = 1
	MaxYear = 9999
)

// ValidateDate parses an ISO calendar date (YYYY-MM-DD).
// Impossible dates such as 2023-02-29 are rejected.
func ValidateDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil || !d.IsValid() {
		return civil.Date{}, New(ErrCodeInvalidDate, "invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

// ValidateYear checks that year is a renderable Gregorian year.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return New(ErrCodeInvalidYear, "year %d out of range %d..%d", year, MinYear, MaxYear)
	}
	return nil
}

// ValidateValue rejects negative and non-finite daily values.
func ValidateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "value %v is not a finite number", v)
	}
	if v < 0 {
		return New(ErrCodeNegativeValue, "value %v is negative", v)
	}
	return nil
}

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor checks for a #rgb or #rrggbb hex color.
func ValidateColor(c string) error {
	if !hexColorRegex.MatchString(c) {
		return New(ErrCodeInvalidColor, "invalid color %q (want #rrggbb)", c)
	}
	return nil
}

// ValidateTypeName validates a tracked-type label.
// Labels end up in legends and cache keys, so control characters and
// overly long names are refused.
func ValidateTypeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeEmptyTypes, "type name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "type name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "type name contains invalid control characters")
		}
	}
	return nil
}

// ValidateTypeList checks that at least one type is tracked and that all
// labels are valid and unique.
func ValidateTypeList(types []string) error {
	if len(types) == 0 {
		return New(ErrCodeEmptyTypes, "at least one type is required")
	}
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		if err := ValidateTypeName(t); err != nil {
			return err
		}
		if seen[t] {
			return New(ErrCodeInvalidInput, "duplicate type %q", t)
		}
		seen[t] = true
	}
	return nil
}

// ValidatePath validates a relative output or input path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
