package model

import (
	"fmt"
	"strings"
	"unicode"
)

// DateRange is an inclusive year interval. A single year has Start == End.
// Ranges are value objects and never mutated after construction.
type DateRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewDateRange builds a range, swapping bounds if given out of order.
func NewDateRange(start, end int) DateRange {
	if end < start {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

// NewYear builds a degenerate single-year range.
func NewYear(year int) DateRange {
	return DateRange{Start: year, End: year}
}

// MidYear returns the representative year of the range (rounded midpoint).
func (r DateRange) MidYear() int {
	return (r.Start + r.End + 1) / 2
}

// Contains reports whether the year falls inside the range.
func (r DateRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// String renders "1914–1918" or "1969" for a degenerate range.
func (r DateRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d–%d", r.Start, r.End)
}

// Key renders the range portion of a CanonicalKey ("1914-1918").
func (r DateRange) Key() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Candidate is an extracted (location, date-range) pair before anchoring.
// Range is nil for location-only candidates. Candidates carry no identity
// beyond their CanonicalKey.
type Candidate struct {
	Location string     `json:"location"`
	Range    *DateRange `json:"date_range,omitempty"`
}

// Key returns the candidate's CanonicalKey.
func (c Candidate) Key() string {
	return CanonicalKey(c.Location, c.Range)
}

// CanonicalLocation normalizes a place mention for comparison and keying:
// lower-cased, punctuation stripped, whitespace collapsed. A mention that
// is pure punctuation canonicalizes to the empty string.
func CanonicalLocation(loc string) string {
	var b strings.Builder
	b.Grow(len(loc))
	space := true
	for _, r := range strings.ToLower(loc) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CanonicalKey derives the dedup/cache key for a (location, range) pair.
// It is a pure function of its inputs; two candidates with equal keys are
// interchangeable for marking and fetching.
func CanonicalKey(location string, r *DateRange) string {
	if r == nil {
		return CanonicalLocation(location) + "|"
	}
	return CanonicalLocation(location) + "|" + r.Key()
}
