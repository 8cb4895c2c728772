package dates

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// RangeFunc is a pluggable date-recognition capability. Implementations
// return every year-bearing range found in the segment, or nil.
type RangeFunc func(segment string) []model.DateRange

// Strategy is one layer of the fallback chain.
type Strategy struct {
	Name  string
	Parse RangeFunc
}

// Normalizer converts heterogeneous date expressions into canonical year
// intervals. Strategies run in strict priority order; the first one that
// yields any range wins. Capabilities that are absent or that panic are
// skipped so the chain always falls through to the regex layers.
type Normalizer struct {
	strategies []Strategy
	minYear    int
	maxYear    int
}

// NewNormalizer builds a normalizer. structured and phrase are optional
// external capabilities (nil when absent); the century and bare-year regex
// layers are always present. minYear/maxYear bound the bare-year layer.
func NewNormalizer(structured, phrase RangeFunc, minYear, maxYear int) *Normalizer {
	if minYear <= 0 {
		minYear = 1000
	}
	if maxYear <= 0 {
		maxYear = 2099
	}

	n := &Normalizer{minYear: minYear, maxYear: maxYear}

	if structured != nil {
		n.strategies = append(n.strategies, Strategy{Name: "structured", Parse: guard(structured)})
	}
	if phrase == nil {
		phrase = PhraseRanges
	}
	n.strategies = append(n.strategies,
		Strategy{Name: "phrase", Parse: guard(phrase)},
		Strategy{Name: "century", Parse: CenturyRanges},
		Strategy{Name: "year", Parse: n.yearRanges},
	)
	return n
}

// guard wraps an external capability so a panic inside it reads as
// "no result" and the chain falls through (RecognitionUnavailable).
func guard(fn RangeFunc) RangeFunc {
	return func(segment string) (ranges []model.DateRange) {
		defer func() {
			if recover() != nil {
				ranges = nil
			}
		}()
		return fn(segment)
	}
}

// Normalize returns the single best range for a segment: the output of the
// first non-empty strategy, earliest Start (then End) breaking ties.
func (n *Normalizer) Normalize(segment string) (model.DateRange, bool) {
	for _, s := range n.strategies {
		ranges := s.Parse(segment)
		if len(ranges) == 0 {
			continue
		}
		best := ranges[0]
		for _, r := range ranges[1:] {
			if r.Start < best.Start || (r.Start == best.Start && r.End < best.End) {
				best = r
			}
		}
		return best, true
	}
	return model.DateRange{}, false
}

// Ranges returns every distinct range the winning strategy found in the
// segment. When two or more distinct years appear, a spanning range
// {min, max} is synthesized ahead of the individual results so "from 1915
// to 1918" reads as one interval before its parts.
func (n *Normalizer) Ranges(segment string) []model.DateRange {
	for _, s := range n.strategies {
		ranges := s.Parse(segment)
		if len(ranges) == 0 {
			continue
		}
		return synthesizeSpan(dedupeRanges(ranges))
	}
	return nil
}

func dedupeRanges(ranges []model.DateRange) []model.DateRange {
	seen := make(map[string]bool, len(ranges))
	out := ranges[:0:0]
	for _, r := range ranges {
		if !seen[r.Key()] {
			seen[r.Key()] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

func synthesizeSpan(ranges []model.DateRange) []model.DateRange {
	years := make(map[int]bool)
	for _, r := range ranges {
		years[r.Start] = true
		years[r.End] = true
	}
	if len(years) < 2 {
		return ranges
	}
	min, max := 0, 0
	first := true
	for y := range years {
		if first {
			min, max = y, y
			first = false
			continue
		}
		if y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	span := model.NewDateRange(min, max)
	if len(ranges) > 0 && ranges[0] == span {
		return ranges
	}
	return append([]model.DateRange{span}, ranges...)
}

var (
	centuryPairRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s*(?:–|-|to|and)\s*(\d{1,2})(?:st|nd|rd|th)?\s+centur(?:y|ies)\b`)
	centurySingleRe = regexp.MustCompile(`(?i)\b(early|mid(?:dle)?|late|end|ending|beginning|start)?[\s-]*(\d{1,2})(?:st|nd|rd|th)?\s+centur(?:y|ies)\b`)
)

// CenturyRanges recognizes century phrases. A century N maps to
// [(N-1)*100, (N-1)*100+99]; early/mid/late qualifiers narrow the interval
// to its first, middle, or final third.
func CenturyRanges(segment string) []model.DateRange {
	var ranges []model.DateRange

	for _, m := range centuryPairRe.FindAllStringSubmatch(segment, -1) {
		c1, err1 := strconv.Atoi(m[1])
		c2, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || c1 == 0 || c2 == 0 {
			continue
		}
		if c2 < c1 {
			c1, c2 = c2, c1
		}
		ranges = append(ranges, model.NewDateRange((c1-1)*100, (c2-1)*100+99))
	}
	if len(ranges) > 0 {
		return ranges
	}

	for _, m := range centurySingleRe.FindAllStringSubmatch(segment, -1) {
		century, err := strconv.Atoi(m[2])
		if err != nil || century == 0 {
			continue
		}
		base := (century - 1) * 100
		start, end := base, base+99
		switch strings.ToLower(m[1]) {
		case "early", "beginning", "start":
			end = base + 33
		case "mid", "middle":
			start, end = base+34, base+66
		case "late", "end", "ending":
			start = base + 67
		}
		ranges = append(ranges, model.NewDateRange(start, end))
	}
	return ranges
}

var (
	decadeRe   = regexp.MustCompile(`\b(\d{3})0s\b`)
	spanWordRe = regexp.MustCompile(`(?i)\b(?:from|between)\s+(\d{3,4})\s+(?:to|until|and)\s+(\d{3,4})\b`)
)

// PhraseRanges is the built-in general date-phrase parser used when no
// external phrase capability is supplied. It handles decades ("1920s") and
// worded spans ("from 1915 to 1918", "between 1905 and 1910").
func PhraseRanges(segment string) []model.DateRange {
	var ranges []model.DateRange
	for _, m := range spanWordRe.FindAllStringSubmatch(segment, -1) {
		start, err1 := strconv.Atoi(m[1])
		end, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		ranges = append(ranges, model.NewDateRange(start, end))
	}
	for _, m := range decadeRe.FindAllStringSubmatch(segment, -1) {
		prefix, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		decade := prefix * 10
		ranges = append(ranges, model.NewDateRange(decade, decade+9))
	}
	return ranges
}

var (
	yearPairRe = regexp.MustCompile(`\b(\d{3,4})\s*[-–]\s*(\d{3,4})\b`)
	yearRe     = regexp.MustCompile(`\b\d{3,4}\b`)
)

// yearRanges is the final fallback: explicit start-end pairs become ranges,
// lone years become degenerate ranges. Years outside [minYear, maxYear]
// are ignored.
func (n *Normalizer) yearRanges(segment string) []model.DateRange {
	var ranges []model.DateRange

	// Mask explicit pairs so their bounds are not re-emitted as singletons.
	masked := []byte(segment)
	for _, loc := range yearPairRe.FindAllStringSubmatchIndex(segment, -1) {
		start, err1 := strconv.Atoi(segment[loc[2]:loc[3]])
		end, err2 := strconv.Atoi(segment[loc[4]:loc[5]])
		if err1 != nil || err2 != nil || !n.inBounds(start) || !n.inBounds(end) {
			continue
		}
		ranges = append(ranges, model.NewDateRange(start, end))
		for i := loc[0]; i < loc[1]; i++ {
			masked[i] = ' '
		}
	}

	for _, m := range yearRe.FindAllString(string(masked), -1) {
		year, err := strconv.Atoi(m)
		if err != nil || !n.inBounds(year) {
			continue
		}
		ranges = append(ranges, model.NewYear(year))
	}
	return ranges
}

func (n *Normalizer) inBounds(year int) bool {
	return year >= n.minYear && year <= n.maxYear
}
