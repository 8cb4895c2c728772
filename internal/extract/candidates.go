package extract

import (
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/dates"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/nlp"
)

// Extractor derives deduplicated (location, date-range) candidates from
// article text. Extraction is stateless: every call re-derives from
// scratch.
type Extractor struct {
	caps       nlp.Capabilities
	normalizer *dates.Normalizer
	logger     *slog.Logger
}

// NewExtractor builds an extractor from a resolved capability descriptor
// and a date normalizer.
func NewExtractor(caps nlp.Capabilities, normalizer *dates.Normalizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{caps: caps, normalizer: normalizer, logger: logger}
}

// Extract scans up to scanLimit characters of text and returns candidates
// in reading order, deduplicated by CanonicalKey. Sentences without their
// own date range inherit the nearest neighbor's range.
func (e *Extractor) Extract(text string, scanLimit int) []model.Candidate {
	text = truncate(text, scanLimit)
	if text == "" {
		return nil
	}

	sentences := e.caps.Sentences(text)
	if len(sentences) == 0 {
		return nil
	}

	rangesBySentence := make([][]model.DateRange, len(sentences))
	for i, sentence := range sentences {
		rangesBySentence[i] = e.normalizer.Ranges(sentence)
	}

	seen := make(map[string]bool)
	var candidates []model.Candidate

	for i, sentence := range sentences {
		places := e.caps.Places(sentence)
		if len(places) == 0 {
			continue
		}

		chosen := chooseRange(i, rangesBySentence)

		for _, place := range places {
			c := model.Candidate{Location: place, Range: chosen}
			if model.CanonicalLocation(place) == "" {
				continue
			}
			key := c.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, c)
		}
	}

	e.logger.Debug("extract.done",
		slog.Int("sentences", len(sentences)),
		slog.Int("candidates", len(candidates)))
	return candidates
}

// SentenceCount reports how many sentences the capability finds in the
// truncated text; the pipeline records it for diagnostics.
func (e *Extractor) SentenceCount(text string, scanLimit int) int {
	return len(e.caps.Sentences(truncate(text, scanLimit)))
}

// chooseRange picks a sentence's own first range, or searches outward by
// increasing radius for the nearest neighbor with one. The textually
// earlier neighbor wins ties. A sentence with its own range never inherits.
func chooseRange(idx int, rangesBySentence [][]model.DateRange) *model.DateRange {
	if len(rangesBySentence[idx]) > 0 {
		r := rangesBySentence[idx][0]
		return &r
	}
	for radius := 1; radius <= len(rangesBySentence); radius++ {
		if prev := idx - radius; prev >= 0 && len(rangesBySentence[prev]) > 0 {
			r := rangesBySentence[prev][0]
			return &r
		}
		if next := idx + radius; next < len(rangesBySentence) && len(rangesBySentence[next]) > 0 {
			r := rangesBySentence[next][0]
			return &r
		}
	}
	return nil
}

// truncate caps text at limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

var leadPlaceRe = regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z][a-z]+){0,2})\b`)

// FallbackCandidate builds one coarse candidate from an article's title and
// lead text when full extraction finds nothing: the first capitalized
// phrase plus the first in-bounds year of the lead.
func FallbackCandidate(title, lead string, normalizer *dates.Normalizer) (model.Candidate, bool) {
	location := leadPlaceRe.FindString(title)
	if location == "" {
		location = leadPlaceRe.FindString(lead)
	}
	if location == "" {
		return model.Candidate{}, false
	}

	c := model.Candidate{Location: location}
	if r, ok := normalizer.Normalize(lead); ok {
		c.Range = &r
	}
	return c, true
}
