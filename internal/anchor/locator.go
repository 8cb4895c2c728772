package anchor

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

const minNeedleLen = 3

// Anchor is a located text span bound to a candidate's CanonicalKey.
type Anchor struct {
	Key     string
	Element int
	Offset  int
	Length  int
	Span    Span
}

// Locator finds anchors for candidates and tags their spans. It keeps a
// per-element occurrence registry so identical spans are never marked
// twice across candidates within one scan.
type Locator struct {
	doc    *Document
	logger *slog.Logger

	// claimed tracks tagged intervals per element.
	claimed map[int][][2]int
	// seen holds (CanonicalKey, occurrence index) pairs per element.
	seen map[int]map[string]bool
}

// NewLocator builds a locator over a parsed document. One locator serves
// one scan; re-scans build a new one.
func NewLocator(doc *Document, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{
		doc:     doc,
		logger:  logger,
		claimed: make(map[int][][2]int),
		seen:    make(map[int]map[string]bool),
	}
}

// Locate scans block elements in document order and tags the first
// unmarked occurrence of the candidate's location in every qualifying
// element. An element qualifies only when its canonical text contains the
// candidate's canonical location and, for dated candidates, passes the
// date gate. The returned anchors are in document order; the slice is
// empty when no span matches (the candidate is dropped, logged only).
func (l *Locator) Locate(c model.Candidate) []Anchor {
	locKey := model.CanonicalLocation(c.Location)
	if locKey == "" {
		return nil
	}
	key := c.Key()

	var anchors []Anchor
	for _, el := range l.doc.Elements {
		if !strings.Contains(model.CanonicalLocation(el.Text), locKey) {
			continue
		}
		if c.Range != nil && !ElementHasDateRange(el.Text, *c.Range) {
			continue
		}
		if a, ok := l.markFirst(el, c.Location, key); ok {
			anchors = append(anchors, a)
		}
	}

	if len(anchors) == 0 {
		l.logger.Debug("anchor.none", slog.String("key", key))
	}
	return anchors
}

// markFirst picks the span to mark inside an element that already passed
// the qualification gates. It tries the full location string, its first
// comma-delimited segment, then its first word; the fallbacks cover
// spellings whose raw text differs from the location in punctuation or
// spacing. The first needle with an untouched occurrence wins.
func (l *Locator) markFirst(el Element, location, key string) (Anchor, bool) {
	needles := []string{strings.TrimSpace(location)}
	if segment := strings.TrimSpace(strings.SplitN(location, ",", 2)[0]); len(segment) >= minNeedleLen && segment != needles[0] {
		needles = append(needles, segment)
	}
	if fields := strings.Fields(location); len(fields) > 0 && len(fields[0]) >= minNeedleLen && fields[0] != needles[0] {
		needles = append(needles, fields[0])
	}

	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if a, ok := l.markOccurrence(el, needle, key); ok {
			return a, true
		}
	}
	return Anchor{}, false
}

func (l *Locator) markOccurrence(el Element, needle, key string) (Anchor, bool) {
	lowerText := strings.ToLower(el.Text)
	lowerNeedle := strings.ToLower(needle)

	occurrence := 0
	for from := 0; from < len(lowerText); {
		idx := strings.Index(lowerText[from:], lowerNeedle)
		if idx < 0 {
			break
		}
		offset := from + idx
		length := extendWordBoundary(el.Text, offset, len(needle))
		regKey := fmt.Sprintf("%s|%d", key, occurrence)

		if !l.isClaimed(el.Index, offset, length) && !l.seen[el.Index][regKey] {
			if l.seen[el.Index] == nil {
				l.seen[el.Index] = make(map[string]bool)
			}
			l.seen[el.Index][regKey] = true
			l.claimed[el.Index] = append(l.claimed[el.Index], [2]int{offset, offset + length})

			span := l.doc.Tag(el.Index, offset, length, key)
			return Anchor{Key: key, Element: el.Index, Offset: offset, Length: length, Span: span}, true
		}

		occurrence++
		from = offset + len(lowerNeedle)
	}
	return Anchor{}, false
}

func (l *Locator) isClaimed(element, offset, length int) bool {
	for _, iv := range l.claimed[element] {
		if offset < iv[1] && offset+length > iv[0] {
			return true
		}
	}
	return false
}

// extendWordBoundary grows a match rightward while the following character
// is part of a word, so "Europe" never matches inside "European".
func extendWordBoundary(text string, offset, length int) int {
	for offset+length < len(text) {
		r, size := utf8.DecodeRuneInString(text[offset+length:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		length += size
	}
	return length
}

var (
	numberRe  = regexp.MustCompile(`\d{3,4}`)
	centuryRe = regexp.MustCompile(`(?i)\bcentur(?:y|ies)\b`)
)

// ElementHasDateRange reports whether element text carries a number inside
// the range, or any century phrase. Century mentions pass permissively
// because century ranges are wide.
func ElementHasDateRange(text string, r model.DateRange) bool {
	for _, m := range numberRe.FindAllString(text, -1) {
		n := 0
		for _, d := range m {
			n = n*10 + int(d-'0')
		}
		if r.Contains(n) {
			return true
		}
	}
	return centuryRe.MatchString(text)
}
