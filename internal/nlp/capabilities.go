package nlp

import (
	"strings"
	"unicode"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// Capabilities is the recognition contract the extractor consumes.
// Sentences and Places are required; the date capabilities are optional and
// nil when the corresponding recognizer is absent. The descriptor is
// resolved once at construction, never probed at call time.
type Capabilities struct {
	// Sentences segments text into sentences.
	Sentences func(text string) []string

	// Places returns place mentions found in a sentence.
	Places func(sentence string) []string

	// StructuredDates is an optional structured date recognizer.
	StructuredDates func(segment string) []model.DateRange

	// PhraseDates is an optional general date-phrase parser.
	PhraseDates func(segment string) []model.DateRange
}

// Heuristic returns the built-in regex-grade capabilities: a punctuation
// sentence splitter and a capitalized-phrase place detector. No date
// capabilities are attached; the normalizer's own layers cover those.
func Heuristic() Capabilities {
	return Capabilities{
		Sentences: SplitSentences,
		Places:    DetectPlaces,
	}
}

// SplitSentences splits text on sentence terminators followed by
// whitespace. Newlines count as terminators so headings become their own
// sentences.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on abbreviations mid-token.
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()

	return sentences
}

// placeStopwords are capitalized words that start sentences or name
// non-places; a candidate phrase made only of these is discarded.
var placeStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"of": true, "and": true, "or": true, "but": true, "by": true, "for": true,
	"from": true, "to": true, "with": true, "it": true, "its": true,
	"he": true, "she": true, "they": true, "we": true, "i": true, "his": true,
	"her": true, "this": true, "that": true, "these": true, "those": true,
	"when": true, "where": true, "while": true, "after": true, "before": true,
	"during": true, "however": true, "although": true, "world": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}

// connectors may appear inside a multi-word place name ("Isle of Man").
var placeConnectors = map[string]bool{"of": true, "de": true, "la": true, "le": true, "du": true}

// DetectPlaces finds runs of capitalized words in a sentence. It is a
// heuristic, not a grammar: a leading stopword is trimmed, all-stopword
// phrases and phrases with digits are dropped, and phrases longer than
// five words are assumed to be titles rather than places.
func DetectPlaces(sentence string) []string {
	words := strings.Fields(sentence)
	var places []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		phrase := trimPlaceRun(run)
		run = nil
		if phrase == "" {
			return
		}
		if n := len(strings.Fields(phrase)); n == 0 || n > 5 {
			return
		}
		places = append(places, phrase)
	}

	for i, w := range words {
		token := strings.Trim(w, ".,;:!?()[]\"'")
		if token == "" || strings.ContainsAny(token, "0123456789") {
			flush()
			continue
		}
		lower := strings.ToLower(token)
		if isCapitalized(token) {
			// Sentence-initial stopwords ("The", "In") are skipped unless
			// they continue an existing run.
			if len(run) == 0 && placeStopwords[lower] {
				continue
			}
			run = append(run, token)
		} else if len(run) > 0 && placeConnectors[lower] && i+1 < len(words) && isCapitalized(strings.Trim(words[i+1], ".,;:!?()[]\"'")) {
			run = append(run, token)
		} else {
			flush()
		}
		// Trailing punctuation on the original word ends the phrase.
		if token != w && strings.ContainsAny(w[len(w)-1:], ".,;:!?)]\"'") {
			flush()
		}
	}
	flush()

	return places
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func trimPlaceRun(run []string) string {
	// Drop leading/trailing connectors and all-stopword runs.
	start, end := 0, len(run)
	for start < end && placeConnectors[strings.ToLower(run[start])] {
		start++
	}
	for end > start && placeConnectors[strings.ToLower(run[end-1])] {
		end--
	}
	trimmed := run[start:end]
	allStop := true
	for _, w := range trimmed {
		if !placeStopwords[strings.ToLower(w)] {
			allStop = false
			break
		}
	}
	if allStop {
		return ""
	}
	return strings.Join(trimmed, " ")
}
