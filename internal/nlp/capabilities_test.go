package nlp

import (
	"testing"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

func TestSplitSentences_Basic(t *testing.T) {
	text := "The siege began in 1914. It ended four years later! Was it worth it?"
	sentences := SplitSentences(text)

	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "The siege began in 1914." {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
}

func TestSplitSentences_NewlinesAsTerminators(t *testing.T) {
	text := "History\nThe city was founded in 1200."
	sentences := SplitSentences(text)

	if len(sentences) != 2 {
		t.Fatalf("Expected heading to be its own sentence, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "History" {
		t.Errorf("Expected heading first, got %q", sentences[0])
	}
}

func TestSplitSentences_MidTokenPeriodNotSplit(t *testing.T) {
	text := "The U.K.-based firm closed in 1999."
	sentences := SplitSentences(text)

	if len(sentences) != 1 {
		t.Errorf("Expected 1 sentence, got %d: %v", len(sentences), sentences)
	}
}

func TestDetectPlaces_SingleWord(t *testing.T) {
	places := DetectPlaces("The exhibition opened in Paris during the fair.")

	if len(places) != 1 || places[0] != "Paris" {
		t.Errorf("Expected [Paris], got %v", places)
	}
}

func TestDetectPlaces_MultiWordWithConnector(t *testing.T) {
	places := DetectPlaces("He was born on the Isle of Man in winter.")

	found := false
	for _, p := range places {
		if p == "Isle of Man" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected to find 'Isle of Man', got %v", places)
	}
}

func TestDetectPlaces_SentenceInitialStopwordSkipped(t *testing.T) {
	places := DetectPlaces("The Vienna opera house reopened.")

	if len(places) != 1 || places[0] != "Vienna" {
		t.Errorf("Expected [Vienna], got %v", places)
	}
}

func TestDetectPlaces_DigitsRejected(t *testing.T) {
	places := DetectPlaces("Apollo 11 landed safely.")

	for _, p := range places {
		if p == "Apollo 11" {
			t.Errorf("Expected digit-bearing phrase to be dropped, got %v", places)
		}
	}
}

func TestDetectPlaces_LongRunDropped(t *testing.T) {
	places := DetectPlaces("She read The Rise And Fall Of The Roman Empire Abridged Edition carefully.")

	for _, p := range places {
		if len(p) > 40 {
			t.Errorf("Expected long title run to be dropped, got %q", p)
		}
	}
}

func TestDetectPlaces_PunctuationEndsRun(t *testing.T) {
	places := DetectPlaces("They moved to Berlin, Germany was home now.")

	joined := false
	for _, p := range places {
		if p == "Berlin Germany" {
			joined = true
		}
	}
	if joined {
		t.Errorf("Expected comma to split the run, got %v", places)
	}
}

func TestParseLLMPairs_ValidArray(t *testing.T) {
	raw := `Here are the pairs:
[{"location": "Paris", "year": 1889}, {"location": "Vienna", "year": 0}]`

	candidates, err := parseLLMPairs(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Location != "Paris" || candidates[0].Range == nil || candidates[0].Range.Start != 1889 {
		t.Errorf("Unexpected first candidate: %+v", candidates[0])
	}
	if candidates[1].Range != nil {
		t.Errorf("Expected year 0 to produce a location-only candidate, got %+v", candidates[1].Range)
	}
}

func TestParseLLMPairs_NoArray(t *testing.T) {
	if _, err := parseLLMPairs("I could not find any pairs."); err == nil {
		t.Error("Expected an error when the reply has no JSON array")
	}
}

func TestNewLLMExtractor_RequiresAPIKey(t *testing.T) {
	if _, err := NewLLMExtractor(model.LLMConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Error("Expected an error without an API key")
	}
}
