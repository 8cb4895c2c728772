package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

const llmPromptLimit = 5000

// LLMExtractor asks an OpenAI-compatible model for (location, year) pairs.
// It supplements the heuristic extractor; any failure degrades to an empty
// result so the caller falls back to the regex pipeline.
type LLMExtractor struct {
	client *openai.Client
	config model.LLMConfig
}

// NewLLMExtractor creates an LLM extractor. The API key is required.
func NewLLMExtractor(cfg model.LLMConfig) (*LLMExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &LLMExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

type llmPair struct {
	Location string `json:"location"`
	Year     int    `json:"year"`
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

// Extract asks the model for up to MaxPairs (location, year) pairs from the
// article text and maps them into candidates. Years of zero become
// location-only candidates.
func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]model.Candidate, error) {
	if len(text) > llmPromptLimit {
		text = text[:llmPromptLimit]
	}

	maxPairs := e.config.MaxPairs
	if maxPairs == 0 {
		maxPairs = 5
	}
	prompt := fmt.Sprintf(`Given the following article text, list up to %d (location, year) pairs that best describe places and times referenced. Prefer concrete places (city/country/venue) and specific years, using an indicative year if only a decade is given.

Return a JSON array of objects: [{"location":"...", "year": 1999}, ...] with year as a single number, or 0 when no year applies.

Text:
%s`, maxPairs, text)

	modelName := e.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	maxTokens := e.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 400
	}
	timeout := time.Duration(e.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You extract location + year pairs from article text to help find art from that place and time.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseLLMPairs(resp.Choices[0].Message.Content)
}

// parseLLMPairs pulls the first JSON array out of the model's reply and
// maps it into candidates.
func parseLLMPairs(raw string) ([]model.Candidate, error) {
	match := jsonArrayRe.FindString(raw)
	if match == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var pairs []llmPair
	if err := json.Unmarshal([]byte(match), &pairs); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var candidates []model.Candidate
	for _, p := range pairs {
		location := strings.TrimSpace(p.Location)
		if location == "" {
			continue
		}
		c := model.Candidate{Location: location}
		if p.Year > 0 {
			r := model.NewYear(p.Year)
			c.Range = &r
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
