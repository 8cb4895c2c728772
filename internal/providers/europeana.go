package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

const (
	europeanaName           = "Europeana"
	defaultEuropeanaBaseURL = "https://api.europeana.eu/record/v2/search.json"
)

// EuropeanaProvider queries the Europeana search API. The collection is
// broad and loosely curated, so the provider relaxes its query
// progressively: spatial+date filters, then date-only, then the bare
// year-range query. The first attempt yielding results wins and later
// steps are skipped.
type EuropeanaProvider struct {
	broker      *Broker
	baseURL     string
	apiKey      string
	yearPadding int
	logger      *slog.Logger
}

// NewEuropeanaProvider creates the Europeana provider. An API key is
// required; the caller disables the provider when no key is configured.
func NewEuropeanaProvider(broker *Broker, baseURL, apiKey string, yearPadding int, logger *slog.Logger) (*EuropeanaProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Europeana API key is required")
	}
	if baseURL == "" {
		baseURL = defaultEuropeanaBaseURL
	}
	if yearPadding <= 0 {
		yearPadding = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EuropeanaProvider{
		broker:      broker,
		baseURL:     baseURL,
		apiKey:      apiKey,
		yearPadding: yearPadding,
		logger:      logger,
	}, nil
}

// Name returns the provider name.
func (p *EuropeanaProvider) Name() string { return europeanaName }

type europeanaResponse struct {
	Success      bool            `json:"success"`
	TotalResults int             `json:"totalResults"`
	Items        []europeanaItem `json:"items"`
}

type europeanaItem struct {
	ID               string   `json:"id"`
	GUID             string   `json:"guid"`
	Title            []string `json:"title"`
	DcCreator        []string `json:"dcCreator"`
	Year             []string `json:"year"`
	EdmTimespanLabel []string `json:"edmTimespanLabel"`
	EdmPreview       []string `json:"edmPreview"`
	EdmIsShownBy     []string `json:"edmIsShownBy"`
	DataProvider     []string `json:"dataProvider"`
	Provider         []string `json:"provider"`
	Country          []string `json:"country"`
}

type relaxationStep struct {
	label       string
	spatial     bool
	yearFilters bool
}

// Search runs the progressive-relaxation query. Each step is a fully
// separate request; a step's transport failure falls through to the next
// step rather than aborting the search.
func (p *EuropeanaProvider) Search(ctx context.Context, q Query) ([]model.ArtworkRecord, error) {
	if q.Range == nil {
		return nil, fmt.Errorf("europeana search requires a date range")
	}

	steps := []relaxationStep{
		{label: "spatial+year", spatial: true, yearFilters: true},
		{label: "year", spatial: false, yearFilters: true},
		{label: "query-only", spatial: false, yearFilters: false},
	}

	var lastErr error
	for _, step := range steps {
		reqURL := p.buildURL(q, step)
		p.logger.Debug("europeana.attempt", slog.String("step", step.label))

		var resp europeanaResponse
		if err := p.broker.GetJSON(ctx, reqURL, &resp); err != nil {
			lastErr = err
			p.logger.Debug("europeana.attempt_failed",
				slog.String("step", step.label),
				slog.String("error", err.Error()))
			continue
		}

		records := p.mapItems(resp.Items)
		if len(records) > 0 {
			return records, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("europeana search: %w", lastErr)
	}
	return nil, nil
}

func (p *EuropeanaProvider) buildURL(q Query, step relaxationStep) string {
	mid := q.Range.MidYear()
	lower := mid - p.yearPadding
	if lower < 0 {
		lower = 0
	}
	yearQuery := fmt.Sprintf("YEAR:[%d TO %d]", lower, mid+p.yearPadding)

	params := url.Values{}
	params.Set("wskey", p.apiKey)
	params.Set("query", yearQuery)
	params.Set("media", "true")
	params.Set("profile", "rich")
	params.Set("rows", strconv.Itoa(q.Limit))
	params.Add("qf", "TYPE:IMAGE")

	clean := normalizeLocation(q.Location)
	if step.spatial && clean != "" && isLikelyPlace(clean) {
		params.Add("qf", "spatial:"+clean)
	}
	if step.yearFilters {
		params.Add("qf", yearQuery)
	}
	return p.baseURL + "?" + params.Encode()
}

func (p *EuropeanaProvider) mapItems(items []europeanaItem) []model.ArtworkRecord {
	var records []model.ArtworkRecord
	for _, item := range items {
		thumb := first(item.EdmPreview)
		if thumb == "" {
			continue
		}
		full := first(item.EdmIsShownBy)
		if full == "" {
			full = thumb
		}
		id := item.ID
		if id == "" {
			id = item.GUID
		}
		if id == "" {
			id = thumb
		}
		title := first(item.Title)
		if title == "" {
			title = first(item.DataProvider)
		}
		if title == "" {
			title = "Untitled"
		}
		artist := first(item.DcCreator)
		if artist == "" {
			artist = first(item.DataProvider)
		}
		dateLabel := first(item.Year)
		if dateLabel == "" {
			dateLabel = first(item.EdmTimespanLabel)
		}
		location := first(item.DataProvider)
		if location == "" {
			location = first(item.Provider)
		}
		if location == "" {
			location = first(item.Country)
		}

		records = append(records, model.ArtworkRecord{
			ID:        "eu-" + id,
			Title:     title,
			Artist:    artist,
			DateLabel: dateLabel,
			ThumbURL:  thumb,
			FullURL:   full,
			Source:    europeanaName,
			Location:  location,
		})
	}
	return records
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// normalizeLocation keeps the first comma-delimited segment with collapsed
// whitespace; "Paris, France" filters on "Paris".
func normalizeLocation(raw string) string {
	segment := strings.SplitN(raw, ",", 2)[0]
	return strings.Join(strings.Fields(segment), " ")
}

// isLikelyPlace gates the spatial filter: no digits, at most five words.
func isLikelyPlace(text string) bool {
	if text == "" || strings.ContainsAny(text, "0123456789") {
		return false
	}
	return len(strings.Fields(text)) <= 5
}
