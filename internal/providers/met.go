package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

const (
	metName           = "Met Museum"
	defaultMetBaseURL = "https://collectionapi.metmuseum.org/public/collection/v1"
)

// MetProvider queries the Metropolitan Museum of Art open-access API: a
// search endpoint returning object IDs, then a detail fetch per object.
// It issues a single search with a ± padding window around the candidate's
// representative year.
type MetProvider struct {
	broker      *Broker
	baseURL     string
	yearPadding int
	logger      *slog.Logger
}

// NewMetProvider creates the Met provider. baseURL is overridable for
// tests; yearPadding widens the date filter around the query's mid year.
func NewMetProvider(broker *Broker, baseURL string, yearPadding int, logger *slog.Logger) *MetProvider {
	if baseURL == "" {
		baseURL = defaultMetBaseURL
	}
	if yearPadding <= 0 {
		yearPadding = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetProvider{broker: broker, baseURL: baseURL, yearPadding: yearPadding, logger: logger}
}

// Name returns the provider name.
func (p *MetProvider) Name() string { return metName }

type metSearchResponse struct {
	Total     int   `json:"total"`
	ObjectIDs []int `json:"objectIDs"`
}

type metObject struct {
	ObjectID          int    `json:"objectID"`
	Title             string `json:"title"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ObjectDate        string `json:"objectDate"`
	PrimaryImage      string `json:"primaryImage"`
	PrimaryImageSmall string `json:"primaryImageSmall"`
	Repository        string `json:"repository"`
	Department        string `json:"department"`
	GalleryNumber     string `json:"GalleryNumber"`
}

// Search runs the two-step search then per-object detail flow. Objects without a
// thumbnail are dropped; individual detail-fetch failures are skipped so
// one broken record never empties the result.
func (p *MetProvider) Search(ctx context.Context, q Query) ([]model.ArtworkRecord, error) {
	dateBegin, dateEnd := 0, 2100
	if q.Range != nil {
		mid := q.Range.MidYear()
		dateBegin, dateEnd = mid-p.yearPadding, mid+p.yearPadding
	}

	params := url.Values{}
	params.Set("hasImages", "true")
	params.Set("q", q.Location)
	params.Set("dateBegin", strconv.Itoa(dateBegin))
	params.Set("dateEnd", strconv.Itoa(dateEnd))

	var search metSearchResponse
	if err := p.broker.GetJSON(ctx, p.baseURL+"/search?"+params.Encode(), &search); err != nil {
		return nil, fmt.Errorf("met search: %w", err)
	}

	ids := search.ObjectIDs
	if q.Limit > 0 && len(ids) > q.Limit {
		ids = ids[:q.Limit]
	}

	var records []model.ArtworkRecord
	for _, id := range ids {
		var obj metObject
		if err := p.broker.GetJSON(ctx, fmt.Sprintf("%s/objects/%d", p.baseURL, id), &obj); err != nil {
			p.logger.Debug("met.object_failed", slog.Int("id", id), slog.String("error", err.Error()))
			continue
		}
		if rec, ok := p.mapObject(obj); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (p *MetProvider) mapObject(obj metObject) (model.ArtworkRecord, bool) {
	if obj.PrimaryImageSmall == "" {
		return model.ArtworkRecord{}, false
	}
	location := obj.Repository
	if location == "" {
		location = obj.GalleryNumber
	}
	if location == "" {
		location = obj.Department
	}
	return model.ArtworkRecord{
		ID:        fmt.Sprintf("met-%d", obj.ObjectID),
		Title:     obj.Title,
		Artist:    obj.ArtistDisplayName,
		DateLabel: obj.ObjectDate,
		ThumbURL:  obj.PrimaryImageSmall,
		FullURL:   obj.PrimaryImage,
		Source:    metName,
		Location:  location,
	}, true
}
