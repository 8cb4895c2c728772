package model

import "time"

// MarkerState tracks an annotation through its lifecycle states.
type MarkerState string

const (
	// MarkerLocated is a place with no date attached; terminal.
	MarkerLocated MarkerState = "located"
	// MarkerDatedPending is a place with a date whose artwork fetch is
	// outstanding, returned empty, or failed.
	MarkerDatedPending MarkerState = "dated_pending"
	// MarkerDatedWithArt is a place with a date and at least one artwork.
	MarkerDatedWithArt MarkerState = "dated_with_art"
)

// MarkerReport is the rendered outcome of a single anchored annotation.
type MarkerReport struct {
	Key      string          `json:"key"`
	Location string          `json:"location"`
	Range    *DateRange      `json:"date_range,omitempty"`
	Element  int             `json:"element"`
	Offset   int             `json:"offset"`
	Length   int             `json:"length"`
	State    MarkerState     `json:"state"`
	Artworks []ArtworkRecord `json:"artworks,omitempty"`
}

// Report is the complete result of annotating one article.
type Report struct {
	Subject   string    `json:"subject"`
	SourceURL string    `json:"source_url,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`

	Candidates []Candidate    `json:"candidates"`
	Markers    []MarkerReport `json:"markers"`

	Stats ReportStats `json:"stats"`
}

// ReportStats summarizes the scan for the CLI output.
type ReportStats struct {
	Sentences  int `json:"sentences"`
	Candidates int `json:"candidates"`
	Anchored   int `json:"anchored"`
	Dropped    int `json:"dropped"` // candidates with no matching text span
	WithArt    int `json:"with_art"`
	Artworks   int `json:"artworks"`
}
