package marker

import (
	"log/slog"
	"sync"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/anchor"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// Marker is the stateful annotation attached to one anchor. It progresses
// from Located or DatedPending to DatedWithArt and never reverts. A marker carries
// at most one active resolution request; results from superseded requests
// are discarded.
type Marker struct {
	Anchor    anchor.Anchor
	Candidate model.Candidate

	mu       sync.Mutex
	state    model.MarkerState
	request  uint64
	artworks []model.ArtworkRecord
	logger   *slog.Logger
}

// New creates a marker in Located for date-less candidates and
// DatedPending for dated ones.
func New(a anchor.Anchor, c model.Candidate, logger *slog.Logger) *Marker {
	if logger == nil {
		logger = slog.Default()
	}
	state := model.MarkerLocated
	if c.Range != nil {
		state = model.MarkerDatedPending
	}
	return &Marker{Anchor: a, Candidate: c, state: state, logger: logger}
}

// State returns the current lifecycle state.
func (m *Marker) State() model.MarkerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Artworks returns the applied results, nil until a resolution succeeds.
func (m *Marker) Artworks() []model.ArtworkRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artworks
}

// BeginResolution starts a new resolution attempt and returns its request
// ID. Any outstanding attempt is implicitly superseded: its eventual result
// fails the staleness check and is ignored.
func (m *Marker) BeginResolution() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.request++
	return m.request
}

// Complete applies a resolution outcome. It returns false when the result
// is stale (a newer request was issued) or the marker has no date. Empty
// results and failures both leave the marker in DatedPending; they render
// identically but log distinct events for diagnostics.
func (m *Marker) Complete(request uint64, artworks []model.ArtworkRecord, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if request != m.request {
		m.logger.Debug("resolve.stale",
			slog.String("key", m.Anchor.Key),
			slog.Uint64("request", request),
			slog.Uint64("latest", m.request))
		return false
	}
	if m.state == model.MarkerLocated {
		return false
	}

	switch {
	case err != nil:
		m.logger.Debug("resolve.failed",
			slog.String("key", m.Anchor.Key),
			slog.String("error", err.Error()))
	case len(artworks) == 0:
		m.logger.Debug("resolve.empty", slog.String("key", m.Anchor.Key))
	default:
		m.state = model.MarkerDatedWithArt
		m.artworks = artworks
		m.logger.Debug("resolve.applied",
			slog.String("key", m.Anchor.Key),
			slog.Int("artworks", len(artworks)))
	}
	return true
}

// Report snapshots the marker for the annotation report.
func (m *Marker) Report() model.MarkerReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.MarkerReport{
		Key:      m.Anchor.Key,
		Location: m.Candidate.Location,
		Range:    m.Candidate.Range,
		Element:  m.Anchor.Element,
		Offset:   m.Anchor.Offset,
		Length:   m.Anchor.Length,
		State:    m.state,
		Artworks: m.artworks,
	}
}

// Set holds the markers of one scan. Sets are rebuilt wholesale when a
// document is re-scanned; there is no cross-run reconciliation.
type Set struct {
	markers []*Marker
}

// NewSet creates an empty marker set.
func NewSet() *Set {
	return &Set{}
}

// Add creates and tracks a marker for an anchored candidate.
func (s *Set) Add(a anchor.Anchor, c model.Candidate, logger *slog.Logger) *Marker {
	m := New(a, c, logger)
	s.markers = append(s.markers, m)
	return m
}

// Markers returns the tracked markers in creation order.
func (s *Set) Markers() []*Marker {
	return s.markers
}
