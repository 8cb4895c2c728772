package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/nlp"
)

// newArtServer serves a minimal Met-shaped API with one artwork.
func newArtServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"total":     1,
				"objectIDs": []int{7},
			})
		case strings.HasPrefix(r.URL.Path, "/objects/"):
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"objectID":          7,
				"title":             "View of the Seine",
				"artistDisplayName": "Anon",
				"objectDate":        "1889",
				"primaryImage":      "https://img.example/full.jpg",
				"primaryImageSmall": "https://img.example/small.jpg",
				"repository":        "Metropolitan Museum of Art",
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func testPipelineConfig(metBaseURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Providers.MetBaseURL = metBaseURL
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.BurstSize = 1000
	return cfg
}

func TestNewNormalizer_UsesCapabilityDates(t *testing.T) {
	caps := nlp.Heuristic()
	caps.StructuredDates = func(segment string) []model.DateRange {
		r := model.NewDateRange(1740, 1745)
		return []model.DateRange{r}
	}

	n := newNormalizer(caps, model.DefaultConfig().Scan)
	got, ok := n.Normalize("a segment with no digits at all")
	if !ok || got.Start != 1740 || got.End != 1745 {
		t.Errorf("Expected the structured capability's range, got %+v (ok=%v)", got, ok)
	}
}

func TestPipeline_AnnotateText_ResolvesArtwork(t *testing.T) {
	server := newArtServer()
	defer server.Close()

	p := NewPipeline(testPipelineConfig(server.URL), nil)
	report, doc := p.AnnotateText(context.Background(), "The exhibition opened in Paris in 1889.", "Exposition")

	if report.Stats.Candidates != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %+v", report.Stats.Candidates, report.Candidates)
	}
	c := report.Candidates[0]
	if c.Location != "Paris" || c.Range == nil || c.Range.Start != 1889 {
		t.Errorf("Unexpected candidate: %+v", c)
	}

	if len(report.Markers) != 1 {
		t.Fatalf("Expected 1 marker, got %d", len(report.Markers))
	}
	m := report.Markers[0]
	if m.State != model.MarkerDatedWithArt {
		t.Errorf("Expected dated_with_art, got %s", m.State)
	}
	if len(m.Artworks) != 1 || m.Artworks[0].ID != "met-7" {
		t.Errorf("Unexpected artworks: %+v", m.Artworks)
	}
	if report.Stats.WithArt != 1 || report.Stats.Artworks != 1 {
		t.Errorf("Unexpected stats: %+v", report.Stats)
	}

	if !strings.Contains(doc.Annotated(), "«Paris»") {
		t.Errorf("Expected the annotated text to wrap Paris, got %q", doc.Annotated())
	}
}

func TestPipeline_AnnotateText_EmptyProviderLeavesPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"total": 0, "objectIDs": []int{}})
	}))
	defer server.Close()

	p := NewPipeline(testPipelineConfig(server.URL), nil)
	report, _ := p.AnnotateText(context.Background(), "The exhibition opened in Paris in 1889.", "Exposition")

	if len(report.Markers) != 1 {
		t.Fatalf("Expected 1 marker, got %d", len(report.Markers))
	}
	if report.Markers[0].State != model.MarkerDatedPending {
		t.Errorf("Expected dated_pending, got %s", report.Markers[0].State)
	}
	if report.Stats.WithArt != 0 {
		t.Errorf("Expected no artwork stats, got %+v", report.Stats)
	}
}

func TestPipeline_AnnotateText_UndatedCandidateStaysLocated(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Providers.MetEnabled = false

	p := NewPipeline(cfg, nil)
	report, _ := p.AnnotateText(context.Background(), "Lisbon sits by the sea.", "Lisbon")

	if len(report.Markers) != 1 {
		t.Fatalf("Expected 1 marker, got %d: %+v", len(report.Markers), report.Markers)
	}
	m := report.Markers[0]
	if m.State != model.MarkerLocated {
		t.Errorf("Expected located, got %s", m.State)
	}
	if m.Range != nil {
		t.Errorf("Expected no range, got %v", m.Range)
	}
}

func TestPipeline_AnnotateText_UnanchoredCandidateCounted(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Providers.MetEnabled = false

	// Verdun appears only in a sentence without its inherited year, so the
	// date gate rejects every element and the candidate is dropped.
	text := "The war began in 1914.\nVerdun is a town in France."
	p := NewPipeline(cfg, nil)
	report, _ := p.AnnotateText(context.Background(), text, "Verdun")

	if report.Stats.Dropped == 0 {
		t.Errorf("Expected dropped candidates, got %+v", report.Stats)
	}
}

func TestPipeline_AnnotateURL_EndToEnd(t *testing.T) {
	art := newArtServer()
	defer art.Close()

	article := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nAllow: /"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<h1>Exposition Universelle</h1>
			<p>The exhibition opened in Paris in 1889.</p>
		</body></html>`))
	}))
	defer article.Close()

	p := NewPipeline(testPipelineConfig(art.URL), nil)
	report, doc, err := p.AnnotateURL(context.Background(), article.URL+"/wiki/Exposition_Universelle")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Subject != "Exposition Universelle" {
		t.Errorf("Expected de-slugified subject, got %q", report.Subject)
	}
	if report.SourceURL == "" {
		t.Error("Expected the source URL to be recorded")
	}
	if len(doc.Elements) != 2 {
		t.Errorf("Expected h1 and p elements, got %+v", doc.Elements)
	}

	withArt := 0
	for _, m := range report.Markers {
		if m.State == model.MarkerDatedWithArt {
			withArt++
		}
	}
	if withArt == 0 {
		t.Errorf("Expected at least one resolved marker, got %+v", report.Markers)
	}
}

func TestPipeline_AnnotateText_FallbackCandidateFromSubject(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Providers.MetEnabled = false

	p := NewPipeline(cfg, nil)
	report, _ := p.AnnotateText(context.Background(), "the siege lasted through 1683 without relief.", "Siege of Vienna")

	if report.Stats.Candidates != 1 {
		t.Fatalf("Expected the fallback candidate, got %+v", report.Candidates)
	}
	if report.Candidates[0].Range == nil || report.Candidates[0].Range.Start != 1683 {
		t.Errorf("Expected the lead year 1683, got %+v", report.Candidates[0])
	}
}
