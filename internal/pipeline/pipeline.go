package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/anchor"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/artcache"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/dates"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/extract"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/marker"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/nlp"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/providers"
)

// Pipeline orchestrates the complete annotation process: fetch, candidate
// extraction, anchoring, and concurrent artwork resolution.
type Pipeline struct {
	fetcher    *Fetcher
	extractor  *extract.Extractor
	normalizer *dates.Normalizer
	llm        *nlp.LLMExtractor // nil when disabled
	broker     *providers.Broker
	config     *model.Config
	logger     *slog.Logger
}

// NewPipeline creates a pipeline with the given configuration.
func NewPipeline(cfg *model.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	caps := nlp.Heuristic()
	normalizer := newNormalizer(caps, cfg.Scan)

	var llm *nlp.LLMExtractor
	if cfg.LLM.Enabled {
		l, err := nlp.NewLLMExtractor(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM extractor: %v\n", err)
		} else {
			llm = l
		}
	}

	return &Pipeline{
		fetcher:    NewFetcher(cfg.HTTP),
		extractor:  extract.NewExtractor(caps, normalizer, logger),
		normalizer: normalizer,
		llm:        llm,
		broker:     providers.NewBroker(cfg.HTTP, cfg.RateLimit),
		config:     cfg,
		logger:     logger,
	}
}

// newNormalizer wires the capability descriptor's optional date recognizers
// into the normalizer's strategy chain.
func newNormalizer(caps nlp.Capabilities, cfg model.ScanConfig) *dates.Normalizer {
	return dates.NewNormalizer(caps.StructuredDates, caps.PhraseDates, cfg.MinYear, cfg.MaxYear)
}

// newResolver builds the per-scan-session resolver. The cache lives and
// dies with one scan: a re-scan starts cold.
func (p *Pipeline) newResolver() *providers.Resolver {
	var list []providers.Provider
	if p.config.Providers.MetEnabled {
		list = append(list, providers.NewMetProvider(
			p.broker, p.config.Providers.MetBaseURL, p.config.Providers.YearPadding, p.logger))
	}
	if key := p.config.Providers.EuropeanaAPIKey; key != "" {
		eu, err := providers.NewEuropeanaProvider(
			p.broker, p.config.Providers.EuropeanaBaseURL, key, p.config.Providers.YearPadding, p.logger)
		if err == nil {
			list = append(list, eu)
		}
	} else {
		// Missing credential disables the optional provider; not an error.
		p.logger.Debug("provider.disabled", slog.String("provider", "Europeana"))
	}
	return providers.NewResolver(list, artcache.New(p.config.Providers.CacheTTL), p.logger)
}

// AnnotateURL fetches and annotates one article page.
func (p *Pipeline) AnnotateURL(ctx context.Context, rawURL string) (*model.Report, *anchor.Document, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}

	doc, err := anchor.ParseDocument(fetched.HTML)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	report := p.annotate(ctx, doc, fetched.Subject)
	report.SourceURL = fetched.FinalURL
	return report, doc, nil
}

// AnnotateText annotates plain article text (one paragraph per line).
func (p *Pipeline) AnnotateText(ctx context.Context, text, subject string) (*model.Report, *anchor.Document) {
	doc := anchor.NewDocumentFromText(text)
	return p.annotate(ctx, doc, subject), doc
}

// annotate runs extraction, anchoring, and resolution over a parsed
// document. Every failure inside is recovered: the scan always completes
// and renders whatever could be resolved.
func (p *Pipeline) annotate(ctx context.Context, doc *anchor.Document, subject string) *model.Report {
	text := doc.Text()

	candidates := p.extractor.Extract(text, p.config.Scan.Limit)
	candidates = p.supplementLLM(ctx, text, candidates)

	if len(candidates) == 0 {
		if c, ok := extract.FallbackCandidate(subject, leadText(doc), p.normalizer); ok {
			p.logger.Debug("extract.fallback", slog.String("location", c.Location))
			candidates = append(candidates, c)
		}
	}

	locator := anchor.NewLocator(doc, p.logger)
	set := marker.NewSet()
	dropped := 0
	for _, c := range candidates {
		anchors := locator.Locate(c)
		if len(anchors) == 0 {
			dropped++
			continue
		}
		for _, a := range anchors {
			set.Add(a, c, p.logger)
		}
	}

	p.resolveMarkers(ctx, set)

	report := &model.Report{
		Subject:    subject,
		FetchedAt:  time.Now().UTC(),
		Candidates: candidates,
		Stats: model.ReportStats{
			Sentences:  p.extractor.SentenceCount(text, p.config.Scan.Limit),
			Candidates: len(candidates),
			Dropped:    dropped,
		},
	}
	for _, m := range set.Markers() {
		mr := m.Report()
		report.Markers = append(report.Markers, mr)
		report.Stats.Anchored++
		if mr.State == model.MarkerDatedWithArt {
			report.Stats.WithArt++
			report.Stats.Artworks += len(mr.Artworks)
		}
	}
	return report
}

// supplementLLM merges LLM-extracted candidates behind the heuristic ones,
// deduplicating by CanonicalKey. LLM failure degrades to the heuristic
// result alone.
func (p *Pipeline) supplementLLM(ctx context.Context, text string, candidates []model.Candidate) []model.Candidate {
	if p.llm == nil {
		return candidates
	}

	extra, err := p.llm.Extract(ctx, text)
	if err != nil {
		p.logger.Debug("llm.failed", slog.String("error", err.Error()))
		return candidates
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.Key()] = true
	}
	for _, c := range extra {
		if model.CanonicalLocation(c.Location) == "" || seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		candidates = append(candidates, c)
	}
	return candidates
}

// resolveMarkers fans dated markers out to the resolver with bounded
// concurrency and waits for all of them to settle.
func (p *Pipeline) resolveMarkers(ctx context.Context, set *marker.Set) {
	resolver := p.newResolver()

	workers := p.config.Concurrency.ResolveWorkers
	if workers <= 0 {
		workers = 8
	}
	semaphore := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for _, m := range set.Markers() {
		if m.Candidate.Range == nil {
			continue
		}
		wg.Add(1)
		go func(m *marker.Marker) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			request := m.BeginResolution()
			records, err := resolver.Resolve(ctx, m.Candidate, p.config.Providers.PerProviderLimit)
			m.Complete(request, records, err)
		}(m)
	}
	wg.Wait()
}

// leadText returns the first paragraph's text for the fallback heuristic.
func leadText(doc *anchor.Document) string {
	for _, el := range doc.Elements {
		if el.Tag == "p" {
			return el.Text
		}
	}
	if len(doc.Elements) > 0 {
		return doc.Elements[0].Text
	}
	return ""
}
