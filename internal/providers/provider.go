package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/util"
)

// Query describes one artwork lookup.
type Query struct {
	Location string
	Range    *model.DateRange
	Limit    int
}

// Provider is an external art-collection source.
type Provider interface {
	// Name returns the provider name used in keys and record tags.
	Name() string

	// Search returns artworks matching the query. Every call is
	// independent and idempotent.
	Search(ctx context.Context, q Query) ([]model.ArtworkRecord, error)
}

// Broker performs JSON GETs against provider APIs with a shared client,
// body-size cap, and per-host rate limiting.
type Broker struct {
	client    *http.Client
	userAgent string
	maxBytes  int64

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewBroker creates a broker from the HTTP and rate-limit configuration.
func NewBroker(httpCfg model.HTTPConfig, rl model.RateLimitConfig) *Broker {
	burst := rl.BurstSize
	if burst <= 0 {
		burst = 5
	}
	rps := rl.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}

	return &Broker{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: httpCfg.UserAgent,
		maxBytes:  maxBytes,
		limiters:  make(map[string]*rate.Limiter),
		rps:       rate.Limit(rps),
		burst:     burst,
	}
}

// GetJSON fetches a URL and decodes the JSON response into out.
func (b *Broker) GetJSON(ctx context.Context, rawURL string, out interface{}) error {
	if err := b.waitLimit(ctx, rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// waitLimit blocks until the host's rate limiter clears the request.
func (b *Broker) waitLimit(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	return b.limiter(parsed.Host).Wait(ctx)
}

func (b *Broker) limiter(host string) *rate.Limiter {
	b.mu.RLock()
	l, ok := b.limiters[host]
	b.mu.RUnlock()
	if ok {
		return l
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if l, ok := b.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(b.rps, b.burst)
	b.limiters[host] = l
	return l
}
