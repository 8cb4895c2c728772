package util

import (
	"net/http"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), target string) *url.URL {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	proxy, err := fn(req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return proxy
}

func TestNewProxyFunc_ExplicitProxies(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "http://sproxy:8443", "")

	if got := proxyFor(t, fn, "http://example.com/"); got == nil || got.Host != "proxy:8080" {
		t.Errorf("Expected the HTTP proxy, got %v", got)
	}
	if got := proxyFor(t, fn, "https://example.com/"); got == nil || got.Host != "sproxy:8443" {
		t.Errorf("Expected the HTTPS proxy, got %v", got)
	}
}

func TestNewProxyFunc_HTTPProxyCoversHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "", "")

	if got := proxyFor(t, fn, "https://example.com/"); got == nil || got.Host != "proxy:8080" {
		t.Errorf("Expected the HTTP proxy to cover HTTPS, got %v", got)
	}
}

func TestNewProxyFunc_NoProxySuffix(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "", "internal.example, localhost")

	if got := proxyFor(t, fn, "http://api.internal.example/"); got != nil {
		t.Errorf("Expected the suffix match to bypass the proxy, got %v", got)
	}
	if got := proxyFor(t, fn, "http://localhost/"); got != nil {
		t.Errorf("Expected the exact match to bypass the proxy, got %v", got)
	}
	if got := proxyFor(t, fn, "http://example.com/"); got == nil {
		t.Error("Expected other hosts to use the proxy")
	}
}
