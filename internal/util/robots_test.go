package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_Allowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewRobotsChecker("test-agent", 5*time.Second)
	if !c.Allowed(context.Background(), server.URL+"/public/page") {
		t.Error("Expected allowed path to pass")
	}
	if c.Allowed(context.Background(), server.URL+"/private/page") {
		t.Error("Expected disallowed path to be blocked")
	}
}

func TestRobotsChecker_UnreachableRobotsAllows(t *testing.T) {
	c := NewRobotsChecker("test-agent", 200*time.Millisecond)

	if !c.Allowed(context.Background(), "http://127.0.0.1:1/page") {
		t.Error("Expected an unreachable robots.txt to allow the fetch")
	}
}

func TestRobotsChecker_CachesPerHost(t *testing.T) {
	var robotsFetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsFetches, 1)
			_, _ = w.Write([]byte("User-agent: *\nAllow: /"))
		}
	}))
	defer server.Close()

	c := NewRobotsChecker("test-agent", 5*time.Second)
	for i := 0; i < 3; i++ {
		c.Allowed(context.Background(), server.URL+"/page")
	}
	if got := atomic.LoadInt32(&robotsFetches); got != 1 {
		t.Errorf("Expected robots.txt to be fetched once per host, got %d", got)
	}
}
