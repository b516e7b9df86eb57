package httpclient

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoWithContextSucceedsOnFirstTry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	c := New(cfg)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.DoWithContext(context.Background(), req)
	if err != nil {
		t.Fatalf("DoWithContext error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
}

func TestDoWithContextRetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "eventually")
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RetryAttempts = 3
	cfg.RetryDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond
	c := New(cfg)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.DoWithContext(context.Background(), req)
	if err != nil {
		t.Fatalf("DoWithContext error: %v", err)
	}
	defer resp.Body.Close()

	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("server received %d calls, want 3", calls)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "eventually" {
		t.Errorf("body = %q, want %q", body, "eventually")
	}
}

func TestDoWithContextGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.RetryAttempts = 1
	cfg.RetryDelay = time.Millisecond
	cfg.CircuitThreshold = 100 // keep the breaker closed for this test
	c := New(cfg)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := c.DoWithContext(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
}

func TestDoWithContextDecompressesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderContentEncoding, EncodingGzip)
		w.WriteHeader(http.StatusOK)
		gz := gzip.NewWriter(w)
		io.WriteString(gz, "compressed payload")
		gz.Close()
	}))
	defer srv.Close()

	c := NewWithDefaults()
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.DoWithContext(context.Background(), req)
	if err != nil {
		t.Fatalf("DoWithContext error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading decompressed body: %v", err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q, want %q", body, "compressed payload")
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute, 1)

	if !cb.Allow() {
		t.Fatal("expected breaker to allow the first request while closed")
	}
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.Allow() {
		t.Error("expected breaker to be open and disallow requests after reaching the failure threshold")
	}
	if cb.State() != CircuitOpen {
		t.Errorf("State() = %v, want CircuitOpen", cb.State())
	}
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond, 1)
	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("expected breaker to be open immediately after reaching threshold")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatal("expected breaker to allow one trial request after the timeout elapses")
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("State() = %v, want CircuitHalfOpen", cb.State())
	}

	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("State() after a successful half-open trial = %v, want CircuitClosed", cb.State())
	}
}
