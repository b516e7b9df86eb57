package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rafostar/gtuber-go"
)

func TestToStdRequestCopiesMethodURLAndHeader(t *testing.T) {
	req, err := gtuber.NewRequest(http.MethodPost, "https://example.com/path?q=1")
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Test", "1")

	stdReq, err := toStdRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("toStdRequest error: %v", err)
	}
	if stdReq.Method != http.MethodPost {
		t.Errorf("Method = %q, want POST", stdReq.Method)
	}
	if stdReq.URL.String() != "https://example.com/path?q=1" {
		t.Errorf("URL = %q, want the original", stdReq.URL.String())
	}
	if stdReq.Header.Get("X-Test") != "1" {
		t.Errorf("Header X-Test = %q, want 1", stdReq.Header.Get("X-Test"))
	}
}

func TestWrapWebsiteErrPassesGtuberErrorThrough(t *testing.T) {
	original := gtuber.NewError(gtuber.ParseFailed, "missing title")
	wrapped := wrapWebsiteErr(original)

	var gerr *gtuber.Error
	if !errors.As(wrapped, &gerr) {
		t.Fatal("expected wrapped error to be a *gtuber.Error")
	}
	if gerr.Kind != gtuber.ParseFailed {
		t.Errorf("Kind = %v, want ParseFailed", gerr.Kind)
	}
}

func TestWrapWebsiteErrWrapsPlainError(t *testing.T) {
	plain := errors.New("plugin panicked")
	wrapped := wrapWebsiteErr(plain)

	var gerr *gtuber.Error
	if !errors.As(wrapped, &gerr) {
		t.Fatal("expected wrapped error to be a *gtuber.Error")
	}
	if gerr.Kind != gtuber.OtherWebsiteError {
		t.Errorf("Kind = %v, want OtherWebsiteError", gerr.Kind)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("expected wrapped error to unwrap to the original plain error")
	}
}
