package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/rafostar/gtuber-go"
)

type stubPinger struct{}

func (stubPinger) Ping(ctx context.Context) (*gtuber.Request, gtuber.Flow, error) {
	return nil, gtuber.FlowOk, nil
}

func (stubPinger) Pong(ctx context.Context, resp *gtuber.Response) (gtuber.Flow, error) {
	return gtuber.FlowOk, nil
}

func TestNewRejectsIntervalBelowMinimum(t *testing.T) {
	_, err := New(stubPinger{}, 500*time.Millisecond, nil)
	if err != ErrIntervalTooShort {
		t.Errorf("New() error = %v, want %v", err, ErrIntervalTooShort)
	}
}

func TestNewAcceptsMinimumInterval(t *testing.T) {
	h, err := New(stubPinger{}, MinInterval, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer h.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	h, err := New(stubPinger{}, MinInterval, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		h.Stop()
		h.Stop()
		h.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly when called concurrently/repeatedly")
	}
}

func TestSetIntervalClampsBelowMinimum(t *testing.T) {
	h, err := New(stubPinger{}, MinInterval, nil)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer h.Stop()

	h.SetInterval(10 * time.Millisecond)

	h.mu.Lock()
	got := h.interval
	h.mu.Unlock()

	if got != MinInterval {
		t.Errorf("interval after SetInterval(10ms) = %v, want clamped to %v", got, MinInterval)
	}
}
