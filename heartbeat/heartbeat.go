// Package heartbeat implements periodic ping/pong requests a Website can
// attach to a MediaInfo to keep a session alive after extraction finishes,
// the Go analogue of the original library's GtuberHeartbeat base class.
package heartbeat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rafostar/gtuber-go"
	"github.com/rafostar/gtuber-go/internal/httpclient"
	"github.com/rafostar/gtuber-go/internal/observability"
	"github.com/rafostar/gtuber-go/threaded"
)

// MinInterval is the shortest ping interval the original library allowed.
const MinInterval = time.Second

// ErrIntervalTooShort is returned by New when interval is below
// MinInterval. SetInterval clamps instead (see SetInterval).
var ErrIntervalTooShort = errors.New("heartbeat: interval must be at least 1 second")

// Pinger is implemented by a plugin's Website to drive one ping/pong round.
// Ping builds the next request to send; a nil request with a nil error
// means the plugin declined to create one this round, which stops the
// heartbeat. Pong reads the response to that request. Either may return
// gtuber.FlowRestart to discard the round and try again immediately.
type Pinger interface {
	Ping(ctx context.Context) (*gtuber.Request, gtuber.Flow, error)
	Pong(ctx context.Context, resp *gtuber.Response) (gtuber.Flow, error)
}

// Heartbeat runs Pinger rounds on its own goroutine, on a timer, until
// Stop is called or a round fails. It satisfies gtuber.MediaInfo's
// Heartbeat interface so a plugin can attach one via MediaInfo without
// this package depending on the root package's MediaInfo type.
type Heartbeat struct {
	obj    *threaded.Object
	http   *httpclient.Client
	pinger Pinger
	logger *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	headers  map[string]string

	tickerDone chan struct{}
	resetCh    chan time.Duration
	stopOnce   sync.Once
}

// New starts a Heartbeat calling pinger every interval. interval must be at
// least MinInterval, matching gtuber_heartbeat_set_interval's 1000ms floor.
func New(pinger Pinger, interval time.Duration, logger *slog.Logger) (*Heartbeat, error) {
	if interval < MinInterval {
		return nil, ErrIntervalTooShort
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Heartbeat{
		http:       httpclient.NewWithDefaults(),
		pinger:     pinger,
		logger:     observability.WithComponent(logger, "heartbeat"),
		interval:   interval,
		headers:    make(map[string]string),
		tickerDone: make(chan struct{}),
		resetCh:    make(chan time.Duration, 1),
	}

	// Every ping/pong round runs on obj's single goroutine, just as the
	// original ran ping_cb on the heartbeat's private GMainContext thread.
	h.obj = threaded.New(threaded.Hooks{})
	go h.tickerLoop()

	return h, nil
}

func (h *Heartbeat) tickerLoop() {
	h.mu.Lock()
	interval := h.interval
	h.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.tickerDone:
			return
		case next := <-h.resetCh:
			ticker.Reset(next)
		case <-ticker.C:
			if !h.tick() {
				return
			}
		}
	}
}

// SetInterval changes the ping interval, taking effect on the next tick.
// Values below MinInterval are clamped up to it rather than rejected,
// since a running Heartbeat has no error channel to report through.
func (h *Heartbeat) SetInterval(d time.Duration) {
	if d < MinInterval {
		d = MinInterval
	}
	h.mu.Lock()
	h.interval = d
	h.mu.Unlock()

	select {
	case h.resetCh <- d:
	default:
	}
}

// SetRequestHeaders sets headers merged into every ping request, without
// overwriting a header value the Pinger already set on that round's
// request — mirroring insert_header_cb's "only if absent" rule.
func (h *Heartbeat) SetRequestHeaders(headers map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.headers = headers
}

func (h *Heartbeat) tick() bool {
	ok := true
	h.obj.Run(func() {
		ok = h.pingPong()
	})
	return ok
}

// pingPong runs Ping, sends the request, and runs Pong, restarting the
// round on FlowRestart and reporting false the first time anything fails —
// translating ping_cb's goto-based beginning/decide_flow/finish states into
// a loop with early returns.
func (h *Heartbeat) pingPong() bool {
	ctx := context.Background()
	log := h.logger

	for {
		log.Debug("ping")
		gtReq, flow, err := h.pinger.Ping(ctx)
		if err != nil {
			log.Debug("ping failed, stopping heartbeat", slog.String("error", err.Error()))
			return false
		}
		if flow == gtuber.FlowRestart {
			continue
		}
		if gtReq == nil {
			log.Debug("ping request not created, stopping heartbeat")
			return false
		}

		stdReq, err := http.NewRequestWithContext(ctx, gtReq.Method, gtReq.URL.String(), gtReq.Body)
		if err != nil {
			log.Debug("could not build ping request", slog.String("error", err.Error()))
			return false
		}
		if gtReq.Header != nil {
			stdReq.Header = gtReq.Header
		}

		h.mu.Lock()
		for name, value := range h.headers {
			if stdReq.Header.Get(name) == "" {
				stdReq.Header.Set(name, value)
			}
		}
		h.mu.Unlock()

		resp, err := h.http.DoWithContext(ctx, stdReq)
		if err != nil {
			log.Debug("ping send failed, stopping heartbeat", slog.String("error", err.Error()))
			return false
		}

		log.Debug("pong")
		gtResp := &gtuber.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
		flow, err = h.pinger.Pong(ctx, gtResp)
		resp.Body.Close()
		if err != nil {
			log.Debug("pong failed, stopping heartbeat", slog.String("error", err.Error()))
			return false
		}
		if flow == gtuber.FlowRestart {
			continue
		}
		return true
	}
}

// Stop halts the ticker and joins the Heartbeat's background goroutine.
// Stop is idempotent.
func (h *Heartbeat) Stop() {
	h.stopOnce.Do(func() {
		close(h.tickerDone)
		h.obj.Close()
	})
}
