package gtuber

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// hopByHopHeaders lists header names that request_headers must never
// contain (spec.md §3's header-hygiene invariant).
var hopByHopHeaders = map[string]struct{}{
	"accept-encoding": {},
	"connection":      {},
	"content-length":  {},
	"content-type":    {},
	"host":            {},
}

// IsHopByHopHeader reports whether name is one of the headers MediaInfo's
// RequestHeaders must never carry.
func IsHopByHopHeader(name string) bool {
	_, ok := hopByHopHeaders[strings.ToLower(name)]
	return ok
}

// Heartbeat is the subset of heartbeat.Heartbeat's API that MediaInfo needs
// in order to own and stop one without importing the heartbeat package
// (which itself depends on this package for Stream/MediaInfo types).
type Heartbeat interface {
	SetInterval(d time.Duration)
	Stop()
}

// Proxy is the subset of proxy.Proxy's API that MediaInfo needs in order to
// own and stop one without an import cycle; see Heartbeat.
type Proxy interface {
	Close() error
}

// MediaInfo is the result of a successful extraction: a uniform listing of
// playable streams plus the headers a caller must reuse and any background
// helpers (Heartbeat, Proxy) the extraction attached.
type MediaInfo struct {
	ID               string
	Title            string
	Description      string
	DurationSeconds  uint

	Streams         []*Stream
	AdaptiveStreams []*AdaptiveStream
	CaptionStreams  []*CaptionStream

	// Chapters maps start-time-milliseconds to chapter name.
	Chapters map[uint64]string

	// RequestHeaders are headers a caller must reuse for any subsequent
	// request to a stream URI. Never contains a hop-by-hop header (see
	// IsHopByHopHeader).
	RequestHeaders map[string]string

	heartbeat Heartbeat
	proxy     Proxy
}

// NewMediaInfo constructs an empty MediaInfo with a generated ID, as the
// extraction engine does at the start of every extraction (spec.md §3's
// "Lifecycles" paragraph).
func NewMediaInfo() *MediaInfo {
	return &MediaInfo{
		ID:             uuid.NewString(),
		Chapters:       make(map[uint64]string),
		RequestHeaders: make(map[string]string),
	}
}

// AddStream appends a progressive/combined stream.
func (m *MediaInfo) AddStream(s *Stream) {
	m.Streams = append(m.Streams, s)
}

// AddAdaptiveStream appends a DASH/HLS-source per-track stream. The caller
// must have set ManifestType before calling this, per spec.md §3's invariant.
func (m *MediaInfo) AddAdaptiveStream(s *AdaptiveStream) {
	m.AdaptiveStreams = append(m.AdaptiveStreams, s)
}

// AddCaptionStream appends a caption track.
func (m *MediaInfo) AddCaptionStream(s *CaptionStream) {
	m.CaptionStreams = append(m.CaptionStreams, s)
}

// SetRequestHeader stores a header for reuse by the caller, silently
// dropping hop-by-hop header names to preserve the header-hygiene invariant.
func (m *MediaInfo) SetRequestHeader(name, value string) {
	if IsHopByHopHeader(name) {
		return
	}
	m.RequestHeaders[name] = value
}

// HasStreams reports whether this MediaInfo carries at least one
// progressive or adaptive stream (caption streams do not count), the
// condition the engine requires before returning successfully.
func (m *MediaInfo) HasStreams() bool {
	return len(m.Streams) > 0 || len(m.AdaptiveStreams) > 0
}

// SetHeartbeat attaches a heartbeat owned by this MediaInfo. Any previously
// attached heartbeat is stopped first.
func (m *MediaInfo) SetHeartbeat(h Heartbeat) {
	if m.heartbeat != nil {
		m.heartbeat.Stop()
	}
	m.heartbeat = h
}

// Heartbeat returns the attached heartbeat, or nil if none.
func (m *MediaInfo) Heartbeat() Heartbeat {
	return m.heartbeat
}

// SetProxy attaches a proxy owned by this MediaInfo. Any previously attached
// proxy is closed first.
func (m *MediaInfo) SetProxy(p Proxy) {
	if m.proxy != nil {
		_ = m.proxy.Close()
	}
	m.proxy = p
}

// Proxy returns the attached proxy, or nil if none.
func (m *MediaInfo) Proxy() Proxy {
	return m.proxy
}

// Close stops any attached heartbeat and closes any attached proxy. Callers
// that are done playing a MediaInfo should call this to release the
// background workers spec.md §3 says MediaInfo owns.
func (m *MediaInfo) Close() error {
	if m.heartbeat != nil {
		m.heartbeat.Stop()
	}
	if m.proxy != nil {
		return m.proxy.Close()
	}
	return nil
}
