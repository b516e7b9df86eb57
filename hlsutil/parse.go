// Package hlsutil wraps gohlslib's playlist parser with the two read-only
// queries an extractor typically needs: the variant list of a multivariant
// (master) playlist, and the segment list of a media (variant) playlist.
// Grounded on the teacher's internal/relay/hls_collapser.go, which parses
// the same playlist types to classify a stream for collapsing.
package hlsutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/bluenviron/gohlslib/v2/pkg/playlist"
)

// Variant summarizes one #EXT-X-STREAM-INF entry in a multivariant playlist.
type Variant struct {
	URI        string
	Bandwidth  int
	Codecs     string
	Resolution string
	FrameRate  float64
}

// ParseMultivariant parses a multivariant (master) HLS playlist and
// returns its variants sorted as they appear in the source.
func ParseMultivariant(data []byte) ([]Variant, error) {
	pl, err := playlist.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("hlsutil: parsing multivariant playlist: %w", err)
	}
	mv, ok := pl.(*playlist.Multivariant)
	if !ok {
		return nil, fmt.Errorf("hlsutil: playlist is not a multivariant playlist")
	}

	variants := make([]Variant, 0, len(mv.Variants))
	for _, v := range mv.Variants {
		variant := Variant{
			URI:       v.URI,
			Bandwidth: v.Bandwidth,
			Codecs:    strings.Join(v.Codecs, ","),
		}
		if v.Resolution != nil {
			variant.Resolution = fmt.Sprintf("%dx%d", v.Resolution.Width, v.Resolution.Height)
		}
		if v.FrameRate != nil {
			variant.FrameRate = *v.FrameRate
		}
		variants = append(variants, variant)
	}
	return variants, nil
}

// Segment summarizes one segment in a media playlist.
type Segment struct {
	URI      string
	Duration time.Duration
}

// MediaPlaylist summarizes a parsed media (variant) playlist.
type MediaPlaylist struct {
	Segments       []Segment
	TargetDuration int
	EndList        bool
}

// ParseMedia parses a media (variant) HLS playlist.
func ParseMedia(data []byte) (*MediaPlaylist, error) {
	pl, err := playlist.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("hlsutil: parsing media playlist: %w", err)
	}
	media, ok := pl.(*playlist.Media)
	if !ok {
		return nil, fmt.Errorf("hlsutil: playlist is not a media playlist")
	}

	result := &MediaPlaylist{
		TargetDuration: media.TargetDuration,
		EndList:        media.EndList,
	}
	for _, seg := range media.Segments {
		result.Segments = append(result.Segments, Segment{
			URI:      seg.URI,
			Duration: seg.Duration,
		})
	}
	return result, nil
}

// TotalDuration sums every segment's duration, for a quick estimate of a
// VOD media playlist's overall length.
func (m *MediaPlaylist) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range m.Segments {
		total += s.Duration
	}
	return total
}
