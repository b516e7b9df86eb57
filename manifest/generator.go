// Package manifest generates a DASH MPD or HLS master playlist from a
// gtuber.MediaInfo's adaptive streams.
package manifest

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rafostar/gtuber-go"
)

// Type selects which manifest flavor Generator emits.
type Type int

const (
	// TypeAuto generates DASH if any adaptive stream supports it,
	// otherwise HLS, matching the original library's default behavior.
	TypeAuto Type = iota
	TypeDash
	TypeHLS
)

// FilterFunc, if set on a Generator, is consulted for every adaptive
// stream considered for inclusion; returning false excludes it.
type FilterFunc func(s *gtuber.AdaptiveStream) bool

// Generator builds manifest text from a MediaInfo's adaptive streams.
type Generator struct {
	Pretty       bool
	Indent       int
	ManifestType Type
	Filter       FilterFunc

	info *gtuber.MediaInfo
}

// NewGenerator returns a Generator for info with the original library's
// defaults: compact output (no pretty-printing), 2-space indent if pretty
// printing is later enabled, and auto manifest-type selection.
func NewGenerator(info *gtuber.MediaInfo) *Generator {
	return &Generator{Indent: 2, ManifestType: TypeAuto, info: info}
}

// dashCodec classifies a codec string the same way the DASH emitter does:
// by family, not exact profile, so e.g. "avc1.640028" and "avc1.4d001f"
// share one AdaptationSet.
type dashCodec int

const (
	dashCodecUnknown dashCodec = iota
	dashCodecAVC
	dashCodecHEVC
	dashCodecVP9
	dashCodecAV1
	dashCodecMP4A
	dashCodecOpus
)

func dashVideoCodec(codec string) dashCodec {
	switch {
	case strings.HasPrefix(codec, "avc"):
		return dashCodecAVC
	case strings.HasPrefix(codec, "vp9"):
		return dashCodecVP9
	case strings.HasPrefix(codec, "hev"):
		return dashCodecHEVC
	case strings.HasPrefix(codec, "av01"):
		return dashCodecAV1
	default:
		return dashCodecUnknown
	}
}

func dashAudioCodec(codec string) dashCodec {
	switch {
	case strings.HasPrefix(codec, "mp4a"):
		return dashCodecMP4A
	case strings.HasPrefix(codec, "opus"):
		return dashCodecOpus
	default:
		return dashCodecUnknown
	}
}

// gcd is Euclid's algorithm, used to reduce width:height to a picture
// aspect ratio string.
func gcd(a, b uint) uint {
	if b == 0 {
		return a
	}
	return gcd(b, a%b)
}

// parFromResolution returns a DASH "par" attribute value, "1:1" for a
// missing or zero resolution.
func parFromResolution(width, height uint) string {
	if width == 0 || height == 0 {
		return "1:1"
	}
	g := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/g, height/g)
}

// adaptationKey groups adaptive streams into one AdaptationSet: same mime
// type, same codec family.
type adaptationKey struct {
	mimeType gtuber.MimeType
	codec    dashCodec
}

type adaptation struct {
	key       adaptationKey
	maxWidth  uint
	maxHeight uint
	maxFPS    uint
	streams   []*gtuber.AdaptiveStream
}

func (g *Generator) allows(t Type) bool {
	return g.ManifestType == TypeAuto || g.ManifestType == t
}

func (g *Generator) shouldInclude(s *gtuber.AdaptiveStream, want gtuber.ManifestType) bool {
	if s.ManifestType != want {
		return false
	}
	if g.Filter != nil {
		return g.Filter(s)
	}
	return true
}

// ToData generates manifest text: DASH if allowed and any stream declares
// DASH support, else HLS if allowed and any stream declares HLS support.
// An empty string with a ManifestNoData error means neither produced output.
func (g *Generator) ToData() (string, error) {
	if g.info == nil {
		return "", gtuber.NewError(gtuber.ManifestNoData, "generator has no media info set")
	}

	if g.allows(TypeDash) {
		if data := g.dumpDash(); data != "" {
			return data, nil
		}
	}
	if g.allows(TypeHLS) {
		if data := g.dumpHLS(); data != "" {
			return data, nil
		}
	}
	return "", gtuber.NewError(gtuber.ManifestNoData, "no adaptive streams matched the requested manifest type")
}

// ToFile generates manifest text and writes it to filename, via a
// temp-file-then-rename so a reader never observes a partial file.
func (g *Generator) ToFile(filename string) error {
	data, err := g.ToData()
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return gtuber.WrapError(gtuber.ManifestNoData, "could not create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		return gtuber.WrapError(gtuber.ManifestNoData, "could not write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return gtuber.WrapError(gtuber.ManifestNoData, "could not close temp file", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return gtuber.WrapError(gtuber.ManifestNoData, "could not rename temp file into place", err)
	}
	return nil
}

func sortByBitrate(streams []*gtuber.AdaptiveStream) {
	sort.SliceStable(streams, func(i, j int) bool {
		return streams[i].Bitrate < streams[j].Bitrate
	})
}

// --- DASH ---

func (g *Generator) dumpDash() string {
	adaptations := g.collectDashAdaptations()
	if len(adaptations) == 0 {
		return ""
	}

	var b strings.Builder
	g.line(&b, 0, `<?xml version="1.0" encoding="UTF-8"?>`)

	duration := g.info.DurationSeconds
	bufTime := duration
	if bufTime > 2 {
		bufTime = 2
	}

	g.lineNoNL(&b, 0, "<MPD")
	g.attr(&b, "xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	g.attr(&b, "xmlns", "urn:mpeg:dash:schema:mpd:2011")
	g.attr(&b, "xsi:schemaLocation", "urn:mpeg:dash:schema:mpd:2011 DASH-MPD.xsd")
	g.attr(&b, "type", "static")
	g.attr(&b, "mediaPresentationDuration", ptsString(duration))
	g.attr(&b, "minBufferTime", ptsString(bufTime))
	g.attr(&b, "profiles", "urn:mpeg:dash:profile:isoff-on-demand:2011")
	g.finish(&b, ">")

	g.line(&b, 1, "<Period>")
	for _, a := range adaptations {
		g.addAdaptationSet(&b, a)
	}
	g.line(&b, 1, "</Period>")
	g.lineNoNL(&b, 0, "</MPD>")

	return b.String()
}

func ptsString(seconds uint) string {
	return fmt.Sprintf("PT%dS", seconds)
}

func (g *Generator) collectDashAdaptations() []*adaptation {
	var order []adaptationKey
	byKey := make(map[adaptationKey]*adaptation)

	for _, s := range g.info.AdaptiveStreams {
		if !g.shouldInclude(s, gtuber.ManifestTypeDash) {
			continue
		}

		var codec dashCodec
		switch {
		case s.MimeType == gtuber.MimeTypeVideoMP4 || s.MimeType == gtuber.MimeTypeVideoWebm:
			codec = dashVideoCodec(s.VideoCodec)
		case s.MimeType == gtuber.MimeTypeAudioMP4 || s.MimeType == gtuber.MimeTypeAudioWebm:
			codec = dashAudioCodec(s.AudioCodec)
		}
		if codec == dashCodecUnknown {
			continue
		}

		key := adaptationKey{mimeType: s.MimeType, codec: codec}
		a, ok := byKey[key]
		if !ok {
			a = &adaptation{key: key}
			byKey[key] = a
			order = append(order, key)
		}
		if s.Width > a.maxWidth {
			a.maxWidth = s.Width
		}
		if s.Height > a.maxHeight {
			a.maxHeight = s.Height
		}
		if s.FPS > a.maxFPS {
			a.maxFPS = s.FPS
		}
		a.streams = append(a.streams, s)
	}

	adaptations := make([]*adaptation, 0, len(order))
	for _, key := range order {
		adaptations = append(adaptations, byKey[key])
	}
	return adaptations
}

func mimeContentAndType(mt gtuber.MimeType) (content, mimeStr string) {
	switch mt {
	case gtuber.MimeTypeVideoMP4:
		return "video", "video/mp4"
	case gtuber.MimeTypeVideoWebm:
		return "video", "video/webm"
	case gtuber.MimeTypeAudioMP4:
		return "audio", "audio/mp4"
	case gtuber.MimeTypeAudioWebm:
		return "audio", "audio/webm"
	default:
		return "", ""
	}
}

func (g *Generator) addAdaptationSet(b *strings.Builder, a *adaptation) {
	content, mimeStr := mimeContentAndType(a.key.mimeType)
	if content == "" || mimeStr == "" {
		return
	}

	g.lineNoNL(b, 2, "<AdaptationSet")
	g.attr(b, "contentType", content)
	g.attr(b, "mimeType", mimeStr)
	g.attrBool(b, "subsegmentAlignment", true)
	g.attrInt(b, "subsegmentStartsWithSAP", 1)
	if content == "video" {
		g.attrInt(b, "maxWidth", uint64(a.maxWidth))
		g.attrInt(b, "maxHeight", uint64(a.maxHeight))
		g.attr(b, "par", parFromResolution(a.maxWidth, a.maxHeight))
		g.attrInt(b, "maxFrameRate", uint64(a.maxFPS))
	}
	g.finish(b, ">")

	sortByBitrate(a.streams)
	for _, s := range a.streams {
		g.addRepresentation(b, s)
	}

	g.line(b, 2, "</AdaptationSet>")
}

func (g *Generator) addRepresentation(b *strings.Builder, s *gtuber.AdaptiveStream) {
	g.lineNoNL(b, 3, "<Representation")
	g.attrInt(b, "id", uint64(s.Itag))
	if codecs := s.CodecsString(); codecs != "" {
		g.attr(b, "codecs", codecs)
	}
	g.attrInt(b, "bandwidth", uint64(s.Bitrate))
	if s.Width != 0 {
		g.attrInt(b, "width", uint64(s.Width))
	}
	if s.Height != 0 {
		g.attrInt(b, "height", uint64(s.Height))
	}
	if s.Width != 0 && s.Height != 0 {
		g.attr(b, "sar", "1:1")
	}
	if s.FPS != 0 {
		g.attrInt(b, "frameRate", uint64(s.FPS))
	}
	g.finish(b, ">")

	g.lineNoNL(b, 4, "<BaseURL>")
	b.WriteString(escapeXMLURI(s.URI))
	g.finish(b, "</BaseURL>")

	g.lineNoNL(b, 4, "<SegmentBase")
	if s.IndexRange.Valid() {
		g.attrRange(b, "indexRange", s.IndexRange.Start, s.IndexRange.End)
	}
	g.attrBool(b, "indexRangeExact", true)
	g.finish(b, ">")

	g.lineNoNL(b, 5, "<Initialization")
	if s.InitRange.Valid() {
		g.attrRange(b, "range", s.InitRange.Start, s.InitRange.End)
	}
	g.finish(b, "/>")

	g.line(b, 4, "</SegmentBase>")
	g.line(b, 3, "</Representation>")
}

// escapeXMLURI re-serializes uriStr with its query parameters joined by
// "&amp;" instead of "&", since a bare "&" is invalid inside XML character
// data. The base URL and query values themselves are left untouched.
func escapeXMLURI(uriStr string) string {
	u, err := url.Parse(uriStr)
	if err != nil {
		return uriStr
	}
	query := u.RawQuery
	u.RawQuery = ""
	base := u.String()
	if query == "" {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	for i, pair := range strings.Split(query, "&") {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteString("&amp;")
		}
		b.WriteString(pair)
	}
	return b.String()
}

// --- HLS ---

func (g *Generator) dumpHLS() string {
	var streams []*gtuber.AdaptiveStream
	for _, s := range g.info.AdaptiveStreams {
		if g.shouldInclude(s, gtuber.ManifestTypeHLS) {
			streams = append(streams, s)
		}
	}
	if len(streams) == 0 {
		return ""
	}
	sortByBitrate(streams)

	var b strings.Builder
	for _, s := range streams {
		g.addHLSStream(&b, s)
	}
	if b.Len() == 0 {
		return ""
	}
	return "#EXTM3U\n" + b.String()
}

func (g *Generator) addHLSStream(b *strings.Builder, s *gtuber.AdaptiveStream) {
	audioOnly := s.Width == 0 && s.Height == 0 && s.FPS == 0 && s.VideoCodec == ""

	b.WriteString("#EXT-X-STREAM-INF")
	if audioOnly {
		b.WriteString(":TYPE=AUDIO")
	} else {
		b.WriteString(":TYPE=VIDEO")
	}
	fmt.Fprintf(b, ",GROUP-ID=%q", fmt.Sprint(s.Itag))
	if audioOnly {
		b.WriteString(`,NAME="audio_only",AUTOSELECT=NO,DEFAULT=NO`)
	} else {
		b.WriteString(`,NAME="default",AUTOSELECT=YES,DEFAULT=YES`)
	}
	b.WriteByte('\n')

	b.WriteString("#EXT-X-STREAM-INF")
	if s.Bitrate != 0 {
		fmt.Fprintf(b, ":BANDWIDTH=%d", s.Bitrate)
	}
	if s.Width != 0 || s.Height != 0 {
		fmt.Fprintf(b, ",RESOLUTION=%dx%d", s.Width, s.Height)
	}
	if codecs := s.CodecsString(); codecs != "" {
		fmt.Fprintf(b, ",CODECS=%q", codecs)
	}
	if audioOnly {
		fmt.Fprintf(b, ",AUDIO=%q", fmt.Sprint(s.Itag))
	} else {
		fmt.Fprintf(b, ",VIDEO=%q", fmt.Sprint(s.Itag))
	}
	if s.FPS != 0 {
		fmt.Fprintf(b, ",FRAME-RATE=%d", s.FPS)
	}
	b.WriteByte('\n')

	fmt.Fprintf(b, "%s\n", s.URI)
}

// --- shared emission helpers ---

func (g *Generator) lineNoNL(b *strings.Builder, depth int, text string) {
	if g.Pretty {
		b.WriteString(strings.Repeat(" ", depth*g.Indent))
	}
	b.WriteString(text)
}

func (g *Generator) finish(b *strings.Builder, suffix string) {
	b.WriteString(suffix)
	if g.Pretty {
		b.WriteByte('\n')
	}
}

func (g *Generator) line(b *strings.Builder, depth int, text string) {
	g.lineNoNL(b, depth, text)
	g.finish(b, "")
}

func (g *Generator) attr(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, ` %s="%s"`, key, value)
}

func (g *Generator) attrInt(b *strings.Builder, key string, value uint64) {
	fmt.Fprintf(b, ` %s="%d"`, key, value)
}

func (g *Generator) attrBool(b *strings.Builder, key string, value bool) {
	v := "false"
	if value {
		v = "true"
	}
	fmt.Fprintf(b, ` %s="%s"`, key, v)
}

func (g *Generator) attrRange(b *strings.Builder, key string, start, end uint64) {
	fmt.Fprintf(b, ` %s="%d-%d"`, key, start, end)
}
