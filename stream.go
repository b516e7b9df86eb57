package gtuber

import "strings"

// Stream represents one playable URL, either a standalone progressive file
// or (embedded in an AdaptiveStream) one track of a DASH/HLS manifest.
type Stream struct {
	// URI is the playable (or, for adaptive streams, segment-base) URL.
	URI string

	// Itag is a stable identifier the extractor assigns for cross-run
	// selection. 0 means unknown, except for a deliberate singleton
	// stream where the extractor explicitly assigns itag 0.
	Itag uint

	MimeType MimeType

	// VideoCodec and AudioCodec are RFC 6381-style codec strings, e.g.
	// "avc1.640028" or "mp4a.40.2". Empty means absent/unknown.
	VideoCodec string
	AudioCodec string

	Width   uint
	Height  uint
	FPS     uint
	Bitrate uint
}

// codecFlagsForVideo maps a video codec string prefix to its CodecFlags bit.
func codecFlagsForVideo(codec string) CodecFlags {
	switch {
	case codec == "":
		return 0
	case strings.HasPrefix(codec, "avc"):
		return CodecFlagVideoAVC
	case strings.HasPrefix(codec, "vp9"):
		return CodecFlagVideoVP9
	case strings.HasPrefix(codec, "hev"):
		return CodecFlagVideoHEVC
	case strings.HasPrefix(codec, "av01"):
		return CodecFlagVideoAV1
	default:
		return CodecFlagVideoUnknown
	}
}

// codecFlagsForAudio maps an audio codec string prefix to its CodecFlags bit.
func codecFlagsForAudio(codec string) CodecFlags {
	switch {
	case codec == "":
		return 0
	case strings.HasPrefix(codec, "mp4a"):
		return CodecFlagAudioMP4A
	case strings.HasPrefix(codec, "opus"):
		return CodecFlagAudioOpus
	default:
		return CodecFlagAudioUnknown
	}
}

// CodecFlags computes the bitset of codec families this Stream uses, by
// prefix-matching VideoCodec and AudioCodec. A non-empty codec string that
// matches no known prefix still sets the corresponding "unknown" flag.
func (s *Stream) CodecFlags() CodecFlags {
	return codecFlagsForVideo(s.VideoCodec) | codecFlagsForAudio(s.AudioCodec)
}

// CodecsString joins VideoCodec and AudioCodec with a comma. If only one is
// set, it is returned alone. If neither is set, the empty string is returned.
func (s *Stream) CodecsString() string {
	switch {
	case s.VideoCodec != "" && s.AudioCodec != "":
		return s.VideoCodec + "," + s.AudioCodec
	case s.VideoCodec != "":
		return s.VideoCodec
	case s.AudioCodec != "":
		return s.AudioCodec
	default:
		return ""
	}
}
