// Package codecdetect sniffs an RFC 6381 codec string out of a raw fMP4
// initialization segment, for extractors that only have access to a
// stream's init segment bytes and not a site-provided codec string.
// Adapted from the teacher's internal/codec package, which parses the
// same moov structures for transcoding rather than codec-string
// derivation.
package codecdetect

import (
	"bytes"
	"fmt"

	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"
)

// DetectInit parses an fMP4 initialization segment (a moov box, optionally
// preceded by an ftyp) and returns the RFC 6381 codec string for its
// first video track and first audio track. Either return is empty if
// that track type was not found.
func DetectInit(initSegment []byte) (videoCodec, audioCodec string, err error) {
	var init fmp4.Init
	if err := init.Unmarshal(bytes.NewReader(initSegment)); err != nil {
		return "", "", fmt.Errorf("codecdetect: parsing init segment: %w", err)
	}

	for _, track := range init.Tracks {
		switch codec := track.Codec.(type) {
		case *mp4.CodecH264:
			if videoCodec == "" {
				videoCodec = avcCodecString(codec.SPS)
			}
		case *mp4.CodecH265:
			if videoCodec == "" {
				videoCodec = hevcCodecString(codec.SPS)
			}
		case *mp4.CodecVP9:
			if videoCodec == "" {
				videoCodec = "vp09.00.00.08"
			}
		case *mp4.CodecAV1:
			if videoCodec == "" {
				videoCodec = "av01.0.00M.08"
			}
		case *mp4.CodecMPEG4Audio:
			if audioCodec == "" {
				audioCodec = "mp4a.40.2"
			}
		case *mp4.CodecOpus:
			if audioCodec == "" {
				audioCodec = "opus"
			}
		case *mp4.CodecAC3:
			if audioCodec == "" {
				audioCodec = "ac-3"
			}
		case *mp4.CodecEAC3:
			if audioCodec == "" {
				audioCodec = "ec-3"
			}
		}
	}

	return videoCodec, audioCodec, nil
}

// avcCodecString builds an "avc1.PPCCLL" RFC 6381 string from an H.264 SPS
// NAL unit's profile_idc, constraint-flag byte, and level_idc — the three
// bytes immediately following the one-byte NAL header.
func avcCodecString(sps []byte) string {
	if len(sps) < 4 {
		return "avc1"
	}
	return fmt.Sprintf("avc1.%02x%02x%02x", sps[1], sps[2], sps[3])
}

// hevcCodecString builds a conservative "hev1.N" RFC 6381 string carrying
// only general_profile_idc. A fully precise HEVC codec string additionally
// encodes the profile-compatibility bitmask, tier flag, and constraint
// flags from the SPS profile_tier_level structure; without a bit-level
// H.265 SPS parser this emits the profile_idc component alone, which is
// enough for most HEVC consumers to pick a decoder. profile_idc is the low
// five bits of the byte after the two-byte NAL header and the
// vps_id/max_sub_layers byte.
func hevcCodecString(sps []byte) string {
	if len(sps) < 4 {
		return "hev1"
	}
	profileIdc := sps[3] & 0x1f
	return fmt.Sprintf("hev1.%d", profileIdc)
}
