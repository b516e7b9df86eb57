package codecdetect

import "testing"

func TestAvcCodecString(t *testing.T) {
	tests := []struct {
		name string
		sps  []byte
		want string
	}{
		{"typical high profile", []byte{0x67, 0x64, 0x00, 0x28}, "avc1.640028"},
		{"baseline", []byte{0x67, 0x42, 0xc0, 0x1f}, "avc1.42c01f"},
		{"too short", []byte{0x67, 0x64}, "avc1"},
		{"empty", nil, "avc1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := avcCodecString(tt.sps); got != tt.want {
				t.Errorf("avcCodecString(%v) = %q, want %q", tt.sps, got, tt.want)
			}
		})
	}
}

func TestHevcCodecString(t *testing.T) {
	tests := []struct {
		name string
		sps  []byte
		want string
	}{
		{"main profile", []byte{0x42, 0x01, 0x01, 0x01}, "hev1.1"},
		{"too short", []byte{0x42, 0x01}, "hev1"},
		{"empty", nil, "hev1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hevcCodecString(tt.sps); got != tt.want {
				t.Errorf("hevcCodecString(%v) = %q, want %q", tt.sps, got, tt.want)
			}
		})
	}
}
