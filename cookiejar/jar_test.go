package cookiejar

import "testing"

func TestTrimLeadingDot(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{".example.com", "example.com"},
		{"example.com", "example.com"},
		{".", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := trimLeadingDot(tt.host); got != tt.want {
			t.Errorf("trimLeadingDot(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
