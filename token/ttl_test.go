package token

import (
	"testing"
	"time"
)

func TestParseTTL(t *testing.T) {
	fallback := 42 * time.Minute

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"24h", 24 * time.Hour},
		{"30m", 30 * time.Minute},
		{"45s", 45 * time.Second},
		{"90m", 90 * time.Minute},
		{" 15m ", 15 * time.Minute},

		// Configuration-hygiene fallbacks, never errors.
		{"", fallback},
		{"d", fallback},
		{"-7d", fallback},
		{"7dd", fallback},
		{"later", fallback},
		{"-5m", fallback},
		{"7", fallback},
	}

	for _, tc := range cases {
		if got := ParseTTL(tc.in, fallback); got != tc.want {
			t.Fatalf("ParseTTL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
