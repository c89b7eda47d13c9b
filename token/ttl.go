package token

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ParseTTL maps compact lifetime strings ("7d", "24h", "30m", "45s") to a
// duration. Unparseable input returns fallback rather than an error: a bad
// TTL string is a configuration-hygiene problem, and minting must not start
// failing at request time because of it.
func ParseTTL(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	// "Nd" is the only unit time.ParseDuration does not speak.
	if strings.HasSuffix(s, "d") {
		digits := strings.TrimSuffix(s, "d")
		if digits == "" || !isDigits(digits) {
			return fallback
		}
		days, err := strconv.Atoi(digits)
		if err != nil {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
