package totp

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"
)

// Known-answer secret used across reimplementations of this core.
const fixtureSecret = "JBSWY3DPEHPK3PXP"

func TestGenerateRFC6238VectorsSHA1(t *testing.T) {
	m := NewManager(Config{Issuer: "veil", Digits: 8, Period: 30})

	// RFC 6238 Appendix B, SHA1 rows.
	secret := base32.StdEncoding.EncodeToString([]byte("12345678901234567890"))
	cases := []struct {
		ts   int64
		code string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tc := range cases {
		got, err := m.GenerateAt(secret, time.Unix(tc.ts, 0))
		if err != nil {
			t.Fatalf("GenerateAt(t=%d): %v", tc.ts, err)
		}
		if got != tc.code {
			t.Fatalf("t=%d: code = %s, want %s", tc.ts, got, tc.code)
		}

		ok, err := m.Verify(tc.code, secret, time.Unix(tc.ts, 0))
		if err != nil || !ok {
			t.Fatalf("t=%d: Verify ok=%v err=%v", tc.ts, ok, err)
		}
	}
}

func TestGenerateIsDeterministicWithinStep(t *testing.T) {
	m := NewManager(Config{Issuer: "veil"})

	at := time.Unix(1111111111, 0)
	first, err := m.GenerateAt(fixtureSecret, at)
	if err != nil {
		t.Fatalf("GenerateAt: %v", err)
	}

	// Same 30-second window, different instant.
	second, err := m.GenerateAt(fixtureSecret, at.Add(18*time.Second))
	if err != nil {
		t.Fatalf("GenerateAt: %v", err)
	}
	if first != second {
		t.Fatalf("codes within one step differ: %s vs %s", first, second)
	}

	// Regression fixture: counter 37037037 of the shared known-answer secret.
	if first != "358462" {
		t.Fatalf("fixture code = %s, want 358462", first)
	}
}

// The zero-value Config must already tolerate ±1 step: a verifier built
// without explicit tuning has to accept a code minted 30 seconds earlier.
func TestVerifyWindowZeroValueConfig(t *testing.T) {
	m := NewManager(Config{})

	at := time.Unix(1111111111, 0)
	code, err := m.GenerateAt(fixtureSecret, at)
	if err != nil {
		t.Fatalf("GenerateAt: %v", err)
	}

	for _, offset := range []time.Duration{0, 30 * time.Second, -30 * time.Second} {
		ok, err := m.Verify(code, fixtureSecret, at.Add(offset))
		if err != nil {
			t.Fatalf("Verify(%v): %v", offset, err)
		}
		if !ok {
			t.Fatalf("code rejected at offset %v, want accepted", offset)
		}
	}

	for _, offset := range []time.Duration{90 * time.Second, -90 * time.Second} {
		ok, err := m.Verify(code, fixtureSecret, at.Add(offset))
		if err != nil {
			t.Fatalf("Verify(%v): %v", offset, err)
		}
		if ok {
			t.Fatalf("code accepted at offset %v, want rejected", offset)
		}
	}
}

func TestVerifyRejectsMalformedCodes(t *testing.T) {
	m := NewManager(Config{Issuer: "veil"})
	at := time.Unix(1111111111, 0)

	for _, code := range []string{"", "12345", "1234567", "abcdef", "12 456"} {
		ok, err := m.Verify(code, fixtureSecret, at)
		if err != nil {
			t.Fatalf("Verify(%q): %v", code, err)
		}
		if ok {
			t.Fatalf("malformed code %q accepted", code)
		}
	}

	if _, err := m.Verify("358462", "", at); err == nil {
		t.Fatal("empty secret must be an error")
	}
	if _, err := m.Verify("358462", "not base32!!", at); err == nil {
		t.Fatal("undecodable secret must be an error")
	}
}

func TestGenerateSecretShape(t *testing.T) {
	m := NewManager(Config{Issuer: "veil"})

	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		secret, err := m.GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret: %v", err)
		}
		// 20 bytes -> 32 base32 chars without padding.
		if len(secret) != 32 {
			t.Fatalf("secret length = %d, want 32", len(secret))
		}
		if strings.Contains(secret, "=") {
			t.Fatalf("secret %q carries padding", secret)
		}
		if seen[secret] {
			t.Fatalf("duplicate secret generated: %s", secret)
		}
		seen[secret] = true
	}
}

func TestProvisionURI(t *testing.T) {
	m := NewManager(Config{Issuer: "Veil Demo"})

	uri := m.ProvisionURI(fixtureSecret, "user@example.com")
	if !strings.HasPrefix(uri, "otpauth://totp/") {
		t.Fatalf("unexpected scheme: %s", uri)
	}
	for _, want := range []string{
		"secret=" + fixtureSecret,
		"algorithm=SHA1",
		"digits=6",
		"period=30",
		"issuer=Veil+Demo",
	} {
		if !strings.Contains(uri, want) {
			t.Fatalf("uri %s missing %q", uri, want)
		}
	}
}
