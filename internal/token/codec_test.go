package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestNewCodec_RejectsShortKey(t *testing.T) {
	if _, err := NewCodec([]byte("too-short")); err == nil {
		t.Fatal("expected error for short signing key")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("google:123", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	subject, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "google:123" {
		t.Errorf("subject = %q, want %q", subject, "google:123")
	}
}

func TestCodec_ExpiredAtExactInstant(t *testing.T) {
	c := newTestCodec(t)

	issuedAt := time.Now()
	c.now = func() time.Time { return issuedAt }

	tok, err := c.Issue("google:123", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One second before expiry: still valid.
	c.now = func() time.Time { return issuedAt.Add(time.Minute - time.Second) }
	if _, err := c.Verify(tok); err != nil {
		t.Fatalf("verify before expiry: %v", err)
	}

	// The exact expiry instant counts as expired.
	c.now = func() time.Time { return issuedAt.Add(time.Minute) }
	if _, err := c.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Errorf("verify at expiry = %v, want ErrExpired", err)
	}

	c.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := c.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Errorf("verify after expiry = %v, want ErrExpired", err)
	}
}

func TestCodec_WrongKey(t *testing.T) {
	c := newTestCodec(t)

	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	tok, err := c.Issue("google:123", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Errorf("verify with wrong key = %v, want ErrInvalid", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(t)

	for _, raw := range []string{
		"",
		"not-a-token",
		"aaaa.bbbb.cccc",
	} {
		if _, err := c.Verify(raw); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) = %v, want ErrInvalid", raw, err)
		}
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("google:123", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	parts[1] = "eyJzdWIiOiJnb29nbGU6OTk5In0"
	tampered := strings.Join(parts, ".")

	if _, err := c.Verify(tampered); !errors.Is(err, ErrInvalid) {
		t.Errorf("verify tampered token = %v, want ErrInvalid", err)
	}
}
