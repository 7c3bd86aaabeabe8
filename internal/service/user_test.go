package service

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Password Validation Tests
// =============================================================================

func TestValidatePassword_Length(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"too short - 7 chars", "Abcdef1", false},
		{"minimum - 8 chars", "Abcdef12", true},
		{"longer - 12 chars", "Abcdefgh1234", true},
		{"at bcrypt limit - 72 chars", strings.Repeat("Aa1", 24), true},
		{"over bcrypt limit - 75 chars", strings.Repeat("Aa1", 25), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidatePassword_Composition(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"numbers only", "12345678", false},
		{"letters only", "abcdefgh", false},
		{"symbols only", "!@#$%^&*", false},
		{"letters and numbers", "xmqr1234", true},
		{"mixed case with number", "XmQr1234", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected error")
			}
		})
	}
}

// =============================================================================
// Session Duration Tests
// =============================================================================

func TestNormalizeSessionDuration(t *testing.T) {
	testCases := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"unset falls back to default", 0, DefaultSessionDuration},
		{"below minimum is clamped", time.Minute, MinSessionDuration},
		{"above maximum is clamped", 365 * 24 * time.Hour, MaxSessionDuration},
		{"in range is preserved", 48 * time.Hour, 48 * time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeSessionDuration(tc.in); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

// =============================================================================
// Session Token Tests
// =============================================================================

func TestGenerateSessionToken_Unique(t *testing.T) {
	a, err := generateSessionToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	b, err := generateSessionToken()
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if a == b {
		t.Error("expected unique tokens")
	}
	if len(a) != SessionTokenBytes*2 {
		t.Errorf("expected %d hex chars, got %d", SessionTokenBytes*2, len(a))
	}
}

func TestHashSessionToken_Deterministic(t *testing.T) {
	if hashSessionToken("token") != hashSessionToken("token") {
		t.Error("expected identical hashes for identical tokens")
	}
	if hashSessionToken("token") == hashSessionToken("other") {
		t.Error("expected different hashes for different tokens")
	}
	// The raw token must never equal its stored form.
	if hashSessionToken("token") == "token" {
		t.Error("hash should not equal raw token")
	}
}
