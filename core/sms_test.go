package core

import (
	"regexp"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOk bool
	}{
		{"10 digits gets country code", "6134211700", "+16134211700", true},
		{"11 digits passed through", "16134211700", "+16134211700", true},
		{"already normalized", "+16134211700", "+16134211700", true},
		{"formatted number", "(613) 421-1700", "+16134211700", true},
		{"dashed number", "613-421-1700", "+16134211700", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"no digits", "ext.", "", false},
		{"10 digits leading 1 passed through", "1634211700", "+1634211700", true},
		{"international passed through", "+254712345678", "+254712345678", true},
		{"short number passed through", "911", "+911", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.in)
			if ok != tt.wantOk {
				t.Errorf("NormalizePhone(%q) ok = %v, want %v", tt.in, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"6134211700", "16134211700", "+16134211700", "(613) 421-1700", "911", "+254712345678"}
	for _, in := range inputs {
		once, ok := NormalizePhone(in)
		if !ok {
			t.Fatalf("NormalizePhone(%q) not ok", in)
		}
		twice, ok := NormalizePhone(once)
		if !ok {
			t.Fatalf("NormalizePhone(%q) not ok", once)
		}
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizePhoneInvariant(t *testing.T) {
	normalized := regexp.MustCompile(`^\+[0-9]+$`)
	inputs := []string{"6134211700", "1 (613) 421-1700", "abc123", "00 44 20 7946 0958", "+1-613-421-1700"}
	for _, in := range inputs {
		got, ok := NormalizePhone(in)
		if ok && !normalized.MatchString(got) {
			t.Errorf("NormalizePhone(%q) = %q; does not match %s", in, got, normalized)
		}
	}
}
