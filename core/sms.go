package core

import (
	"context"
	"regexp"
	"strings"
)

// E164Regex matches phone numbers acceptable to the SMS provider.
var E164Regex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

var nonDigitRegex = regexp.MustCompile(`\D`)

type (
	SMSMessage struct {
		To   string // E.164
		Body string
	}

	// SMSService is any service that can submit a text message to an SMS provider.
	SMSService interface {
		// Send submits a single message and returns the provider-assigned message ID.
		Send(ctx context.Context, msg SMSMessage) (string, error)
	}
)

// NormalizePhone canonicalizes a raw phone string:
// all non-digit characters are stripped; a bare 10-digit number is assumed
// North American and gets a "1" country code; a leading "+" is added if absent.
// Returns ok=false for empty input. Numbers of other lengths are passed
// through with only the "+" logic applied.
func NormalizePhone(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if digits == "" {
		return "", false
	}
	if len(digits) == 10 && !strings.HasPrefix(digits, "1") {
		digits = "1" + digits
	}
	return "+" + digits, true
}
