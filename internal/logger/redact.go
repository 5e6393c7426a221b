package logger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Audited content and credential material. Keys are compared lowercased.
var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"authorization": true,
	"client_secret": true,
	"credentials":   true,
	"password":      true,
	"private_key":   true,
	"prompt":        true,
	"refresh_token": true,
	"response":      true,
	"text":          true,
}

var sensitiveKeySubstrings = []string{
	"secret",
	"token_value",
	"private_key",
	"password",
	"bearer",
	"api_key",
	"apikey",
}

var sensitiveValuePatterns = []*regexp.Regexp{
	// OAuth2 access tokens minted by Google.
	regexp.MustCompile(`\bya29\.[0-9A-Za-z\-_]{10,}`),
	regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{10,}\b`),
	regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9\-._~+/]+=*`),
	regexp.MustCompile(`(?i)"(private_key|client_secret|refresh_token)"\s*:`),
}

// RedactAttr is a slog.ReplaceAttr func that blanks credential-like
// attributes and any attribute carrying prompt or response text.
// Token counts such as prompt_token_count are left alone.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if shouldRedact(a) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func shouldRedact(a slog.Attr) bool {
	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] {
		return true
	}
	for _, sub := range sensitiveKeySubstrings {
		if strings.Contains(key, sub) {
			return true
		}
	}

	var value string
	if a.Value.Kind() == slog.KindString {
		value = a.Value.String()
	} else {
		value = fmt.Sprint(a.Value.Any())
	}
	if value == "" {
		return false
	}
	for _, re := range sensitiveValuePatterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
