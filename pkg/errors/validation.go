package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength is the longest search query accepted by [ValidateQuery].
const MaxQueryLength = 256

// ValidateQuery validates a search query before it is sent to a registry.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only queries
//   - No control characters or null bytes
//   - Maximum length of [MaxQueryLength] characters
func ValidateQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return New(ErrCodeInvalidQuery, "search query cannot be empty")
	}

	if utf8.RuneCountInString(q) > MaxQueryLength {
		return New(ErrCodeInvalidQuery, "search query too long (max %d characters)", MaxQueryLength)
	}

	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "search query contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a base URL for safety.
// It ensures the URL parses, has a safe scheme (http or https) and names a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
