package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the input cannot be turned into an
// absolute, host-bearing URL.
var ErrInvalidURL = errors.New("invalid url")

// Canonicalize validates and normalizes a raw user-supplied string into an
// absolute URL with a guaranteed scheme and non-empty host. It validates
// syntax only and never touches the network.
func Canonicalize(rawInput string) (string, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawInput)
	}

	return parsed.String(), nil
}
