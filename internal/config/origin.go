package config

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmptyOrigin    = errors.New("origin cannot be empty")
	ErrOriginWildcard = errors.New("wildcards are not allowed in trusted origins")
	ErrOriginFormat   = errors.New("origin must be a host with an optional port")
)

// SanitizeTrustedDomain normalizes a trusted origin entry to a lowercase
// host[:port]. A scheme prefix and a single trailing slash are accepted;
// paths, queries, fragments, whitespace and wildcards are rejected.
func SanitizeTrustedDomain(raw string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", ErrEmptyOrigin
	}

	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimSuffix(cleaned, "/")

	if strings.Contains(cleaned, "*") {
		return "", ErrOriginWildcard
	}
	if cleaned == "" || strings.ContainsAny(cleaned, " \t\r\n") {
		return "", ErrOriginFormat
	}

	u, err := url.Parse("http://" + cleaned)
	if err != nil || u.Host == "" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", ErrOriginFormat
	}

	return u.Host, nil
}
