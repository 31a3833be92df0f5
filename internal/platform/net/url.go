// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package net validates outbound URLs taken from untrusted request bodies.
package net

import (
	"net/url"
	"strings"
)

// SanitizeURL removes user info and query parameters for safe logging.
func SanitizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	parsedURL.RawQuery = ""
	return parsedURL.String()
}

// ParseDirectHTTPURL accepts an absolute http or https URL with a host and
// without credentials or fragment.
func ParseDirectHTTPURL(s string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, false
	}
	if u.Host == "" || u.User != nil || u.Fragment != "" {
		return nil, false
	}
	return u, true
}
