// Package urlnorm canonicalizes website URLs into storage and lookup keys.
package urlnorm

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a raw URL into the key used for deduplication and
// storage identity. The whole URL is lowercased, a leading "www." is stripped
// from the host, http is upgraded to https (other schemes pass through), and
// the result is scheme://host/path with a single trailing slash removed.
// Query strings and fragments are dropped. Unparseable input degrades to the
// lowercased raw string rather than failing.
func Normalize(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	u, err := url.Parse(lowered)
	if err != nil {
		return strings.TrimSuffix(lowered, "/")
	}

	host := strings.TrimPrefix(u.Host, "www.")

	scheme := u.Scheme
	if scheme == "http" || scheme == "https" {
		scheme = "https"
	}

	key := scheme + "://" + host + u.Path
	return strings.TrimSuffix(key, "/")
}

// EnsureScheme trims surrounding whitespace and prepends https:// when the
// input carries no scheme. Applied to raw user input at the CLI and HTTP
// boundaries before profiling.
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}
