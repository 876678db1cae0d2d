package urlutil

import (
	"net/url"
	"strings"
)

// ResolveRedirect resolves a Location header value against the URL that
// produced the redirect, producing an absolute URL.
//
// All three Location spellings seen in the wild are supported:
//   - absolute ("https://host/path")
//   - protocol-relative ("//host/path")
//   - path-relative ("/path" or "path")
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
func ResolveRedirect(current url.URL, location string) (url.URL, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return url.URL{}, err
	}

	// Protocol-relative: inherit the scheme of the current URL
	if ref.Scheme == "" && ref.Host != "" {
		ref.Scheme = current.Scheme
	}

	resolved := current.ResolveReference(ref)
	return *resolved, nil
}

// errorPageMarkers are path fragments the origin uses for its
// "document not found" landing pages. A redirect into one of these is a
// soft 404: the asset does not exist even though the response is 3xx.
var errorPageMarkers = []string{
	"404",
	"not-found",
	"notfound",
	"introuvable",
	"error",
	"erreur",
}

// IsErrorPagePath reports whether a redirect target path indicates the
// origin's error/not-found page rather than the requested asset.
//
// Markers are matched against whole path segments (with any extension
// stripped), never as substrings: coordinate documents such as
// 0404_2022e.pdf legitimately contain "404" and must not classify as
// error pages.
func IsErrorPagePath(path string) bool {
	for _, segment := range strings.Split(strings.ToLower(path), "/") {
		stem := segment
		if dot := strings.IndexByte(segment, '.'); dot > 0 {
			stem = segment[:dot]
		}
		for _, marker := range errorPageMarkers {
			if segment == marker || stem == marker {
				return true
			}
		}
	}
	return false
}

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Remove query parameters
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
