// Package pathutil normalizes request paths and derives parent/base pairs.
//
// All metadata operations key on absolute, normalized, tenant-relative paths.
// Normalization happens exactly once, at the routing layer; every component
// below it can assume the canonical form: leading "/", no repeated or
// trailing separators, root spelled "/".
package pathutil

import (
	"net/url"
	"strings"
)

// Root is the canonical root path.
const Root = "/"

// Normalize canonicalizes a raw URL path: percent-decodes, collapses repeated
// slashes, strips a trailing slash (except for root), and guarantees a leading
// slash. It is idempotent: Normalize(Normalize(p)) == Normalize(p).
//
// Percent-decoding is lenient; if the escape sequence is malformed the raw
// text is kept as-is rather than rejecting the request.
func Normalize(raw string) string {
	p := raw
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return p
}

// ParentOf returns the parent path of a normalized path. Root is its own
// parent.
func ParentOf(path string) string {
	if path == Root {
		return Root
	}
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return Root
	}
	return path[:idx]
}

// BaseName returns the last segment of a normalized path, or "" for root.
func BaseName(path string) string {
	if path == Root {
		return ""
	}
	idx := strings.LastIndex(path, "/")
	return path[idx+1:]
}
