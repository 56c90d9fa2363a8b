// Package resolver maps a raw request URI to a canonical path rooted
// inside the document root, or to an error status.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nnickles/origind/internal/httpmsg"
)

// Resolve canonicalizes root, builds the candidate path for uri against
// it, canonicalizes the candidate, and checks containment and
// regular-file-ness. uri is used as raw bytes; no percent-decoding
// happens here, so an encoded traversal attempt (e.g. "%2e%2e")
// resolves to a literal path segment that will simply not exist, and
// is rejected by the containment/existence checks, not rewritten.
func Resolve(root, uri, indexFile string) (path string, code httpmsg.Code, ok bool) {
	canonicalRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", httpmsg.StatusInternalServerError, false
	}
	canonicalRoot = filepath.Clean(canonicalRoot)

	var candidate string
	if uri == "" || uri == "/" {
		candidate = filepath.Join(canonicalRoot, indexFile)
	} else {
		rel := strings.TrimPrefix(uri, "/")
		candidate = filepath.Join(canonicalRoot, rel)
	}

	canonicalTarget, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", httpmsg.StatusNotFound, false
	}
	canonicalTarget = filepath.Clean(canonicalTarget)

	if !withinRoot(canonicalRoot, canonicalTarget) {
		return "", httpmsg.StatusForbidden, false
	}

	info, err := os.Stat(canonicalTarget)
	if err != nil {
		return "", httpmsg.StatusNotFound, false
	}
	if !info.Mode().IsRegular() {
		return "", httpmsg.StatusForbidden, false
	}

	return canonicalTarget, httpmsg.StatusOK, true
}

// withinRoot reports whether target equals root or sits under root at
// a path-separator boundary, so "/www-evil" is never treated as inside
// "/www" merely because it shares a string prefix.
func withinRoot(root, target string) bool {
	if target == root {
		return true
	}
	return strings.HasPrefix(target, root+string(filepath.Separator))
}
