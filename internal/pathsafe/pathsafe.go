// Package pathsafe guards user-supplied paths against traversal outside
// a scan's project root, per spec.md §7: "any user-supplied path is
// resolved and must be a prefix of project-root after normalization."
package pathsafe

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolve normalizes candidate relative to root and verifies the result
// still falls under root. It rejects traversal escapes (`../../etc/passwd`),
// absolute paths outside root, and Unicode-normalization tricks (NFC/NFD homoglyph segments) by
// running both path and root through NFC normalization before comparing.
func Resolve(root, candidate string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	absRoot = normalize(filepath.Clean(absRoot))

	joined := candidate
	if !filepath.IsAbs(candidate) {
		joined = filepath.Join(absRoot, candidate)
	}
	resolved, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve candidate: %w", err)
	}
	resolved = normalize(filepath.Clean(resolved))

	if resolved != absRoot && !strings.HasPrefix(resolved, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("pathsafe: %q escapes project root %q", candidate, root)
	}
	return resolved, nil
}

// normalize applies Unicode NFC normalization so visually-identical paths
// that differ only in combining-character composition compare equal.
func normalize(p string) string {
	return norm.NFC.String(p)
}
