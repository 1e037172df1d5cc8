// Package walker enumerates files under a project root for manifest
// discovery and source scanning.
//
// It never aborts a scan: unreadable files and directories are silently
// skipped, and the root's max-depth/exclusion policy bounds how far the
// walk descends.
package walker

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Mode selects which exclusion policy a [Walk] applies.
type Mode int

const (
	// ModeManifest discovers manifests and lockfiles. It does not
	// special-case hidden files, only hidden directories already present
	// in the exclude list.
	ModeManifest Mode = iota
	// ModeSource discovers source files for import scanning and entry-point
	// detection. It additionally skips hidden files and test/fixture/mock
	// paths.
	ModeSource
)

// DefaultMaxDepth is the default descent limit, measured in path segments
// below root.
const DefaultMaxDepth = 10

// excludeDirs lists directory basenames never descended into, matched as a
// full path segment rather than a substring.
var excludeDirs = map[string]struct{}{
	"node_modules":    {},
	".git":            {},
	".svn":            {},
	".hg":             {},
	"dist":            {},
	"build":           {},
	"target":          {},
	"out":             {},
	"bin":             {},
	"obj":             {},
	".next":           {},
	".nuxt":           {},
	"coverage":        {},
	"__pycache__":     {},
	".pytest_cache":   {},
	".tox":            {},
	"venv":            {},
	"env":             {},
	".venv":           {},
	"vendor":          {},
}

// sourceExcludePattern matches file paths that are test/fixture/mock
// artifacts and so should not be treated as application source during
// ModeSource walks.
var sourceExcludePattern = regexp.MustCompile(`(?i)(^|[/\\])(test|tests|__tests__|fixtures?|mocks?)([/\\]|$)|\.test\.|\.spec\.|\.min\.`)

// Options configures a [Walk].
type Options struct {
	MaxDepth       int
	FollowSymlinks bool
}

// DefaultOptions is the default walk policy: max depth 10, symlinks not
// followed.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, FollowSymlinks: false}
}

// Walk lazily enumerates absolute file paths under root according to mode
// and opts. It never returns an error: unreadable entries and subtrees
// that can't be read simply contribute nothing to the sequence.
//
// The walk stops early if ctx is canceled.
func Walk(ctx context.Context, root string, mode Mode, opts Options) iter.Seq[string] {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return func(yield func(string) bool) {
		walkDir(ctx, abs, abs, 0, mode, opts, yield)
	}
}

// walkDir returns false (by way of the return value of yield) to signal
// the caller should stop.
func walkDir(ctx context.Context, root, dir string, depth int, mode Mode, opts Options, yield func(string) bool) bool {
	if ctx.Err() != nil {
		return false
	}
	if depth > opts.MaxDepth {
		return true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directory: contribute nothing from this subtree.
		return true
	}
	for _, ent := range entries {
		if ctx.Err() != nil {
			return false
		}
		name := ent.Name()
		full := filepath.Join(dir, name)

		if ent.IsDir() {
			if _, excluded := excludeDirs[name]; excluded {
				continue
			}
			if ent.Type()&os.ModeSymlink != 0 && !opts.FollowSymlinks {
				continue
			}
			if !walkDir(ctx, root, full, depth+1, mode, opts, yield) {
				return false
			}
			continue
		}

		if ent.Type()&os.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				continue
			}
			info, err := os.Stat(full)
			if err != nil || info.IsDir() {
				continue
			}
		}

		if mode == ModeSource {
			if strings.HasPrefix(name, ".") {
				continue
			}
			if sourceExcludePattern.MatchString(full) {
				continue
			}
		}

		if !yield(full) {
			return false
		}
	}
	return true
}
