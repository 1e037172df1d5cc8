package walker

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"
)

func writeTree(t *testing.T, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func collect(seq func(func(string) bool)) []string {
	var got []string
	seq(func(s string) bool {
		got = append(got, s)
		return true
	})
	sort.Strings(got)
	return got
}

func TestWalkExcludesDirs(t *testing.T) {
	root := writeTree(t, []string{
		"src/index.js",
		"node_modules/lodash/index.js",
		".git/HEAD",
		"vendor/pkg/pkg.go",
	})
	got := collect(Walk(context.Background(), root, ModeManifest, DefaultOptions()))
	want := []string{filepath.Join(root, "src/index.js")}
	if !slices.Equal(got, want) {
		t.Errorf("Walk: got %v, want %v", got, want)
	}
}

func TestWalkSourceModeSkipsHiddenAndTestFiles(t *testing.T) {
	root := writeTree(t, []string{
		"src/index.js",
		"src/index.test.js",
		"src/.hidden.js",
		"test/helper.js",
	})
	got := collect(Walk(context.Background(), root, ModeSource, DefaultOptions()))
	want := []string{filepath.Join(root, "src/index.js")}
	if !slices.Equal(got, want) {
		t.Errorf("Walk: got %v, want %v", got, want)
	}
}

func TestWalkManifestModeDoesNotSkipHidden(t *testing.T) {
	root := writeTree(t, []string{
		".config/package.json",
	})
	got := collect(Walk(context.Background(), root, ModeManifest, DefaultOptions()))
	if len(got) != 1 {
		t.Errorf("Walk: got %v, want one hidden-dir manifest", got)
	}
}

func TestWalkUnreadableDirDoesNotAbort(t *testing.T) {
	root := writeTree(t, []string{"a/ok.js", "b/ok.js"})
	restricted := filepath.Join(root, "b")
	if err := os.Chmod(restricted, 0o000); err != nil {
		t.Skip("cannot chmod in this environment")
	}
	defer os.Chmod(restricted, 0o755)
	got := collect(Walk(context.Background(), root, ModeSource, DefaultOptions()))
	want := []string{filepath.Join(root, "a/ok.js")}
	if !slices.Equal(got, want) {
		t.Errorf("Walk: got %v, want %v", got, want)
	}
}

func TestWalkMaxDepth(t *testing.T) {
	root := writeTree(t, []string{"a/b/c/d/e/f/g/h/i/j/k/deep.js"})
	got := collect(Walk(context.Background(), root, ModeSource, Options{MaxDepth: 2}))
	if len(got) != 0 {
		t.Errorf("Walk: got %v, want nothing past max depth", got)
	}
}

func TestWalkContextCancellation(t *testing.T) {
	root := writeTree(t, []string{"a/x.js", "b/y.js"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := collect(Walk(ctx, root, ModeSource, DefaultOptions()))
	if len(got) != 0 {
		t.Errorf("Walk: got %v after cancellation, want none", got)
	}
}
