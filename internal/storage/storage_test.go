package storage

import (
	"context"
	"strconv"
	"testing"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Errorf("got %q", got)
	}
}

func TestMemoryStoreGetMissingReturnsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "missing")
	if err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreAppend(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Append(ctx, "log", []byte("a"))
	s.Append(ctx, "log", []byte("b"))
	got, _ := s.Get(ctx, "log")
	if string(got) != "a\nb\n" {
		t.Errorf("got %q", got)
	}
}

func TestMemoryStoreEvictsOldestPastCeiling(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < maxCacheEntries+5; i++ {
		s.Put(ctx, "k"+strconv.Itoa(i), []byte{byte(i)})
	}
	if len(s.data) > maxCacheEntries {
		t.Errorf("got %d entries, want <= %d", len(s.data), maxCacheEntries)
	}
	if _, err := s.Get(ctx, "k0"); err != ErrNotFound {
		t.Errorf("oldest key k0: got err %v, want ErrNotFound", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fs.Put(ctx, "cache-key", []byte("hello world")); err != nil {
		t.Fatal(err)
	}
	got, err := fs.Get(ctx, "cache-key")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestFileStoreAppend(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	fs.Append(ctx, "feedback", []byte(`{"verdict":"tp"}`))
	fs.Append(ctx, "feedback", []byte(`{"verdict":"fp"}`))
	got, err := fs.Get(ctx, "feedback")
	if err != nil {
		t.Fatal(err)
	}
	want := "{\"verdict\":\"tp\"}\n{\"verdict\":\"fp\"}\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFileStoreDeleteMissingIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Delete(context.Background(), "nope"); err != nil {
		t.Fatal(err)
	}
}
