package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDumpStore_WriteRead(t *testing.T) {
	d := NewDumpStore(t.TempDir())

	type record struct {
		Slug  string `json:"slug"`
		Price string `json:"price"`
	}
	in := []record{{"bitcoin", "6500.10"}, {"ethereum", "210.42"}}

	if err := d.Write("currency", in); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var out []record
	if err := d.Read("currency", &out); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(out) != 2 || out[0].Slug != "bitcoin" || out[1].Price != "210.42" {
		t.Errorf("round trip = %+v", out)
	}

	// No temp file left behind.
	if _, err := os.Stat(d.Path("currency") + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file survived the rename")
	}
}

func TestDumpStore_MissingFile(t *testing.T) {
	d := NewDumpStore(t.TempDir())

	var out []int
	err := d.Read("nope", &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want os.ErrNotExist", err)
	}
}

func TestStore_PutGet(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	url := "https://example.com/currencies/bitcoin/"

	if _, _, hit, err := s.Get(ctx, url); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := s.Put(ctx, url, []byte("<html>one</html>")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	body, fetchedAt, hit, err := s.Get(ctx, url)
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(body) != "<html>one</html>" {
		t.Errorf("body = %q", body)
	}
	if fetchedAt.IsZero() {
		t.Error("fetched_at not recorded")
	}

	// Same URL replaces, never duplicates.
	if err := s.Put(ctx, url, []byte("<html>two</html>")); err != nil {
		t.Fatalf("Put (replace) failed: %v", err)
	}
	body, _, _, err = s.Get(ctx, url)
	if err != nil || string(body) != "<html>two</html>" {
		t.Errorf("replaced body = %q, err %v", body, err)
	}
}

func TestStore_Prune(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "https://example.com/a", []byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	n, err := s.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	if _, _, hit, _ := s.Get(ctx, "https://example.com/a"); hit {
		t.Error("entry survived prune")
	}
}

func TestStore_Metadata(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if v, err := s.GetMeta(ctx, "last_run"); err != nil || v != "" {
		t.Fatalf("GetMeta on empty table = %q, %v", v, err)
	}
	if err := s.SetMeta(ctx, "last_run", "2018-08-01"); err != nil {
		t.Fatalf("SetMeta failed: %v", err)
	}
	if err := s.SetMeta(ctx, "last_run", "2018-08-02"); err != nil {
		t.Fatalf("SetMeta (update) failed: %v", err)
	}
	v, err := s.GetMeta(ctx, "last_run")
	if err != nil || v != "2018-08-02" {
		t.Errorf("GetMeta = %q, %v", v, err)
	}
}
