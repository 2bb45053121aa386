package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"git.sr.ht/~gioverse/slicer/twentyfive"
)

// stores allocates one of each store implementation for the test.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir, err := NewDir(filepath.Join(t.TempDir(), "records"))
	if err != nil {
		t.Fatalf("opening dir store: %v", err)
	}
	db, err := OpenDB(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"dir":    dir,
		"sqlite": db,
	}
}

var custom = Record{
	VerticalBorders:   [4]float32{5, 25.5, 70, 95},
	HorizontalBorders: [4]float32{10, 10, 90, 90},
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Lookup(ctx, "button_4_4_AB"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("lookup of missing key: got %v, want %v", err, ErrNotFound)
			}
			if err := s.Save(ctx, "button_4_4_AB", custom); err != nil {
				t.Fatalf("saving: %v", err)
			}
			got, err := s.Lookup(ctx, "button_4_4_AB")
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if got != custom {
				t.Fatalf("\n got: %+v\nwant: %+v", got, custom)
			}
			updated := FromBorders(twentyfive.DefaultBorders())
			if err := s.Save(ctx, "button_4_4_AB", updated); err != nil {
				t.Fatalf("updating: %v", err)
			}
			if got, _ := s.Lookup(ctx, "button_4_4_AB"); got != updated {
				t.Fatalf("after update got %+v, want %+v", got, updated)
			}
			if err := s.Save(ctx, "panel_8_8_CD", custom); err != nil {
				t.Fatalf("saving: %v", err)
			}
			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("keys: %v", err)
			}
			if want := []string{"button_4_4_AB", "panel_8_8_CD"}; !reflect.DeepEqual(keys, want) {
				t.Fatalf("keys: got %v, want %v", keys, want)
			}
			if err := s.Remove(ctx, "button_4_4_AB"); err != nil {
				t.Fatalf("removing: %v", err)
			}
			if err := s.Remove(ctx, "button_4_4_AB"); err != nil {
				t.Fatalf("removing twice: %v", err)
			}
			if _, err := s.Lookup(ctx, "button_4_4_AB"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("lookup after remove: got %v, want %v", err, ErrNotFound)
			}
		})
	}
}

func TestStoreRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	bad := Record{
		VerticalBorders:   [4]float32{60, 40, 20, 10},
		HorizontalBorders: [4]float32{20, 40, 60, 80},
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, "k", bad); !errors.Is(err, twentyfive.ErrMalformedBorders) {
				t.Fatalf("got %v, want %v", err, twentyfive.ErrMalformedBorders)
			}
			if err := s.Save(ctx, "", custom); !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("got %v, want %v", err, ErrInvalidKey)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	fallback := twentyfive.DefaultBorders()
	b, ok, err := Resolve(ctx, s, "missing", fallback)
	if err != nil || ok || b != fallback {
		t.Fatalf("missing record: got %+v, %v, %v", b, ok, err)
	}
	if err := s.Save(ctx, "present", custom); err != nil {
		t.Fatalf("saving: %v", err)
	}
	b, ok, err = Resolve(ctx, s, "present", fallback)
	if err != nil || !ok || b != custom.Borders() {
		t.Fatalf("present record: got %+v, %v, %v", b, ok, err)
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for _, k := range []string{"a", "b", "c", "d"} {
		if err := s.Save(ctx, k, custom); err != nil {
			t.Fatalf("saving %s: %v", k, err)
		}
	}
	live := map[string]bool{"b": true, "d": true}
	removed, err := Purge(ctx, s, func(k string) bool { return live[k] })
	if err != nil {
		t.Fatalf("purging: %v", err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed %v, want %v", removed, want)
	}
	keys, _ := s.Keys(ctx)
	if want := []string{"b", "d"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("remaining %v, want %v", keys, want)
	}
}

// TestDirFileFormat checks the on-disk schema shared with other tools.
func TestDirFileFormat(t *testing.T) {
	ctx := context.Background()
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("opening dir store: %v", err)
	}
	if err := d.Save(ctx, "tile", FromBorders(twentyfive.DefaultBorders())); err != nil {
		t.Fatalf("saving: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(d.Path, "tile.json"))
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	var raw map[string][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	want := map[string][]float64{
		"verticalBorders":   {20, 40, 60, 80},
		"horizontalBorders": {20, 40, 60, 80},
	}
	if !reflect.DeepEqual(raw, want) {
		t.Fatalf("\n got: %v\nwant: %v", raw, want)
	}
	// Files written by other tools are read back.
	external := []byte(`{"verticalBorders":[1,2,3,4],"horizontalBorders":[5,6,7,8]}`)
	if err := os.WriteFile(filepath.Join(d.Path, "external.json"), external, 0o644); err != nil {
		t.Fatalf("writing record: %v", err)
	}
	r, err := d.Lookup(ctx, "external")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if r.HorizontalBorders != [4]float32{5, 6, 7, 8} {
		t.Fatalf("horizontal borders: %v", r.HorizontalBorders)
	}
	for _, key := range []string{"../escape", `a\b`, ".."} {
		if _, err := d.Lookup(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: got %v, want %v", key, err, ErrInvalidKey)
		}
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("memory", ""); err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, err := Open(KindDir, t.TempDir()); err != nil {
		t.Fatalf("dir: %v", err)
	}
	if _, err := Open("redis", ""); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
