// Package store persists 25-slice border data, keyed by sprite identity.
//
// Stores are blocking and may touch the disk or a database. Do not call
// them from a per-frame path; see package async for scheduling lookups off
// the layout goroutine.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"git.sr.ht/~gioverse/slicer/twentyfive"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("slice data not found")

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid slice data key")

// Record is the persisted form of a border set. Its JSON encoding is the
// file format shared with other tools:
//
//	{"verticalBorders":[20,40,60,80],"horizontalBorders":[20,40,60,80]}
type Record struct {
	VerticalBorders   [4]float32 `json:"verticalBorders"`
	HorizontalBorders [4]float32 `json:"horizontalBorders"`
}

// FromBorders converts a border set into a record.
func FromBorders(b twentyfive.BorderSet) Record {
	return Record{
		VerticalBorders:   b.Vertical,
		HorizontalBorders: b.Horizontal,
	}
}

// Borders converts the record into a border set.
func (r Record) Borders() twentyfive.BorderSet {
	return twentyfive.BorderSet{
		Vertical:   r.VerticalBorders,
		Horizontal: r.HorizontalBorders,
	}
}

// Store maps sprite keys to records.
type Store interface {
	// Lookup the record for key, returning ErrNotFound if there is none.
	Lookup(ctx context.Context, key string) (Record, error)
	// Save the record for key, replacing any existing one. Malformed
	// borders are rejected.
	Save(ctx context.Context, key string, r Record) error
	// Remove the record for key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// Kinds of store understood by Open.
const (
	KindMemory = "memory"
	KindDir    = "dir"
	KindSQLite = "sqlite"
)

// Open a store of the given kind. Path is the directory for KindDir and the
// database file for KindSQLite; it is ignored for KindMemory.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemory(), nil
	case KindDir:
		return NewDir(path)
	case KindSQLite:
		return OpenDB(path)
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}

// Resolve the borders for key, substituting fallback when the store has no
// record. The boolean reports whether a record was found.
func Resolve(ctx context.Context, s Store, key string, fallback twentyfive.BorderSet) (twentyfive.BorderSet, bool, error) {
	r, err := s.Lookup(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return fallback, false, nil
	}
	if err != nil {
		return fallback, false, err
	}
	return r.Borders(), true, nil
}

// Purge removes every record whose key is not live, returning the removed
// keys. This cleans up data for sprites that no longer exist.
func Purge(ctx context.Context, s Store, live func(key string) bool) ([]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	var removed []string
	for _, k := range keys {
		if live(k) {
			continue
		}
		if err := s.Remove(ctx, k); err != nil {
			return removed, fmt.Errorf("removing %s: %w", k, err)
		}
		removed = append(removed, k)
	}
	return removed, nil
}

// validate a record and key before saving.
func validate(key string, r Record) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if err := r.Borders().Validate(); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func sorted(keys []string) []string {
	sort.Strings(keys)
	return keys
}
