package source

import (
	"fmt"
	"slices"
)

// StringID identifies an interned string (type names, field names,
// function names). IDs are dense and stable, which is what lets bundles
// serialize them as plain integers.
type StringID uint32

const NoStringID StringID = 0

type Interner struct {
	byID  []string // index -> string, byID[0] = "" for NoStringID
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern inserts a string and returns its ID; an already-interned
// string returns its existing ID.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}

	// Own copy, so the ID never aliases a caller's buffer.
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Lookup returns the string for an ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for an ID and panics on an invalid one.
// Invalid IDs here mean corrupted bundles or internal bugs.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid string ID %d", id))
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings, NoStringID included. Never below 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns the full table in ID order, for bundle encoding.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}

// Restore rebuilds the table from a snapshot, preserving IDs exactly.
// Any previously interned strings are discarded.
func (i *Interner) Restore(table []string) error {
	if len(table) == 0 || table[0] != "" {
		return fmt.Errorf("string table must start with the empty string, got %d entries", len(table))
	}
	byID := slices.Clone(table)
	index := make(map[string]StringID, len(byID))
	for id, s := range byID {
		if prev, dup := index[s]; dup {
			return fmt.Errorf("duplicate string table entry %q at %d and %d", s, prev, id)
		}
		index[s] = StringID(id)
	}
	i.byID = byID
	i.index = index
	return nil
}
