// Package table implements golox's open-addressed hash table: the
// storage behind the VM's globals and the single authoritative string
// interner.
//
// Architecture:
//
// Entries live in a flat slice probed linearly from key.Hash % capacity.
// A deleted entry is replaced by a tombstone (a nil key paired with a
// Bool(true) value) rather than removed outright, so that probe chains
// that ran through it still find entries placed further along; findEntry
// folds the first tombstone it passes back into the result so repeated
// insert/delete doesn't leak slots. The table grows (doubling, 8-entry
// floor) once it crosses 75% load, rehashing every live entry into a
// fresh array and dropping tombstones in the process — the only way a
// tombstone is ever reclaimed.
//
// Keys are always *value.ObjString, compared by pointer — which is safe
// only because every *value.ObjString in the table came from the same
// interner (see (*vm.VM).Intern), so equal contents are always the same
// pointer.
package table

import "golox/pkg/value"

const maxLoad = 0.75

// entry is one slot: a nil Key with a KindNil Value marks "never used",
// a nil Key with a non-nil Value marks a tombstone, anything else is a
// live key/value pair.
type entry struct {
	key   *value.ObjString
	value value.Value
}

// Table is an open-addressed hash table keyed by interned string.
type Table struct {
	count   int
	entries []entry
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// Count is the number of occupied slots: live entries plus any tombstones
// Delete has left since the last growth (Delete does not decrement it).
func (t *Table) Count() int { return t.count }

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key *value.ObjString) (value.Value, bool) {
	if t.count == 0 {
		return value.Nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return value.Nil, false
	}
	return e.value, true
}

// Set stores value under key, growing the table first if needed. It
// reports whether key was not already present.
func (t *Table) Set(key *value.ObjString, v value.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}
	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.value.IsNil() {
		t.count++
	}
	e.key = key
	e.value = v
	return isNewKey
}

// Delete removes key, leaving a tombstone behind so later probes that ran
// through this slot still terminate correctly. Reports whether key was
// present.
func (t *Table) Delete(key *value.ObjString) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = value.Bool(true)
	return true
}

// AddAll copies every live entry of from into t, overwriting any existing
// keys. Nothing in the interpreter calls it; only the table tests do.
func (t *Table) AddAll(from *Table) {
	for _, e := range from.entries {
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString looks up an interned string by content rather than pointer —
// the one place this table compares key bytes instead of key identity,
// since this is how the interner itself decides whether a fresh
// ObjString is needed at all.
func (t *Table) FindString(chars string, hash uint32) *value.ObjString {
	if t.count == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := int(hash % uint32(capacity))
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) % capacity
	}
}

// findEntry walks the probe sequence for key starting at key.Hash %
// capacity, returning the slot key occupies, the first tombstone seen
// along the way if key isn't found, or the first truly empty slot.
func findEntry(entries []entry, key *value.ObjString) *entry {
	capacity := len(entries)
	index := int(key.Hash % uint32(capacity))
	var tombstone *entry
	for {
		e := &entries[index]
		switch {
		case e.key == nil:
			if e.value.IsNil() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) % capacity
	}
}

// adjustCapacity grows the backing array to capacity and rehashes every
// live entry into it, dropping tombstones — the only point at which a
// tombstone slot is reclaimed.
func (t *Table) adjustCapacity(capacity int) {
	fresh := make([]entry, capacity)
	for i := range fresh {
		fresh[i].value = value.Nil
	}

	t.count = 0
	for _, e := range t.entries {
		if e.key == nil {
			continue
		}
		dest := findEntry(fresh, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
	t.entries = fresh
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
