// Package intern owns golox's single string-deduplication table.
//
// Both the compiler (interning identifier and literal lexemes as it
// emits bytecode) and the VM (interning the result of string
// concatenation) need to intern strings into the same table — that's
// the whole point of interning, per spec.md §3: "there exists at most
// one String value per (bytes) in the running VM." Putting Interner in
// its own leaf package, rather than hanging it off *vm.VM directly,
// is what lets the compiler call it without importing package vm (which
// itself imports the compiler to implement interpret). (*vm.VM).Intern
// delegates to an embedded *Interner so callers still reach it the way
// spec.md's Open Question decision describes — "intern is a method on
// *VM" — without the package graph folding back on itself.
package intern

import (
	"golox/pkg/table"
	"golox/pkg/value"
)

// Interner is the VM's deduplicating string table: find_string on hit,
// allocate-and-register on miss.
type Interner struct {
	strings *table.Table
	onAlloc func(value.Object)
}

// New returns an empty Interner that does not report the strings it
// allocates anywhere. Suitable for standalone tests of package intern or
// package compiler that have no VM object list to keep in sync.
func New() *Interner {
	return &Interner{strings: table.New()}
}

// NewTracked returns an empty Interner that calls onAlloc with every
// freshly allocated *value.ObjString, immediately after allocation and
// before Intern returns it. vm.New wires onAlloc to the VM's own
// track method, so every interned string is linked onto vm.objects the
// same way closures, upvalues, and natives already are.
func NewTracked(onAlloc func(value.Object)) *Interner {
	return &Interner{strings: table.New(), onAlloc: onAlloc}
}

// Intern returns the canonical *value.ObjString for chars, allocating and
// registering one if this is the first time chars has been seen.
// Reference-equal results for byte-equal input is the whole contract.
func (in *Interner) Intern(chars string) *value.ObjString {
	hash := HashString(chars)
	if existing := in.strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := value.NewObjString(chars, hash)
	in.strings.Set(s, value.Nil)
	if in.onAlloc != nil {
		in.onAlloc(s)
	}
	return s
}

// HashString computes the 32-bit FNV-1a hash used for every interned
// string, identifier lookup, and table probe in golox.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Count reports how many distinct strings are currently interned.
func (in *Interner) Count() int { return in.strings.Count() }
