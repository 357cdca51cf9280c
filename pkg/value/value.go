// Package value defines golox's runtime value representation: the tagged
// Value union the VM pushes and pops, and the heap Object types a Value
// can point at.
//
// Architecture:
//
// A Value is a small fixed-size struct — a type tag plus one live payload
// field. This mirrors the clox original's tagged union, minus the union
// itself: Go has no safe untagged union, so the payload fields sit side
// by side and Kind says which one to trust.
//
// Object is modeled as an interface rather than a manual tagged pointer,
// which is the more idiomatic Go shape for "one of several heap-allocated
// variants addressed by pointer" — two Values holding the same *ObjString
// compare equal as Objects because Go interface equality reduces to
// pointer equality for pointer-typed dynamic values, which is exactly the
// "reference identity" clox gets from comparing raw Obj* pointers.
//
// Every concrete Object embeds objHeader, which threads it onto a single
// intrusive linked list (the clox original's vm.objects chain) so a VM can
// walk every allocation it owns; there is no collector, so the list exists
// purely so vm.New's caller can account for or discard everything a run
// allocated.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which variant of the Value union is live.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is golox's tagged runtime value. The zero Value is nil.
type Value struct {
	Kind    Kind
	boolean bool
	number  float64
	obj     Object
}

// Nil is the nil value. The zero Value already equals this; the name just
// reads better at call sites than Value{}.
var Nil = Value{}

// Bool constructs a boolean Value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, boolean: b}
}

// Number constructs a numeric Value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, number: n}
}

// Obj constructs a Value wrapping a heap Object.
func Obj(o Object) Value {
	return Value{Kind: KindObject, obj: o}
}

func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsObject() bool { return v.Kind == KindObject }

// AsBool returns the boolean payload. Callers must check IsBool first;
// like clox's AS_BOOL macro, this does not itself validate the tag.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the numeric payload. Callers must check IsNumber first.
func (v Value) AsNumber() float64 { return v.number }

// AsObject returns the object payload. Callers must check IsObject first.
func (v Value) AsObject() Object { return v.obj }

// IsObjType reports whether v holds an Object of the given type tag.
func (v Value) IsObjType(t ObjType) bool {
	return v.Kind == KindObject && v.obj.objType() == t
}

// IsFalsey implements golox's truthiness rule: nil and false are falsey,
// everything else — including 0 and the empty string — is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements value equality. Objects compare by reference identity
// (Go pointer/interface equality), which for interned strings is also
// content equality — see package table.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way OP_PRINT displays it: "nil", "true"/"false", a
// %g-style decimal for numbers, or the object's own rendering.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObject:
		return v.obj.String()
	default:
		return "<unknown value>"
	}
}

// formatNumber mirrors printf("%g", ...): at most six significant digits,
// trailing zeros dropped, exponent form for very large or small
// magnitudes, special-casing the non-finite values clox leaves to libc's
// own %g rendering.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(n, 'g', 6, 64)
	}
}

// TypeName names v's kind: "nil", "boolean", "number", or the Go type of
// the object it holds. The VM's type-error messages are fixed strings and
// do not include it.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		return fmt.Sprintf("%T", v.obj)
	default:
		return "value"
	}
}
