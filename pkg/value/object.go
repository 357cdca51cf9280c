package value

// ObjType tags the concrete variant of an Object.
type ObjType byte

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeNative
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeFunction:
		return "function"
	case ObjTypeClosure:
		return "closure"
	case ObjTypeUpvalue:
		return "upvalue"
	case ObjTypeNative:
		return "native"
	default:
		return "object"
	}
}

// Object is any heap-allocated golox value: a string, a function, a
// closure, an open or closed upvalue, or a native function. Objects are
// always addressed by pointer (*ObjString and friends implement this
// interface on pointer receivers), so Object equality is Go interface
// equality, which for matching pointer types is pointer equality.
type Object interface {
	objType() ObjType
	getNext() Object
	setNext(Object)
	String() string
}

// objHeader is embedded first in every concrete Object. It carries the
// type tag and the intrusive "next allocation" link that lets a VM walk
// (and on teardown, drop) every object it has ever allocated, the same
// role vm.objects plays in the C original.
type objHeader struct {
	typ  ObjType
	next Object
}

func (h *objHeader) objType() ObjType { return h.typ }
func (h *objHeader) getNext() Object  { return h.next }
func (h *objHeader) setNext(o Object) { h.next = o }

// TypeOf, NextOf and SetNext expose the otherwise-unexported objHeader
// bookkeeping to other packages (the VM walks and extends the
// all-objects list; it can't reach unexported methods on a type it
// didn't declare). Kept as package-level functions rather than exported
// interface methods so nothing outside this package can forge an Object
// that skips objHeader entirely.
func TypeOf(o Object) ObjType        { return o.objType() }
func NextOf(o Object) Object         { return o.getNext() }
func SetNext(o Object, next Object)  { o.setNext(next) }

// ObjString is an interned, immutable string. Two ObjStrings with equal
// Chars are always the same pointer — see package table's intern table —
// so string equality is pointer equality, never a byte-for-byte compare.
type ObjString struct {
	objHeader
	Chars string
	Hash  uint32
}

// NewObjString constructs an ObjString. It does not intern — callers
// needing interning go through (*intern.Interner).Intern (which
// (*vm.VM).Intern delegates to), the only thing allowed to decide whether
// a fresh ObjString is needed at all.
func NewObjString(chars string, hash uint32) *ObjString {
	return &ObjString{objHeader: objHeader{typ: ObjTypeString}, Chars: chars, Hash: hash}
}

func (s *ObjString) String() string { return s.Chars }

// ObjFunction is a compiled function body: its arity, how many upvalues
// its closures must capture, the bytecode itself, and its name (nil for
// the implicit top-level script function).
type ObjFunction struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString
}

// NewObjFunction constructs an empty ObjFunction ready to be filled in by
// the compiler as it compiles the function body.
func NewObjFunction() *ObjFunction {
	return &ObjFunction{objHeader: objHeader{typ: ObjTypeFunction}}
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}

// ObjUpvalue is a reference to a variable captured by a closure. While
// open, Location points directly into the owning frame's stack slot;
// the VM's closeUpvalues copies that slot's value into Closed and repoints
// Location at it, so the variable outlives the frame that declared it.
type ObjUpvalue struct {
	objHeader
	Location *Value
	Closed   Value

	// OpenNext chains this upvalue into the VM's open-upvalues list,
	// sorted by descending stack address. It is distinct from
	// objHeader.next (the generic all-objects list) — a single
	// ObjUpvalue belongs to both lists at once while open.
	OpenNext *ObjUpvalue
}

// NewObjUpvalue constructs an open upvalue pointing at slot.
func NewObjUpvalue(slot *Value) *ObjUpvalue {
	return &ObjUpvalue{objHeader: objHeader{typ: ObjTypeUpvalue}, Location: slot}
}

func (u *ObjUpvalue) String() string { return "upvalue" }

// ObjClosure pairs a compiled function with the upvalues it captured at
// the point its OP_CLOSURE was executed. Every callable golox value at
// runtime is a closure, even a function that captures nothing.
type ObjClosure struct {
	objHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

// NewObjClosure constructs a closure over fn with an empty upvalue array
// of the size fn declares; the VM fills each slot in as it executes the
// OP_CLOSURE operand pairs.
func NewObjClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		objHeader: objHeader{typ: ObjTypeClosure},
		Function:  fn,
		Upvalues:  make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }

// NativeFn is the signature every native (Go-implemented) function must
// have: golox arguments in, a single golox Value out.
type NativeFn func(args []Value) Value

// ObjNative wraps a Go function so it can be called as a golox value.
type ObjNative struct {
	objHeader
	Name string
	Fn   NativeFn
}

// NewObjNative constructs a native function value.
func NewObjNative(name string, fn NativeFn) *ObjNative {
	return &ObjNative{objHeader: objHeader{typ: ObjTypeNative}, Name: name, Fn: fn}
}

func (n *ObjNative) String() string { return "<native fn>" }
