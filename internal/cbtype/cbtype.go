// Package cbtype is the value and type model of the Cb interpreter
// (component C1): the closed set of type tags, the numeric range
// tables enforced on every store, and the Value representation shared
// by every other package — scopes, arrays, structs and the evaluator
// all read and write cbtype.Value, never a package-private shape of
// their own.
//
// Arrays carry no tag of their own: per the type manager's own
// resolution rules, `int[3]` is still tag Int, just with a non-nil
// Array payload. TYPE_ARRAY_BASE-style tag arithmetic has no
// equivalent here on purpose.
package cbtype

import "fmt"

// Tag is the closed set of Cb type tags.
type Tag uint8

const (
	Void Tag = iota
	Tiny
	Short
	Int
	Long
	Bool
	Char
	String
	Float
	Double
	Quad
	Struct
	Union
	Interface
	Enum
	Unknown
)

var tagNames = map[Tag]string{
	Void: "void", Tiny: "tiny", Short: "short", Int: "int", Long: "long",
	Bool: "bool", Char: "char", String: "string", Float: "float",
	Double: "double", Quad: "quad", Struct: "struct", Union: "union",
	Interface: "interface", Enum: "enum", Unknown: "unknown",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// IsInteger reports whether values of this tag participate in
// arithmetic and range checking as integers.
func (t Tag) IsInteger() bool {
	switch t {
	case Tiny, Short, Int, Long, Bool, Char, Enum:
		return true
	}
	return false
}

// IsFloat reports whether t is one of the floating-point tags.
func (t Tag) IsFloat() bool {
	return t == Float || t == Double || t == Quad
}

// intRange is the inclusive [Lo, Hi] bound for a signed integer tag.
type intRange struct{ Lo, Hi int64 }

var signedRanges = map[Tag]intRange{
	Tiny:  {-128, 127},
	Short: {-32768, 32767},
	Int:   {-1 << 31, 1<<31 - 1},
	Long:  {-1 << 63, 1<<63 - 1},
}

var unsignedRanges = map[Tag]intRange{
	Tiny:  {0, 255},
	Short: {0, 65535},
	Int:   {0, 1<<32 - 1},
	Long:  {0, 1<<63 - 1}, // 2⁶⁴−1 does not fit int64; RangeCheck skips the upper check for Long.
}

// charRange covers a single Unicode code point, the value char holds.
var charRange = intRange{0, 0x10FFFF}

// RangeError reports an out-of-range integer store.
type RangeError struct {
	Tag        Tag
	Value      int64
	Unsigned   bool
}

func (e *RangeError) Error() string {
	kind := e.Tag.String()
	if e.Unsigned {
		kind = "unsigned " + kind
	}
	return fmt.Sprintf("TypeRangeError: %d out of range for %s", e.Value, kind)
}

// RangeCheck enforces the numeric range table of §3.1. Bool is
// normalized rather than range-checked: any nonzero value is valid
// and is squashed to 1 at the call site that needs the normalized
// form (NormalizeBool). Float-family tags are never range-checked
// here since they have no fixed-width storage range to violate.
func RangeCheck(tag Tag, value int64, unsigned bool) error {
	if tag == Bool {
		return nil
	}
	if tag == Char {
		if value < charRange.Lo || value > charRange.Hi {
			return &RangeError{Tag: tag, Value: value, Unsigned: unsigned}
		}
		return nil
	}
	if unsigned {
		r, ok := unsignedRanges[tag]
		if !ok {
			return nil
		}
		if value < 0 {
			return &RangeError{Tag: tag, Value: value, Unsigned: true}
		}
		if tag != Long && value > r.Hi {
			return &RangeError{Tag: tag, Value: value, Unsigned: true}
		}
		return nil
	}
	r, ok := signedRanges[tag]
	if !ok {
		return nil
	}
	if value < r.Lo || value > r.Hi {
		return &RangeError{Tag: tag, Value: value}
	}
	return nil
}

// ClampUnsignedNegative implements the negative-to-unsigned assignment
// rule: the stored value becomes 0 and the caller is expected to
// surface a warning (not a fatal error) rather than call RangeCheck.
func ClampUnsignedNegative(value int64) (clamped int64, clampedOccurred bool) {
	if value < 0 {
		return 0, true
	}
	return value, false
}

// NormalizeBool squashes any integer to Cb's bool domain {0, 1}.
func NormalizeBool(v int64) int64 {
	if v != 0 {
		return 1
	}
	return 0
}

// CoerceError reports an implicit conversion the language does not allow.
type CoerceError struct {
	From, To Tag
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("TypeMismatch: cannot convert %s to %s", e.From, e.To)
}

// PromoteNumeric returns the tag arithmetic between a and b is carried
// out in: the widest of the two, with float dominating integer and a
// wider width dominating a narrower one of the same family.
func PromoteNumeric(a, b Tag) Tag {
	rank := func(t Tag) int {
		switch t {
		case Bool:
			return 0
		case Tiny, Char:
			return 1
		case Short:
			return 2
		case Int, Enum:
			return 3
		case Long:
			return 4
		case Float:
			return 5
		case Double:
			return 6
		case Quad:
			return 7
		default:
			return -1
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// Coerce converts an integer-family value to tag, enforcing the
// no-implicit-string-conversion rule. Range checking is the caller's
// responsibility (coercion and storage are separate steps per §4.1).
func Coerce(from Tag, to Tag) error {
	if from == String || to == String {
		if from != to {
			return &CoerceError{From: from, To: to}
		}
		return nil
	}
	if (from.IsInteger() || from.IsFloat()) && (to.IsInteger() || to.IsFloat()) {
		return nil
	}
	if from != to {
		return &CoerceError{From: from, To: to}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Value
// ----------------------------------------------------------------------------

// Value is the tagged runtime value every other package operates on.
// Exactly one payload group is meaningful for a given Tag: IntVal for
// integer-family tags, FloatVal for float-family tags, Str for
// String, Arr for an array-shaped value (any base Tag), StructVal for
// Struct, Iface for an interface view. IsNull marks the null value,
// independent of Tag.
type Value struct {
	Tag        Tag
	IntVal     int64
	FloatVal   float64
	Str        string
	IsUnsigned bool
	EnumName   string // set when Tag == Enum

	Arr       *ArrayValue
	StructVal *StructValue
	Iface     *InterfaceView

	IsNull bool
}

// Zero returns the zero value for tag, per the "read unassigned
// variable yields zero" rule of §4.6.
func Zero(tag Tag, unsigned bool) Value {
	switch {
	case tag.IsFloat():
		return Value{Tag: tag}
	case tag == String:
		return Value{Tag: tag}
	default:
		return Value{Tag: tag, IsUnsigned: unsigned}
	}
}

// Null returns the null value.
func Null() Value { return Value{IsNull: true} }

// ArrayValue is a 1-D or N-D array's storage: row-major flat order
// with the last declared dimension varying fastest, per §4.4.
type ArrayValue struct {
	ElemTag      Tag
	ElemUnsigned bool
	Dims         []int // outermost dimension first; len(Dims) == 1 for a flat array
	Flat         []Value
	IsConst      bool
}

// StructValue is an ordered struct instance: Fields preserves
// declaration order, Members holds the mutable child slots.
type StructValue struct {
	TypeName string
	Fields   []string
	Members  map[string]*Value
}

// NewStructValue creates an empty struct instance with the given
// field order, each field defaulted to Zero of its own tag by the
// caller (the struct registry knows each field's declared type; this
// constructor only fixes the shape).
func NewStructValue(typeName string, fields []string) *StructValue {
	return &StructValue{
		TypeName: typeName,
		Fields:   append([]string(nil), fields...),
		Members:  make(map[string]*Value, len(fields)),
	}
}

// Clone deep-copies a struct value, including nested struct and array
// members, per the "struct assignment deep-copies" rule of §4.5.
func (s *StructValue) Clone() *StructValue {
	out := NewStructValue(s.TypeName, s.Fields)
	for _, f := range s.Fields {
		v := s.Members[f].Clone()
		out.Members[f] = &v
	}
	return out
}

// Clone deep-copies v, recursing into array and struct payloads.
func (v Value) Clone() Value {
	out := v
	if v.Arr != nil {
		out.Arr = v.Arr.Clone()
	}
	if v.StructVal != nil {
		out.StructVal = v.StructVal.Clone()
	}
	return out
}

// Clone deep-copies the flat storage of an array value.
func (a *ArrayValue) Clone() *ArrayValue {
	out := &ArrayValue{
		ElemTag:      a.ElemTag,
		ElemUnsigned: a.ElemUnsigned,
		Dims:         append([]int(nil), a.Dims...),
		Flat:         make([]Value, len(a.Flat)),
		IsConst:      a.IsConst,
	}
	for i, e := range a.Flat {
		out.Flat[i] = e.Clone()
	}
	return out
}

// InterfaceView is a reference/borrow to a struct value plus the
// interface name it is being viewed through, per §3.2.
type InterfaceView struct {
	InterfaceName string
	StructName    string
	Target        *StructValue
}
