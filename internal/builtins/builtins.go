// Package builtins defines Cb's built-in callable functions and their
// argument/return signatures.
//
// Cb's print/println/printf/printlnf and assert are dedicated
// statement forms (see internal/ast.PrintStmt/AssertStmt) handled
// directly by the parser and executor; this table is for the
// functions callable like any other, currently just len.
package builtins

import "github.com/cb-lang/cb/internal/cbtype"

// BuiltinKind identifies categories of builtin functions.
type BuiltinKind uint8

const (
	BuiltinLength BuiltinKind = iota
)

// Overload is a single accepted argument shape for a builtin.
type Overload struct {
	// Matcher reports whether args is an acceptable call, and if so the
	// return tag of the call.
	Matcher func(args []cbtype.Value) (cbtype.Tag, bool)
}

// Builtin is a callable built-in function.
type Builtin struct {
	Name      string
	Kind      BuiltinKind
	Overloads []Overload
}

// Table maps builtin function names to their definitions.
var Table = make(map[string]*Builtin)

func init() {
	registerLength()
}

func register(b *Builtin) { Table[b.Name] = b }

// Lookup returns the builtin with the given name, or nil.
func Lookup(name string) *Builtin { return Table[name] }

// IsBuiltin reports whether name is a registered builtin function.
func IsBuiltin(name string) bool { return Table[name] != nil }

// ResolveOverload finds the overload matching args and returns its
// return tag.
func ResolveOverload(b *Builtin, args []cbtype.Value) (cbtype.Tag, bool) {
	for _, o := range b.Overloads {
		if tag, ok := o.Matcher(args); ok {
			return tag, true
		}
	}
	return cbtype.Unknown, false
}

// ----------------------------------------------------------------------------
// len(s) / len(arr)
// ----------------------------------------------------------------------------

func registerLength() {
	register(&Builtin{
		Name: "len",
		Kind: BuiltinLength,
		Overloads: []Overload{
			{Matcher: matchLenString},
			{Matcher: matchLenArray},
		},
	})
}

func matchLenString(args []cbtype.Value) (cbtype.Tag, bool) {
	if len(args) != 1 || args[0].Tag != cbtype.String {
		return cbtype.Unknown, false
	}
	return cbtype.Int, true
}

func matchLenArray(args []cbtype.Value) (cbtype.Tag, bool) {
	if len(args) != 1 || args[0].Arr == nil {
		return cbtype.Unknown, false
	}
	return cbtype.Int, true
}

// EvalLen computes the result of len(v): the Unicode code point count
// for a string, or the outer dimension's size for an array.
func EvalLen(v cbtype.Value) (int64, bool) {
	switch {
	case v.Tag == cbtype.String:
		return int64(len([]rune(v.Str))), true
	case v.Arr != nil && len(v.Arr.Dims) > 0:
		return int64(v.Arr.Dims[0]), true
	default:
		return 0, false
	}
}
