// Package ast defines the Abstract Syntax Tree types for Cb.
//
// The AST is a closed set of node kinds: declarations, statements and
// expressions are each represented by a small sum type (a Go interface
// plus an unexported marker method on every concrete node), so a
// switch over the concrete type is exhaustive and the compiler flags
// any new node kind that forgets to implement a category.
package ast

import "fmt"

// Pos is a byte offset into the source file a node was parsed from.
type Pos int32

// NoPos means "no source location is available".
const NoPos Pos = -1

// Position is embedded by every node and supplies Node.Position().
type Position struct {
	Off Pos
}

// Position returns the byte offset of the node.
func (p Position) Position() Pos { return p.Off }

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Decl is a top-level (or nested, via DeclStmt) declaration.
type Decl interface {
	Node
	isDecl()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	isStmt()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// ----------------------------------------------------------------------------
// Program
// ----------------------------------------------------------------------------

// Program is the root of a parsed Cb source file.
type Program struct {
	FileName string
	Source   string
	Decls    []Decl
}

// ----------------------------------------------------------------------------
// Type references
// ----------------------------------------------------------------------------

// TypeRef names a type as written in source: a primitive keyword, a
// struct/interface/enum name, or a typedef alias, plus any trailing
// `[N]` array dimensions and qualifier flags.
type TypeRef struct {
	Name        string // "int", "string", "Point", a typedef alias, ...
	ArrayDims   []Expr // size expression per declared dimension, outermost first
	IsUnsigned  bool
	IsPointer   bool
	IsReference bool // trailing '&', e.g. `int&`
}

// IsArray reports whether this type reference declares an array.
func (t TypeRef) IsArray() bool { return len(t.ArrayDims) > 0 }

func (t TypeRef) String() string {
	s := t.Name
	if t.IsUnsigned {
		s = "unsigned " + s
	}
	for range t.ArrayDims {
		s += "[]"
	}
	if t.IsReference {
		s += "&"
	}
	if t.IsPointer {
		s += "*"
	}
	return s
}

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

// VarDecl declares a single scalar (non-array) variable, optionally
// initialized. Used both at top level and, wrapped in DeclStmt, inside
// function bodies.
type VarDecl struct {
	Position
	Name        string
	Type        TypeRef
	Init        Expr // nil if uninitialized
	IsConst     bool
	IsStatic    bool
	IsPrivate   bool // struct-member visibility, set by the struct parser
	StructAlias string
}

func (*VarDecl) isDecl() {}

// MultipleVarDecl declares several variables of the same base type in a
// single statement: `int a = 1, b, c = 3;`.
type MultipleVarDecl struct {
	Position
	Type  TypeRef
	Names []string
	Inits []Expr // parallel to Names; nil entry means uninitialized
}

func (*MultipleVarDecl) isDecl() {}

// ArrayDecl declares an array variable: `int[3][4] name = [...];`.
type ArrayDecl struct {
	Position
	Name     string
	ElemType TypeRef // ElemType.ArrayDims holds the declared dimension-size expressions
	Literal  *ArrayLiteral
	IsConst  bool
	IsStatic bool
}

func (*ArrayDecl) isDecl() {}

// ParamDecl is a single function or method parameter.
type ParamDecl struct {
	Position
	Name       string
	Type       TypeRef
	IsUnsigned bool
}

// FuncDecl is a function (or, once registered via ImplDecl, a method)
// declaration. TypeName/QualifiedName are populated by the driver when
// the function is installed as an impl method.
type FuncDecl struct {
	Position
	Name          string
	Params        []ParamDecl
	ReturnType    TypeRef
	Body          *CompoundStmt
	TypeName      string // implementing struct name, set for impl methods
	QualifiedName string // "<Iface>_<Struct>_<method>", set for impl methods
}

func (*FuncDecl) isDecl() {}

// StructMember describes one field inside a `struct S { ... }`.
type StructMember struct {
	Position
	Name        string
	Type        TypeRef
	IsConst     bool
	IsPrivate   bool
	StructAlias string // non-empty when Type.Name names another struct
}

// StructDecl declares a struct's shape. Members preserve declaration order.
type StructDecl struct {
	Position
	Name    string
	Members []StructMember
}

func (*StructDecl) isDecl() {}

// StructTypedefDecl is `typedef struct S { ... } Alias;` — it both
// defines the struct and registers Alias as another name for it.
type StructTypedefDecl struct {
	Position
	Struct *StructDecl
	Alias  string
}

func (*StructTypedefDecl) isDecl() {}

// EnumMember is one `Name` or `Name = value` entry of an enum.
type EnumMember struct {
	Name  string
	Value Expr // nil means "previous + 1" (or 0 for the first member)
}

// EnumDecl declares an enum type.
type EnumDecl struct {
	Position
	Name    string
	Members []EnumMember
}

func (*EnumDecl) isDecl() {}

// TypedefDecl introduces a type alias, `typedef T[N] Alias;` or
// `typedef int Alias;`.
type TypedefDecl struct {
	Position
	Alias     string
	Underlying TypeRef
}

func (*TypedefDecl) isDecl() {}

// UnionTypedefDecl is `union Alias = V1 | V2 | ...;`: Members holds the
// admitted literal values (number or string literals).
type UnionTypedefDecl struct {
	Position
	Alias   string
	Members []Expr
}

func (*UnionTypedefDecl) isDecl() {}

// InterfaceMethodSig is one method signature inside an `interface { }`.
type InterfaceMethodSig struct {
	Position
	Name       string
	ReturnType TypeRef
	Params     []ParamDecl
}

// InterfaceDecl declares an interface's method set.
type InterfaceDecl struct {
	Position
	Name    string
	Methods []InterfaceMethodSig
}

func (*InterfaceDecl) isDecl() {}

// ImplDecl binds an interface's methods to a concrete struct.
type ImplDecl struct {
	Position
	InterfaceName string
	StructName    string
	Methods       []*FuncDecl
}

func (*ImplDecl) isDecl() {}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// DeclStmt wraps a Decl so it can appear inside a function body. Only
// VarDecl, MultipleVarDecl and ArrayDecl are valid here; the parser
// enforces this.
type DeclStmt struct {
	Position
	D Decl
}

func (*DeclStmt) isStmt() {}

// CompoundStmt is a `{ ... }` block; it introduces a new scope.
type CompoundStmt struct {
	Position
	Stmts []Stmt
}

func (*CompoundStmt) isStmt() {}

// AssignOp is the operator of an AssignStmt.
type AssignOp uint8

const (
	AssignSet AssignOp = iota // =
	AssignAdd                 // +=
	AssignSub                 // -=
	AssignMul                 // *=
	AssignDiv                 // /=
	AssignMod                 // %=
)

func (o AssignOp) String() string {
	switch o {
	case AssignSet:
		return "="
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	case AssignMul:
		return "*="
	case AssignDiv:
		return "/="
	case AssignMod:
		return "%="
	default:
		return "?="
	}
}

// AssignStmt assigns Value to Target, which must be an lvalue: an
// Ident, ArrayRefExpr, MemberAccessExpr or ArrowAccessExpr.
type AssignStmt struct {
	Position
	Target Expr
	Op     AssignOp
	Value  Expr
}

func (*AssignStmt) isStmt() {}

// IfStmt is `if (Cond) Then [else Else]`. Else is nil when absent.
type IfStmt struct {
	Position
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*IfStmt) isStmt() {}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	Position
	Cond Expr
	Body Stmt
}

func (*WhileStmt) isStmt() {}

// ForStmt is `for (Init; Cond; Update) Body`. Init and Update may be nil.
type ForStmt struct {
	Position
	Init   Stmt
	Cond   Expr
	Update Stmt
	Body   Stmt
}

func (*ForStmt) isStmt() {}

// ReturnStmt returns Value (nil for a void return) from the enclosing
// function.
type ReturnStmt struct {
	Position
	Value Expr
}

func (*ReturnStmt) isStmt() {}

// BreakStmt is `break;` or `break expr;`. Value is nil for the bare
// form, which always breaks.
type BreakStmt struct {
	Position
	Value Expr
}

func (*BreakStmt) isStmt() {}

// ContinueStmt is `continue;` or `continue expr;`.
type ContinueStmt struct {
	Position
	Value Expr
}

func (*ContinueStmt) isStmt() {}

// PrintKind distinguishes the five print statement forms.
type PrintKind uint8

const (
	PrintPrint      PrintKind = iota // print(args...)
	PrintPrintln                     // println(args...)
	PrintPrintf                      // printf(fmt, args...)
	PrintPrintlnf                    // printlnf(fmt, args...)
	PrintPrintlnEmpty                // println() with no arguments
)

// PrintStmt covers print/println/printf/printlnf/println().
type PrintStmt struct {
	Position
	Kind   PrintKind
	Format Expr // set for Printf/Printlnf
	Args   []Expr
}

func (*PrintStmt) isStmt() {}

// AssertStmt is `assert cond;`.
type AssertStmt struct {
	Position
	Cond Expr
}

func (*AssertStmt) isStmt() {}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// NumberLit is an integer or floating-point literal.
type NumberLit struct {
	Position
	IsFloat    bool
	IntValue   int64
	FloatValue float64
	Suffix     string // e.g. "u", "l", "" — re-tags the literal's type
}

func (*NumberLit) isExpr() {}

// StringLit is a string literal with escapes already resolved.
type StringLit struct {
	Position
	Value string
}

func (*StringLit) isExpr() {}

// Ident is a bare identifier reference (variable or parameterless
// builtin-like name resolution happens at evaluation time).
type Ident struct {
	Position
	Name string
}

func (*Ident) isExpr() {}

// BinaryOp is a binary operator.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
)

func (o BinaryOp) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// BinaryExpr is `Left Op Right`.
type BinaryExpr struct {
	Position
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) isExpr() {}

// UnaryOp is a prefix unary operator.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota // -
	OpNot                // !
	OpBitNot             // ~
)

func (o UnaryOp) String() string {
	switch o {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	case OpBitNot:
		return "~"
	default:
		return "?"
	}
}

// UnaryExpr is `Op Operand`.
type UnaryExpr struct {
	Position
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) isExpr() {}

// IncDecOp distinguishes ++ from --.
type IncDecOp uint8

const (
	IncOp IncDecOp = iota
	DecOp
)

// PreIncDecExpr is `++x` / `--x`: evaluates to the post-update value.
type PreIncDecExpr struct {
	Position
	Op     IncDecOp
	Target Expr
}

func (*PreIncDecExpr) isExpr() {}

// PostIncDecExpr is `x++` / `x--`: evaluates to the pre-update value.
type PostIncDecExpr struct {
	Position
	Op     IncDecOp
	Target Expr
}

func (*PostIncDecExpr) isExpr() {}

// ArrayRefExpr is one level of `Array[Index]`. Multi-dimensional access
// nests: `a[i][j]` parses as ArrayRefExpr{Array: ArrayRefExpr{Array:
// Ident(a), Index: i}, Index: j}; FlattenIndices walks this bottom-up
// into (root, [i, j]).
type ArrayRefExpr struct {
	Position
	Array Expr
	Index Expr
}

func (*ArrayRefExpr) isExpr() {}

// FlattenIndices peels nested ArrayRefExpr layers, returning the
// non-array-ref root expression and the indices in outer-to-inner
// declared order.
func FlattenIndices(e Expr) (root Expr, indices []Expr) {
	var rev []Expr
	cur := e
	for {
		ar, ok := cur.(*ArrayRefExpr)
		if !ok {
			break
		}
		rev = append(rev, ar.Index)
		cur = ar.Array
	}
	indices = make([]Expr, len(rev))
	for i, idx := range rev {
		indices[len(rev)-1-i] = idx
	}
	return cur, indices
}

// MemberAccessExpr is `Target.Member`. When Target is itself an
// ArrayRefExpr or when this node is wrapped by one, the combination
// covers member-array access (`x.m[i]`) without a dedicated node kind.
type MemberAccessExpr struct {
	Position
	Target Expr
	Member string
}

func (*MemberAccessExpr) isExpr() {}

// ArrowAccessExpr is `Target->Member`, equivalent to `(*Target).Member`.
type ArrowAccessExpr struct {
	Position
	Target Expr
	Member string
}

func (*ArrowAccessExpr) isExpr() {}

// CallExpr is a function or method call. Callee is an Ident for a
// plain call and a MemberAccessExpr for `receiver.method(args)`.
type CallExpr struct {
	Position
	Callee Expr
	Args   []Expr
}

func (*CallExpr) isExpr() {}

// TernaryExpr is `Cond ? Then : Else`.
type TernaryExpr struct {
	Position
	Cond, Then, Else Expr
}

func (*TernaryExpr) isExpr() {}

// CastExpr is `(Type)Operand`.
type CastExpr struct {
	Position
	Type    TypeRef
	Operand Expr
}

func (*CastExpr) isExpr() {}

// StructLiteralField is one entry of a StructLiteralExpr. Name is
// empty for positional initializers.
type StructLiteralField struct {
	Name  string
	Value Expr
}

// StructLiteralExpr is `{m1: v1, ...}` or `{v1, v2, ...}`.
type StructLiteralExpr struct {
	Position
	Fields []StructLiteralField
}

func (*StructLiteralExpr) isExpr() {}

// ArrayLiteral is a (possibly nested) array initializer.
type ArrayLiteral struct {
	Position
	Elements []Expr // each element is either a value Expr or a nested *ArrayLiteral
}

func (*ArrayLiteral) isExpr() {}

// EnumRefExpr is `Enum::Member`.
type EnumRefExpr struct {
	Position
	Enum   string
	Member string
}

func (*EnumRefExpr) isExpr() {}
