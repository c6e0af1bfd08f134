// Package interp is the expression evaluator and statement executor
// (components C6 and C7): a single Interp struct carries every piece
// of per-run state the type manager, struct registry, scope stack,
// global function table and trace sink an evaluation needs, passed
// explicitly rather than reached through package-level globals.
package interp

import (
	"io"
	"strings"

	"github.com/cb-lang/cb/internal/array"
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/printer"
	"github.com/cb-lang/cb/internal/profile"
	"github.com/cb-lang/cb/internal/scope"
	"github.com/cb-lang/cb/internal/sourcemap"
	"github.com/cb-lang/cb/internal/structure"
	"github.com/cb-lang/cb/internal/typemgr"
)

// Interp owns every table an evaluation run reads or mutates. The
// driver builds one per run and hands it the program to execute; no
// table here is ever a package-level variable.
type Interp struct {
	Types   *typemgr.Manager
	Structs *structure.Registry
	Scope   *scope.Stack
	Tracer  *printer.Tracer
	Stdout  io.Writer

	// Profiler records a call count per invoked function/method when
	// --debug requests a profile; nil otherwise (Record is a no-op on
	// a nil receiver, so invoke never needs to check this itself).
	Profiler *profile.CallProfiler

	// Funcs holds every plain top-level function by name. Impl methods
	// live in Structs instead, keyed by (struct, method).
	Funcs map[string]*ast.FuncDecl

	// MaxCallDepth bounds recursion; exceeding it fails with
	// MaxCallDepthExceeded instead of overflowing the Go stack.
	MaxCallDepth int
	callDepth    int

	enums map[string]map[string]int64

	source   string
	lineIdx  *sourcemap.LineIndex
	fileName string

	frames []frame
}

// frame tracks the per-call state needed to execute a function body:
// its name (for the static-variable table), its declared return type
// (to package array/reference returns correctly) and the scope depth
// its own locals live at (to judge whether a `T&` return points at a
// local about to be destroyed).
type frame struct {
	funcName   string
	returnType ast.TypeRef
	scopeBase  int
}

// New creates an Interp ready to run program decls already registered
// into types/structs/funcs by the driver.
func New(types *typemgr.Manager, structs *structure.Registry, tracer *printer.Tracer, stdout io.Writer, maxCallDepth int, fileName, source string) *Interp {
	return &Interp{
		Types:        types,
		Structs:      structs,
		Scope:        scope.NewStack(),
		Tracer:       tracer,
		Stdout:       stdout,
		Funcs:        make(map[string]*ast.FuncDecl),
		MaxCallDepth: maxCallDepth,
		enums:        make(map[string]map[string]int64),
		source:       source,
		lineIdx:      sourcemap.NewLineIndex(source),
		fileName:     fileName,
	}
}

// RegisterFunc installs a plain top-level function.
func (in *Interp) RegisterFunc(decl *ast.FuncDecl) { in.Funcs[decl.Name] = decl }

// RegisterEnum computes each member's auto-incremented value and
// installs decl's name into the type manager, per §3.5/§6.3.
func (in *Interp) RegisterEnum(decl *ast.EnumDecl) error {
	members := make(map[string]int64, len(decl.Members))
	next := int64(0)
	for _, m := range decl.Members {
		if m.Value != nil {
			v, err := in.EvalExpr(m.Value)
			if err != nil {
				return err
			}
			next = v.IntVal
		}
		members[m.Name] = next
		next++
	}
	in.enums[decl.Name] = members
	in.Types.RegisterEnum(decl.Name)
	return nil
}

func (in *Interp) enumValue(enumName, member string) (int64, bool) {
	mm, ok := in.enums[enumName]
	if !ok {
		return 0, false
	}
	v, ok := mm[member]
	return v, ok
}

func (in *Interp) lineAt(pos ast.Pos) int {
	if pos < 0 {
		return 0
	}
	line, _ := in.lineIdx.ByteOffsetToLineColumn(int(pos))
	return line + 1
}

func (in *Interp) currentFrame() *frame {
	if len(in.frames) == 0 {
		return &frame{funcName: "<global>"}
	}
	return &in.frames[len(in.frames)-1]
}

func (in *Interp) currentFuncName() string { return in.currentFrame().funcName }

// ----------------------------------------------------------------------------
// Type resolution
// ----------------------------------------------------------------------------

// resolvedType is a TypeRef chased through the typedef table to its
// canonical tag, dimension sizes (already evaluated) and the extra
// name that tag needs (struct/interface/enum/union alias).
type resolvedType struct {
	Tag           cbtype.Tag
	Unsigned      bool
	Dims          []int
	StructName    string
	InterfaceName string
	EnumName      string
	UnionAlias    string
	IsPointer     bool
	IsReference   bool
}

func (in *Interp) resolveType(pos ast.Pos, ref ast.TypeRef) (resolvedType, error) {
	name := ref.Name
	dimExprs := ref.ArrayDims
	unsigned := ref.IsUnsigned
	if in.Types.IsTypedefDefined(name) {
		canon, err := in.Types.ResolveTypedef(pos, name)
		if err != nil {
			return resolvedType{}, err
		}
		name = canon.Name
		if len(canon.ArrayDims) > 0 {
			dimExprs = append(append([]ast.Expr(nil), canon.ArrayDims...), dimExprs...)
		}
		if canon.IsUnsigned {
			unsigned = true
		}
	}
	tag := in.Types.StringToTag(name)
	rt := resolvedType{Tag: tag, Unsigned: unsigned, IsPointer: ref.IsPointer, IsReference: ref.IsReference}
	switch tag {
	case cbtype.Struct:
		rt.StructName = name
	case cbtype.Interface:
		rt.InterfaceName = name
	case cbtype.Enum:
		rt.EnumName = name
	case cbtype.Union:
		rt.UnionAlias = name
	}
	if len(dimExprs) > 0 {
		dims := make([]int, len(dimExprs))
		for i, de := range dimExprs {
			v, err := in.EvalExpr(de)
			if err != nil {
				return resolvedType{}, err
			}
			dims[i] = int(v.IntVal)
		}
		rt.Dims = dims
	}
	return rt, nil
}

// ----------------------------------------------------------------------------
// Zero-value construction
// ----------------------------------------------------------------------------

func (in *Interp) zeroArray(rt resolvedType) *cbtype.ArrayValue {
	total := 1
	for _, d := range rt.Dims {
		total *= d
	}
	flat := make([]cbtype.Value, total)
	for i := range flat {
		flat[i] = cbtype.Zero(rt.Tag, rt.Unsigned)
	}
	return &cbtype.ArrayValue{
		ElemTag: rt.Tag, ElemUnsigned: rt.Unsigned,
		Dims: append([]int(nil), rt.Dims...), Flat: flat,
	}
}

// zeroStruct builds a fresh struct instance of structName with every
// member defaulted, plus the scope.Variable tree mirroring it, per
// §3.3's "child variable records" invariant.
func (in *Interp) zeroStruct(pos ast.Pos, structName string) (*cbtype.StructValue, map[string]*scope.Variable, error) {
	info, ok := in.Structs.Struct(structName)
	if !ok {
		return nil, nil, cberr.New(diagnostic.CodeUnknownStructMember, pos, "unknown struct type %q", structName)
	}
	fields := make([]string, len(info.Members))
	for i, m := range info.Members {
		fields[i] = m.Name
	}
	sv := cbtype.NewStructValue(structName, fields)
	children := make(map[string]*scope.Variable, len(info.Members))
	for _, m := range info.Members {
		mv, mchildren, err := in.zeroMember(m.Position.Off, m.Type, m.StructAlias)
		if err != nil {
			return nil, nil, err
		}
		sv.Members[m.Name] = &mv
		cv := scope.NewVariable(m.Name, mv, m.IsConst, m.Type.IsUnsigned)
		cv.IsPrivate = m.IsPrivate
		cv.IsPointer = m.Type.IsPointer
		cv.IsReference = m.Type.IsReference
		cv.Children = mchildren
		if mv.StructVal != nil {
			cv.StructTypeName = mv.StructVal.TypeName
		}
		children[m.Name] = cv
	}
	return sv, children, nil
}

func (in *Interp) zeroMember(pos ast.Pos, t ast.TypeRef, structAlias string) (cbtype.Value, map[string]*scope.Variable, error) {
	if t.IsPointer {
		return cbtype.Null(), nil, nil
	}
	rt, err := in.resolveType(pos, t)
	if err != nil {
		return cbtype.Value{}, nil, err
	}
	if len(rt.Dims) > 0 {
		return cbtype.Value{Tag: rt.Tag, Arr: in.zeroArray(rt)}, nil, nil
	}
	if rt.Tag == cbtype.Struct {
		name := structAlias
		if name == "" {
			name = rt.StructName
		}
		sv, children, err := in.zeroStruct(pos, name)
		if err != nil {
			return cbtype.Value{}, nil, err
		}
		return cbtype.Value{Tag: cbtype.Struct, StructVal: sv}, children, nil
	}
	return cbtype.Zero(rt.Tag, rt.Unsigned), nil, nil
}

// ----------------------------------------------------------------------------
// Struct member mirror sync (§3.3)
// ----------------------------------------------------------------------------

// valueOf returns v's up-to-date value: for a struct variable this
// rewrites its StructVal.Members from the canonical Children tree
// first, since Children (not StructVal) is where direct-access writes
// land (see internal/scope's package doc).
func (in *Interp) valueOf(v *scope.Variable) cbtype.Value {
	syncStructValueFromChildren(v)
	return v.Value
}

func syncStructValueFromChildren(v *scope.Variable) {
	if v.Value.StructVal == nil || v.Children == nil {
		return
	}
	for name, child := range v.Children {
		syncStructValueFromChildren(child)
		val := child.Value
		v.Value.StructVal.Members[name] = &val
	}
}

// rebuildChildrenFromStructValue rebuilds a live Children tree from a
// struct Value that arrived from elsewhere (assignment, literal,
// function return, parameter binding), so dotted-path access against
// the newly-bound variable stays possible.
func (in *Interp) rebuildChildrenFromStructValue(sv *cbtype.StructValue) map[string]*scope.Variable {
	info, _ := in.Structs.Struct(sv.TypeName)
	children := make(map[string]*scope.Variable, len(sv.Fields))
	for _, f := range sv.Fields {
		mv := *sv.Members[f]
		cv := scope.NewVariable(f, mv, false, mv.IsUnsigned)
		cv.IsAssigned = true
		if info != nil {
			if m := info.MemberByName(f); m != nil {
				cv.IsPrivate = m.IsPrivate
				cv.IsPointer = m.Type.IsPointer
				cv.IsReference = m.Type.IsReference
				cv.IsConst = m.IsConst
			}
		}
		if mv.StructVal != nil {
			cv.StructTypeName = mv.StructVal.TypeName
			cv.Children = in.rebuildChildrenFromStructValue(mv.StructVal)
		}
		children[f] = cv
	}
	return children
}

// ----------------------------------------------------------------------------
// Small shared value helpers
// ----------------------------------------------------------------------------

func boolValue(b bool) cbtype.Value {
	v := int64(0)
	if b {
		v = 1
	}
	return cbtype.Value{Tag: cbtype.Bool, IntVal: v}
}

func truthy(v cbtype.Value) bool {
	switch {
	case v.Tag.IsFloat():
		return v.FloatVal != 0
	case v.Tag == cbtype.String:
		return v.Str != ""
	default:
		return v.IntVal != 0
	}
}

func floatOf(v cbtype.Value) float64 {
	if v.Tag.IsFloat() {
		return v.FloatVal
	}
	return float64(v.IntVal)
}

func renderValue(v cbtype.Value) string {
	switch {
	case v.IsNull:
		return "null"
	case v.Tag == cbtype.String:
		return v.Str
	case v.Tag == cbtype.Char:
		return string(rune(v.IntVal))
	case v.Tag.IsFloat():
		return formatFloat(v.FloatVal)
	case v.Tag == cbtype.Bool:
		if v.IntVal != 0 {
			return "true"
		}
		return "false"
	case v.Arr != nil:
		return renderArray(v.Arr)
	case v.StructVal != nil:
		return renderStruct(v.StructVal)
	default:
		return formatInt(v.IntVal)
	}
}

func renderArray(a *cbtype.ArrayValue) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Flat {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderValue(e))
	}
	b.WriteByte(']')
	return b.String()
}

func renderStruct(s *cbtype.StructValue) string {
	var b strings.Builder
	b.WriteString(s.TypeName)
	b.WriteString("{")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(renderValue(*s.Members[f]))
	}
	b.WriteString("}")
	return b.String()
}

// compoundOp maps a `+=`-family assignment operator to the binary
// operator it implicitly applies.
func compoundOp(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.AssignAdd:
		return ast.OpAdd
	case ast.AssignSub:
		return ast.OpSub
	case ast.AssignMul:
		return ast.OpMul
	case ast.AssignDiv:
		return ast.OpDiv
	case ast.AssignMod:
		return ast.OpMod
	default:
		return ast.OpAdd
	}
}

// ----------------------------------------------------------------------------
// Assignment
// ----------------------------------------------------------------------------

// assignTo stores newVal into v, routing through the array/struct
// deep-copy rules of §4.4/§4.5, the union-constraint re-check of
// §4.3, and scope.Assign's const/range enforcement for everything
// else.
func (in *Interp) assignTo(v *scope.Variable, newVal cbtype.Value, pos ast.Pos) error {
	if v.UnionAlias != "" && !newVal.IsNull {
		if !in.Types.IsValueAllowedForUnion(v.UnionAlias, newVal) {
			return cberr.New(diagnostic.CodeUnionConstraintViolation, pos,
				"value not admitted by union %q", v.UnionAlias)
		}
	}
	if v.Value.Arr != nil && newVal.Arr != nil {
		if err := array.CopyInto(v.Value.Arr, newVal.Arr, pos); err != nil {
			return err
		}
		v.IsAssigned = true
		return nil
	}
	if v.Value.StructVal != nil && newVal.StructVal != nil {
		if v.IsConst && v.IsAssigned {
			return cberr.New(diagnostic.CodeConstReassign, pos, "cannot reassign const variable %q", v.Name)
		}
		cloned := newVal.StructVal.Clone()
		v.Value = cbtype.Value{Tag: cbtype.Struct, StructVal: cloned}
		v.Children = in.rebuildChildrenFromStructValue(cloned)
		v.StructTypeName = cloned.TypeName
		v.IsAssigned = true
		return nil
	}
	if err := scope.Assign(v, newVal, pos); err != nil {
		return err
	}
	if newVal.Tag.IsInteger() && v.Value.IsUnsigned {
		if _, did := cbtype.ClampUnsignedNegative(newVal.IntVal); did {
			in.Tracer.Warn("negative value assigned to unsigned variable %q clamped to 0", v.Name)
		}
	}
	return nil
}

// ----------------------------------------------------------------------------
// Reference-return validity (§9 open question)
// ----------------------------------------------------------------------------

// checkReferenceReturnable enforces that a `T&` return cannot hand
// back a reference to a local about to be destroyed when the current
// call's scope pops: the variable must already be a forwarded
// reference, be self, or live in a scope shallower than the call's
// own base (including global).
func (in *Interp) checkReferenceReturnable(name string, pos ast.Pos) error {
	v, depth, ok := in.Scope.FindWithDepth(name)
	if !ok {
		return cberr.New(diagnostic.CodeUndefinedVariable, pos, "undefined variable %q", name)
	}
	if v.IsReference || name == "self" || depth == 0 {
		return nil
	}
	base := 1
	if len(in.frames) > 0 {
		base = in.frames[len(in.frames)-1].scopeBase
	}
	if depth < base {
		return nil
	}
	return cberr.New(diagnostic.CodeTypeMismatch, pos,
		"cannot return a reference to local variable %q: it is destroyed when the function returns", name)
}
