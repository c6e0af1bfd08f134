package interp

import (
	"strings"

	"github.com/cb-lang/cb/internal/array"
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/scope"
)

// EvalExpr evaluates e in the current scope, per §4.6's per-node-kind
// contract. StructLiteralExpr and bare ArrayLiteral nodes have no type
// of their own and cannot be evaluated outside the declaration/
// assignment/argument-binding site that knows their target type; a
// bare encounter here is ambiguous and fails.
func (in *Interp) EvalExpr(e ast.Expr) (cbtype.Value, error) {
	switch n := e.(type) {
	case *ast.NumberLit:
		return in.evalNumberLit(n), nil
	case *ast.StringLit:
		return cbtype.Value{Tag: cbtype.String, Str: n.Value}, nil
	case *ast.Ident:
		return in.evalIdent(n)
	case *ast.BinaryExpr:
		return in.evalBinary(n)
	case *ast.UnaryExpr:
		return in.evalUnary(n)
	case *ast.PreIncDecExpr:
		return in.evalPreIncDec(n)
	case *ast.PostIncDecExpr:
		return in.evalPostIncDec(n)
	case *ast.ArrayRefExpr:
		return in.evalArrayRef(n)
	case *ast.MemberAccessExpr:
		return in.evalMemberAccess(n)
	case *ast.ArrowAccessExpr:
		return in.evalMemberAccess(&ast.MemberAccessExpr{Position: n.Position, Target: n.Target, Member: n.Member})
	case *ast.CallExpr:
		return in.evalCall(n)
	case *ast.TernaryExpr:
		return in.evalTernary(n)
	case *ast.CastExpr:
		return in.evalCast(n)
	case *ast.EnumRefExpr:
		return in.evalEnumRef(n)
	case *ast.StructLiteralExpr:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off,
			"ambiguous struct literal: no target type in context")
	case *ast.ArrayLiteral:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off,
			"ambiguous array literal: no target type in context")
	default:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, ast.NoPos, "cannot evaluate expression of type %T", e)
	}
}

func (in *Interp) evalNumberLit(n *ast.NumberLit) cbtype.Value {
	suffix := strings.ToLower(n.Suffix)
	if suffix == "bool" {
		return cbtype.Value{Tag: cbtype.Bool, IntVal: n.IntValue}
	}
	if n.IsFloat || strings.Contains(suffix, "f") || (strings.Contains(suffix, "l") && n.IsFloat) {
		tag := cbtype.Double
		if strings.Contains(suffix, "f") {
			tag = cbtype.Float
		}
		return cbtype.Value{Tag: tag, FloatVal: n.FloatValue}
	}
	tag := cbtype.Int
	unsigned := strings.Contains(suffix, "u")
	if strings.Contains(suffix, "l") {
		tag = cbtype.Long
	}
	return cbtype.Value{Tag: tag, IntVal: n.IntValue, IsUnsigned: unsigned}
}

func (in *Interp) evalIdent(n *ast.Ident) (cbtype.Value, error) {
	v, ok := in.Scope.Find(n.Name)
	if !ok {
		return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedVariable, n.Position.Off, "undefined variable %q", n.Name)
	}
	if !v.IsAssigned && !v.IsStruct && !v.IsArray {
		in.Tracer.Warn("read of unassigned variable %q yields zero", n.Name)
	}
	return in.valueOf(v), nil
}

// ----------------------------------------------------------------------------
// lvalue resolution
// ----------------------------------------------------------------------------

// resolveLValue resolves e to the *scope.Variable it names, following
// member-access paths through Children and enforcing private-member
// access along the way. It does not handle array-element targets,
// which carry their own indices and are resolved by the caller.
func (in *Interp) resolveLValue(e ast.Expr) (*scope.Variable, error) {
	switch n := e.(type) {
	case *ast.Ident:
		v, ok := in.Scope.Find(n.Name)
		if !ok {
			return nil, cberr.New(diagnostic.CodeUndefinedVariable, n.Position.Off, "undefined variable %q", n.Name)
		}
		return v, nil
	case *ast.MemberAccessExpr:
		return in.resolveMember(n.Target, n.Member, n.Position.Off)
	case *ast.ArrowAccessExpr:
		return in.resolveMember(n.Target, n.Member, n.Position.Off)
	default:
		return nil, cberr.New(diagnostic.CodeTypeMismatch, e.Position(), "not an assignable location")
	}
}

func (in *Interp) resolveMember(target ast.Expr, member string, pos ast.Pos) (*scope.Variable, error) {
	base, err := in.resolveLValue(target)
	if err != nil {
		return nil, err
	}
	if base.Children == nil {
		return nil, cberr.New(diagnostic.CodeUnknownStructMember, pos, "%q has no member %q", base.Name, member)
	}
	child, ok := base.Children[member]
	if !ok {
		return nil, cberr.New(diagnostic.CodeUnknownStructMember, pos, "%q has no member %q", base.Name, member)
	}
	selfType := in.selfStructType()
	accessedViaSelf := isSelfRooted(target)
	if err := scope.CheckPrivateAccess(child, base.StructTypeName, accessedViaSelf, selfType); err != nil {
		return nil, err
	}
	return child, nil
}

func isSelfRooted(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name == "self"
	case *ast.MemberAccessExpr:
		return isSelfRooted(n.Target)
	case *ast.ArrowAccessExpr:
		return isSelfRooted(n.Target)
	default:
		return false
	}
}

func (in *Interp) selfStructType() string {
	self, ok := in.Scope.Find("self")
	if !ok {
		return ""
	}
	return self.StructTypeName
}

func (in *Interp) evalMemberAccess(n *ast.MemberAccessExpr) (cbtype.Value, error) {
	v, err := in.resolveMember(n.Target, n.Member, n.Position.Off)
	if err != nil {
		return cbtype.Value{}, err
	}
	return in.valueOf(v), nil
}

// ----------------------------------------------------------------------------
// Array reference / string indexing
// ----------------------------------------------------------------------------

func (in *Interp) evalArrayRef(n *ast.ArrayRefExpr) (cbtype.Value, error) {
	root, idxExprs := ast.FlattenIndices(n)
	baseVal, isStringIndex, stringVar, err := in.evalIndexBase(root)
	if err != nil {
		return cbtype.Value{}, err
	}
	indices := make([]int, len(idxExprs))
	for i, ie := range idxExprs {
		iv, err := in.EvalExpr(ie)
		if err != nil {
			return cbtype.Value{}, err
		}
		indices[i] = int(iv.IntVal)
	}
	if isStringIndex {
		return evalStringIndexValue(stringVar, indices[0], n.Position.Off)
	}
	if baseVal.Arr == nil {
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off, "cannot index a non-array value")
	}
	if len(indices) < len(baseVal.Arr.Dims) {
		sub, err := array.Slice(baseVal.Arr, indices, n.Position.Off)
		if err != nil {
			return cbtype.Value{}, err
		}
		return cbtype.Value{Tag: baseVal.Arr.ElemTag, Arr: sub}, nil
	}
	return array.Get(baseVal.Arr, indices, n.Position.Off)
}

// evalIndexBase evaluates the root of an index chain, reporting
// whether it is a string (indexed by Unicode code point, §3.2) rather
// than an array.
func (in *Interp) evalIndexBase(root ast.Expr) (cbtype.Value, bool, *scope.Variable, error) {
	if id, ok := root.(*ast.Ident); ok {
		v, found := in.Scope.Find(id.Name)
		if found && v.Value.Tag == cbtype.String {
			return cbtype.Value{}, true, v, nil
		}
	}
	v, err := in.EvalExpr(root)
	if err != nil {
		return cbtype.Value{}, false, nil, err
	}
	if v.Tag == cbtype.String {
		return v, true, nil, nil
	}
	return v, false, nil, nil
}

func evalStringIndexValue(v *scope.Variable, idx int, pos ast.Pos) (cbtype.Value, error) {
	var s string
	if v != nil {
		s = v.Value.Str
	}
	runes := []rune(s)
	if idx < 0 || idx >= len(runes) {
		return cbtype.Value{}, cberr.New(diagnostic.CodeStringOutOfBounds, pos, "index %d out of bounds for string of length %d", idx, len(runes))
	}
	return cbtype.Value{Tag: cbtype.Char, IntVal: int64(runes[idx])}, nil
}

// ----------------------------------------------------------------------------
// Binary / unary / inc-dec
// ----------------------------------------------------------------------------

func (in *Interp) evalBinary(n *ast.BinaryExpr) (cbtype.Value, error) {
	if n.Op == ast.OpAnd {
		l, err := in.EvalExpr(n.Left)
		if err != nil {
			return cbtype.Value{}, err
		}
		if !truthy(l) {
			return boolValue(false), nil
		}
		r, err := in.EvalExpr(n.Right)
		if err != nil {
			return cbtype.Value{}, err
		}
		return boolValue(truthy(r)), nil
	}
	if n.Op == ast.OpOr {
		l, err := in.EvalExpr(n.Left)
		if err != nil {
			return cbtype.Value{}, err
		}
		if truthy(l) {
			return boolValue(true), nil
		}
		r, err := in.EvalExpr(n.Right)
		if err != nil {
			return cbtype.Value{}, err
		}
		return boolValue(truthy(r)), nil
	}
	l, err := in.EvalExpr(n.Left)
	if err != nil {
		return cbtype.Value{}, err
	}
	r, err := in.EvalExpr(n.Right)
	if err != nil {
		return cbtype.Value{}, err
	}
	return applyBinary(n.Op, l, r, n.Position.Off)
}

func applyBinary(op ast.BinaryOp, l, r cbtype.Value, pos ast.Pos) (cbtype.Value, error) {
	if op == ast.OpAdd && (l.Tag == cbtype.String || r.Tag == cbtype.String) {
		if l.Tag != cbtype.String || r.Tag != cbtype.String {
			return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, pos, "cannot add %s and %s", l.Tag, r.Tag)
		}
		return cbtype.Value{Tag: cbtype.String, Str: l.Str + r.Str}, nil
	}
	switch op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return compareValues(op, l, r, pos)
	}
	switch op {
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr, ast.OpMod:
		if l.Tag.IsFloat() || r.Tag.IsFloat() {
			return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, pos, "operator %s requires integer operands", op)
		}
	}
	promoted := cbtype.PromoteNumeric(l.Tag, r.Tag)
	unsigned := l.IsUnsigned || r.IsUnsigned
	if promoted.IsFloat() {
		a, b := floatOf(l), floatOf(r)
		var f float64
		switch op {
		case ast.OpAdd:
			f = a + b
		case ast.OpSub:
			f = a - b
		case ast.OpMul:
			f = a * b
		case ast.OpDiv:
			if b == 0 {
				return cbtype.Value{}, cberr.New(diagnostic.CodeDivisionByZero, pos, "division by zero")
			}
			f = a / b
		default:
			return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, pos, "unsupported float operator %s", op)
		}
		return cbtype.Value{Tag: promoted, FloatVal: f}, nil
	}
	a, b := l.IntVal, r.IntVal
	var out int64
	switch op {
	case ast.OpAdd:
		out = a + b
	case ast.OpSub:
		out = a - b
	case ast.OpMul:
		out = a * b
	case ast.OpDiv:
		if b == 0 {
			return cbtype.Value{}, cberr.New(diagnostic.CodeDivisionByZero, pos, "division by zero")
		}
		out = a / b
	case ast.OpMod:
		if b == 0 {
			return cbtype.Value{}, cberr.New(diagnostic.CodeDivisionByZero, pos, "modulo by zero")
		}
		out = a % b
	case ast.OpBitAnd:
		out = a & b
	case ast.OpBitOr:
		out = a | b
	case ast.OpBitXor:
		out = a ^ b
	case ast.OpShl:
		out = a << uint64(b)
	case ast.OpShr:
		out = a >> uint64(b)
	default:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, pos, "unsupported integer operator %s", op)
	}
	return cbtype.Value{Tag: promoted, IntVal: out, IsUnsigned: unsigned}, nil
}

func compareValues(op ast.BinaryOp, l, r cbtype.Value, pos ast.Pos) (cbtype.Value, error) {
	var cmp int
	switch {
	case l.Tag == cbtype.String || r.Tag == cbtype.String:
		if l.Tag != cbtype.String || r.Tag != cbtype.String {
			return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, pos, "cannot compare %s and %s", l.Tag, r.Tag)
		}
		cmp = strings.Compare(l.Str, r.Str)
	case l.Tag.IsFloat() || r.Tag.IsFloat():
		a, b := floatOf(l), floatOf(r)
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	default:
		a, b := l.IntVal, r.IntVal
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	}
	var result bool
	switch op {
	case ast.OpEq:
		result = cmp == 0
	case ast.OpNe:
		result = cmp != 0
	case ast.OpLt:
		result = cmp < 0
	case ast.OpLe:
		result = cmp <= 0
	case ast.OpGt:
		result = cmp > 0
	case ast.OpGe:
		result = cmp >= 0
	}
	return boolValue(result), nil
}

func (in *Interp) evalUnary(n *ast.UnaryExpr) (cbtype.Value, error) {
	v, err := in.EvalExpr(n.Operand)
	if err != nil {
		return cbtype.Value{}, err
	}
	switch n.Op {
	case ast.OpNeg:
		if v.Tag.IsFloat() {
			return cbtype.Value{Tag: v.Tag, FloatVal: -v.FloatVal}, nil
		}
		return cbtype.Value{Tag: v.Tag, IntVal: -v.IntVal}, nil
	case ast.OpNot:
		return boolValue(!truthy(v)), nil
	case ast.OpBitNot:
		return cbtype.Value{Tag: v.Tag, IntVal: ^v.IntVal}, nil
	default:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off, "unsupported unary operator")
	}
}

func (in *Interp) evalPreIncDec(n *ast.PreIncDecExpr) (cbtype.Value, error) {
	v, err := in.applyIncDec(n.Target, n.Op, n.Position.Off)
	if err != nil {
		return cbtype.Value{}, err
	}
	return v, nil
}

func (in *Interp) evalPostIncDec(n *ast.PostIncDecExpr) (cbtype.Value, error) {
	old, err := in.EvalExpr(n.Target)
	if err != nil {
		return cbtype.Value{}, err
	}
	if _, err := in.applyIncDec(n.Target, n.Op, n.Position.Off); err != nil {
		return cbtype.Value{}, err
	}
	return old, nil
}

// applyIncDec evaluates target's current value, adjusts by one and
// stores it back, returning the new value.
func (in *Interp) applyIncDec(target ast.Expr, op ast.IncDecOp, pos ast.Pos) (cbtype.Value, error) {
	cur, err := in.EvalExpr(target)
	if err != nil {
		return cbtype.Value{}, err
	}
	delta := int64(1)
	if op == ast.DecOp {
		delta = -1
	}
	var next cbtype.Value
	if cur.Tag.IsFloat() {
		next = cbtype.Value{Tag: cur.Tag, FloatVal: cur.FloatVal + float64(delta)}
	} else {
		next = cbtype.Value{Tag: cur.Tag, IntVal: cur.IntVal + delta, IsUnsigned: cur.IsUnsigned}
	}
	if err := in.storeTo(target, next, pos); err != nil {
		return cbtype.Value{}, err
	}
	return next, nil
}

// storeTo writes val into the lvalue target, covering plain idents,
// member paths and array-ref targets, shared by ++/--/compound assign
// and by execAssign.
func (in *Interp) storeTo(target ast.Expr, val cbtype.Value, pos ast.Pos) error {
	if aref, ok := target.(*ast.ArrayRefExpr); ok {
		root, idxExprs := ast.FlattenIndices(aref)
		rv, err := in.resolveLValue(root)
		if err != nil {
			return err
		}
		if rv.Value.Tag == cbtype.String {
			return in.assignStringIndex(rv, idxExprs, val, pos)
		}
		indices := make([]int, len(idxExprs))
		for i, ie := range idxExprs {
			iv, err := in.EvalExpr(ie)
			if err != nil {
				return err
			}
			indices[i] = int(iv.IntVal)
		}
		if rv.Value.Arr == nil {
			return cberr.New(diagnostic.CodeTypeMismatch, pos, "cannot index a non-array value")
		}
		return array.Set(rv.Value.Arr, indices, val, pos)
	}
	v, err := in.resolveLValue(target)
	if err != nil {
		return err
	}
	return in.assignTo(v, val, pos)
}

// assignStringIndex replaces the code point at idxExprs[0] inside a
// string variable, per §3.2's by-code-point indexing.
func (in *Interp) assignStringIndex(v *scope.Variable, idxExprs []ast.Expr, val cbtype.Value, pos ast.Pos) error {
	if len(idxExprs) != 1 {
		return cberr.New(diagnostic.CodeStringOutOfBounds, pos, "string indexing takes exactly one index")
	}
	iv, err := in.EvalExpr(idxExprs[0])
	if err != nil {
		return err
	}
	idx := int(iv.IntVal)
	runes := []rune(v.Value.Str)
	if idx < 0 || idx >= len(runes) {
		return cberr.New(diagnostic.CodeStringOutOfBounds, pos, "index %d out of bounds for string of length %d", idx, len(runes))
	}
	var r rune
	if val.Tag == cbtype.String {
		assigned := []rune(val.Str)
		if len(assigned) != 1 {
			return cberr.New(diagnostic.CodeStringOutOfBounds, pos,
				"assigning %d code points to a single string index", len(assigned))
		}
		r = assigned[0]
	} else {
		r = rune(val.IntVal)
	}
	runes[idx] = r
	v.Value.Str = string(runes)
	return nil
}

// ----------------------------------------------------------------------------
// Ternary / cast / enum ref
// ----------------------------------------------------------------------------

func (in *Interp) evalTernary(n *ast.TernaryExpr) (cbtype.Value, error) {
	c, err := in.EvalExpr(n.Cond)
	if err != nil {
		return cbtype.Value{}, err
	}
	if truthy(c) {
		return in.EvalExpr(n.Then)
	}
	return in.EvalExpr(n.Else)
}

func (in *Interp) evalCast(n *ast.CastExpr) (cbtype.Value, error) {
	v, err := in.EvalExpr(n.Operand)
	if err != nil {
		return cbtype.Value{}, err
	}
	rt, err := in.resolveType(n.Position.Off, n.Type)
	if err != nil {
		return cbtype.Value{}, err
	}
	if err := cbtype.Coerce(v.Tag, rt.Tag); err != nil {
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off, "%s", err)
	}
	if rt.Tag.IsFloat() {
		return cbtype.Value{Tag: rt.Tag, FloatVal: floatOf(v)}, nil
	}
	iv := v.IntVal
	if v.Tag.IsFloat() {
		iv = int64(v.FloatVal)
	}
	if rt.Unsigned {
		if clamped, did := cbtype.ClampUnsignedNegative(iv); did {
			in.Tracer.Warn("cast clamps negative value to 0 for unsigned %s", rt.Tag)
			iv = clamped
		}
	}
	if err := cbtype.RangeCheck(rt.Tag, iv, rt.Unsigned); err != nil {
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeRangeError, n.Position.Off, "%s", err)
	}
	return cbtype.Value{Tag: rt.Tag, IntVal: iv, IsUnsigned: rt.Unsigned}, nil
}

func (in *Interp) evalEnumRef(n *ast.EnumRefExpr) (cbtype.Value, error) {
	v, ok := in.enumValue(n.Enum, n.Member)
	if !ok {
		return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedVariable, n.Position.Off, "unknown enum member %s::%s", n.Enum, n.Member)
	}
	return cbtype.Value{Tag: cbtype.Enum, IntVal: v, EnumName: n.Enum}, nil
}

// ----------------------------------------------------------------------------
// Struct-literal / array-literal evaluation (context-dependent)
// ----------------------------------------------------------------------------

// evalStructLiteralAs builds a struct value of structName from lit,
// threading the target type in from the declaration/assignment/call
// site since the literal itself carries no type name (§4.6).
func (in *Interp) evalStructLiteralAs(structName string, lit *ast.StructLiteralExpr) (cbtype.Value, map[string]*scope.Variable, error) {
	info, ok := in.Structs.Struct(structName)
	if !ok {
		return cbtype.Value{}, nil, cberr.New(diagnostic.CodeUnknownStructMember, lit.Position.Off, "unknown struct type %q", structName)
	}
	if len(lit.Fields) > len(info.Members) {
		return cbtype.Value{}, nil, cberr.New(diagnostic.CodeTooManyInitializers, lit.Position.Off,
			"struct %q has %d members, got %d initializers", structName, len(info.Members), len(lit.Fields))
	}
	zero, children, err := in.zeroStruct(lit.Position.Off, structName)
	if err != nil {
		return cbtype.Value{}, nil, err
	}
	for i, f := range lit.Fields {
		name := f.Name
		if name == "" {
			name = info.Members[i].Name
		}
		m := info.MemberByName(name)
		if m == nil {
			return cbtype.Value{}, nil, cberr.New(diagnostic.CodeUnknownStructMember, lit.Position.Off, "struct %q has no member %q", structName, name)
		}
		val, mchildren, err := in.evalFieldValue(*m, f.Value)
		if err != nil {
			return cbtype.Value{}, nil, err
		}
		zero.Members[name] = &val
		children[name].Value = val
		if mchildren != nil {
			children[name].Children = mchildren
		}
		children[name].IsAssigned = true
	}
	return cbtype.Value{Tag: cbtype.Struct, StructVal: zero}, children, nil
}

// evalFieldValue evaluates a struct-literal field's expression against
// member's declared type, recursing for a nested struct or array
// field whose own literal needs its shape threaded in too.
func (in *Interp) evalFieldValue(member ast.StructMember, e ast.Expr) (cbtype.Value, map[string]*scope.Variable, error) {
	if sl, ok := e.(*ast.StructLiteralExpr); ok {
		name := member.StructAlias
		if name == "" {
			name = member.Type.Name
		}
		v, children, err := in.evalStructLiteralAs(name, sl)
		return v, children, err
	}
	if al, ok := e.(*ast.ArrayLiteral); ok {
		rt, err := in.resolveType(member.Position.Off, member.Type)
		if err != nil {
			return cbtype.Value{}, nil, err
		}
		nested, err := in.buildNested(al)
		if err != nil {
			return cbtype.Value{}, nil, err
		}
		arr, err := array.BuildFromNested(rt.Tag, rt.Unsigned, rt.Dims, nested, al.Position.Off)
		if err != nil {
			return cbtype.Value{}, nil, err
		}
		return cbtype.Value{Tag: rt.Tag, Arr: arr}, nil, nil
	}
	v, err := in.EvalExpr(e)
	return v, nil, err
}

// buildNested turns a parsed ast.ArrayLiteral (possibly mixing nested
// ast.ArrayLiteral sub-trees and scalar expressions) into array.Nested
// by evaluating every leaf expression.
func (in *Interp) buildNested(lit *ast.ArrayLiteral) (array.Nested, error) {
	elems := make([]array.Nested, len(lit.Elements))
	for i, el := range lit.Elements {
		if sub, ok := el.(*ast.ArrayLiteral); ok {
			n, err := in.buildNested(sub)
			if err != nil {
				return array.Nested{}, err
			}
			elems[i] = n
			continue
		}
		v, err := in.EvalExpr(el)
		if err != nil {
			return array.Nested{}, err
		}
		elems[i] = array.Nested{Leaf: &v}
	}
	return array.Nested{Elements: elems}, nil
}
