package interp

import (
	"github.com/cb-lang/cb/internal/array"
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/parser"
	"github.com/cb-lang/cb/internal/scope"
)

// ExitKind is the non-local control transfer a statement produced.
type ExitKind uint8

const (
	ExitNone ExitKind = iota
	ExitReturn
	ExitBreak
	ExitContinue
)

// Exit is the payload threaded back up through ExecStmt for Return,
// Break and Continue, per §4.7's control-flow contract table. It is
// never a panic: every statement executor returns it as an ordinary
// value alongside an error.
type Exit struct {
	Kind  ExitKind
	Value cbtype.Value
	// HasValue distinguishes a bare `return;` from `return expr;`.
	HasValue bool
}

// ExecStmt executes s in the current scope, returning a non-nil Exit
// when a Return/Break/Continue needs to propagate past this statement.
func (in *Interp) ExecStmt(s ast.Stmt) (*Exit, error) {
	switch n := s.(type) {
	case *ast.DeclStmt:
		return nil, in.execDecl(n.D)
	case *ast.CompoundStmt:
		return in.execCompound(n)
	case *ast.AssignStmt:
		return nil, in.execAssign(n)
	case *ast.IfStmt:
		return in.execIf(n)
	case *ast.WhileStmt:
		return in.execWhile(n)
	case *ast.ForStmt:
		return in.execFor(n)
	case *ast.ReturnStmt:
		return in.execReturn(n)
	case *ast.BreakStmt:
		return in.execBreakContinue(n.Value, ExitBreak, n.Position.Off)
	case *ast.ContinueStmt:
		return in.execBreakContinue(n.Value, ExitContinue, n.Position.Off)
	case *ast.PrintStmt:
		return nil, in.execPrint(n)
	case *ast.AssertStmt:
		return nil, in.execAssert(n)
	default:
		if e, ok := parser.ExprStmt(s); ok {
			_, err := in.EvalExpr(e)
			return nil, err
		}
		return nil, cberr.New(diagnostic.CodeTypeMismatch, ast.NoPos, "cannot execute statement of type %T", s)
	}
}

func (in *Interp) execCompound(n *ast.CompoundStmt) (*Exit, error) {
	in.Scope.Push()
	defer in.Scope.Pop()
	for _, stmt := range n.Stmts {
		exit, err := in.ExecStmt(stmt)
		if err != nil {
			return nil, err
		}
		if exit != nil {
			return exit, nil
		}
	}
	return nil, nil
}

func (in *Interp) execIf(n *ast.IfStmt) (*Exit, error) {
	c, err := in.EvalExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	if truthy(c) {
		return in.ExecStmt(n.Then)
	}
	if n.Else != nil {
		return in.ExecStmt(n.Else)
	}
	return nil, nil
}

func (in *Interp) execWhile(n *ast.WhileStmt) (*Exit, error) {
	for {
		c, err := in.EvalExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		if !truthy(c) {
			return nil, nil
		}
		exit, err := in.ExecStmt(n.Body)
		if err != nil {
			return nil, err
		}
		if exit != nil {
			switch exit.Kind {
			case ExitBreak:
				return nil, nil
			case ExitContinue:
				continue
			default:
				return exit, nil
			}
		}
	}
}

// execFor executes init once, then while(cond) { body; update },
// running update even when the iteration ends via continue, per §4.7.
func (in *Interp) execFor(n *ast.ForStmt) (*Exit, error) {
	in.Scope.Push()
	defer in.Scope.Pop()
	if n.Init != nil {
		if _, err := in.ExecStmt(n.Init); err != nil {
			return nil, err
		}
	}
	for {
		if n.Cond != nil {
			c, err := in.EvalExpr(n.Cond)
			if err != nil {
				return nil, err
			}
			if !truthy(c) {
				return nil, nil
			}
		}
		exit, err := in.ExecStmt(n.Body)
		if err != nil {
			return nil, err
		}
		if exit != nil {
			switch exit.Kind {
			case ExitBreak:
				return nil, nil
			case ExitContinue:
				// fall through to update below
			default:
				return exit, nil
			}
		}
		if n.Update != nil {
			if _, err := in.ExecStmt(n.Update); err != nil {
				return nil, err
			}
		}
	}
}

// execBreakContinue evaluates the optional condition expression: a
// bare break/continue always fires; `break expr`/`continue expr`
// fires only when expr is non-zero, per §4.7/§9.
func (in *Interp) execBreakContinue(valueExpr ast.Expr, kind ExitKind, pos ast.Pos) (*Exit, error) {
	if valueExpr == nil {
		return &Exit{Kind: kind}, nil
	}
	v, err := in.EvalExpr(valueExpr)
	if err != nil {
		return nil, err
	}
	if !truthy(v) {
		return nil, nil
	}
	return &Exit{Kind: kind}, nil
}

// execReturn evaluates the return expression (if any) against the
// current frame's declared return type, applying the struct-sync,
// array-canonicalization and reference-validity rules of §4.7.
func (in *Interp) execReturn(n *ast.ReturnStmt) (*Exit, error) {
	if n.Value == nil {
		return &Exit{Kind: ExitReturn}, nil
	}
	frame := in.currentFrame()
	rt, err := in.resolveType(n.Position.Off, frame.returnType)
	if err != nil {
		return nil, err
	}
	if rt.IsReference {
		id, ok := n.Value.(*ast.Ident)
		if !ok {
			return nil, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off, "reference return must name a variable")
		}
		if err := in.checkReferenceReturnable(id.Name, n.Position.Off); err != nil {
			return nil, err
		}
		v, _ := in.Scope.Find(id.Name)
		return &Exit{Kind: ExitReturn, Value: in.valueOf(v), HasValue: true}, nil
	}
	val, err := in.evalReturnValue(n.Value, rt, n.Position.Off)
	if err != nil {
		return nil, err
	}
	if val.Arr != nil {
		val.Arr = array.ToCanonical3D(val.Arr)
	}
	return &Exit{Kind: ExitReturn, Value: val, HasValue: true}, nil
}

// evalReturnValue evaluates the return expression, threading in the
// declared return type for a struct- or array-literal expression
// exactly like a declaration initializer does.
func (in *Interp) evalReturnValue(e ast.Expr, rt resolvedType, pos ast.Pos) (cbtype.Value, error) {
	if sl, ok := e.(*ast.StructLiteralExpr); ok {
		v, _, err := in.evalStructLiteralAs(rt.StructName, sl)
		return v, err
	}
	if al, ok := e.(*ast.ArrayLiteral); ok {
		nested, err := in.buildNested(al)
		if err != nil {
			return cbtype.Value{}, err
		}
		arr, err := array.BuildFromNested(rt.Tag, rt.Unsigned, rt.Dims, nested, pos)
		if err != nil {
			return cbtype.Value{}, err
		}
		return cbtype.Value{Tag: rt.Tag, Arr: arr}, nil
	}
	return in.EvalExpr(e)
}

// ----------------------------------------------------------------------------
// Assignment
// ----------------------------------------------------------------------------

func (in *Interp) execAssign(n *ast.AssignStmt) (err error) {
	if n.Op == ast.AssignSet {
		val, err := in.evalAssignRHS(n.Target, n.Value)
		if err != nil {
			return err
		}
		if err := in.storeTo(n.Target, val, n.Position.Off); err != nil {
			return err
		}
		in.traceAssign(n.Target, val)
		return nil
	}
	cur, err := in.EvalExpr(n.Target)
	if err != nil {
		return err
	}
	rhs, err := in.EvalExpr(n.Value)
	if err != nil {
		return err
	}
	next, err := applyBinary(compoundOp(n.Op), cur, rhs, n.Position.Off)
	if err != nil {
		return err
	}
	if err := in.storeTo(n.Target, next, n.Position.Off); err != nil {
		return err
	}
	in.traceAssign(n.Target, next)
	return nil
}

// evalAssignRHS evaluates Value against Target's already-known type,
// threading that type into a struct- or array-literal RHS exactly
// like evalReturnValue does for a return statement.
func (in *Interp) evalAssignRHS(target, value ast.Expr) (cbtype.Value, error) {
	if sl, ok := value.(*ast.StructLiteralExpr); ok {
		tv, err := in.resolveLValue(target)
		if err != nil {
			return cbtype.Value{}, err
		}
		v, _, err := in.evalStructLiteralAs(tv.StructTypeName, sl)
		return v, err
	}
	if al, ok := value.(*ast.ArrayLiteral); ok {
		tv, err := in.resolveLValue(target)
		if err != nil {
			return cbtype.Value{}, err
		}
		if tv.Value.Arr == nil {
			return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, al.Position.Off, "cannot assign an array literal to a non-array variable")
		}
		nested, err := in.buildNested(al)
		if err != nil {
			return cbtype.Value{}, err
		}
		arr, err := array.BuildFromNested(tv.Value.Arr.ElemTag, tv.Value.Arr.ElemUnsigned, tv.Value.Arr.Dims, nested, al.Position.Off)
		if err != nil {
			return cbtype.Value{}, err
		}
		return cbtype.Value{Tag: tv.Value.Arr.ElemTag, Arr: arr}, nil
	}
	return in.EvalExpr(value)
}

func (in *Interp) traceAssign(target ast.Expr, v cbtype.Value) {
	in.Tracer.Assign(exprLabel(target), renderValue(v))
}

func exprLabel(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name
	case *ast.MemberAccessExpr:
		return exprLabel(n.Target) + "." + n.Member
	case *ast.ArrowAccessExpr:
		return exprLabel(n.Target) + "->" + n.Member
	case *ast.ArrayRefExpr:
		return exprLabel(n.Array) + "[...]"
	default:
		return "<expr>"
	}
}

// ----------------------------------------------------------------------------
// Declarations inside a function body
// ----------------------------------------------------------------------------

// ExecGlobalDecl runs a top-level var/array declaration the same way
// execDecl runs one inside a function body — the driver's global
// scope is just the bottom of the same scope stack a call pushes onto.
func (in *Interp) ExecGlobalDecl(d ast.Decl) error { return in.execDecl(d) }

func (in *Interp) execDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		return in.declareScalarVar(n)
	case *ast.MultipleVarDecl:
		return in.declareMultiVar(n)
	case *ast.ArrayDecl:
		return in.declareArrayVar(n)
	default:
		return cberr.New(diagnostic.CodeTypeMismatch, d.Position(), "declaration of type %T not valid in a function body", d)
	}
}

func (in *Interp) declareScalarVar(n *ast.VarDecl) error {
	if n.IsStatic {
		return in.declareStatic(n)
	}
	v, err := in.buildVarVariable(n.Position.Off, n.Name, n.Type, n.Init, n.IsConst, n.StructAlias)
	if err != nil {
		return err
	}
	in.Scope.Declare(v)
	return nil
}

func (in *Interp) declareStatic(n *ast.VarDecl) error {
	v, err := in.buildVarVariable(n.Position.Off, n.Name, n.Type, n.Init, n.IsConst, n.StructAlias)
	if err != nil {
		return err
	}
	installed, created := in.Scope.DeclareStatic(in.currentFuncName(), v)
	if !created {
		in.Scope.Declare(installed)
		return nil
	}
	in.Scope.Declare(installed)
	return nil
}

// buildVarVariable builds a *scope.Variable for a scalar declaration,
// handling union-alias bookkeeping, typed zero-construction, and
// struct/array literal initializers threaded in from this declared
// type.
func (in *Interp) buildVarVariable(pos ast.Pos, name string, t ast.TypeRef, init ast.Expr, isConst bool, structAlias string) (*scope.Variable, error) {
	rt, err := in.resolveType(pos, t)
	if err != nil {
		return nil, err
	}
	var val cbtype.Value
	var children map[string]*scope.Variable
	switch {
	case rt.Tag == cbtype.Struct:
		name := structAlias
		if name == "" {
			name = rt.StructName
		}
		if sl, ok := init.(*ast.StructLiteralExpr); ok {
			val, children, err = in.evalStructLiteralAs(name, sl)
		} else if init != nil {
			val, err = in.EvalExpr(init)
			if err == nil && val.StructVal != nil {
				children = in.rebuildChildrenFromStructValue(val.StructVal)
			}
		} else {
			sv, zc, zerr := in.zeroStruct(pos, name)
			val, children, err = cbtype.Value{Tag: cbtype.Struct, StructVal: sv}, zc, zerr
		}
	case len(rt.Dims) > 0:
		if al, ok := init.(*ast.ArrayLiteral); ok {
			nested, nerr := in.buildNested(al)
			if nerr != nil {
				return nil, nerr
			}
			a, aerr := array.BuildFromNested(rt.Tag, rt.Unsigned, rt.Dims, nested, pos)
			val, err = cbtype.Value{Tag: rt.Tag, Arr: a}, aerr
		} else if init != nil {
			val, err = in.EvalExpr(init)
		} else {
			val = cbtype.Value{Tag: rt.Tag, Arr: in.zeroArray(rt)}
		}
	default:
		if init != nil {
			val, err = in.EvalExpr(init)
		} else {
			val = cbtype.Zero(rt.Tag, rt.Unsigned)
			if rt.Tag == cbtype.Enum {
				val.EnumName = rt.EnumName
			}
		}
	}
	if err != nil {
		return nil, err
	}
	v := scope.NewVariable(name, val, isConst, rt.Unsigned)
	v.IsAssigned = init != nil
	v.IsPointer = t.IsPointer
	v.IsReference = t.IsReference
	v.Children = children
	if rt.UnionAlias != "" {
		v.UnionAlias = rt.UnionAlias
	}
	if val.StructVal != nil {
		v.StructTypeName = val.StructVal.TypeName
	}
	return v, nil
}

func (in *Interp) declareMultiVar(n *ast.MultipleVarDecl) error {
	for i, name := range n.Names {
		var init ast.Expr
		if i < len(n.Inits) {
			init = n.Inits[i]
		}
		v, err := in.buildVarVariable(n.Position.Off, name, n.Type, init, false, "")
		if err != nil {
			return err
		}
		in.Scope.Declare(v)
	}
	return nil
}

func (in *Interp) declareArrayVar(n *ast.ArrayDecl) error {
	if len(n.ElemType.ArrayDims) == 0 {
		return cberr.New(diagnostic.CodeDynamicArrayNotSupported, n.Position.Off,
			"array %q must declare a fixed size", n.Name)
	}
	rt, err := in.resolveType(n.Position.Off, n.ElemType)
	if err != nil {
		return err
	}
	var arr *cbtype.ArrayValue
	if n.Literal != nil {
		nested, err := in.buildNested(n.Literal)
		if err != nil {
			return err
		}
		arr, err = array.BuildFromNested(rt.Tag, rt.Unsigned, rt.Dims, nested, n.Position.Off)
		if err != nil {
			return err
		}
	} else {
		arr = in.zeroArray(rt)
	}
	arr.IsConst = n.IsConst
	v := scope.NewVariable(n.Name, cbtype.Value{Tag: rt.Tag, Arr: arr}, n.IsConst, rt.Unsigned)
	v.IsAssigned = n.Literal != nil
	if n.IsStatic {
		installed, _ := in.Scope.DeclareStatic(in.currentFuncName(), v)
		in.Scope.Declare(installed)
		return nil
	}
	in.Scope.Declare(v)
	return nil
}

// ----------------------------------------------------------------------------
// print / assert
// ----------------------------------------------------------------------------

func (in *Interp) execPrint(n *ast.PrintStmt) error {
	args := make([]cbtype.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.EvalExpr(a)
		if err != nil {
			return err
		}
		args[i] = v
	}
	switch n.Kind {
	case ast.PrintPrint:
		for _, a := range args {
			in.write(renderValue(a))
		}
	case ast.PrintPrintln:
		for _, a := range args {
			in.write(renderValue(a))
		}
		in.write("\n")
	case ast.PrintPrintlnEmpty:
		in.write("\n")
	case ast.PrintPrintf:
		fv, err := in.EvalExpr(n.Format)
		if err != nil {
			return err
		}
		in.write(formatPrintf(fv.Str, args))
	case ast.PrintPrintlnf:
		fv, err := in.EvalExpr(n.Format)
		if err != nil {
			return err
		}
		in.write(formatPrintf(fv.Str, args))
		in.write("\n")
	}
	return nil
}

func (in *Interp) write(s string) {
	if in.Stdout != nil {
		in.Stdout.Write([]byte(s))
	}
}

func (in *Interp) execAssert(n *ast.AssertStmt) error {
	v, err := in.EvalExpr(n.Cond)
	if err != nil {
		return err
	}
	if !truthy(v) {
		return cberr.New(diagnostic.CodeAssertionFailed, n.Position.Off,
			"assertion failed at line %d", in.lineAt(n.Position.Off))
	}
	return nil
}
