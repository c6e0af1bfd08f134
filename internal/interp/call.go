package interp

import (
	"github.com/cb-lang/cb/internal/array"
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/builtins"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/scope"
)

// evalCall dispatches a CallExpr: a plain Ident callee names a
// top-level function or a builtin; a MemberAccessExpr callee is a
// method call, resolved through the struct registry's (struct,
// method) table per §4.5.
func (in *Interp) evalCall(n *ast.CallExpr) (cbtype.Value, error) {
	switch callee := n.Callee.(type) {
	case *ast.Ident:
		if builtins.IsBuiltin(callee.Name) {
			return in.callBuiltin(callee.Name, n.Args, n.Position.Off)
		}
		fn, ok := in.Funcs[callee.Name]
		if !ok {
			return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedFunction, n.Position.Off, "undefined function %q", callee.Name)
		}
		return in.invoke(fn, n.Args, nil, "", n.Position.Off)
	case *ast.MemberAccessExpr:
		return in.evalMethodCall(callee, n.Args, n.Position.Off)
	default:
		return cbtype.Value{}, cberr.New(diagnostic.CodeTypeMismatch, n.Position.Off, "expression is not callable")
	}
}

func (in *Interp) evalMethodCall(callee *ast.MemberAccessExpr, args []ast.Expr, pos ast.Pos) (cbtype.Value, error) {
	recv, err := in.resolveLValue(callee.Target)
	if err != nil {
		return cbtype.Value{}, err
	}
	structName := recv.StructTypeName
	if structName == "" && recv.Value.Iface != nil {
		structName = recv.Value.Iface.StructName
	}
	if structName == "" {
		return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedFunction, pos,
			"%q is not a struct or interface value", callee.Member)
	}
	fn, ok := in.Structs.Method(structName, callee.Member)
	if !ok {
		return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedFunction, pos,
			"%s has no method %q", structName, callee.Member)
	}
	return in.invoke(fn, args, recv, structName, pos)
}

// Invoke runs fn with the given receiver (nil for a plain function);
// the driver's main-invocation step (§4.8) calls it with none. It is a
// plain exported entry point onto the same call path every ordinary
// function call and method dispatch goes through.
func (in *Interp) Invoke(fn *ast.FuncDecl, args []ast.Expr, recv *scope.Variable, structName string, pos ast.Pos) (cbtype.Value, error) {
	return in.invoke(fn, args, recv, structName, pos)
}

// invoke runs fn's body with its parameters bound from args, plus, for
// a method call, a self variable aliased onto recv per §4.5 — self
// shares recv's exact Value.StructVal pointer and Children map, so
// writes through self are writes through recv with no extra flush
// step.
func (in *Interp) invoke(fn *ast.FuncDecl, args []ast.Expr, recv *scope.Variable, structName string, pos ast.Pos) (cbtype.Value, error) {
	if in.callDepth >= in.MaxCallDepth && in.MaxCallDepth > 0 {
		return cbtype.Value{}, cberr.New(diagnostic.CodeMaxCallDepthExceeded, pos,
			"call depth exceeded %d", in.MaxCallDepth)
	}
	if len(args) != len(fn.Params) {
		return cbtype.Value{}, cberr.New(diagnostic.CodeArgumentCountMismatch, pos,
			"%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	paramVars, traceArgs, err := in.evalArgsForParams(fn.Params, args)
	if err != nil {
		return cbtype.Value{}, err
	}
	in.callDepth++
	in.Scope.Push()
	scopeBase := in.Scope.Depth() - 1
	if recv != nil {
		self := &scope.Variable{
			Name: "self", Value: recv.Value, IsStruct: true,
			StructTypeName: structName, Children: recv.Children,
		}
		in.Scope.Declare(self)
	}
	for _, pv := range paramVars {
		in.Scope.Declare(pv)
	}
	in.frames = append(in.frames, frame{funcName: fn.Name, returnType: fn.ReturnType, scopeBase: scopeBase})
	qualified := fn.Name
	if structName != "" {
		qualified = structName + "." + fn.Name
	}
	in.Profiler.Record(qualified)
	in.Tracer.EnterCall(qualified, traceArgs)

	exit, err := in.execFuncBody(fn.Body)

	in.frames = in.frames[:len(in.frames)-1]
	in.Scope.TruncateTo(scopeBase)
	in.callDepth--

	if err != nil {
		in.Tracer.ExitCall(qualified, "")
		return cbtype.Value{}, err
	}
	rt, rerr := in.resolveType(fn.Position.Off, fn.ReturnType)
	if rerr != nil {
		return cbtype.Value{}, rerr
	}
	if exit != nil && exit.Kind == ExitReturn && exit.HasValue {
		retVal := exit.Value
		if len(rt.Dims) > 0 && retVal.Arr != nil {
			reshaped, rerr := array.FromCanonical3D(rt.Dims, retVal.Arr, pos)
			if rerr != nil {
				in.Tracer.ExitCall(qualified, "")
				return cbtype.Value{}, rerr
			}
			retVal.Arr = reshaped
		}
		in.Tracer.ExitCall(qualified, renderValue(retVal))
		return retVal, nil
	}
	in.Tracer.ExitCall(qualified, "")
	return cbtype.Zero(rt.Tag, rt.Unsigned), nil
}

// execFuncBody runs a function body's top-level statement list without
// the extra scope push execCompound would add — the call's own scope,
// already pushed by invoke, is that function body's scope.
func (in *Interp) execFuncBody(body *ast.CompoundStmt) (*Exit, error) {
	for _, stmt := range body.Stmts {
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

// evalArgsForParams evaluates each call argument against its
// parameter's declared type, threading struct/array literal context
// in, and copying by value unless the parameter is declared `T&`, in
// which case the actual argument variable is passed through so writes
// inside the callee are visible to the caller.
func (in *Interp) evalArgsForParams(params []ast.ParamDecl, args []ast.Expr) ([]*scope.Variable, []string, error) {
	vars := make([]*scope.Variable, len(params))
	trace := make([]string, len(params))
	for i, p := range params {
		if p.Type.IsReference {
			id, ok := args[i].(*ast.Ident)
			if !ok {
				return nil, nil, cberr.New(diagnostic.CodeTypeMismatch, p.Position.Off,
					"argument %d to reference parameter %q must be a variable", i, p.Name)
			}
			src, ok := in.Scope.Find(id.Name)
			if !ok {
				return nil, nil, cberr.New(diagnostic.CodeUndefinedVariable, p.Position.Off, "undefined variable %q", id.Name)
			}
			alias := &scope.Variable{
				Name: p.Name, Value: src.Value, IsConst: src.IsConst, IsAssigned: src.IsAssigned,
				IsStruct: src.IsStruct, IsArray: src.IsArray, IsReference: true,
				StructTypeName: src.StructTypeName, Children: src.Children, UnionAlias: src.UnionAlias,
			}
			vars[i] = alias
			trace[i] = renderValue(src.Value)
			continue
		}
		rt, err := in.resolveType(p.Position.Off, p.Type)
		if err != nil {
			return nil, nil, err
		}
		val, children, err := in.evalArgValue(args[i], p, rt)
		if err != nil {
			return nil, nil, err
		}
		val = val.Clone()
		v := scope.NewVariable(p.Name, val, false, rt.Unsigned)
		v.IsAssigned = true
		v.Children = children
		if val.StructVal != nil {
			v.StructTypeName = val.StructVal.TypeName
			v.Children = in.rebuildChildrenFromStructValue(val.StructVal)
		}
		vars[i] = v
		trace[i] = renderValue(val)
	}
	return vars, trace, nil
}

func (in *Interp) evalArgValue(e ast.Expr, p ast.ParamDecl, rt resolvedType) (cbtype.Value, map[string]*scope.Variable, error) {
	if sl, ok := e.(*ast.StructLiteralExpr); ok {
		name := rt.StructName
		if name == "" {
			name = p.Type.Name
		}
		return in.evalStructLiteralAs(name, sl)
	}
	if al, ok := e.(*ast.ArrayLiteral); ok {
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

// ----------------------------------------------------------------------------
// Builtins
// ----------------------------------------------------------------------------

func (in *Interp) callBuiltin(name string, argExprs []ast.Expr, pos ast.Pos) (cbtype.Value, error) {
	b := builtins.Lookup(name)
	args := make([]cbtype.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := in.EvalExpr(a)
		if err != nil {
			return cbtype.Value{}, err
		}
		args[i] = v
	}
	if _, ok := builtins.ResolveOverload(b, args); !ok {
		return cbtype.Value{}, cberr.New(diagnostic.CodeArgumentCountMismatch, pos, "no matching overload for builtin %q", name)
	}
	switch b.Kind {
	case builtins.BuiltinLength:
		n, _ := builtins.EvalLen(args[0])
		return cbtype.Value{Tag: cbtype.Int, IntVal: n}, nil
	default:
		return cbtype.Value{}, cberr.New(diagnostic.CodeUndefinedFunction, pos, "unimplemented builtin %q", name)
	}
}
