// Package driver is the program driver (component C8): two-pass
// global registration over a parsed program's top-level declarations,
// followed by main lookup and invocation.
package driver

import (
	"fmt"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/interp"
	"github.com/cb-lang/cb/internal/structure"
	"github.com/cb-lang/cb/internal/typemgr"
)

// RegisterGlobals walks program.Decls in the nine-pass order §4.8
// requires: const non-array vars, then the remaining var/array decls,
// then struct and typedef-struct decls, enums, typedefs, union
// typedefs, interfaces, impls, and finally plain functions. The order
// is load-bearing, not cosmetic: a const declared in pass (a) is
// available to an array-size expression evaluated in pass (b), and a
// struct registered in pass (c) is visible to the impl pass (h) that
// checks it actually has the methods its interface demands.
func RegisterGlobals(in *interp.Interp, types *typemgr.Manager, structs *structure.Registry, program *ast.Program) error {
	for _, d := range program.Decls {
		if v, ok := d.(*ast.VarDecl); ok && v.IsConst && !v.Type.IsArray() {
			if err := in.ExecGlobalDecl(v); err != nil {
				return err
			}
		}
	}
	for _, d := range program.Decls {
		switch n := d.(type) {
		case *ast.VarDecl:
			if n.IsConst && !n.Type.IsArray() {
				continue // already registered in pass (a)
			}
			if err := in.ExecGlobalDecl(n); err != nil {
				return err
			}
		case *ast.MultipleVarDecl:
			if err := in.ExecGlobalDecl(n); err != nil {
				return err
			}
		case *ast.ArrayDecl:
			if err := in.ExecGlobalDecl(n); err != nil {
				return err
			}
		}
	}
	for _, d := range program.Decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			structs.RegisterStruct(n)
			types.RegisterStruct(n.Name)
		case *ast.StructTypedefDecl:
			structs.RegisterStruct(n.Struct)
			types.RegisterStruct(n.Struct.Name)
			if n.Alias != n.Struct.Name {
				// typedef struct S {...} Alias; — Alias names the same
				// struct shape, so the struct registry gets a copy of
				// S's members under Alias and the type manager learns
				// Alias as a second struct-type spelling.
				structs.RegisterStruct(&ast.StructDecl{Position: n.Struct.Position, Name: n.Alias, Members: n.Struct.Members})
				types.RegisterStruct(n.Alias)
			}
		}
	}
	if err := structs.CheckNoCycles(); err != nil {
		return err
	}
	for _, d := range program.Decls {
		if e, ok := d.(*ast.EnumDecl); ok {
			if err := in.RegisterEnum(e); err != nil {
				return err
			}
		}
	}
	for _, d := range program.Decls {
		if t, ok := d.(*ast.TypedefDecl); ok {
			if err := types.RegisterTypedef(t.Position.Off, t.Alias, t.Underlying); err != nil {
				return err
			}
		}
	}
	for _, d := range program.Decls {
		if u, ok := d.(*ast.UnionTypedefDecl); ok {
			admitted := make([]cbtype.Value, 0, len(u.Members))
			for _, me := range u.Members {
				v, err := in.EvalExpr(me)
				if err != nil {
					return err
				}
				admitted = append(admitted, v)
			}
			types.RegisterUnion(u.Alias, admitted)
		}
	}
	for _, d := range program.Decls {
		if iface, ok := d.(*ast.InterfaceDecl); ok {
			structs.RegisterInterface(iface)
			types.RegisterInterface(iface.Name)
		}
	}
	for _, d := range program.Decls {
		if impl, ok := d.(*ast.ImplDecl); ok {
			if err := structs.RegisterImpl(impl); err != nil {
				return err
			}
		}
	}
	for _, d := range program.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			in.RegisterFunc(fn)
		}
	}
	return nil
}

// RunMain looks up "main" and invokes it with no arguments. Its
// integer return value (or 0, for a void main or one that falls off
// the end) becomes the process exit code; MainNotFound is fatal per
// §4.8.
func RunMain(in *interp.Interp) (int, error) {
	fn, ok := in.Funcs["main"]
	if !ok {
		return 1, cberr.New(diagnostic.CodeMainNotFound, ast.NoPos, "no main function defined")
	}
	result, err := in.Invoke(fn, nil, nil, "", fn.Position.Off)
	if err != nil {
		return 1, err
	}
	if result.Tag.IsFloat() {
		return int(result.FloatVal), nil
	}
	return int(result.IntVal), nil
}

// FormatFatal renders a *cberr.Error the way the CLI prints a fatal
// run failure: kind, message, and source line/column when a position
// is available.
func FormatFatal(err error, dl *diagnostic.DiagnosticList) string {
	ce, ok := err.(*cberr.Error)
	if !ok {
		return err.Error()
	}
	if ce.Pos == ast.NoPos {
		return fmt.Sprintf("%s: %s\n", ce.Kind, ce.Message)
	}
	dl.AddErrorWithCode(int(ce.Pos), string(ce.Kind), ce.Message)
	return dl.Format()
}
