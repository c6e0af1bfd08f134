// Package dce finds functions and impl methods unreachable from main.
//
// Cb has no "output" stage to prune unused declarations from: every
// declared function still has to exist so a typo'd call fails loudly
// rather than silently. This pass is diagnostic only — it reports
// RuleUnreachableFunction warnings for the driver to print, without
// deleting anything from the parsed program.
package dce

import (
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/parser"
)

// FindUnreachable returns the names of every top-level function and
// "Struct.method" impl method that the call graph rooted at main
// cannot reach. Method-style calls (`x.foo()`) are resolved
// conservatively by name only, since this pass runs before any type
// information is attached to a receiver expression: a method name
// reached anywhere marks every struct's method of that name live.
// This can under-report unreachable methods when two structs share a
// method name and only one is actually called, but it never
// over-reports (never warns about a method that genuinely is called).
func FindUnreachable(program *ast.Program) []string {
	funcs := make(map[string]*ast.FuncDecl)
	methodsByName := make(map[string][]string) // method name -> "Struct.method" keys
	var order []string

	for _, decl := range program.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			funcs[d.Name] = d
			order = append(order, d.Name)
		case *ast.ImplDecl:
			for _, m := range d.Methods {
				key := d.StructName + "." + m.Name
				funcs[key] = m
				methodsByName[m.Name] = append(methodsByName[m.Name], key)
				order = append(order, key)
			}
		}
	}

	if _, ok := funcs["main"]; !ok {
		// No entry point to reach anything from; the driver reports
		// MainNotFound separately. Don't also claim everything is dead.
		return nil
	}

	live := make(map[string]bool)
	queue := []string{"main"}
	live["main"] = true
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		fn, ok := funcs[name]
		if !ok || fn.Body == nil {
			continue
		}
		for _, called := range calleeNames(fn.Body, methodsByName) {
			if !live[called] {
				live[called] = true
				queue = append(queue, called)
			}
		}
	}

	var unreachable []string
	for _, name := range order {
		if name == "main" || live[name] {
			continue
		}
		unreachable = append(unreachable, name)
	}
	return unreachable
}

// calleeNames walks stmt's tree and returns the live-graph keys (a
// plain function name, or every "Struct.method" key for a
// method-style call) of every call it makes.
func calleeNames(stmt ast.Stmt, methodsByName map[string][]string) []string {
	var names []string
	var visitStmt func(ast.Stmt)
	var visitExpr func(ast.Expr)

	visitExpr = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.CallExpr:
			switch callee := n.Callee.(type) {
			case *ast.Ident:
				names = append(names, callee.Name)
			case *ast.MemberAccessExpr:
				names = append(names, methodsByName[callee.Member]...)
				visitExpr(callee.Target)
			case *ast.ArrowAccessExpr:
				names = append(names, methodsByName[callee.Member]...)
				visitExpr(callee.Target)
			}
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.BinaryExpr:
			visitExpr(n.Left)
			visitExpr(n.Right)
		case *ast.UnaryExpr:
			visitExpr(n.Operand)
		case *ast.PreIncDecExpr:
			visitExpr(n.Target)
		case *ast.PostIncDecExpr:
			visitExpr(n.Target)
		case *ast.ArrayRefExpr:
			visitExpr(n.Array)
			visitExpr(n.Index)
		case *ast.MemberAccessExpr:
			visitExpr(n.Target)
		case *ast.ArrowAccessExpr:
			visitExpr(n.Target)
		case *ast.TernaryExpr:
			visitExpr(n.Cond)
			visitExpr(n.Then)
			visitExpr(n.Else)
		case *ast.CastExpr:
			visitExpr(n.Operand)
		case *ast.StructLiteralExpr:
			for _, f := range n.Fields {
				visitExpr(f.Value)
			}
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				visitExpr(el)
			}
		}
	}

	visitStmt = func(s ast.Stmt) {
		if s == nil {
			return
		}
		switch n := s.(type) {
		case *ast.CompoundStmt:
			for _, st := range n.Stmts {
				visitStmt(st)
			}
		case *ast.DeclStmt:
			switch d := n.D.(type) {
			case *ast.VarDecl:
				visitExpr(d.Init)
			case *ast.MultipleVarDecl:
				for _, in := range d.Inits {
					visitExpr(in)
				}
			case *ast.ArrayDecl:
				if d.Literal != nil {
					visitExpr(d.Literal)
				}
			}
		case *ast.AssignStmt:
			visitExpr(n.Target)
			visitExpr(n.Value)
		case *ast.IfStmt:
			visitExpr(n.Cond)
			visitStmt(n.Then)
			visitStmt(n.Else)
		case *ast.WhileStmt:
			visitExpr(n.Cond)
			visitStmt(n.Body)
		case *ast.ForStmt:
			visitStmt(n.Init)
			visitExpr(n.Cond)
			visitStmt(n.Update)
			visitStmt(n.Body)
		case *ast.ReturnStmt:
			visitExpr(n.Value)
		case *ast.BreakStmt:
			visitExpr(n.Value)
		case *ast.ContinueStmt:
			visitExpr(n.Value)
		case *ast.PrintStmt:
			visitExpr(n.Format)
			for _, a := range n.Args {
				visitExpr(a)
			}
		case *ast.AssertStmt:
			visitExpr(n.Cond)
		default:
			if e, ok := parser.ExprStmt(s); ok {
				visitExpr(e)
			}
		}
	}

	visitStmt(stmt)
	return names
}
