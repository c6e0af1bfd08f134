package structure

import (
	"testing"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/diagnostic"
)

func TestRegisterImplRequiresAllMethods(t *testing.T) {
	r := New()
	r.RegisterStruct(&ast.StructDecl{Name: "Counter"})
	r.RegisterInterface(&ast.InterfaceDecl{Name: "Incrementable", Methods: []ast.InterfaceMethodSig{
		{Name: "inc"}, {Name: "value"},
	}})
	err := r.RegisterImpl(&ast.ImplDecl{
		InterfaceName: "Incrementable", StructName: "Counter",
		Methods: []*ast.FuncDecl{{Name: "inc"}},
	})
	if err == nil {
		t.Fatalf("expected an error for a missing method")
	}
}

func TestRegisterImplInstallsMethods(t *testing.T) {
	r := New()
	r.RegisterStruct(&ast.StructDecl{Name: "Counter"})
	r.RegisterInterface(&ast.InterfaceDecl{Name: "Incrementable", Methods: []ast.InterfaceMethodSig{{Name: "inc"}}})
	err := r.RegisterImpl(&ast.ImplDecl{
		InterfaceName: "Incrementable", StructName: "Counter",
		Methods: []*ast.FuncDecl{{Name: "inc"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := r.Method("Counter", "inc")
	if !ok {
		t.Fatalf("expected inc to be installed")
	}
	if m.TypeName != "Counter" || m.QualifiedName != "Incrementable_Counter_inc" {
		t.Fatalf("unexpected method binding: %+v", m)
	}
	implementors := r.Implementors("Incrementable")
	if len(implementors) != 1 || implementors[0] != "Counter" {
		t.Fatalf("expected Counter to be recorded as an implementor, got %v", implementors)
	}
}

func TestCheckNoCyclesRejectsSelfContainment(t *testing.T) {
	r := New()
	r.RegisterStruct(&ast.StructDecl{Name: "Node", Members: []ast.StructMember{
		{Name: "next", StructAlias: "Node"},
	}})
	err := r.CheckNoCycles()
	if !cberr.Is(err, diagnostic.CodeStructCycleError) {
		t.Fatalf("expected StructCycleError, got %v", err)
	}
}

func TestCheckNoCyclesAllowsPointerBreak(t *testing.T) {
	r := New()
	r.RegisterStruct(&ast.StructDecl{Name: "Node", Members: []ast.StructMember{
		{Name: "next", StructAlias: "Node", Type: ast.TypeRef{IsPointer: true}},
	}})
	if err := r.CheckNoCycles(); err != nil {
		t.Fatalf("a pointer member should not count as a cycle: %v", err)
	}
}

func TestCheckNoCyclesAllowsMutualNonCyclicNesting(t *testing.T) {
	r := New()
	r.RegisterStruct(&ast.StructDecl{Name: "Point", Members: []ast.StructMember{{Name: "x"}, {Name: "y"}}})
	r.RegisterStruct(&ast.StructDecl{Name: "Line", Members: []ast.StructMember{
		{Name: "a", StructAlias: "Point"}, {Name: "b", StructAlias: "Point"},
	}})
	if err := r.CheckNoCycles(); err != nil {
		t.Fatalf("unexpected cycle on a DAG of structs: %v", err)
	}
}
