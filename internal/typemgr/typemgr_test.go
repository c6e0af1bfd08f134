package typemgr

import (
	"testing"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
)

func TestResolveTypedefFollowsChain(t *testing.T) {
	m := New()
	if err := m.RegisterTypedef(ast.NoPos, "Meters", ast.TypeRef{Name: "int"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.RegisterTypedef(ast.NoPos, "Distance", ast.TypeRef{Name: "Meters"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved, err := m.ResolveTypedef(ast.NoPos, "Distance")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Name != "int" {
		t.Fatalf("expected Distance to resolve to int, got %q", resolved.Name)
	}
}

func TestResolveTypedefRejectsCycle(t *testing.T) {
	m := New()
	m.typedefs["A"] = typedefEntry{Underlying: ast.TypeRef{Name: "B"}}
	err := m.RegisterTypedef(ast.NoPos, "B", ast.TypeRef{Name: "A"})
	if !cberr.Is(err, diagnostic.CodeTypeMismatch) {
		t.Fatalf("expected a typedef-cycle error, got %v", err)
	}
}

func TestResolveTypedefCarriesArrayDims(t *testing.T) {
	m := New()
	dim := &ast.NumberLit{IntValue: 5}
	if err := m.RegisterTypedef(ast.NoPos, "IntArray5", ast.TypeRef{Name: "int", ArrayDims: []ast.Expr{dim}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved, err := m.ResolveTypedef(ast.NoPos, "IntArray5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved.ArrayDims) != 1 {
		t.Fatalf("expected 1 array dimension to survive resolution, got %d", len(resolved.ArrayDims))
	}
}

func TestStringToTag(t *testing.T) {
	m := New()
	m.RegisterStruct("Point")
	if got := m.StringToTag("int"); got != cbtype.Int {
		t.Errorf("StringToTag(int) = %s", got)
	}
	if got := m.StringToTag("Point"); got != cbtype.Struct {
		t.Errorf("StringToTag(Point) = %s", got)
	}
	if got := m.StringToTag("Nonexistent"); got != cbtype.Unknown {
		t.Errorf("StringToTag(Nonexistent) = %s", got)
	}
}

func TestUnionConstraint(t *testing.T) {
	m := New()
	m.RegisterUnion("Status", []cbtype.Value{
		{Tag: cbtype.Int, IntVal: 1}, {Tag: cbtype.Int, IntVal: 2}, {Tag: cbtype.String, Str: "off"},
	})
	if !m.IsValueAllowedForUnion("Status", cbtype.Value{Tag: cbtype.Int, IntVal: 1}) {
		t.Errorf("expected 1 to be allowed")
	}
	if !m.IsValueAllowedForUnion("Status", cbtype.Value{Tag: cbtype.String, Str: "off"}) {
		t.Errorf("expected \"off\" to be allowed")
	}
	if m.IsValueAllowedForUnion("Status", cbtype.Value{Tag: cbtype.Int, IntVal: 99}) {
		t.Errorf("expected 99 to be rejected")
	}
}

func TestIsCompatibleType(t *testing.T) {
	m := New()
	if !m.IsCompatibleType(cbtype.Int, cbtype.Long) {
		t.Errorf("int -> long should be compatible")
	}
	if m.IsCompatibleType(cbtype.String, cbtype.Int) {
		t.Errorf("string -> int should not be compatible")
	}
}
