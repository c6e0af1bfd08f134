package scope

import (
	"testing"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
)

func TestFindWalksStackTopDown(t *testing.T) {
	st := NewStack()
	st.DeclareGlobal(NewVariable("x", cbtype.Value{Tag: cbtype.Int, IntVal: 1}, false, false))
	st.Push()
	st.Declare(NewVariable("x", cbtype.Value{Tag: cbtype.Int, IntVal: 2}, false, false))

	v, ok := st.Find("x")
	if !ok || v.Value.IntVal != 2 {
		t.Fatalf("expected inner x=2, got %v ok=%v", v, ok)
	}
	st.Pop()
	v, ok = st.Find("x")
	if !ok || v.Value.IntVal != 1 {
		t.Fatalf("expected outer x=1 after pop, got %v ok=%v", v, ok)
	}
}

func TestPopNeverDropsGlobalScope(t *testing.T) {
	st := NewStack()
	st.Pop()
	if st.Depth() != 1 {
		t.Fatalf("popping the only scope should be a no-op, depth = %d", st.Depth())
	}
}

func TestAssignRejectsConstReassignment(t *testing.T) {
	v := NewVariable("c", cbtype.Value{Tag: cbtype.Int, IntVal: 5}, true, false)
	v.IsAssigned = true
	err := Assign(v, cbtype.Value{Tag: cbtype.Int, IntVal: 6}, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeConstReassign) {
		t.Fatalf("expected ConstReassign, got %v", err)
	}
	if v.Value.IntVal != 5 {
		t.Fatalf("rejected assignment must leave the variable unchanged, got %d", v.Value.IntVal)
	}
}

func TestAssignAllowsFirstConstAssignment(t *testing.T) {
	v := NewVariable("c", cbtype.Value{Tag: cbtype.Int}, true, false)
	if err := Assign(v, cbtype.Value{Tag: cbtype.Int, IntVal: 42}, ast.NoPos); err != nil {
		t.Fatalf("first const assignment should succeed: %v", err)
	}
	if v.Value.IntVal != 42 {
		t.Fatalf("expected 42, got %d", v.Value.IntVal)
	}
}

func TestAssignEnforcesRange(t *testing.T) {
	v := NewVariable("t", cbtype.Value{Tag: cbtype.Tiny}, false, false)
	err := Assign(v, cbtype.Value{Tag: cbtype.Tiny, IntVal: 128}, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeTypeRangeError) {
		t.Fatalf("expected TypeRangeError, got %v", err)
	}
}

func TestAssignClampsUnsignedNegative(t *testing.T) {
	v := NewVariable("u", cbtype.Value{Tag: cbtype.Int}, false, true)
	if err := Assign(v, cbtype.Value{Tag: cbtype.Int, IntVal: -5}, ast.NoPos); err != nil {
		t.Fatalf("unsigned negative assignment should clamp, not fail: %v", err)
	}
	if v.Value.IntVal != 0 {
		t.Fatalf("expected clamp to 0, got %d", v.Value.IntVal)
	}
}

func TestStaticDeclareOnlyOnFirstEncounter(t *testing.T) {
	st := NewStack()
	first := NewVariable("x", cbtype.Value{Tag: cbtype.Int, IntVal: 1}, false, false)
	v1, created1 := st.DeclareStatic("f", first)
	if !created1 {
		t.Fatalf("first DeclareStatic should report created=true")
	}
	second := NewVariable("x", cbtype.Value{Tag: cbtype.Int, IntVal: 99}, false, false)
	v2, created2 := st.DeclareStatic("f", second)
	if created2 {
		t.Fatalf("second DeclareStatic should report created=false")
	}
	if v1 != v2 || v2.Value.IntVal != 1 {
		t.Fatalf("expected the original static variable to survive, got %v", v2.Value)
	}
}

func TestResolvePathWalksChildren(t *testing.T) {
	inner := &Variable{Name: "y", Value: cbtype.Value{Tag: cbtype.Int, IntVal: 7}}
	mid := &Variable{Name: "b", Children: map[string]*Variable{"y": inner}}
	root := &Variable{Name: "a", Children: map[string]*Variable{"b": mid}}

	got, err := ResolvePath(root, []string{"b", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value.IntVal != 7 {
		t.Fatalf("expected 7, got %d", got.Value.IntVal)
	}
}

func TestResolvePathUnknownMember(t *testing.T) {
	root := &Variable{Name: "a", Children: map[string]*Variable{}}
	_, err := ResolvePath(root, []string{"missing"})
	if !cberr.Is(err, diagnostic.CodeUnknownStructMember) {
		t.Fatalf("expected UnknownStructMember, got %v", err)
	}
}

func TestCheckPrivateAccess(t *testing.T) {
	member := &Variable{Name: "n", IsPrivate: true}
	if err := CheckPrivateAccess(member, "Counter", true, "Counter"); err != nil {
		t.Fatalf("self access from the owning struct's method should be allowed: %v", err)
	}
	if err := CheckPrivateAccess(member, "Counter", false, ""); err == nil {
		t.Fatalf("expected PrivateMemberAccess for outside access")
	}
	if err := CheckPrivateAccess(member, "Counter", false, "Counter"); err != nil {
		t.Fatalf("access not through self, but from a method whose impl struct matches the owner, should be allowed: %v", err)
	}
}
