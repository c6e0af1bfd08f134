package parser

import (
	"testing"

	"github.com/cb-lang/cb/internal/ast"
)

func parseOk(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := New("test.cb", source)
	program, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return program
}

func TestParseFuncDecl(t *testing.T) {
	program := parseOk(t, `int add(int a, int b) { return a + b; }`)
	if len(program.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(program.Decls))
	}
	fn, ok := program.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("expected *ast.FuncDecl, got %T", program.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(fn.Body.Stmts))
	}
}

func TestParseArrayDeclWithLiteral(t *testing.T) {
	program := parseOk(t, `int[2][3] m = [[1,2,3],[4,5,6]];`)
	ad, ok := program.Decls[0].(*ast.ArrayDecl)
	if !ok {
		t.Fatalf("expected *ast.ArrayDecl, got %T", program.Decls[0])
	}
	if len(ad.ElemType.ArrayDims) != 2 {
		t.Fatalf("expected 2 array dims, got %d", len(ad.ElemType.ArrayDims))
	}
	if ad.Literal == nil || len(ad.Literal.Elements) != 2 {
		t.Fatalf("expected a 2-row literal, got %+v", ad.Literal)
	}
}

func TestParseStructWithPrivateSection(t *testing.T) {
	program := parseOk(t, `struct Counter { private: int n; };`)
	sd, ok := program.Decls[0].(*ast.StructDecl)
	if !ok {
		t.Fatalf("expected *ast.StructDecl, got %T", program.Decls[0])
	}
	if len(sd.Members) != 1 || !sd.Members[0].IsPrivate {
		t.Fatalf("expected one private member, got %+v", sd.Members)
	}
}

func TestParseInterfaceAndImpl(t *testing.T) {
	program := parseOk(t, `
interface Tick { int next(); };
impl Tick for Counter { int next() { return 1; } };
`)
	if len(program.Decls) != 2 {
		t.Fatalf("expected 2 decls, got %d", len(program.Decls))
	}
	id, ok := program.Decls[0].(*ast.InterfaceDecl)
	if !ok || id.Name != "Tick" || len(id.Methods) != 1 {
		t.Fatalf("interface decl = %+v", program.Decls[0])
	}
	impl, ok := program.Decls[1].(*ast.ImplDecl)
	if !ok || impl.InterfaceName != "Tick" || impl.StructName != "Counter" {
		t.Fatalf("impl decl = %+v", program.Decls[1])
	}
}

func TestParseEnumDecl(t *testing.T) {
	program := parseOk(t, `enum Color { A, B, C = 10, D };`)
	ed, ok := program.Decls[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected *ast.EnumDecl, got %T", program.Decls[0])
	}
	if len(ed.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(ed.Members))
	}
}

func TestParseStructTypedef(t *testing.T) {
	program := parseOk(t, `typedef struct Point { int x; int y; } Point;`)
	st, ok := program.Decls[0].(*ast.StructTypedefDecl)
	if !ok {
		t.Fatalf("expected *ast.StructTypedefDecl, got %T", program.Decls[0])
	}
	if st.Alias != "Point" || st.Struct.Name != "Point" || len(st.Struct.Members) != 2 {
		t.Fatalf("struct typedef = %+v", st)
	}
}

func TestParseUnionTypedef(t *testing.T) {
	program := parseOk(t, `union Choice = 1 | 2 | 3;`)
	ut, ok := program.Decls[0].(*ast.UnionTypedefDecl)
	if !ok {
		t.Fatalf("expected *ast.UnionTypedefDecl, got %T", program.Decls[0])
	}
	if ut.Alias != "Choice" || len(ut.Members) != 3 {
		t.Fatalf("union typedef = %+v", ut)
	}
}

func TestParseForAndNestedIf(t *testing.T) {
	program := parseOk(t, `
int main() {
    int found = 0;
    for (int i = 0; i < 3; i = i + 1) {
        if (i == 1) { found = i; break; }
    }
    return found;
}
`)
	fn := program.Decls[0].(*ast.FuncDecl)
	if len(fn.Body.Stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body.Stmts))
	}
	if _, ok := fn.Body.Stmts[1].(*ast.ForStmt); !ok {
		t.Fatalf("expected a ForStmt, got %T", fn.Body.Stmts[1])
	}
}

func TestParseErrorsAccumulateWithoutPanicking(t *testing.T) {
	p := New("test.cb", `int x = ;`)
	_, errs := p.Parse()
	if len(errs) == 0 {
		t.Fatal("expected at least one parse error")
	}
}
