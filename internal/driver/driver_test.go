package driver

import (
	"bytes"
	"io"
	"testing"

	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/interp"
	"github.com/cb-lang/cb/internal/parser"
	"github.com/cb-lang/cb/internal/printer"
	"github.com/cb-lang/cb/internal/structure"
	cbtest "github.com/cb-lang/cb/internal/test"
	"github.com/cb-lang/cb/internal/typemgr"
)

func setup(t *testing.T, source string) (*interp.Interp, *bytes.Buffer) {
	t.Helper()
	p := parser.New("test.cb", source)
	program, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	var stdout bytes.Buffer
	types := typemgr.New()
	structs := structure.New()
	tracer := printer.New(io.Discard, printer.Options{})
	in := interp.New(types, structs, tracer, &stdout, 2000, "test.cb", source)
	if err := RegisterGlobals(in, types, structs, program); err != nil {
		t.Fatalf("RegisterGlobals: %v", err)
	}
	return in, &stdout
}

func TestConstGlobalVisibleToArraySizeExpr(t *testing.T) {
	// pass (a) registers N before pass (b) sizes the array against it.
	in, stdout := setup(t, `
const int N = 3;
int[N] xs = [1, 2, 3];
int main() {
    println(xs[2]);
    return 0;
}
`)
	code, err := RunMain(in)
	if err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	cbtest.AssertEqual(t, code, 0)
	cbtest.AssertEqualWithDiff(t, stdout.String(), "3\n")
}

func TestStructTypedefAliasRegistersBothNames(t *testing.T) {
	in, stdout := setup(t, `
typedef struct Pt { int x; int y; } Point;
int main() {
    Point p = {1, 2};
    Pt q = {1, 2};
    println(p.x + q.y);
    return 0;
}
`)
	code, err := RunMain(in)
	if err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	cbtest.AssertEqual(t, code, 0)
	cbtest.AssertEqualWithDiff(t, stdout.String(), "3\n")
}

func TestImplSeesStructRegisteredEarlier(t *testing.T) {
	// impl (pass h) runs after struct (pass c) and interface (pass g),
	// so a method body referencing the struct's members must resolve.
	in, stdout := setup(t, `
struct Box { int v; };
interface Getter { int get(); };
impl Getter for Box { int get() { return self.v; } };
int main() {
    Box b = {42};
    println(b.get());
    return 0;
}
`)
	code, err := RunMain(in)
	if err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	cbtest.AssertEqual(t, code, 0)
	cbtest.AssertEqualWithDiff(t, stdout.String(), "42\n")
}

func TestMainNotFoundFails(t *testing.T) {
	in, _ := setup(t, `int helper() { return 1; }`)
	_, err := RunMain(in)
	if !cberr.Is(err, diagnostic.CodeMainNotFound) {
		t.Fatalf("expected MainNotFound, got %v", err)
	}
}

func TestMainExitCodeIsIntegerReturn(t *testing.T) {
	in, _ := setup(t, `
int main() {
    return 7;
}
`)
	code, err := RunMain(in)
	if err != nil {
		t.Fatalf("RunMain: %v", err)
	}
	cbtest.AssertEqual(t, code, 7)
}
