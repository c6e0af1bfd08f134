package interp_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/diagnostic"
	"github.com/cb-lang/cb/internal/driver"
	"github.com/cb-lang/cb/internal/interp"
	"github.com/cb-lang/cb/internal/parser"
	"github.com/cb-lang/cb/internal/printer"
	"github.com/cb-lang/cb/internal/structure"
	cbtest "github.com/cb-lang/cb/internal/test"
	"github.com/cb-lang/cb/internal/typemgr"
)

func run(t *testing.T, source string) (int, error, string) {
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
	if err := driver.RegisterGlobals(in, types, structs, program); err != nil {
		return 1, err, stdout.String()
	}
	code, err := driver.RunMain(in)
	return code, err, stdout.String()
}

func TestStaticVariablePersistsAcrossCalls(t *testing.T) {
	_, err, out := run(t, `
int counter() {
    static int x = 0;
    x = x + 1;
    return x;
}
int main() {
    println(counter());
    println(counter());
    println(counter());
    return 0;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbtest.AssertEqualWithDiff(t, out, "1\n2\n3\n")
}

func TestReferenceReturnOfLocalIsRejected(t *testing.T) {
	_, err, _ := run(t, `
int& bad() {
    int local = 5;
    return local;
}
int main() {
    int& r = bad();
    return 0;
}
`)
	if !cberr.Is(err, diagnostic.CodeTypeMismatch) {
		t.Fatalf("expected TypeMismatch for dangling reference return, got %v", err)
	}
}

func TestReferenceReturnOfParameterIsAllowed(t *testing.T) {
	// x is a reference parameter (an alias of main's a, marked
	// IsReference), so returning a reference to it must not be rejected
	// even though x is bound in the callee's own scope.
	_, err, out := run(t, `
int& identity(int& x) {
    return x;
}
int main() {
    int a = 9;
    int& r = identity(a);
    println(r);
    return 0;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbtest.AssertEqualWithDiff(t, out, "9\n")
}

func TestUnsignedClampOnNegativeAssignment(t *testing.T) {
	_, err, out := run(t, `
int main() {
    unsigned int u = 5;
    u = -1;
    println(u);
    return 0;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbtest.AssertEqualWithDiff(t, out, "0\n")
}

func TestConstReassignmentFails(t *testing.T) {
	_, err, _ := run(t, `
int main() {
    const int x = 1;
    x = 2;
    return 0;
}
`)
	if !cberr.Is(err, diagnostic.CodeConstReassign) {
		t.Fatalf("expected ConstReassign, got %v", err)
	}
}

func TestDivisionByZeroFails(t *testing.T) {
	_, err, _ := run(t, `
int main() {
    int a = 1;
    int b = 0;
    println(a / b);
    return 0;
}
`)
	if !cberr.Is(err, diagnostic.CodeDivisionByZero) {
		t.Fatalf("expected DivisionByZero, got %v", err)
	}
}

func TestUnionConstraintViolationFails(t *testing.T) {
	_, err, _ := run(t, `
union Choice = 1 | 2 | 3;
int main() {
    Choice c = 1;
    c = 7;
    return 0;
}
`)
	if !cberr.Is(err, diagnostic.CodeUnionConstraintViolation) {
		t.Fatalf("expected UnionConstraintViolation, got %v", err)
	}
}

func TestEnumAutoIncrementFromPrevious(t *testing.T) {
	_, err, out := run(t, `
enum Color { A, B, C = 10, D };
int main() {
    println(Color::A);
    println(Color::B);
    println(Color::C);
    println(Color::D);
    return 0;
}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cbtest.AssertEqualWithDiff(t, out, "0\n1\n10\n11\n")
}

func TestArrayOutOfBoundsFails(t *testing.T) {
	_, err, _ := run(t, `
int main() {
    int[3] xs = [1, 2, 3];
    println(xs[3]);
    return 0;
}
`)
	if !cberr.Is(err, diagnostic.CodeArrayOutOfBounds) {
		t.Fatalf("expected ArrayOutOfBounds, got %v", err)
	}
}
