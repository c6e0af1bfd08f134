package api

import (
	"testing"

	cbtest "github.com/cb-lang/cb/internal/test"
)

func run(t *testing.T, source string) Result {
	t.Helper()
	r := Run("test.cb", source, Options{})
	if len(r.Errors) > 0 {
		t.Fatalf("parse errors: %v", r.Errors)
	}
	return r
}

func TestArithmeticAndWidening(t *testing.T) {
	r := run(t, `
int main() {
    int a = 10; int b = 5;
    println(a + b);
    println(a - b);
    long l = 30000; println(l);
    return 0;
}
`)
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	cbtest.AssertEqualWithDiff(t, r.Stdout, "15\n5\n30000\n")
	cbtest.AssertEqual(t, r.ExitCode, 0)
}

func TestRangeViolationIsFatal(t *testing.T) {
	r := run(t, `
int main() {
    tiny t = 128;
    println(t);
    return 0;
}
`)
	if r.Err == nil {
		t.Fatal("expected a fatal range error")
	}
	if r.Stdout != "" {
		t.Fatalf("expected nothing printed before the fatal error, got %q", r.Stdout)
	}
}

func Test2DArrayLiteralRoundTrip(t *testing.T) {
	r := run(t, `
int main() {
    int[2][3] m = [[1,2,3],[4,5,6]];
    println(m[0][0]);
    println(m[1][2]);
    m[0][1] = 99;
    println(m[0][1]);
    return 0;
}
`)
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	cbtest.AssertEqualWithDiff(t, r.Stdout, "1\n6\n99\n")
}

func TestUTF8StringIndexing(t *testing.T) {
	r := run(t, `
int main() {
    string s = "aあb";
    println(len(s));
    println(s[1]);
    s[0] = "X";
    println(s);
    return 0;
}
`)
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	cbtest.AssertEqualWithDiff(t, r.Stdout, "3\nあ\nXあb\n")
}

func TestStructMethodWithPrivateMember(t *testing.T) {
	r := run(t, `
struct Counter { private: int n; };
interface Tick { int next(); };
impl Tick for Counter { int next() { self.n = self.n + 1; return self.n; } };
int main() {
    Counter c = {0};
    println(c.next());
    println(c.next());
    return 0;
}
`)
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	cbtest.AssertEqualWithDiff(t, r.Stdout, "1\n2\n")
}

func TestPrivateMemberAccessFromOutsideIsFatal(t *testing.T) {
	r := run(t, `
struct Counter { private: int n; };
interface Tick { int next(); };
impl Tick for Counter { int next() { self.n = self.n + 1; return self.n; } };
int main() {
    Counter c = {0};
    c.next();
    println(c.n);
    return 0;
}
`)
	if r.Err == nil {
		t.Fatal("expected a fatal PrivateMemberAccess error")
	}
}

func TestEarlyBreakFromNestedFor(t *testing.T) {
	r := run(t, `
int main() {
    int found = 0;
    for (int i = 0; i < 3; i = i + 1) {
        for (int j = 0; j < 3; j = j + 1) {
            if (i == 1 && j == 2) { found = i*10 + j; break; }
        }
    }
    println(found);
    return 0;
}
`)
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	cbtest.AssertEqualWithDiff(t, r.Stdout, "12\n")
}

func TestMainNotFoundIsFatal(t *testing.T) {
	r := run(t, `
int helper() { return 1; }
`)
	if r.Err == nil {
		t.Fatal("expected a fatal MainNotFound error")
	}
	if r.ExitCode == 0 {
		t.Fatal("expected a non-zero exit code")
	}
}

func TestDebugProducesTraceAndProfile(t *testing.T) {
	r := Run("test.cb", `
int add(int a, int b) { return a + b; }
int main() {
    println(add(1, 2));
    return 0;
}
`, Options{Debug: true})
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	if r.Trace == "" {
		t.Fatal("expected a non-empty execution trace in debug mode")
	}
	if len(r.Profile) == 0 {
		t.Fatal("expected non-empty profile bytes in debug mode")
	}
}

func TestUnreachableFunctionWarns(t *testing.T) {
	r := Run("test.cb", `
int unused() { return 0; }
int main() {
    println(1);
    return 0;
}
`, Options{WarnUnreachable: true})
	if r.Err != nil {
		t.Fatalf("unexpected runtime error: %v", r.Err)
	}
	found := false
	for _, w := range r.Warnings {
		if w != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a warning about the unused function")
	}
}
