package dce

import (
	"testing"

	"github.com/cb-lang/cb/internal/parser"
)

func TestFindUnreachableFlagsUncalledFunction(t *testing.T) {
	p := parser.New("t.cb", `
int helper() { return 1; }
int dead() { return 2; }
int main() { return helper(); }
`)
	prog, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	unreachable := FindUnreachable(prog)
	if len(unreachable) != 1 || unreachable[0] != "dead" {
		t.Fatalf("expected [dead], got %v", unreachable)
	}
}

func TestFindUnreachableNoFalsePositiveOnExprStmtCall(t *testing.T) {
	p := parser.New("t.cb", `
int helper() { return 1; }
int main() { helper(); return 0; }
`)
	prog, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	unreachable := FindUnreachable(prog)
	if len(unreachable) != 0 {
		t.Fatalf("expected helper() call as a bare statement to be tracked, got unreachable=%v", unreachable)
	}
}
