package printer

import (
	"strings"
	"testing"
)

func TestTracerNoopWhenDisabled(t *testing.T) {
	var buf strings.Builder
	tr := New(&buf, Options{Enabled: false})
	tr.EnterCall("f", nil)
	tr.Assign("x", "1")
	tr.ExitCall("f", "1")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when disabled, got %q", buf.String())
	}
}

func TestTracerIndentsNestedCalls(t *testing.T) {
	var buf strings.Builder
	tr := New(&buf, Options{Enabled: true})
	tr.EnterCall("outer", nil)
	tr.EnterCall("inner", []string{"1", "2"})
	tr.ExitCall("inner", "3")
	tr.ExitCall("outer", "")
	out := buf.String()
	if !strings.Contains(out, "-> outer()") {
		t.Errorf("missing outer entry: %q", out)
	}
	if !strings.Contains(out, "  -> inner(1, 2)") {
		t.Errorf("expected indented inner entry: %q", out)
	}
	if !strings.Contains(out, "  <- inner = 3") {
		t.Errorf("expected indented inner exit with value: %q", out)
	}
	if !strings.Contains(out, "<- outer\n") {
		t.Errorf("expected void outer exit: %q", out)
	}
}
