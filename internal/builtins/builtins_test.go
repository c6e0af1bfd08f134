package builtins

import (
	"testing"

	"github.com/cb-lang/cb/internal/cbtype"
)

func TestEvalLenString(t *testing.T) {
	n, ok := EvalLen(cbtype.Value{Tag: cbtype.String, Str: "aあb"})
	if !ok || n != 3 {
		t.Fatalf("expected 3 code points, got %d ok=%v", n, ok)
	}
}

func TestEvalLenArray(t *testing.T) {
	arr := &cbtype.ArrayValue{Dims: []int{4, 2}}
	n, ok := EvalLen(cbtype.Value{Arr: arr})
	if !ok || n != 4 {
		t.Fatalf("expected outer dimension 4, got %d ok=%v", n, ok)
	}
}

func TestResolveOverloadLen(t *testing.T) {
	b := Lookup("len")
	if b == nil {
		t.Fatalf("expected len to be registered")
	}
	tag, ok := ResolveOverload(b, []cbtype.Value{{Tag: cbtype.String, Str: "hi"}})
	if !ok || tag != cbtype.Int {
		t.Fatalf("expected Int, got %s ok=%v", tag, ok)
	}
	_, ok = ResolveOverload(b, []cbtype.Value{{Tag: cbtype.Int, IntVal: 1}})
	if ok {
		t.Fatalf("len(int) should not resolve")
	}
}
