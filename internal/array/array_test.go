package array

import (
	"testing"

	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
)

func leaf(i int64) Nested {
	v := cbtype.Value{Tag: cbtype.Int, IntVal: i}
	return Nested{Leaf: &v}
}

func TestFlatIndexRowMajor(t *testing.T) {
	dims := []int{2, 3}
	// index [1][2] in a 2x3 array should be 1*3+2 = 5
	got, err := FlatIndex(dims, []int{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestFlatIndexOutOfBounds(t *testing.T) {
	_, err := FlatIndex([]int{2, 3}, []int{2, 0})
	if !cberr.Is(err, diagnostic.CodeArrayOutOfBounds) {
		t.Fatalf("expected ArrayOutOfBounds, got %v", err)
	}
}

func TestBuildFromNestedRoundTrip(t *testing.T) {
	lit := Nested{Elements: []Nested{
		{Elements: []Nested{leaf(1), leaf(2), leaf(3)}},
		{Elements: []Nested{leaf(4), leaf(5), leaf(6)}},
	}}
	arr, err := BuildFromNested(cbtype.Int, false, []int{2, 3}, lit, ast.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := Get(arr, []int{1, 1}, ast.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IntVal != 5 {
		t.Fatalf("expected 5, got %d", v.IntVal)
	}
}

func TestBuildFromNestedShapeMismatch(t *testing.T) {
	lit := Nested{Elements: []Nested{leaf(1), leaf(2)}}
	_, err := BuildFromNested(cbtype.Int, false, []int{3}, lit, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeArrayShapeMismatch) {
		t.Fatalf("expected ArrayShapeMismatch, got %v", err)
	}
}

func TestSetRejectsConstArray(t *testing.T) {
	arr := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{2}, Flat: make([]cbtype.Value, 2), IsConst: true}
	err := Set(arr, []int{0}, cbtype.Value{Tag: cbtype.Int, IntVal: 1}, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeConstArrayAssign) {
		t.Fatalf("expected ConstArrayAssign, got %v", err)
	}
}

func TestSetEnforcesRange(t *testing.T) {
	arr := &cbtype.ArrayValue{ElemTag: cbtype.Tiny, Dims: []int{1}, Flat: make([]cbtype.Value, 1)}
	err := Set(arr, []int{0}, cbtype.Value{Tag: cbtype.Tiny, IntVal: 999}, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeTypeRangeError) {
		t.Fatalf("expected TypeRangeError, got %v", err)
	}
}

func TestSliceFixesLeadingDimension(t *testing.T) {
	arr := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{2, 3}, Flat: []cbtype.Value{
		{Tag: cbtype.Int, IntVal: 1}, {Tag: cbtype.Int, IntVal: 2}, {Tag: cbtype.Int, IntVal: 3},
		{Tag: cbtype.Int, IntVal: 4}, {Tag: cbtype.Int, IntVal: 5}, {Tag: cbtype.Int, IntVal: 6},
	}}
	row, err := Slice(arr, []int{1}, ast.NoPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(row.Dims) != 1 || row.Dims[0] != 3 {
		t.Fatalf("expected shape [3], got %v", row.Dims)
	}
	if row.Flat[0].IntVal != 4 || row.Flat[2].IntVal != 6 {
		t.Fatalf("unexpected slice contents: %v", row.Flat)
	}
}

func TestCopyIntoRejectsShapeMismatch(t *testing.T) {
	dst := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{2}, Flat: make([]cbtype.Value, 2)}
	src := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{3}, Flat: make([]cbtype.Value, 3)}
	err := CopyInto(dst, src, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeArrayShapeMismatch) {
		t.Fatalf("expected ArrayShapeMismatch, got %v", err)
	}
}

func TestCopyIntoDeepCopies(t *testing.T) {
	dst := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{1}, Flat: make([]cbtype.Value, 1)}
	src := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{1}, Flat: []cbtype.Value{{Tag: cbtype.Int, IntVal: 9}}}
	if err := CopyInto(dst, src, ast.NoPos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.Flat[0].IntVal = 100
	if dst.Flat[0].IntVal != 9 {
		t.Fatalf("copy must be independent of the source, got %d", dst.Flat[0].IntVal)
	}
}

func TestToCanonical3DPadsLowerRank(t *testing.T) {
	arr := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{4}, Flat: make([]cbtype.Value, 4)}
	c := ToCanonical3D(arr)
	if len(c.Dims) != 3 || c.Dims[0] != 1 || c.Dims[1] != 1 || c.Dims[2] != 4 {
		t.Fatalf("expected [1,1,4], got %v", c.Dims)
	}
}

func TestFromCanonical3DRejectsLengthMismatch(t *testing.T) {
	canonical := &cbtype.ArrayValue{ElemTag: cbtype.Int, Dims: []int{1, 1, 5}, Flat: make([]cbtype.Value, 5)}
	_, err := FromCanonical3D([]int{3}, canonical, ast.NoPos)
	if !cberr.Is(err, diagnostic.CodeDynamicArrayNotSupported) {
		t.Fatalf("expected DynamicArrayNotSupported, got %v", err)
	}
}
