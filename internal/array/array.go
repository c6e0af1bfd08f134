// Package array is the array subsystem (component C4): flat-index
// math for row-major N-dimensional storage, literal-to-storage
// construction with shape validation, bounds-checked element access,
// sub-cuboid slicing, whole-array copy, and the 3-D canonical form
// used to pass arrays through a function return.
package array

import (
	"github.com/cb-lang/cb/internal/ast"
	"github.com/cb-lang/cb/internal/cberr"
	"github.com/cb-lang/cb/internal/cbtype"
	"github.com/cb-lang/cb/internal/diagnostic"
)

// FlatIndex computes the row-major flat offset for indices into an
// array of the given shape, per §4.4:
//
//	flat = iₙ₋₁ + dₙ₋₁·(iₙ₋₂ + dₙ₋₂·(… + d₁·i₀))
//
// i.e. the last dimension varies fastest.
func FlatIndex(dims []int, indices []int) (int, error) {
	if len(indices) != len(dims) {
		return 0, cberr.New(diagnostic.CodeArrayOutOfBounds, ast.NoPos,
			"expected %d indices, got %d", len(dims), len(indices))
	}
	flat := 0
	for k := 0; k < len(dims); k++ {
		if indices[k] < 0 || indices[k] >= dims[k] {
			return 0, cberr.New(diagnostic.CodeArrayOutOfBounds, ast.NoPos,
				"index %d out of bounds for dimension %d (size %d)", indices[k], k, dims[k])
		}
		flat = flat*dims[k] + indices[k]
	}
	return flat, nil
}

// Get reads the element at indices.
func Get(arr *cbtype.ArrayValue, indices []int, pos ast.Pos) (cbtype.Value, error) {
	flat, err := FlatIndex(arr.Dims, indices)
	if err != nil {
		return cbtype.Value{}, reposition(err, pos)
	}
	return arr.Flat[flat], nil
}

// Set writes val at indices, rejecting a const array target.
func Set(arr *cbtype.ArrayValue, indices []int, val cbtype.Value, pos ast.Pos) error {
	if arr.IsConst {
		return cberr.New(diagnostic.CodeConstArrayAssign, pos, "cannot assign into a const array")
	}
	flat, err := FlatIndex(arr.Dims, indices)
	if err != nil {
		return reposition(err, pos)
	}
	if val.Tag.IsInteger() {
		if err := cbtype.RangeCheck(arr.ElemTag, val.IntVal, arr.ElemUnsigned); err != nil {
			return cberr.New(diagnostic.CodeTypeRangeError, pos, "%s", err)
		}
	}
	arr.Flat[flat] = val
	return nil
}

func reposition(err error, pos ast.Pos) error {
	if ce, ok := err.(*cberr.Error); ok {
		ce.Pos = pos
		return ce
	}
	return err
}

// ----------------------------------------------------------------------------
// Literal construction
// ----------------------------------------------------------------------------

// Nested is an already-evaluated array literal tree: a Leaf value or
// a slice of nested sub-arrays, mirroring ast.ArrayLiteral once the
// evaluator has resolved every element expression to a cbtype.Value.
type Nested struct {
	Leaf     *cbtype.Value
	Elements []Nested
}

// BuildFromNested walks lit depth-first against the declared
// dimension sizes dims, failing with ArrayShapeMismatch if the nesting
// depth or any level's length disagrees with dims, and range-checking
// every leaf against elemTag/elemUnsigned.
func BuildFromNested(elemTag cbtype.Tag, elemUnsigned bool, dims []int, lit Nested, pos ast.Pos) (*cbtype.ArrayValue, error) {
	total := 1
	for _, d := range dims {
		total *= d
	}
	arr := &cbtype.ArrayValue{
		ElemTag: elemTag, ElemUnsigned: elemUnsigned,
		Dims: append([]int(nil), dims...), Flat: make([]cbtype.Value, total),
	}
	next := 0
	var walk func(n Nested, depth int) error
	walk = func(n Nested, depth int) error {
		if depth == len(dims) {
			if n.Leaf == nil {
				return cberr.New(diagnostic.CodeArrayShapeMismatch, pos,
					"expected a scalar at depth %d, found a nested array", depth)
			}
			v := *n.Leaf
			if v.Tag.IsInteger() {
				if err := cbtype.RangeCheck(elemTag, v.IntVal, elemUnsigned); err != nil {
					return cberr.New(diagnostic.CodeTypeRangeError, pos, "%s", err)
				}
			}
			arr.Flat[next] = v
			next++
			return nil
		}
		if n.Leaf != nil {
			return cberr.New(diagnostic.CodeArrayShapeMismatch, pos,
				"expected a nested array at depth %d, found a scalar", depth)
		}
		if len(n.Elements) != dims[depth] {
			return cberr.New(diagnostic.CodeArrayShapeMismatch, pos,
				"dimension %d: expected %d elements, got %d", depth, dims[depth], len(n.Elements))
		}
		for _, e := range n.Elements {
			if err := walk(e, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(lit, 0); err != nil {
		return nil, err
	}
	return arr, nil
}

// ----------------------------------------------------------------------------
// Slicing and copy
// ----------------------------------------------------------------------------

// Slice copies the sub-cuboid of arr fixed at the leading indices in
// fixedIndices, per §4.4. The result keeps the remaining (trailing)
// dimensions.
func Slice(arr *cbtype.ArrayValue, fixedIndices []int, pos ast.Pos) (*cbtype.ArrayValue, error) {
	if len(fixedIndices) >= len(arr.Dims) {
		return nil, cberr.New(diagnostic.CodeArrayOutOfBounds, pos, "slice fixes all dimensions, nothing remains")
	}
	for k, idx := range fixedIndices {
		if idx < 0 || idx >= arr.Dims[k] {
			return nil, cberr.New(diagnostic.CodeArrayOutOfBounds, pos,
				"index %d out of bounds for dimension %d (size %d)", idx, k, arr.Dims[k])
		}
	}
	remaining := arr.Dims[len(fixedIndices):]
	span := 1
	for _, d := range remaining {
		span *= d
	}
	start := 0
	for k, idx := range fixedIndices {
		stride := 1
		for _, d := range arr.Dims[k+1:] {
			stride *= d
		}
		start += idx * stride
	}
	out := &cbtype.ArrayValue{
		ElemTag: arr.ElemTag, ElemUnsigned: arr.ElemUnsigned,
		Dims: append([]int(nil), remaining...), Flat: make([]cbtype.Value, span),
	}
	for i := 0; i < span; i++ {
		out.Flat[i] = arr.Flat[start+i].Clone()
	}
	return out, nil
}

// CopyInto deep-copies src's storage into dst, requiring an identical
// shape and the same base element tag (§4.4's whole-array assignment
// rule).
func CopyInto(dst, src *cbtype.ArrayValue, pos ast.Pos) error {
	if dst.IsConst {
		return cberr.New(diagnostic.CodeConstArrayAssign, pos, "cannot assign into a const array")
	}
	if src.ElemTag != dst.ElemTag {
		return cberr.New(diagnostic.CodeTypeMismatch, pos,
			"cannot assign %s array to %s array", src.ElemTag, dst.ElemTag)
	}
	if len(src.Dims) != len(dst.Dims) {
		return cberr.New(diagnostic.CodeArrayShapeMismatch, pos, "array rank mismatch")
	}
	for i := range src.Dims {
		if src.Dims[i] != dst.Dims[i] {
			return cberr.New(diagnostic.CodeArrayShapeMismatch, pos,
				"array shape mismatch at dimension %d: %d vs %d", i, src.Dims[i], dst.Dims[i])
		}
	}
	dst.Flat = make([]cbtype.Value, len(src.Flat))
	for i, v := range src.Flat {
		dst.Flat[i] = v.Clone()
	}
	return nil
}

// ----------------------------------------------------------------------------
// 3-D canonical return form
// ----------------------------------------------------------------------------

// ToCanonical3D reshapes arr into the always-rank-3 form used to carry
// an array across a function return (§4.4): lower-rank arrays are
// padded with leading dimensions of size 1 so the flat storage order
// is unchanged.
func ToCanonical3D(arr *cbtype.ArrayValue) *cbtype.ArrayValue {
	dims := make([]int, 3)
	for i := 0; i < 3; i++ {
		dims[i] = 1
	}
	switch {
	case len(arr.Dims) >= 3:
		dims[0], dims[1], dims[2] = arr.Dims[0], arr.Dims[1], arr.Dims[2]
		for i := 3; i < len(arr.Dims); i++ {
			dims[2] *= arr.Dims[i]
		}
	case len(arr.Dims) == 2:
		dims[1], dims[2] = arr.Dims[0], arr.Dims[1]
	case len(arr.Dims) == 1:
		dims[2] = arr.Dims[0]
	}
	return &cbtype.ArrayValue{
		ElemTag: arr.ElemTag, ElemUnsigned: arr.ElemUnsigned,
		Dims: dims, Flat: append([]cbtype.Value(nil), arr.Flat...),
	}
}

// FromCanonical3D reshapes a 3-D canonical array back into declared
// shape, failing if the flat length disagrees — the receiver's
// declared size is the only thing that can catch a caller returning
// the wrong number of elements, since dynamic-length arrays aren't
// supported.
func FromCanonical3D(declaredDims []int, canonical *cbtype.ArrayValue, pos ast.Pos) (*cbtype.ArrayValue, error) {
	want := 1
	for _, d := range declaredDims {
		want *= d
	}
	if want != len(canonical.Flat) {
		return nil, cberr.New(diagnostic.CodeDynamicArrayNotSupported, pos,
			"returned array has %d elements, declared shape expects %d", len(canonical.Flat), want)
	}
	return &cbtype.ArrayValue{
		ElemTag: canonical.ElemTag, ElemUnsigned: canonical.ElemUnsigned,
		Dims: append([]int(nil), declaredDims...), Flat: append([]cbtype.Value(nil), canonical.Flat...),
	}, nil
}
