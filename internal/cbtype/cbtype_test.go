package cbtype

import "testing"

func TestRangeCheckSigned(t *testing.T) {
	cases := []struct {
		tag  Tag
		val  int64
		want bool // true = in range
	}{
		{Tiny, 127, true}, {Tiny, 128, false}, {Tiny, -128, true}, {Tiny, -129, false},
		{Short, 32767, true}, {Short, 32768, false},
		{Int, 1<<31 - 1, true}, {Int, 1 << 31, false},
	}
	for _, c := range cases {
		err := RangeCheck(c.tag, c.val, false)
		got := err == nil
		if got != c.want {
			t.Errorf("RangeCheck(%s, %d, false) in-range = %v, want %v", c.tag, c.val, got, c.want)
		}
	}
}

func TestRangeCheckUnsigned(t *testing.T) {
	if err := RangeCheck(Tiny, -1, true); err == nil {
		t.Errorf("expected error assigning -1 to unsigned tiny")
	}
	if err := RangeCheck(Tiny, 255, true); err != nil {
		t.Errorf("unexpected error for unsigned tiny 255: %v", err)
	}
	if err := RangeCheck(Tiny, 256, true); err == nil {
		t.Errorf("expected error for unsigned tiny 256")
	}
}

func TestClampUnsignedNegative(t *testing.T) {
	clamped, did := ClampUnsignedNegative(-5)
	if !did || clamped != 0 {
		t.Errorf("ClampUnsignedNegative(-5) = (%d, %v), want (0, true)", clamped, did)
	}
	clamped, did = ClampUnsignedNegative(5)
	if did || clamped != 5 {
		t.Errorf("ClampUnsignedNegative(5) = (%d, %v), want (5, false)", clamped, did)
	}
}

func TestNormalizeBool(t *testing.T) {
	if NormalizeBool(0) != 0 {
		t.Errorf("NormalizeBool(0) != 0")
	}
	if NormalizeBool(42) != 1 {
		t.Errorf("NormalizeBool(42) != 1")
	}
	if NormalizeBool(-7) != 1 {
		t.Errorf("NormalizeBool(-7) != 1")
	}
}

func TestPromoteNumeric(t *testing.T) {
	if got := PromoteNumeric(Tiny, Int); got != Int {
		t.Errorf("PromoteNumeric(Tiny, Int) = %s, want int", got)
	}
	if got := PromoteNumeric(Int, Double); got != Double {
		t.Errorf("PromoteNumeric(Int, Double) = %s, want double", got)
	}
	if got := PromoteNumeric(Long, Short); got != Long {
		t.Errorf("PromoteNumeric(Long, Short) = %s, want long", got)
	}
}

func TestCoerceRejectsStringNumeric(t *testing.T) {
	if err := Coerce(String, Int); err == nil {
		t.Errorf("expected error coercing string to int")
	}
	if err := Coerce(Int, Long); err != nil {
		t.Errorf("unexpected error widening int to long: %v", err)
	}
}

func TestValueCloneDeepCopiesArray(t *testing.T) {
	arr := &ArrayValue{ElemTag: Int, Dims: []int{2}, Flat: []Value{{Tag: Int, IntVal: 1}, {Tag: Int, IntVal: 2}}}
	v := Value{Tag: Int, Arr: arr}
	clone := v.Clone()
	clone.Arr.Flat[0].IntVal = 99
	if v.Arr.Flat[0].IntVal != 1 {
		t.Errorf("mutating clone's array leaked into original: %d", v.Arr.Flat[0].IntVal)
	}
}

func TestStructValueCloneIsIndependent(t *testing.T) {
	sv := NewStructValue("Point", []string{"x", "y"})
	x := Value{Tag: Int, IntVal: 1}
	y := Value{Tag: Int, IntVal: 2}
	sv.Members["x"] = &x
	sv.Members["y"] = &y

	clone := sv.Clone()
	clone.Members["x"].IntVal = 100
	if sv.Members["x"].IntVal != 1 {
		t.Errorf("mutating clone leaked into original struct: %d", sv.Members["x"].IntVal)
	}
}
