package intmodel

import "testing"

func TestIntRanges(t *testing.T) {
	tests := []struct {
		name      string
		t         Int
		min, max  int64
	}{
		{"i8", Int{Width: 1, Sign: Signed}, -128, 127},
		{"u8", Int{Width: 1, Sign: Unsigned}, 0, 255},
		{"i32", Int{Width: 4, Sign: Signed}, -2147483648, 2147483647},
		{"u32", Int{Width: 4, Sign: Unsigned}, 0, 4294967295},
	}
	for _, tc := range tests {
		if got := tc.t.Min(); got != tc.min {
			t.Errorf("%s: Min() = %d, want %d", tc.name, got, tc.min)
		}
		if got := tc.t.Max(); got != tc.max {
			t.Errorf("%s: Max() = %d, want %d", tc.name, got, tc.max)
		}
	}
}

func TestIntContains(t *testing.T) {
	u8 := Int{Width: 1, Sign: Unsigned}
	if !u8.Contains(255) || u8.Contains(256) || u8.Contains(-1) {
		t.Fatal("u8 Contains boundary check failed")
	}
	i8 := Int{Width: 1, Sign: Signed}
	if !i8.Contains(-128) || !i8.Contains(127) || i8.Contains(128) || i8.Contains(-129) {
		t.Fatal("i8 Contains boundary check failed")
	}
}

func TestUint64Width(t *testing.T) {
	u64 := Int{Width: 8, Sign: Unsigned}
	if u64.MaxUint64() != 18446744073709551615 {
		t.Fatalf("MaxUint64 = %d", u64.MaxUint64())
	}
	if !u64.Contains(9223372036854775807) {
		t.Fatal("expected large positive value to be representable")
	}
}

func TestValidWidths(t *testing.T) {
	for _, w := range []int{1, 2, 4, 8} {
		if !ValidWidth(w) {
			t.Errorf("expected width %d to be valid", w)
		}
	}
	for _, w := range []int{0, 3, 16} {
		if ValidWidth(w) {
			t.Errorf("expected width %d to be invalid", w)
		}
	}
	if !ValidFloatWidth(4) || !ValidFloatWidth(8) || ValidFloatWidth(2) {
		t.Fatal("float width validation failed")
	}
}
