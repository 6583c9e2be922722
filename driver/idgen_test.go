package driver

import "testing"

func TestGenTimeRandID_OutOfRange(t *testing.T) {
	if got := GenTimeRandID(8); got != 0 {
		t.Errorf("GenTimeRandID(8) = %d, want 0 (below minimum digit length)", got)
	}
	if got := GenTimeRandID(19); got != 0 {
		t.Errorf("GenTimeRandID(19) = %d, want 0 (above maximum digit length)", got)
	}
}

func TestGenTimeRandID_WithinDigitBudget(t *testing.T) {
	for _, maxLen := range []int{9, 10, 11, 12, 13, 14, 15, 16, 17, 18} {
		id := GenTimeRandID(maxLen)
		if id <= 0 {
			t.Errorf("GenTimeRandID(%d) = %d, want a positive value", maxLen, id)
			continue
		}
		limit := pow10(maxLen)
		if id >= limit {
			t.Errorf("GenTimeRandID(%d) = %d, exceeds %d-digit budget (limit %d)", maxLen, id, maxLen, limit)
		}
	}
}

func TestGenTimeRandID_Varies(t *testing.T) {
	a := GenTimeRandID(18)
	b := GenTimeRandID(18)
	if a == b {
		t.Error("two consecutive GenTimeRandID(18) calls returned the same value (random suffix isn't varying)")
	}
}

func TestPow10(t *testing.T) {
	cases := map[int]int64{0: 1, 1: 10, 3: 1000, 5: 100000}
	for n, want := range cases {
		if got := pow10(n); got != want {
			t.Errorf("pow10(%d) = %d, want %d", n, got, want)
		}
	}
}
