package memaddr

import "testing"

func TestRangeEndAndContains(t *testing.T) {
	r := Range{Start: 0x1000, Len: 0x10}
	if r.End() != 0x1010 {
		t.Fatalf("End() = %#x, want 0x1010", r.End())
	}
	if !r.Contains(0x1000) || !r.Contains(0x100f) {
		t.Fatalf("Contains should include both endpoints of the half-open range")
	}
	if r.Contains(0x1010) {
		t.Fatalf("Contains should exclude the end address")
	}
}

func TestSatSub(t *testing.T) {
	if got := SatSub(10, 4); got != 6 {
		t.Fatalf("SatSub(10,4) = %d, want 6", got)
	}
	if got := SatSub(4, 10); got != 0 {
		t.Fatalf("SatSub(4,10) = %d, want 0 (saturated)", got)
	}
	if got := SatSub(0, 0); got != 0 {
		t.Fatalf("SatSub(0,0) = %d, want 0", got)
	}
}
