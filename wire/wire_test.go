package wire

import (
	"math"
	"testing"
)

func TestPackRef(t *testing.T) {
	tests := []struct {
		name   string
		addr   uint32
		length uint32
		want   uint64
	}{
		{"zero", 0, 0, 0},
		{"address only", 0x1000, 0, 0x1000},
		{"length only", 0, 4, 4 << 32},
		{"both", 0xdeadbeef, 0x10, 0x00000010deadbeef},
		{"max", math.MaxUint32, math.MaxUint32, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PackRef(tt.addr, tt.length)
			if r.Word() != tt.want {
				t.Fatalf("PackRef(%#x, %d) = %#x, want %#x", tt.addr, tt.length, r.Word(), tt.want)
			}
			if r.Addr() != tt.addr {
				t.Errorf("Addr() = %#x, want %#x", r.Addr(), tt.addr)
			}
			if r.Len() != tt.length {
				t.Errorf("Len() = %d, want %d", r.Len(), tt.length)
			}
		})
	}
}

func TestFits(t *testing.T) {
	if !Fits(0) || !Fits(math.MaxUint32) {
		t.Error("Fits rejected a 32-bit length")
	}
	if Fits(-1) {
		t.Error("Fits accepted a negative length")
	}
	if math.MaxInt > math.MaxUint32 && Fits(math.MaxUint32+1) {
		t.Error("Fits accepted a 33-bit length")
	}
}

func TestStatus(t *testing.T) {
	if !Status(0).OK() {
		t.Error("0 must be success")
	}
	for _, s := range []Status{1, 2, math.MaxUint32} {
		if s.OK() {
			t.Errorf("status %d reported success", s)
		}
	}
}

func TestCount(t *testing.T) {
	n, ok := Count(CountFailed)
	if ok || n != 0 {
		t.Errorf("Count(-1) = %d, %v", n, ok)
	}
	n, ok = Count(0)
	if !ok || n != 0 {
		t.Errorf("Count(0) = %d, %v", n, ok)
	}
	n, ok = Count(17)
	if !ok || n != 17 {
		t.Errorf("Count(17) = %d, %v", n, ok)
	}
}

func TestBool(t *testing.T) {
	if Bool(true) != 1 || Bool(false) != 0 {
		t.Fatal("unexpected bool encoding")
	}
	if !FromBool(1) || FromBool(0) || FromBool(2) {
		t.Fatal("unexpected bool decoding")
	}
}
