package common

import (
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if len(s) != 2*n {
		t.Fatalf("expected %d hex chars, got %d", 2*n, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("result is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MakeRandHexString(16)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Logf("warning: two MakeRandHexString(16) results are identical; extremely unlikely")
	}
}

func TestGenerateRandByteArray_Size(t *testing.T) {
	for _, n := range []int{0, 1, 16, 32} {
		b := GenerateRandByteArray(n)
		if len(b) != n {
			t.Fatalf("expected %d bytes, got %d", n, len(b))
		}
	}
}
