package utils

import "testing"

func TestToLakhsCrores(t *testing.T) {
	if got := ToLakhs(100000); got != 1.0 {
		t.Errorf("ToLakhs(100000) = %f, want 1.0", got)
	}
	if got := ToCrores(10000000); got != 1.0 {
		t.Errorf("ToCrores(10000000) = %f, want 1.0", got)
	}
	if got := FromLakhs(1.0); got != 100000 {
		t.Errorf("FromLakhs(1.0) = %f, want 100000", got)
	}
	if got := FromCrores(1.0); got != 10000000 {
		t.Errorf("FromCrores(1.0) = %f, want 10000000", got)
	}
}

func TestLakhToCroreRoundTrip(t *testing.T) {
	// 250 lakh is 2.5 crore
	if got := ToCrores(FromLakhs(250)); got != 2.5 {
		t.Errorf("ToCrores(FromLakhs(250)) = %f, want 2.5", got)
	}
}
