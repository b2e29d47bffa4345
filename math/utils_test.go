package math

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(float32(1.5), 0, 1); got != 1 {
		t.Errorf("Clamp(1.5, 0, 1) = %v, want 1", got)
	}
	if got := Clamp(float32(-0.5), 0, 1); got != 0 {
		t.Errorf("Clamp(-0.5, 0, 1) = %v, want 0", got)
	}
	if got := Clamp(float32(0.25), 0, 1); got != 0.25 {
		t.Errorf("Clamp(0.25, 0, 1) = %v, want 0.25", got)
	}
	if got := Clamp(7, 1, 5); got != 5 {
		t.Errorf("Clamp(7, 1, 5) = %v, want 5", got)
	}
}
