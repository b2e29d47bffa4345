package math

import (
	"testing"
)

func TestNewMat4TranslationLayout(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	if m.Data[3] != 1 || m.Data[7] != 2 || m.Data[11] != 3 {
		t.Errorf("translation landed at the wrong elements: %v", m.Data)
	}
	if got := m.Translation(); !got.Compare(NewVec3(1, 2, 3), K_FLOAT_EPSILON) {
		t.Errorf("Translation() = %v, want (1 2 3)", got)
	}
}

func TestMat4MulComposesTranslations(t *testing.T) {
	a := NewMat4Translation(NewVec3(1, 0, 0))
	b := NewMat4Translation(NewVec3(0, 2, 0))
	got := a.Mul(b).Translation()
	if !got.Compare(NewVec3(1, 2, 0), K_FLOAT_EPSILON) {
		t.Errorf("composed translation = %v, want (1 2 0)", got)
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	rot := NewQuatFromAxisAngle(NewVec3(0, 0, 1), DegToRad(90), true)
	m := NewMat4FromTRS(NewVec3(4, -2, 7), rot, NewVec3(2, 2, 2))

	id := m.Mul(m.Inverse())
	if !id.Compare(NewMat4Identity(), 0.0001) {
		t.Errorf("M * M^-1 != I: %v", id.Data)
	}
}

func TestMat4InverseSafeSingular(t *testing.T) {
	m := NewMat4Scale(NewVec3(0, 0, 0))
	if got := m.InverseSafe(); !got.Compare(NewMat4Identity(), K_FLOAT_EPSILON) {
		t.Errorf("InverseSafe of a singular matrix = %v, want identity", got.Data)
	}
}

func TestQuatToMat4RotatesPoints(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(0, 0, 1), DegToRad(90), true)
	got := NewVec3(1, 0, 0).Transform(q.ToMat4())
	if !got.Compare(NewVec3(0, 1, 0), 0.0001) {
		t.Errorf("rotated point = %v, want (0 1 0)", got)
	}
}

func TestNewMat4FromTRSOrder(t *testing.T) {
	// Scale must not affect the translation column.
	m := NewMat4FromTRS(NewVec3(5, 0, 0), NewQuatIdentity(), NewVec3(3, 3, 3))
	if got := m.Translation(); !got.Compare(NewVec3(5, 0, 0), K_FLOAT_EPSILON) {
		t.Errorf("TRS translation = %v, want (5 0 0)", got)
	}
	// A unit X point lands at translation + scaled X.
	got := NewVec3(1, 0, 0).Transform(m)
	if !got.Compare(NewVec3(8, 0, 0), 0.0001) {
		t.Errorf("transformed point = %v, want (8 0 0)", got)
	}
}

func TestQuatSlerpEndpoints(t *testing.T) {
	a := NewQuatIdentity()
	b := NewQuatFromAxisAngle(NewVec3(0, 1, 0), DegToRad(90), true)

	if got := a.Slerp(b, 0); got.Dot(a) < 0.9999 {
		t.Errorf("slerp(0) = %v, want start", got)
	}
	if got := a.Slerp(b, 1); got.Dot(b) < 0.9999 {
		t.Errorf("slerp(1) = %v, want end", got)
	}
}
