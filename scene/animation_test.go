package scene

import (
	"testing"

	"github.com/godotengine/collada-exporter/math"
)

func TestTransformTrackSampleInterpolates(t *testing.T) {
	track := &TransformTrack{
		Node: "Cube",
		Position: []VectorKey{
			{Frame: 0, Value: math.NewVec3(0, 0, 0)},
			{Frame: 10, Value: math.NewVec3(10, 0, 0)},
		},
	}

	rest := math.NewVec3Zero()
	m := track.Sample(5, rest, math.NewQuatIdentity(), math.NewVec3One())
	if got := m.Translation().X; got < 4.999 || got > 5.001 {
		t.Errorf("midpoint X = %v, want 5", got)
	}
}

func TestTransformTrackSampleClampsEnds(t *testing.T) {
	track := &TransformTrack{
		Position: []VectorKey{
			{Frame: 2, Value: math.NewVec3(1, 0, 0)},
			{Frame: 4, Value: math.NewVec3(3, 0, 0)},
		},
	}

	before := track.Sample(0, math.NewVec3Zero(), math.NewQuatIdentity(), math.NewVec3One())
	if got := before.Translation().X; got != 1 {
		t.Errorf("before first key X = %v, want 1", got)
	}
	after := track.Sample(100, math.NewVec3Zero(), math.NewQuatIdentity(), math.NewVec3One())
	if got := after.Translation().X; got != 3 {
		t.Errorf("after last key X = %v, want 3", got)
	}
}

func TestTransformTrackRestFallback(t *testing.T) {
	track := &TransformTrack{Node: "Cube"}

	restPos := math.NewVec3(7, 8, 9)
	m := track.Sample(5, restPos, math.NewQuatIdentity(), math.NewVec3One())
	if got := m.Translation(); !got.Compare(restPos, math.K_FLOAT_EPSILON) {
		t.Errorf("unkeyed track translation = %v, want rest %v", got, restPos)
	}
}

func TestWeightTrackSample(t *testing.T) {
	track := &WeightTrack{
		Node:     "Face",
		ShapeKey: "Smile",
		Keys: []FloatKey{
			{Frame: 0, Value: 0},
			{Frame: 10, Value: 1},
		},
	}

	if got := track.Sample(5); got < 0.499 || got > 0.501 {
		t.Errorf("midpoint weight = %v, want 0.5", got)
	}
	if got := track.Sample(-1); got != 0 {
		t.Errorf("clamped start weight = %v, want 0", got)
	}
}

func TestActionBoneNames(t *testing.T) {
	a := &Action{
		Name: "Walk",
		Transforms: []*TransformTrack{
			{Node: "Armature", Bone: "Hip"},
			{Node: "Armature", Bone: "Knee"},
			{Node: "Cube"},
		},
	}

	bones := a.BoneNames()
	if len(bones) != 2 || !bones["Hip"] || !bones["Knee"] {
		t.Errorf("BoneNames = %v, want Hip and Knee", bones)
	}
}
