package scene

import (
	"github.com/godotengine/collada-exporter/math"
)

/**
 * @brief A keyframe holding a vector value at a frame.
 */
type VectorKey struct {
	Frame float32
	Value math.Vec3
}

/**
 * @brief A keyframe holding a rotation at a frame.
 */
type QuatKey struct {
	Frame float32
	Value math.Quaternion
}

/**
 * @brief A keyframe holding a scalar value at a frame.
 */
type FloatKey struct {
	Frame float32
	Value float32
}

/**
 * @brief A TRS keyframe track targeting either a node (Bone empty) or
 * a bone of an armature node. Channels left empty fall back to the
 * target's rest value when sampled.
 */
type TransformTrack struct {
	// Name of the target node. For bone tracks, the armature node.
	Node string
	// Name of the target bone; empty for object tracks.
	Bone string

	Position []VectorKey
	Rotation []QuatKey
	Scale    []VectorKey
}

/**
 * @brief A shape-key weight track: animates the influence of one morph
 * target of a mesh node.
 */
type WeightTrack struct {
	// Name of the mesh node carrying the shape keys.
	Node string
	// Name of the shape key this track drives.
	ShapeKey string

	Keys []FloatKey
}

/**
 * @brief An animation clip: a frame range plus the tracks it drives.
 */
type Action struct {
	Name string

	FrameStart int
	FrameEnd   int

	Transforms []*TransformTrack
	Weights    []*WeightTrack
}

// BoneNames returns the set of bone names the action's tracks touch.
func (a *Action) BoneNames() map[string]bool {
	bones := make(map[string]bool)
	for _, t := range a.Transforms {
		if t.Bone != "" {
			bones[t.Bone] = true
		}
	}
	return bones
}

func sampleVector(keys []VectorKey, frame float32, rest math.Vec3) math.Vec3 {
	if len(keys) == 0 {
		return rest
	}
	if frame <= keys[0].Frame {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		if frame < keys[i].Frame {
			a, b := keys[i-1], keys[i]
			t := (frame - a.Frame) / (b.Frame - a.Frame)
			return a.Value.Lerp(b.Value, t)
		}
	}
	return last.Value
}

func sampleQuat(keys []QuatKey, frame float32, rest math.Quaternion) math.Quaternion {
	if len(keys) == 0 {
		return rest
	}
	if frame <= keys[0].Frame {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		if frame < keys[i].Frame {
			a, b := keys[i-1], keys[i]
			t := (frame - a.Frame) / (b.Frame - a.Frame)
			return a.Value.Slerp(b.Value, t)
		}
	}
	return last.Value
}

func sampleFloat(keys []FloatKey, frame float32) float32 {
	if len(keys) == 0 {
		return 0
	}
	if frame <= keys[0].Frame {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		if frame < keys[i].Frame {
			a, b := keys[i-1], keys[i]
			t := (frame - a.Frame) / (b.Frame - a.Frame)
			return a.Value + (b.Value-a.Value)*t
		}
	}
	return last.Value
}

/**
 * @brief Sample evaluates the track at a frame, filling unkeyed
 * channels from the rest pose, and composes the local matrix.
 */
func (t *TransformTrack) Sample(frame float32, restPos math.Vec3, restRot math.Quaternion, restScale math.Vec3) math.Mat4 {
	pos := sampleVector(t.Position, frame, restPos)
	rot := sampleQuat(t.Rotation, frame, restRot)
	scl := sampleVector(t.Scale, frame, restScale)
	return math.NewMat4FromTRS(pos, rot, scl)
}

// SampleScale evaluates only the scale channel at a frame.
func (t *TransformTrack) SampleScale(frame float32, rest math.Vec3) math.Vec3 {
	return sampleVector(t.Scale, frame, rest)
}

// Sample evaluates the weight track at a frame.
func (w *WeightTrack) Sample(frame float32) float32 {
	return sampleFloat(w.Keys, frame)
}
