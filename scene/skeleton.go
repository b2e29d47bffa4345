package scene

import (
	"strings"

	"github.com/godotengine/collada-exporter/math"
)

/**
 * @brief A single bone. Rest is the bone's rest matrix in armature
 * space; the exporter derives parent-relative node matrices and inverse
 * bind poses from it.
 */
type Bone struct {
	Name string

	// Rest matrix in armature space.
	Rest math.Mat4

	Parent   *Bone
	Children []*Bone

	// Deform bones influence vertices. Non-deform (control) bones can
	// be collapsed out of the exported joint hierarchy.
	Deform bool
}

// AddChild links child under b and returns child.
func (b *Bone) AddChild(child *Bone) *Bone {
	child.Parent = b
	b.Children = append(b.Children, child)
	return child
}

// IsControl reports whether the bone is a rig control rather than a
// deforming joint, by the "ctrl" naming convention or the deform flag.
func (b *Bone) IsControl() bool {
	return strings.HasPrefix(b.Name, "ctrl") || !b.Deform
}

/**
 * @brief A skeleton: the bone hierarchy an armature node carries.
 */
type Skeleton struct {
	// Root bones.
	Bones []*Bone
}

// Walk visits every bone depth-first.
func (s *Skeleton) Walk(fn func(*Bone)) {
	var walk func(*Bone)
	walk = func(b *Bone) {
		fn(b)
		for _, c := range b.Children {
			walk(c)
		}
	}
	for _, b := range s.Bones {
		walk(b)
	}
}

// FindBone returns the bone with the given name, or nil.
func (s *Skeleton) FindBone(name string) *Bone {
	var found *Bone
	s.Walk(func(b *Bone) {
		if found == nil && b.Name == name {
			found = b
		}
	})
	return found
}
