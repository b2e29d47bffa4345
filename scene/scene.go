package scene

import (
	"sort"

	"github.com/godotengine/collada-exporter/math"
)

// NodeType identifies the payload a scene node carries.
type NodeType int

const (
	NodeTypeEmpty NodeType = iota
	NodeTypeMesh
	NodeTypeCurve
	NodeTypeArmature
	NodeTypeCamera
	NodeTypeLight
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeMesh:
		return "MESH"
	case NodeTypeCurve:
		return "CURVE"
	case NodeTypeArmature:
		return "ARMATURE"
	case NodeTypeCamera:
		return "CAMERA"
	case NodeTypeLight:
		return "LAMP"
	default:
		return "EMPTY"
	}
}

/**
 * @brief A complete scene document: the node hierarchy plus the
 * scene-wide settings the exporter reads (frame range, ambient light,
 * render resolution for camera aspect ratios).
 */
type Scene struct {
	Name string

	// Root nodes; children hang off their parents.
	Nodes []*Node

	// Playback settings. FPS converts frames to seconds on export.
	FPS        float32
	FrameStart int
	FrameEnd   int

	// World ambient colour, written into every material's ambient term.
	AmbientColour math.Vec3

	// Render resolution, used for camera aspect ratios.
	ResolutionX int
	ResolutionY int

	// Animation clips. When present and clip export is enabled, each
	// action becomes a Collada animation_clip.
	Actions []*Action
}

/**
 * @brief A node in the scene hierarchy. Exactly one payload pointer is
 * set according to Type; Empty nodes carry none.
 */
type Node struct {
	Name string
	Type NodeType

	Transform *math.Transform

	Parent   *Node
	Children []*Node

	// Set by the host tool; the selected-only export filter reads it.
	Selected bool

	Mesh     *Mesh
	Curve    *Curve
	Camera   *Camera
	Light    *Light
	Skeleton *Skeleton

	// For skinned meshes: the armature node this mesh is bound to.
	// Must be the node's parent, matching the instance_controller
	// skeleton reference the exporter writes.
	Armature *Node

	// For morph-only meshes whose shape keys are driven by an armature
	// action rather than their own.
	MorphDriver *Node

	// Draw type hint for empties, carried through as a GODOT extra.
	EmptyDrawType string

	// Per-node baked animation flag: nodes with a transform track in
	// any action, or with constraints in the host tool, sample a
	// transform channel on export.
	Animated bool
}

// AddChild links child under n and returns child.
func (n *Node) AddChild(child *Node) *Node {
	child.Parent = n
	if child.Transform != nil && n.Transform != nil {
		child.Transform.Parent = n.Transform
	}
	n.Children = append(n.Children, child)
	return child
}

// SortedChildren returns the children ordered by name. Export order
// must be stable across runs.
func (n *Node) SortedChildren() []*Node {
	out := make([]*Node, len(n.Children))
	copy(out, n.Children)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LocalMatrix returns the node's local transform matrix.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.Transform == nil {
		return math.NewMat4Identity()
	}
	return n.Transform.GetLocal()
}

// WorldMatrix returns the node's world transform matrix.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.Transform == nil {
		return math.NewMat4Identity()
	}
	return n.Transform.GetWorld()
}

// NewNode builds a node with an identity transform.
func NewNode(name string, t NodeType) *Node {
	return &Node{
		Name:      name,
		Type:      t,
		Transform: math.TransformCreate(),
	}
}

// AddRoot appends a root node to the scene.
func (s *Scene) AddRoot(n *Node) *Node {
	s.Nodes = append(s.Nodes, n)
	return n
}

// SortedRoots returns the scene's root nodes ordered by name.
func (s *Scene) SortedRoots() []*Node {
	out := make([]*Node, len(s.Nodes))
	copy(out, s.Nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Walk visits every node in the hierarchy depth-first.
func (s *Scene) Walk(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
}

// FindNode returns the first node with the given name, or nil.
func (s *Scene) FindNode(name string) *Node {
	var found *Node
	s.Walk(func(n *Node) {
		if found == nil && n.Name == name {
			found = n
		}
	})
	return found
}

// FrameLen returns the duration of a single frame in seconds.
func (s *Scene) FrameLen() float32 {
	if s.FPS <= 0 {
		return 1.0 / 24.0
	}
	return 1.0 / s.FPS
}
