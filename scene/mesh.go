package scene

import (
	"github.com/godotengine/collada-exporter/math"
)

/**
 * @brief A single weight binding a mesh vertex to a named bone.
 */
type BoneWeight struct {
	Bone   string
	Weight float32
}

/**
 * @brief One polygon corner (a "loop"): a reference into the mesh's
 * shared position array plus the attributes that vary per corner.
 */
type Corner struct {
	// Index into Mesh.Positions.
	Vertex int

	Normal math.Vec3

	// One entry per UV layer of the mesh.
	UV []math.Vec2

	// Optional vertex colour; nil-safe via Mesh.HasColours.
	Colour *math.Vec3

	// Filled in by tangent generation when requested.
	Tangent   math.Vec3
	Bitangent math.Vec3
}

/**
 * @brief A polygon face. Corners wind counter-clockwise.
 */
type Polygon struct {
	// Index into Mesh.Materials; -1 when the face has no material.
	MaterialIndex int
	Corners       []Corner
}

/**
 * @brief A shape key (morph target): a replacement position array
 * parallel to the mesh's base positions. Index 0 in Mesh.ShapeKeys is
 * the basis and exports as the base geometry.
 */
type ShapeKey struct {
	Name      string
	Positions []math.Vec3
}

/**
 * @brief Mesh data as the exporter consumes it: indexed positions with
 * per-corner attributes, per-position skin weights, optional shape keys.
 */
type Mesh struct {
	Name string

	Positions []math.Vec3
	Polygons  []Polygon

	// Per-position skin weights, parallel to Positions. Nil for
	// unskinned meshes.
	Weights [][]BoneWeight

	// Material slots, referenced by Polygon.MaterialIndex.
	Materials []*Material

	ShapeKeys []*ShapeKey

	DoubleSided bool
}

// UVLayerCount returns the number of UV layers on the mesh, taken from
// the first corner.
func (m *Mesh) UVLayerCount() int {
	for _, p := range m.Polygons {
		if len(p.Corners) > 0 {
			return len(p.Corners[0].UV)
		}
	}
	return 0
}

// HasColours reports whether any corner carries a vertex colour.
func (m *Mesh) HasColours() bool {
	for _, p := range m.Polygons {
		for _, c := range p.Corners {
			if c.Colour != nil {
				return true
			}
		}
	}
	return false
}

// HasWeights reports whether the mesh carries skin weights.
func (m *Mesh) HasWeights() bool {
	return len(m.Weights) > 0
}

/**
 * @brief Triangulated returns a copy of the mesh's polygons fanned into
 * triangles. Faces with fewer than three corners are dropped.
 */
func (m *Mesh) Triangulated() []Polygon {
	out := make([]Polygon, 0, len(m.Polygons))
	for _, p := range m.Polygons {
		if len(p.Corners) < 3 {
			continue
		}
		for i := 1; i+1 < len(p.Corners); i++ {
			out = append(out, Polygon{
				MaterialIndex: p.MaterialIndex,
				Corners:       []Corner{p.Corners[0], p.Corners[i], p.Corners[i+1]},
			})
		}
	}
	return out
}

/**
 * @brief GenerateTangents computes per-corner tangent and bitangent
 * vectors from the first UV layer. Returns false when the mesh has no
 * UV layer to derive them from.
 */
func (m *Mesh) GenerateTangents() bool {
	if m.UVLayerCount() == 0 {
		return false
	}
	for pi := range m.Polygons {
		p := &m.Polygons[pi]
		if len(p.Corners) < 3 {
			continue
		}
		c0, c1, c2 := &p.Corners[0], &p.Corners[1], &p.Corners[2]

		edge1 := m.Positions[c1.Vertex].Sub(m.Positions[c0.Vertex])
		edge2 := m.Positions[c2.Vertex].Sub(m.Positions[c0.Vertex])

		deltaU1 := c1.UV[0].X - c0.UV[0].X
		deltaV1 := c1.UV[0].Y - c0.UV[0].Y
		deltaU2 := c2.UV[0].X - c0.UV[0].X
		deltaV2 := c2.UV[0].Y - c0.UV[0].Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := math.Vec3{
			X: fc * (deltaV2*edge1.X - deltaV1*edge2.X),
			Y: fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
			Z: fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
		}.Normalized()

		for ci := range p.Corners {
			c := &p.Corners[ci]
			c.Tangent = tangent
			c.Bitangent = c.Normal.Cross(tangent).Normalized()
		}
	}
	return true
}

/**
 * @brief Extents returns the axis-aligned bounds of the mesh positions.
 */
func (m *Mesh) Extents() math.Extents3D {
	if len(m.Positions) == 0 {
		return math.Extents3D{}
	}
	ext := math.Extents3D{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		if p.X < ext.Min.X {
			ext.Min.X = p.X
		}
		if p.Y < ext.Min.Y {
			ext.Min.Y = p.Y
		}
		if p.Z < ext.Min.Z {
			ext.Min.Z = p.Z
		}
		if p.X > ext.Max.X {
			ext.Max.X = p.X
		}
		if p.Y > ext.Max.Y {
			ext.Max.Y = p.Y
		}
		if p.Z > ext.Max.Z {
			ext.Max.Z = p.Z
		}
	}
	return ext
}
