package collada

import (
	gomath "math"
	"strconv"
	"strings"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

// renderVertex is one deduplicated output vertex: a polygon corner
// with every attribute flattened, plus its skin influences.
type renderVertex struct {
	pos       math.Vec3
	normal    math.Vec3
	uv        []math.Vec2
	colour    *math.Vec3
	tangent   *math.Vec3
	bitangent *math.Vec3
	bones     []int
	weights   []float32
}

// key renders every attribute into a map key so identical corners
// collapse into one vertex.
func (v *renderVertex) key() string {
	var b strings.Builder
	bits := func(f float32) {
		b.WriteString(strconv.FormatUint(uint64(gomath.Float32bits(f)), 36))
		b.WriteByte(':')
	}
	bits(v.pos.X)
	bits(v.pos.Y)
	bits(v.pos.Z)
	bits(v.normal.X)
	bits(v.normal.Y)
	bits(v.normal.Z)
	for _, uv := range v.uv {
		bits(uv.X)
		bits(uv.Y)
	}
	if v.colour != nil {
		bits(v.colour.X)
		bits(v.colour.Y)
		bits(v.colour.Z)
	}
	if v.tangent != nil {
		bits(v.tangent.X)
		bits(v.tangent.Y)
		bits(v.tangent.Z)
	}
	if v.bitangent != nil {
		bits(v.bitangent.X)
		bits(v.bitangent.Y)
		bits(v.bitangent.Z)
	}
	for _, bone := range v.bones {
		b.WriteString(strconv.Itoa(bone))
		b.WriteByte(':')
	}
	for _, w := range v.weights {
		bits(w)
	}
	return b.String()
}

func (e *Exporter) exportMeshNode(n *scene.Node, il int) {
	if n.Mesh == nil {
		return
	}

	armature := n.Armature
	if armature != nil && armature != n.Parent {
		core.LogWarn("object %q is bound to an armature that is not its parent. This is unsupported.", n.Name)
		armature = nil
	}
	if armature == nil && n.Mesh.HasWeights() {
		core.LogWarn("object %q has skin weights, but is not a child of an armature. This is unsupported.", n.Name)
	}

	if n.MorphDriver != nil {
		e.morphDriver[n] = n.MorphDriver
	}

	meshdata := e.exportMesh(n, n.Mesh, armature, -1, "", "")

	w := e.w
	closeController := false
	switch {
	case meshdata.skinID != "":
		closeController = true
		w.line(sectionNodes, il, "<instance_controller url=\"#%s\">", meshdata.skinID)
		for _, sn := range e.skeletonInfo[armature].skeletonNodes {
			w.line(sectionNodes, il+1, "<skeleton>#%s</skeleton>", sn)
		}
	case meshdata.morphID != "":
		closeController = true
		w.line(sectionNodes, il, "<instance_controller url=\"#%s\">", meshdata.morphID)
	default:
		w.line(sectionNodes, il, "<instance_geometry url=\"#%s\">", meshdata.id)
	}

	if len(meshdata.materialAssign) > 0 {
		w.line(sectionNodes, il+1, "<bind_material>")
		w.line(sectionNodes, il+2, "<technique_common>")
		for _, m := range meshdata.materialAssign {
			w.line(sectionNodes, il+3, "<instance_material symbol=\"%s\" target=\"#%s\"/>", m[1], m[0])
		}
		w.line(sectionNodes, il+2, "</technique_common>")
		w.line(sectionNodes, il+1, "</bind_material>")
	}

	if closeController {
		w.line(sectionNodes, il, "</instance_controller>")
	} else {
		w.line(sectionNodes, il, "</instance_geometry>")
	}
}

// copyPolygons deep-copies polygons so attribute generation does not
// touch the scene document.
func copyPolygons(polys []scene.Polygon) []scene.Polygon {
	out := make([]scene.Polygon, len(polys))
	for i, p := range polys {
		corners := make([]scene.Corner, len(p.Corners))
		copy(corners, p.Corners)
		out[i] = scene.Polygon{MaterialIndex: p.MaterialIndex, Corners: corners}
	}
	return out
}

// exportMesh serializes a geometry (and its skin/morph controllers)
// and returns the produced ids. skeyIndex is the shape key currently
// being exported, or -1; skelSource overrides the skin's mesh source
// when a morph sits between skin and geometry.
func (e *Exporter) exportMesh(node *scene.Node, mesh *scene.Mesh, armature *scene.Node, skeyIndex int, skelSource, customName string) *meshData {
	if skeyIndex == -1 {
		if md, ok := e.meshCache[mesh]; ok {
			return md
		}
	}

	w := e.w

	// Shape keys export every key as its own geometry, tied together
	// by a morph controller.
	if skeyIndex == -1 && len(mesh.ShapeKeys) > 0 && e.opts.ShapeKeys {
		return e.exportMorph(node, mesh, armature)
	}

	work := *mesh
	work.Polygons = mesh.Polygons
	triangulate := e.opts.Triangulate
	if triangulate {
		work.Polygons = mesh.Triangulated()
	}

	nameToUse := mesh.Name
	if customName != "" {
		nameToUse = customName
	}

	var si *skeletonInfo
	if armature != nil {
		si = e.skeletonInfo[armature]
	}

	hasTangents := e.opts.TangentArrays
	if hasTangents {
		if !triangulate {
			work.Polygons = copyPolygons(mesh.Polygons)
		}
		if !work.GenerateTangents() {
			core.LogWarn("tangents requested for mesh %q, but it has no UV layer; no tangents will be exported.", nameToUse)
			hasTangents = false
		}
	}

	hasColours := work.HasColours()
	uvLayerCount := work.UVLayerCount()

	var vertices []renderVertex
	vertexMap := make(map[string]int)
	var matOrder []int
	surfaceIndices := make(map[int][][]int)
	materials := make(map[int]string)

	for _, f := range work.Polygons {
		if _, seen := surfaceIndices[f.MaterialIndex]; !seen {
			surfaceIndices[f.MaterialIndex] = nil
			matOrder = append(matOrder, f.MaterialIndex)

			if f.MaterialIndex >= 0 && f.MaterialIndex < len(mesh.Materials) && mesh.Materials[f.MaterialIndex] != nil {
				materials[f.MaterialIndex] = e.exportMaterial(mesh.Materials[f.MaterialIndex], mesh.DoubleSided)
			} else {
				materials[f.MaterialIndex] = ""
			}
		}

		vi := make([]int, 0, len(f.Corners))
		for _, c := range f.Corners {
			v := renderVertex{
				pos:    work.Positions[c.Vertex],
				normal: c.Normal,
			}
			if uvLayerCount > 0 {
				v.uv = make([]math.Vec2, 0, uvLayerCount)
				for uvi := 0; uvi < uvLayerCount; uvi++ {
					if uvi < len(c.UV) {
						v.uv = append(v.uv, c.UV[uvi])
					} else {
						v.uv = append(v.uv, math.Vec2{})
					}
				}
			}
			if hasColours && c.Colour != nil {
				colour := *c.Colour
				v.colour = &colour
			}
			if hasTangents {
				tangent, bitangent := c.Tangent, c.Bitangent
				v.tangent = &tangent
				v.bitangent = &bitangent
			}

			if si != nil {
				wsum := float32(0)
				if c.Vertex < len(work.Weights) {
					for _, bw := range work.Weights[c.Vertex] {
						idx, known := si.boneIndex[bw.Bone]
						if !known {
							continue
						}
						if bw.Weight > 0.001 {
							v.bones = append(v.bones, idx)
							v.weights = append(v.weights, bw.Weight)
							wsum += bw.Weight
						}
					}
				}
				if wsum == 0.0 {
					if !e.wrongVtxReport {
						core.LogWarn("mesh for object %q has unassigned weights. This may look wrong in the exported model.", node.Name)
						e.wrongVtxReport = true
					}
					// Zero-weight vertices stay bound to the first
					// joint at full weight so they deform at all.
					v.bones = append(v.bones, 0)
					v.weights = append(v.weights, 1)
				}
			}

			idx := 0
			// Do not optimize if using shape keys: target geometries
			// must stay index-compatible with their basis.
			if skeyIndex == -1 {
				key := v.key()
				if existing, ok := vertexMap[key]; ok {
					idx = existing
				} else {
					idx = len(vertices)
					vertices = append(vertices, v)
					vertexMap[key] = idx
				}
			} else {
				idx = len(vertices)
				vertices = append(vertices, v)
			}
			vi = append(vi, idx)
		}

		if len(vi) > 2 { // Only triangles and above
			surfaceIndices[f.MaterialIndex] = append(surfaceIndices[f.MaterialIndex], vi)
		}
	}

	meshid := w.newID("mesh")
	w.line(sectionGeometries, 1, "<geometry id=\"%s\" name=\"%s\">", meshid, escape(nameToUse))
	w.line(sectionGeometries, 2, "<mesh>")

	writeSource := func(suffix string, stride int, params []string, values func(*renderVertex) []float32) {
		w.line(sectionGeometries, 3, "<source id=\"%s-%s\">", meshid, suffix)
		var b strings.Builder
		for i := range vertices {
			for _, f := range values(&vertices[i]) {
				b.WriteByte(' ')
				b.WriteString(formatFloat(f))
			}
		}
		w.line(sectionGeometries, 4, "<float_array id=\"%s-%s-array\" count=\"%d\">%s</float_array>",
			meshid, suffix, len(vertices)*stride, b.String())
		w.line(sectionGeometries, 4, "<technique_common>")
		w.line(sectionGeometries, 4, "<accessor source=\"#%s-%s-array\" count=\"%d\" stride=\"%d\">",
			meshid, suffix, len(vertices), stride)
		for _, p := range params {
			w.line(sectionGeometries, 5, "<param name=\"%s\" type=\"float\"/>", p)
		}
		w.line(sectionGeometries, 4, "</accessor>")
		w.line(sectionGeometries, 4, "</technique_common>")
		w.line(sectionGeometries, 3, "</source>")
	}

	xyz := []string{"X", "Y", "Z"}

	// Vertex array
	writeSource("positions", 3, xyz, func(v *renderVertex) []float32 {
		return []float32{v.pos.X, v.pos.Y, v.pos.Z}
	})

	// Normals array
	writeSource("normals", 3, xyz, func(v *renderVertex) []float32 {
		return []float32{v.normal.X, v.normal.Y, v.normal.Z}
	})

	if hasTangents {
		writeSource("tangents", 3, xyz, func(v *renderVertex) []float32 {
			return []float32{v.tangent.X, v.tangent.Y, v.tangent.Z}
		})
		writeSource("bitangents", 3, xyz, func(v *renderVertex) []float32 {
			return []float32{v.bitangent.X, v.bitangent.Y, v.bitangent.Z}
		})
	}

	// UV arrays
	for uvi := 0; uvi < uvLayerCount; uvi++ {
		uvi := uvi
		writeSource("texcoord-"+strconv.Itoa(uvi), 2, []string{"S", "T"}, func(v *renderVertex) []float32 {
			return []float32{v.uv[uvi].X, v.uv[uvi].Y}
		})
	}

	// Colour array
	if hasColours {
		writeSource("colors", 3, xyz, func(v *renderVertex) []float32 {
			if v.colour == nil {
				return []float32{0, 0, 0}
			}
			return []float32{v.colour.X, v.colour.Y, v.colour.Z}
		})
	}

	w.line(sectionGeometries, 3, "<vertices id=\"%s-vertices\">", meshid)
	w.line(sectionGeometries, 4, "<input semantic=\"POSITION\" source=\"#%s-positions\"/>", meshid)
	w.line(sectionGeometries, 3, "</vertices>")

	primType := "polygons"
	if triangulate {
		primType = "triangles"
	}

	var matAssign [][2]string
	for _, m := range matOrder {
		indices := surfaceIndices[m]
		matid := materials[m]

		if matid != "" {
			matref := w.newID("trimat")
			w.line(sectionGeometries, 3, "<%s count=\"%d\" material=\"%s\">", primType, len(indices), matref)
			matAssign = append(matAssign, [2]string{matid, matref})
		} else {
			w.line(sectionGeometries, 3, "<%s count=\"%d\">", primType, len(indices))
		}

		w.line(sectionGeometries, 4, "<input semantic=\"VERTEX\" source=\"#%s-vertices\" offset=\"0\"/>", meshid)
		w.line(sectionGeometries, 4, "<input semantic=\"NORMAL\" source=\"#%s-normals\" offset=\"0\"/>", meshid)
		for uvi := 0; uvi < uvLayerCount; uvi++ {
			w.line(sectionGeometries, 4, "<input semantic=\"TEXCOORD\" source=\"#%s-texcoord-%d\" offset=\"0\" set=\"%d\"/>", meshid, uvi, uvi)
		}
		if hasColours {
			w.line(sectionGeometries, 4, "<input semantic=\"COLOR\" source=\"#%s-colors\" offset=\"0\"/>", meshid)
		}
		if hasTangents {
			w.line(sectionGeometries, 4, "<input semantic=\"TEXTANGENT\" source=\"#%s-tangents\" offset=\"0\"/>", meshid)
			w.line(sectionGeometries, 4, "<input semantic=\"TEXBINORMAL\" source=\"#%s-bitangents\" offset=\"0\"/>", meshid)
		}

		if triangulate {
			var flat []int
			for _, p := range indices {
				flat = append(flat, p...)
			}
			w.line(sectionGeometries, 4, "<p>%s </p>", formatInts(flat))
		} else {
			for _, p := range indices {
				w.line(sectionGeometries, 4, "<p>%s </p>", formatInts(p))
			}
		}

		w.line(sectionGeometries, 3, "</%s>", primType)
	}

	w.line(sectionGeometries, 2, "</mesh>")
	w.line(sectionGeometries, 1, "</geometry>")

	meshdata := &meshData{id: meshid, materialAssign: matAssign}
	if skeyIndex == -1 {
		e.meshCache[mesh] = meshdata
	}

	// Export skin controller (if armature exists).
	if armature != nil && (skelSource != "" || skeyIndex == -1) {
		meshdata.skinID = e.exportSkin(node, si, vertices, meshid, skelSource)
	}

	return meshdata
}

// exportSkin writes a skin controller binding the geometry (or morph)
// to the armature's joints and returns the controller id.
func (e *Exporter) exportSkin(node *scene.Node, si *skeletonInfo, vertices []renderVertex, meshid, skelSource string) string {
	w := e.w
	contid := w.newID("controller")

	w.line(sectionSkins, 1, "<controller id=\"%s\">", contid)
	source := meshid
	if skelSource != "" {
		source = skelSource
	}
	w.line(sectionSkins, 2, "<skin source=\"#%s\">", source)
	w.line(sectionSkins, 3, "<bind_shape_matrix>%s</bind_shape_matrix>", formatMatrix(node.WorldMatrix()))

	// Joint names
	w.line(sectionSkins, 3, "<source id=\"%s-joints\">", contid)
	var names strings.Builder
	for _, v := range si.boneNames {
		names.WriteByte(' ')
		names.WriteString(v)
	}
	w.line(sectionSkins, 4, "<Name_array id=\"%s-joints-array\" count=\"%d\">%s</Name_array>",
		contid, len(si.boneNames), names.String())
	w.line(sectionSkins, 4, "<technique_common>")
	w.line(sectionSkins, 4, "<accessor source=\"#%s-joints-array\" count=\"%d\" stride=\"1\">", contid, len(si.boneNames))
	w.line(sectionSkins, 5, "<param name=\"JOINT\" type=\"Name\"/>")
	w.line(sectionSkins, 4, "</accessor>")
	w.line(sectionSkins, 4, "</technique_common>")
	w.line(sectionSkins, 3, "</source>")

	// Pose matrices
	w.line(sectionSkins, 3, "<source id=\"%s-bind_poses\">", contid)
	var poses strings.Builder
	for _, m := range si.bindPoses {
		poses.WriteByte(' ')
		poses.WriteString(formatMatrix(m))
	}
	w.line(sectionSkins, 4, "<float_array id=\"%s-bind_poses-array\" count=\"%d\">%s</float_array>",
		contid, len(si.bindPoses)*16, poses.String())
	w.line(sectionSkins, 4, "<technique_common>")
	w.line(sectionSkins, 4, "<accessor source=\"#%s-bind_poses-array\" count=\"%d\" stride=\"16\">", contid, len(si.bindPoses))
	w.line(sectionSkins, 5, "<param name=\"TRANSFORM\" type=\"float4x4\"/>")
	w.line(sectionSkins, 4, "</accessor>")
	w.line(sectionSkins, 4, "</technique_common>")
	w.line(sectionSkins, 3, "</source>")

	// Skin weights
	w.line(sectionSkins, 3, "<source id=\"%s-skin_weights\">", contid)
	var weights strings.Builder
	weightsTotal := 0
	for i := range vertices {
		weightsTotal += len(vertices[i].weights)
		for _, wv := range vertices[i].weights {
			weights.WriteByte(' ')
			weights.WriteString(formatFloat(wv))
		}
	}
	w.line(sectionSkins, 4, "<float_array id=\"%s-skin_weights-array\" count=\"%d\">%s</float_array>",
		contid, weightsTotal, weights.String())
	w.line(sectionSkins, 4, "<technique_common>")
	w.line(sectionSkins, 4, "<accessor source=\"#%s-skin_weights-array\" count=\"%d\" stride=\"1\">", contid, weightsTotal)
	w.line(sectionSkins, 5, "<param name=\"WEIGHT\" type=\"float\"/>")
	w.line(sectionSkins, 4, "</accessor>")
	w.line(sectionSkins, 4, "</technique_common>")
	w.line(sectionSkins, 3, "</source>")

	w.line(sectionSkins, 3, "<joints>")
	w.line(sectionSkins, 4, "<input semantic=\"JOINT\" source=\"#%s-joints\"/>", contid)
	w.line(sectionSkins, 4, "<input semantic=\"INV_BIND_MATRIX\" source=\"#%s-bind_poses\"/>", contid)
	w.line(sectionSkins, 3, "</joints>")
	w.line(sectionSkins, 3, "<vertex_weights count=\"%d\">", len(vertices))
	w.line(sectionSkins, 4, "<input semantic=\"JOINT\" source=\"#%s-joints\" offset=\"0\"/>", contid)
	w.line(sectionSkins, 4, "<input semantic=\"WEIGHT\" source=\"#%s-skin_weights\" offset=\"1\"/>", contid)

	var vcounts, vs strings.Builder
	vcount := 0
	for i := range vertices {
		vcounts.WriteByte(' ')
		vcounts.WriteString(strconv.Itoa(len(vertices[i].weights)))
		for _, b := range vertices[i].bones {
			vs.WriteByte(' ')
			vs.WriteString(strconv.Itoa(b))
			vs.WriteByte(' ')
			vs.WriteString(strconv.Itoa(vcount))
			vcount++
		}
	}
	w.line(sectionSkins, 4, "<vcount>%s</vcount>", vcounts.String())
	w.line(sectionSkins, 4, "<v>%s</v>", vs.String())
	w.line(sectionSkins, 3, "</vertex_weights>")

	w.line(sectionSkins, 2, "</skin>")
	w.line(sectionSkins, 1, "</controller>")
	return contid
}

// exportMorph exports each shape key as its own geometry and ties them
// together with a morph controller.
func (e *Exporter) exportMorph(node *scene.Node, mesh *scene.Mesh, armature *scene.Node) *meshData {
	w := e.w
	mid := w.newID("morph")

	morphTargets := make([]*meshData, 0, len(mesh.ShapeKeys))
	for k, shape := range mesh.ShapeKeys {
		shaped := *mesh
		if len(shape.Positions) == len(mesh.Positions) {
			shaped.Positions = shape.Positions
		} else {
			core.LogWarn("shape key %q of mesh %q has %d positions, expected %d; using basis positions",
				shape.Name, mesh.Name, len(shape.Positions), len(mesh.Positions))
		}

		var md *meshData
		if armature != nil && k == 0 {
			md = e.exportMesh(node, &shaped, armature, k, mid, shape.Name)
		} else {
			md = e.exportMesh(node, &shaped, nil, k, "", shape.Name)
		}
		morphTargets = append(morphTargets, md)
	}

	w.line(sectionMorphs, 1, "<controller id=\"%s\" name=\"\">", mid)
	w.line(sectionMorphs, 2, "<morph source=\"#%s\" method=\"NORMALIZED\">", morphTargets[0].id)

	w.line(sectionMorphs, 3, "<source id=\"%s-morph-targets\">", mid)
	w.line(sectionMorphs, 4, "<IDREF_array id=\"%s-morph-targets-array\" count=\"%d\">", mid, len(morphTargets)-1)
	var marr, warr strings.Builder
	for i, md := range morphTargets {
		if i == 0 {
			continue
		}
		if i > 1 {
			marr.WriteByte(' ')
		}
		if md.skinID != "" {
			marr.WriteString(md.skinID)
		} else {
			marr.WriteString(md.id)
		}
		warr.WriteString(" 0")
	}
	w.line(sectionMorphs, 5, "%s", marr.String())
	w.line(sectionMorphs, 4, "</IDREF_array>")
	w.line(sectionMorphs, 4, "<technique_common>")
	w.line(sectionMorphs, 5, "<accessor source=\"#%s-morph-targets-array\" count=\"%d\" stride=\"1\">", mid, len(morphTargets)-1)
	w.line(sectionMorphs, 6, "<param name=\"MORPH_TARGET\" type=\"IDREF\"/>")
	w.line(sectionMorphs, 5, "</accessor>")
	w.line(sectionMorphs, 4, "</technique_common>")
	w.line(sectionMorphs, 3, "</source>")

	w.line(sectionMorphs, 3, "<source id=\"%s-morph-weights\">", mid)
	w.line(sectionMorphs, 4, "<float_array id=\"%s-morph-weights-array\" count=\"%d\" >%s</float_array>",
		mid, len(morphTargets)-1, warr.String())
	w.line(sectionMorphs, 4, "<technique_common>")
	w.line(sectionMorphs, 5, "<accessor source=\"#%s-morph-weights-array\" count=\"%d\" stride=\"1\">", mid, len(morphTargets)-1)
	w.line(sectionMorphs, 6, "<param name=\"MORPH_WEIGHT\" type=\"float\"/>")
	w.line(sectionMorphs, 5, "</accessor>")
	w.line(sectionMorphs, 4, "</technique_common>")
	w.line(sectionMorphs, 3, "</source>")

	w.line(sectionMorphs, 3, "<targets>")
	w.line(sectionMorphs, 4, "<input semantic=\"MORPH_TARGET\" source=\"#%s-morph-targets\"/>", mid)
	w.line(sectionMorphs, 4, "<input semantic=\"MORPH_WEIGHT\" source=\"#%s-morph-weights\"/>", mid)
	w.line(sectionMorphs, 3, "</targets>")
	w.line(sectionMorphs, 2, "</morph>")
	w.line(sectionMorphs, 1, "</controller>")

	if armature != nil && node.MorphDriver == nil {
		e.morphDriver[node] = armature
	}

	var meshdata *meshData
	if armature != nil {
		meshdata = morphTargets[0]
		meshdata.morphID = mid
	} else {
		meshdata = &meshData{
			id:             morphTargets[0].id,
			morphID:        mid,
			materialAssign: morphTargets[0].materialAssign,
		}
	}

	e.meshCache[mesh] = meshdata
	return meshdata
}
