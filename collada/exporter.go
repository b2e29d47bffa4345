package collada

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

// meshData records what exporting a mesh produced, so nodes sharing
// mesh data reference the same libraries.
type meshData struct {
	id             string
	materialAssign [][2]string // material id, primitive symbol
	skinID         string
	morphID        string
}

// skeletonInfo accumulates everything the skin controllers and bone
// animation channels need about one armature.
type skeletonInfo struct {
	id            string
	boneCount     int
	boneIndex     map[string]int
	boneIDs       map[*scene.Bone]string
	boneNames     []string
	bindPoses     []math.Mat4
	skeletonNodes []string
	armatureXform math.Mat4
}

/**
 * @brief Exporter walks a scene document and produces a Collada file.
 * One exporter serves a single Export call.
 */
type Exporter struct {
	w     *writer
	scene *scene.Scene
	opts  Options

	// Output path; image copying resolves destinations against it.
	// Empty when exporting to a plain io.Writer.
	path string

	sceneID string

	meshCache     map[*scene.Mesh]*meshData
	curveCache    map[*scene.Curve]string
	materialCache map[*scene.Material]string
	imageCache    map[*scene.Image]string

	skeletons    []*scene.Node
	skeletonInfo map[*scene.Node]*skeletonInfo

	validNodes map[*scene.Node]bool
	// Depth-first node order, for deterministic animation output.
	nodeOrder []*scene.Node

	morphDriver map[*scene.Node]*scene.Node

	usedBones      map[string]bool
	wrongVtxReport bool
}

func newExporter(sc *scene.Scene, opts Options, path string) *Exporter {
	e := &Exporter{
		w:             newWriter(),
		scene:         sc,
		opts:          opts,
		path:          path,
		meshCache:     make(map[*scene.Mesh]*meshData),
		curveCache:    make(map[*scene.Curve]string),
		materialCache: make(map[*scene.Material]string),
		imageCache:    make(map[*scene.Image]string),
		skeletonInfo:  make(map[*scene.Node]*skeletonInfo),
		validNodes:    make(map[*scene.Node]bool),
		morphDriver:   make(map[*scene.Node]*scene.Node),
		usedBones:     make(map[string]bool),
	}
	e.sceneID = e.w.newID("scene")
	return e
}

// Export serializes the scene to the file at path.
func Export(sc *scene.Scene, opts Options, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	return ExportTo(sc, opts, f, path)
}

// ExportTo serializes the scene to out. path may be empty; it anchors
// relative image references and the copy-images destination.
func ExportTo(sc *scene.Scene, opts Options, out io.Writer, path string) error {
	if opts.Now == nil {
		opts.Now = DefaultOptions().Now
	}
	e := newExporter(sc, opts, path)
	return e.export(out)
}

func (e *Exporter) export(out io.Writer) error {
	w := e.w
	w.line(sectionGeometries, 0, "<library_geometries>")
	w.line(sectionControllers, 0, "<library_controllers>")
	w.line(sectionCameras, 0, "<library_cameras>")
	w.line(sectionLights, 0, "<library_lights>")
	w.line(sectionImages, 0, "<library_images>")
	w.line(sectionMaterials, 0, "<library_materials>")
	w.line(sectionEffects, 0, "<library_effects>")

	e.exportAsset()
	if err := e.exportScene(); err != nil {
		return err
	}

	w.line(sectionGeometries, 0, "</library_geometries>")

	// Morphs always go before skin controllers.
	w.moveSection(sectionMorphs, sectionControllers)
	w.moveSection(sectionSkins, sectionControllers)

	w.line(sectionControllers, 0, "</library_controllers>")
	w.line(sectionCameras, 0, "</library_cameras>")
	w.line(sectionLights, 0, "</library_lights>")
	w.line(sectionImages, 0, "</library_images>")
	w.line(sectionMaterials, 0, "</library_materials>")
	w.line(sectionEffects, 0, "</library_effects>")

	w.purgeEmptySections()

	if e.opts.Animation {
		e.exportAnimations()
	}

	return w.flush(e.sceneID, out)
}

func (e *Exporter) exportAsset() {
	w := e.w
	now := e.opts.Now().UTC().Format("2006-01-02T15:04:05Z")
	author := e.opts.Author
	if author == "" {
		author = "Anonymous"
	}
	w.line(sectionAsset, 0, "<asset>")
	w.line(sectionAsset, 1, "<contributor>")
	w.line(sectionAsset, 2, "<author>%s</author>", escape(author))
	w.line(sectionAsset, 2, "<authoring_tool>Collada Exporter for Godot Engine</authoring_tool>")
	w.line(sectionAsset, 1, "</contributor>")
	w.line(sectionAsset, 1, "<created>%s</created>", now)
	w.line(sectionAsset, 1, "<modified>%s</modified>", now)
	w.line(sectionAsset, 1, "<unit meter=\"%s\" name=\"%s\"/>", formatFloat(e.opts.UnitMeter), e.opts.UnitName)
	w.line(sectionAsset, 1, "<up_axis>%s</up_axis>", e.opts.UpAxis)
	w.line(sectionAsset, 0, "</asset>")
}

// isNodeValid applies the object-type and selection filters.
func (e *Exporter) isNodeValid(n *scene.Node) bool {
	if !e.opts.exportsType(n.Type) {
		return false
	}
	if e.opts.SelectedOnly && !n.Selected {
		return false
	}
	return true
}

func (e *Exporter) exportScene() error {
	w := e.w
	w.line(sectionNodes, 0, "<library_visual_scenes>")
	w.line(sectionNodes, 1, "<visual_scene id=\"%s\" name=\"scene\">", e.sceneID)

	// Valid nodes pull their ancestors in so the hierarchy survives
	// the filters.
	e.scene.Walk(func(n *scene.Node) {
		if e.validNodes[n] {
			return
		}
		if e.isNodeValid(n) {
			for p := n; p != nil; p = p.Parent {
				e.validNodes[p] = true
			}
		}
	})

	if len(e.validNodes) == 0 {
		return core.ErrEmptyScene
	}

	for _, n := range e.scene.SortedRoots() {
		if e.validNodes[n] {
			e.exportNode(n, 2)
		}
	}

	w.line(sectionNodes, 1, "</visual_scene>")
	w.line(sectionNodes, 0, "</library_visual_scenes>")
	return nil
}

func (e *Exporter) exportNode(n *scene.Node, il int) {
	if !e.validNodes[n] {
		return
	}
	e.nodeOrder = append(e.nodeOrder, n)

	w := e.w
	w.line(sectionNodes, il, "<node id=\"%s\" name=\"%s\" type=\"NODE\">",
		e.nodeID(n), escape(n.Name))
	il++

	w.line(sectionNodes, il, "<matrix sid=\"transform\">%s</matrix>", formatMatrix(n.LocalMatrix()))

	switch n.Type {
	case scene.NodeTypeMesh:
		e.exportMeshNode(n, il)
	case scene.NodeTypeCurve:
		e.exportCurveNode(n, il)
	case scene.NodeTypeArmature:
		e.exportArmatureNode(n, il)
	case scene.NodeTypeCamera:
		e.exportCameraNode(n, il)
	case scene.NodeTypeLight:
		e.exportLightNode(n, il)
	case scene.NodeTypeEmpty:
		e.exportEmptyNode(n, il)
	}

	for _, c := range n.SortedChildren() {
		e.exportNode(c, il)
	}

	il--
	w.line(sectionNodes, il, "</node>")
}

// nodeID derives the document id a node is exported under. Animation
// channels target the same id.
func (e *Exporter) nodeID(n *scene.Node) string {
	return validateID(escape(n.Name))
}

func (e *Exporter) exportEmptyNode(n *scene.Node, il int) {
	w := e.w
	w.line(sectionNodes, il, "<extra>")
	w.line(sectionNodes, il+1, "<technique profile=\"GODOT\">")
	drawType := n.EmptyDrawType
	if drawType == "" {
		drawType = "PLAIN_AXES"
	}
	w.line(sectionNodes, il+2, "<empty_draw_type>%s</empty_draw_type>", drawType)
	w.line(sectionNodes, il+1, "</technique>")
	w.line(sectionNodes, il, "</extra>")
}

// relPath returns path relative to the output document's directory,
// with forward slashes.
func (e *Exporter) relPath(path string) string {
	if e.path == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(filepath.Dir(e.path), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
