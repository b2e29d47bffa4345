package collada

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	return opts
}

func triangleMesh(name string) *scene.Mesh {
	n := math.NewVec3(0, 0, 1)
	return &scene.Mesh{
		Name: name,
		Positions: []math.Vec3{
			math.NewVec3(0, 0, 0),
			math.NewVec3(1, 0, 0),
			math.NewVec3(0, 1, 0),
		},
		Polygons: []scene.Polygon{{
			MaterialIndex: -1,
			Corners: []scene.Corner{
				{Vertex: 0, Normal: n},
				{Vertex: 1, Normal: n},
				{Vertex: 2, Normal: n},
			},
		}},
	}
}

func testScene() *scene.Scene {
	sc := &scene.Scene{
		Name:        "test",
		FPS:         24,
		FrameStart:  1,
		FrameEnd:    10,
		ResolutionX: 1920,
		ResolutionY: 1080,
	}
	n := scene.NewNode("Tri", scene.NodeTypeMesh)
	n.Mesh = triangleMesh("Tri")
	sc.AddRoot(n)
	return sc
}

func exportString(t *testing.T, sc *scene.Scene, opts Options) string {
	t.Helper()
	var b bytes.Buffer
	if err := ExportTo(sc, opts, &b, ""); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestExportEmptySceneFails(t *testing.T) {
	opts := testOptions()
	opts.SelectedOnly = true // nothing is selected

	var b bytes.Buffer
	err := ExportTo(testScene(), opts, &b, "")
	if !errors.Is(err, core.ErrEmptyScene) {
		t.Errorf("err = %v, want ErrEmptyScene", err)
	}
}

func TestExportTriangleGeometry(t *testing.T) {
	out := exportString(t, testScene(), testOptions())

	for _, want := range []string{
		"<library_geometries>",
		"<geometry id=\"id-mesh-2\" name=\"Tri\">",
		"count=\"9\"", // 3 vertices * XYZ
		"<triangles count=\"1\">",
		"<input semantic=\"VERTEX\"",
		"<input semantic=\"NORMAL\"",
		"<node id=\"Tri\" name=\"Tri\" type=\"NODE\">",
		"<instance_geometry url=\"#id-mesh-2\">",
		"<instance_visual_scene url=\"#id-scene-1\" />",
		"<up_axis>Z_UP</up_axis>",
		"<created>2026-01-02T03:04:05Z</created>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Empty libraries purge away.
	for _, unwanted := range []string{"<library_cameras>", "<library_lights>", "<library_controllers>"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output contains empty library %q", unwanted)
		}
	}
}

func TestExportPolygonsWithoutTriangulation(t *testing.T) {
	opts := testOptions()
	opts.Triangulate = false
	out := exportString(t, testScene(), opts)

	if !strings.Contains(out, "<polygons count=\"1\">") {
		t.Error("output missing <polygons> primitive")
	}
	if strings.Contains(out, "<triangles") {
		t.Error("output contains <triangles> with triangulation off")
	}
}

func TestExportVertexDeduplication(t *testing.T) {
	sc := testScene()
	mesh := sc.Nodes[0].Mesh
	// A second triangle reusing two positions with identical attributes.
	n := math.NewVec3(0, 0, 1)
	mesh.Positions = append(mesh.Positions, math.NewVec3(1, 1, 0))
	mesh.Polygons = append(mesh.Polygons, scene.Polygon{
		MaterialIndex: -1,
		Corners: []scene.Corner{
			{Vertex: 1, Normal: n},
			{Vertex: 3, Normal: n},
			{Vertex: 2, Normal: n},
		},
	})

	out := exportString(t, sc, testOptions())
	// 4 unique vertices, not 6.
	if !strings.Contains(out, "count=\"12\"") {
		t.Error("shared corners were not deduplicated")
	}
}

func TestExportMaterial(t *testing.T) {
	sc := testScene()
	mesh := sc.Nodes[0].Mesh
	mesh.Materials = []*scene.Material{scene.NewMaterial("Skin")}
	mesh.Polygons[0].MaterialIndex = 0

	out := exportString(t, sc, testOptions())
	for _, want := range []string{
		"<library_effects>",
		"<blinn>",
		"<material id=",
		"name=\"Skin\"",
		"<instance_effect url=\"#id-fx-",
		"<bind_material>",
		"<instance_material symbol=\"id-trimat-",
		"<double_sided>0</double_sided>",
		"<shininess>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportCamera(t *testing.T) {
	sc := testScene()
	cam := scene.NewNode("Cam", scene.NodeTypeCamera)
	cam.Camera = &scene.Camera{
		Name:        "Cam",
		Perspective: true,
		Angle:       math.DegToRad(90),
		ClipStart:   0.1,
		ClipEnd:     100,
	}
	sc.AddRoot(cam)

	out := exportString(t, sc, testOptions())
	for _, want := range []string{
		"<library_cameras>",
		"<yfov>90</yfov>",
		"<znear>0.1</znear>",
		"<zfar>100</zfar>",
		"<instance_camera url=\"#",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportLightAttenuation(t *testing.T) {
	sc := testScene()
	lamp := scene.NewNode("Lamp", scene.NodeTypeLight)
	lamp.Light = &scene.Light{
		Name:     "Lamp",
		Type:     scene.LightTypePoint,
		Colour:   math.NewVec3(1, 1, 1),
		Distance: 2,
	}
	sc.AddRoot(lamp)

	out := exportString(t, sc, testOptions())
	if !strings.Contains(out, "<linear_attenuation>1</linear_attenuation>") {
		t.Error("point light attenuation not 2.0/distance")
	}
	if !strings.Contains(out, "<point>") {
		t.Error("missing point light element")
	}
}

func TestExportEmptyNodeDrawType(t *testing.T) {
	sc := testScene()
	sc.AddRoot(scene.NewNode("Anchor", scene.NodeTypeEmpty))

	out := exportString(t, sc, testOptions())
	if !strings.Contains(out, "<empty_draw_type>PLAIN_AXES</empty_draw_type>") {
		t.Error("missing default empty draw type")
	}
	if !strings.Contains(out, "<technique profile=\"GODOT\">") {
		t.Error("missing GODOT extra technique")
	}
}

func TestExportSelectionPullsAncestors(t *testing.T) {
	sc := &scene.Scene{Name: "sel", FPS: 24, ResolutionX: 1920, ResolutionY: 1080}
	parent := scene.NewNode("Parent", scene.NodeTypeEmpty)
	child := scene.NewNode("Child", scene.NodeTypeMesh)
	child.Mesh = triangleMesh("Child")
	child.Selected = true
	parent.AddChild(child)
	sc.AddRoot(parent)

	opts := testOptions()
	opts.SelectedOnly = true
	out := exportString(t, sc, opts)

	if !strings.Contains(out, "<node id=\"Parent\"") {
		t.Error("unselected ancestor was dropped")
	}
	if !strings.Contains(out, "<node id=\"Child\"") {
		t.Error("selected node was dropped")
	}
}

func TestExportNameCollidingWithIDs(t *testing.T) {
	sc := testScene()
	sc.Nodes[0].Name = "id-mesh-1"

	out := exportString(t, sc, testOptions())
	if !strings.Contains(out, "<node id=\"zid-mesh-1\"") {
		t.Error("node name colliding with generated ids was not prefixed")
	}
}

func skinnedScene() *scene.Scene {
	sc := &scene.Scene{Name: "rig", FPS: 24, FrameStart: 1, FrameEnd: 5, ResolutionX: 1920, ResolutionY: 1080}

	root := &scene.Bone{Name: "Root", Rest: math.NewMat4Identity(), Deform: true}
	tip := &scene.Bone{Name: "Tip", Rest: math.NewMat4Translation(math.NewVec3(0, 0, 1)), Deform: true}
	root.AddChild(tip)

	arm := scene.NewNode("Armature", scene.NodeTypeArmature)
	arm.Skeleton = &scene.Skeleton{Bones: []*scene.Bone{root}}

	body := scene.NewNode("Body", scene.NodeTypeMesh)
	body.Mesh = triangleMesh("Body")
	body.Mesh.Weights = [][]scene.BoneWeight{
		{{Bone: "Root", Weight: 1}},
		{{Bone: "Root", Weight: 0.5}, {Bone: "Tip", Weight: 0.5}},
		{{Bone: "Tip", Weight: 1}},
	}
	body.Armature = arm
	arm.AddChild(body)

	sc.AddRoot(arm)
	return sc
}

func TestExportSkinController(t *testing.T) {
	out := exportString(t, skinnedScene(), testOptions())

	for _, want := range []string{
		"<library_controllers>",
		"<skin source=\"#",
		"<bind_shape_matrix>",
		"type=\"JOINT\"",
		"<param name=\"JOINT\" type=\"Name\"/>",
		"<input semantic=\"INV_BIND_MATRIX\"",
		"<vertex_weights count=\"3\">",
		"<vcount> 1 2 1</vcount>",
		"<instance_controller url=\"#",
		"<skeleton>#id-bone-",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportControlBonesCollapse(t *testing.T) {
	sc := skinnedScene()
	arm := sc.Nodes[0]
	// Insert a control bone between Root and Tip.
	root := arm.Skeleton.Bones[0]
	tip := root.Children[0]
	ctrl := &scene.Bone{Name: "ctrlHelper", Rest: math.NewMat4Identity(), Deform: false}
	root.Children = []*scene.Bone{ctrl}
	ctrl.Parent = root
	ctrl.Children = []*scene.Bone{tip}
	tip.Parent = ctrl

	out := exportString(t, sc, testOptions())
	if strings.Contains(out, "ctrlHelper") {
		t.Error("control bone was exported")
	}
	if !strings.Contains(out, "name=\"Tip\"") {
		t.Error("deform bone under the control bone was dropped")
	}
}

func TestExportMorphController(t *testing.T) {
	sc := testScene()
	mesh := sc.Nodes[0].Mesh
	moved := make([]math.Vec3, len(mesh.Positions))
	copy(moved, mesh.Positions)
	moved[0] = math.NewVec3(0, 0, 1)
	mesh.ShapeKeys = []*scene.ShapeKey{
		{Name: "Basis", Positions: mesh.Positions},
		{Name: "Up", Positions: moved},
	}

	out := exportString(t, sc, testOptions())
	for _, want := range []string{
		"<morph source=\"#",
		"method=\"NORMALIZED\"",
		"<IDREF_array",
		"<param name=\"MORPH_TARGET\" type=\"IDREF\"/>",
		"<param name=\"MORPH_WEIGHT\" type=\"float\"/>",
		"<instance_controller url=\"#id-morph-",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportMergedAnimation(t *testing.T) {
	sc := testScene()
	sc.FrameStart = 1
	sc.FrameEnd = 3
	sc.Nodes[0].Animated = true
	sc.Actions = []*scene.Action{{
		Name:       "Move",
		FrameStart: 1,
		FrameEnd:   3,
		Transforms: []*scene.TransformTrack{{
			Node: "Tri",
			Position: []scene.VectorKey{
				{Frame: 1, Value: math.NewVec3(0, 0, 0)},
				{Frame: 3, Value: math.NewVec3(2, 0, 0)},
			},
		}},
	}}

	out := exportString(t, sc, testOptions())
	for _, want := range []string{
		"<library_animations>",
		"target=\"Tri/transform\"",
		"<param name=\"TIME\" type=\"float\"/>",
		"<param name=\"TRANSFORM\" type=\"float4x4\"/>",
		" LINEAR LINEAR LINEAR<",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<library_animation_clips>") {
		t.Error("clip library written in merged mode")
	}
}

func TestExportAnimationClips(t *testing.T) {
	sc := skinnedScene()
	sc.Actions = []*scene.Action{
		{
			Name:       "Walk",
			FrameStart: 1,
			FrameEnd:   3,
			Transforms: []*scene.TransformTrack{{
				Node: "Armature",
				Bone: "Tip",
				Position: []scene.VectorKey{
					{Frame: 1, Value: math.NewVec3(0, 0, 0)},
					{Frame: 3, Value: math.NewVec3(0, 1, 0)},
				},
			}},
		},
		{Name: "Scratch-noexp", FrameStart: 1, FrameEnd: 2},
	}

	opts := testOptions()
	opts.AnimationClips = true
	out := exportString(t, sc, opts)

	if !strings.Contains(out, "<animation_clip name=\"Walk\"") {
		t.Error("missing Walk clip")
	}
	if !strings.Contains(out, "<instance_animation url=\"#id-anim-") {
		t.Error("clip references no animations")
	}
	if strings.Contains(out, "Scratch-noexp") {
		t.Error("noexp action was exported")
	}
}

func TestExportClipMorphWeightChannel(t *testing.T) {
	sc := skinnedScene()
	mesh := sc.Nodes[0].Children[0].Mesh
	moved := make([]math.Vec3, len(mesh.Positions))
	copy(moved, mesh.Positions)
	moved[0] = math.NewVec3(0, 0, 1)
	mesh.ShapeKeys = []*scene.ShapeKey{
		{Name: "Basis", Positions: mesh.Positions},
		{Name: "Up", Positions: moved},
	}

	sc.Actions = []*scene.Action{{
		Name:       "Blink",
		FrameStart: 1,
		FrameEnd:   3,
		Transforms: []*scene.TransformTrack{{
			Node: "Armature",
			Bone: "Tip",
			Position: []scene.VectorKey{
				{Frame: 1, Value: math.NewVec3(0, 0, 0)},
				{Frame: 3, Value: math.NewVec3(0, 1, 0)},
			},
		}},
		Weights: []*scene.WeightTrack{{
			Node:     "Body",
			ShapeKey: "Up",
			Keys: []scene.FloatKey{
				{Frame: 1, Value: 0},
				{Frame: 3, Value: 1},
			},
		}},
	}}

	opts := testOptions()
	opts.AnimationClips = true
	out := exportString(t, sc, opts)

	if !strings.Contains(out, "<animation_clip name=\"Blink\"") {
		t.Fatal("missing Blink clip")
	}
	if !strings.Contains(out, "-morph-weights(0)\"") {
		t.Error("missing morph weight channel target")
	}
	if !strings.Contains(out, " 0 0.5 1</float_array>") {
		t.Error("missing interpolated weight samples")
	}
}

func TestExportObjectTypeFilter(t *testing.T) {
	sc := testScene()
	lamp := scene.NewNode("Lamp", scene.NodeTypeLight)
	lamp.Light = &scene.Light{Name: "Lamp", Type: scene.LightTypePoint, Colour: math.NewVec3(1, 1, 1), Distance: 30}
	sc.AddRoot(lamp)

	opts := testOptions()
	opts.ObjectTypes = map[scene.NodeType]bool{scene.NodeTypeMesh: true}
	out := exportString(t, sc, opts)

	if strings.Contains(out, "<library_lights>") {
		t.Error("filtered light still exported")
	}
	if !strings.Contains(out, "<library_geometries>") {
		t.Error("mesh missing with mesh type enabled")
	}
}
