package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/godotengine/collada-exporter/collada"
	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

// Manifest is the on-disk TOML description of a scene to export.
type Manifest struct {
	Name       string     `toml:"name"`
	FPS        float32    `toml:"fps"`
	FrameStart int        `toml:"frame_start"`
	FrameEnd   int        `toml:"frame_end"`
	Ambient    [3]float32 `toml:"ambient"`
	Resolution [2]int     `toml:"resolution"`

	// Per-scene export presets, applied on top of the caller's options.
	Export *ManifestExport `toml:"export"`

	Nodes []ManifestNode `toml:"nodes"`
}

// ManifestExport carries a scene's export presets. Unset keys keep the
// caller's value.
type ManifestExport struct {
	Triangulate      *bool `toml:"triangulate"`
	Tangents         *bool `toml:"tangents"`
	CopyImages       *bool `toml:"copy_images"`
	ShapeKeys        *bool `toml:"shape_keys"`
	ExcludeCtrlBones *bool `toml:"exclude_ctrl_bones"`
	SelectedOnly     *bool `toml:"selected_only"`
	Animation        *bool `toml:"animation"`
	AnimationClips   *bool `toml:"animation_clips"`
	SkipNoExport     *bool `toml:"skip_noexp"`

	Author    string  `toml:"author"`
	UnitName  string  `toml:"unit_name"`
	UnitMeter float32 `toml:"unit_meter"`
	UpAxis    string  `toml:"up_axis"`

	// Node types to export; empty exports everything.
	Types []string `toml:"types"`
}

// ExportOptions applies the manifest's export presets on top of base.
func (m *Manifest) ExportOptions(base collada.Options) (collada.Options, error) {
	opts := base
	p := m.Export
	if p == nil {
		return opts, nil
	}

	apply := func(dst, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&opts.Triangulate, p.Triangulate)
	apply(&opts.TangentArrays, p.Tangents)
	apply(&opts.CopyImages, p.CopyImages)
	apply(&opts.ShapeKeys, p.ShapeKeys)
	apply(&opts.ExcludeCtrlBones, p.ExcludeCtrlBones)
	apply(&opts.SelectedOnly, p.SelectedOnly)
	apply(&opts.Animation, p.Animation)
	apply(&opts.AnimationClips, p.AnimationClips)
	apply(&opts.SkipNoExport, p.SkipNoExport)

	if p.Author != "" {
		opts.Author = p.Author
	}
	if p.UnitName != "" {
		opts.UnitName = p.UnitName
	}
	if p.UnitMeter > 0 {
		opts.UnitMeter = p.UnitMeter
	}
	if p.UpAxis != "" {
		switch p.UpAxis {
		case "X_UP", "Y_UP", "Z_UP":
			opts.UpAxis = p.UpAxis
		default:
			return opts, fmt.Errorf("invalid up axis %q", p.UpAxis)
		}
	}

	if len(p.Types) > 0 {
		opts.ObjectTypes = make(map[scene.NodeType]bool)
		for _, t := range p.Types {
			nt, err := parseNodeType(t)
			if err != nil {
				return opts, err
			}
			opts.ObjectTypes[nt] = true
		}
	}
	return opts, nil
}

// ManifestNode describes one scene node. Type selects which payload
// table applies.
type ManifestNode struct {
	Name     string `toml:"name"`
	Type     string `toml:"type"`
	Parent   string `toml:"parent"`
	Selected bool   `toml:"selected"`

	Position [3]float32  `toml:"position"`
	Rotation [3]float32  `toml:"rotation"` // Euler XYZ, degrees
	Scale    *[3]float32 `toml:"scale"`

	// Mesh payload: OBJ path relative to the manifest.
	Model string `toml:"model"`
	// Decode texture pixels at load time instead of referencing files.
	DecodeTextures bool `toml:"decode_textures"`

	Camera *ManifestCamera `toml:"camera"`
	Light  *ManifestLight  `toml:"light"`

	EmptyDrawType string `toml:"empty_draw_type"`
}

type ManifestCamera struct {
	Orthographic bool    `toml:"orthographic"`
	Angle        float32 `toml:"angle"` // vertical FOV, degrees
	OrthoScale   float32 `toml:"ortho_scale"`
	ClipStart    float32 `toml:"clip_start"`
	ClipEnd      float32 `toml:"clip_end"`
}

type ManifestLight struct {
	Type      string     `toml:"type"` // point, spot, directional
	Colour    [3]float32 `toml:"colour"`
	Distance  float32    `toml:"distance"`
	SpotSize  float32    `toml:"spot_size"` // full cone angle, degrees
	UseSphere bool       `toml:"use_sphere"`
}

func vec3(a [3]float32) math.Vec3 {
	return math.NewVec3(a[0], a[1], a[2])
}

// eulerToQuat converts XYZ Euler angles in degrees to a quaternion,
// rotations applied X then Y then Z.
func eulerToQuat(angles [3]float32) math.Quaternion {
	qx := math.NewQuatFromAxisAngle(math.NewVec3(1, 0, 0), math.DegToRad(angles[0]), true)
	qy := math.NewQuatFromAxisAngle(math.NewVec3(0, 1, 0), math.DegToRad(angles[1]), true)
	qz := math.NewQuatFromAxisAngle(math.NewVec3(0, 0, 1), math.DegToRad(angles[2]), true)
	return qz.Mul(qy).Mul(qx)
}

// LoadManifest reads a TOML scene manifest and assembles the scene it
// describes, loading referenced models and textures along the way.
func LoadManifest(path string) (*scene.Scene, error) {
	sc, _, err := LoadManifestOptions(path, collada.DefaultOptions())
	return sc, err
}

// LoadManifestOptions reads a manifest and returns both its scene and
// the export options it presets on top of base.
func LoadManifestOptions(path string, base collada.Options) (*scene.Scene, collada.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, base, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, base, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	opts, err := m.ExportOptions(base)
	if err != nil {
		return nil, opts, fmt.Errorf("manifest %s: %w", path, err)
	}

	sc, err := BuildScene(&m, filepath.Dir(path))
	return sc, opts, err
}

// BuildScene assembles a scene from a parsed manifest. dir anchors
// relative resource paths.
func BuildScene(m *Manifest, dir string) (*scene.Scene, error) {
	sc := &scene.Scene{
		Name:          m.Name,
		FPS:           m.FPS,
		FrameStart:    m.FrameStart,
		FrameEnd:      m.FrameEnd,
		AmbientColour: vec3(m.Ambient),
		ResolutionX:   m.Resolution[0],
		ResolutionY:   m.Resolution[1],
	}
	if sc.Name == "" {
		sc.Name = "scene"
	}
	if sc.FPS <= 0 {
		sc.FPS = 24
	}
	if sc.FrameEnd <= sc.FrameStart {
		sc.FrameEnd = sc.FrameStart
	}
	if sc.ResolutionX <= 0 || sc.ResolutionY <= 0 {
		sc.ResolutionX = 1920
		sc.ResolutionY = 1080
	}

	meshCache := make(map[string]*scene.Mesh)
	nodes := make([]*scene.Node, 0, len(m.Nodes))
	byName := make(map[string]*scene.Node)

	for i := range m.Nodes {
		mn := &m.Nodes[i]

		name := mn.Name
		if name == "" {
			name = "node-" + uuid.NewString()
		}
		if byName[name] != nil {
			return nil, fmt.Errorf("duplicate node name %q", name)
		}

		nt, err := parseNodeType(mn.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}

		n := scene.NewNode(name, nt)
		n.Selected = mn.Selected
		n.EmptyDrawType = mn.EmptyDrawType

		scale := math.NewVec3One()
		if mn.Scale != nil {
			scale = vec3(*mn.Scale)
		}
		n.Transform.SetPositionRotationScale(vec3(mn.Position), eulerToQuat(mn.Rotation), scale)

		switch n.Type {
		case scene.NodeTypeMesh:
			if mn.Model == "" {
				return nil, fmt.Errorf("mesh node %q has no model", name)
			}
			modelPath := filepath.Join(dir, mn.Model)
			mesh := meshCache[modelPath]
			if mesh == nil {
				loaded, err := LoadOBJ(modelPath)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", name, err)
				}
				if mn.DecodeTextures {
					decodeMeshTextures(loaded)
				}
				meshCache[modelPath] = loaded
				mesh = loaded
			}
			n.Mesh = mesh
		case scene.NodeTypeCamera:
			n.Camera = buildCamera(name, mn.Camera)
		case scene.NodeTypeLight:
			n.Light = buildLight(name, mn.Light)
		}

		nodes = append(nodes, n)
		byName[name] = n
	}

	// Parent links resolve after every node exists, so manifests can
	// list children before their parents.
	for i := range m.Nodes {
		n := nodes[i]
		parent := m.Nodes[i].Parent
		if parent == "" {
			sc.AddRoot(n)
			continue
		}
		p, ok := byName[parent]
		if !ok {
			return nil, fmt.Errorf("node %q references unknown parent %q", n.Name, parent)
		}
		p.AddChild(n)
	}

	return sc, nil
}

// parseNodeType resolves a manifest type string; an empty string means
// an empty node.
func parseNodeType(s string) (scene.NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "empty":
		return scene.NodeTypeEmpty, nil
	case "mesh":
		return scene.NodeTypeMesh, nil
	case "curve":
		return scene.NodeTypeCurve, nil
	case "armature":
		return scene.NodeTypeArmature, nil
	case "camera":
		return scene.NodeTypeCamera, nil
	case "light", "lamp":
		return scene.NodeTypeLight, nil
	default:
		return scene.NodeTypeEmpty, fmt.Errorf("node type %q: %w", s, core.ErrUnknownResource)
	}
}

func buildCamera(name string, mc *ManifestCamera) *scene.Camera {
	cam := &scene.Camera{
		Name:        name,
		Perspective: true,
		Angle:       math.DegToRad(49.1),
		OrthoScale:  7.3,
		ClipStart:   0.1,
		ClipEnd:     100.0,
	}
	if mc == nil {
		return cam
	}
	cam.Perspective = !mc.Orthographic
	if mc.Angle > 0 {
		cam.Angle = math.DegToRad(mc.Angle)
	}
	if mc.OrthoScale > 0 {
		cam.OrthoScale = mc.OrthoScale
	}
	if mc.ClipStart > 0 {
		cam.ClipStart = mc.ClipStart
	}
	if mc.ClipEnd > 0 {
		cam.ClipEnd = mc.ClipEnd
	}
	return cam
}

func buildLight(name string, ml *ManifestLight) *scene.Light {
	light := &scene.Light{
		Name:     name,
		Type:     scene.LightTypePoint,
		Colour:   math.NewVec3(1, 1, 1),
		Distance: 30.0,
		SpotSize: math.DegToRad(45),
	}
	if ml == nil {
		return light
	}
	switch strings.ToLower(ml.Type) {
	case "spot":
		light.Type = scene.LightTypeSpot
	case "directional", "sun":
		light.Type = scene.LightTypeDirectional
	}
	if ml.Colour != [3]float32{} {
		light.Colour = vec3(ml.Colour)
	}
	if ml.Distance > 0 {
		light.Distance = ml.Distance
	}
	if ml.SpotSize > 0 {
		light.SpotSize = math.DegToRad(ml.SpotSize)
	}
	light.UseSphere = ml.UseSphere
	return light
}

// decodeMeshTextures loads pixel data for every texture slot image.
func decodeMeshTextures(mesh *scene.Mesh) {
	for _, mat := range mesh.Materials {
		for _, slot := range mat.TextureSlots {
			if slot.Image == nil || slot.Image.Path == "" || slot.Image.Data != nil {
				continue
			}
			data, err := DecodeImage(slot.Image.Path)
			if err != nil {
				core.LogWarn("texture %q: %v", slot.Image.Path, err)
				continue
			}
			slot.Image.Data = data
		}
	}
}
