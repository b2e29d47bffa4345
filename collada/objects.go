package collada

import (
	"fmt"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

// isControlBone applies the control-bone filter. Root bones always
// export, or the joint hierarchy would have no anchor.
func (e *Exporter) isControlBone(b *scene.Bone) bool {
	if !e.opts.ExcludeCtrlBones || !b.IsControl() {
		return false
	}
	if b.Parent == nil {
		core.LogWarn("root bone %q cannot be a control bone.", b.Name)
		return false
	}
	return true
}

func (e *Exporter) exportArmatureBone(b *scene.Bone, il int, si *skeletonInfo) {
	w := e.w
	isCtrl := e.isControlBone(b)

	var boneid string
	if !isCtrl {
		boneid = w.newID("bone")
		boneidx := si.boneCount
		si.boneCount++
		bonesid := fmt.Sprintf("%s-%d", si.id, boneidx)

		if e.usedBones[b.Name] {
			if e.opts.AnimationClips {
				core.LogWarn("bone name %q used in more than one skeleton. Actions might export wrong.", b.Name)
			}
		} else {
			e.usedBones[b.Name] = true
		}

		si.boneIndex[b.Name] = boneidx
		si.boneIDs[b] = boneid
		si.boneNames = append(si.boneNames, bonesid)
		w.line(sectionNodes, il, "<node id=\"%s\" sid=\"%s\" name=\"%s\" type=\"JOINT\">",
			boneid, bonesid, escape(b.Name))
		il++

		si.bindPoses = append(si.bindPoses, si.armatureXform.Mul(b.Rest).InverseSafe())
	}

	xform := b.Rest
	if b.Parent != nil {
		xform = b.Parent.Rest.InverseSafe().Mul(xform)
	} else {
		si.skeletonNodes = append(si.skeletonNodes, boneid)
	}

	if !isCtrl {
		w.line(sectionNodes, il, "<matrix sid=\"transform\">%s</matrix>", formatMatrix(xform))
	}

	for _, c := range b.Children {
		e.exportArmatureBone(c, il, si)
	}

	if !isCtrl {
		il--
		w.line(sectionNodes, il, "</node>")
	}
}

func (e *Exporter) exportArmatureNode(n *scene.Node, il int) {
	if n.Skeleton == nil {
		return
	}

	e.skeletons = append(e.skeletons, n)

	si := &skeletonInfo{
		id:            e.w.newID("skelbones"),
		boneIndex:     make(map[string]int),
		boneIDs:       make(map[*scene.Bone]string),
		armatureXform: n.WorldMatrix(),
	}
	e.skeletonInfo[n] = si

	for _, b := range n.Skeleton.Bones {
		if b.Parent != nil {
			continue
		}
		e.exportArmatureBone(b, il, si)
	}
}

func (e *Exporter) exportCameraNode(n *scene.Node, il int) {
	if n.Camera == nil {
		return
	}

	w := e.w
	camera := n.Camera
	camid := w.newID("camera")
	aspect := float32(e.scene.ResolutionX) / float32(e.scene.ResolutionY)

	w.line(sectionCameras, 1, "<camera id=\"%s\" name=\"%s\">", camid, escape(camera.Name))
	w.line(sectionCameras, 2, "<optics>")
	w.line(sectionCameras, 3, "<technique_common>")
	if camera.Perspective {
		w.line(sectionCameras, 4, "<perspective>")
		w.line(sectionCameras, 5, "<yfov>%s</yfov>", formatFloat(math.RadToDeg(camera.Angle)))
		w.line(sectionCameras, 5, "<aspect_ratio>%s</aspect_ratio>", formatFloat(aspect))
		w.line(sectionCameras, 5, "<znear>%s</znear>", formatFloat(camera.ClipStart))
		w.line(sectionCameras, 5, "<zfar>%s</zfar>", formatFloat(camera.ClipEnd))
		w.line(sectionCameras, 4, "</perspective>")
	} else {
		w.line(sectionCameras, 4, "<orthographic>")
		w.line(sectionCameras, 5, "<xmag>%s</xmag>", formatFloat(camera.OrthoScale*0.5))
		w.line(sectionCameras, 5, "<aspect_ratio>%s</aspect_ratio>", formatFloat(aspect))
		w.line(sectionCameras, 5, "<znear>%s</znear>", formatFloat(camera.ClipStart))
		w.line(sectionCameras, 5, "<zfar>%s</zfar>", formatFloat(camera.ClipEnd))
		w.line(sectionCameras, 4, "</orthographic>")
	}
	w.line(sectionCameras, 3, "</technique_common>")
	w.line(sectionCameras, 2, "</optics>")
	w.line(sectionCameras, 1, "</camera>")

	w.line(sectionNodes, il, "<instance_camera url=\"#%s\"/>", camid)
}

func (e *Exporter) exportLightNode(n *scene.Node, il int) {
	if n.Light == nil {
		return
	}

	w := e.w
	light := n.Light
	lightid := w.newID("light")

	w.line(sectionLights, 1, "<light id=\"%s\" name=\"%s\">", lightid, escape(light.Name))
	w.line(sectionLights, 3, "<technique_common>")

	switch light.Type {
	case scene.LightTypePoint:
		w.line(sectionLights, 4, "<point>")
		w.line(sectionLights, 5, "<color>%s</color>", formatColour(light.Colour))
		// Convert to linear attenuation
		w.line(sectionLights, 5, "<linear_attenuation>%s</linear_attenuation>",
			formatFloat(2.0/light.Distance))
		if light.UseSphere {
			w.line(sectionLights, 5, "<zfar>%s</zfar>", formatFloat(light.Distance))
		}
		w.line(sectionLights, 4, "</point>")
	case scene.LightTypeSpot:
		w.line(sectionLights, 4, "<spot>")
		w.line(sectionLights, 5, "<color>%s</color>", formatColour(light.Colour))
		// Convert to linear attenuation
		w.line(sectionLights, 5, "<linear_attenuation>%s</linear_attenuation>",
			formatFloat(2.0/light.Distance))
		w.line(sectionLights, 5, "<falloff_angle>%s</falloff_angle>",
			formatFloat(math.RadToDeg(light.SpotSize/2)))
		w.line(sectionLights, 4, "</spot>")
	default:
		// Write a sun lamp for everything else (not supported)
		w.line(sectionLights, 4, "<directional>")
		w.line(sectionLights, 5, "<color>%s</color>", formatColour(light.Colour))
		w.line(sectionLights, 4, "</directional>")
	}

	w.line(sectionLights, 3, "</technique_common>")
	w.line(sectionLights, 1, "</light>")

	w.line(sectionNodes, il, "<instance_light url=\"#%s\"/>", lightid)
}

func (e *Exporter) exportCurveNode(n *scene.Node, il int) {
	if n.Curve == nil {
		return
	}

	curveid := e.exportCurve(n.Curve)

	w := e.w
	w.line(sectionNodes, il, "<instance_geometry url=\"#%s\">", curveid)
	w.line(sectionNodes, il, "</instance_geometry>")
}

// exportCurve serializes a curve's splines as a Collada <spline>
// geometry and returns its id.
func (e *Exporter) exportCurve(curve *scene.Curve) string {
	if id, ok := e.curveCache[curve]; ok {
		return id
	}

	w := e.w
	splineid := w.newID("spline")

	closed := 0
	if curve.Closed {
		closed = 1
	}

	w.line(sectionGeometries, 1, "<geometry id=\"%s\" name=\"%s\">", splineid, escape(curve.Name))
	w.line(sectionGeometries, 2, "<spline closed=\"%d\">", closed)

	var points, handlesIn, handlesOut, tilts []float32
	var interps []string

	appendVec := func(dst []float32, v math.Vec3) []float32 {
		return append(dst, v.X, v.Y, v.Z)
	}

	for _, cs := range curve.Splines {
		if cs.Type == scene.SplineTypeBezier {
			for _, p := range cs.Points {
				points = appendVec(points, p.Co)
				handlesIn = appendVec(handlesIn, p.HandleLeft)
				handlesOut = appendVec(handlesOut, p.HandleRight)
				tilts = append(tilts, p.Tilt)
				interps = append(interps, "BEZIER")
			}
		} else {
			// Non-bezier splines degenerate to linear points with
			// coincident handles.
			for _, p := range cs.Points {
				points = appendVec(points, p.Co)
				handlesIn = appendVec(handlesIn, p.Co)
				handlesOut = appendVec(handlesOut, p.Co)
				tilts = append(tilts, p.Tilt)
				interps = append(interps, "LINEAR")
			}
		}
	}

	writeFloatSource := func(suffix string, vals []float32, stride int, params ...string) {
		w.line(sectionGeometries, 3, "<source id=\"%s-%s\">", splineid, suffix)
		w.line(sectionGeometries, 4, "<float_array id=\"%s-%s-array\" count=\"%d\">%s</float_array>",
			splineid, suffix, len(vals), formatFloats(vals, 1))
		w.line(sectionGeometries, 4, "<technique_common>")
		w.line(sectionGeometries, 5, "<accessor source=\"#%s-%s-array\" count=\"%d\" stride=\"%d\">",
			splineid, suffix, len(vals)/stride, stride)
		for _, p := range params {
			w.line(sectionGeometries, 6, "<param name=\"%s\" type=\"float\"/>", p)
		}
		w.line(sectionGeometries, 5, "</accessor>")
		w.line(sectionGeometries, 4, "</technique_common>")
		w.line(sectionGeometries, 3, "</source>")
	}

	writeFloatSource("positions", points, 3, "X", "Y", "Z")
	writeFloatSource("intangents", handlesIn, 3, "X", "Y", "Z")
	writeFloatSource("outtangents", handlesOut, 3, "X", "Y", "Z")

	w.line(sectionGeometries, 3, "<source id=\"%s-interpolations\">", splineid)
	interpValues := ""
	for _, x := range interps {
		interpValues += " " + x
	}
	w.line(sectionGeometries, 4, "<Name_array id=\"%s-interpolations-array\" count=\"%d\">%s</Name_array>",
		splineid, len(interps), interpValues)
	w.line(sectionGeometries, 4, "<technique_common>")
	w.line(sectionGeometries, 5, "<accessor source=\"#%s-interpolations-array\" count=\"%d\" stride=\"1\">",
		splineid, len(interps))
	w.line(sectionGeometries, 6, "<param name=\"INTERPOLATION\" type=\"name\"/>")
	w.line(sectionGeometries, 5, "</accessor>")
	w.line(sectionGeometries, 4, "</technique_common>")
	w.line(sectionGeometries, 3, "</source>")

	writeFloatSource("tilts", tilts, 1, "TILT")

	w.line(sectionGeometries, 3, "<control_vertices>")
	w.line(sectionGeometries, 4, "<input semantic=\"POSITION\" source=\"#%s-positions\"/>", splineid)
	w.line(sectionGeometries, 4, "<input semantic=\"IN_TANGENT\" source=\"#%s-intangents\"/>", splineid)
	w.line(sectionGeometries, 4, "<input semantic=\"OUT_TANGENT\" source=\"#%s-outtangents\"/>", splineid)
	w.line(sectionGeometries, 4, "<input semantic=\"INTERPOLATION\" source=\"#%s-interpolations\"/>", splineid)
	w.line(sectionGeometries, 4, "<input semantic=\"TILT\" source=\"#%s-tilts\"/>", splineid)
	w.line(sectionGeometries, 3, "</control_vertices>")

	w.line(sectionGeometries, 2, "</spline>")
	w.line(sectionGeometries, 1, "</geometry>")

	e.curveCache[curve] = splineid
	return splineid
}
