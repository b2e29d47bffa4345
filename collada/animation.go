package collada

import (
	"fmt"
	"strings"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

type matrixKey struct {
	time   float32
	matrix math.Mat4
}

type scalarKey struct {
	time  float32
	value float32
}

// exportAnimationTransformChannel writes one sampled animation: time,
// output and interpolation sources, a sampler, and a channel wired to
// the target. Matrix channels target the node's transform sid, scalar
// channels target the sid baked into the target string.
func (e *Exporter) exportAnimationTransformChannel(target string, matKeys []matrixKey, scalarKeys []scalarKey) string {
	w := e.w
	matrices := matKeys != nil

	frameTotal := len(matKeys)
	if !matrices {
		frameTotal = len(scalarKeys)
	}

	animID := w.newID("anim")
	w.line(sectionAnims, 1, "<animation id=\"%s\">", animID)

	var frames, transforms, interps strings.Builder
	if matrices {
		for _, k := range matKeys {
			frames.WriteByte(' ')
			frames.WriteString(formatFloat(k.time))
			transforms.WriteByte(' ')
			transforms.WriteString(formatMatrix(k.matrix))
			interps.WriteString(" LINEAR")
		}
	} else {
		for _, k := range scalarKeys {
			frames.WriteByte(' ')
			frames.WriteString(formatFloat(k.time))
			transforms.WriteByte(' ')
			transforms.WriteString(formatFloat(k.value))
			interps.WriteString(" LINEAR")
		}
	}

	// Time Source
	w.line(sectionAnims, 2, "<source id=\"%s-input\">", animID)
	w.line(sectionAnims, 3, "<float_array id=\"%s-input-array\" count=\"%d\">%s</float_array>",
		animID, frameTotal, frames.String())
	w.line(sectionAnims, 3, "<technique_common>")
	w.line(sectionAnims, 4, "<accessor source=\"#%s-input-array\" count=\"%d\" stride=\"1\">", animID, frameTotal)
	w.line(sectionAnims, 5, "<param name=\"TIME\" type=\"float\"/>")
	w.line(sectionAnims, 4, "</accessor>")
	w.line(sectionAnims, 3, "</technique_common>")
	w.line(sectionAnims, 2, "</source>")

	// Value Source
	w.line(sectionAnims, 2, "<source id=\"%s-transform-output\">", animID)
	if matrices {
		w.line(sectionAnims, 3, "<float_array id=\"%s-transform-output-array\" count=\"%d\">%s</float_array>",
			animID, frameTotal*16, transforms.String())
	} else {
		w.line(sectionAnims, 3, "<float_array id=\"%s-transform-output-array\" count=\"%d\">%s</float_array>",
			animID, frameTotal, transforms.String())
	}
	w.line(sectionAnims, 3, "<technique_common>")
	if matrices {
		w.line(sectionAnims, 4, "<accessor source=\"#%s-transform-output-array\" count=\"%d\" stride=\"16\">", animID, frameTotal)
		w.line(sectionAnims, 5, "<param name=\"TRANSFORM\" type=\"float4x4\"/>")
	} else {
		w.line(sectionAnims, 4, "<accessor source=\"#%s-transform-output-array\" count=\"%d\" stride=\"1\">", animID, frameTotal)
		w.line(sectionAnims, 5, "<param name=\"X\" type=\"float\"/>")
	}
	w.line(sectionAnims, 4, "</accessor>")
	w.line(sectionAnims, 3, "</technique_common>")
	w.line(sectionAnims, 2, "</source>")

	// Interpolation Source
	w.line(sectionAnims, 2, "<source id=\"%s-interpolation-output\">", animID)
	w.line(sectionAnims, 3, "<Name_array id=\"%s-interpolation-output-array\" count=\"%d\">%s</Name_array>",
		animID, frameTotal, interps.String())
	w.line(sectionAnims, 3, "<technique_common>")
	w.line(sectionAnims, 4, "<accessor source=\"#%s-interpolation-output-array\" count=\"%d\" stride=\"1\">", animID, frameTotal)
	w.line(sectionAnims, 5, "<param name=\"INTERPOLATION\" type=\"Name\"/>")
	w.line(sectionAnims, 4, "</accessor>")
	w.line(sectionAnims, 3, "</technique_common>")
	w.line(sectionAnims, 2, "</source>")

	w.line(sectionAnims, 2, "<sampler id=\"%s-sampler\">", animID)
	w.line(sectionAnims, 3, "<input semantic=\"INPUT\" source=\"#%s-input\"/>", animID)
	w.line(sectionAnims, 3, "<input semantic=\"OUTPUT\" source=\"#%s-transform-output\"/>", animID)
	w.line(sectionAnims, 3, "<input semantic=\"INTERPOLATION\" source=\"#%s-interpolation-output\"/>", animID)
	w.line(sectionAnims, 2, "</sampler>")
	if matrices {
		w.line(sectionAnims, 2, "<channel source=\"#%s-sampler\" target=\"%s/transform\"/>", animID, target)
	} else {
		w.line(sectionAnims, 2, "<channel source=\"#%s-sampler\" target=\"%s\"/>", animID, target)
	}
	w.line(sectionAnims, 1, "</animation>")

	return animID
}

// exportAnimation bakes the given tracks over a frame range, one key
// per frame, and writes a channel per animated target. allowed, when
// non-nil, restricts sampling to the listed armatures (plus meshes
// whose morphs they drive).
func (e *Exporter) exportAnimation(start, end int, transforms []*scene.TransformTrack, weights []*scene.WeightTrack, allowed map[*scene.Node]bool) []string {
	frameLen := e.scene.FrameLen()
	frameSub := float32(0)
	if start > 0 {
		frameSub = float32(start) * frameLen
	}

	objectTracks := make(map[string]*scene.TransformTrack)
	boneTracks := make(map[string]map[string]*scene.TransformTrack)
	for _, t := range transforms {
		if t.Bone == "" {
			objectTracks[t.Node] = t
			continue
		}
		if boneTracks[t.Node] == nil {
			boneTracks[t.Node] = make(map[string]*scene.TransformTrack)
		}
		boneTracks[t.Node][t.Bone] = t
	}
	weightTracks := make(map[string]map[string]*scene.WeightTrack)
	for _, t := range weights {
		if weightTracks[t.Node] == nil {
			weightTracks[t.Node] = make(map[string]*scene.WeightTrack)
		}
		weightTracks[t.Node][t.ShapeKey] = t
	}

	xformCache := make(map[string][]matrixKey)
	blendCache := make(map[string][]scalarKey)
	var xformOrder, blendOrder []string

	restPos := math.Vec3{}
	restRot := math.NewQuatIdentity()
	restScale := math.Vec3{X: 1, Y: 1, Z: 1}

	for t := start; t <= end; t++ {
		frame := float32(t)
		key := frame*frameLen - frameSub

		for _, node := range e.nodeOrder {
			if allowed != nil && !allowed[node] {
				driver := e.morphDriver[node]
				if !(node.Type == scene.NodeTypeMesh && node.Mesh != nil &&
					driver != nil && allowed[driver]) {
					continue
				}
			}

			if node.Type == scene.NodeTypeMesh && node.Mesh != nil && len(node.Mesh.ShapeKeys) > 0 {
				if md, ok := e.meshCache[node.Mesh]; ok && md.morphID != "" {
					for i, sk := range node.Mesh.ShapeKeys {
						if i == 0 {
							continue
						}
						name := fmt.Sprintf("%s-morph-weights(%d)", md.morphID, i-1)
						if _, seen := blendCache[name]; !seen {
							blendCache[name] = nil
							blendOrder = append(blendOrder, name)
						}
						value := float32(0)
						if tr := weightTracks[node.Name][sk.Name]; tr != nil {
							value = tr.Sample(frame)
						}
						blendCache[name] = append(blendCache[name], scalarKey{key, value})
					}
				}
			}

			if node.Type == scene.NodeTypeMesh && node.Parent != nil &&
				node.Parent.Type == scene.NodeTypeArmature {
				// Skinned geometry must not carry its own transform
				// animation; the skin animates instead.
				continue
			}

			track := objectTracks[node.Name]
			if node.Animated || track != nil {
				name := e.nodeID(node)
				if _, seen := xformCache[name]; !seen {
					xformCache[name] = nil
					xformOrder = append(xformOrder, name)
				}
				mtx := node.LocalMatrix()
				if track != nil {
					tr := node.Transform
					mtx = track.Sample(frame, tr.Position, tr.Rotation, tr.Scale)
				}
				xformCache[name] = append(xformCache[name], matrixKey{key, mtx})
			}

			if node.Type == scene.NodeTypeArmature && node.Skeleton != nil {
				si := e.skeletonInfo[node]
				bt := boneTracks[node.Name]

				// Armature-space pose per bone, memoized per frame.
				poseArm := make(map[*scene.Bone]math.Mat4)
				var pose func(b *scene.Bone) math.Mat4
				pose = func(b *scene.Bone) math.Mat4 {
					if m, ok := poseArm[b]; ok {
						return m
					}
					local := b.Rest
					if b.Parent != nil {
						local = b.Parent.Rest.InverseSafe().Mul(local)
					}
					if tr := bt[b.Name]; tr != nil {
						local = local.Mul(tr.Sample(frame, restPos, restRot, restScale))
					}
					m := local
					if b.Parent != nil {
						m = pose(b.Parent).Mul(local)
					}
					poseArm[b] = m
					return m
				}

				node.Skeleton.Walk(func(b *scene.Bone) {
					target, exported := si.boneIDs[b]
					if !exported {
						return
					}
					if _, seen := xformCache[target]; !seen {
						xformCache[target] = nil
						xformOrder = append(xformOrder, target)
					}

					mtx := pose(b)
					parent := b.Parent
					for parent != nil {
						if _, ok := si.boneIDs[parent]; ok {
							break
						}
						parent = parent.Parent
					}
					if parent != nil {
						parentScale := restScale
						if tr := bt[parent.Name]; tr != nil {
							parentScale = tr.SampleScale(frame, restScale)
						}
						invisible := parentScale.X == 0 || parentScale.Y == 0 || parentScale.Z == 0
						if !invisible {
							mtx = pose(parent).InverseSafe().Mul(mtx)
						}
					}

					xformCache[target] = append(xformCache[target], matrixKey{key, mtx})
				})
			}
		}
	}

	var tcn []string
	for _, nid := range xformOrder {
		tcn = append(tcn, e.exportAnimationTransformChannel(nid, xformCache[nid], nil))
	}
	for _, nid := range blendOrder {
		tcn = append(tcn, e.exportAnimationTransformChannel(nid, nil, blendCache[nid]))
	}
	return tcn
}

// exportAnimations writes library_animations, either one clip per
// action or a single merged timeline over the scene's frame range.
func (e *Exporter) exportAnimations() {
	w := e.w
	w.line(sectionAnims, 0, "<library_animations>")

	if e.opts.AnimationClips && len(e.skeletons) > 0 {
		frameLen := e.scene.FrameLen()
		w.line(sectionAnimClips, 0, "<library_animation_clips>")

		for _, a := range e.scene.Actions {
			if e.opts.SkipNoExport && strings.HasSuffix(a.Name, "-noexp") {
				continue
			}

			bones := a.BoneNames()
			allowed := make(map[*scene.Node]bool)
			for _, s := range e.skeletons {
				if s.Skeleton == nil {
					continue
				}
				for name := range bones {
					if s.Skeleton.FindBone(name) != nil {
						allowed[s] = true
						break
					}
				}
			}

			tcn := e.exportAnimation(a.FrameStart, a.FrameEnd, a.Transforms, a.Weights, allowed)

			w.line(sectionAnimClips, 1, "<animation_clip name=\"%s\" start=\"%s\" end=\"%s\">",
				escape(a.Name),
				formatFloat(float32(a.FrameStart)*frameLen),
				formatFloat(float32(a.FrameEnd)*frameLen))
			for _, id := range tcn {
				w.line(sectionAnimClips, 2, "<instance_animation url=\"#%s\"/>", id)
			}
			w.line(sectionAnimClips, 1, "</animation_clip>")

			if len(tcn) == 0 {
				core.LogWarn("animation clip %q contains no tracks.", a.Name)
			}
		}

		w.line(sectionAnimClips, 0, "</library_animation_clips>")
	} else {
		// Merged timeline: every action's tracks bake onto the scene
		// frame range.
		var transforms []*scene.TransformTrack
		var weights []*scene.WeightTrack
		for _, a := range e.scene.Actions {
			if e.opts.SkipNoExport && strings.HasSuffix(a.Name, "-noexp") {
				continue
			}
			transforms = append(transforms, a.Transforms...)
			weights = append(weights, a.Weights...)
		}
		e.exportAnimation(e.scene.FrameStart, e.scene.FrameEnd, transforms, weights, nil)
	}

	w.line(sectionAnims, 0, "</library_animations>")
}
