// Package loaders reads scene documents and their resources from disk:
// TOML scene manifests, Wavefront OBJ/MTL geometry and the image
// formats material textures come in.
package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

// LoadOBJ parses a Wavefront OBJ file, along with any MTL libraries it
// references, into mesh data.
func LoadOBJ(path string) (*scene.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := &scene.Mesh{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	var uvs []math.Vec2
	var normals []math.Vec3
	materialIndex := -1
	materialByName := make(map[string]int)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		fields := strings.Fields(line)
		keyword := fields[0]
		args := fields[1:]

		switch keyword {
		case "v":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			mesh.Positions = append(mesh.Positions, v)
		case "vt":
			if len(args) < 2 {
				return nil, fmt.Errorf("%s:%d: texture coordinate needs 2 values", path, lineNo)
			}
			u, err1 := parseFloat(args[0])
			v, err2 := parseFloat(args[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%s:%d: invalid texture coordinate", path, lineNo)
			}
			uvs = append(uvs, math.NewVec2(u, v))
		case "vn":
			v, err := parseVec3(args)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			normals = append(normals, v)
		case "f":
			poly, err := parseFace(args, mesh.Positions, uvs, normals, materialIndex)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			mesh.Polygons = append(mesh.Polygons, poly)
		case "o", "g":
			if len(args) > 0 && mesh.Name == "" {
				mesh.Name = args[0]
			}
		case "mtllib":
			for _, lib := range args {
				mats, err := loadMTL(filepath.Join(filepath.Dir(path), lib))
				if err != nil {
					core.LogWarn("material library %q: %v", lib, err)
					continue
				}
				for _, m := range mats {
					if _, seen := materialByName[m.Name]; seen {
						continue
					}
					materialByName[m.Name] = len(mesh.Materials)
					mesh.Materials = append(mesh.Materials, m)
				}
			}
		case "usemtl":
			if len(args) == 0 {
				materialIndex = -1
				break
			}
			idx, ok := materialByName[args[0]]
			if !ok {
				// Reference to a material no library defined; keep the
				// name so the slot still exports.
				idx = len(mesh.Materials)
				materialByName[args[0]] = idx
				mesh.Materials = append(mesh.Materials, scene.NewMaterial(args[0]))
			}
			materialIndex = idx
		case "s", "l", "p":
			// Smoothing groups, lines and points carry nothing the
			// exporter consumes.
		default:
			core.LogDebug("skipping unknown OBJ keyword %q", keyword)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(mesh.Polygons) == 0 {
		return nil, fmt.Errorf("%s: no faces", path)
	}
	return mesh, nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func parseVec3(args []string) (math.Vec3, error) {
	if len(args) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 values, got %d", len(args))
	}
	x, err1 := parseFloat(args[0])
	y, err2 := parseFloat(args[1])
	z, err3 := parseFloat(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return math.Vec3{}, fmt.Errorf("invalid vector %q", strings.Join(args, " "))
	}
	return math.NewVec3(x, y, z), nil
}

// resolveIndex turns an OBJ index (1-based, negative counts from the
// end) into a slice index.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %q out of range (%d elements)", s, count)
	}
	return i, nil
}

func parseFace(args []string, positions []math.Vec3, uvs []math.Vec2, normals []math.Vec3, materialIndex int) (scene.Polygon, error) {
	if len(args) < 3 {
		return scene.Polygon{}, fmt.Errorf("face needs at least 3 vertices")
	}

	poly := scene.Polygon{
		MaterialIndex: materialIndex,
		Corners:       make([]scene.Corner, 0, len(args)),
	}

	missingNormal := false
	for _, arg := range args {
		parts := strings.Split(arg, "/")
		c := scene.Corner{}

		vi, err := resolveIndex(parts[0], len(positions))
		if err != nil {
			return scene.Polygon{}, err
		}
		c.Vertex = vi

		if len(parts) > 1 && parts[1] != "" {
			ti, err := resolveIndex(parts[1], len(uvs))
			if err != nil {
				return scene.Polygon{}, err
			}
			c.UV = []math.Vec2{uvs[ti]}
		}

		if len(parts) > 2 && parts[2] != "" {
			ni, err := resolveIndex(parts[2], len(normals))
			if err != nil {
				return scene.Polygon{}, err
			}
			c.Normal = normals[ni]
		} else {
			missingNormal = true
		}

		poly.Corners = append(poly.Corners, c)
	}

	if missingNormal {
		n := faceNormal(poly, positions)
		for i := range poly.Corners {
			poly.Corners[i].Normal = n
		}
	}
	return poly, nil
}

// faceNormal computes a flat normal from the first three corners.
func faceNormal(p scene.Polygon, positions []math.Vec3) math.Vec3 {
	a := positions[p.Corners[0].Vertex]
	b := positions[p.Corners[1].Vertex]
	c := positions[p.Corners[2].Vertex]
	return b.Sub(a).Cross(c.Sub(a)).Normalized()
}

// loadMTL parses a Wavefront material library into materials, in
// definition order.
func loadMTL(path string) ([]*scene.Material, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var materials []*scene.Material
	var current *scene.Material
	dir := filepath.Dir(path)

	textureSlot := func(args []string) *scene.TextureSlot {
		// Map options precede the filename; the last argument is the
		// texture path.
		name := args[len(args)-1]
		img, err := LoadImage(filepath.Join(dir, name), false)
		if err != nil {
			core.LogWarn("texture %q: %v", name, err)
			return nil
		}
		return &scene.TextureSlot{Image: img, Enabled: true}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		fields := strings.Fields(line)
		keyword := fields[0]
		args := fields[1:]

		if keyword == "newmtl" {
			name := "material"
			if len(args) > 0 {
				name = args[0]
			}
			current = scene.NewMaterial(name)
			// OBJ colours are absolute; fold the host-tool intensity
			// factors away.
			current.DiffuseIntensity = 1.0
			current.SpecularIntensity = 1.0
			materials = append(materials, current)
			continue
		}
		if current == nil {
			continue
		}

		switch keyword {
		case "Kd":
			if v, err := parseVec3(args); err == nil {
				current.DiffuseColour = v
			}
		case "Ks":
			if v, err := parseVec3(args); err == nil {
				current.SpecularColour = v
			}
		case "Ke":
			if v, err := parseVec3(args); err == nil {
				// Collada carries a single emission factor.
				current.Emit = maxComponent(v)
			}
		case "Ns":
			if f, err := parseFloat(args[0]); err == nil {
				current.SpecularHardness = f
			}
		case "Ni":
			if f, err := parseFloat(args[0]); err == nil {
				current.SpecularIOR = f
			}
		case "d":
			if f, err := parseFloat(args[0]); err == nil {
				current.Alpha = math.Clamp(f, 0, 1)
				current.UseTransparency = current.Alpha < 1.0
			}
		case "Tr":
			if f, err := parseFloat(args[0]); err == nil {
				current.Alpha = math.Clamp(1.0-f, 0, 1)
				current.UseTransparency = current.Alpha < 1.0
			}
		case "map_Kd":
			if len(args) > 0 {
				if slot := textureSlot(args); slot != nil {
					slot.UseDiffuse = true
					current.TextureSlots = append(current.TextureSlots, slot)
				}
			}
		case "map_Ks":
			if len(args) > 0 {
				if slot := textureSlot(args); slot != nil {
					slot.UseSpecular = true
					current.TextureSlots = append(current.TextureSlots, slot)
				}
			}
		case "map_Ke":
			if len(args) > 0 {
				if slot := textureSlot(args); slot != nil {
					slot.UseEmission = true
					current.TextureSlots = append(current.TextureSlots, slot)
				}
			}
		case "map_Bump", "map_bump", "bump", "norm":
			if len(args) > 0 {
				if slot := textureSlot(args); slot != nil {
					slot.UseNormal = true
					current.TextureSlots = append(current.TextureSlots, slot)
				}
			}
		case "illum", "Ka", "Tf":
			// Lighting model hints without a Collada destination.
		default:
			core.LogDebug("skipping unknown MTL keyword %q", keyword)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

func maxComponent(v math.Vec3) float32 {
	out := v.X
	if v.Y > out {
		out = v.Y
	}
	if v.Z > out {
		out = v.Z
	}
	return out
}
