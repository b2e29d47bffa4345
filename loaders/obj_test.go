package loaders

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadOBJTriangle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	writeFile(t, path, `# a triangle
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`)

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	if mesh.Name != "tri" {
		t.Errorf("Name = %q, want tri", mesh.Name)
	}
	if len(mesh.Positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(mesh.Positions))
	}
	if len(mesh.Polygons) != 1 {
		t.Fatalf("got %d polygons, want 1", len(mesh.Polygons))
	}
	p := mesh.Polygons[0]
	if p.MaterialIndex != -1 {
		t.Errorf("MaterialIndex = %d, want -1", p.MaterialIndex)
	}
	if len(p.Corners) != 3 {
		t.Fatalf("got %d corners, want 3", len(p.Corners))
	}
	c := p.Corners[1]
	if c.Vertex != 1 {
		t.Errorf("corner vertex = %d, want 1", c.Vertex)
	}
	if len(c.UV) != 1 || c.UV[0].X != 1 || c.UV[0].Y != 0 {
		t.Errorf("corner uv = %v, want (1, 0)", c.UV)
	}
	if c.Normal.Z != 1 {
		t.Errorf("corner normal = %v, want (0, 0, 1)", c.Normal)
	}
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neg.obj")
	writeFile(t, path, `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`)

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	corners := mesh.Polygons[0].Corners
	for i, c := range corners {
		if c.Vertex != i {
			t.Errorf("corner %d references vertex %d", i, c.Vertex)
		}
	}
}

func TestLoadOBJComputesFlatNormal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.obj")
	writeFile(t, path, `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	n := mesh.Polygons[0].Corners[0].Normal
	if n.X != 0 || n.Y != 0 || n.Z != 1 {
		t.Errorf("flat normal = %v, want (0, 0, 1)", n)
	}
}

func TestLoadOBJMaterials(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "box.mtl"), `newmtl Red
Kd 1 0 0
Ks 0.5 0.5 0.5
Ns 96
d 0.5
map_Kd red.png
`)
	path := filepath.Join(dir, "box.obj")
	writeFile(t, path, `mtllib box.mtl
v 0 0 0
v 1 0 0
v 0 1 0
usemtl Red
f 1 2 3
usemtl Ghost
f 3 2 1
`)

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(mesh.Materials))
	}

	red := mesh.Materials[0]
	if red.Name != "Red" {
		t.Errorf("material name = %q, want Red", red.Name)
	}
	if red.DiffuseColour.X != 1 || red.DiffuseColour.Y != 0 {
		t.Errorf("diffuse = %v", red.DiffuseColour)
	}
	if red.DiffuseIntensity != 1 {
		t.Errorf("DiffuseIntensity = %v, want 1", red.DiffuseIntensity)
	}
	if red.SpecularHardness != 96 {
		t.Errorf("SpecularHardness = %v, want 96", red.SpecularHardness)
	}
	if !red.UseTransparency || red.Alpha != 0.5 {
		t.Errorf("transparency = %v alpha = %v", red.UseTransparency, red.Alpha)
	}
	if len(red.TextureSlots) != 1 || !red.TextureSlots[0].UseDiffuse {
		t.Fatalf("texture slots = %v", red.TextureSlots)
	}
	if got := red.TextureSlots[0].Image.Path; got != filepath.Join(dir, "red.png") {
		t.Errorf("texture path = %q", got)
	}

	// Undefined materials still get a named slot.
	if mesh.Materials[1].Name != "Ghost" {
		t.Errorf("material name = %q, want Ghost", mesh.Materials[1].Name)
	}
	if mesh.Polygons[0].MaterialIndex != 0 || mesh.Polygons[1].MaterialIndex != 1 {
		t.Errorf("material indices = %d, %d", mesh.Polygons[0].MaterialIndex, mesh.Polygons[1].MaterialIndex)
	}
}

func TestLoadOBJClampsAlpha(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "odd.mtl"), `newmtl Solid
d 1.5
newmtl Hollow
Tr 1.2
`)
	path := filepath.Join(dir, "odd.obj")
	writeFile(t, path, `mtllib odd.mtl
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`)

	mesh, err := LoadOBJ(path)
	if err != nil {
		t.Fatal(err)
	}
	solid := mesh.Materials[0]
	if solid.Alpha != 1 || solid.UseTransparency {
		t.Errorf("d above 1 should clamp opaque, got alpha %v transparency %v", solid.Alpha, solid.UseTransparency)
	}
	hollow := mesh.Materials[1]
	if hollow.Alpha != 0 || !hollow.UseTransparency {
		t.Errorf("Tr above 1 should clamp fully transparent, got alpha %v", hollow.Alpha)
	}
}

func TestLoadOBJNoFaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.obj")
	writeFile(t, path, "v 0 0 0\nv 1 1 1\n")

	if _, err := LoadOBJ(path); err == nil {
		t.Error("expected an error for an OBJ without faces")
	}
}
