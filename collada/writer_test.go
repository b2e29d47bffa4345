package collada

import (
	"strings"
	"testing"

	"github.com/godotengine/collada-exporter/math"
)

func TestNewIDSequence(t *testing.T) {
	w := newWriter()
	if got := w.newID("mesh"); got != "id-mesh-1" {
		t.Errorf("first id = %q, want id-mesh-1", got)
	}
	if got := w.newID("anim"); got != "id-anim-2" {
		t.Errorf("second id = %q, want id-anim-2", got)
	}
}

func TestValidateID(t *testing.T) {
	if got := validateID("id-sneaky"); got != "zid-sneaky" {
		t.Errorf("validateID(id-sneaky) = %q", got)
	}
	if got := validateID("Cube"); got != "Cube" {
		t.Errorf("validateID(Cube) = %q", got)
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`a<b&"c"`); got != "a&lt;b&amp;&quot;c&quot;" {
		t.Errorf("escape = %q", got)
	}
}

func TestPurgeEmptySections(t *testing.T) {
	w := newWriter()
	w.line(sectionCameras, 0, "<library_cameras>")
	w.line(sectionCameras, 0, "</library_cameras>")
	w.line(sectionLights, 0, "<library_lights>")
	w.line(sectionLights, 1, "<light id=\"id-light-1\"/>")
	w.line(sectionLights, 0, "</library_lights>")

	w.purgeEmptySections()

	if _, ok := w.sections[sectionCameras]; ok {
		t.Error("empty camera library survived the purge")
	}
	if _, ok := w.sections[sectionLights]; !ok {
		t.Error("non-empty light library was purged")
	}
}

func TestFlushOrderAndTrailer(t *testing.T) {
	w := newWriter()
	w.line(sectionNodes, 0, "<library_visual_scenes/>")
	w.line(sectionAsset, 0, "<asset/>")

	var b strings.Builder
	if err := w.flush("id-scene-1", &b); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	asset := strings.Index(out, "<asset/>")
	nodes := strings.Index(out, "<library_visual_scenes/>")
	if asset == -1 || nodes == -1 || asset > nodes {
		t.Errorf("sections out of order:\n%s", out)
	}
	if !strings.Contains(out, "<instance_visual_scene url=\"#id-scene-1\" />") {
		t.Errorf("missing scene trailer:\n%s", out)
	}
	if !strings.HasPrefix(out, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<COLLADA") {
		t.Errorf("missing document header:\n%s", out)
	}
	if !strings.HasSuffix(out, "</COLLADA>\n") {
		t.Errorf("missing closing tag:\n%s", out)
	}
}

func TestMoveSection(t *testing.T) {
	w := newWriter()
	w.line(sectionMorphs, 1, "<controller id=\"id-morph-1\"/>")
	w.line(sectionControllers, 0, "<library_controllers>")
	w.moveSection(sectionMorphs, sectionControllers)

	if _, ok := w.sections[sectionMorphs]; ok {
		t.Error("source section still present after move")
	}
	lines := w.sections[sectionControllers]
	if len(lines) != 2 || !strings.Contains(lines[1], "id-morph-1") {
		t.Errorf("controller section = %v", lines)
	}
}

func TestFormatMatrixRowMajor(t *testing.T) {
	m := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	got := formatMatrix(m)
	want := " 1 0 0 1 0 1 0 2 0 0 1 3 0 0 0 1 "
	if got != want {
		t.Errorf("formatMatrix = %q, want %q", got, want)
	}
}

func TestFormatFloatShortest(t *testing.T) {
	if got := formatFloat(1.5); got != "1.5" {
		t.Errorf("formatFloat(1.5) = %q", got)
	}
	if got := formatFloat(90); got != "90" {
		t.Errorf("formatFloat(90) = %q", got)
	}
}
