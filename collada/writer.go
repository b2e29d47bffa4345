// Package collada serializes a scene document into a Collada 1.4.1
// (.dae) interchange file.
package collada

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Document sections. According to the Collada spec, order matters.
type section int

const (
	sectionAsset section = iota
	sectionImages
	sectionEffects
	sectionMaterials
	sectionGeometries
	sectionMorphs
	sectionSkins
	sectionControllers
	sectionCameras
	sectionLights
	sectionAnimClips
	sectionNodes
	sectionAnims
)

const colladaNamespace = "http://www.collada.org/2005/11/COLLADASchema"

// writer buffers output lines per section so the libraries can be
// emitted in any order during export and serialized in spec order.
type writer struct {
	sections map[section][]string
	lastID   int
}

func newWriter() *writer {
	return &writer{
		sections: make(map[section][]string),
	}
}

// line appends an indented line to a section.
func (w *writer) line(s section, indent int, format string, args ...interface{}) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	w.sections[s] = append(w.sections[s], strings.Repeat("\t", indent)+text)
}

// newID allocates the next sequential id for the given element kind.
func (w *writer) newID(kind string) string {
	w.lastID++
	return fmt.Sprintf("id-%s-%d", kind, w.lastID)
}

// validateID keeps user-supplied names from colliding with generated
// ids, which all start with "id-".
func validateID(id string) string {
	if strings.HasPrefix(id, "id-") {
		return "z" + id
	}
	return id
}

// escape replaces the XML metacharacters in attribute values and text.
func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
	)
	return r.Replace(s)
}

// purgeEmptySections removes sections that only hold a library's
// opening and closing tag pair.
func (w *writer) purgeEmptySections() {
	sections := make(map[section][]string)
	for k, v := range w.sections {
		if !(len(v) == 2 && v[0][1:] == v[1][2:]) {
			sections[k] = v
		}
	}
	w.sections = sections
}

// moveSection appends the contents of src to dst and removes src. Used
// to merge the morph and skin buffers into library_controllers.
func (w *writer) moveSection(src, dst section) {
	if lines, ok := w.sections[src]; ok {
		for _, l := range lines {
			w.line(dst, 0, "%s", l)
		}
		delete(w.sections, src)
	}
}

// flush serializes the buffered document: XML header, sections in
// spec order, and the scene instance trailer.
func (w *writer) flush(sceneID string, out io.Writer) error {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	fmt.Fprintf(&b, "<COLLADA xmlns=\"%s\" version=\"1.4.1\">\n", colladaNamespace)

	keys := make([]section, 0, len(w.sections))
	for k := range w.sections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		for _, l := range w.sections[k] {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	b.WriteString("<scene>\n")
	fmt.Fprintf(&b, "\t<instance_visual_scene url=\"#%s\" />\n", sceneID)
	b.WriteString("</scene>\n")
	b.WriteString("</COLLADA>\n")

	_, err := io.WriteString(out, b.String())
	return err
}
