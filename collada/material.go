package collada

import (
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/scene"
)

// imageExtensions are the file extensions accepted as-is when copying
// images; anything else re-encodes as PNG.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tga", ".tif", ".tiff", ".exr", ".hdr"}

func hasImageExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// exportImage writes a library_images entry for the image and returns
// its id. With CopyImages enabled the image file lands in an images/
// directory beside the output document; in-memory images re-encode as
// PNG. Otherwise the document references the source path relatively.
func (e *Exporter) exportImage(img *scene.Image) string {
	if id, ok := e.imageCache[img]; ok {
		return id
	}

	imgpath := img.Path

	if e.opts.CopyImages && e.path != "" {
		basedir := filepath.Join(filepath.Dir(e.path), "images")
		if err := os.MkdirAll(basedir, 0o755); err != nil {
			core.LogWarn("could not create image directory %s: %v", basedir, err)
		}

		if _, err := os.Stat(imgpath); err == nil {
			dstfile := filepath.Join(basedir, filepath.Base(imgpath))
			if _, err := os.Stat(dstfile); os.IsNotExist(err) {
				if err := copyFile(imgpath, dstfile); err != nil {
					core.LogWarn("could not copy image %s: %v", imgpath, err)
				}
			}
			imgpath = "images/" + filepath.Base(imgpath)
		} else if img.Data != nil {
			// The image only exists in memory; save it beside the
			// document, keeping a recognized extension or falling
			// back to PNG.
			name := filepath.Base(imgpath)
			if name == "" || name == "." || !hasImageExtension(name) {
				name = img.Name + ".png"
			}
			if !strings.EqualFold(filepath.Ext(name), ".png") {
				name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
			}
			dstfile := filepath.Join(basedir, name)
			if _, err := os.Stat(dstfile); os.IsNotExist(err) {
				if f, err := os.Create(dstfile); err == nil {
					if err := png.Encode(f, img.Data); err != nil {
						core.LogWarn("could not encode image %s: %v", name, err)
					}
					f.Close()
				}
			}
			imgpath = "images/" + name
		} else {
			core.LogWarn("image %s not found and carries no pixel data", img.Name)
		}
	} else {
		imgpath = e.relPath(imgpath)
	}

	imgid := e.w.newID("image")
	core.LogDebug("image %s -> %s", img.Name, imgpath)

	e.w.line(sectionImages, 1, "<image id=\"%s\" name=\"%s\">", imgid, escape(img.Name))
	e.w.line(sectionImages, 2, "<init_from>%s</init_from>", escape(imgpath))
	e.w.line(sectionImages, 1, "</image>")
	e.imageCache[img] = imgid
	return imgid
}

// exportMaterial writes the effect and material entries for the
// material and returns the material id.
func (e *Exporter) exportMaterial(mat *scene.Material, doubleSidedHint bool) string {
	if id, ok := e.materialCache[mat]; ok {
		return id
	}

	w := e.w

	fxid := w.newID("fx")
	w.line(sectionEffects, 1, "<effect id=\"%s\" name=\"%s-fx\">", fxid, escape(mat.Name))
	w.line(sectionEffects, 2, "<profile_COMMON>")

	// Find and fetch the textures and create sources.
	var diffuseTex, specularTex, emissionTex, normalTex string
	for _, ts := range mat.TextureSlots {
		if ts == nil || !ts.Enabled || ts.Image == nil {
			continue
		}

		imgid := e.exportImage(ts.Image)

		surfaceSid := w.newID("fx_surf")
		w.line(sectionEffects, 3, "<newparam sid=\"%s\">", surfaceSid)
		w.line(sectionEffects, 4, "<surface type=\"2D\">")
		w.line(sectionEffects, 5, "<init_from>%s</init_from>", imgid)
		w.line(sectionEffects, 5, "<format>A8R8G8B8</format>")
		w.line(sectionEffects, 4, "</surface>")
		w.line(sectionEffects, 3, "</newparam>")

		samplerSid := w.newID("fx_sampler")
		w.line(sectionEffects, 3, "<newparam sid=\"%s\">", samplerSid)
		w.line(sectionEffects, 4, "<sampler2D>")
		w.line(sectionEffects, 5, "<source>%s</source>", surfaceSid)
		w.line(sectionEffects, 4, "</sampler2D>")
		w.line(sectionEffects, 3, "</newparam>")

		if ts.UseDiffuse && diffuseTex == "" {
			diffuseTex = samplerSid
		}
		if ts.UseSpecular && specularTex == "" {
			specularTex = samplerSid
		}
		if ts.UseEmission && emissionTex == "" {
			emissionTex = samplerSid
		}
		if ts.UseNormal && normalTex == "" {
			normalTex = samplerSid
		}
	}

	w.line(sectionEffects, 3, "<technique sid=\"common\">")
	shtype := "blinn"
	w.line(sectionEffects, 4, "<%s>", shtype)

	w.line(sectionEffects, 5, "<emission>")
	if emissionTex != "" {
		w.line(sectionEffects, 6, "<texture texture=\"%s\" texcoord=\"CHANNEL1\"/>", emissionTex)
	} else {
		w.line(sectionEffects, 6, "<color>%s</color>", formatColourAlpha(mat.DiffuseColour, mat.Emit))
	}
	w.line(sectionEffects, 5, "</emission>")

	w.line(sectionEffects, 5, "<ambient>")
	w.line(sectionEffects, 6, "<color>%s</color>", formatColourAlpha(e.scene.AmbientColour, mat.Ambient))
	w.line(sectionEffects, 5, "</ambient>")

	w.line(sectionEffects, 5, "<diffuse>")
	if diffuseTex != "" {
		w.line(sectionEffects, 6, "<texture texture=\"%s\" texcoord=\"CHANNEL1\"/>", diffuseTex)
	} else {
		w.line(sectionEffects, 6, "<color>%s</color>", formatColourAlpha(mat.DiffuseColour, mat.DiffuseIntensity))
	}
	w.line(sectionEffects, 5, "</diffuse>")

	w.line(sectionEffects, 5, "<specular>")
	if specularTex != "" {
		w.line(sectionEffects, 6, "<texture texture=\"%s\" texcoord=\"CHANNEL1\"/>", specularTex)
	} else {
		w.line(sectionEffects, 6, "<color>%s</color>", formatColourAlpha(mat.SpecularColour, mat.SpecularIntensity))
	}
	w.line(sectionEffects, 5, "</specular>")

	w.line(sectionEffects, 5, "<shininess>")
	w.line(sectionEffects, 6, "<float>%s</float>", formatFloat(mat.SpecularHardness))
	w.line(sectionEffects, 5, "</shininess>")

	w.line(sectionEffects, 5, "<reflective>")
	w.line(sectionEffects, 6, "<color>%s</color>", formatColourAlpha(mat.MirrorColour, 1.0))
	w.line(sectionEffects, 5, "</reflective>")

	if mat.UseTransparency {
		w.line(sectionEffects, 5, "<transparency>")
		w.line(sectionEffects, 6, "<float>%s</float>", formatFloat(mat.Alpha))
		w.line(sectionEffects, 5, "</transparency>")
	}

	w.line(sectionEffects, 5, "<index_of_refraction>")
	w.line(sectionEffects, 6, "<float>%s</float>", formatFloat(mat.SpecularIOR))
	w.line(sectionEffects, 5, "</index_of_refraction>")

	w.line(sectionEffects, 4, "</%s>", shtype)

	w.line(sectionEffects, 4, "<extra>")
	w.line(sectionEffects, 5, "<technique profile=\"FCOLLADA\">")
	if normalTex != "" {
		w.line(sectionEffects, 6, "<bump bumptype=\"NORMALMAP\">")
		w.line(sectionEffects, 7, "<texture texture=\"%s\" texcoord=\"CHANNEL1\"/>", normalTex)
		w.line(sectionEffects, 6, "</bump>")
	}
	w.line(sectionEffects, 5, "</technique>")
	w.line(sectionEffects, 5, "<technique profile=\"GOOGLEEARTH\">")
	ds := 0
	if doubleSidedHint {
		ds = 1
	}
	w.line(sectionEffects, 6, "<double_sided>%d</double_sided>", ds)
	w.line(sectionEffects, 5, "</technique>")

	if mat.Shadeless {
		w.line(sectionEffects, 5, "<technique profile=\"GODOT\">")
		w.line(sectionEffects, 6, "<unshaded>1</unshaded>")
		w.line(sectionEffects, 5, "</technique>")
	}

	w.line(sectionEffects, 4, "</extra>")

	w.line(sectionEffects, 3, "</technique>")
	w.line(sectionEffects, 2, "</profile_COMMON>")
	w.line(sectionEffects, 1, "</effect>")

	matid := w.newID("material")
	w.line(sectionMaterials, 1, "<material id=\"%s\" name=\"%s\">", matid, escape(mat.Name))
	w.line(sectionMaterials, 2, "<instance_effect url=\"#%s\"/>", fxid)
	w.line(sectionMaterials, 1, "</material>")

	e.materialCache[mat] = matid
	return matid
}
