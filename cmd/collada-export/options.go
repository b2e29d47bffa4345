package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/godotengine/collada-exporter/collada"
	"github.com/godotengine/collada-exporter/scene"
)

// addExportFlags registers the exporter option flags shared by the
// export, batch and watch subcommands.
func addExportFlags(cmd *cobra.Command) {
	defaults := collada.DefaultOptions()

	cmd.Flags().Bool("triangulate", defaults.Triangulate, "triangulate polygons on export")
	cmd.Flags().Bool("tangents", defaults.TangentArrays, "export tangent and binormal arrays")
	cmd.Flags().Bool("copy-images", defaults.CopyImages, "copy textures into an images/ directory beside the output")
	cmd.Flags().Bool("shape-keys", defaults.ShapeKeys, "export shape keys as morph controllers")
	cmd.Flags().Bool("exclude-ctrl-bones", defaults.ExcludeCtrlBones, "collapse control bones out of exported skeletons")
	cmd.Flags().Bool("selected-only", defaults.SelectedOnly, "export only nodes flagged selected")
	cmd.Flags().StringSlice("types", nil, "node types to export (mesh,curve,armature,camera,light,empty); empty exports all")
	cmd.Flags().Bool("anim", defaults.Animation, "export animations")
	cmd.Flags().Bool("anim-clips", defaults.AnimationClips, "export each action as a separate animation clip")
	cmd.Flags().Bool("skip-noexp", defaults.SkipNoExport, "skip actions whose name ends in -noexp")
	cmd.Flags().String("author", defaults.Author, "asset author metadata")
	cmd.Flags().String("unit-name", defaults.UnitName, "asset unit name")
	cmd.Flags().Float32("unit-meter", defaults.UnitMeter, "asset unit size in meters")
	cmd.Flags().String("up-axis", defaults.UpAxis, "asset up axis (X_UP, Y_UP, Z_UP)")
}

// boolOption resolves a flag against the viper config: values from the
// config file or environment act as defaults, flags set on the command
// line win.
func boolOption(cmd *cobra.Command, name string, fallback bool) bool {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetBool(name)
	}
	if v, err := cmd.Flags().GetBool(name); err == nil {
		return v
	}
	return fallback
}

func stringOption(cmd *cobra.Command, name, fallback string) string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	if v, err := cmd.Flags().GetString(name); err == nil {
		return v
	}
	return fallback
}

func float32Option(cmd *cobra.Command, name string, fallback float32) float32 {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return float32(viper.GetFloat64(name))
	}
	if v, err := cmd.Flags().GetFloat32(name); err == nil {
		return v
	}
	return fallback
}

func stringSliceOption(cmd *cobra.Command, name string) []string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetStringSlice(name)
	}
	v, _ := cmd.Flags().GetStringSlice(name)
	return v
}

// buildOptions reads the export flags back into exporter options.
func buildOptions(cmd *cobra.Command) (collada.Options, error) {
	opts := collada.DefaultOptions()

	opts.Triangulate = boolOption(cmd, "triangulate", opts.Triangulate)
	opts.TangentArrays = boolOption(cmd, "tangents", opts.TangentArrays)
	opts.CopyImages = boolOption(cmd, "copy-images", opts.CopyImages)
	opts.ShapeKeys = boolOption(cmd, "shape-keys", opts.ShapeKeys)
	opts.ExcludeCtrlBones = boolOption(cmd, "exclude-ctrl-bones", opts.ExcludeCtrlBones)
	opts.SelectedOnly = boolOption(cmd, "selected-only", opts.SelectedOnly)
	opts.Animation = boolOption(cmd, "anim", opts.Animation)
	opts.AnimationClips = boolOption(cmd, "anim-clips", opts.AnimationClips)
	opts.SkipNoExport = boolOption(cmd, "skip-noexp", opts.SkipNoExport)
	opts.Author = stringOption(cmd, "author", opts.Author)
	opts.UnitName = stringOption(cmd, "unit-name", opts.UnitName)
	opts.UnitMeter = float32Option(cmd, "unit-meter", opts.UnitMeter)
	opts.UpAxis = stringOption(cmd, "up-axis", opts.UpAxis)

	switch opts.UpAxis {
	case "X_UP", "Y_UP", "Z_UP":
	default:
		return opts, fmt.Errorf("invalid up axis %q", opts.UpAxis)
	}

	types := stringSliceOption(cmd, "types")
	if len(types) > 0 {
		opts.ObjectTypes = make(map[scene.NodeType]bool)
		for _, t := range types {
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "mesh":
				opts.ObjectTypes[scene.NodeTypeMesh] = true
			case "curve":
				opts.ObjectTypes[scene.NodeTypeCurve] = true
			case "armature":
				opts.ObjectTypes[scene.NodeTypeArmature] = true
			case "camera":
				opts.ObjectTypes[scene.NodeTypeCamera] = true
			case "light", "lamp":
				opts.ObjectTypes[scene.NodeTypeLight] = true
			case "empty":
				opts.ObjectTypes[scene.NodeTypeEmpty] = true
			default:
				return opts, fmt.Errorf("unknown node type %q", t)
			}
		}
	}

	return opts, nil
}
