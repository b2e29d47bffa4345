package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/godotengine/collada-exporter/loaders"
	"github.com/godotengine/collada-exporter/math"
	"github.com/godotengine/collada-exporter/scene"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "Summarize the scene a manifest describes",
	Long: `Inspect loads a scene manifest and prints what would be exported:
node counts per type, mesh statistics, materials and animation clips.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loaders.LoadManifest(args[0])
		if err != nil {
			return err
		}

		counts := make(map[scene.NodeType]int)
		polys := 0
		materials := make(map[string]bool)
		var bounds math.Extents3D
		meshes := 0
		sc.Walk(func(n *scene.Node) {
			counts[n.Type]++
			if n.Mesh != nil {
				polys += len(n.Mesh.Polygons)
				ext := n.Mesh.Extents()
				if meshes == 0 {
					bounds = ext
				} else {
					bounds = bounds.Union(ext)
				}
				meshes++
				for _, m := range n.Mesh.Materials {
					if m != nil {
						materials[m.Name] = true
					}
				}
			}
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "scene\t%s\n", sc.Name)
		fmt.Fprintf(w, "frames\t%d-%d @ %g fps\n", sc.FrameStart, sc.FrameEnd, sc.FPS)
		for _, t := range []scene.NodeType{
			scene.NodeTypeMesh, scene.NodeTypeCurve, scene.NodeTypeArmature,
			scene.NodeTypeCamera, scene.NodeTypeLight, scene.NodeTypeEmpty,
		} {
			if counts[t] > 0 {
				fmt.Fprintf(w, "%s\t%d\n", t, counts[t])
			}
		}
		fmt.Fprintf(w, "polygons\t%d\n", polys)
		if meshes > 0 {
			fmt.Fprintf(w, "bounds\t(%g %g %g) to (%g %g %g)\n",
				bounds.Min.X, bounds.Min.Y, bounds.Min.Z,
				bounds.Max.X, bounds.Max.Y, bounds.Max.Z)
		}
		fmt.Fprintf(w, "materials\t%d\n", len(materials))
		fmt.Fprintf(w, "actions\t%d\n", len(sc.Actions))
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
