package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/godotengine/collada-exporter/collada"
	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/loaders"
)

var exportCmd = &cobra.Command{
	Use:   "export <manifest> [output.dae]",
	Short: "Export one scene manifest to a Collada document",
	Long: `Export loads a TOML scene manifest, assembles the scene it describes
(models, materials, textures) and writes a Collada 1.4.1 document.

The output path defaults to the manifest path with a .dae extension.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest := args[0]
		out := strings.TrimSuffix(manifest, ".scene.toml")
		out = strings.TrimSuffix(out, ".toml") + ".dae"
		if len(args) > 1 {
			out = args[1]
		}

		base, err := buildOptions(cmd)
		if err != nil {
			return err
		}

		// Manifest presets take over from flag and config defaults.
		sc, opts, err := loaders.LoadManifestOptions(manifest, base)
		if err != nil {
			return err
		}

		if err := collada.Export(sc, opts, out); err != nil {
			return fmt.Errorf("export %s: %w", manifest, err)
		}
		core.LogInfo("exported %s -> %s", manifest, out)
		return nil
	},
}

func init() {
	addExportFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
