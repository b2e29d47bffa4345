package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/godotengine/collada-exporter/batch"
	"github.com/godotengine/collada-exporter/core"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Convert every scene manifest under a directory",
	Long: `Batch walks the input directory for *.scene.toml manifests and exports
each one to a matching .dae under the output directory, converting in
parallel with a worker pool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		workers, _ := cmd.Flags().GetInt("workers")
		if output == "" {
			output = input
		}

		manifests, err := batch.Discover(input)
		if err != nil {
			return err
		}
		if len(manifests) == 0 {
			return fmt.Errorf("no scene manifests under %s", input)
		}
		core.LogInfo("converting %d scenes with %d workers", len(manifests), workers)

		results := batch.Run(batch.Config{
			InputDir:  input,
			OutputDir: output,
			Options:   opts,
			Workers:   workers,
		}, manifests)

		failed := 0
		for _, r := range results {
			if r.Success {
				core.LogInfo("exported %s -> %s", r.Input, r.Output)
			} else {
				failed++
				core.LogError("export %s: %s", r.Input, r.Error)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenes failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("input", ".", "directory to scan for scene manifests")
	batchCmd.Flags().String("output", "", "output directory (default: alongside the inputs)")
	batchCmd.Flags().Int("workers", runtime.NumCPU(), "number of parallel conversions")
	addExportFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}
