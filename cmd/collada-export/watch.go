package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/godotengine/collada-exporter/batch"
	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export scenes whenever their sources change",
	Long: `Watch monitors the input directory and re-exports a scene manifest
whenever it, or a model or texture it references, changes on disk.
Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = input
		}

		w, err := watch.NewWatcher(batch.Config{
			InputDir:  input,
			OutputDir: output,
			Options:   opts,
			Workers:   1,
		})
		if err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			core.LogInfo("shutting down")
			w.Close()
		}()

		core.LogInfo("watching %s", input)
		return w.Start()
	},
}

func init() {
	watchCmd.Flags().String("input", ".", "directory to watch for scene manifests")
	watchCmd.Flags().String("output", "", "output directory (default: alongside the inputs)")
	addExportFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}
