// Package main is the entry point for the collada-export CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/godotengine/collada-exporter/core"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the collada-export CLI.
var rootCmd = &cobra.Command{
	Use:   "collada-export",
	Short: "Export scene documents to Collada (.dae)",
	Long: `collada-export converts scene manifests and their referenced models,
materials and textures into Collada 1.4.1 (.dae) documents, including
skinned meshes, morph targets, cameras, lights and sampled animation.

Single scenes export with the export subcommand; batch converts a whole
directory tree, and watch keeps exports up to date as files change.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			core.SetVerbose()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./collada-export.toml or ~/.config/collada-export/config.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("collada-export")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "collada-export"))
		}
	}

	viper.SetEnvPrefix("COLLADA_EXPORT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
