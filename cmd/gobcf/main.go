package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/internal/config"
	"github.com/philipparndt/gobcf/internal/logging"
	"github.com/philipparndt/gobcf/version"
)

var (
	configPath string
	scenePath  string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gobcf",
	Short: "Apply and export BCF viewpoints",
	Long: `gobcf translates BCF viewpoints (camera, clipping planes, visibility, selection
and coloring) into host view state and back. It works against a YAML scene file
and can serve the browser review app over HTTP.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		logging.SetLogger(logging.NewText(os.Stderr, level))
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gobcf.yaml", "config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&scenePath, "scene", "s", "scene.yaml", "scene file of the host model")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
