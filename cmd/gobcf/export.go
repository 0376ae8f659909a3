package main

import (
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the active view of the scene as a BCF viewpoint",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	vp, err := s.export(ctx, "cli")
	if err != nil {
		return err
	}

	if exportOutput == "" {
		return vp.Write(os.Stdout)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	return vp.Write(f)
}
