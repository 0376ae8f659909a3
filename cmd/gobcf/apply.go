package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/pkg/bcf"
)

var dryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply [viewpoint.json]",
	Short: "Apply a BCF viewpoint to the scene",
	Long: `Apply a BCF viewpoint to the scene file: reset the viewpoint view, orient its
camera, apply visibility and selection, install the section box and activate the
view. Orthogonal zoom is corrected after the simulated render pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "apply without saving the scene")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	vp, err := bcf.Read(f)
	if err != nil {
		return err
	}
	if _, err := vp.RequireCamera(); errors.Is(err, bcf.ErrNoCamera) {
		fmt.Printf("Viewpoint %s has no camera, nothing to apply\n", vp.GUID)
		return nil
	}

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.apply(ctx, "cli", vp); err != nil {
		return err
	}
	s.doc.Idle()

	view := s.doc.ActiveView()
	box, active := view.SectionBox()
	fmt.Printf("Applied viewpoint %s\n", vp.GUID)
	fmt.Printf("  Active view: %s\n", view.Name())
	fmt.Printf("  Selection: %d elements\n", len(s.doc.Selection()))
	if active {
		fmt.Printf("  Section box: %s - %s\n", formatBound(box.Min), formatBound(box.Max))
	} else {
		fmt.Println("  Section box: off")
	}

	if dryRun {
		return nil
	}
	return s.save()
}
