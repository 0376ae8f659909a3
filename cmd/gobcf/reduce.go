package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/pkg/bcf"
	"github.com/philipparndt/gobcf/pkg/clipping"
	"github.com/philipparndt/gobcf/pkg/geometry"
)

var (
	reduceThresholdDeg float64
	reduceUnit         string
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [viewpoint.json]",
	Short: "Show the section box the clipping planes of a viewpoint reduce to",
	Long: `Reduce the clipping planes of a viewpoint to one axis-aligned section box in
BCF world coordinates. Planes further than the threshold from every axis are listed
as ignored. The box is also printed in the host unit.`,
	Args: cobra.ExactArgs(1),
	RunE: runReduce,
}

func init() {
	reduceCmd.Flags().Float64Var(&reduceThresholdDeg, "threshold", 0, "axis threshold in degrees (default from config)")
	reduceCmd.Flags().StringVar(&reduceUnit, "unit", "", "host length unit (default from config)")
	rootCmd.AddCommand(reduceCmd)
}

func runReduce(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	vp, err := bcf.Read(f)
	if err != nil {
		return err
	}

	unitName := cfg.HostUnit
	if reduceUnit != "" {
		unitName = reduceUnit
	}
	unit, err := geometry.ParseUnit(unitName)
	if err != nil {
		return err
	}

	threshold := cfg.AngleThreshold
	if reduceThresholdDeg > 0 {
		threshold = reduceThresholdDeg * math.Pi / 180
	}

	planes := clipping.FromBCF(vp.ClippingPlanes)
	box := clipping.Reduce(planes, threshold)

	fmt.Println("Clipping Planes")
	fmt.Println("===============")
	fmt.Printf("Planes: %d\n", len(planes))
	fmt.Printf("Threshold: %.4f°\n\n", threshold*180/math.Pi)

	if dropped := clipping.Dropped(planes, threshold); len(dropped) > 0 {
		fmt.Println("Ignored (not axis aligned):")
		for _, p := range dropped {
			fmt.Printf("  location %s direction %s\n", formatVector(p.Location), formatVector(p.Direction))
		}
		fmt.Println()
	}

	if box.IsInfinite() {
		fmt.Println("Section Box: none")
		return nil
	}
	printBox("Section Box (meters)", box)
	if unit != geometry.Meters {
		printBox(fmt.Sprintf("Section Box (%s)", unit), unit.BoxFromMeters(box))
	}
	return nil
}

func printBox(title string, box geometry.BoundingBox) {
	fmt.Printf("%s:\n", title)
	fmt.Printf("  Min: %s\n", formatBound(box.Min))
	fmt.Printf("  Max: %s\n", formatBound(box.Max))
	if box.IsFinite() {
		fmt.Printf("  Size: %s\n", formatVector(box.Size()))
		fmt.Printf("  Center: %s\n", formatVector(box.Center()))
	}
}

func formatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

// formatBound prints unbounded sides as ±inf
func formatBound(v geometry.Vector3) string {
	c := func(f float64) string {
		switch {
		case f >= math.MaxFloat64:
			return "+inf"
		case f <= -math.MaxFloat64:
			return "-inf"
		}
		return fmt.Sprintf("%.6f", f)
	}
	return fmt.Sprintf("(%s, %s, %s)", c(v.X), c(v.Y), c(v.Z))
}
