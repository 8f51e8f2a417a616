package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxmill/quarry/pkg/snapshot"
)

// infoCmd inspects a saved grid snapshot
var infoCmd = &cobra.Command{
	Use:   "info [snapshot]",
	Short: "Show the contents of a grid snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	g, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}

	nx, ny, nz := g.Dims()
	fmt.Printf("grid:      %dx%dx%d (%d cells)\n", nx, ny, nz, g.CellCount())
	fmt.Printf("present:   %d\n", g.PresentCount())
	fmt.Printf("volume:    %.6f\n", g.TotalVolume())

	m := g.ToMesh()
	if m.IsEmpty() {
		fmt.Println("mesh:      empty")
		return nil
	}
	fmt.Printf("triangles: %d\n", m.TriangleCount())
	fmt.Printf("surface:   %.6f\n", m.SurfaceArea())
	return nil
}
