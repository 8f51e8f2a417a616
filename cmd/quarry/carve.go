package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxmill/quarry/pkg/carve"
	"github.com/voxmill/quarry/pkg/grid"
	"github.com/voxmill/quarry/pkg/snapshot"
)

var (
	carveCells    int
	carveSize     float64
	carveSeed     int64
	carveTarget   float64
	carveOut      string
	carveSnapshot string
)

// carveCmd carves random lines through a cube until the target volume remains
var carveCmd = &cobra.Command{
	Use:   "carve",
	Short: "Carve random lines through a cube and export the surface",
	Long: `Builds a cube of equal cells and carves full-length lines through
randomly chosen interior coordinates until at most the target
fraction of the volume remains.

Each round carves three orthogonal lines through one (a, b) pair,
so the result is a lattice of square tunnels.

Example:
  quarry carve --cells 26 --seed 7 --target 0.4 -o carved.glb`,
	RunE: runCarve,
}

func runCarve(cmd *cobra.Command, args []string) error {
	pts, err := grid.Linspace(0, carveSize, carveCells+1)
	if err != nil {
		return fmt.Errorf("bad cube dimensions: %w", err)
	}
	g, err := grid.New(pts, pts, pts)
	if err != nil {
		return err
	}

	target := carveTarget * g.TotalVolume()
	logger.Info("carving",
		zap.Int("cells", carveCells),
		zap.Float64("size", carveSize),
		zap.Int64("seed", carveSeed),
		zap.Float64("targetVolume", target))

	rng := rand.New(rand.NewSource(carveSeed))
	rounds, freed, err := carve.Lines(g, rng, target)
	if err != nil {
		return err
	}
	logger.Info("carving finished",
		zap.Int("rounds", rounds),
		zap.Float64("freed", freed),
		zap.Float64("remaining", g.TotalVolume()),
		zap.Int("present", g.PresentCount()))
	fmt.Printf("carved %d rounds: %d of %d cells remain, volume %.4f\n",
		rounds, g.PresentCount(), g.CellCount(), g.TotalVolume())

	if carveSnapshot != "" {
		if err := snapshot.Save(g, carveSnapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Printf("snapshot saved to %s\n", carveSnapshot)
	}

	return exportMesh(g, carveOut)
}
