package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voxmill/quarry/pkg/export"
	"github.com/voxmill/quarry/pkg/grid"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Carve voxel grids and export boundary meshes",
	Long: `quarry builds grids of axis-aligned rectangular prisms, carves
cells away, and extracts the boundary surface of what remains as
a triangle mesh.

Grids come from command flags, YAML carve plans, or Lisp carve
scripts. Carved grids export to binary STL or GLB, and can be
saved as compact snapshots for later inspection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Carve flags
	carveCmd.Flags().IntVar(&carveCells, "cells", 26, "Cells per edge of the cube")
	carveCmd.Flags().Float64Var(&carveSize, "size", 1.0, "Edge length of the cube")
	carveCmd.Flags().Int64Var(&carveSeed, "seed", 0, "Random seed for line carving")
	carveCmd.Flags().Float64Var(&carveTarget, "target", math.Pow(20.0/27.0, 3),
		"Fraction of the block volume to keep")
	carveCmd.Flags().StringVarP(&carveOut, "out", "o", "cube_removed.stl", "Output mesh path (.stl or .glb)")
	carveCmd.Flags().StringVar(&carveSnapshot, "snapshot", "", "Also save a grid snapshot to this path")

	// Plan flags
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Output mesh path (overrides the plan's output)")
	planCmd.Flags().StringVar(&planSnapshot, "snapshot", "", "Also save a grid snapshot to this path")

	// Script flags
	scriptCmd.Flags().StringVarP(&scriptOut, "out", "o", "carved.stl", "Output mesh path (.stl or .glb)")
	scriptCmd.Flags().StringVar(&scriptSnapshot, "snapshot", "", "Also save a grid snapshot to this path")

	// Add commands to root
	rootCmd.AddCommand(carveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exportMesh extracts the boundary mesh of g and writes it to path,
// choosing the backend from the file extension.
func exportMesh(g *grid.Graph, path string) error {
	m := g.ToMesh()
	exp, err := export.ForPath(path)
	if err != nil {
		return err
	}
	logger.Info("exporting mesh",
		zap.String("path", path),
		zap.String("format", exp.Format()),
		zap.Int("triangles", m.TriangleCount()))
	if err := exp.Export(m, path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	fmt.Printf("wrote %d triangles to %s\n", m.TriangleCount(), path)
	return nil
}
