package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxmill/quarry/pkg/carve"
	"github.com/voxmill/quarry/pkg/snapshot"
)

var (
	planOut      string
	planSnapshot string
)

// planCmd replays a declarative YAML carving plan
var planCmd = &cobra.Command{
	Use:   "plan [file]",
	Short: "Carve a grid following a YAML plan",
	Long: `Loads a YAML carve plan, validates it, builds the grid it
describes, applies its ops in order, and exports the surface.

A plan names its own output path; --out overrides it.

Example plan:
  version: 1
  seed: 7
  grid: {cells: 8, size: 2.0}
  ops:
    - {op: line, axis: x, a: 3, b: 4}
    - {op: box, from: [0, 0, 0], to: [1, 1, 1]}
  target: 0.6
  output: carved.stl`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := carve.Load(args[0])
	if err != nil {
		return err
	}

	if issues := p.Validate(); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintln(os.Stderr, issue.Error())
		}
		return fmt.Errorf("plan %s has %d validation errors", args[0], len(issues))
	}

	g, err := p.Build()
	if err != nil {
		return err
	}
	logger.Info("applying plan",
		zap.String("plan", args[0]),
		zap.Int("ops", len(p.Ops)),
		zap.Float64("target", p.Target))

	freed, err := p.Apply(g, nil)
	if err != nil {
		return err
	}
	fmt.Printf("plan freed volume %.4f: %d of %d cells remain, volume %.4f\n",
		freed, g.PresentCount(), g.CellCount(), g.TotalVolume())

	if planSnapshot != "" {
		if err := snapshot.Save(g, planSnapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Printf("snapshot saved to %s\n", planSnapshot)
	}

	out := planOut
	if out == "" {
		out = p.Output
	}
	if out == "" {
		out = "plan.stl"
	}
	return exportMesh(g, out)
}
