package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxmill/quarry/pkg/engine"
	"github.com/voxmill/quarry/pkg/snapshot"
)

var (
	scriptOut      string
	scriptSnapshot string
)

// scriptCmd evaluates a Lisp carve script
var scriptCmd = &cobra.Command{
	Use:   "script [file]",
	Short: "Evaluate a Lisp carve script and export the surface",
	Long: `Evaluates a carve script in a sandboxed Lisp environment.
The script constructs one grid and carves cells out of it.

Example script:
  ; hollow out a tunnel
  (grid :cells 8 :size 2.0)
  (carve-line :axis :x :a 3 :b 4)
  (carve 0 0 0)`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func runScript(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	logger.Info("evaluating script", zap.String("path", args[0]), zap.Int("bytes", len(src)))
	eng := engine.NewEngine()
	g, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", args[0], err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", args[0], e.Error())
		}
		return fmt.Errorf("script %s failed with %d errors", args[0], len(evalErrs))
	}

	fmt.Printf("script kept %d of %d cells, volume %.4f\n",
		g.PresentCount(), g.CellCount(), g.TotalVolume())

	if scriptSnapshot != "" {
		if err := snapshot.Save(g, scriptSnapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		fmt.Printf("snapshot saved to %s\n", scriptSnapshot)
	}

	return exportMesh(g, scriptOut)
}
