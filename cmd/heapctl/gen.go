package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/trace"
)

var (
	genSeed        int64
	genIDs         int
	genMinSize     int
	genMaxSize     int
	genReallocRate float64
	genOutput      string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&genIDs, "ids", trace.DefaultGenConfig.IDs, "Number of distinct blocks")
	cmd.Flags().IntVar(&genMinSize, "min", trace.DefaultGenConfig.MinSize, "Smallest request in bytes")
	cmd.Flags().IntVar(&genMaxSize, "max", trace.DefaultGenConfig.MaxSize, "Largest request in bytes")
	cmd.Flags().Float64Var(&genReallocRate, "realloc-rate", trace.DefaultGenConfig.ReallocRate,
		"Share of operations on live blocks that resize instead of free")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (.br compresses; default stdout)")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random allocation trace",
		Long: `The gen command writes a well-formed random trace in malloc-lab format.
The same seed and options always produce the same trace.

Example:
  heapctl gen --seed 7 --ids 5000 -o random7.rep
  heapctl gen --max 65536 -o big.rep.br`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
	return cmd
}

func runGen() error {
	t := trace.Generate(genSeed, trace.GenConfig{
		IDs:         genIDs,
		MinSize:     genMinSize,
		MaxSize:     genMaxSize,
		ReallocRate: genReallocRate,
	})

	if genOutput == "" {
		return trace.Write(os.Stdout, t)
	}
	if err := trace.WriteFile(genOutput, t); err != nil {
		return err
	}
	printVerbose("Wrote %s ops to %s\n", formatNumber(int64(len(t.Ops))), genOutput)
	return nil
}
