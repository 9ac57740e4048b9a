package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/alloc"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/trace"
)

var dumpOps int

func init() {
	cmd := newDumpCmd()
	cmd.Flags().IntVar(&dumpOps, "ops", -1, "Stop after this many operations (-1 = all)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Replay a trace and print the resulting heap map",
		Long: `The dump command replays a trace (optionally only its first operations)
and prints every block of the heap in address order, followed by the size
class populations.

Example:
  heapctl dump short1.rep --ops 6
  heapctl dump short1.rep --ops 6 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), args)
		},
	}
	return cmd
}

func runDump(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	t, err := trace.Open(args[0])
	if err != nil {
		return err
	}
	if dumpOps >= 0 && dumpOps < len(t.Ops) {
		t.Ops = t.Ops[:dumpOps]
	}

	a, err := newAllocator()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := trace.Replay(ctx, a, t, trace.ReplayOptions{Verify: true}); err != nil {
		return err
	}

	if jsonOut {
		return a.WriteJSON(os.Stdout)
	}

	printInfo("\nHeap map: %s after %s ops\n", t.Name, formatNumber(int64(len(t.Ops))))
	printInfo("%s\n", headerStyle.Render(fmt.Sprintf("%10s %10s  %-9s %s", "offset", "size", "state", "class")))
	a.Walk(func(b alloc.BlockInfo) bool {
		if b.Allocated {
			printInfo("%s\n", allocStyle.Render(fmt.Sprintf("%10d %10d  %-9s", b.Ptr, b.Size, "allocated")))
			return true
		}
		printInfo("%s\n", freeStyle.Render(fmt.Sprintf("%10d %10d  %-9s %d", b.Ptr, b.Size, "free", format.ClassOf(uint32(b.Size)))))
		return true
	})
	if !quiet {
		a.PrintStats(os.Stdout)
	}
	return nil
}
