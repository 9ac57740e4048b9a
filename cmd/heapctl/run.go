package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/trace"
)

var (
	runCheckEach bool
	runNoVerify  bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runCheckEach, "check", false, "Run the heap checker after every operation")
	cmd.Flags().BoolVar(&runNoVerify, "no-verify", false, "Skip payload pattern verification")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>...",
		Short: "Replay traces and report utilization and throughput",
		Long: `The run command replays each trace against a fresh allocator, concurrently,
and reports peak utilization and throughput per trace. Any correctness
violation fails the run.

Example:
  heapctl run traces/*.rep
  heapctl run --check --backend mmap short1.rep
  heapctl run traces/*.rep.br --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), expandGlobs(args))
		},
	}
	return cmd
}

func runRun(ctx context.Context, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := trace.ReplayOptions{CheckEach: runCheckEach, Verify: !runNoVerify}
	printVerbose("Replaying %d trace(s) on the %s backend\n", len(paths), backend)

	results, runErr := trace.RunAll(ctx, paths, allocatorFactory, opts)

	ordered := make([]*trace.Result, 0, len(results))
	for _, p := range paths {
		if r, ok := results[p]; ok {
			ordered = append(ordered, r)
		}
	}

	if jsonOut {
		if err := trace.WriteResults(os.Stdout, ordered); err != nil {
			return err
		}
		return runErr
	}

	printInfo("\n%-20s %10s %12s %8s %12s\n", "trace", "ops", "heap", "util", "Kops/s")
	var ops int
	var util, kops float64
	for _, r := range ordered {
		printInfo("%-20s %10s %12s %7.1f%% %12s\n",
			truncName(r.Name), formatNumber(int64(r.Ops)), formatBytes(int64(r.HeapSize)),
			100*r.Utilization, formatNumber(int64(r.Throughput()/1000)))
		if r.Stats != nil {
			printVerbose("  grow=%d split=%d coalesce=%d realloc in place=%d moved=%d\n",
				r.Stats.GrowCalls, r.Stats.SplitCount,
				r.Stats.CoalesceNext+r.Stats.CoalescePrev+r.Stats.CoalesceBoth,
				r.Stats.ReallocInPlace, r.Stats.ReallocMoved)
		}
		ops += r.Ops
		util += r.Utilization
		kops += r.Throughput() / 1000
	}
	if n := len(ordered); n > 1 {
		printInfo("%-20s %10s %12s %7.1f%% %12s\n",
			"average", formatNumber(int64(ops/n)), "", 100*util/float64(n), formatNumber(int64(kops/float64(n))))
	}

	if runErr != nil {
		printInfo("\nreplay failed\n")
	}
	return runErr
}

// truncName shortens a trace name to fit the report column.
func truncName(name string) string {
	const width = 20
	if len(name) <= width {
		return name
	}
	return name[:width-3] + "..."
}

// expandGlobs resolves shell-style patterns the shell left unexpanded.
func expandGlobs(args []string) []string {
	var out []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil || len(matches) == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, matches...)
	}
	return slices.Compact(out)
}
