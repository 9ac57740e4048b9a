package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/alloc"
	"github.com/joshuapare/heapkit/trace"
)

var checkStats bool

func init() {
	cmd := newCheckCmd()
	cmd.Flags().BoolVar(&checkStats, "stats", false, "Print allocator statistics after the replay")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace with the heap checker after every operation",
		Long: `The check command replays one trace with full validation: every returned
block is checked for alignment, bounds and overlap, payloads are verified, and
the heap consistency checker runs after every operation. The first violation
is reported with the offending block and property.

Example:
  heapctl check short1.rep
  heapctl check realloc.rep --stats
  heapctl check realloc.rep --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), args)
		},
	}
	return cmd
}

func runCheck(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	t, err := trace.Open(path)
	if err != nil {
		return err
	}
	printVerbose("Checking %s: %s ops over %d ids\n", t.Name, formatNumber(int64(len(t.Ops))), t.NumIDs)

	a, err := newAllocator()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := trace.Replay(ctx, a, t, trace.ReplayOptions{CheckEach: true, Verify: true})
	if err == nil {
		err = a.Check()
	}

	var ce *alloc.CheckError
	errors.As(err, &ce)

	if jsonOut {
		w := jwriter.NewWriter()
		obj := w.Object()
		obj.Name("trace").String(t.Name)
		obj.Name("ok").Bool(err == nil)
		if res != nil {
			obj.Name("ops").Int(res.Ops)
			obj.Name("heapSize").Int(res.HeapSize)
		}
		if err != nil {
			obj.Name("error").String(err.Error())
		}
		if ce != nil {
			obj.Name("block").Int(int(ce.Block))
			obj.Name("property").String(ce.Property)
		}
		obj.End()
		if _, werr := os.Stdout.Write(append(w.Bytes(), '\n')); werr != nil {
			return werr
		}
		return err
	}

	if err != nil {
		if ce != nil {
			printInfo("FAIL %s: block %s violates %s (%s)\n", t.Name, ce.Block, ce.Property, ce.Detail)
		}
		return err
	}

	printInfo("OK %s: %s ops, heap %s, peak utilization %.1f%%\n",
		t.Name, formatNumber(int64(res.Ops)), formatBytes(int64(res.HeapSize)), 100*res.Utilization)
	if checkStats && !quiet {
		a.PrintStats(os.Stdout)
	}
	return nil
}
