package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/alloc"
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/trace"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Allocator flags
	backend   string
	heapLimit int
	chunkSize int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay, check and inspect allocation traces",
	Long: `heapctl drives the segregated free-list allocator with malloc-lab style
allocation traces. It validates every block the allocator hands out, runs the
heap consistency checker, and reports space utilization and throughput.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().
		StringVar(&backend, "backend", string(heap.BackendSlice), "Heap backend: slice or mmap")
	rootCmd.PersistentFlags().
		IntVar(&heapLimit, "heap-limit", heap.DefaultLimit, "Maximum heap size in bytes")
	rootCmd.PersistentFlags().
		IntVar(&chunkSize, "chunk", 0, "Minimum heap extension in bytes (0 = 4096)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printer formats numbers with thousands separators.
var printer = message.NewPrinter(language.English)

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

func formatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// newLogger returns the allocator logger selected by --verbose.
func newLogger() *zap.Logger {
	if !verbose || quiet {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("alloc")
}

// newAllocator creates an allocator from the global allocator flags.
func newAllocator() (*alloc.SegregatedAllocator, error) {
	mem, err := heap.New(heap.Backend(backend), heapLimit)
	if err != nil {
		return nil, err
	}
	a, err := alloc.New(mem, &alloc.Config{ChunkSize: chunkSize, Logger: newLogger()})
	if err != nil {
		_ = mem.Close()
		return nil, err
	}
	return a, nil
}

// allocatorFactory adapts newAllocator for trace.RunAll.
func allocatorFactory() (alloc.Allocator, func() error, error) {
	a, err := newAllocator()
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}

var _ trace.Factory = allocatorFactory
