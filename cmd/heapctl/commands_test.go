package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/trace"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		traces      []string
		check       bool
		json        bool
		backend     string
		wantContain []string
	}{
		{
			name:        "single trace",
			traces:      []string{"short1.rep"},
			wantContain: []string{"trace", "util", "short1.rep"},
		},
		{
			name:        "several traces with checker",
			traces:      []string{"short1.rep", "realloc.rep"},
			check:       true,
			wantContain: []string{"short1.rep", "realloc.rep", "average"},
		},
		{
			name:        "mmap backend",
			traces:      []string{"realloc.rep"},
			backend:     "mmap",
			wantContain: []string{"realloc.rep"},
		},
		{
			name:        "json",
			traces:      []string{"short1.rep", "realloc.rep"},
			json:        true,
			wantContain: []string{`"name":"short1.rep"`, `"utilization"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			runCheckEach = tt.check
			jsonOut = tt.json
			if tt.backend != "" {
				backend = tt.backend
			}

			var paths []string
			for _, name := range tt.traces {
				paths = append(paths, traceFile(t, name))
			}

			output, err := captureOutput(t, func() error {
				return runRun(context.Background(), paths)
			})
			require.NoError(t, err)
			if tt.json {
				requireJSON(t, output)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestRunCommand_Failure(t *testing.T) {
	resetFlags()
	heapLimit = 1 << 14

	_, err := captureOutput(t, func() error {
		return runRun(context.Background(), []string{traceFile(t, "realloc.rep")})
	})
	require.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	resetFlags()
	checkStats = true

	output, err := captureOutput(t, func() error {
		return runCheck(context.Background(), []string{traceFile(t, "short1.rep")})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "OK short1.rep")
	assert.Contains(t, output, "ALLOCATOR STATISTICS")
}

func TestCheckCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error {
		return runCheck(context.Background(), []string{traceFile(t, "realloc.rep")})
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &doc))
	assert.Equal(t, true, doc["ok"])
	assert.Equal(t, "realloc.rep", doc["trace"])
}

func TestDumpCommand(t *testing.T) {
	resetFlags()
	dumpOps = 5

	output, err := captureOutput(t, func() error {
		return runDump(context.Background(), []string{traceFile(t, "short1.rep")})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "after 5 ops")
	assert.Contains(t, output, "allocated")
	assert.Contains(t, output, "free")

	jsonOut = true
	output, err = captureOutput(t, func() error {
		return runDump(context.Background(), []string{traceFile(t, "short1.rep")})
	})
	require.NoError(t, err)
	requireJSON(t, output)
	assert.Contains(t, output, `"blocks"`)
}

func TestGenCommand(t *testing.T) {
	resetFlags()
	genIDs = 50
	genOutput = filepath.Join(t.TempDir(), "gen.rep.br")

	_, err := captureOutput(t, runGen)
	require.NoError(t, err)

	tr, err := trace.Open(genOutput)
	require.NoError(t, err)
	assert.Equal(t, 50, tr.NumIDs)
	assert.Equal(t, trace.Generate(1, trace.GenConfig{IDs: 50}).Ops, tr.Ops)
}

func TestGenCommand_Stdout(t *testing.T) {
	resetFlags()
	genIDs = 10

	output, err := captureOutput(t, runGen)
	require.NoError(t, err)

	tr, err := trace.Parse(strings.NewReader(output))
	require.NoError(t, err)
	assert.Equal(t, 10, tr.NumIDs)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "4.0 KB", formatBytes(4096))
	assert.Equal(t, "1.5 MB", formatBytes(3<<19))
}

func TestMain(m *testing.M) {
	resetFlags()
	os.Exit(m.Run())
}
