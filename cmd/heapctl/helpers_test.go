package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
)

// traceFile returns the path of a trace under trace/testdata.
func traceFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "trace", "testdata", name)
	_, err := os.Stat(path)
	require.NoError(t, err, "test trace not found")
	return path
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	backend, heapLimit, chunkSize = string(heap.BackendSlice), heap.DefaultLimit, 0
	runCheckEach, runNoVerify = false, false
	checkStats = false
	dumpOps = -1
	genSeed, genIDs, genMinSize, genMaxSize, genReallocRate, genOutput = 1, 1000, 1, 4096, 0.2, ""
}

// captureOutput captures stdout while running fn.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// requireJSON asserts output is a single valid JSON document.
func requireJSON(t *testing.T, output string) {
	t.Helper()
	require.True(t, json.Valid([]byte(output)), "invalid JSON output:\n%s", output)
}
