package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/cockroachdb/errors"
)

// compressedExt marks brotli-compressed trace files.
const compressedExt = ".br"

// maxOpsPrealloc caps the op slice capacity taken from the header.
const maxOpsPrealloc = 1 << 16

// Parse reads a trace in malloc-lab format.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	line := 0

	next := func() ([]string, bool) {
		for sc.Scan() {
			line++
			if f := strings.Fields(sc.Text()); len(f) > 0 {
				return f, true
			}
		}
		return nil, false
	}
	fail := func(msg string, args ...any) error {
		return errors.Wrapf(ErrSyntax, "line %d: %s", line, fmt.Sprintf(msg, args...))
	}

	var header [4]int
	for i := range header {
		f, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, errors.Wrap(err, "trace: read header")
			}
			return nil, fail("header truncated after %d of 4 lines", i)
		}
		n, err := strconv.Atoi(f[0])
		if err != nil || n < 0 || len(f) != 1 {
			return nil, fail("bad header value %q", strings.Join(f, " "))
		}
		header[i] = n
	}
	if header[1] > MaxIDs {
		return nil, fail("header declares %d ids, at most %d supported", header[1], MaxIDs)
	}

	t := &Trace{
		SuggestedHeap: header[0],
		NumIDs:        header[1],
		Weight:        header[3],
		Ops:           make([]Op, 0, min(header[2], maxOpsPrealloc)),
	}

	for {
		f, ok := next()
		if !ok {
			break
		}
		op, err := parseOp(f, t.NumIDs)
		if err != nil {
			return nil, fail("%v", err)
		}
		t.Ops = append(t.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "trace: read ops")
	}
	if len(t.Ops) != header[2] {
		return nil, errors.Wrapf(ErrSyntax, "header declares %d ops, found %d", header[2], len(t.Ops))
	}
	return t, nil
}

func parseOp(f []string, numIDs int) (Op, error) {
	if len(f[0]) != 1 {
		return Op{}, errors.Newf("unknown op %q", f[0])
	}
	op := Op{Kind: Kind(f[0][0])}

	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, errors.Newf("unknown op %q", f[0])
	}
	if len(f) != want {
		return Op{}, errors.Newf("%s takes %d fields, got %d", op.Kind, want, len(f))
	}

	id, err := strconv.Atoi(f[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, errors.Newf("id %q out of range [0, %d)", f[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(f[2])
		if err != nil || size < 0 {
			return Op{}, errors.Newf("bad size %q", f[2])
		}
		op.Size = size
	}
	return op, nil
}

// Open reads a trace file, decompressing it when the name ends in ".br".
func Open(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "trace: open")
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, compressedExt) {
		r = brotli.NewReader(r)
	}

	t, err := Parse(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	t.Name = strings.TrimSuffix(filepath.Base(path), compressedExt)
	return t, nil
}

// Write renders t in malloc-lab format.
func Write(w io.Writer, t *Trace) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", t.SuggestedHeap, t.NumIDs, len(t.Ops), t.Weight)
	for _, op := range t.Ops {
		if op.Kind == OpFree {
			fmt.Fprintf(bw, "%c %d\n", op.Kind, op.ID)
			continue
		}
		fmt.Fprintf(bw, "%c %d %d\n", op.Kind, op.ID, op.Size)
	}
	return errors.Wrap(bw.Flush(), "trace: write")
}

// WriteFile writes t to path, brotli-compressed when the name ends in ".br".
func WriteFile(path string, t *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "trace: create")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "trace: close")
		}
	}()

	if !strings.HasSuffix(path, compressedExt) {
		return Write(f, t)
	}
	bw := brotli.NewWriterLevel(f, brotli.BestCompression)
	if err := Write(bw, t); err != nil {
		return err
	}
	return errors.Wrap(bw.Close(), "trace: compress")
}
