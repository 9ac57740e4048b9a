package trace

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/joshuapare/heapkit/alloc"
)

// Factory creates a fresh allocator for one trace. The returned close
// function releases it.
type Factory func() (a alloc.Allocator, close func() error, err error)

// RunAll replays every trace file in paths concurrently, one allocator per
// trace. Results are keyed by path. All traces run to completion; the
// returned error joins every per-trace failure.
func RunAll(ctx context.Context, paths []string, factory Factory, opts ReplayOptions) (map[string]*Result, error) {
	results := xsync.NewMapOf[string, *Result]()
	failures := xsync.NewMapOf[string, error]()

	var wg sync.WaitGroup
	for _, path := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := runOne(ctx, path, factory, opts)
			if res != nil {
				results.Store(path, res)
			}
			if err != nil {
				failures.Store(path, err)
			}
		}()
	}
	wg.Wait()

	out := make(map[string]*Result, results.Size())
	results.Range(func(path string, res *Result) bool {
		out[path] = res
		return true
	})

	var errs []error
	for _, path := range paths {
		if err, ok := failures.Load(path); ok {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}

func runOne(ctx context.Context, path string, factory Factory, opts ReplayOptions) (res *Result, err error) {
	t, err := Open(path)
	if err != nil {
		return nil, err
	}

	a, closeFn, err := factory()
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s: create allocator", t.Name)
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "trace %s: close allocator", t.Name)
		}
	}()

	return Replay(ctx, a, t, opts)
}
