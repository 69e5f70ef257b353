package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// FileResult pairs one batch input with its outcome. Exactly one of Result
// and Err is set.
type FileResult struct {
	File   string
	Result *Result
	Err    error
}

// RunBatch runs every file through Run with at most workers files in flight
// (workers <= 0 means one per CPU). A failing file never stops the others.
// Results are in input order.
func RunBatch(ctx context.Context, files []FileDescriptor, req Request, workers int) []FileResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]FileResult, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, fd := range files {
		g.Go(func() error {
			res, err := Run(ctx, fd, req)
			out[i] = FileResult{File: fd.Name, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Failed counts the results that carry an error.
func Failed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
