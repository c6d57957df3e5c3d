// Package dispatch fans file-parse work out across a bounded pool of
// goroutines, per spec.md §4.5's "bounded-concurrency fan-out" contract.
package dispatch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/polyglotdex/polyglotdex/internal/discovery"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
)

// FileError pairs a file with the parse error it produced; per spec.md §7
// these are collected, not fatal, and the run continues.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Result is one file's successful parse output.
type Result struct {
	File   discovery.DiscoveredFile
	Output parseradapter.ParseOutput
}

// ProgressFunc is invoked after each file finishes (success or failure).
// Implementations must be safe to call concurrently.
type ProgressFunc func(done, total int, path string)

// Options configures a dispatch run.
type Options struct {
	Parallelism  int // max concurrent parse tasks; spec.md §6 default 4
	FileTimeout  time.Duration
	OnProgress   ProgressFunc
}

// Dispatcher hands discovered files to a parseradapter.Registry across a
// bounded pool of goroutines.
type Dispatcher struct {
	registry *parseradapter.Registry
	opts     Options
}

func New(registry *parseradapter.Registry, opts Options) *Dispatcher {
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}
	return &Dispatcher{registry: registry, opts: opts}
}

// Run parses every file in files, bounded to opts.Parallelism concurrent
// parse tasks. It never returns a fatal error for per-file failures
// (spec.md §7); those are returned in the second slice. The only error
// this returns is from ctx cancellation.
func (d *Dispatcher) Run(ctx context.Context, files []discovery.DiscoveredFile) ([]Result, []FileError, error) {
	sem := semaphore.NewWeighted(int64(d.opts.Parallelism))
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		results []Result
		errs    []FileError
		done    int
	)
	total := len(files)

	for _, f := range files {
		f := f
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, nil, fmt.Errorf("dispatch: acquire: %w", err)
		}

		g.Go(func() error {
			defer sem.Release(1)

			out, err := d.parseOne(gctx, f)

			mu.Lock()
			done++
			if err != nil {
				errs = append(errs, FileError{Path: f.RelPath, Err: err})
			} else {
				results = append(results, Result{File: f, Output: out})
			}
			n := done
			mu.Unlock()

			if d.opts.OnProgress != nil {
				d.opts.OnProgress(n, total, f.RelPath)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("dispatch: %w", err)
	}
	return results, errs, nil
}

func (d *Dispatcher) parseOne(ctx context.Context, f discovery.DiscoveredFile) (parseradapter.ParseOutput, error) {
	content, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return parseradapter.ParseOutput{}, err
	}

	input := parseradapter.FileInput{Path: f.AbsPath, Content: content}

	if d.opts.FileTimeout <= 0 {
		return d.registry.ParseFile(input)
	}

	type outcome struct {
		out parseradapter.ParseOutput
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		out, err := d.registry.ParseFile(input)
		ch <- outcome{out, err}
	}()

	select {
	case o := <-ch:
		return o.out, o.err
	case <-time.After(d.opts.FileTimeout):
		return parseradapter.ParseOutput{}, fmt.Errorf("parse timed out after %s", d.opts.FileTimeout)
	case <-ctx.Done():
		return parseradapter.ParseOutput{}, ctx.Err()
	}
}
