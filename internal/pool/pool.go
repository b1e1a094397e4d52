// Package pool implements the bounded-concurrency probe driver (spec.md
// §4.2): given a slice of inputs and a per-item probe function, it produces
// one result per input, in completion order, never holding more than B
// probes in flight at once.
//
// Grounded on the teacher's semaphore package (github.com/nabbar/golib/
// semaphore): New(ctx, weight, withProgress) returns a worker-acquisition
// handle with NewWorker()/DeferWorker() bracketing each unit of concurrent
// work, optionally wired to a github.com/vbauerster/mpb/v8 progress bar. This
// package adapts that acquire/release shape around golang.org/x/sync/
// semaphore.Weighted directly (the teacher's own semaphore wraps the same
// package) and drives a result channel instead of a plain wait group, since
// the spec additionally requires completion-ordered streaming delivery and a
// progress counter incremented exactly once per completion.
package pool

import (
	"context"
	"sync"

	xsem "golang.org/x/sync/semaphore"

	"github.com/charSLee013/edgescan/internal/fatal"
)

// Result pairs an input with whatever its probe function produced.
type Result[In, Out any] struct {
	In  In
	Out Out
}

// Progress is called once per completion, regardless of outcome. Pools that
// don't need progress reporting may pass nil.
type Progress func(completed, total int)

// Run drives fn over items with at most concurrency in flight at once,
// streaming results on the returned channel in completion order. The
// channel is closed once every item has completed and the pool has
// drained. Run never blocks the caller beyond receiving from the channel.
// Cancelling ctx stops the submission of new work; probes already in flight
// receive the same ctx and are drained before the channel closes.
// sig may be nil; if given and fn reports syscall.EMFILE through it (see
// internal/fatal), Run stops submitting new work (spec.md §7 "resource
// exhaustion") and lets in-flight probes drain.
func Run[In, Out any](ctx context.Context, items []In, concurrency int, fn func(context.Context, In) Out, onProgress Progress, sig *fatal.Signal) <-chan Result[In, Out] {
	if concurrency < 1 {
		concurrency = 1
	}

	out := make(chan Result[In, Out], concurrency)
	sem := xsem.NewWeighted(int64(concurrency))

	go func() {
		defer close(out)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			completed int
		)
		total := len(items)

	submit:
		for _, item := range items {
			select {
			case <-sig.C():
				break submit
			default:
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				// context cancelled; stop submitting new work and drain below.
				break
			}
			wg.Add(1)
			go func(in In) {
				defer wg.Done()
				defer sem.Release(1)

				res := fn(ctx, in)

				mu.Lock()
				completed++
				n := completed
				mu.Unlock()
				if onProgress != nil {
					onProgress(n, total)
				}

				out <- Result[In, Out]{In: in, Out: res}
			}(item)
		}

		wg.Wait()
	}()

	return out
}
