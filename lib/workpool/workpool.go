//
// Copyright (C) 2024 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package workpool

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Number of chunks per worker submitted by Map
const chunksPerWorker = 4

var ErrClosed = errors.New("worker pool closed")

// Pool is a fixed set of worker goroutines owned by the caller.
// Close must be called to stop the workers.
type Pool struct {
	size  int
	tasks chan func()
	g     *errgroup.Group
	mu    sync.RWMutex
	done  bool
}

// New starts size workers. If size <= 0, runtime.NumCPU() is used.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{size: size, tasks: make(chan func(), size*2), g: new(errgroup.Group)}
	for i := 0; i < size; i++ {
		p.g.Go(func() error {
			for task := range p.tasks {
				task()
			}
			return nil
		})
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Close stops the workers once queued tasks are done. It is safe to call Close more than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.done {
		p.done = true
		close(p.tasks)
	}
	p.mu.Unlock()
	return p.g.Wait()
}

// Map calls fn for each index in [0, n) on the pool workers and waits for completion.
// The first error cancels the remaining indices and is returned.
func (p *Pool) Map(ctx context.Context, n int, fn func(i int) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done {
		return ErrClosed
	}
	if n <= 0 {
		return ctx.Err()
	}

	mctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	setErr := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	chunk := n / (p.size * chunksPerWorker)
	if chunk < 1 {
		chunk = 1
	}
submit:
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		task := func(lo, hi int) func() {
			return func() {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					if mctx.Err() != nil {
						return
					}
					if err := fn(i); err != nil {
						setErr(err)
						return
					}
				}
			}
		}(lo, hi)
		select {
		case p.tasks <- task:
		case <-mctx.Done():
			wg.Done()
			break submit
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
