// Copyright (c) 2022 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package scheduler

import "sync"

// Parallel runs enqueued tasks through a fixed-size worker pool, started and
// torn down within each call to Flush.
type Parallel struct {
	concurrency int
	pending     []func()
}

var _ Scheduler = (*Parallel)(nil)

// NewParallel builds a Parallel scheduler bounded to concurrency workers.
func NewParallel(concurrency int) *Parallel {
	return &Parallel{concurrency: concurrency}
}

// Schedule enqueues fn to run the next time Flush is called.
func (p *Parallel) Schedule(fn func()) {
	p.pending = append(p.pending, fn)
}

// Flush starts p.concurrency workers, hands them every enqueued task over a
// shared channel, and waits for the queue to drain completely.
func (p *Parallel) Flush() {
	work := make(chan func())
	var wg sync.WaitGroup
	wg.Add(p.concurrency)
	for n := 0; n < p.concurrency; n++ {
		go func() {
			defer wg.Done()
			for fn := range work {
				fn()
			}
		}()
	}

	for _, fn := range p.pending {
		work <- fn
	}
	close(work)
	wg.Wait()
	p.pending = nil
}
