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

// Unbounded starts one goroutine per enqueued task, so the only limit on
// concurrency within a level is whatever Go's runtime assigns to OS
// threads.
type Unbounded struct {
	pending []func()
}

var _ Scheduler = (*Unbounded)(nil)

// Schedule enqueues fn to run the next time Flush is called.
func (u *Unbounded) Schedule(fn func()) {
	u.pending = append(u.pending, fn)
}

// Flush runs every enqueued task concurrently and waits for all of them to
// return.
func (u *Unbounded) Flush() {
	var wg sync.WaitGroup
	wg.Add(len(u.pending))
	for _, fn := range u.pending {
		fn := fn
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	wg.Wait()
	u.pending = nil
}
