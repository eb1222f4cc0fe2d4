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

// Package scheduler implements the Schedule/Flush task-queue abstraction
// used to run one dependency level of a task graph at a time. A caller
// enqueues every task for a level with Schedule, then calls Flush once to
// drain the level through whichever concurrency strategy the chosen
// Scheduler implements; Flush blocks until every enqueued task has
// returned, and the queue is empty and ready for the next level afterward.
//
// Tasks report failure out of band (e.g. into a shared, mutex-guarded
// variable captured by the closure passed to Schedule) rather than through
// the Scheduler itself, since a level's tasks are independent by
// construction and nothing here needs to short-circuit a level early.
package scheduler

// A Scheduler queues a batch of independent level-local tasks and runs them
// to completion on demand.
type Scheduler interface {
	// Schedule enqueues fn to run before the next Flush returns. fn may run
	// synchronously, inline with the call to Schedule, or it may be
	// deferred until Flush actually drains the queue.
	Schedule(fn func())

	// Flush runs every task enqueued since the last Flush and blocks until
	// all of them have returned. The Scheduler is empty and ready for reuse
	// immediately afterward.
	Flush()
}

// Synchronous is a stateless Scheduler that runs every task immediately,
// inline with the call to Schedule, with no concurrency at all.
var Synchronous = synchronous{}

type synchronous struct{}

var _ Scheduler = synchronous{}

func (synchronous) Schedule(fn func()) { fn() }

func (synchronous) Flush() {}
