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

// Package parascheduler is an optional bounded-parallel sciline.Scheduler
// backend. Independent nodes of a TaskGraph run concurrently; a node never
// runs before every node it depends on has finished. The values it produces
// for a given graph and key set are always identical to SequentialScheduler —
// only wall-clock time differs.
package parascheduler

import (
	"sync"

	"github.com/MridulS/sciline"
	"github.com/MridulS/sciline/internal/scheduler"
)

// Scheduler runs a TaskGraph one dependency level at a time: every node
// whose dependencies have already completed is scheduled together, handed
// to a bounded worker pool, and run to completion before the next level is
// computed. This sidesteps dynamically scheduling new work from inside a
// running task (internal/scheduler.Scheduler.Flush assumes every task for
// the current batch was enqueued before Flush was called) while still
// giving every independent node in a level a chance to run concurrently.
type Scheduler struct {
	// Concurrency bounds how many provider calls may run at once within a
	// single level. Zero means unbounded: one goroutine per ready node in
	// that level.
	Concurrency int
}

var _ sciline.Scheduler = Scheduler{}

// Get implements sciline.Scheduler.
func (s Scheduler) Get(graph *sciline.TaskGraph, keys []sciline.Key) ([]interface{}, error) {
	backend := s.backend()

	nodes := graph.Nodes()
	keyByFP := make(map[string]sciline.Key, len(nodes))
	for _, k := range nodes {
		keyByFP[k.Fingerprint()] = k
	}

	depCount := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, e := range graph.Edges() {
		from, to := e.From.Fingerprint(), e.To.Fingerprint()
		depCount[from]++
		dependents[to] = append(dependents[to], from)
	}

	var ready []string
	for _, k := range nodes {
		fp := k.Fingerprint()
		if depCount[fp] == 0 {
			ready = append(ready, fp)
		}
	}

	var (
		mu       sync.Mutex
		values   = make(map[string]interface{}, len(nodes))
		firstErr error
	)
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	done := 0
	for len(ready) > 0 {
		level := ready
		ready = nil

		for _, fp := range level {
			fp, key := fp, keyByFP[fp]
			backend.Schedule(func() {
				provider, args, itemOf, err := graph.Inspect(key)
				if err != nil {
					recordErr(err)
					return
				}

				var v interface{}
				if itemOf != nil {
					mu.Lock()
					base := values[itemOf.Fingerprint()]
					mu.Unlock()
					v, err = sciline.ExtractItem(base, key.Labels())
				} else {
					argVals := make(map[string]interface{}, len(args))
					mu.Lock()
					for name, depKey := range args {
						argVals[name] = values[depKey.Fingerprint()]
					}
					mu.Unlock()
					v, err = provider.Call(argVals)
				}
				if err != nil {
					recordErr(err)
					return
				}

				mu.Lock()
				values[fp] = v
				mu.Unlock()
			})
		}
		backend.Flush()

		if firstErr != nil {
			return nil, firstErr
		}

		done += len(level)
		for _, fp := range level {
			for _, dep := range dependents[fp] {
				depCount[dep]--
				if depCount[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		}
	}

	if done < len(nodes) {
		var path []sciline.Key
		for _, k := range nodes {
			if _, ok := values[k.Fingerprint()]; !ok {
				path = append(path, k)
			}
		}
		return nil, &sciline.CycleError{Path: path}
	}

	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = values[k.Fingerprint()]
	}
	return out, nil
}

func (s Scheduler) backend() scheduler.Scheduler {
	if s.Concurrency > 0 {
		return scheduler.NewParallel(s.Concurrency)
	}
	return &scheduler.Unbounded{}
}
