// Copyright (c) 2017 Uber Technologies, Inc.
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

package sciline

import (
	"sort"

	"go.uber.org/atomic"
)

// Scheduler executes a TaskGraph, producing one value per requested key.
// Every Get call is an independent invocation: state built up while
// evaluating one call (memoised values, in-progress markers, call counters)
// must never leak into, or be reused by, another call against the same
// graph, since the same TaskGraph can be Computed many times and
// concurrently.
type Scheduler interface {
	Get(graph *TaskGraph, keys []Key) ([]interface{}, error)
}

// SequentialScheduler is the default backend: a single-threaded,
// depth-first, memoising walk of the graph. A node is only evaluated once
// per Get call, and cycles are reported as CycleError rather than
// recursing forever.
type SequentialScheduler struct{}

var _ Scheduler = SequentialScheduler{}

// Get implements Scheduler.
func (SequentialScheduler) Get(graph *TaskGraph, keys []Key) ([]interface{}, error) {
	run := newSchedRun(graph)
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		v, err := run.eval(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// nodeState tracks a key's position in the current depth-first walk, used
// only to detect a cycle before it recurses forever.
type nodeState uint8

const (
	stateUnvisited nodeState = iota
	stateVisiting
	stateDone
)

// schedRun is the per-invocation execution state deliberately kept off of
// Provider and TaskGraph themselves: those are shared, long-lived,
// independently-copyable objects, while "has this node already run in this
// particular Get call" is scoped to exactly one call. calls counts
// provider invocations across the run; only SequentialScheduler uses
// schedRun.
type schedRun struct {
	graph *TaskGraph

	computed    map[string]interface{}
	state       map[string]nodeState
	stack       []Key
	stackOrigin map[string]int

	calls *atomic.Int64
}

func newSchedRun(graph *TaskGraph) *schedRun {
	return &schedRun{
		graph:       graph,
		computed:    make(map[string]interface{}),
		state:       make(map[string]nodeState),
		stackOrigin: make(map[string]int),
		calls:       atomic.NewInt64(0),
	}
}

func (run *schedRun) eval(key Key) (interface{}, error) {
	fp := key.Fingerprint()
	if v, ok := run.computed[fp]; ok {
		return v, nil
	}
	if run.state[fp] == stateVisiting {
		start := run.stackOrigin[fp]
		path := append(append([]Key(nil), run.stack[start:]...), key)
		return nil, &CycleError{Path: path}
	}

	run.state[fp] = stateVisiting
	run.stackOrigin[fp] = len(run.stack)
	run.stack = append(run.stack, key)
	defer func() {
		run.stack = run.stack[:len(run.stack)-1]
		delete(run.stackOrigin, fp)
		run.state[fp] = stateDone
	}()

	node, err := run.graph.node(key)
	if err != nil {
		return nil, err
	}

	if node.itemOf != nil {
		base, err := run.eval(*node.itemOf)
		if err != nil {
			return nil, err
		}
		v, err := ExtractItem(base, key.Labels())
		if err != nil {
			return nil, err
		}
		run.computed[fp] = v
		return v, nil
	}

	names := make([]string, 0, len(node.args))
	for name := range node.args {
		names = append(names, name)
	}
	sort.Strings(names)

	argVals := make(map[string]interface{}, len(node.args))
	for _, name := range names {
		v, err := run.eval(node.args[name])
		if err != nil {
			return nil, err
		}
		argVals[name] = v
	}

	run.calls.Inc()
	v, err := node.provider.Call(argVals)
	if err != nil {
		return nil, err
	}
	run.computed[fp] = v
	return v, nil
}
