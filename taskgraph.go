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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// graphNode is one materialised step of a TaskGraph: either a provider call
// (provider set, args mapping argument name to the dependency key feeding
// it) or an item projection (itemOf set, extracting a labelled sub-value out
// of an already-resolved table key; see item.go).
type graphNode struct {
	key      Key
	provider *Provider
	args     map[string]Key
	itemOf   *Key
}

// TaskGraph is the materialised, deduplicated DAG a Resolver builds from a
// Registry and a set of requested keys: a flat map keyed by a stable
// fingerprint, built once and then handed to a Scheduler for repeated,
// independent execution.
type TaskGraph struct {
	nodes map[string]*graphNode
	roots []Key
}

// Roots reports the keys the graph was built to satisfy.
func (g *TaskGraph) Roots() []Key {
	return append([]Key(nil), g.roots...)
}

// Nodes reports every key materialised in the graph, ordered by
// Fingerprint for reproducible introspection output: Go's map iteration
// order is randomized, and an unordered Nodes/Edges would make two
// introspections of the same graph look different.
func (g *TaskGraph) Nodes() []Key {
	out := make([]Key, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.key)
	}
	slices.SortFunc(out, func(a, b Key) bool { return a.Fingerprint() < b.Fingerprint() })
	return out
}

// Edge is a directed dependency from From to To: producing From requires To.
type Edge struct {
	From Key
	To   Key
}

// Edges reports every dependency edge in the graph, for introspection and
// for diagnosing a CycleError.
func (g *TaskGraph) Edges() []Edge {
	var out []Edge
	for _, n := range g.nodes {
		if n.itemOf != nil {
			out = append(out, Edge{From: n.key, To: *n.itemOf})
			continue
		}
		for _, dep := range sortedArgKeys(n.args) {
			out = append(out, Edge{From: n.key, To: dep})
		}
	}
	slices.SortFunc(out, func(a, b Edge) bool {
		if a.From.Fingerprint() != b.From.Fingerprint() {
			return a.From.Fingerprint() < b.From.Fingerprint()
		}
		return a.To.Fingerprint() < b.To.Fingerprint()
	})
	return out
}

func sortedArgKeys(args map[string]Key) []Key {
	names := maps.Keys(args)
	slices.Sort(names)
	out := make([]Key, 0, len(names))
	for _, name := range names {
		out = append(out, args[name])
	}
	return out
}

// node looks up the graph node for key's fingerprint, reporting
// KeyNotInGraphError if key was never resolved into this graph.
func (g *TaskGraph) node(key Key) (*graphNode, error) {
	n, ok := g.nodes[key.Fingerprint()]
	if !ok {
		return nil, &KeyNotInGraphError{Key: key}
	}
	return n, nil
}

// Inspect exposes one node's shape to Scheduler implementations outside this
// package: either a provider plus its argument-name-to-dependency-key
// mapping, or, for an item key, the inner key it projects out of (itemOf
// non-nil, provider nil).
func (g *TaskGraph) Inspect(key Key) (provider *Provider, args map[string]Key, itemOf *Key, err error) {
	n, err := g.node(key)
	if err != nil {
		return nil, nil, nil, err
	}
	return n.provider, n.args, n.itemOf, nil
}

// Compute runs keys to completion using sched, or SequentialScheduler{} if
// sched is nil. It is a convenience wrapper equivalent to calling
// sched.Get(g, keys) directly.
func (g *TaskGraph) Compute(sched Scheduler, keys ...Key) ([]interface{}, error) {
	if sched == nil {
		sched = SequentialScheduler{}
	}
	return sched.Get(g, keys)
}
