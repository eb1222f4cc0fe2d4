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

import "github.com/pkg/errors"

// ResolveOption configures a Resolver run.
type ResolveOption func(*Resolver)

// WithHandler installs the MissingHandler used when a requested key has no
// candidate provider. The default is EagerHandler.
func WithHandler(h MissingHandler) ResolveOption {
	return func(rv *Resolver) { rv.handler = h }
}

// Resolver walks a requested key against a Registry snapshot, selecting
// providers, binding type variables, and expanding dependencies
// transitively into a TaskGraph.
type Resolver struct {
	handler MissingHandler
}

// NewResolver builds a Resolver. With no options it uses EagerHandler.
func NewResolver(opts ...ResolveOption) *Resolver {
	rv := &Resolver{handler: EagerHandler{}}
	for _, opt := range opts {
		opt(rv)
	}
	return rv
}

// Resolve builds a TaskGraph rooted at roots against reg. Dependencies
// shared by more than one root are resolved once (memoised) and appear
// exactly once in the returned graph.
func (rv *Resolver) Resolve(reg *Registry, roots ...Key) (*TaskGraph, error) {
	handler := rv.handler
	if handler == nil {
		handler = EagerHandler{}
	}
	st := &resolveRun{
		reg:        reg,
		handler:    handler,
		memo:       make(map[string]*graphNode),
		inProgress: make(map[string]bool),
	}
	for _, root := range roots {
		if err := st.resolve(root); err != nil {
			return nil, err
		}
	}
	return &TaskGraph{
		nodes: st.memo,
		roots: append([]Key(nil), roots...),
	}, nil
}

// resolveRun holds the mutable state of a single Resolve call: the
// memoisation map (so a dependency shared by several roots is only ever
// resolved once) and the in-progress set used to tolerate build-time
// cycles. A cycle is never raised while building; it naturally becomes a
// CycleError at Scheduler.Get time instead, since the cyclic edge is
// recorded but the recursion simply does not loop forever here.
type resolveRun struct {
	reg        *Registry
	handler    MissingHandler
	memo       map[string]*graphNode
	inProgress map[string]bool
}

func (st *resolveRun) resolve(key Key) error {
	fp := key.Fingerprint()
	if _, done := st.memo[fp]; done {
		return nil
	}
	if st.inProgress[fp] {
		// Revisiting a key that is still being resolved higher up the
		// call stack means a cycle. We do not raise here: the edge is
		// simply left pointing at a key whose node will be filled in by
		// the outer call once it returns. Scheduler.Get discovers the
		// resulting cycle when it walks the finished graph.
		return nil
	}
	st.inProgress[fp] = true
	defer delete(st.inProgress, fp)

	if key.IsItem() {
		inner := key.Inner()
		if err := st.resolve(inner); err != nil {
			return err
		}
		st.memo[fp] = &graphNode{key: key, itemOf: &inner}
		return nil
	}

	chosen, bindings, err := st.selectCandidate(key)
	if err != nil {
		return err
	}
	if chosen.kind == KindParameter || len(chosen.inputKeys) == 0 {
		st.memo[fp] = &graphNode{key: key, provider: chosen, args: map[string]Key{}}
		return nil
	}

	args := make(map[string]Key, len(chosen.inputKeys))
	for i, in := range chosen.inputKeys {
		substituted := in
		if bindings != nil {
			substituted = Substitute(in, bindings)
		}
		if free := FreeVars(substituted); len(free) > 0 {
			var any *Variable
			for v := range free {
				any = v
				break
			}
			return &UnboundTypeVarError{Provider: chosen, Variable: any}
		}
		args[chosen.inputNames[i]] = substituted
		if err := st.resolve(substituted); err != nil {
			return err
		}
	}

	st.memo[fp] = &graphNode{key: key, provider: chosen, args: args}
	return nil
}

// selectCandidate tries a direct concrete lookup first, falling back to
// unification against every generic candidate sharing the requested key's
// origin followed by specialisation tie-breaking.
func (st *resolveRun) selectCandidate(key Key) (*Provider, map[*Variable]Key, error) {
	direct, candidates := st.reg.candidatesFor(key)
	if direct != nil {
		return direct, nil, nil
	}

	var matched []*Provider
	bindingsByProvider := make(map[*Provider]map[*Variable]Key, len(candidates))
	for _, p := range candidates {
		b, ok := unify(p.outputKey, key)
		if !ok {
			continue
		}
		matched = append(matched, p)
		bindingsByProvider[p] = b
	}

	if len(matched) == 0 {
		return st.missing(key)
	}

	survivors := filterBySpecificity(matched)
	switch len(survivors) {
	case 0:
		// Unreachable given the matched check above, but fail safe rather
		// than panic.
		return st.missing(key)
	case 1:
		chosen := survivors[0]
		return chosen, bindingsByProvider[chosen], nil
	default:
		return nil, nil, errors.WithStack(&AmbiguousProviderError{Key: key, Candidates: survivors})
	}
}

func (st *resolveRun) missing(key Key) (*Provider, map[*Variable]Key, error) {
	p, err := st.handler.Handle(key)
	if err != nil {
		return nil, nil, err
	}
	return p, nil, nil
}
