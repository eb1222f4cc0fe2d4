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

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithMissingHandler sets the MissingHandler a Pipeline's Resolver runs use.
// The default is EagerHandler.
func WithMissingHandler(h MissingHandler) Option {
	return func(p *Pipeline) { p.handler = h }
}

// WithScheduler sets the Scheduler Compute/ComputeAll use to execute a built
// TaskGraph. The default is SequentialScheduler{}.
func WithScheduler(s Scheduler) Option {
	return func(p *Pipeline) { p.scheduler = s }
}

// WithProviders registers a set of providers at construction time, in
// order, equivalent to calling Insert once per element after New. Each
// element must either already be a *Provider (as returned by
// NewFunctionProvider et al.) or a plain Go function, which is wrapped with
// NewFunctionProvider automatically. A provider that fails to register
// (an invalid function, or a generic provider with an unbound output
// variable) is recorded and surfaces from New's first subsequent Build or
// Compute call, since Option has no error return of its own.
func WithProviders(providers []interface{}) Option {
	return func(p *Pipeline) {
		for _, v := range providers {
			provider, ok := v.(*Provider)
			if !ok {
				var err error
				provider, err = NewFunctionProvider(v)
				if err != nil {
					p.deferredErr = err
					return
				}
			}
			if err := p.registry.Insert(provider); err != nil {
				p.deferredErr = err
				return
			}
		}
	}
}

// WithParams registers a set of constant values at construction time,
// equivalent to calling SetValue once per entry after New, in map iteration
// order (which Go leaves unspecified). See
// WithProviders for how a registration failure (a key/value type mismatch)
// is surfaced.
func WithParams(params map[Key]interface{}) Option {
	return func(p *Pipeline) {
		for key, value := range params {
			if err := p.registry.SetValue(key, value); err != nil {
				p.deferredErr = err
				return
			}
		}
	}
}

// Pipeline is the external entry point: a Registry of providers, plus the
// default MissingHandler and Scheduler used when building and executing
// TaskGraphs from it.
type Pipeline struct {
	registry  *Registry
	handler   MissingHandler
	scheduler Scheduler

	// deferredErr records a registration failure from WithProviders or
	// WithParams, since Option itself has no error return. It surfaces
	// from the first Build/Compute/ComputeAll/BindAndCall call afterward.
	deferredErr error
}

// New builds a Pipeline, applying opts in order. Pipeline(providers=[],
// params={key: value, ...}) translates to
// New(WithProviders(providers), WithParams(params)): providers are
// inserted first, then params, so a param always overrides a provider
// producing the same key.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:  NewRegistry(),
		handler:   EagerHandler{},
		scheduler: SequentialScheduler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Insert registers a provider. See Registry.Insert.
func (p *Pipeline) Insert(provider *Provider) error {
	return p.registry.Insert(provider)
}

// SetValue registers a constant value under key. See Registry.SetValue.
func (p *Pipeline) SetValue(key Key, value interface{}) error {
	return p.registry.SetValue(key, value)
}

// Remove deregisters any provider at key. See Registry.Remove.
func (p *Pipeline) Remove(key Key) {
	p.registry.Remove(key)
}

// Contains reports whether key currently has a provider. See Registry.Contains.
func (p *Pipeline) Contains(key Key) bool {
	return p.registry.Contains(key)
}

// Build resolves keys into a TaskGraph without executing it, letting callers
// inspect the graph (TaskGraph.Nodes/Edges) before committing to a Scheduler.
func (p *Pipeline) Build(keys ...Key) (*TaskGraph, error) {
	if p.deferredErr != nil {
		return nil, p.deferredErr
	}
	return NewResolver(WithHandler(p.handler)).Resolve(p.registry, keys...)
}

// Compute builds and runs the graph needed to produce key, returning its
// value.
func (p *Pipeline) Compute(key Key) (interface{}, error) {
	values, err := p.ComputeAll(key)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// ComputeAll builds a single shared TaskGraph for every key in keys and runs
// it, so that any dependency common to more than one requested key is only
// computed once.
func (p *Pipeline) ComputeAll(keys ...Key) ([]interface{}, error) {
	graph, err := p.Build(keys...)
	if err != nil {
		return nil, err
	}
	return graph.Compute(p.scheduler, keys...)
}

// BindAndCall resolves callable's declared input keys through the Pipeline,
// calls it with the resolved values, and returns its result (nil if
// callable declares no return value beyond an optional trailing error).
func (p *Pipeline) BindAndCall(callable interface{}) (interface{}, error) {
	results, err := p.BindAndCallAll(callable)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// BindAndCallAll resolves the input keys declared by every callable in
// callables through a single shared TaskGraph, so a dependency required by
// more than one callable is only computed once, then calls each callable in
// order and returns their results.
func (p *Pipeline) BindAndCallAll(callables ...interface{}) ([]interface{}, error) {
	specs := make([]callableSpec, len(callables))
	var allKeys []Key
	for i, c := range callables {
		spec, err := newCallableSpec(c)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
		allKeys = append(allKeys, spec.inputKeys...)
	}

	graph, err := p.Build(allKeys...)
	if err != nil {
		return nil, err
	}
	values, err := graph.Compute(p.scheduler, allKeys...)
	if err != nil {
		return nil, err
	}

	valueByFP := make(map[string]interface{}, len(allKeys))
	for i, k := range allKeys {
		valueByFP[k.Fingerprint()] = values[i]
	}

	out := make([]interface{}, len(specs))
	for i, spec := range specs {
		v, err := spec.call(valueByFP)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Copy returns a Pipeline with an independent Registry: inserting into, or
// removing from, the copy never affects the original and vice versa.
func (p *Pipeline) Copy() *Pipeline {
	return &Pipeline{
		registry:    p.registry.Copy(),
		handler:     p.handler,
		scheduler:   p.scheduler,
		deferredErr: p.deferredErr,
	}
}
