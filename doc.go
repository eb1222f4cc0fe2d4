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

// Package sciline is a type-directed computation graph builder and
// scheduler.
//
// Providers are plain Go functions whose argument and return types wire the
// graph together: a provider's declared inputs are matched against other
// providers' declared outputs by type, not by name. Providers can also be
// generic, parametrised over one or more type Variables, which are bound
// on demand when a concrete parametrised type is requested.
//
// A Pipeline owns a Registry of providers. Asking a Pipeline to Compute a
// Key resolves the transitive closure of providers needed to build it into
// a TaskGraph, deduplicating shared intermediates, and then hands that
// graph to a Scheduler for execution.
//
//	p := sciline.New()
//	three, _ := sciline.NewFunctionProvider(func() int { return 3 })
//	half, _ := sciline.NewFunctionProvider(func(x int) float64 { return 0.5 * float64(x) })
//	p.Insert(three)
//	p.Insert(half)
//	v, err := p.Compute(sciline.ConcreteOf[float64]())
//
// Status: the registry, resolver and task graph are the parts of this
// library under active design; the sequential scheduler is the only
// execution backend guaranteed to exist. A bounded-parallel backend lives
// in internal/parascheduler, but its output is identical by contract.
package sciline
