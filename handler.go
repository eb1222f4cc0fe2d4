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

import "reflect"

// MissingHandler is invoked by the Resolver whenever a required key has no
// candidate provider. It either fails the build immediately, or defers the
// failure until that node is actually evaluated by a Scheduler, letting
// callers build partial graphs for introspection even when incomplete.
type MissingHandler interface {
	// Handle is called with the key that has no provider. Returning a
	// non-nil error fails resolution right away. Returning a non-nil
	// Provider installs it as a placeholder for key instead; the
	// placeholder typically fails only when called.
	Handle(key Key) (*Provider, error)
}

// EagerHandler is the default MissingHandler: it fails resolution as soon
// as a missing dependency is found.
type EagerHandler struct{}

var _ MissingHandler = EagerHandler{}

// Handle always rejects, returning UnsatisfiedRequirementError.
func (EagerHandler) Handle(key Key) (*Provider, error) {
	return nil, &UnsatisfiedRequirementError{Key: key}
}

// DeferredHandler installs a sentinel provider in place of a missing
// dependency. The sentinel builds fine but fails with
// UnsatisfiedRequirementError the moment a Scheduler tries to evaluate it,
// which is what lets an incomplete pipeline still be inspected via
// TaskGraph.Nodes/Edges.
type DeferredHandler struct{}

var _ MissingHandler = DeferredHandler{}

// Handle never fails the build; it installs a sentinel provider for key.
func (DeferredHandler) Handle(key Key) (*Provider, error) {
	return sentinelProvider(key), nil
}

// sentinelProvider builds a zero-argument provider that always fails when
// called, carrying the originally-missing key in its error.
func sentinelProvider(key Key) *Provider {
	missing := key
	fn := reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{interfaceType, errType}, false),
		func(args []reflect.Value) []reflect.Value {
			err := &UnsatisfiedRequirementError{Key: missing}
			return []reflect.Value{
				reflect.Zero(interfaceType),
				reflect.ValueOf(err),
			}
		},
	)
	return &Provider{
		kind:      KindFunction,
		fn:        fn,
		outputKey: key,
		location:  "deferred missing-dependency sentinel",
	}
}

var interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
