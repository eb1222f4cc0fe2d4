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

import "fmt"

// UnsatisfiedRequirementError means no provider could produce the requested
// key: neither a direct concrete entry, nor any generic candidate survived
// unification.
type UnsatisfiedRequirementError struct {
	Key Key
}

func (e *UnsatisfiedRequirementError) Error() string {
	return fmt.Sprintf("no provider for %v", e.Key)
}

// AmbiguousProviderError means more than one generic candidate remained
// equally specific after specialisation filtering.
type AmbiguousProviderError struct {
	Key        Key
	Candidates []*Provider
}

func (e *AmbiguousProviderError) Error() string {
	return fmt.Sprintf("ambiguous providers for %v (%d equally specific candidates)", e.Key, len(e.Candidates))
}

// UnboundTypeVarError means a type variable appearing in a chosen
// provider's inputs could not be inferred from the request.
type UnboundTypeVarError struct {
	Provider *Provider
	Variable *Variable
}

func (e *UnboundTypeVarError) Error() string {
	return fmt.Sprintf("type variable %v of provider for %v could not be bound from the request", e.Variable, e.Provider.outputKey)
}

// InvalidProviderError means a provider was rejected at Insert time: its
// output key is missing, or it references type variables in its inputs
// that do not appear in its output.
type InvalidProviderError struct {
	Reason string
}

func (e *InvalidProviderError) Error() string {
	return "invalid provider: " + e.Reason
}

// KeyTypeMismatchError means a value handed to SetValue is not structurally
// assignable to the declared key.
type KeyTypeMismatchError struct {
	Key   Key
	Value interface{}
}

func (e *KeyTypeMismatchError) Error() string {
	return fmt.Sprintf("value %#v is not assignable to key %v", e.Value, e.Key)
}

// CycleError is raised at execute time when the reachable subgraph from the
// requested keys contains a dependency cycle. Building the graph never
// raises this; see Resolver.
type CycleError struct {
	Path []Key
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = k.String()
	}
	out := "cycle detected: "
	for i, p := range parts {
		if i > 0 {
			out += " -> "
		}
		out += p
	}
	return out
}

// KeyNotInGraphError is raised when TaskGraph.Compute is asked for a key
// that is neither a root nor an intermediate of that specific graph, even
// if the originating registry could otherwise have produced it.
type KeyNotInGraphError struct {
	Key Key
}

func (e *KeyNotInGraphError) Error() string {
	return fmt.Sprintf("%v is not part of this task graph", e.Key)
}
