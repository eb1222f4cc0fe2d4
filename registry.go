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
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// Registry owns providers, indexed by the key(s) they produce: one entry
// per concrete key, and an ordered, possibly multi-entry list per generic
// origin.
type Registry struct {
	concrete map[string]*Provider // fingerprint -> provider
	generic  map[string][]*Provider
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		concrete: make(map[string]*Provider),
		generic:  make(map[string][]*Provider),
	}
}

// Insert registers p. If p's output key is concrete, any existing provider
// at that key is replaced. If generic, p is appended to the origin's
// candidate list, replacing any prior provider with an identical output
// key. Insert fails with InvalidProviderError if p's output key is unset,
// or if p references type variables in its inputs that do not appear in
// its output (such a provider could never be bound from a request).
func (r *Registry) Insert(p *Provider) error {
	if p == nil {
		return &InvalidProviderError{Reason: "nil provider"}
	}
	if p.outputKey.k == kindConcrete && p.outputKey.typ == nil {
		return &InvalidProviderError{Reason: "provider has no output key"}
	}

	outVars := FreeVars(p.outputKey)
	for _, in := range p.inputKeys {
		for v := range FreeVars(in) {
			if _, ok := outVars[v]; !ok {
				return errors.Wrapf(
					&InvalidProviderError{Reason: fmt.Sprintf("type variable %v appears in an input but not in output %v", v, p.outputKey)},
					"can't insert %v", p,
				)
			}
		}
	}

	if !p.IsGeneric() {
		r.concrete[p.outputKey.Fingerprint()] = p
		return nil
	}

	origin, _ := p.outputKey.Origin()
	list := r.generic[origin.name]
	fp := p.outputKey.Fingerprint()
	replaced := false
	for i, existing := range list {
		if existing.outputKey.Fingerprint() == fp {
			list[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, p)
	}
	r.generic[origin.name] = list
	return nil
}

// SetValue is shorthand for constructing a KindParameter provider and
// inserting it. It fails with KeyTypeMismatchError if value's runtime type
// is not structurally assignable to key.
func (r *Registry) SetValue(key Key, value interface{}) error {
	if err := checkAssignable(key, value); err != nil {
		return err
	}
	return r.Insert(NewParameterProvider(key, value))
}

func checkAssignable(key Key, value interface{}) error {
	vt := reflect.TypeOf(value)
	if key.IsConcrete() {
		if vt != key.ReflectType() {
			return &KeyTypeMismatchError{Key: key, Value: value}
		}
		return nil
	}
	// Parametrised keys can't generically recover their origin from a bare
	// Go runtime type (Go erases "uninstantiated generic" identity). For any
	// non-concrete key only a nil value is rejected; every non-nil value is
	// accepted, whatever its runtime type.
	if vt == nil {
		return &KeyTypeMismatchError{Key: key, Value: value}
	}
	return nil
}

// Remove deletes any provider registered for key. For a generic key it
// removes only the candidate with that exact output key, leaving sibling
// candidates under the same origin untouched.
func (r *Registry) Remove(key Key) {
	if len(FreeVars(key)) == 0 {
		delete(r.concrete, key.Fingerprint())
		return
	}
	origin, ok := key.Origin()
	if !ok {
		return
	}
	list := r.generic[origin.name]
	fp := key.Fingerprint()
	out := list[:0]
	for _, p := range list {
		if p.outputKey.Fingerprint() != fp {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		delete(r.generic, origin.name)
	} else {
		r.generic[origin.name] = out
	}
}

// Contains reports whether key has a directly-registered concrete provider,
// or, for a generic key, whether its origin has at least one candidate.
func (r *Registry) Contains(key Key) bool {
	if _, ok := r.concrete[key.Fingerprint()]; ok {
		return true
	}
	origin, ok := key.Origin()
	if !ok {
		return false
	}
	return len(r.generic[origin.name]) > 0
}

// candidatesFor returns the direct concrete provider for key if one
// exists, or the full list of generic candidates sharing key's origin.
func (r *Registry) candidatesFor(key Key) (direct *Provider, generic []*Provider) {
	if p, ok := r.concrete[key.Fingerprint()]; ok {
		return p, nil
	}
	origin, ok := key.Origin()
	if !ok {
		return nil, nil
	}
	return nil, r.generic[origin.name]
}

// Copy returns a deep, independent clone of r: mutating the clone never
// affects r and vice versa. Providers themselves are shared, since they are
// referentially transparent contracts; only the indexing tables are cloned.
func (r *Registry) Copy() *Registry {
	clone := &Registry{
		concrete: maps.Clone(r.concrete),
		generic:  make(map[string][]*Provider, len(r.generic)),
	}
	for origin, list := range r.generic {
		clone.generic[origin] = append([]*Provider(nil), list...)
	}
	return clone
}
