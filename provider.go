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
)

// Kind classifies how a Provider produces its value.
type Kind uint8

const (
	// KindFunction providers call a Go function, supplying resolved
	// dependency values as arguments.
	KindFunction Kind = iota
	// KindParameter providers wrap a pre-computed value; calling them
	// ignores arguments and returns the stored value.
	KindParameter
	// KindTable providers produce a single value that is then indexed
	// positionally by item keys (see item.go).
	KindTable
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Provider is a registered producer of values for one output Key. It
// records an ordered mapping from argument name to declared input Key, a
// declared output Key, and the Kind that determines how Call behaves.
//
// A Provider whose output Key contains type variables is generic;
// otherwise it is concrete. Provider itself does not memoise: a Provider
// instance may be called once per TaskGraph.Compute invocation by many
// different task graphs built from the same Registry, and per spec each
// invocation must be independent.
type Provider struct {
	kind Kind

	fn    reflect.Value
	value reflect.Value

	inputNames []string
	inputKeys  []Key
	outputKey  Key

	// location is a short, best-effort description of where this provider
	// was defined, used only in error messages.
	location string
}

// Kind reports how p produces its value.
func (p *Provider) Kind() Kind { return p.kind }

// OutputKey reports the key p produces.
func (p *Provider) OutputKey() Key { return p.outputKey }

// InputKeys reports the ordered keys p requires, aligned with InputNames.
func (p *Provider) InputKeys() []Key { return p.inputKeys }

// InputNames reports the argument names aligned with InputKeys.
func (p *Provider) InputNames() []string { return p.inputNames }

// IsGeneric reports whether p's output key still contains free type
// variables, i.e. whether binding is required before p can be used.
func (p *Provider) IsGeneric() bool {
	return len(FreeVars(p.outputKey)) > 0
}

func (p *Provider) String() string {
	if p.location != "" {
		return fmt.Sprintf("provider of %v (%s)", p.outputKey, p.location)
	}
	return fmt.Sprintf("provider of %v", p.outputKey)
}

// NewFunctionProvider builds a concrete provider from a plain Go function.
// The function's parameter types become Concrete input keys (named arg0,
// arg1, ... since Go does not retain parameter names through reflection),
// and its first return value becomes the Concrete output key. The function
// may optionally return a trailing error.
//
// Use NewGenericFunctionProvider instead when the provider is parametrised
// over one or more type variables; Go's own generics are not reused as the
// runtime key system (a provider that needs to work for many types takes
// `any` parameters and is annotated with explicit Keys).
func NewFunctionProvider(fn interface{}) (*Provider, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("NewFunctionProvider requires a function, got %T", fn)}
	}
	ft := fv.Type()

	numOut := ft.NumOut()
	hasErr := numOut > 0 && ft.Out(numOut-1) == errType
	valueOuts := numOut
	if hasErr {
		valueOuts--
	}
	if valueOuts != 1 {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("function must return exactly one value (optionally plus error), got %v", ft)}
	}

	inputKeys := make([]Key, ft.NumIn())
	inputNames := make([]string, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		inputKeys[i] = Concrete(ft.In(i))
		inputNames[i] = fmt.Sprintf("arg%d", i)
	}

	return &Provider{
		kind:       KindFunction,
		fn:         fv,
		inputNames: inputNames,
		inputKeys:  inputKeys,
		outputKey:  Concrete(ft.Out(0)),
	}, nil
}

// NewGenericFunctionProvider builds a provider whose declared keys are
// supplied explicitly rather than inferred, for providers parametrised over
// one or more type variables. output and inputKeys may reference Variables
// via VarKey; fn's actual Go parameter/return types at the variable
// positions should be `any` (or another interface wide enough to accept
// every binding), since Go has no way to defer those types to resolution
// time. fn may optionally return a trailing error, exactly as in
// NewFunctionProvider.
func NewGenericFunctionProvider(fn interface{}, output Key, inputKeys []Key) (*Provider, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("NewGenericFunctionProvider requires a function, got %T", fn)}
	}
	ft := fv.Type()
	if ft.NumIn() != len(inputKeys) {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("function takes %d arguments but %d input keys were given", ft.NumIn(), len(inputKeys))}
	}

	numOut := ft.NumOut()
	hasErr := numOut > 0 && ft.Out(numOut-1) == errType
	valueOuts := numOut
	if hasErr {
		valueOuts--
	}
	if valueOuts != 1 {
		return nil, &InvalidProviderError{Reason: fmt.Sprintf("function must return exactly one value (optionally plus error), got %v", ft)}
	}

	inputNames := make([]string, len(inputKeys))
	for i := range inputKeys {
		inputNames[i] = fmt.Sprintf("arg%d", i)
	}

	return &Provider{
		kind:       KindFunction,
		fn:         fv,
		inputNames: inputNames,
		inputKeys:  append([]Key(nil), inputKeys...),
		outputKey:  output,
	}, nil
}

// NewParameterProvider wraps a pre-computed value as a zero-argument
// provider. Structural assignability of value to key is checked by the
// caller (Registry.SetValue enforces this so the KeyTypeMismatchError
// carries the key the caller asked for).
func NewParameterProvider(key Key, value interface{}) *Provider {
	return &Provider{
		kind:      KindParameter,
		value:     reflect.ValueOf(value),
		outputKey: key,
	}
}

// Call invokes p with the given argument values, keyed by InputNames, and
// returns the produced value (unwrapped from any trailing error return).
func (p *Provider) Call(args map[string]interface{}) (interface{}, error) {
	switch p.kind {
	case KindParameter:
		return p.value.Interface(), nil
	case KindFunction, KindTable:
		in := make([]reflect.Value, len(p.inputNames))
		for i, name := range p.inputNames {
			v, ok := args[name]
			if !ok {
				return nil, fmt.Errorf("sciline: missing argument %q calling %v", name, p)
			}
			in[i] = reflect.ValueOf(v)
		}
		out := p.fn.Call(in)
		if len(out) > 1 {
			if errv := out[len(out)-1]; !errv.IsNil() {
				return nil, errv.Interface().(error)
			}
		}
		return out[0].Interface(), nil
	default:
		return nil, fmt.Errorf("sciline: unknown provider kind %d", p.kind)
	}
}
