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

// callableSpec is a Pipeline.BindAndCall target: an arbitrary Go function
// whose parameter types are read, the same way NewFunctionProvider reads
// them, to determine which keys must be resolved before it can run. Unlike
// a Provider, a bound callable may return zero values (it is called for
// its side effect) and is never itself registered in a Registry.
type callableSpec struct {
	fn        reflect.Value
	inputKeys []Key
	hasErr    bool
}

func newCallableSpec(callable interface{}) (callableSpec, error) {
	fv := reflect.ValueOf(callable)
	if fv.Kind() != reflect.Func {
		return callableSpec{}, &InvalidProviderError{Reason: fmt.Sprintf("BindAndCall requires a function, got %T", callable)}
	}
	ft := fv.Type()

	inputKeys := make([]Key, ft.NumIn())
	for i := range inputKeys {
		inputKeys[i] = Concrete(ft.In(i))
	}

	numOut := ft.NumOut()
	hasErr := numOut > 0 && ft.Out(numOut-1) == errType

	return callableSpec{fn: fv, inputKeys: inputKeys, hasErr: hasErr}, nil
}

// call invokes the callable with its declared inputs looked up by
// fingerprint out of valueByFP, already populated by a shared TaskGraph
// run. It returns nil if the callable declares no value return, the single
// return value if it declares exactly one, or a []interface{} of every
// return value (trailing error stripped off and reported separately) if it
// declares more than one.
func (s callableSpec) call(valueByFP map[string]interface{}) (interface{}, error) {
	in := make([]reflect.Value, len(s.inputKeys))
	for i, k := range s.inputKeys {
		in[i] = reflect.ValueOf(valueByFP[k.Fingerprint()])
	}

	out := s.fn.Call(in)
	if s.hasErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		vals := make([]interface{}, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, nil
	}
}
