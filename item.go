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
	"strconv"
)

// NewTableProvider builds a KindTable provider: a single function call
// that produces one aggregate value, positions of which are later addressed
// individually through ItemKey — labelled positional sub-values of one
// underlying computation, rather than one provider per label. output
// identifies the aggregate itself; item keys built with
// ItemKey(labels, output) are resolved by first computing output and then
// projecting into it.
func NewTableProvider(fn interface{}, output Key, inputKeys []Key) (*Provider, error) {
	p, err := NewGenericFunctionProvider(fn, output, inputKeys)
	if err != nil {
		return nil, err
	}
	p.kind = KindTable
	return p, nil
}

// ExtractItem projects labels out of base, one label at a time. A struct
// value is projected by field name, a map by key (a string key is the label
// itself, a signed integer key is parsed from the label; other key types are
// rejected), and a slice or array by integer index. Scheduler backends call this to evaluate an item key once its
// underlying table key has been computed.
func ExtractItem(base interface{}, labels []string) (interface{}, error) {
	v := reflect.ValueOf(base)
	for _, label := range labels {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Struct:
			f := v.FieldByName(label)
			if !f.IsValid() {
				return nil, fmt.Errorf("sciline: no field %q in %v", label, v.Type())
			}
			v = f
		case reflect.Map:
			key, err := mapKeyFor(v.Type().Key(), label)
			if err != nil {
				return nil, err
			}
			f := v.MapIndex(key)
			if !f.IsValid() {
				return nil, fmt.Errorf("sciline: no entry %q in map %v", label, v.Type())
			}
			v = f
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(label)
			if err != nil {
				return nil, fmt.Errorf("sciline: label %q is not a valid index into %v", label, v.Type())
			}
			if idx < 0 || idx >= v.Len() {
				return nil, fmt.Errorf("sciline: index %d out of range for %v of length %d", idx, v.Type(), v.Len())
			}
			v = v.Index(idx)
		default:
			return nil, fmt.Errorf("sciline: cannot project label %q out of %v", label, v.Type())
		}
	}
	return v.Interface(), nil
}

func mapKeyFor(keyType reflect.Type, label string) (reflect.Value, error) {
	if keyType.Kind() == reflect.String {
		return reflect.ValueOf(label).Convert(keyType), nil
	}
	if keyType.Kind() >= reflect.Int && keyType.Kind() <= reflect.Int64 {
		n, err := strconv.ParseInt(label, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("sciline: label %q is not a valid map key of type %v", label, keyType)
		}
		return reflect.ValueOf(n).Convert(keyType), nil
	}
	return reflect.Value{}, fmt.Errorf("sciline: unsupported map key type %v", keyType)
}
