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

// unify walks output and requested in lockstep, accumulating a binding for
// every variable in output. It fails (ok=false) on an origin or arity
// mismatch, or on a variable bound to two different keys, or on a binding
// that falls outside a constrained variable's allowed set.
func unify(output, requested Key) (map[*Variable]Key, bool) {
	bindings := make(map[*Variable]Key)
	if !unifyInto(output, requested, bindings) {
		return nil, false
	}
	return bindings, true
}

func unifyInto(output, requested Key, bindings map[*Variable]Key) bool {
	if output.IsVariable() {
		v := output.Variable()
		if existing, ok := bindings[v]; ok {
			return existing.Equal(requested)
		}
		if !v.allows(requested) {
			return false
		}
		bindings[v] = requested
		return true
	}

	outOrigin, outIsParam := output.Origin()
	reqOrigin, reqIsParam := requested.Origin()
	if outIsParam != reqIsParam {
		return false
	}
	if !outIsParam {
		// Neither side is parametrised (and output isn't a variable): this
		// is only reachable for concrete/item keys, which unify iff equal.
		return output.Equal(requested)
	}
	if outOrigin != reqOrigin {
		return false
	}
	outArgs, reqArgs := output.Args(), requested.Args()
	if len(outArgs) != len(reqArgs) {
		return false
	}
	for i := range outArgs {
		if !unifyInto(outArgs[i], reqArgs[i], bindings) {
			return false
		}
	}
	return true
}

// moreSpecific reports whether a's output key is strictly more specific
// than b's: a can be obtained from b by substituting some of b's variables
// with non-variable keys, with at least one substitution non-trivial, and
// the reverse does not also hold (which would make them merely
// alpha-equivalent, not one more specific than the other).
func moreSpecific(a, b *Provider) bool {
	return isInstanceOf(a.outputKey, b.outputKey) && !isInstanceOf(b.outputKey, a.outputKey)
}

// isInstanceOf reports whether general can be specialised into specific by
// substituting some of general's variables with non-variable keys.
func isInstanceOf(specific, general Key) bool {
	bindings := make(map[*Variable]Key)
	return instanceInto(specific, general, bindings)
}

func instanceInto(specific, general Key, bindings map[*Variable]Key) bool {
	if general.IsVariable() {
		v := general.Variable()
		if existing, ok := bindings[v]; ok {
			return existing.Equal(specific)
		}
		bindings[v] = specific
		return true
	}
	if specific.IsVariable() {
		// A bare variable can only match a bare variable on the general
		// side (handled above) or itself.
		return general.IsVariable() && general.Variable() == specific.Variable()
	}

	specOrigin, specIsParam := specific.Origin()
	genOrigin, genIsParam := general.Origin()
	if specIsParam != genIsParam {
		return false
	}
	if !specIsParam {
		return specific.Equal(general)
	}
	if specOrigin != genOrigin {
		return false
	}
	specArgs, genArgs := specific.Args(), general.Args()
	if len(specArgs) != len(genArgs) {
		return false
	}
	for i := range specArgs {
		if !instanceInto(specArgs[i], genArgs[i], bindings) {
			return false
		}
	}
	return true
}

// filterBySpecificity removes any candidate that is strictly less specific
// than another candidate in the slice. The input slice is not mutated.
func filterBySpecificity(candidates []*Provider) []*Provider {
	survivors := make([]*Provider, 0, len(candidates))
	for i, p := range candidates {
		dominated := false
		for j, q := range candidates {
			if i == j {
				continue
			}
			if moreSpecific(q, p) {
				dominated = true
				break
			}
		}
		if !dominated {
			survivors = append(survivors, p)
		}
	}
	return survivors
}
