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
	"strings"
)

// kind distinguishes the small closed set of key shapes a Key can take.
type kind uint8

const (
	kindConcrete kind = iota
	kindParam
	kindItem
	kindVariable
)

// Origin identifies a generic template, independent of the arguments it is
// eventually instantiated with. Two origins are the same template iff their
// names are equal; callers are responsible for choosing unique names.
type Origin struct {
	name string
}

// NewOrigin names a generic template, e.g. the "Box" in Box[T].
func NewOrigin(name string) Origin {
	return Origin{name: name}
}

func (o Origin) String() string { return o.name }

// Variable is a symbolic placeholder for a type, distinguishable from any
// concrete key. Variables are identity-based: two variables are equal only
// if they are the same declared variable, which is why NewVariable returns
// a pointer rather than a value.
type Variable struct {
	name        string
	constraints []Key
}

// NewVariable declares a fresh type variable. If constraints are given,
// binding this variable must pick a concrete key from that set.
func NewVariable(name string, constraints ...Key) *Variable {
	return &Variable{name: name, constraints: constraints}
}

func (v *Variable) String() string { return "~" + v.name }

// allows reports whether k is an acceptable binding for v.
func (v *Variable) allows(k Key) bool {
	if len(v.constraints) == 0 {
		return true
	}
	for _, c := range v.constraints {
		if c.Equal(k) {
			return true
		}
	}
	return false
}

// Key identifies a value in the computation graph. A Key is one of:
//
//   - a concrete key, a leaf type identity built from reflect.Type;
//   - a parametrised key, an Origin plus an ordered tuple of argument keys
//     (each of which may itself be concrete, parametrised, or a variable);
//   - an item key, a (labels, inner) pair indexing a positional sub-value
//     of a table provider's output.
//
// Keys are immutable value types. Because parametrised and item keys embed
// slices, a Key is not itself Go-comparable and must never be used directly
// as a map key; use Fingerprint for that (see Equal).
type Key struct {
	k      kind
	typ    reflect.Type
	origin Origin
	args   []Key
	v      *Variable
	labels []string
	inner  *Key
}

// Concrete builds a leaf key from a reflect.Type.
func Concrete(t reflect.Type) Key {
	return Key{k: kindConcrete, typ: t}
}

// ConcreteOf is sugar for Concrete(reflect.TypeOf((*T)(nil)).Elem()), letting
// callers spell a concrete key as ConcreteOf[Foo]() instead of reaching for
// reflect directly. It is pure ergonomics: the runtime key system underneath
// is still the nominal, reflect-based one, never Go's own generics.
func ConcreteOf[T any]() Key {
	return Concrete(reflect.TypeOf((*T)(nil)).Elem())
}

// Parametrised builds a generic key from an origin and its argument keys.
func Parametrised(origin Origin, args ...Key) Key {
	return Key{k: kindParam, origin: origin, args: args}
}

// ItemKey builds a labelled positional key over an inner key, used to
// request the i-th element of a table provider's output (see item.go).
func ItemKey(labels []string, inner Key) Key {
	innerCopy := inner
	return Key{k: kindItem, labels: append([]string(nil), labels...), inner: &innerCopy}
}

// VarKey lifts a type Variable into a Key so it can appear inside a
// provider's declared input or output keys.
func VarKey(v *Variable) Key {
	return Key{k: kindVariable, v: v}
}

// Origin returns the generic origin of a parametrised key, or false for any
// other kind.
func (k Key) Origin() (Origin, bool) {
	if k.k != kindParam {
		return Origin{}, false
	}
	return k.origin, true
}

// Args returns the argument keys of a parametrised key; nil for any other
// kind.
func (k Key) Args() []Key {
	if k.k != kindParam {
		return nil
	}
	return k.args
}

// IsVariable reports whether k is itself an unbound type variable.
func (k Key) IsVariable() bool { return k.k == kindVariable }

// IsConcrete reports whether k is a leaf, non-generic key.
func (k Key) IsConcrete() bool { return k.k == kindConcrete }

// IsItem reports whether k is a labelled item key.
func (k Key) IsItem() bool { return k.k == kindItem }

// Labels returns the label tuple of an item key; nil for any other kind.
func (k Key) Labels() []string {
	if k.k != kindItem {
		return nil
	}
	return k.labels
}

// Inner returns the inner key of an item key. It panics if k is not an item
// key; callers should guard with IsItem.
func (k Key) Inner() Key {
	if k.k != kindItem {
		panic("sciline: Inner called on a non-item Key")
	}
	return *k.inner
}

// Variable returns the underlying *Variable of a variable key. It panics if
// k is not a variable key; callers should guard with IsVariable.
func (k Key) Variable() *Variable {
	if k.k != kindVariable {
		panic("sciline: Variable called on a non-variable Key")
	}
	return k.v
}

// ReflectType returns the reflect.Type of a concrete key. It panics for any
// other kind; callers should guard with IsConcrete.
func (k Key) ReflectType() reflect.Type {
	if k.k != kindConcrete {
		panic("sciline: ReflectType called on a non-concrete Key")
	}
	return k.typ
}

// Substitute returns a new key with every variable replaced according to
// bindings. Variables with no entry in bindings are left in place, and the
// substitution recurses into parametrised arguments and item inner keys so
// that e.g. Box[Pair[T, int]] is rewritten correctly when T is bound.
func Substitute(k Key, bindings map[*Variable]Key) Key {
	switch k.k {
	case kindVariable:
		if bound, ok := bindings[k.v]; ok {
			return bound
		}
		return k
	case kindParam:
		newArgs := make([]Key, len(k.args))
		changed := false
		for i, a := range k.args {
			newArgs[i] = Substitute(a, bindings)
			if !newArgs[i].Equal(a) {
				changed = true
			}
		}
		if !changed {
			return k
		}
		return Key{k: kindParam, origin: k.origin, args: newArgs}
	case kindItem:
		newInner := Substitute(*k.inner, bindings)
		if newInner.Equal(*k.inner) {
			return k
		}
		return Key{k: kindItem, labels: k.labels, inner: &newInner}
	default:
		return k
	}
}

// FreeVars returns the set of type variables still free in k.
func FreeVars(k Key) map[*Variable]struct{} {
	out := make(map[*Variable]struct{})
	collectFreeVars(k, out)
	return out
}

func collectFreeVars(k Key, out map[*Variable]struct{}) {
	switch k.k {
	case kindVariable:
		out[k.v] = struct{}{}
	case kindParam:
		for _, a := range k.args {
			collectFreeVars(a, out)
		}
	case kindItem:
		collectFreeVars(*k.inner, out)
	}
}

// Fingerprint returns a canonical string identity for k, stable for the
// lifetime of the process (variable identity is encoded via pointer value).
// Registries and task graphs index by Fingerprint rather than by Key
// itself, since a Key holding parametrised args is not Go-comparable.
func (k Key) Fingerprint() string {
	switch k.k {
	case kindConcrete:
		return "C:" + k.typ.String()
	case kindVariable:
		return fmt.Sprintf("V:%p", k.v)
	case kindParam:
		parts := make([]string, len(k.args))
		for i, a := range k.args {
			parts[i] = a.Fingerprint()
		}
		return "P:" + k.origin.name + "[" + strings.Join(parts, ",") + "]"
	case kindItem:
		return "I:" + strings.Join(k.labels, "/") + "@" + k.inner.Fingerprint()
	default:
		return "?"
	}
}

// Equal reports structural equality: two parametrised keys are equal iff
// their origins and arguments match pairwise; two item keys are equal iff
// their labels and inner keys match.
func (k Key) Equal(other Key) bool {
	return k.Fingerprint() == other.Fingerprint()
}

// String renders a human-readable form of k, useful in error messages.
func (k Key) String() string {
	switch k.k {
	case kindConcrete:
		return k.typ.String()
	case kindVariable:
		return k.v.String()
	case kindParam:
		parts := make([]string, len(k.args))
		for i, a := range k.args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s[%s]", k.origin.name, strings.Join(parts, ", "))
	case kindItem:
		return fmt.Sprintf("%s@%s", strings.Join(k.labels, "/"), k.inner.String())
	default:
		return "<invalid key>"
	}
}
