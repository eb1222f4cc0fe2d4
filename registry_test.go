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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInsertAndContainsConcrete(t *testing.T) {
	r := NewRegistry()
	p, err := NewFunctionProvider(func() int { return 1 })
	require.NoError(t, err)

	require.NoError(t, r.Insert(p))
	assert.True(t, r.Contains(ConcreteOf[int]()))
	assert.False(t, r.Contains(ConcreteOf[string]()))
}

func TestRegistryInsertConcreteReplaces(t *testing.T) {
	r := NewRegistry()
	first, _ := NewFunctionProvider(func() int { return 1 })
	second, _ := NewFunctionProvider(func() int { return 2 })

	require.NoError(t, r.Insert(first))
	require.NoError(t, r.Insert(second))

	direct, _ := r.candidatesFor(ConcreteOf[int]())
	require.NotNil(t, direct)
	v, err := direct.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRegistryInsertRejectsUnboundOutputVariable(t *testing.T) {
	r := NewRegistry()
	bound := NewVariable("T")
	free := NewVariable("U")
	box := NewOrigin("Box")

	p, err := NewGenericFunctionProvider(
		func(x, y interface{}) interface{} { return x },
		Parametrised(box, VarKey(bound)),
		[]Key{VarKey(bound), VarKey(free)},
	)
	require.NoError(t, err)

	err = r.Insert(p)
	require.Error(t, err)
	var ipe *InvalidProviderError
	assert.ErrorAs(t, err, &ipe)
}

func TestRegistryGenericReplaceByIdenticalOutputKey(t *testing.T) {
	r := NewRegistry()
	v := NewVariable("T")
	box := NewOrigin("Box")
	output := Parametrised(box, VarKey(v))

	first, _ := NewGenericFunctionProvider(func(x interface{}) interface{} { return 1 }, output, []Key{VarKey(v)})
	second, _ := NewGenericFunctionProvider(func(x interface{}) interface{} { return 2 }, output, []Key{VarKey(v)})

	require.NoError(t, r.Insert(first))
	require.NoError(t, r.Insert(second))

	_, candidates := r.candidatesFor(Parametrised(box, ConcreteOf[int]()))
	require.Len(t, candidates, 1, "second insert should replace, not append, the identical-output candidate")
}

func TestRegistrySetValueTypeMismatch(t *testing.T) {
	r := NewRegistry()
	err := r.SetValue(ConcreteOf[int](), "not an int")
	require.Error(t, err)
	var mismatch *KeyTypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	p, _ := NewFunctionProvider(func() int { return 1 })
	require.NoError(t, r.Insert(p))
	r.Remove(ConcreteOf[int]())
	assert.False(t, r.Contains(ConcreteOf[int]()))
}

func TestRegistryCopyIsIndependent(t *testing.T) {
	r := NewRegistry()
	p, _ := NewFunctionProvider(func() int { return 1 })
	require.NoError(t, r.Insert(p))

	clone := r.Copy()
	other, _ := NewFunctionProvider(func() string { return "x" })
	require.NoError(t, clone.Insert(other))

	assert.True(t, clone.Contains(ConcreteOf[string]()))
	assert.False(t, r.Contains(ConcreteOf[string]()), "mutating the copy must not affect the original")

	clone.Remove(ConcreteOf[int]())
	assert.True(t, r.Contains(ConcreteOf[int]()), "removing from the copy must not affect the original")
}

// registrySnapshot captures a registry's observable provider set: for every
// concrete key, the Kind of provider registered there, plus the same for
// every generic candidate grouped by origin. Two registries with an equal
// snapshot are interchangeable from a Resolver's point of view, even though
// the underlying *Provider pointers may differ.
func registrySnapshot(t *testing.T, r *Registry) map[string]Kind {
	t.Helper()
	snap := make(map[string]Kind, len(r.concrete))
	for fp, p := range r.concrete {
		snap[fp] = p.Kind()
	}
	for origin, list := range r.generic {
		for _, p := range list {
			snap[origin+"#"+p.outputKey.Fingerprint()] = p.Kind()
		}
	}
	return snap
}

func TestRegistryCopyProducesStructurallyEqualSnapshot(t *testing.T) {
	r := NewRegistry()
	concrete, _ := NewFunctionProvider(func() int { return 1 })
	require.NoError(t, r.Insert(concrete))

	v := NewVariable("T")
	box := NewOrigin("Box")
	generic, _ := NewGenericFunctionProvider(func(x interface{}) interface{} { return x }, Parametrised(box, VarKey(v)), []Key{VarKey(v)})
	require.NoError(t, r.Insert(generic))

	clone := r.Copy()
	if diff := cmp.Diff(registrySnapshot(t, r), registrySnapshot(t, clone)); diff != "" {
		t.Fatalf("clone's provider set diverged from the original (-want +got):\n%s", diff)
	}

	// Mutating the clone must not be visible in a fresh snapshot of r.
	other, _ := NewFunctionProvider(func() string { return "x" })
	require.NoError(t, clone.Insert(other))
	if diff := cmp.Diff(registrySnapshot(t, r), registrySnapshot(t, clone)); diff == "" {
		t.Fatal("expected the clone's snapshot to diverge from the original after an independent insert")
	}
}
