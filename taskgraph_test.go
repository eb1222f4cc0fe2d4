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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1: a single chained result, each provider called exactly once.
func TestComputeSingleResult(t *testing.T) {
	r := NewRegistry()
	var fCalls int
	var mu sync.Mutex
	insertMust(t, r)(NewFunctionProvider(func() int {
		mu.Lock()
		fCalls++
		mu.Unlock()
		return 3
	}))
	insertMust(t, r)(NewFunctionProvider(func(x int) float64 { return 0.5 * float64(x) }))

	g, err := NewResolver().Resolve(r, ConcreteOf[float64]())
	require.NoError(t, err)

	values, err := g.Compute(SequentialScheduler{}, ConcreteOf[float64]())
	require.NoError(t, err)
	assert.Equal(t, 1.5, values[0])
	assert.Equal(t, 1, fCalls)
}

// S2: a shared intermediate is only computed once even though two providers
// depend on it.
func TestComputeSharedIntermediateCalledOnce(t *testing.T) {
	r := NewRegistry()
	var fCalls int
	var mu sync.Mutex
	insertMust(t, r)(NewFunctionProvider(func() int {
		mu.Lock()
		fCalls++
		mu.Unlock()
		return 3
	}))
	insertMust(t, r)(NewFunctionProvider(func(x int) float64 { return 0.5 * float64(x) }))
	insertMust(t, r)(NewFunctionProvider(func(x int, y float64) string { return fmt.Sprintf("%d;%v", x, y) }))

	g, err := NewResolver().Resolve(r, ConcreteOf[string]())
	require.NoError(t, err)

	values, err := g.Compute(SequentialScheduler{}, ConcreteOf[string]())
	require.NoError(t, err)
	assert.Equal(t, "3;1.5", values[0])
	assert.Equal(t, 1, fCalls, "f must be called exactly once despite two dependents")
}

// S6: a cycle tolerated at build time must fail at execute time.
func TestBuildToleratesCycleExecuteDetects(t *testing.T) {
	r := NewRegistry()
	insertMust(t, r)(NewFunctionProvider(func(x int) float64 { return float64(x) }))
	insertMust(t, r)(NewFunctionProvider(func(x float64) int { return int(x) }))

	g, err := NewResolver().Resolve(r, ConcreteOf[int]())
	require.NoError(t, err, "building a graph with a cycle must succeed for introspection")

	_, err = g.Compute(SequentialScheduler{}, ConcreteOf[int]())
	require.Error(t, err)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestComputeUnknownKeyFails(t *testing.T) {
	r := NewRegistry()
	insertMust(t, r)(NewFunctionProvider(func() int { return 1 }))

	g, err := NewResolver().Resolve(r, ConcreteOf[int]())
	require.NoError(t, err)

	_, err = g.Compute(SequentialScheduler{}, ConcreteOf[string]())
	require.Error(t, err)
	var notInGraph *KeyNotInGraphError
	assert.ErrorAs(t, err, &notInGraph)
}

func TestTaskGraphNodesAndEdgesAreDeterministic(t *testing.T) {
	r := NewRegistry()
	insertMust(t, r)(NewFunctionProvider(func() int { return 3 }))
	insertMust(t, r)(NewFunctionProvider(func(x int) float64 { return 0.5 * float64(x) }))

	g, err := NewResolver().Resolve(r, ConcreteOf[float64]())
	require.NoError(t, err)

	nodes1, nodes2 := g.Nodes(), g.Nodes()
	assert.Equal(t, nodes1, nodes2)

	edges1, edges2 := g.Edges(), g.Edges()
	assert.Equal(t, edges1, edges2)
	require.Len(t, edges1, 1)
	assert.True(t, edges1[0].From.Equal(ConcreteOf[float64]()))
	assert.True(t, edges1[0].To.Equal(ConcreteOf[int]()))
}

func TestTaskGraphInspectReportsNodeShape(t *testing.T) {
	r := NewRegistry()
	insertMust(t, r)(NewFunctionProvider(func() int { return 3 }))

	g, err := NewResolver().Resolve(r, ConcreteOf[int]())
	require.NoError(t, err)

	provider, args, itemOf, err := g.Inspect(ConcreteOf[int]())
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Empty(t, args)
	assert.Nil(t, itemOf)
}
