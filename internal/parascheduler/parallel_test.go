// Copyright (c) 2022 Uber Technologies, Inc.
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

package parascheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MridulS/sciline"
)

func buildDiamondGraph(t *testing.T) *sciline.TaskGraph {
	t.Helper()
	r := sciline.NewRegistry()

	f, err := sciline.NewFunctionProvider(func() int { return 3 })
	require.NoError(t, err)
	require.NoError(t, r.Insert(f))

	g, err := sciline.NewFunctionProvider(func(x int) float64 { return 0.5 * float64(x) })
	require.NoError(t, err)
	require.NoError(t, r.Insert(g))

	h, err := sciline.NewFunctionProvider(func(x int, y float64) string { return fmt.Sprintf("%d;%v", x, y) })
	require.NoError(t, err)
	require.NoError(t, r.Insert(h))

	graph, err := sciline.NewResolver().Resolve(r, sciline.ConcreteOf[string]())
	require.NoError(t, err)
	return graph
}

func TestBoundedSchedulerMatchesSequentialScheduler(t *testing.T) {
	graph := buildDiamondGraph(t)

	want, err := graph.Compute(sciline.SequentialScheduler{}, sciline.ConcreteOf[string]())
	require.NoError(t, err)

	got, err := graph.Compute(Scheduler{Concurrency: 2}, sciline.ConcreteOf[string]())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	gotUnbounded, err := graph.Compute(Scheduler{}, sciline.ConcreteOf[string]())
	require.NoError(t, err)
	assert.Equal(t, want, gotUnbounded)
}

func TestBoundedSchedulerDetectsCycle(t *testing.T) {
	r := sciline.NewRegistry()
	f, err := sciline.NewFunctionProvider(func(x int) float64 { return float64(x) })
	require.NoError(t, err)
	require.NoError(t, r.Insert(f))
	g, err := sciline.NewFunctionProvider(func(x float64) int { return int(x) })
	require.NoError(t, err)
	require.NoError(t, r.Insert(g))

	graph, err := sciline.NewResolver().Resolve(r, sciline.ConcreteOf[int]())
	require.NoError(t, err)

	_, err = graph.Compute(Scheduler{Concurrency: 2}, sciline.ConcreteOf[int]())
	require.Error(t, err)
	var cycleErr *sciline.CycleError
	assert.ErrorAs(t, err, &cycleErr)
}
