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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFunctionProviderInfersKeys(t *testing.T) {
	p, err := NewFunctionProvider(func(x int, y string) float64 { return 0 })
	require.NoError(t, err)

	assert.True(t, p.OutputKey().Equal(ConcreteOf[float64]()))
	require.Len(t, p.InputKeys(), 2)
	assert.True(t, p.InputKeys()[0].Equal(ConcreteOf[int]()))
	assert.True(t, p.InputKeys()[1].Equal(ConcreteOf[string]()))
	assert.Equal(t, []string{"arg0", "arg1"}, p.InputNames())
	assert.False(t, p.IsGeneric())
}

func TestNewFunctionProviderRejectsNonFunc(t *testing.T) {
	_, err := NewFunctionProvider(42)
	require.Error(t, err)
	var ipe *InvalidProviderError
	assert.ErrorAs(t, err, &ipe)
}

func TestNewFunctionProviderRejectsWrongReturnShape(t *testing.T) {
	_, err := NewFunctionProvider(func() (int, string) { return 0, "" })
	require.Error(t, err)
}

func TestNewFunctionProviderAllowsTrailingError(t *testing.T) {
	p, err := NewFunctionProvider(func(x int) (int, error) { return x, nil })
	require.NoError(t, err)
	v, err := p.Call(map[string]interface{}{"arg0": 3})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestProviderCallPropagatesFunctionError(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewFunctionProvider(func() (int, error) { return 0, boom })
	require.NoError(t, err)

	_, callErr := p.Call(nil)
	assert.ErrorIs(t, callErr, boom)
}

func TestNewGenericFunctionProviderIsGeneric(t *testing.T) {
	v := NewVariable("T")
	box := NewOrigin("Box")
	p, err := NewGenericFunctionProvider(
		func(x interface{}) interface{} { return x },
		Parametrised(box, VarKey(v)),
		[]Key{VarKey(v)},
	)
	require.NoError(t, err)
	assert.True(t, p.IsGeneric())
}

func TestNewParameterProviderCallReturnsStoredValue(t *testing.T) {
	p := NewParameterProvider(ConcreteOf[int](), 7)
	v, err := p.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, KindParameter, p.Kind())
}
