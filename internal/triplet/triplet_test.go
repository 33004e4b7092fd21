// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package triplet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulVec(t *testing.T) {
	m := New(2, 3)
	m.Append(0, 0, 1)
	m.Append(0, 2, 2)
	m.Append(1, 1, -3)
	m.Append(1, 1, 1) // Duplicates are summed.

	dst := make([]float64, 2)
	m.MulVec(dst, []float64{1, 2, 3})
	assert.Equal(t, []float64{7, -4}, dst)

	require.Panics(t, func() { m.MulVec(dst, []float64{1, 2}) })
	require.Panics(t, func() { m.MulVec(make([]float64, 3), []float64{1, 2, 3}) })
	require.Panics(t, func() { m.Append(2, 0, 1) })
}

func TestConvectionDiffusion2D(t *testing.T) {
	const (
		nx = 4
		ny = 3
	)
	m := ConvectionDiffusion2D(nx, ny, 1)
	r, c := m.Dims()
	require.Equal(t, nx*ny, r)
	require.Equal(t, nx*ny, c)

	// Rows away from the boundary sum to zero: the operator annihilates
	// constants in the interior.
	ones := make([]float64, nx*ny)
	for i := range ones {
		ones[i] = 1
	}
	dst := make([]float64, nx*ny)
	m.MulVec(dst, ones)
	i := 1*nx + 1 // An interior grid point.
	assert.InDelta(t, 0, dst[i], 1e-9)
}
