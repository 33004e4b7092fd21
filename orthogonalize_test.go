// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// orthonormalCols returns k orthonormal columns of length n.
func orthonormalCols(n, k int, rnd *rand.Rand) basisCols {
	data := make([]float64, k*n)
	for i := range data {
		data[i] = rnd.NormFloat64()
	}
	cols := basisCols{data: data, n: n}
	for i := 0; i < k; i++ {
		ci := cols.col(i)
		for l := 0; l < i; l++ {
			cl := cols.col(l)
			floats.AddScaled(ci, -floats.Dot(cl, ci), cl)
		}
		floats.Scale(1/floats.Norm(ci, 2), ci)
	}
	return cols
}

func maxAbsDot(cols basisCols, g []float64) float64 {
	var max float64
	for i := 0; i < cols.k(); i++ {
		d := floats.Dot(cols.col(i), g)
		if d < 0 {
			d = -d
		}
		if d > max {
			max = d
		}
	}
	return max
}

func TestOrthogonalizers(t *testing.T) {
	const (
		n = 20
		k = 5
	)
	rnd := rand.New(rand.NewSource(1))
	cols := orthonormalCols(n, k, rnd)
	orig := make([]float64, n)
	for i := range orig {
		orig[i] = rnd.NormFloat64()
	}

	for _, tc := range []struct {
		name string
		orth Orthogonalizer
	}{
		{name: "ClassicalGS", orth: ClassicalGS{}},
		{name: "ModifiedGS", orth: ModifiedGS{}},
		{name: "RepeatedClassicalGS", orth: RepeatedClassicalGS{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			g := make([]float64, n)
			copy(g, orig)
			h := make([]float64, k)
			work := make([]float64, k)

			norm := tc.orth.orthogonalize(g, cols, h, work)
			assert.InDelta(t, floats.Norm(g, 2), norm, 1e-14)

			// The deflated vector has no components along the columns.
			assert.InDelta(t, 0, maxAbsDot(cols, g), 1e-12)

			// The coefficients reconstruct the original vector.
			recon := make([]float64, n)
			copy(recon, g)
			for i := 0; i < k; i++ {
				floats.AddScaled(recon, h[i], cols.col(i))
			}
			assert.InDelta(t, 0, floats.Distance(recon, orig, 2), 1e-12)
		})
	}
}

// TestRepeatedClassicalGSCancellation deflates a vector nearly inside the
// span of the columns. A single classical pass loses orthogonality to
// cancellation; the repeated criterion must detect it and reorthogonalize.
func TestRepeatedClassicalGSCancellation(t *testing.T) {
	const (
		n = 30
		k = 6
	)
	rnd := rand.New(rand.NewSource(2))
	cols := orthonormalCols(n, k, rnd)

	g := make([]float64, n)
	copy(g, cols.col(0))
	for i := range g {
		g[i] += 1e-10 * rnd.NormFloat64()
	}
	orig := make([]float64, n)
	copy(orig, g)

	h := make([]float64, k)
	work := make([]float64, k)
	norm := RepeatedClassicalGS{}.orthogonalize(g, cols, h, work)
	require.Greater(t, norm, 0.0)

	assert.InDelta(t, 0, maxAbsDot(cols, g), 1e-8*norm)

	recon := make([]float64, n)
	copy(recon, g)
	for i := 0; i < k; i++ {
		floats.AddScaled(recon, h[i], cols.col(i))
	}
	assert.InDelta(t, 0, floats.Distance(recon, orig, 2), 1e-12)
}

func TestOrthogonalizeEmpty(t *testing.T) {
	g := []float64{3, 4}
	norm := ClassicalGS{}.orthogonalize(g, basisCols{n: 2}, nil, nil)
	assert.Equal(t, 5.0, norm)
	assert.Equal(t, []float64{3, 4}, g)
}
