// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// dominantColumn returns a column that keeps column q of a matrix with unit
// off-diagonal scale strictly diagonally dominant.
func dominantColumn(dim, q int, rnd *rand.Rand) []float64 {
	col := make([]float64, dim)
	for i := range col {
		col[i] = 0.3 * (rnd.Float64() - 0.5)
	}
	col[q] = 4 + rnd.Float64()
	return col
}

// TestGramLUReplaceColumn replaces columns one at a time and checks solves
// against a dense reference after every replacement. The replacement count
// exceeds the refresh period, so both the correction chain and the periodic
// refactorization are exercised.
func TestGramLUReplaceColumn(t *testing.T) {
	const dim = 6
	rnd := rand.New(rand.NewSource(1))

	var l gramLU
	l.init(dim)
	ref := mat.NewDense(dim, dim, nil)
	for q := 0; q < dim; q++ {
		col := dominantColumn(dim, q, rnd)
		l.setColumn(q, col)
		for i := 0; i < dim; i++ {
			ref.Set(i, q, col[i])
		}
	}
	l.factor()

	b := make([]float64, dim)
	x := make([]float64, dim)
	for rep := 0; rep < 15; rep++ {
		q := rep % dim
		col := dominantColumn(dim, q, rnd)
		l.replaceColumn(q, col)
		for i := 0; i < dim; i++ {
			ref.Set(i, q, col[i])
		}
		require.LessOrEqual(t, l.nupd, dim-2)

		for i := range b {
			b[i] = rnd.NormFloat64()
		}
		copy(x, b)
		l.solve(x)

		var want mat.VecDense
		err := want.SolveVec(ref, mat.NewVecDense(dim, b))
		require.NoError(t, err)
		for i := 0; i < dim; i++ {
			assert.InDelta(t, want.AtVec(i), x[i], 1e-10, "replacement %v, row %v", rep, i)
		}
	}
}

func TestGramLUSolveBase(t *testing.T) {
	const dim = 4
	rnd := rand.New(rand.NewSource(2))

	var l gramLU
	l.init(dim)
	for q := 0; q < dim; q++ {
		l.setColumn(q, dominantColumn(dim, q, rnd))
	}
	l.factor()

	// M x = M e1 must recover e1.
	b := make([]float64, dim)
	for i := 0; i < dim; i++ {
		b[i] = l.m[i*dim]
	}
	l.solve(b)
	for i := 0; i < dim; i++ {
		want := 0.0
		if i == 0 {
			want = 1
		}
		assert.InDelta(t, want, b[i], 1e-13)
	}
}
