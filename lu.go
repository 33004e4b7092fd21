// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// gramLU maintains a small square matrix together with a factorization of it
// that tracks single-column replacements. A replacement M ← M + d·e_qᵀ is
// absorbed as a Sherman-Morrison correction on top of the base LU
// factorization; solves apply the corrections in order after the triangular
// solve. Once the correction chain is about as expensive as a fresh
// factorization, the base LU is recomputed.
type gramLU struct {
	dim int

	m    []float64 // The matrix, row-major.
	lu   []float64 // Base LU factors of an earlier state of m.
	ipiv []int

	// Correction chain. z[i*dim:(i+1)*dim] holds the solve of the i-th
	// column difference against the factorization current at its time.
	z     []float64
	q     []int
	denom []float64
	nupd  int

	d []float64 // Scratch for the column difference.
}

func (l *gramLU) init(dim int) {
	l.dim = dim
	l.m = reuse(l.m, dim*dim)
	l.lu = reuse(l.lu, dim*dim)
	l.ipiv = reuseInt(l.ipiv, dim)
	l.z = reuse(l.z, dim*dim)
	l.q = reuseInt(l.q, dim)
	l.denom = reuse(l.denom, dim)
	l.nupd = 0
	l.d = reuse(l.d, dim)
}

func (l *gramLU) general(data []float64) blas64.General {
	return blas64.General{Rows: l.dim, Cols: l.dim, Stride: l.dim, Data: data}
}

// setColumn overwrites column q of the matrix. It does not touch the
// factorization; call factor afterwards.
func (l *gramLU) setColumn(q int, col []float64) {
	for i := 0; i < l.dim; i++ {
		l.m[i*l.dim+q] = col[i]
	}
}

// factor recomputes the base LU factorization from the current matrix and
// drops the correction chain. An exactly singular Gram matrix is not guarded
// against here; it surfaces as non-finite values in the iteration.
func (l *gramLU) factor() {
	copy(l.lu, l.m)
	lapack64.Getrf(l.general(l.lu), l.ipiv)
	l.nupd = 0
}

// solve overwrites b with M⁻¹·b for the current matrix.
func (l *gramLU) solve(b []float64) {
	rhs := blas64.General{Rows: l.dim, Cols: 1, Stride: 1, Data: b}
	lapack64.Getrs(blas.NoTrans, l.general(l.lu), rhs, l.ipiv)
	for i := 0; i < l.nupd; i++ {
		zi := l.z[i*l.dim : (i+1)*l.dim]
		floats.AddScaled(b, -b[l.q[i]]/l.denom[i], zi)
	}
}

// replaceColumn overwrites column q with col and updates the factorization,
// either by appending a Sherman-Morrison correction or, when the chain is
// long, by refactoring.
func (l *gramLU) replaceColumn(q int, col []float64) {
	if l.nupd >= l.dim-2 {
		l.setColumn(q, col)
		l.factor()
		return
	}
	for i := 0; i < l.dim; i++ {
		l.d[i] = col[i] - l.m[i*l.dim+q]
	}
	l.setColumn(q, col)

	zi := l.z[l.nupd*l.dim : (l.nupd+1)*l.dim]
	copy(zi, l.d)
	l.solve(zi)
	l.q[l.nupd] = q
	l.denom[l.nupd] = 1 + zi[q]
	l.nupd++
}
