// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// basisCols is a contiguous block of basis columns, one per stretch of n
// values.
type basisCols struct {
	data []float64
	n    int
}

func (c basisCols) k() int { return len(c.data) / c.n }

func (c basisCols) col(i int) []float64 { return c.data[i*c.n : (i+1)*c.n] }

// Orthogonalizer removes from a candidate vector its components along the
// existing basis columns. Implementations accumulate the projection
// coefficients and return the norm of the deflated vector; normalization is
// left to the caller.
//
// The set of implementations is closed: ClassicalGS, ModifiedGS and
// RepeatedClassicalGS.
type Orthogonalizer interface {
	// orthogonalize deflates g against cols, accumulating the
	// coefficients into h (of length cols.k()), and returns the norm of
	// the deflated g. work must have length at least cols.k().
	orthogonalize(g []float64, cols basisCols, h, work []float64) float64
}

// ClassicalGS orthogonalizes by a single pass of the classical Gram-Schmidt
// process, with the coefficients computed in one batched product.
type ClassicalGS struct{}

func (ClassicalGS) orthogonalize(g []float64, cols basisCols, h, work []float64) float64 {
	cgsPass(g, cols, h, work)
	return floats.Norm(g, 2)
}

// ModifiedGS orthogonalizes column by column, deflating g before each
// subsequent coefficient is computed.
type ModifiedGS struct{}

func (ModifiedGS) orthogonalize(g []float64, cols basisCols, h, work []float64) float64 {
	for l := 0; l < cols.k(); l++ {
		cl := cols.col(l)
		hl := floats.Dot(cl, g)
		floats.AddScaled(g, -hl, cl)
		h[l] += hl
	}
	return floats.Norm(g, 2)
}

// RepeatedClassicalGS runs classical Gram-Schmidt and reorthogonalizes while
// cancellation is detected: a pass is repeated when the norm of the deflated
// vector fell below Tol times the norm before the pass. Coefficient updates
// accumulate additively into h.
type RepeatedClassicalGS struct {
	// Tol triggers reorthogonalization.
	// If it is zero, 1/√2 will be used.
	Tol float64
	// MaxRepeat bounds the number of extra passes.
	// If it is zero, 2 will be used.
	MaxRepeat int
}

func (r RepeatedClassicalGS) orthogonalize(g []float64, cols basisCols, h, work []float64) float64 {
	tol := r.Tol
	if tol == 0 {
		tol = 1 / math.Sqrt2
	}
	maxRepeat := r.MaxRepeat
	if maxRepeat == 0 {
		maxRepeat = 2
	}

	before := floats.Norm(g, 2)
	cgsPass(g, cols, h, work)
	norm := floats.Norm(g, 2)
	for rep := 0; rep < maxRepeat && norm < tol*before; rep++ {
		before = norm
		cgsPass(g, cols, h, work)
		norm = floats.Norm(g, 2)
	}
	return norm
}

// cgsPass performs one classical Gram-Schmidt pass,
//  hupd = colsᴴ·g,  g -= cols·hupd,
// as two batched matrix-vector products, accumulating hupd into h.
func cgsPass(g []float64, cols basisCols, h, hupd []float64) {
	k := cols.k()
	if k == 0 {
		return
	}
	bi := blas64.Implementation()
	bi.Dgemv(blas.NoTrans, k, cols.n, 1, cols.data, cols.n, g, 1, 0, hupd[:k], 1)
	bi.Dgemv(blas.Trans, k, cols.n, -1, cols.data, cols.n, hupd[:k], 1, 1, g, 1)
	floats.Add(h, hupd[:k])
}
