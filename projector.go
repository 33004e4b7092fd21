// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// shadowProjector owns the fixed shadow basis R0 and the Gram matrix
//  M = R0ᴴ·G_active
// over the active window of basis columns. The window is the p most recently
// registered columns; its Gram columns are replaced one at a time as the
// basis buffer cycles, and the LU factorization of M follows along
// incrementally with a periodic full refresh.
//
// The projector also carries the subspace reduction parameter ω (and its
// reciprocal μ), recomputed once per IDR cycle.
type shadowProjector struct {
	n, p  int
	kappa float64

	haveR0 bool
	r0     []float64 // p×n, one shadow vector per contiguous stretch of n.

	lu   gramLU    // Gram matrix and its maintained factorization.
	mv   []float64 // Scratch: R0ᴴ·v and the per-pass solution.
	uord []float64 // Per-pass coefficients reordered oldest first.
	u    []float64 // Accumulated oblique projection coefficients, oldest first.
	gram []float64 // Scratch: freshly computed Gram column.

	slots []int // Gram column -> basis slot holding its vector.
	head  int   // Gram column of the oldest active basis column.
	built bool

	om float64 // Reduction parameter ω.
	mu float64 // 1/ω, or 1 when ω is negligible.
	j  int     // Completed subspace reductions.
}

func (p *shadowProjector) init(n, s, projDim int, kappa float64, r0 []float64) {
	p.n = n
	p.p = projDim
	p.kappa = kappa

	p.r0 = reuse(p.r0, projDim*n)
	p.haveR0 = r0 != nil
	if p.haveR0 {
		copy(p.r0, r0)
	}

	p.lu.init(projDim)
	p.mv = reuse(p.mv, projDim)
	p.uord = reuse(p.uord, projDim)
	p.u = reuse(p.u, projDim)
	p.gram = reuse(p.gram, projDim)
	p.slots = reuseInt(p.slots, projDim)
	p.head = 0
	p.built = false

	p.om = 0
	p.mu = 0
	p.j = 0
}

// generateR0 fills the shadow basis with random vectors and keeps the Q
// factor of their QR factorization, computed by modified Gram-Schmidt.
func (p *shadowProjector) generateR0(rnd *rand.Rand) {
	normal := rand.NormFloat64
	if rnd != nil {
		normal = rnd.NormFloat64
	}
	for i := range p.r0 {
		p.r0[i] = normal()
	}
	var mgs ModifiedGS
	for i := 0; i < p.p; i++ {
		ri := p.r0[i*p.n : (i+1)*p.n]
		if i > 0 {
			for l := 0; l < i; l++ {
				p.mv[l] = 0
			}
			mgs.orthogonalize(ri, basisCols{data: p.r0[:i*p.n], n: p.n}, p.mv[:i], nil)
		}
		floats.Scale(1/floats.Norm(ri, 2), ri)
	}
	p.haveR0 = true
}

// activate reports whether the projector is in play. The first time the
// basis buffer fills it builds the shadow basis (unless supplied) and the
// Gram matrix over the projDim columns preceding the latest one.
func (p *shadowProjector) activate(b *krylovBasis, rnd *rand.Rand) bool {
	if p.built {
		return true
	}
	if b.latest != b.s {
		return false
	}
	if !p.haveR0 {
		p.generateR0(rnd)
	}
	bi := blas64.Implementation()
	for c := 0; c < p.p; c++ {
		slot := (b.latest - p.p + c + b.s + 1) % (b.s + 1)
		p.slots[c] = slot
		bi.Dgemv(blas.NoTrans, p.p, p.n, 1, p.r0, p.n, b.col(slot), 1, 0, p.gram, 1)
		p.lu.setColumn(c, p.gram)
	}
	p.head = 0
	p.lu.factor()
	p.built = true
	return true
}

// apply obliquely projects the current vector along the shadow space,
//  v ← v - G_active·M⁻¹·R0ᴴ·v,
// accumulating the coefficients, ordered oldest column first, into u. The
// projection is repeated for rounding control when repeats > 1. The active
// window occupies consecutive slots modulo s+1, so the column combination is
// at most two contiguous block products.
func (p *shadowProjector) apply(b *krylovBasis, repeats int) {
	for i := range p.u {
		p.u[i] = 0
	}
	bi := blas64.Implementation()
	for rep := 0; rep < repeats; rep++ {
		bi.Dgemv(blas.NoTrans, p.p, p.n, 1, p.r0, p.n, b.v, 1, 0, p.mv, 1)
		p.lu.solve(p.mv)
		for i := 0; i < p.p; i++ {
			p.uord[i] = p.mv[(p.head+i)%p.p]
		}
		floats.Add(p.u, p.uord)

		first := p.slots[p.head]
		cnt := min(p.p, b.s+1-first)
		bi.Dgemv(blas.Trans, cnt, p.n, -1, b.g[first*b.n:(first+cnt)*b.n], p.n, p.uord[:cnt], 1, 1, b.v, 1)
		if cnt < p.p {
			rest := p.p - cnt
			bi.Dgemv(blas.Trans, rest, p.n, -1, b.g[:rest*b.n], p.n, p.uord[cnt:], 1, 1, b.v, 1)
		}
	}
}

// insert registers the latest basis column with the Gram matrix, replacing
// the oldest active column.
func (p *shadowProjector) insert(b *krylovBasis) {
	bi := blas64.Implementation()
	bi.Dgemv(blas.NoTrans, p.p, p.n, 1, p.r0, p.n, b.latestCol(), 1, 0, p.gram, 1)
	p.lu.replaceColumn(p.head, p.gram)
	p.slots[p.head] = b.latest
	p.head = (p.head + 1) % p.p
}

// invalidate discards the Gram matrix and the reduction state so that the
// projector rebuilds from the next filled basis buffer. With dropR0 the
// shadow basis itself is discarded as well and will be regenerated.
func (p *shadowProjector) invalidate(dropR0 bool) {
	p.built = false
	p.head = 0
	p.om = 0
	p.mu = 0
	p.j = 0
	for i := range p.u {
		p.u[i] = 0
	}
	if dropR0 {
		p.haveR0 = false
	}
}

// deflate removes from v its orthogonal projection onto the shadow basis.
func (p *shadowProjector) deflate(v []float64) {
	bi := blas64.Implementation()
	bi.Dgemv(blas.NoTrans, p.p, p.n, 1, p.r0, p.n, v, 1, 0, p.mv, 1)
	bi.Dgemv(blas.Trans, p.p, p.n, -1, p.r0, p.n, p.mv, 1, 1, v, 1)
}

// nextIDRSpace recomputes the reduction parameter at a subspace transition.
// ω minimizes the residual of the reduction step; the angle safeguard κ
// keeps ω away from ill-conditioned reduction directions. g is the raw
// operator product of this iteration, v the projected vector it came from.
func (p *shadowProjector) nextIDRSpace(g, v []float64) {
	nu := floats.Dot(g, v)
	tau := floats.Dot(g, g)
	om := nu / tau
	eta := nu / (math.Sqrt(tau) * floats.Norm(v, 2))
	if math.Abs(eta) < p.kappa {
		om *= p.kappa / math.Abs(eta)
	}
	p.om = om
	p.mu = 1
	if math.Abs(om) > dlamchE {
		p.mu = 1 / om
	}
	p.j++
}

// foldColumn folds the μ-scaled reduction into the stored column and the
// banded Hessenberg column r:
//  g ← g - μ·v,  r[band] -= μ·u,  r[s+1] += μ.
// With g the raw operator product and v the projected vector, this keeps the
// decomposition A·Ŵ = G·H̄ exact while the new column lands in the reduced
// subspace.
func (p *shadowProjector) foldColumn(r, g, v []float64, s int) {
	floats.AddScaled(g, -p.mu, v)
	for i := 0; i < p.p; i++ {
		r[s+1-p.p+i] -= p.mu * p.u[i]
	}
	r[s+1] += p.mu
}
