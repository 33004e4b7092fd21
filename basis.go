// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import "gonum.org/v1/gonum/floats"

// krylovBasis owns the circular buffers of the generalized Hessenberg
// decomposition: s+1 basis columns G and the matching s+1 correction columns
// W. The buffers are allocated once and the columns are overwritten in place
// as the window slides, with slot indices wrapping modulo s+1.
type krylovBasis struct {
	n, s   int
	latest int // Slot of the most recently completed basis column.

	g, w []float64 // (s+1)×n, one column per contiguous stretch of n.
	v    []float64 // Current vector, possibly obliquely projected.
	vhat []float64 // Preconditioned pre-image of the latest column.
	work []float64 // Scratch for the orthogonalization strategies.
}

func (b *krylovBasis) init(n, s int) {
	b.n = n
	b.s = s
	b.g = reuse(b.g, (s+1)*n)
	b.w = reuse(b.w, (s+1)*n)
	b.v = reuse(b.v, n)
	b.vhat = reuse(b.vhat, n)
	b.work = reuse(b.work, s+1)
	for i := range b.g {
		b.g[i] = 0
	}
	for i := range b.w {
		b.w[i] = 0
	}
	b.latest = 0
}

// start seeds the basis with the normalized initial residual.
func (b *krylovBasis) start(r0 []float64, rho0 float64) {
	floats.ScaleTo(b.v, 1/rho0, r0)
	copy(b.col(0), b.v)
	b.latest = 0
}

func (b *krylovBasis) col(i int) []float64 { return b.g[i*b.n : (i+1)*b.n] }

func (b *krylovBasis) wcol(i int) []float64 { return b.w[i*b.n : (i+1)*b.n] }

func (b *krylovBasis) latestCol() []float64 { return b.col(b.latest) }

func (b *krylovBasis) wLatest() []float64 { return b.wcol(b.latest) }

// expand advances the circular pointer and hands out the slot that receives
// the next operator product. The evicted column is dead by this point: the
// projector reads it before expand is called.
func (b *krylovBasis) expand() []float64 {
	b.latest = (b.latest + 1) % (b.s + 1)
	return b.col(b.latest)
}

// normalize scales the latest column to unit norm and promotes it to the
// current vector.
func (b *krylovBasis) normalize(normG float64) {
	g := b.col(b.latest)
	floats.Scale(1/normG, g)
	copy(b.v, g)
}

// cols returns the first k basis columns for orthogonalization during the
// initial iterations; they occupy slots 0..k-1 and are contiguous.
func (b *krylovBasis) cols(k int) basisCols {
	return basisCols{data: b.g[:k*b.n], n: b.n}
}

// correction forms the new correction column from the rotated Hessenberg
// column rr of iteration k,
//  W[:,latest] = (vhat - Σ rr[i]·W_i) / rr[s+1],
// a short back-substitution over the s+1 previous correction columns. rr[i]
// belongs to Hessenberg row k-s-1+i, whose column lives in slot (k-s-1+i)
// mod (s+1); the slot being overwritten is read before the write.
func (b *krylovBasis) correction(rr []float64, k int) {
	for i := 0; i <= b.s; i++ {
		j := k - b.s - 1 + i
		if j < 1 || rr[i] == 0 {
			continue
		}
		floats.AddScaled(b.vhat, -rr[i], b.wcol(j%(b.s+1)))
	}
	floats.Scale(1/rr[b.s+1], b.vhat)
	copy(b.wcol(b.latest), b.vhat)
}
