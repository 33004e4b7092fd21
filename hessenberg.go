// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import "math"

// bandedHessenberg maintains the QR factorization of the banded upper
// Hessenberg matrix of the decomposition, one column at a time, by Givens
// rotations. Only the rotations that can still touch a future column are
// retained, so the history is a circular buffer of s+2 rotations.
//
// The right-hand side β·e₁ is carried through the rotations as the pair
// (φ, φ̂): φ is the leading entry consumed by the solution update and |φ̂|
// is the quasi-residual norm.
type bandedHessenberg struct {
	s int
	k int // Columns absorbed since reset.

	cosine, sine []float64

	phi, phiHat float64
}

func (h *bandedHessenberg) init(s int) {
	h.s = s
	h.cosine = reuse(h.cosine, s+2)
	h.sine = reuse(h.sine, s+2)
}

func (h *bandedHessenberg) reset(rho0 float64) {
	h.k = 0
	for i := range h.cosine {
		h.cosine[i] = 0
		h.sine[i] = 0
	}
	h.phi = 0
	h.phiHat = rho0
}

// addColumn absorbs column k+1, supplied as the band r of length s+3 with
// r[0] the entry in row k-s-1 and r[s+2] the subdiagonal. It applies the
// retained rotations, generates the rotation annihilating the subdiagonal
// and advances (φ, φ̂).
func (h *bandedHessenberg) addColumn(r []float64) {
	h.k++
	lo := max(1, h.k-h.s-1)
	for l := lo; l < h.k; l++ {
		i := h.s + 1 + l - h.k
		c := h.cosine[l%(h.s+2)]
		sn := h.sine[l%(h.s+2)]
		r[i], r[i+1] = c*r[i]+sn*r[i+1], -sn*r[i]+c*r[i+1]
	}
	c, sn, rr := givens(r[h.s+1], r[h.s+2])
	r[h.s+1] = rr
	r[h.s+2] = 0
	h.cosine[h.k%(h.s+2)] = c
	h.sine[h.k%(h.s+2)] = sn

	h.phi = c * h.phiHat
	h.phiHat = -sn * h.phiHat
}

// givens computes the rotation with
//  ⎡ c  s⎤ ⎡a⎤   ⎡r⎤
//  ⎣-s  c⎦ ⎣b⎦ = ⎣0⎦
// using scaling that avoids overflow in the hypotenuse.
func givens(a, b float64) (c, s, r float64) {
	if math.Abs(a) < dlamchE {
		return 0, 1, b
	}
	t := math.Abs(a) + math.Abs(b)
	rho := t * math.Sqrt((a/t)*(a/t)+(b/t)*(b/t))
	alpha := a / math.Abs(a)
	s = alpha * b / rho
	c = math.Abs(a) / rho
	r = alpha * rho
	return c, s, r
}
