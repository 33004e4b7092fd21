// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// QMRIDR implements the flexible QMR variant of the induced dimension
// reduction method IDR(s) for solving the system of linear equations
//  A x = b,
// where A is a non-symmetric matrix.
//
// The method builds a generalized Hessenberg decomposition
//  A Ŵ_k = G_{k+1} H̄_k,
// in which H̄_k is banded with bandwidth S+2, and quasi-minimizes the
// residual over the preconditioned search directions Ŵ_k by an incremental
// QR factorization of H̄_k. Every S iterations the residual space is reduced
// by an oblique projection along a fixed shadow space, which is what bounds
// the recurrence length. The preconditioner may change between iterations.
//
// QMRIDR needs MatVec and PSolve matrix operations.
//
// A residual-smoothing solution update could be layered on top of the
// quasi-minimal one; this implementation provides only the base recursion.
type QMRIDR struct {
	// S is the dimension of the IDR subspace.
	// If it is zero, it will be set to 8.
	S int

	// ProjDim is the dimension of the shadow space used for the oblique
	// projections. It must not be greater than S.
	// If it is zero, it will be set to S.
	ProjDim int

	// R0 is an optional shadow basis of ProjDim orthonormal vectors,
	// stored contiguously one after another. Its length must be equal to
	// ProjDim times the dimension of the system. If it is nil, a random
	// orthonormalized basis is generated when the projector is first
	// needed.
	R0 []float64

	// Orth selects the orthogonalization strategy used while the basis
	// is being built.
	// If it is nil, RepeatedClassicalGS{} will be used.
	Orth Orthogonalizer

	// SkewRepeat is the number of oblique projection passes per
	// iteration. If it is zero, it will be set to 1.
	SkewRepeat int

	// Kappa is the angle safeguard for the computation of the subspace
	// reduction parameter. If it is zero, it will be set to 0.7.
	Kappa float64

	// OrthSearch enables a projection of the search vector against the
	// shadow basis during the initial iterations.
	OrthSearch bool

	// Rand is the source used for generating the shadow basis. If it is
	// nil, the global source will be used.
	Rand *rand.Rand

	resume int
	iter   int // Completed iterations.

	basis krylovBasis
	proj  shadowProjector
	hess  bandedHessenberg
	sol   solution
	rcol  []float64 // Current Hessenberg column, length S+3.
}

// Init implements the Method interface.
func (m *QMRIDR) Init(dim int) {
	if dim <= 0 {
		panic("idrmethods: dimension not positive")
	}
	if m.S < 0 {
		panic("idrmethods: invalid QMRIDR.S")
	}
	if m.S == 0 {
		m.S = 8
	}
	if m.ProjDim == 0 {
		m.ProjDim = m.S
	}
	if m.ProjDim < 0 || m.S < m.ProjDim {
		panic("idrmethods: invalid QMRIDR.ProjDim")
	}
	if m.R0 != nil && len(m.R0) != dim*m.ProjDim {
		panic("idrmethods: mismatched shadow basis shape")
	}
	if m.SkewRepeat == 0 {
		m.SkewRepeat = 1
	}
	if m.Kappa == 0 {
		m.Kappa = 0.7
	}
	if m.Orth == nil {
		m.Orth = RepeatedClassicalGS{}
	}

	m.basis.init(dim, m.S)
	m.proj.init(dim, m.S, m.ProjDim, m.Kappa, m.R0)
	if m.OrthSearch && !m.proj.haveR0 {
		m.proj.generateR0(m.Rand)
	}
	m.hess.init(m.S)
	m.rcol = reuse(m.rcol, m.S+3)

	m.iter = 0
	m.resume = 1
}

// Iterate implements the Method interface.
func (m *QMRIDR) Iterate(ctx *Context) (Operation, error) {
	s := m.S
	switch m.resume {
	case 1:
		// The current residual provides the first basis column and
		// the initial quasi-residual.
		rho0 := floats.Norm(ctx.Residual, 2)
		m.hess.reset(rho0)
		m.basis.start(ctx.Residual, rho0)
		m.iter = 0
		fallthrough
	case 2:
		// Obliquely project the current vector along the shadow
		// space, then register the latest basis column with the Gram
		// matrix. Registering first would make the projection
		// annihilate the vector, which is itself the latest column.
		if m.proj.activate(&m.basis, m.Rand) {
			m.proj.apply(&m.basis, m.SkewRepeat)
			m.proj.insert(&m.basis)
		} else if m.OrthSearch {
			m.proj.deflate(m.basis.v)
		}
		ctx.Src = m.basis.v
		ctx.Dst = m.basis.vhat
		m.resume = 3
		// Solve M vhat = v.
		return PSolve, nil
	case 3:
		ctx.Src = m.basis.vhat
		ctx.Dst = m.basis.expand()
		m.resume = 4
		// Compute A vhat into the next circular basis slot.
		return MatVec, nil
	case 4:
		k := m.iter + 1
		g := m.basis.latestCol()
		for i := range m.rcol {
			m.rcol[i] = 0
		}
		var normG float64
		if k <= s {
			// Initial phase: orthogonalize against the k
			// existing basis columns. They occupy slots 0..k-1.
			h := m.rcol[s+2-k : s+2]
			normG = m.Orth.orthogonalize(g, m.basis.cols(k), h, m.basis.work)
		} else {
			if (k-s-1)%s == 0 {
				// IDR subspace transition: a new reduction
				// parameter for the next cycle.
				m.proj.nextIDRSpace(g, m.basis.v)
			}
			// The window is orthogonal by construction of the
			// subspace reduction; only the μ-scaled fold and a
			// normalization remain.
			m.proj.foldColumn(m.rcol, g, m.basis.v, s)
			normG = floats.Norm(g, 2)
		}
		m.rcol[s+2] = normG
		// Breakdown (normG at or below machine epsilon) is not
		// guarded here; it surfaces as non-convergence.
		m.basis.normalize(normG)

		m.hess.addColumn(m.rcol)
		m.basis.correction(m.rcol, k)
		m.sol.update(ctx.X, m.basis.wLatest(), m.hess.phi)

		ctx.ResidualNorm = m.sol.estimate(m.hess.phiHat, m.proj.j)
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		m.resume = 5
		return CheckResidualNorm, nil
	case 5:
		m.iter++
		if ctx.Converged {
			// The quasi-residual bound can drift away from the true
			// residual in finite precision, so the estimate alone
			// must not stop the iteration.
			ctx.Converged = false
			m.resume = 6
			return ComputeResidual, nil
		}
		m.resume = 2
		return EndIteration, nil
	case 6:
		m.resume = 7
		return CheckResidual, nil
	case 7:
		if ctx.Converged {
			m.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		// The estimate decoupled from the computed residual. Restart
		// the decomposition from that residual with a fresh shadow
		// space so that a rebuilt basis does not repeat the breakdown.
		m.proj.invalidate(m.R0 == nil)
		if m.OrthSearch && !m.proj.haveR0 {
			m.proj.generateR0(m.Rand)
		}
		m.resume = 1
		return EndIteration, nil

	default:
		panic("idrmethods: QMRIDR.Init not called")
	}
}
