// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package idrmethods provides induced dimension reduction (IDR) methods for
// solving large systems of linear equations
//  A x = b,
// where A is a non-symmetric, possibly indefinite matrix available only
// through matrix-vector products.
//
// IDR(s) forces the residuals into a sequence of shrinking subspaces. The
// QMRIDR variant implemented here combines the IDR recurrence with a
// quasi-minimal-residual update, so the iterate is advanced from short
// recurrences and a residual-norm estimate is available at every iteration
// without forming the residual itself. The preconditioner is flexible: it
// may change from one application to the next.
package idrmethods

// Operation specifies the type of operation commanded by Method.Iterate.
type Operation uint64

const (
	NoOperation Operation = 0

	// Multiply A*x where x is stored
	// in Context.Src and store the
	// result into Context.Dst.
	MatVec Operation = 1 << (iota - 1)

	// Do the preconditioner solve
	//  M z = r,
	// where r is stored in Context.Src,
	// and store the solution z in
	// Context.Dst. M is not required to
	// be the same operator on every
	// solve.
	PSolve

	// Compute b - A*x where x is stored
	// in Context.X and store the result
	// into Context.Residual.
	ComputeResidual

	// Check convergence using the
	// residual vector in
	// Context.Residual. If convergence
	// is detected, Context.Converged
	// must be set to true before calling
	// Method.Iterate again.
	CheckResidual

	// Check convergence using the
	// residual-norm estimate in
	// Context.ResidualNorm. If
	// convergence is detected,
	// Context.Converged must be set to
	// true before calling Method.Iterate
	// again.
	CheckResidualNorm

	// EndIteration indicates that Method
	// has finished what it considers to
	// be one iteration. It can be used
	// to update an iteration counter. If
	// Context.Converged is true, the
	// iterative process must be
	// terminated, and Method.Init must
	// be called before calling
	// Method.Iterate again.
	EndIteration
)

// Method is an iterative method that produces a sequence of vectors
// converging to the vector x satisfying a system of linear equations
//  A x = b,
// where A is a non-singular dim×dim matrix, and x and b are vectors of
// dimension dim.
//
// Method uses a reverse-communication interface between the iterative
// algorithm and the caller. Method acts as a client that commands the caller
// to perform needed operations via Operations returned from Iterate. This
// keeps Method independent of any particular representation of the matrix A
// and of the preconditioner, which is what permits flexible (iteration
// dependent) preconditioning.
type Method interface {
	// Init initializes the method for solving a dim×dim linear system.
	Init(dim int)

	// Iterate retrieves data from Context, updates it, and returns the
	// next operation. The caller must perform the Operation using data
	// in Context, and depending on the state call Iterate again.
	Iterate(*Context) (Operation, error)
}

// Context mediates the communication between a Method and the caller. It must
// not be modified or accessed apart from the commanded Operations.
type Context struct {
	// X is the current approximate solution. On the first call to
	// Method.Iterate, X must contain the initial estimate. Method must
	// update X with the current estimate when it commands EndIteration.
	X []float64
	// Residual is the current residual b-A*x. It is valid on the first
	// call to Method.Iterate and whenever the caller has executed a
	// ComputeResidual operation; QMR-type methods otherwise estimate
	// the residual norm without forming the residual.
	Residual []float64
	// ResidualNorm is an estimate of the norm of the current residual.
	// Method must update it when it commands CheckResidualNorm. It does
	// not have to be equal to the actual norm of the residual.
	ResidualNorm float64
	// Converged indicates to Method that the residual satisfies the
	// stopping criterion as a result of CheckResidual or
	// CheckResidualNorm operation.
	// If a Method commands EndIteration with Converged true, the caller
	// must not call Method.Iterate again without calling Method.Init
	// first.
	Converged bool

	// Src and Dst are the source and destination vectors for various
	// Operations.
	Src, Dst []float64
}
