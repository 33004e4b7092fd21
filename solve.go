// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// MatrixOps describes the matrix of the linear system in terms of the A*x
// operation.
type MatrixOps struct {
	// Compute A*x and store the result
	// into dst.
	// It must be non-nil.
	MatVec func(dst, x []float64)
}

// Settings holds various settings for solving a linear system.
type Settings struct {
	// X0 is an initial guess.
	// If it is nil, the zero vector will
	// be used.
	// If it is not nil, the length of X0
	// must be equal to the dimension of
	// the system.
	X0 []float64

	// Tolerance specifies error
	// tolerance for the final
	// approximate solution produced by
	// the iterative method. The
	// iteration is stopped when
	//  ρ_i < Tolerance * ρ_0,
	// where ρ_i is the residual-norm
	// estimate after i iterations. The
	// inequality is strict.
	// Tolerance must be smaller than one
	// and greater than the machine
	// epsilon. If it is zero, the square
	// root of the machine epsilon will
	// be used.
	Tolerance float64

	// MaxIterations is the limit on the
	// number of iterations.
	// If it is zero, it will be set to
	// the dimension of the system.
	MaxIterations int

	// PSolve describes the
	// preconditioner solve that stores
	// into dst the solution of the
	// system
	//  M z = rhs.
	// If it is nil, no preconditioning
	// will be used (M is the identity,
	// and dst will be an exact copy of
	// rhs).
	// PSolve is not required to
	// represent the same operator on
	// every call.
	PSolve func(dst, rhs []float64) error
}

func defaultSettings(s *Settings, dim int) {
	if s.Tolerance == 0 {
		s.Tolerance = math.Sqrt(2 * dlamchE)
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = dim
	}
}

// Result holds the result of an iterative solve.
type Result struct {
	// X is the approximate solution.
	X []float64
	// ResidualNorms holds the
	// residual-norm estimate recorded at
	// each iteration, starting with the
	// norm of the initial residual. It
	// can be used for inspecting the
	// convergence curve.
	ResidualNorms []float64
	// Stats holds the statistics of the
	// solve.
	Stats Stats
}

// Stats holds statistics about an iterative solve.
type Stats struct {
	// Iterations is the number of
	// iterations done by Method.
	Iterations int
	// MatVec is the number of MatVec
	// operations commanded by Method.
	MatVec int
	// PSolve is the number of PSolve
	// operations commanded by Method.
	PSolve int
	// ResidualNorm is the final estimate
	// of the residual norm.
	ResidualNorm float64
	// StartTime is an approximate time
	// when the solve was started.
	StartTime time.Time
	// Runtime is an approximate duration
	// of the solve.
	Runtime time.Duration
}

// LinearSolve solves the system of n linear equations
//  A*x = b,
// where the n×n matrix A is represented by the matrix-vector operation in a.
// The dimension of the problem n is determined by the length of b.
//
// method is an iterative method used for finding an approximate solution of
// the linear system. It must not be nil.
//
// settings provide means for adjusting the iterative process. Zero values of
// the fields mean default values.
func LinearSolve(a MatrixOps, b []float64, method Method, settings Settings) (Result, error) {
	stats := Stats{StartTime: time.Now()}

	dim := len(b)
	if a.MatVec == nil {
		panic("idrmethods: nil matrix-vector multiplication")
	}
	if settings.X0 != nil && len(settings.X0) != dim {
		panic("idrmethods: mismatched length of initial guess")
	}

	if dim == 0 {
		return Result{Stats: stats}, nil
	}

	defaultSettings(&settings, dim)
	if settings.Tolerance < dlamchE || 1 <= settings.Tolerance {
		panic("idrmethods: invalid tolerance")
	}

	ctx := &Context{
		X:        make([]float64, dim),
		Residual: make([]float64, dim),
	}
	if settings.X0 != nil {
		copy(ctx.X, settings.X0)
		a.MatVec(ctx.Residual, ctx.X)
		stats.MatVec++
		floats.AddScaledTo(ctx.Residual, b, -1, ctx.Residual) // r = b - Ax
	} else {
		copy(ctx.Residual, b) // r = b
	}

	ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
	rho := make([]float64, 1, settings.MaxIterations+1)
	rho[0] = ctx.ResidualNorm
	var err error
	if ctx.ResidualNorm > 0 {
		rho, err = iterate(a, b, ctx, settings, method, &stats, rho)
	}

	stats.Runtime = time.Since(stats.StartTime)
	return Result{
		X:             ctx.X,
		ResidualNorms: rho,
		Stats:         stats,
	}, err
}

func iterate(a MatrixOps, b []float64, ctx *Context, settings Settings, method Method, stats *Stats, rho []float64) ([]float64, error) {
	rnorm0 := ctx.ResidualNorm

	method.Init(len(ctx.X))

	for {
		op, err := method.Iterate(ctx)
		if err != nil {
			return rho, err
		}

		switch op {
		case NoOperation:

		case MatVec:
			a.MatVec(ctx.Dst, ctx.Src)
			stats.MatVec++

		case PSolve:
			if settings.PSolve == nil {
				copy(ctx.Dst, ctx.Src)
				continue
			}
			if err := settings.PSolve(ctx.Dst, ctx.Src); err != nil {
				return rho, err
			}
			stats.PSolve++

		case ComputeResidual:
			a.MatVec(ctx.Residual, ctx.X)
			stats.MatVec++
			floats.AddScaledTo(ctx.Residual, b, -1, ctx.Residual) // r = b - Ax

		case CheckResidual:
			ctx.Converged = floats.Norm(ctx.Residual, 2) < settings.Tolerance*rnorm0

		case CheckResidualNorm:
			// The inequality is strict: an estimate that lands
			// exactly on the threshold has not converged.
			ctx.Converged = ctx.ResidualNorm < settings.Tolerance*rnorm0

		case EndIteration:
			stats.Iterations++
			stats.ResidualNorm = ctx.ResidualNorm
			rho = append(rho, ctx.ResidualNorm)
			if ctx.Converged {
				return rho, nil
			}
			if stats.Iterations == settings.MaxIterations {
				return rho, errors.New("idrmethods: iteration limit reached")
			}

		default:
			panic("idrmethods: invalid operation")
		}
	}
}

func reuse(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}

func reuseInt(v []int, n int) []int {
	if cap(v) < n {
		return make([]int, n)
	}
	return v[:n]
}

const dlamchE = 1.0 / (1 << 53)
