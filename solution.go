// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package idrmethods

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// solution updates the approximate solution along the preconditioned search
// directions and derives the residual norm estimate from the quasi-residual.
type solution struct{}

func (solution) update(x, w []float64, phi float64) {
	floats.AddScaled(x, phi, w)
}

// estimate returns the residual norm estimate |φ̂|·√(j+1), where j counts
// the completed subspace reductions. It overestimates the true residual
// norm only rarely in practice.
func (solution) estimate(phiHat float64, j int) float64 {
	return math.Abs(phiHat) * math.Sqrt(float64(j+1))
}
