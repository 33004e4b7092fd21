// Copyright ©2026 The idrmethods Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package triplet provides a minimal sparse matrix in coordinate format for
// building test problems.
package triplet

type triplet struct {
	i, j int
	v    float64
}

// Matrix is a sparse matrix stored as a list of (row, column, value)
// triplets. Duplicate entries are summed by MulVec.
type Matrix struct {
	r, c int
	data []triplet
}

func New(r, c int) *Matrix {
	return &Matrix{
		r: r,
		c: c,
	}
}

func (m *Matrix) Dims() (r, c int) {
	return m.r, m.c
}

func (m *Matrix) Append(i, j int, v float64) {
	if i < 0 || m.r <= i {
		panic("row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("column index out of range")
	}
	m.data = append(m.data, triplet{i, j, v})
}

func (m *Matrix) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic("dimension mismatch")
	}
	if m.r != len(dst) {
		panic("dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, aij := range m.data {
		dst[aij.i] += aij.v * x[aij.j]
	}
}

// ConvectionDiffusion2D assembles the five-point finite difference
// discretization of the convection-diffusion operator
//  -Δu + peclet·(u_x + u_y)
// on the unit square with an nx×ny interior grid and homogeneous Dirichlet
// boundary conditions. The convection term makes the matrix non-symmetric
// for nonzero peclet.
func ConvectionDiffusion2D(nx, ny int, peclet float64) *Matrix {
	n := nx * ny
	m := New(n, n)
	hx := 1 / float64(nx+1)
	hy := 1 / float64(ny+1)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			i := iy*nx + ix
			m.Append(i, i, 2/(hx*hx)+2/(hy*hy))
			if ix > 0 {
				m.Append(i, i-1, -1/(hx*hx)-peclet/(2*hx))
			}
			if ix < nx-1 {
				m.Append(i, i+1, -1/(hx*hx)+peclet/(2*hx))
			}
			if iy > 0 {
				m.Append(i, i-nx, -1/(hy*hy)-peclet/(2*hy))
			}
			if iy < ny-1 {
				m.Append(i, i+nx, -1/(hy*hy)+peclet/(2*hy))
			}
		}
	}
	return m
}
