package reduce

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects vectors onto their top principal components. It is fully
// deterministic and serves both as a reducer in its own right and as the
// degenerate-case fallback for the neighbor embedding.
type PCA struct {
	// Components is the target dimension. Zero means 2.
	Components int
}

func (p *PCA) components() int {
	if p.Components <= 0 {
		return 2
	}
	return p.Components
}

// Reduce centers the data and projects it onto the first Components
// right-singular vectors. When the input dimension does not exceed the
// target, or the factorization fails, the input coordinates are passed
// through (truncated or zero-padded) as an identity-style projection.
func (p *PCA) Reduce(vectors [][]float64) ([][]float64, error) {
	dim, err := checkVectors(vectors)
	if err != nil {
		return nil, err
	}

	comps := p.components()
	n := len(vectors)

	// Thin SVD yields min(n, dim) singular vectors; without at least
	// comps of them the projection degenerates to a passthrough.
	if dim <= comps || n < comps {
		return passthrough(vectors, comps), nil
	}

	data := make([]float64, n*dim)
	for i, v := range vectors {
		copy(data[i*dim:(i+1)*dim], v)
	}
	x := mat.NewDense(n, dim, data)

	for j := 0; j < dim; j++ {
		col := mat.Col(nil, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return passthrough(vectors, comps), nil
	}

	var vt mat.Dense
	svd.VTo(&vt)

	pc := mat.NewDense(dim, comps, nil)
	for j := 0; j < dim; j++ {
		for c := 0; c < comps; c++ {
			pc.Set(j, c, vt.At(j, c))
		}
	}

	var projected mat.Dense
	projected.Mul(x, pc)

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, comps)
		for c := 0; c < comps; c++ {
			row[c] = projected.At(i, c)
		}
		out[i] = row
	}
	return out, nil
}

// passthrough copies the leading coordinates, padding with zeros when the
// input is narrower than the target.
func passthrough(vectors [][]float64, comps int) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, comps)
		copy(row, v)
		out[i] = row
	}
	return out
}
