package wavelet

import "gonum.org/v1/gonum/mat"

// FromDense copies a gonum matrix into a row-major grid.
func FromDense(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := makeGrid(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// ToDense copies a rectangular grid into a new gonum Dense matrix.
func ToDense(g [][]float64) *mat.Dense {
	rows, cols, err := dims(g)
	if err != nil {
		return nil
	}
	data := make([]float64, rows*cols)
	for i, row := range g {
		copy(data[i*cols:], row)
	}
	return mat.NewDense(rows, cols, data)
}
