package utils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxAsymmetry returns max |M(i,j) - M(j,i)| over a square matrix.
func MaxAsymmetry(M mat.Matrix) (maxDiff float64) {
	var (
		nr, nc = M.Dims()
	)
	if nr != nc {
		panic(mat.ErrShape)
	}
	if nz, ok := M.(mat.NonZeroDoer); ok {
		nz.DoNonZero(func(i, j int, v float64) {
			maxDiff = math.Max(maxDiff, math.Abs(v-M.At(j, i)))
		})
		return
	}
	for i := 0; i < nr; i++ {
		for j := i + 1; j < nc; j++ {
			maxDiff = math.Max(maxDiff, math.Abs(M.At(i, j)-M.At(j, i)))
		}
	}
	return
}

// MaxAbs returns the largest absolute entry of M.
func MaxAbs(M mat.Matrix) (maxVal float64) {
	var (
		nr, nc = M.Dims()
	)
	if nz, ok := M.(mat.NonZeroDoer); ok {
		nz.DoNonZero(func(_, _ int, v float64) {
			maxVal = math.Max(maxVal, math.Abs(v))
		})
		return
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			maxVal = math.Max(maxVal, math.Abs(M.At(i, j)))
		}
	}
	return
}

func Trace(M mat.Matrix) (tr float64) {
	var (
		nr, nc = M.Dims()
	)
	for i := 0; i < nr && i < nc; i++ {
		tr += M.At(i, i)
	}
	return
}

// AddBlock adds the nr x nc block of A starting at (ia, ja) into M starting at
// (i, j).
func AddBlock(M *mat.Dense, i, j int, A mat.Matrix, ia, ja, nr, nc int) {
	raw := M.RawMatrix()
	for ii := 0; ii < nr; ii++ {
		row := raw.Data[(i+ii)*raw.Stride+j:]
		for jj := 0; jj < nc; jj++ {
			row[jj] += A.At(ia+ii, ja+jj)
		}
	}
}
