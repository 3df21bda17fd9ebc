package FEM3D

import (
	"gonum.org/v1/gonum/mat"
)

func unitCube() [][]float64 {
	X := make([][]float64, NodesPerElement)
	for a, c := range NaturalCorners {
		X[a] = []float64{(c[0] + 1) / 2, (c[1] + 1) / 2, (c[2] + 1) / 2}
	}
	return X
}

func steel() Material {
	return Material{YoungsModulus: 210000, PoissonRatio: 0.3}
}

// boxMesh builds nx x ny x nz unit hexahedra, nodes numbered x fastest.
func boxMesh(nx, ny, nz int) (nodes [][]float64, elements [][]int) {
	id := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				nodes = append(nodes, []float64{float64(i), float64(j), float64(k)})
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				elements = append(elements, []int{
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
				})
			}
		}
	}
	return
}

// rigidModes returns the 3 translations and 3 infinitesimal rotations of the
// given points as columns of a (3N)x6 matrix.
func rigidModes(X [][]float64) (U *mat.Dense) {
	U = mat.NewDense(DOFPerNode*len(X), 6, nil)
	for a, x := range X {
		for c := 0; c < 3; c++ {
			U.Set(DOF(a, c), c, 1)
		}
		// ω × x for ω = ex, ey, ez
		U.Set(DOF(a, 1), 3, -x[2])
		U.Set(DOF(a, 2), 3, x[1])
		U.Set(DOF(a, 0), 4, x[2])
		U.Set(DOF(a, 2), 4, -x[0])
		U.Set(DOF(a, 0), 5, -x[1])
		U.Set(DOF(a, 1), 5, x[0])
	}
	return
}

func symmetricEigenvalues(K mat.Matrix) []float64 {
	var (
		n, _ = K.Dims()
		S    = mat.NewSymDense(n, nil)
		es   mat.EigenSym
	)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			S.SetSym(i, j, 0.5*(K.At(i, j)+K.At(j, i)))
		}
	}
	if !es.Factorize(S, false) {
		panic("eigen decomposition failed")
	}
	return es.Values(nil)
}
