package FEM3D

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func randomNaturalPoints(n int, seed int64) (R [][3]float64) {
	rnd := rand.New(rand.NewSource(seed))
	R = make([][3]float64, n)
	for i := range R {
		for k := 0; k < 3; k++ {
			R[i][k] = 2*rnd.Float64() - 1
		}
	}
	return
}

func TestShapeFunctions(t *testing.T) {
	{ // Partition of unity
		R := append(randomNaturalPoints(200, 1), NaturalCorners[:]...)
		R = append(R, [3]float64{0, 0, 0})
		for _, r := range R {
			N := ShapeFunctions(r)
			assert.InDeltaf(t, 1., floats.Sum(N[:]), 1.e-14, "r = %v", r)
		}
	}
	{ // Kronecker delta at the corners
		for a, c := range NaturalCorners {
			N := ShapeFunctions(c)
			for b := range N {
				if a == b {
					assert.Equal(t, 1., N[b])
				} else {
					assert.Equal(t, 0., N[b])
				}
			}
		}
	}
	{ // Centre value
		N := ShapeFunctions([3]float64{})
		for a := range N {
			assert.Equal(t, 0.125, N[a])
		}
	}
	{ // Isoparametric mapping reproduces the corners of a physical element
		X := unitCube()
		for a, c := range NaturalCorners {
			x := InterpolateCoordinates(X, c)
			assert.InDeltaSlice(t, X[a], x[:], 1.e-15)
		}
		x := InterpolateCoordinates(X, [3]float64{})
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, x[:], 1.e-15)
	}
}

func TestShapeFunctionDerivatives(t *testing.T) {
	var (
		h   = 1.e-5
		tol = 1.e-6
	)
	{ // Analytic derivatives match central differences
		for _, r := range randomNaturalPoints(50, 2) {
			dN := ShapeFunctionDerivatives(r)
			for k := 0; k < 3; k++ {
				rp, rm := r, r
				rp[k] += h
				rm[k] -= h
				Np, Nm := ShapeFunctions(rp), ShapeFunctions(rm)
				for a := 0; a < NodesPerElement; a++ {
					fd := (Np[a] - Nm[a]) / (2 * h)
					assert.InDeltaf(t, fd, dN[a][k], tol, "dN%d/dr%d at %v", a, k, r)
				}
			}
		}
	}
	{ // Derivatives of a partition of unity sum to zero
		for _, r := range randomNaturalPoints(20, 3) {
			dN := ShapeFunctionDerivatives(r)
			for k := 0; k < 3; k++ {
				var sum float64
				for a := 0; a < NodesPerElement; a++ {
					sum += dN[a][k]
				}
				assert.InDelta(t, 0., sum, 1.e-15)
			}
		}
	}
	{ // Closed form at the first corner
		dN := ShapeFunctionDerivatives(NaturalCorners[0])
		assert.Equal(t, [3]float64{-0.5, -0.5, -0.5}, dN[0])
		assert.Equal(t, [3]float64{0.5, 0, 0}, dN[1])
		assert.Equal(t, [3]float64{0, 0.5, 0}, dN[3])
		assert.Equal(t, [3]float64{0, 0, 0.5}, dN[4])
		assert.Equal(t, [3]float64{0, 0, 0}, dN[6])
	}
}
