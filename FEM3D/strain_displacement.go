package FEM3D

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Jacobian returns J = Xᵀ·dN, J[i][j] = ∂x_i/∂r_j, for element corner
// coordinates X[8][3].
func Jacobian(X [][]float64, dN [NodesPerElement][3]float64) (J *mat.Dense) {
	J = mat.NewDense(NumDim, NumDim, nil)
	for i := 0; i < NumDim; i++ {
		for j := 0; j < NumDim; j++ {
			var sum float64
			for a := 0; a < NodesPerElement; a++ {
				sum += X[a][i] * dN[a][j]
			}
			J.Set(i, j, sum)
		}
	}
	return
}

// PhysicalDerivatives maps natural derivatives to physical ones,
// G = dN·J⁻¹ (G[a][k] = ∂N_a/∂x_k). A non-positive det(J) means the element is
// collapsed or inverted and is returned as a *DegenerateElementError.
func PhysicalDerivatives(X [][]float64, dN [NodesPerElement][3]float64) (G [NodesPerElement][3]float64,
	detJ float64, err error) {
	var (
		J    = Jacobian(X, dN)
		Jinv mat.Dense
	)
	detJ = mat.Det(J)
	if !(detJ > 0) {
		err = &DegenerateElementError{Element: -1, DetJ: detJ}
		return
	}
	if err = Jinv.Inverse(J); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return
		}
		if math.IsInf(float64(cond), 1) {
			err = &DegenerateElementError{Element: -1, DetJ: detJ}
			return
		}
		// Badly conditioned but invertible, J⁻¹ is still usable
		err = nil
	}
	for a := 0; a < NodesPerElement; a++ {
		for k := 0; k < NumDim; k++ {
			var sum float64
			for j := 0; j < NumDim; j++ {
				sum += dN[a][j] * Jinv.At(j, k)
			}
			G[a][k] = sum
		}
	}
	return
}

// StrainDisplacement builds the 6x24 operator B mapping the element nodal
// displacements (u0,v0,w0,u1,...) to engineering strain in Voigt order, at
// natural coordinates r. It also returns det(J) at r.
func StrainDisplacement(X [][]float64, r [3]float64) (B *mat.Dense, detJ float64, err error) {
	var (
		G [NodesPerElement][3]float64
	)
	if G, detJ, err = PhysicalDerivatives(X, ShapeFunctionDerivatives(r)); err != nil {
		return nil, detJ, atPoint(err, r)
	}
	B = mat.NewDense(NumVoigt, DOFPerElement, nil)
	for a := 0; a < NodesPerElement; a++ {
		col := DOFPerNode * a
		for row, ij := range VoigtComponents {
			i, j := ij[0], ij[1]
			if i == j {
				B.Set(row, col+i, G[a][i])
				continue
			}
			B.Set(row, col+i, G[a][j])
			B.Set(row, col+j, G[a][i])
		}
	}
	return
}

// ElementNodes gathers the corner coordinates of one element.
func ElementNodes(nodes [][]float64, element []int) (X [][]float64, err error) {
	if len(element) != NodesPerElement {
		err = fmt.Errorf("%w: element has %d nodes, expected %d",
			ErrMalformedConnectivity, len(element), NodesPerElement)
		return
	}
	X = make([][]float64, NodesPerElement)
	for a, n := range element {
		if n < 0 || n >= len(nodes) {
			err = fmt.Errorf("%w: node index %d out of range [0,%d)",
				ErrMalformedConnectivity, n, len(nodes))
			return nil, err
		}
		X[a] = nodes[n]
	}
	return
}

// atPoint records the sample point on a degenerate element error.
func atPoint(err error, r [3]float64) error {
	var de *DegenerateElementError
	if errors.As(err, &de) {
		de.R = r
	}
	return err
}

// atElement records the element index on a degenerate element error and names
// the element in any other error.
func atElement(err error, k int) error {
	var de *DegenerateElementError
	if errors.As(err, &de) {
		de.Element = k
		return err
	}
	return fmt.Errorf("element %d: %w", k, err)
}
