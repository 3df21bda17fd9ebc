package FEM3D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ElementStiffness integrates the 24x24 element stiffness
//
//	Ke = Σq wq Bqᵀ C Bq det(Jq)
//
// over the quadrature rule. X holds the 8 corner coordinates in connectivity
// order. EightPoint is the consistent rule for this element; OnePoint
// under-integrates and leaves spurious zero energy modes.
func ElementStiffness(X [][]float64, C mat.Symmetric, rule QuadratureRule) (Ke *mat.Dense, err error) {
	var (
		R  [][3]float64
		W  []float64
		CB = mat.NewDense(NumVoigt, DOFPerElement, nil)
		BB = mat.NewDense(DOFPerElement, DOFPerElement, nil)
	)
	if err = checkElementCoordinates(X); err != nil {
		return
	}
	if n := C.SymmetricDim(); n != NumVoigt {
		err = fmt.Errorf("constitutive operator is %dx%d, expected %dx%d", n, n, NumVoigt, NumVoigt)
		return
	}
	if R, W, err = rule.Points(); err != nil {
		return
	}
	Ke = mat.NewDense(DOFPerElement, DOFPerElement, nil)
	for q, r := range R {
		var (
			B    *mat.Dense
			detJ float64
		)
		if B, detJ, err = StrainDisplacement(X, r); err != nil {
			return nil, err
		}
		CB.Mul(C, B)
		BB.Mul(B.T(), CB)
		BB.Scale(W[q]*detJ, BB)
		Ke.Add(Ke, BB)
	}
	return
}

// ElementVolume integrates det(J) over the reference cube.
func ElementVolume(X [][]float64, rule QuadratureRule) (vol float64, err error) {
	var (
		R [][3]float64
		W []float64
	)
	if err = checkElementCoordinates(X); err != nil {
		return
	}
	if R, W, err = rule.Points(); err != nil {
		return
	}
	for q, r := range R {
		var detJ float64
		if _, detJ, err = PhysicalDerivatives(X, ShapeFunctionDerivatives(r)); err != nil {
			return 0, atPoint(err, r)
		}
		vol += W[q] * detJ
	}
	return
}

func checkElementCoordinates(X [][]float64) error {
	if len(X) != NodesPerElement {
		return fmt.Errorf("%w: %d element nodes, expected %d",
			ErrMalformedConnectivity, len(X), NodesPerElement)
	}
	for a, x := range X {
		if len(x) != NumDim {
			return fmt.Errorf("%w: node %d has %d coordinates, expected %d",
				ErrMalformedConnectivity, a, len(x), NumDim)
		}
	}
	return nil
}
