package FEM3D

import (
	"fmt"

	"gonum.org/v1/gonum/integrate/quad"
)

// QuadratureRule enumerates the Gauss-Legendre rules available on the
// reference cube [-1,1]³.
type QuadratureRule uint8

const (
	OnePoint   QuadratureRule = iota // reduced integration, exact for constants
	EightPoint                       // 2x2x2 tensor product rule
)

func (q QuadratureRule) String() string {
	switch q {
	case OnePoint:
		return "OnePoint"
	case EightPoint:
		return "EightPoint"
	}
	return fmt.Sprintf("QuadratureRule(%d)", uint8(q))
}

// NewQuadratureRule selects a rule from its point count. Only 1 and 8 are
// available, there is no fallback.
func NewQuadratureRule(nPoints int) (q QuadratureRule, err error) {
	switch nPoints {
	case 1:
		q = OnePoint
	case 8:
		q = EightPoint
	default:
		err = fmt.Errorf("%w: %d points requested, only 1 or 8 are available",
			ErrUnsupportedQuadrature, nPoints)
	}
	return
}

// NumPoints returns the number of sample points of the rule.
func (q QuadratureRule) NumPoints() int {
	switch q {
	case OnePoint:
		return 1
	case EightPoint:
		return 8
	}
	return 0
}

// Points returns the natural coordinates and weights of the rule.
func (q QuadratureRule) Points() (R [][3]float64, W []float64, err error) {
	switch q {
	case OnePoint:
		R = [][3]float64{{0, 0, 0}}
		W = []float64{8}
	case EightPoint:
		var (
			x = make([]float64, 2)
			w = make([]float64, 2)
		)
		quad.Legendre{}.FixedLocations(x, w, -1, 1)
		if x[0] > x[1] {
			x[0], x[1] = x[1], x[0]
			w[0], w[1] = w[1], w[0]
		}
		// Same ordering as the element corners: low/high per axis.
		idx := [NodesPerElement][3]int{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		}
		R = make([][3]float64, NodesPerElement)
		W = make([]float64, NodesPerElement)
		for n, ijk := range idx {
			R[n] = [3]float64{x[ijk[0]], x[ijk[1]], x[ijk[2]]}
			W[n] = w[ijk[0]] * w[ijk[1]] * w[ijk[2]]
		}
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedQuadrature, q)
	}
	return
}

// GaussQuadrature returns sample points and weights for nPoints on [-1,1]³.
func GaussQuadrature(nPoints int) (R [][3]float64, W []float64, err error) {
	var q QuadratureRule
	if q, err = NewQuadratureRule(nPoints); err != nil {
		return
	}
	return q.Points()
}
