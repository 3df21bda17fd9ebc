package FEM3D

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedQuadrature = errors.New("unsupported quadrature order")
	ErrDegenerateElement     = errors.New("degenerate element")
	ErrInvalidMaterial       = errors.New("invalid material parameters")
	ErrMalformedConnectivity = errors.New("malformed connectivity")
)

// DegenerateElementError reports a non-positive Jacobian determinant at a
// quadrature point. Element is -1 when the element index is not known.
type DegenerateElementError struct {
	Element int
	R       [3]float64 // natural coordinates of the sample point
	DetJ    float64
}

func (e *DegenerateElementError) Error() string {
	if e.Element < 0 {
		return fmt.Sprintf("%v: det(J) = %g at r = %v", ErrDegenerateElement, e.DetJ, e.R)
	}
	return fmt.Sprintf("%v: element %d, det(J) = %g at r = %v",
		ErrDegenerateElement, e.Element, e.DetJ, e.R)
}

func (e *DegenerateElementError) Unwrap() error { return ErrDegenerateElement }
