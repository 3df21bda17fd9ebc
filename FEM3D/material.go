package FEM3D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Material holds the constants of an isotropic linear-elastic solid.
type Material struct {
	YoungsModulus float64 // E > 0
	PoissonRatio  float64 // -1 < ν < 0.5
}

func NewMaterial(E, nu float64) (m Material, err error) {
	m = Material{YoungsModulus: E, PoissonRatio: nu}
	err = m.Validate()
	return
}

// Validate rejects parameters for which the Lamé constants are undefined or
// the elastic tensor is not positive definite.
func (m Material) Validate() error {
	var (
		E, nu = m.YoungsModulus, m.PoissonRatio
	)
	switch {
	case math.IsNaN(E) || math.IsInf(E, 0) || math.IsNaN(nu) || math.IsInf(nu, 0):
		return fmt.Errorf("%w: non-finite value, E = %v, nu = %v", ErrInvalidMaterial, E, nu)
	case E <= 0:
		return fmt.Errorf("%w: Young's modulus must be positive, E = %v", ErrInvalidMaterial, E)
	case nu <= -1 || nu >= 0.5:
		return fmt.Errorf("%w: Poisson's ratio must lie in (-1, 0.5), nu = %v", ErrInvalidMaterial, nu)
	}
	return nil
}

// Lame returns Lamé's first parameter λ and the shear modulus μ.
func (m Material) Lame() (lambda, mu float64) {
	var (
		E, nu = m.YoungsModulus, m.PoissonRatio
	)
	lambda = E * nu / ((1 + nu) * (1 - 2*nu))
	mu = E / (2 * (1 + nu))
	return
}

// Tangent returns the 6x6 constitutive operator C in Voigt order, σ = C·ε
// with engineering shear strains.
func (m Material) Tangent() (C *mat.SymDense, err error) {
	if err = m.Validate(); err != nil {
		return
	}
	lambda, mu := m.Lame()
	C = mat.NewSymDense(NumVoigt, nil)
	for i := 0; i < NumVoigt; i++ {
		if !IsNormalVoigt(i) {
			C.SetSym(i, i, mu)
			continue
		}
		for j := i; j < NumVoigt; j++ {
			if !IsNormalVoigt(j) {
				continue
			}
			if i == j {
				C.SetSym(i, j, lambda+2*mu)
			} else {
				C.SetSym(i, j, lambda)
			}
		}
	}
	return
}

func (m Material) String() string {
	return fmt.Sprintf("E = %g, nu = %g", m.YoungsModulus, m.PoissonRatio)
}
