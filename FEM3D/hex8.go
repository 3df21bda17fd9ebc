package FEM3D

// NaturalCorners holds the natural coordinates of the hexahedron corners in
// connectivity order: bottom face (ζ=-1) counter-clockwise, then top face.
var NaturalCorners = [NodesPerElement][3]float64{
	{-1, -1, -1},
	{+1, -1, -1},
	{+1, +1, -1},
	{-1, +1, -1},
	{-1, -1, +1},
	{+1, -1, +1},
	{+1, +1, +1},
	{-1, +1, +1},
}

// ShapeFunctions evaluates the eight trilinear interpolation functions
//
//	N_a = 1/8 (1 + ξ ξa)(1 + η ηa)(1 + ζ ζa)
//
// at the natural coordinates r = (ξ, η, ζ).
func ShapeFunctions(r [3]float64) (N [NodesPerElement]float64) {
	var (
		xi, eta, zeta = r[0], r[1], r[2]
	)
	N[0] = 0.125 * (1 - xi) * (1 - eta) * (1 - zeta)
	N[1] = 0.125 * (1 + xi) * (1 - eta) * (1 - zeta)
	N[2] = 0.125 * (1 + xi) * (1 + eta) * (1 - zeta)
	N[3] = 0.125 * (1 - xi) * (1 + eta) * (1 - zeta)
	N[4] = 0.125 * (1 - xi) * (1 - eta) * (1 + zeta)
	N[5] = 0.125 * (1 + xi) * (1 - eta) * (1 + zeta)
	N[6] = 0.125 * (1 + xi) * (1 + eta) * (1 + zeta)
	N[7] = 0.125 * (1 - xi) * (1 + eta) * (1 + zeta)
	return
}

// ShapeFunctionDerivatives returns dN[a][k] = ∂N_a/∂r_k in closed form.
func ShapeFunctionDerivatives(r [3]float64) (dN [NodesPerElement][3]float64) {
	for a, c := range NaturalCorners {
		var (
			fx = 1 + c[0]*r[0]
			fy = 1 + c[1]*r[1]
			fz = 1 + c[2]*r[2]
		)
		dN[a][0] = 0.125 * c[0] * fy * fz
		dN[a][1] = 0.125 * fx * c[1] * fz
		dN[a][2] = 0.125 * fx * fy * c[2]
	}
	return
}

// InterpolateCoordinates maps natural coordinates to physical space using the
// element corner coordinates X[8][3].
func InterpolateCoordinates(X [][]float64, r [3]float64) (x [3]float64) {
	N := ShapeFunctions(r)
	for a := 0; a < NodesPerElement; a++ {
		for k := 0; k < NumDim; k++ {
			x[k] += N[a] * X[a][k]
		}
	}
	return
}
