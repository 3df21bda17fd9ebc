package FEM3D

// Voigt row/column order shared by the strain-displacement operator and the
// constitutive operator. B and C are only meaningful multiplied together, so
// both are built from these indices.
const (
	VoigtXX = iota // εxx
	VoigtYY        // εyy
	VoigtZZ        // εzz
	VoigtXY        // γxy = ∂u/∂y + ∂v/∂x
	VoigtXZ        // γxz = ∂u/∂z + ∂w/∂x
	VoigtYZ        // γyz = ∂v/∂z + ∂w/∂y
	NumVoigt
)

// VoigtComponents gives the tensor indices (i, j) of each Voigt row. Normal
// rows have i == j; shear rows hold the engineering strain εij + εji.
var VoigtComponents = [NumVoigt][2]int{
	VoigtXX: {0, 0},
	VoigtYY: {1, 1},
	VoigtZZ: {2, 2},
	VoigtXY: {0, 1},
	VoigtXZ: {0, 2},
	VoigtYZ: {1, 2},
}

// IsNormalVoigt reports whether row r of a Voigt vector is a normal component.
func IsNormalVoigt(r int) bool {
	return VoigtComponents[r][0] == VoigtComponents[r][1]
}

const (
	NumDim          = 3 // spatial dimension
	NodesPerElement = 8 // trilinear hexahedron
	DOFPerNode      = NumDim
	DOFPerElement   = NodesPerElement * DOFPerNode
)

// DOF returns the global degree of freedom index for a node and displacement
// component (0=x, 1=y, 2=z).
func DOF(node, component int) int {
	return DOFPerNode*node + component
}
