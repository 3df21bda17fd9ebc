package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// NewBox generates a structured mesh of divisions[0] x divisions[1] x
// divisions[2] hexahedra filling the box at origin with edge lengths size.
// Vertices are numbered with x fastest, then y, then z.
func NewBox(origin, size r3.Vec, divisions [3]int) (m *Mesh, err error) {
	var (
		nx, ny, nz = divisions[0], divisions[1], divisions[2]
	)
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("%w: box divisions must be positive, have %v", ErrInvalidMesh, divisions)
		return
	}
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		err = fmt.Errorf("%w: box size must be positive, have %v", ErrInvalidMesh, size)
		return
	}
	m = NewMesh()
	id := func(i, j, k int) int { return i + (nx+1)*(j+(ny+1)*k) }
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				x := []float64{
					origin.X + size.X*float64(i)/float64(nx),
					origin.Y + size.Y*float64(j)/float64(ny),
					origin.Z + size.Z*float64(k)/float64(nz),
				}
				if err = m.AddNode(id(i, j, k), x); err != nil {
					return nil, err
				}
			}
		}
	}
	m.Elements = make([][]int, 0, nx*ny*nz)
	m.ElementTags = make([]int, 0, nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				// Bottom face CCW seen from +z, then the top face
				m.Elements = append(m.Elements, []int{
					id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
					id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
				})
				m.ElementTags = append(m.ElementTags, 0)
			}
		}
	}
	return
}
