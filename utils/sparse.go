package utils

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is a dictionary-of-keys sparse matrix that accumulates into its
// entries, used for scatter-add assembly before conversion to CSR.
type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{sparse.NewDOK(nr, nc)}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

// AddAt adds val to entry (i, j).
func (m DOK) AddAt(i, j int, val float64) {
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// AddBlock adds the nr x nc block of A starting at (ia, ja) to the entries
// starting at (i, j).
func (m DOK) AddBlock(i, j int, A mat.Matrix, ia, ja, nr, nc int) {
	for ii := 0; ii < nr; ii++ {
		for jj := 0; jj < nc; jj++ {
			if val := A.At(ia+ii, ja+jj); val != 0 {
				m.M.Set(i+ii, j+jj, m.M.At(i+ii, j+jj)+val)
			}
		}
	}
}

func (m DOK) ToCSR() *sparse.CSR {
	return m.M.ToCSR()
}
