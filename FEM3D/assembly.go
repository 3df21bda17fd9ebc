package FEM3D

import (
	"fmt"
	"math"
	"sync"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/sorbet/utils"
)

// Assembler builds global stiffness matrices for a homogeneous material.
type Assembler struct {
	Material       Material
	Rule           QuadratureRule
	ParallelDegree int // number of element workers, < 1 means one per CPU
	C              *mat.SymDense
}

func NewAssembler(material Material, rule QuadratureRule, parallelDegree int) (as *Assembler, err error) {
	var C *mat.SymDense
	if C, err = material.Tangent(); err != nil {
		return
	}
	if _, _, err = rule.Points(); err != nil {
		return
	}
	as = &Assembler{
		Material:       material,
		Rule:           rule,
		ParallelDegree: parallelDegree,
		C:              C,
	}
	return
}

// Assemble returns the dense (3N)x(3N) global stiffness matrix with
// dof = 3*node + component. Either every element contributes or an error is
// returned and no matrix.
func (as *Assembler) Assemble(nodes [][]float64, elements [][]int) (K *mat.Dense, err error) {
	var (
		Ke []*mat.Dense
	)
	if Ke, err = as.ElementMatrices(nodes, elements); err != nil {
		return
	}
	nDOF := DOFPerNode * len(nodes)
	K = mat.NewDense(nDOF, nDOF, nil)
	for k, element := range elements {
		ScatterElement(Ke[k], element, func(i, j int, A mat.Matrix, ia, ja int) {
			utils.AddBlock(K, i, j, A, ia, ja, DOFPerNode, DOFPerNode)
		})
	}
	return
}

// AssembleSparse is Assemble with the global matrix accumulated in a
// dictionary-of-keys matrix and returned in CSR form.
func (as *Assembler) AssembleSparse(nodes [][]float64, elements [][]int) (K *sparse.CSR, err error) {
	var (
		Ke []*mat.Dense
	)
	if Ke, err = as.ElementMatrices(nodes, elements); err != nil {
		return
	}
	nDOF := DOFPerNode * len(nodes)
	dok := utils.NewDOK(nDOF, nDOF)
	for k, element := range elements {
		ScatterElement(Ke[k], element, func(i, j int, A mat.Matrix, ia, ja int) {
			dok.AddBlock(i, j, A, ia, ja, DOFPerNode, DOFPerNode)
		})
	}
	K = dok.ToCSR()
	return
}

// ElementMatrices computes every element stiffness matrix, spreading the
// elements over ParallelDegree workers. Workers only write their own slots of
// the result, so no locking is needed.
func (as *Assembler) ElementMatrices(nodes [][]float64, elements [][]int) (Ke []*mat.Dense, err error) {
	if err = ValidateMesh(nodes, elements); err != nil {
		return
	}
	Ke = make([]*mat.Dense, len(elements))
	if len(elements) == 0 {
		return
	}
	var (
		NP   = utils.ParallelDegree(as.ParallelDegree, len(elements))
		pm   = utils.NewPartitionMap(NP, len(elements))
		errs = make([]error, NP)
		wg   = sync.WaitGroup{}
	)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				X, err := ElementNodes(nodes, elements[k])
				if err == nil {
					Ke[k], err = ElementStiffness(X, as.C, as.Rule)
				}
				if err != nil {
					errs[np] = atElement(err, k)
					return
				}
			}
		}(np)
	}
	wg.Wait()
	// Buckets are in element order, the first failure is the lowest element
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return
}

// ScatterElement visits every 3x3 nodal block (a, b) of an element matrix and
// hands it to add with the global row and column of its first entry.
func ScatterElement(Ke mat.Matrix, element []int,
	add func(i, j int, A mat.Matrix, ia, ja int)) {
	for a, na := range element {
		for b, nb := range element {
			add(DOF(na, 0), DOF(nb, 0), Ke, DOFPerNode*a, DOFPerNode*b)
		}
	}
}

// ValidateMesh checks node rows are finite 3D points and element rows
// are 8 valid node indices.
func ValidateMesh(nodes [][]float64, elements [][]int) error {
	if len(nodes) == 0 {
		return fmt.Errorf("%w: empty node set", ErrMalformedConnectivity)
	}
	for n, x := range nodes {
		if len(x) != NumDim {
			return fmt.Errorf("%w: node %d has %d coordinates, expected %d",
				ErrMalformedConnectivity, n, len(x), NumDim)
		}
		if utils.IsNan(x) {
			return fmt.Errorf("%w: node %d has NaN coordinates %v",
				ErrMalformedConnectivity, n, x)
		}
		for _, c := range x {
			if math.IsInf(c, 0) {
				return fmt.Errorf("%w: node %d has infinite coordinates %v",
					ErrMalformedConnectivity, n, x)
			}
		}
	}
	for k, element := range elements {
		if len(element) != NodesPerElement {
			return fmt.Errorf("%w: element %d has %d nodes, expected %d",
				ErrMalformedConnectivity, k, len(element), NodesPerElement)
		}
		for _, n := range element {
			if n < 0 || n >= len(nodes) {
				return fmt.Errorf("%w: element %d references node %d, valid range is [0,%d)",
					ErrMalformedConnectivity, k, n, len(nodes))
			}
		}
	}
	return nil
}

// SparsityPattern counts, for every nodal 3x3 block of the global matrix,
// the number of elements contributing to it. Blocks no element touches are
// structurally zero.
func SparsityPattern(nNodes int, elements [][]int) (P *sparse.CSR, err error) {
	if nNodes < 1 {
		err = fmt.Errorf("%w: empty node set", ErrMalformedConnectivity)
		return
	}
	nDOF := DOFPerNode * nNodes
	dok := utils.NewDOK(nDOF, nDOF)
	for k, element := range elements {
		if len(element) != NodesPerElement {
			return nil, fmt.Errorf("%w: element %d has %d nodes, expected %d",
				ErrMalformedConnectivity, k, len(element), NodesPerElement)
		}
		for _, na := range element {
			for _, nb := range element {
				if na < 0 || na >= nNodes || nb < 0 || nb >= nNodes {
					return nil, fmt.Errorf("%w: element %d references a node outside [0,%d)",
						ErrMalformedConnectivity, k, nNodes)
				}
				for i := 0; i < DOFPerNode; i++ {
					for j := 0; j < DOFPerNode; j++ {
						dok.AddAt(DOF(na, i), DOF(nb, j), 1)
					}
				}
			}
		}
	}
	P = dok.ToCSR()
	return
}
