package mesh

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const NodesPerHex = 8

var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is an unstructured mesh of 8-node hexahedra
type Mesh struct {
	// Geometry
	Vertices [][]float64 // Vertex coordinates [nvertices][3]

	// Element data
	Elements    [][]int // Element to vertex connectivity [nelems][8], zero-based
	ElementTags []int   // Entity tag for each element, 0 for generated meshes

	// File bookkeeping
	NodeTags        []int       // File tag of each vertex
	NodeIDMap       map[int]int // File tag to zero-based vertex index
	FormatVersion   string
	SkippedElements int // Lower dimensional elements found in the file

	elementNodeTags [][]int // Element connectivity in file tags until resolved
	elementFileTags []int
}

func NewMesh() *Mesh {
	return &Mesh{
		NodeIDMap: make(map[int]int),
	}
}

func (m *Mesh) NumVertices() int { return len(m.Vertices) }
func (m *Mesh) NumElements() int { return len(m.Elements) }

// AddNode appends a vertex carrying the file tag nodeTag
func (m *Mesh) AddNode(nodeTag int, coords []float64) error {
	if _, exists := m.NodeIDMap[nodeTag]; exists {
		return fmt.Errorf("%w: duplicate node tag %d", ErrInvalidMesh, nodeTag)
	}
	m.NodeIDMap[nodeTag] = len(m.Vertices)
	m.NodeTags = append(m.NodeTags, nodeTag)
	m.Vertices = append(m.Vertices, coords)
	return nil
}

// addHexByTags queues a hexahedron whose nodes are given as file tags. The
// tags are converted to vertex indices by resolveNodeTags once all sections
// are read.
func (m *Mesh) addHexByTags(elemTag, entityTag int, nodeTags []int) {
	m.elementNodeTags = append(m.elementNodeTags, nodeTags)
	m.elementFileTags = append(m.elementFileTags, elemTag)
	m.ElementTags = append(m.ElementTags, entityTag)
}

func (m *Mesh) resolveNodeTags() error {
	m.Elements = make([][]int, len(m.elementNodeTags))
	for k, tags := range m.elementNodeTags {
		m.Elements[k] = make([]int, len(tags))
		for a, tag := range tags {
			n, ok := m.NodeIDMap[tag]
			if !ok {
				return fmt.Errorf("%w: element %d references undefined node tag %d",
					ErrInvalidMesh, m.elementFileTags[k], tag)
			}
			m.Elements[k][a] = n
		}
	}
	m.elementNodeTags, m.elementFileTags = nil, nil
	return nil
}

// Validate checks that the mesh has vertices, that vertices are finite 3D
// points and that every element names 8 distinct existing vertices
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: no vertices", ErrInvalidMesh)
	}
	for n, x := range m.Vertices {
		if len(x) != 3 {
			return fmt.Errorf("%w: vertex %d has %d coordinates", ErrInvalidMesh, n, len(x))
		}
		for _, c := range x {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: vertex %d has non finite coordinates %v",
					ErrInvalidMesh, n, x)
			}
		}
	}
	if len(m.Elements) == 0 {
		return fmt.Errorf("%w: no hexahedral elements", ErrInvalidMesh)
	}
	for k, elem := range m.Elements {
		if len(elem) != NodesPerHex {
			return fmt.Errorf("%w: element %d has %d nodes, expected %d",
				ErrInvalidMesh, k, len(elem), NodesPerHex)
		}
		for a, n := range elem {
			if n < 0 || n >= len(m.Vertices) {
				return fmt.Errorf("%w: element %d references vertex %d, valid range is [0,%d)",
					ErrInvalidMesh, k, n, len(m.Vertices))
			}
			for _, nb := range elem[:a] {
				if nb == n {
					return fmt.Errorf("%w: element %d repeats vertex %d", ErrInvalidMesh, k, n)
				}
			}
		}
	}
	return nil
}

// UnusedVertices counts vertices no element references
func (m *Mesh) UnusedVertices() (count int) {
	used := make([]bool, len(m.Vertices))
	for _, elem := range m.Elements {
		for _, n := range elem {
			if n >= 0 && n < len(used) {
				used[n] = true
			}
		}
	}
	for _, u := range used {
		if !u {
			count++
		}
	}
	return
}

// BoundingBox returns the smallest axis aligned box containing all vertices
func (m *Mesh) BoundingBox() (box r3.Box) {
	if len(m.Vertices) == 0 {
		return
	}
	toVec := func(x []float64) r3.Vec { return r3.Vec{X: x[0], Y: x[1], Z: x[2]} }
	box.Min, box.Max = toVec(m.Vertices[0]), toVec(m.Vertices[0])
	for _, x := range m.Vertices[1:] {
		v := toVec(x)
		box.Min = r3.Vec{X: math.Min(box.Min.X, v.X), Y: math.Min(box.Min.Y, v.Y), Z: math.Min(box.Min.Z, v.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, v.X), Y: math.Max(box.Max.Y, v.Y), Z: math.Max(box.Max.Z, v.Z)}
	}
	return
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadGmsh(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	if m.FormatVersion != "" {
		fmt.Printf("  Gmsh format: %s\n", m.FormatVersion)
	}
	fmt.Printf("  Vertices: %d\n", m.NumVertices())
	fmt.Printf("  Hexahedra: %d\n", m.NumElements())
	if m.SkippedElements > 0 {
		fmt.Printf("  Skipped lower dimensional elements: %d\n", m.SkippedElements)
	}
	if unused := m.UnusedVertices(); unused > 0 {
		fmt.Printf("  Unused vertices: %d\n", unused)
	}
	box := m.BoundingBox()
	size := box.Size()
	fmt.Printf("  Bounding box: [%g,%g,%g] to [%g,%g,%g], size [%g,%g,%g]\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z,
		size.X, size.Y, size.Z)
}
