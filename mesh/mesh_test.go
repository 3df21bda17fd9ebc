package mesh

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNewBox(t *testing.T) {
	{ // Counts, numbering and geometry
		m, err := NewBox(r3.Vec{X: 1, Y: -1, Z: 0}, r3.Vec{X: 3, Y: 2, Z: 1}, [3]int{3, 2, 2})
		require.NoError(t, err)
		assert.Equal(t, 36, m.NumVertices())
		assert.Equal(t, 12, m.NumElements())
		assert.Len(t, m.ElementTags, 12)
		assert.NoError(t, m.Validate())
		assert.Equal(t, 0, m.UnusedVertices())
		assert.Equal(t, []float64{1, -1, 0}, m.Vertices[0])
		assert.Equal(t, []float64{2, -1, 0}, m.Vertices[1])
		assert.Equal(t, []float64{1, 0, 0}, m.Vertices[4])
		assert.Equal(t, []float64{4, 1, 1}, m.Vertices[35])
		assert.Equal(t, []int{0, 1, 5, 4, 12, 13, 17, 16}, m.Elements[0])
		box := m.BoundingBox()
		assert.Equal(t, r3.Vec{X: 1, Y: -1, Z: 0}, box.Min)
		assert.Equal(t, r3.Vec{X: 4, Y: 1, Z: 1}, box.Max)
	}
	{ // Element corners follow bottom face CCW, then top face
		m, err := NewBox(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, [3]int{1, 1, 1})
		require.NoError(t, err)
		corners := r3.NewBox(0, 0, 0, 1, 1, 1).Vertices()
		for a, n := range m.Elements[0] {
			v := m.Vertices[n]
			assert.Equal(t, corners[a], r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		}
	}
	{ // Invalid input
		_, err := NewBox(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, [3]int{1, 0, 1})
		assert.ErrorIs(t, err, ErrInvalidMesh)
		_, err = NewBox(r3.Vec{}, r3.Vec{X: 1, Y: -1, Z: 1}, [3]int{1, 1, 1})
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
}

func TestValidate(t *testing.T) {
	newCube := func() *Mesh {
		m, err := NewBox(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}, [3]int{1, 1, 1})
		require.NoError(t, err)
		return m
	}
	tests := []struct {
		name   string
		modify func(m *Mesh)
	}{
		{"no vertices", func(m *Mesh) { m.Vertices = nil }},
		{"no elements", func(m *Mesh) { m.Elements = nil }},
		{"2D vertex", func(m *Mesh) { m.Vertices[3] = []float64{0, 1} }},
		{"NaN vertex", func(m *Mesh) { m.Vertices[3][2] = nan() }},
		{"seven nodes", func(m *Mesh) { m.Elements[0] = m.Elements[0][:7] }},
		{"out of range", func(m *Mesh) { m.Elements[0][7] = 8 }},
		{"negative", func(m *Mesh) { m.Elements[0][0] = -1 }},
		{"repeated vertex", func(m *Mesh) { m.Elements[0][7] = m.Elements[0][6] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCube()
			tt.modify(m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
		})
	}
	m := newCube()
	m.Vertices = append(m.Vertices, []float64{5, 5, 5})
	assert.NoError(t, m.Validate())
	assert.Equal(t, 1, m.UnusedVertices())
	assert.Equal(t, r3.Vec{X: 5, Y: 5, Z: 5}, m.BoundingBox().Max)
	m.PrintStatistics()
}

// boxNodeLines writes the vertices of a 2x1x1 unit box, tags 1 to 12,
// x fastest
func boxNodeLines(withTags bool) (lines []string) {
	for k := 0; k <= 1; k++ {
		for j := 0; j <= 1; j++ {
			for i := 0; i <= 2; i++ {
				tag := 1 + i + 3*(j+2*k)
				if withTags {
					lines = append(lines, fmt.Sprintf("%d %d %d %d", tag, i, j, k))
				} else {
					lines = append(lines, fmt.Sprintf("%d %d %d", i, j, k))
				}
			}
		}
	}
	return
}

func gmsh22Box(extraElements ...string) string {
	var sb strings.Builder
	sb.WriteString("$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	sb.WriteString("$PhysicalNames\n1\n3 1 \"solid\"\n$EndPhysicalNames\n")
	sb.WriteString("$Nodes\n12\n")
	sb.WriteString(strings.Join(boxNodeLines(true), "\n"))
	sb.WriteString("\n$EndNodes\n")
	elements := append([]string{
		"1 3 2 0 1 1 2 5 4",
		"2 5 2 1 7 1 2 5 4 7 8 11 10",
		"3 5 2 1 7 2 3 6 5 8 9 12 11",
	}, extraElements...)
	fmt.Fprintf(&sb, "$Elements\n%d\n%s\n$EndElements\n", len(elements), strings.Join(elements, "\n"))
	sb.WriteString("$NodeData\n1\n\"u\"\n$EndNodeData\n")
	return sb.String()
}

func gmsh41Box() string {
	var (
		sb    strings.Builder
		nodes = boxNodeLines(false)
	)
	sb.WriteString("$MeshFormat\n4.1 0 8\n$EndMeshFormat\n")
	sb.WriteString("$Entities\n0 0 1 1\n1 0 0 0 2 0 0 0 0\n1 0 0 0 2 1 1 0 0\n$EndEntities\n")
	sb.WriteString("$Nodes\n2 12 1 12\n")
	sb.WriteString("3 1 0 8\n1\n2\n3\n4\n5\n6\n7\n8\n")
	sb.WriteString(strings.Join(nodes[:8], "\n") + "\n")
	sb.WriteString("3 1 0 4\n9\n10\n11\n12\n")
	sb.WriteString(strings.Join(nodes[8:], "\n") + "\n")
	sb.WriteString("$EndNodes\n")
	sb.WriteString("$Elements\n2 3 1 3\n")
	sb.WriteString("2 1 3 1\n1 1 2 5 4\n")
	sb.WriteString("3 1 5 2\n2 1 2 5 4 7 8 11 10\n3 2 3 6 5 8 9 12 11\n")
	sb.WriteString("$EndElements\n")
	return sb.String()
}

func writeMeshFile(t *testing.T, name, contents string) string {
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o644))
	return filename
}

func checkTwoHexBox(t *testing.T, m *Mesh) {
	reference, err := NewBox(r3.Vec{}, r3.Vec{X: 2, Y: 1, Z: 1}, [3]int{2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, reference.Vertices, m.Vertices)
	assert.Equal(t, reference.Elements, m.Elements)
	assert.Equal(t, 1, m.SkippedElements)
	assert.Equal(t, 1, m.NodeIDMap[2])
	assert.Equal(t, 12, m.NodeTags[11])
	assert.NoError(t, m.Validate())
}

func TestReadGmsh22(t *testing.T) {
	filename := writeMeshFile(t, "box.msh", gmsh22Box())
	m, err := ReadGmsh22(filename)
	require.NoError(t, err)
	checkTwoHexBox(t, m)
	assert.Equal(t, "2.2", m.FormatVersion)
	assert.Equal(t, []int{7, 7}, m.ElementTags)

	// Version detection and extension dispatch reach the same reader
	m, err = ReadMeshFile(filename)
	require.NoError(t, err)
	checkTwoHexBox(t, m)
}

func TestReadGmsh4(t *testing.T) {
	filename := writeMeshFile(t, "box.msh", gmsh41Box())
	m, err := ReadGmsh4(filename)
	require.NoError(t, err)
	checkTwoHexBox(t, m)
	assert.Equal(t, "4.1", m.FormatVersion)
	assert.Equal(t, []int{1, 1}, m.ElementTags)

	m, err = ReadGmsh(filename)
	require.NoError(t, err)
	checkTwoHexBox(t, m)
}

func TestReadGmshErrors(t *testing.T) {
	{ // Volume elements other than hexahedra
		filename := writeMeshFile(t, "tet.msh", gmsh22Box("4 4 2 1 7 1 2 4 7"))
		_, err := ReadGmsh(filename)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Unknown element type
		filename := writeMeshFile(t, "unknown.msh", gmsh22Box("4 999 2 1 7 1 2"))
		_, err := ReadGmsh(filename)
		assert.ErrorIs(t, err, ErrInvalidMesh)
	}
	{ // Element referencing a node that does not exist
		filename := writeMeshFile(t, "tags.msh", gmsh22Box("4 5 2 1 7 1 2 5 4 7 8 11 99"))
		_, err := ReadGmsh(filename)
		assert.ErrorIs(t, err, ErrInvalidMesh)
		assert.Contains(t, err.Error(), "99")
	}
	{ // Hexahedron with too few nodes
		filename := writeMeshFile(t, "short.msh", gmsh22Box("4 5 2 1 7 1 2 5 4 7 8 11"))
		_, err := ReadGmsh(filename)
		assert.Error(t, err)
	}
	{ // Malformed counts are errors, not panics
		filename := writeMeshFile(t, "tags.msh", gmsh22Box("4 5 -5 1 2 3 4 5 6 7 8"))
		assert.NotPanics(t, func() {
			_, err := ReadGmsh(filename)
			assert.Error(t, err)
		})
		for name, bad := range map[string][2]string{
			"negative block":  {"3 1 0 8\n", "3 1 0 -1\n"},
			"oversized block": {"3 1 0 4\n", "3 1 0 1000000000\n"},
			"negative total":  {"$Nodes\n2 12 1 12\n", "$Nodes\n2 -12 1 12\n"},
		} {
			contents := strings.Replace(gmsh41Box(), bad[0], bad[1], 1)
			require.NotEqual(t, gmsh41Box(), contents, name)
			filename := writeMeshFile(t, "counts.msh", contents)
			assert.NotPanics(t, func() {
				_, err := ReadGmsh(filename)
				assert.Error(t, err, name)
			}, name)
		}
	}
	{ // Truncated node section
		contents := gmsh22Box()
		contents = contents[:strings.Index(contents, "3 2 0 0")]
		_, err := ReadGmsh(writeMeshFile(t, "truncated.msh", contents))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected EOF")
	}
	{ // Versions and file types
		_, err := ReadGmsh(writeMeshFile(t, "none.msh", "$Nodes\n0\n$EndNodes\n"))
		assert.Error(t, err)
		_, err = ReadGmsh(writeMeshFile(t, "v3.msh", "$MeshFormat\n3.0 0 8\n$EndMeshFormat\n"))
		assert.Error(t, err)
		_, err = ReadGmsh(writeMeshFile(t, "v40.msh", "$MeshFormat\n4 0 8\n$EndMeshFormat\n"))
		assert.Error(t, err)
		_, err = ReadGmsh(writeMeshFile(t, "bin.msh", "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n"))
		assert.Error(t, err)
		_, err = ReadMeshFile(writeMeshFile(t, "box.vtk", gmsh22Box()))
		assert.Error(t, err)
		_, err = ReadGmsh(filepath.Join(t.TempDir(), "missing.msh"))
		assert.Error(t, err)
	}
}

func nan() float64 { return math.NaN() }
