package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const gmshHexType = 5

// gmshElementDim maps Gmsh element types to their topological dimension
var gmshElementDim = map[int]int{
	15: 0, // point
	1:  1, // 2-node line
	8:  1,
	26: 1,
	2:  2, // 3-node triangle
	3:  2, // 4-node quadrangle
	9:  2,
	10: 2,
	16: 2,
	20: 2,
	21: 2,
	36: 2,
	37: 2,
	4:  3, // 4-node tetrahedron
	5:  3, // 8-node hexahedron
	6:  3, // 6-node prism
	7:  3, // 5-node pyramid
	11: 3,
	12: 3,
	13: 3,
	14: 3,
	17: 3,
	18: 3,
	19: 3,
	29: 3,
	92: 3,
	93: 3,
}

// ReadGmsh reads an ASCII Gmsh file, detecting the format version from the
// $MeshFormat section
func ReadGmsh(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var version string

	// Look for $MeshFormat section to determine version
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "$MeshFormat" {
			if scanner.Scan() {
				if parts := strings.Fields(scanner.Text()); len(parts) > 0 {
					version = parts[0]
				}
			}
			break
		}
	}

	switch {
	case strings.HasPrefix(version, "4."):
		return ReadGmsh4(filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	case version == "":
		return nil, fmt.Errorf("could not find $MeshFormat section")
	default:
		return nil, fmt.Errorf("unsupported Gmsh format version: %s", version)
	}
}

// ReadGmsh22 reads a Gmsh MSH file format version 2.2
func ReadGmsh22(filename string) (*Mesh, error) {
	return readGmsh(filename, readNodes22, readElements22)
}

// ReadGmsh4 reads a Gmsh MSH file format version 4.1
func ReadGmsh4(filename string) (*Mesh, error) {
	return readGmsh(filename, readNodes4, readElements4)
}

type sectionReader func(scanner *bufio.Scanner, msh *Mesh) error

func readGmsh(filename string, readNodes, readElements sectionReader) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	msh := NewMesh()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat(scanner, msh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes(scanner, msh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements(scanner, msh); err != nil {
				return nil, err
			}

		default:
			// Skip everything else: physical names, entities, data sections
			if strings.HasPrefix(line, "$") && !strings.HasPrefix(line, "$End") {
				if err := skipSection(scanner, "$End"+line[1:]); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if err := msh.resolveNodeTags(); err != nil {
		return nil, err
	}
	return msh, nil
}

func readMeshFormat(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}
	msh.FormatVersion = parts[0]
	if fileType, _ := strconv.Atoi(parts[1]); fileType != 0 {
		return fmt.Errorf("binary Gmsh files are not supported")
	}
	if strings.HasPrefix(msh.FormatVersion, "4.") && msh.FormatVersion != "4.1" {
		return fmt.Errorf("unsupported Gmsh format version: %s", msh.FormatVersion)
	}

	return skipSection(scanner, "$EndMeshFormat")
}

// readNodes22 reads nodes in v2.2 format: one "tag x y z" line per node
func readNodes22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of nodes: %v", err)
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node line: %q", scanner.Text())
		}
		nodeTag, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node tag: %v", err)
		}
		coords, err := parseCoordinates(fields[1:4])
		if err != nil {
			return err
		}
		if err = msh.AddNode(nodeTag, coords); err != nil {
			return err
		}
	}

	return skipSection(scanner, "$EndNodes")
}

// readElements22 reads elements in v2.2 format:
// "tag type numTags <tags> <node tags>"
func readElements22(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of elements: %v", err)
	}

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		fields, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil {
			return err
		}
		if len(fields) < 3 {
			return fmt.Errorf("invalid element line: %q", scanner.Text())
		}
		elemTag, gmshType, numTags := fields[0], fields[1], fields[2]
		if numTags < 0 || len(fields) < 3+numTags {
			return fmt.Errorf("invalid element line: %q", scanner.Text())
		}
		// First tag is the physical group, second the elementary entity
		var entityTag int
		if numTags >= 2 {
			entityTag = fields[4]
		} else if numTags == 1 {
			entityTag = fields[3]
		}
		if err = addGmshElement(msh, elemTag, gmshType, entityTag, fields[3+numTags:]); err != nil {
			return err
		}
	}

	return skipSection(scanner, "$EndElements")
}

// readNodes4 reads nodes in v4.1 format
func readNodes4(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	// Format: numEntityBlocks numNodes minNodeTag maxNodeTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Nodes header")
	}
	numEntityBlocks, _ := strconv.Atoi(header[0])
	numNodes, err := strconv.Atoi(header[1])
	if err != nil || numNodes < 0 {
		return fmt.Errorf("invalid Nodes header")
	}

	for i := 0; i < numEntityBlocks; i++ {
		// Read entity info: entityDim entityTag parametric numNodes
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node entity block %d", i)
		}
		blockHeader, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil || len(blockHeader) < 4 {
			return fmt.Errorf("invalid node block header")
		}
		numNodesInBlock := blockHeader[3]
		// Blocks cannot hold more nodes than the section header announces
		if numNodesInBlock < 0 || numNodesInBlock > numNodes {
			return fmt.Errorf("invalid node block header: %d nodes, %d left in section",
				numNodesInBlock, numNodes)
		}
		numNodes -= numNodesInBlock

		nodeTags := make([]int, numNodesInBlock)
		for j := 0; j < numNodesInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			if nodeTags[j], err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
				return fmt.Errorf("invalid node tag: %v", err)
			}
		}

		// Parametric coordinates, if present, follow x y z and are ignored
		for j := 0; j < numNodesInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("invalid node coordinate line")
			}
			coords, err := parseCoordinates(fields[:3])
			if err != nil {
				return err
			}
			if err = msh.AddNode(nodeTags[j], coords); err != nil {
				return err
			}
		}
	}

	return skipSection(scanner, "$EndNodes")
}

// readElements4 reads elements in v4.1 format
func readElements4(scanner *bufio.Scanner, msh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	// Format: numEntityBlocks numElements minElementTag maxElementTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Elements header")
	}
	numEntityBlocks, _ := strconv.Atoi(header[0])

	for i := 0; i < numEntityBlocks; i++ {
		// Read entity info: entityDim entityTag elementType numElements
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element entity block %d", i)
		}
		blockHeader, err := parseInts(strings.Fields(scanner.Text()))
		if err != nil || len(blockHeader) < 4 {
			return fmt.Errorf("invalid element block header")
		}
		entityTag, gmshType, numElemsInBlock := blockHeader[1], blockHeader[2], blockHeader[3]

		for j := 0; j < numElemsInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading elements")
			}
			fields, err := parseInts(strings.Fields(scanner.Text()))
			if err != nil {
				return err
			}
			if len(fields) < 2 {
				return fmt.Errorf("invalid element line: %q", scanner.Text())
			}
			if err = addGmshElement(msh, fields[0], gmshType, entityTag, fields[1:]); err != nil {
				return err
			}
		}
	}

	return skipSection(scanner, "$EndElements")
}

// addGmshElement keeps hexahedra, counts lower dimensional elements and
// rejects any other volume element
func addGmshElement(msh *Mesh, elemTag, gmshType, entityTag int, nodeTags []int) error {
	dim, known := gmshElementDim[gmshType]
	switch {
	case gmshType == gmshHexType:
		if len(nodeTags) != NodesPerHex {
			return fmt.Errorf("invalid element line: hexahedron %d has %d nodes, expected %d",
				elemTag, len(nodeTags), NodesPerHex)
		}
		msh.addHexByTags(elemTag, entityTag, append([]int(nil), nodeTags...))
	case !known:
		return fmt.Errorf("%w: element %d has unknown Gmsh type %d", ErrInvalidMesh, elemTag, gmshType)
	case dim < 3:
		msh.SkippedElements++
	default:
		return fmt.Errorf("%w: element %d has Gmsh type %d, only 8-node hexahedra (type %d) are supported",
			ErrInvalidMesh, elemTag, gmshType, gmshHexType)
	}
	return nil
}

func parseCoordinates(fields []string) (coords []float64, err error) {
	coords = make([]float64, len(fields))
	for k, f := range fields {
		if coords[k], err = strconv.ParseFloat(f, 64); err != nil {
			return nil, fmt.Errorf("invalid node coordinate: %v", err)
		}
	}
	return
}

func parseInts(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for k, f := range fields {
		if vals[k], err = strconv.Atoi(f); err != nil {
			return nil, fmt.Errorf("invalid integer field: %v", err)
		}
	}
	return
}

func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("unexpected EOF looking for %s", endMarker)
}
