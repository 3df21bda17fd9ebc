/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/sorbet/FEM3D"
	"github.com/notargets/sorbet/InputParameters"
	"github.com/notargets/sorbet/mesh"
	"github.com/notargets/sorbet/utils"
)

type Model3D struct {
	GridFile string
	ICFile   string
	Profile  bool
	Perf     bool
}

// AssemblySummary holds what the assemble command reports about a run
type AssemblySummary struct {
	NumVertices, NumElements int
	NumDOF                   int
	PatternNNZ               int // structurally non-zero entries
	StoredNNZ                int // entries stored by the sparse matrix, 0 when dense
	MaxAsymmetry             float64
	Trace                    float64
	Volume                   float64    // sum of element volumes
	Centroid                 [3]float64 // volume weighted element centers
	Instructions             uint64     // 0 unless counted with --perf
}

const exampleInputFile = `
########################################
Title: "Unit cube"
YoungsModulus: 210000
PoissonRatio: 0.3
QuadraturePoints: 8   # 1 or 8
ParallelDegree: 0     # 0 uses one worker per CPU
Sparse: false
MeshFile: ""          # Gmsh .msh file, if empty the Box is used
Box:
  Origin: [0, 0, 0]
  Size: [1, 1, 1]
  Divisions: [4, 4, 4]
########################################
`

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the global stiffness matrix of a hexahedral mesh",
	Long: `Assemble the global stiffness matrix of a hexahedral mesh read from a Gmsh
file or generated as a structured box, and report its size and checks`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		fmt.Println("assemble called")
		m3d := &Model3D{
			GridFile: viper.GetString("gridFile"),
			ICFile:   viper.GetString("inputConditionsFile"),
			Profile:  viper.GetBool("profile"),
			Perf:     viper.GetBool("perf"),
		}
		var ip *InputParameters.InputParameters3D
		if ip, err = processInput(m3d); err != nil {
			return
		}
		if m3d.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		var s *AssemblySummary
		if s, err = RunAssemble(m3d, ip); err != nil {
			return
		}
		s.Print()
		return
	},
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in Gmsh (.msh) format, overrides MeshFile")
	AssembleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- YoungsModulus\n\t- PoissonRatio")
	AssembleCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	AssembleCmd.Flags().Bool("perf", false, "count CPU instructions spent in assembly (linux)")
	for _, name := range []string{"gridFile", "inputConditionsFile", "profile", "perf"} {
		if err := viper.BindPFlag(name, AssembleCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func processInput(m3d *Model3D) (ip *InputParameters.InputParameters3D, err error) {
	if len(m3d.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleInputFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(m3d.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters3D{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", m3d.ICFile, err)
	}
	if len(m3d.GridFile) != 0 {
		ip.MeshFile = m3d.GridFile
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

func readMesh(ip *InputParameters.InputParameters3D) (msh *mesh.Mesh, err error) {
	if len(ip.MeshFile) != 0 {
		msh, err = mesh.ReadMeshFile(ip.MeshFile)
	} else {
		msh, err = mesh.NewBox(ip.BoxOrigin(), ip.BoxSize(), ip.Box.Divisions)
	}
	if err != nil {
		return
	}
	if err = msh.Validate(); err != nil {
		return nil, err
	}
	return
}

// RunAssemble builds the mesh, assembles the global stiffness matrix and
// collects the summary checks
func RunAssemble(m3d *Model3D, ip *InputParameters.InputParameters3D) (s *AssemblySummary, err error) {
	var (
		msh  *mesh.Mesh
		rule FEM3D.QuadratureRule
		as   *FEM3D.Assembler
		K    mat.Matrix
	)
	ip.Print()

	fmt.Println("Starting mesh input...")
	if msh, err = readMesh(ip); err != nil {
		return
	}
	msh.PrintStatistics()
	fmt.Println("Finished mesh input.")

	if rule, err = ip.Rule(); err != nil {
		return
	}
	if as, err = FEM3D.NewAssembler(ip.Material(), rule, ip.ParallelDegree); err != nil {
		return
	}
	fmt.Printf("Material: %v, quadrature: %v\n", as.Material, as.Rule)
	s = &AssemblySummary{
		NumVertices: msh.NumVertices(),
		NumElements: msh.NumElements(),
		NumDOF:      FEM3D.DOFPerNode * msh.NumVertices(),
	}
	for _, element := range msh.Elements {
		var (
			X   [][]float64
			vol float64
		)
		if X, err = FEM3D.ElementNodes(msh.Vertices, element); err != nil {
			return nil, err
		}
		if vol, err = FEM3D.ElementVolume(X, rule); err != nil {
			return nil, err
		}
		s.Volume += vol
		center := FEM3D.InterpolateCoordinates(X, [3]float64{})
		for i := range center {
			s.Centroid[i] += vol * center[i]
		}
	}
	if s.Volume > 0 {
		for i := range s.Centroid {
			s.Centroid[i] /= s.Volume
		}
	}

	fmt.Println("Starting assembly...")
	assemble := func() (err error) {
		if ip.Sparse {
			Ks, err := as.AssembleSparse(msh.Vertices, msh.Elements)
			if err != nil {
				return err
			}
			s.StoredNNZ = Ks.NNZ()
			K = Ks
			return nil
		}
		K, err = as.Assemble(msh.Vertices, msh.Elements)
		return
	}
	if m3d.Perf {
		var (
			ran         bool
			assembleErr error
		)
		counted := func() error {
			ran = true
			assembleErr = assemble()
			return assembleErr
		}
		if s.Instructions, err = countInstructions(counted); err != nil {
			fmt.Printf("instruction counting unavailable: %v\n", err)
			s.Instructions = 0
			if !ran {
				assembleErr = assemble()
			}
		}
		err = assembleErr
	} else {
		err = assemble()
	}
	if err != nil {
		return nil, err
	}
	fmt.Println("Finished assembly.")

	fmt.Println("Starting sparsity pattern...")
	P, err := FEM3D.SparsityPattern(msh.NumVertices(), msh.Elements)
	if err != nil {
		return nil, err
	}
	s.PatternNNZ = P.NNZ()
	fmt.Println("Finished sparsity pattern.")

	s.MaxAsymmetry = utils.MaxAsymmetry(K)
	s.Trace = utils.Trace(K)
	return
}

func (s *AssemblySummary) Print() {
	fmt.Printf("Vertices: %d, Hexahedra: %d\n", s.NumVertices, s.NumElements)
	fmt.Printf("Global stiffness: %d x %d\n", s.NumDOF, s.NumDOF)
	fmt.Printf("Structural non-zeros: %d (%.3f%% fill)\n", s.PatternNNZ,
		100*float64(s.PatternNNZ)/float64(s.NumDOF)/float64(s.NumDOF))
	if s.StoredNNZ > 0 {
		fmt.Printf("Stored non-zeros: %d\n", s.StoredNNZ)
	}
	fmt.Printf("Mesh volume: %g\n", s.Volume)
	fmt.Printf("Mesh centroid: %v\n", s.Centroid)
	fmt.Printf("Max asymmetry: %g\n", s.MaxAsymmetry)
	fmt.Printf("Trace: %g\n", s.Trace)
	if s.Instructions > 0 {
		fmt.Printf("CPU instructions in assembly: %d\n", s.Instructions)
	}
	fmt.Println(utils.GetMemUsage())
}
