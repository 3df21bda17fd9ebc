package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/sorbet/FEM3D"
)

// Parameters obtained from the YAML input file
type InputParameters3D struct {
	Title            string   `yaml:"Title"`
	YoungsModulus    float64  `yaml:"YoungsModulus"`
	PoissonRatio     float64  `yaml:"PoissonRatio"`
	QuadraturePoints int      `yaml:"QuadraturePoints"` // 1 or 8, defaults to 8
	ParallelDegree   int      `yaml:"ParallelDegree"`   // < 1 uses one worker per CPU
	Sparse           bool     `yaml:"Sparse"`
	MeshFile         string   `yaml:"MeshFile"` // Gmsh .msh file, the Box is used when empty
	Box              BoxInput `yaml:"Box"`
}

type BoxInput struct {
	Origin    [3]float64 `yaml:"Origin"`
	Size      [3]float64 `yaml:"Size"`
	Divisions [3]int     `yaml:"Divisions"`
}

func (ip *InputParameters3D) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.QuadraturePoints == 0 {
		ip.QuadraturePoints = FEM3D.EightPoint.NumPoints()
	}
	return
}

// Validate checks the material and quadrature settings and, when no mesh file
// is named, the box description
func (ip *InputParameters3D) Validate() (err error) {
	if err = ip.Material().Validate(); err != nil {
		return
	}
	if _, err = ip.Rule(); err != nil {
		return
	}
	if len(ip.MeshFile) == 0 {
		for i := 0; i < 3; i++ {
			if ip.Box.Divisions[i] < 1 {
				return fmt.Errorf("box divisions must be positive, have %v", ip.Box.Divisions)
			}
			if !(ip.Box.Size[i] > 0) {
				return fmt.Errorf("box size must be positive, have %v", ip.Box.Size)
			}
		}
	}
	return
}

func (ip *InputParameters3D) Material() FEM3D.Material {
	return FEM3D.Material{YoungsModulus: ip.YoungsModulus, PoissonRatio: ip.PoissonRatio}
}

func (ip *InputParameters3D) Rule() (FEM3D.QuadratureRule, error) {
	return FEM3D.NewQuadratureRule(ip.QuadraturePoints)
}

func (ip *InputParameters3D) BoxOrigin() r3.Vec {
	return r3.Vec{X: ip.Box.Origin[0], Y: ip.Box.Origin[1], Z: ip.Box.Origin[2]}
}

func (ip *InputParameters3D) BoxSize() r3.Vec {
	return r3.Vec{X: ip.Box.Size[0], Y: ip.Box.Size[1], Z: ip.Box.Size[2]}
}

func (ip *InputParameters3D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%12.5g\t\t= Young's Modulus\n", ip.YoungsModulus)
	fmt.Printf("%12.5f\t\t= Poisson Ratio\n", ip.PoissonRatio)
	fmt.Printf("[%d]\t\t\t= Quadrature Points\n", ip.QuadraturePoints)
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", ip.ParallelDegree)
	fmt.Printf("[%v]\t\t\t= Sparse\n", ip.Sparse)
	if len(ip.MeshFile) != 0 {
		fmt.Printf("[%s]\t= Mesh File\n", ip.MeshFile)
		return
	}
	fmt.Printf("%v\t\t= Box Origin\n", ip.Box.Origin)
	fmt.Printf("%v\t\t= Box Size\n", ip.Box.Size)
	fmt.Printf("%v\t\t= Box Divisions\n", ip.Box.Divisions)
}
