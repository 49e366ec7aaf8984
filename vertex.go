package atlasgen

import (
	"math"

	"github.com/sc-workshop/AtlasGenerator/geom"
)

// Vertex pairs a sprite-local XY coordinate with the UV coordinate it
// maps to on the packed atlas, before Transformation is applied.
type Vertex struct {
	XY geom.Point
	UV geom.PointUV
}

// Transformation is the affine placement a packed item carries: a
// quadrant rotation plus an integer translation into atlas space.
type Transformation struct {
	Rotation    float64 // radians, one of {0, pi/2, pi, 3*pi/2}
	Translation geom.Point
}

// TransformPoint applies t to p using a ceiling-based formula:
// p' = (ceil(px*cos(theta) - py*sin(theta) + tx), ceil(py*cos(theta) + px*sin(theta) + ty)).
func (t Transformation) TransformPoint(p geom.Point) geom.Point {
	px, py := float64(p.X), float64(p.Y)
	cos, sin := math.Cos(t.Rotation), math.Sin(t.Rotation)
	// Snap the float residue of quadrant angles (cos(pi/2) is about 6e-17,
	// not 0) so the ceilings below don't round it up to the next integer.
	if math.Abs(cos) < 1e-9 {
		cos = 0
	}
	if math.Abs(sin) < 1e-9 {
		sin = 0
	}
	x := px*cos - py*sin + float64(t.Translation.X)
	y := py*cos + px*sin + float64(t.Translation.Y)
	return geom.Point{
		X: int32(math.Ceil(x)),
		Y: int32(math.Ceil(y)),
	}
}

// rotationRadians converts one of the packer's four fixed quadrant
// rotations to radians, reduced mod 2*pi.
func rotationRadians(degrees float64) float64 {
	return math.Mod(degrees, 360) * math.Pi / 180
}
