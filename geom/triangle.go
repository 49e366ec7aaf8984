package geom

import "math"

// Triangle is a 3-vertex polygon used by the corner cutoff step to clip
// the convex hull against each image corner.
type Triangle struct {
	P1, P2, P3 Point
}

func angle(dy, dx float64) float64 {
	return math.Atan2(dy, dx)
}

// LineAngle returns the direction of an edge, used to orient the
// cutoff triangle along the hull edge it's built from.
func LineAngle(l Line) float64 {
	return angle(float64(l.End.Y-l.Start.Y), float64(l.End.X-l.Start.X))
}

// BuildTriangle constructs an isoceles triangle whose apex is
// bisector.Start and whose base is centered at bisector.End (the
// midpoint of the desired base), oriented by angle, with the given
// base length.
func BuildTriangle(bisector Line, angleRad float64, length int32) Triangle {
	half := float64(length) / 2

	midpoint := bisector.End

	x1 := float64(midpoint.X) + half*math.Cos(angleRad)
	y1 := float64(midpoint.Y) + half*math.Sin(angleRad)

	x2 := float64(midpoint.X) - half*math.Cos(angleRad)
	y2 := float64(midpoint.Y) - half*math.Sin(angleRad)

	return Triangle{
		P1: bisector.Start,
		P2: Point{X: int32(x1), Y: int32(y1)},
		P3: Point{X: int32(x2), Y: int32(y2)},
	}
}
