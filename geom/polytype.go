package geom

// PolygonType classifies a sequence of points by the consistency of
// their turning direction.
type PolygonType int

const (
	Degenerate PolygonType = iota
	Convex
	Concave
)

// GetPolygonType classifies points via consistent cross-product sign:
// fewer than 3 points is Degenerate, a polygon whose consecutive edge
// cross products never change sign (ignoring near-zero colinear turns)
// is Convex, anything else is Concave.
func GetPolygonType(points []PointUV) PolygonType {
	n := len(points)
	if n < 3 {
		return Degenerate
	}

	var gotPositive, gotNegative bool
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		c := points[(i+2)%n]

		cross := int64(int32(b.X)-int32(a.X))*int64(int32(c.Y)-int32(b.Y)) -
			int64(int32(b.Y)-int32(a.Y))*int64(int32(c.X)-int32(b.X))

		if cross > 0 {
			gotPositive = true
		} else if cross < 0 {
			gotNegative = true
		}
	}

	switch {
	case gotPositive && gotNegative:
		return Concave
	case gotPositive || gotNegative:
		return Convex
	default:
		return Degenerate
	}
}
