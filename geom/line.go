package geom

// Line is a segment in integer sprite space.
type Line struct {
	Start, End Point
}

// LineF is a segment in float space, used for ray casts.
type LineF struct {
	Start, End PointF
}

// Angle returns the line's direction in radians, atan2(dy, dx).
func (l LineF) Angle() float64 {
	return angle(l.End.Y-l.Start.Y, l.End.X-l.Start.X)
}

// LineIntersect computes the intersection point of two segments using
// the standard determinant formula. It returns ok=false when the
// segments are parallel or the intersection point falls outside either
// segment's bounding interval (see
// https://flassari.is/2008/11/line-line-intersection-in-cplusplus).
func LineIntersect(l1, l2 LineF) (PointF, bool) {
	x1, x2, x3, x4 := l1.Start.X, l1.End.X, l2.Start.X, l2.End.X
	y1, y2, y3, y4 := l1.Start.Y, l1.End.Y, l2.Start.Y, l2.End.Y

	determinant := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if determinant == 0 {
		return PointF{}, false
	}

	pre := x1*y2 - y1*x2
	post := x3*y4 - y3*x4
	x := (pre*(x3-x4) - (x1-x2)*post) / determinant
	y := (pre*(y3-y4) - (y1-y2)*post) / determinant

	if x < min(x1, x2) || x > max(x1, x2) || x < min(x3, x4) || x > max(x3, x4) {
		return PointF{}, false
	}
	if y < min(y1, y2) || y > max(y1, y2) || y < min(y3, y4) || y > max(y3, y4) {
		return PointF{}, false
	}
	return PointF{X: x, Y: y}, true
}

// RayPolygonIntersect walks a closed polygon's edges in order and
// returns the index pair of the first edge the ray crosses, plus the
// intersection point. The polygon is assumed to be wound as a simple
// closed loop (as produced by QuickHull).
func RayPolygonIntersect(polygon []Point, ray LineF) (p1Idx, p2Idx int, point PointF, ok bool) {
	n := len(polygon)
	for i := 0; i < n; i++ {
		a := i
		b := (i + 1) % n

		candidate := LineF{
			Start: PointF{X: float64(polygon[a].X), Y: float64(polygon[a].Y)},
			End:   PointF{X: float64(polygon[b].X), Y: float64(polygon[b].Y)},
		}

		if pt, hit := LineIntersect(candidate, ray); hit {
			return a, b, pt, true
		}
	}
	return 0, 0, PointF{}, false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
