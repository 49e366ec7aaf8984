package geom

import "math"

// NegInf and PosInf stand in for an "unbounded" rectangle edge in the
// 9-slice guide partition.
const (
	NegInf = math.MinInt32
	PosInf = math.MaxInt32
)

// clipHalfPlane runs one pass of Sutherland-Hodgman, keeping the part
// of subject on the side of edgeStart->edgeEnd where the cross product
// is >= 0 (i.e. the left side, traveling from edgeStart to edgeEnd).
// subject is assumed convex, so the result is always a single, still
// convex, polygon (possibly empty).
func clipHalfPlane(subject []PointF, edgeStart, edgeEnd PointF) []PointF {
	if len(subject) == 0 {
		return nil
	}

	ex, ey := edgeEnd.X-edgeStart.X, edgeEnd.Y-edgeStart.Y
	inside := func(p PointF) bool {
		return (ex*(p.Y-edgeStart.Y) - ey*(p.X-edgeStart.X)) >= 0
	}

	var out []PointF
	n := len(subject)
	for i := 0; i < n; i++ {
		cur := subject[i]
		prev := subject[(i-1+n)%n]

		curIn := inside(cur)
		prevIn := inside(prev)

		if curIn {
			if !prevIn {
				if pt, ok := segmentLineCross(prev, cur, edgeStart, edgeEnd); ok {
					out = append(out, pt)
				}
			}
			out = append(out, cur)
		} else if prevIn {
			if pt, ok := segmentLineCross(prev, cur, edgeStart, edgeEnd); ok {
				out = append(out, pt)
			}
		}
	}
	return out
}

// segmentLineCross intersects segment p0->p1 against the infinite line
// through edgeStart/edgeEnd (not bounded by the clip edge's own
// segment length).
func segmentLineCross(p0, p1, edgeStart, edgeEnd PointF) (PointF, bool) {
	x1, y1 := p0.X, p0.Y
	x2, y2 := p1.X, p1.Y
	x3, y3 := edgeStart.X, edgeStart.Y
	x4, y4 := edgeEnd.X, edgeEnd.Y

	det := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if det == 0 {
		return PointF{}, false
	}
	pre := x1*y2 - y1*x2
	post := x3*y4 - y3*x4
	x := (pre*(x3-x4) - (x1-x2)*post) / det
	y := (pre*(y3-y4) - (y1-y2)*post) / det
	return PointF{X: x, Y: y}, true
}

func toPointF(p Point) PointF { return PointF{X: float64(p.X), Y: float64(p.Y)} }

// CutCorners clips a convex subject polygon by successively removing
// the half-plane on the far side of each cut line from keepSide. This
// implements difference(rectangle, union(triangles)) under NonZero fill for the
// case this module actually produces: each cutoff triangle's relevant
// edge is the hull chord (p1, p2), and since the chord only ever
// removes one convex corner of the rectangle, clipping the rectangle
// against the half-plane bounded by that chord (keeping the side that
// contains the image centroid) is equivalent to subtracting the
// triangle and keeps the result convex by construction, matching the
// polygon-convexity invariant every Valid item must satisfy.
func CutCorners(subject []Point, cutLines []Line, keepSide Point) []Point {
	poly := make([]PointF, len(subject))
	for i, p := range subject {
		poly[i] = toPointF(p)
	}
	keep := toPointF(keepSide)

	for _, cut := range cutLines {
		a, b := toPointF(cut.Start), toPointF(cut.End)
		// Orient the half-plane so that keepSide ends up on the kept
		// (left, cross >= 0) side.
		ex, ey := b.X-a.X, b.Y-a.Y
		if (ex*(keep.Y-a.Y) - ey*(keep.X-a.X)) < 0 {
			a, b = b, a
		}
		poly = clipHalfPlane(poly, a, b)
		if len(poly) == 0 {
			break
		}
	}

	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = CeilPoint(p)
	}
	return out
}

// IntersectRect clips a convex subject polygon against an axis-aligned
// rectangle whose edges may be NegInf/PosInf (unbounded), used to
// partition a sliced sprite into nine regions.
func IntersectRect(subject []Point, rect Rect) []Point {
	poly := make([]PointF, len(subject))
	for i, p := range subject {
		poly[i] = toPointF(p)
	}

	clipEdge := func(a, b PointF) {
		if len(poly) == 0 {
			return
		}
		poly = clipHalfPlane(poly, a, b)
	}

	// Left bound: x >= rect.Left (keep side is +x direction).
	if rect.Left != NegInf {
		clipEdge(PointF{X: float64(rect.Left), Y: 1}, PointF{X: float64(rect.Left), Y: 0})
	}
	// Right bound: x <= rect.Right.
	if rect.Right != PosInf {
		clipEdge(PointF{X: float64(rect.Right), Y: 0}, PointF{X: float64(rect.Right), Y: 1})
	}
	// Bottom bound: y >= rect.Bottom.
	if rect.Bottom != NegInf {
		clipEdge(PointF{X: 0, Y: float64(rect.Bottom)}, PointF{X: 1, Y: float64(rect.Bottom)})
	}
	// Top bound: y <= rect.Top.
	if rect.Top != PosInf {
		clipEdge(PointF{X: 1, Y: float64(rect.Top)}, PointF{X: 0, Y: float64(rect.Top)})
	}

	out := make([]Point, len(poly))
	for i, p := range poly {
		out[i] = CeilPoint(p)
	}
	return out
}
