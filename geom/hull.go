package geom

import "sort"

// QuickHull computes the convex hull of a set of integer points and
// returns it as a simple polygon whose interior lies to the right of
// every edge (clockwise with y pointing up, the opposite winding to the
// counter-clockwise fallback rectangle in item.go). This
// is a standard textbook quickhull, derived from the calling
// convention in Item.cpp (a single Container<Point> in, a single
// ordered hull polygon out).
func QuickHull(points []Point) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}

	minIdx, maxIdx := 0, 0
	for i, p := range points {
		if p.X < points[minIdx].X {
			minIdx = i
		}
		if p.X > points[maxIdx].X {
			maxIdx = i
		}
	}
	minP, maxP := points[minIdx], points[maxIdx]

	var left, right []Point
	for i, p := range points {
		if i == minIdx || i == maxIdx {
			continue
		}
		if side(minP, maxP, p) > 0 {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}

	var hull []Point
	hull = append(hull, minP)
	hull = append(hull, hullSide(left, minP, maxP)...)
	hull = append(hull, maxP)
	hull = append(hull, hullSide(right, maxP, minP)...)

	return dedupConsecutive(hull)
}

// side returns twice the signed area of triangle (a, b, p): positive
// when p is to the left of a->b, negative to the right, zero when
// colinear.
func side(a, b, p Point) int64 {
	return int64(b.X-a.X)*int64(p.Y-a.Y) - int64(b.Y-a.Y)*int64(p.X-a.X)
}

// distance is the unnormalized distance of p from line a->b, used only
// to rank candidates (the common factor from `side` is fine for that).
func distance(a, b, p Point) int64 {
	d := side(a, b, p)
	if d < 0 {
		return -d
	}
	return d
}

// hullSide recursively finds hull points strictly to the left of a->b.
func hullSide(points []Point, a, b Point) []Point {
	if len(points) == 0 {
		return nil
	}

	farIdx := 0
	farDist := int64(-1)
	for i, p := range points {
		d := distance(a, b, p)
		if d > farDist {
			farDist = d
			farIdx = i
		}
	}
	far := points[farIdx]

	var leftOfAFar, leftOfFarB []Point
	for i, p := range points {
		if i == farIdx {
			continue
		}
		if side(a, far, p) > 0 {
			leftOfAFar = append(leftOfAFar, p)
		} else if side(far, b, p) > 0 {
			leftOfFarB = append(leftOfFarB, p)
		}
	}

	var result []Point
	result = append(result, hullSide(leftOfAFar, a, far)...)
	result = append(result, far)
	result = append(result, hullSide(leftOfFarB, far, b)...)
	return result
}

func dedupConsecutive(points []Point) []Point {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// sortLexicographic is used only by tests to compare hulls independent
// of rotation/starting point.
func sortLexicographic(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}
