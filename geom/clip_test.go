package geom

import "testing"

func polygonArea(points []Point) float64 {
	n := len(points)
	var sum int64
	for i := 0; i < n; i++ {
		a := points[i]
		b := points[(i+1)%n]
		sum += int64(a.X)*int64(b.Y) - int64(b.X)*int64(a.Y)
	}
	if sum < 0 {
		sum = -sum
	}
	return float64(sum) / 2
}

func TestCutCornersProducesConvexOctagon(t *testing.T) {
	// 100x100 rectangle, CCW.
	rect := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	centroid := Point{X: 50, Y: 50}

	// Chop each corner with a diagonal chord 20 units in from the corner.
	cuts := []Line{
		{Start: Point{X: 0, Y: 20}, End: Point{X: 20, Y: 0}},     // bottom-left
		{Start: Point{X: 80, Y: 0}, End: Point{X: 100, Y: 20}},    // bottom-right
		{Start: Point{X: 100, Y: 80}, End: Point{X: 80, Y: 100}},  // top-right
		{Start: Point{X: 20, Y: 100}, End: Point{X: 0, Y: 80}},    // top-left
	}

	result := CutCorners(rect, cuts, centroid)
	if len(result) != 8 {
		t.Fatalf("expected an octagon (8 vertices), got %d: %v", len(result), result)
	}

	pt := GetPolygonType(toUV(result))
	if pt != Convex {
		t.Fatalf("expected convex result, got %v: %v", pt, result)
	}

	area := polygonArea(result)
	// Rectangle area 10000 minus four 20x20/2=200 corner triangles = 9200.
	if area < 9100 || area > 9300 {
		t.Fatalf("unexpected area after corner cuts: %v", area)
	}
}

func TestCutCornersNoCutsIsIdentity(t *testing.T) {
	rect := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	result := CutCorners(rect, nil, Point{X: 5, Y: 5})
	if len(result) != 4 {
		t.Fatalf("expected rectangle unchanged, got %v", result)
	}
}

func TestIntersectRectNineSlicePartition(t *testing.T) {
	subject := []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	guide := Rect{Left: 30, Bottom: 30, Right: 70, Top: 70}

	regions := []Rect{
		{NegInf, NegInf, guide.Left, guide.Bottom},
		{guide.Left, NegInf, guide.Right, guide.Bottom},
		{guide.Right, NegInf, PosInf, guide.Bottom},

		{NegInf, guide.Bottom, guide.Left, guide.Top},
		{guide.Left, guide.Bottom, guide.Right, guide.Top},
		{guide.Right, guide.Bottom, PosInf, guide.Top},

		{NegInf, guide.Top, guide.Left, PosInf},
		{guide.Left, guide.Top, guide.Right, PosInf},
		{guide.Right, guide.Top, PosInf, PosInf},
	}

	var total float64
	nonEmpty := 0
	for _, r := range regions {
		result := IntersectRect(subject, r)
		if len(result) == 0 {
			continue
		}
		nonEmpty++
		total += polygonArea(result)
	}

	if nonEmpty != 9 {
		t.Fatalf("expected all 9 regions non-empty, got %d", nonEmpty)
	}
	if total < 9900 || total > 10100 {
		t.Fatalf("regions should tile the 100x100 subject without overlap, got area %v", total)
	}
}

func toUV(points []Point) []PointUV {
	out := make([]PointUV, len(points))
	for i, p := range points {
		out[i] = PointUV{X: uint16(p.X), Y: uint16(p.Y)}
	}
	return out
}
