// Package geom implements the small integer/float geometry kernel the
// packer and the polygon extraction pipeline share: points, lines,
// rectangles, triangles, convex hulls and the two polygon boolean
// operations (difference, intersection) the corner cutoff and 9-slice
// algorithms need.
//
// Everything here operates on plain value types on purpose: the
// callers (Item's polygon generation, the packer adapter) run per-item,
// and, when config.Parallel is set, concurrently across items, so a
// geom value must never be shared mutable state.
package geom

import "math"

// Point is an integer 2D point, used for XY (sprite-space) coordinates.
type Point struct {
	X, Y int32
}

// PointF is a floating point 2D point, used internally by the polygon
// math (ray casts, triangle construction) before rounding back to Point.
type PointF struct {
	X, Y float64
}

// PointUV is an atlas-space coordinate; UV addresses are always
// non-negative pixel offsets inside an atlas.
type PointUV struct {
	X, Y uint16
}

func NewPointF(x, y float64) PointF { return PointF{X: x, Y: y} }

// Dist returns the Euclidean distance between two points.
func Dist(a, b PointF) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CeilPoint rounds a PointF up to an integer Point, ceiling rather
// than rounding or truncating, when emitting vertices.
func CeilPoint(p PointF) Point {
	return Point{X: int32(math.Ceil(p.X)), Y: int32(math.Ceil(p.Y))}
}
