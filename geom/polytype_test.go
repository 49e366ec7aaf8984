package geom

import "testing"

func TestGetPolygonTypeConvex(t *testing.T) {
	square := []PointUV{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := GetPolygonType(square); got != Convex {
		t.Fatalf("expected Convex, got %v", got)
	}
}

func TestGetPolygonTypeConcave(t *testing.T) {
	// An arrow / chevron shape is concave.
	shape := []PointUV{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}}
	if got := GetPolygonType(shape); got != Concave {
		t.Fatalf("expected Concave, got %v", got)
	}
}

func TestGetPolygonTypeDegenerate(t *testing.T) {
	if got := GetPolygonType([]PointUV{{0, 0}, {1, 1}}); got != Degenerate {
		t.Fatalf("expected Degenerate for <3 points, got %v", got)
	}
	colinear := []PointUV{{0, 0}, {5, 0}, {10, 0}}
	if got := GetPolygonType(colinear); got != Degenerate {
		t.Fatalf("expected Degenerate for colinear points, got %v", got)
	}
}
