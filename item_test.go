package atlasgen

import (
	"testing"

	"github.com/sc-workshop/AtlasGenerator/geom"
	"github.com/sc-workshop/AtlasGenerator/raster"
)

func solidRGBA(w, h int, r, g, b, a byte) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		buf[i*4+0] = r
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	return buf
}

func mustItemFromBytes(t *testing.T, w, h int, depth raster.PixelDepth, data []byte) *Item {
	t.Helper()
	img, err := raster.FromBytes(w, h, depth, data)
	if err != nil {
		t.Fatalf("raster.FromBytes: %v", err)
	}
	return FromImage(img, false)
}

func TestFromColorIsColorfillRectangle(t *testing.T) {
	it, err := FromColor(10, 20, 30, 255)
	if err != nil {
		t.Fatalf("FromColor: %v", err)
	}
	if !it.IsColorfill() {
		t.Fatal("expected IsColorfill")
	}
	if err := it.generateImagePolygon(DefaultConfig()); err != nil {
		t.Fatalf("generateImagePolygon: %v", err)
	}
	if !it.IsRectangle() {
		t.Fatal("expected a 1x1 colorfill to classify as a rectangle")
	}
	if len(it.Vertices()) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(it.Vertices()))
	}
}

func TestGenerateImagePolygonFullyTransparentFallsBackToRectangle(t *testing.T) {
	it := mustItemFromBytes(t, 8, 8, raster.RGBA8, solidRGBA(8, 8, 0, 0, 0, 0))
	cfg := DefaultConfig()
	if err := it.generateImagePolygon(cfg); err != nil {
		t.Fatalf("generateImagePolygon: %v", err)
	}
	if !it.IsRectangle() {
		t.Fatal("expected a fully transparent image to fall back to its 1x1 rectangle")
	}
}

func TestGenerateImagePolygonSmallOpaqueImageIsRectangle(t *testing.T) {
	// Below rectangleThreshold (cw+ch < 100), so the dedicated hull path
	// never runs; emitRectangle is taken directly.
	it := mustItemFromBytes(t, 8, 8, raster.RGBA8, solidRGBA(8, 8, 200, 100, 50, 255))
	cfg := DefaultConfig()
	if err := it.generateImagePolygon(cfg); err != nil {
		t.Fatalf("generateImagePolygon: %v", err)
	}
	if !it.IsRectangle() {
		t.Fatal("expected small opaque image to classify as a rectangle")
	}
	if it.Status() != StatusValid {
		t.Fatalf("expected StatusValid, got %v", it.Status())
	}
}

func TestEqualsSharedHandle(t *testing.T) {
	a := mustItemFromBytes(t, 2, 2, raster.RGBA8, solidRGBA(2, 2, 1, 2, 3, 255))
	b := mustItemFromBytes(t, 2, 2, raster.RGBA8, solidRGBA(2, 2, 99, 99, 99, 255))
	b.handle = a.handle
	if !a.Equals(b) {
		t.Fatal("expected items sharing a handle to be Equal")
	}
}

func TestEqualsContentHash(t *testing.T) {
	a := mustItemFromBytes(t, 2, 2, raster.RGBA8, solidRGBA(2, 2, 9, 9, 9, 255))
	b := mustItemFromBytes(t, 2, 2, raster.RGBA8, solidRGBA(2, 2, 9, 9, 9, 255))
	if !a.Equals(b) {
		t.Fatal("expected pixel-identical items to be Equal via content hash")
	}

	c := mustItemFromBytes(t, 2, 2, raster.RGBA8, solidRGBA(2, 2, 1, 1, 1, 255))
	if a.Equals(c) {
		t.Fatal("expected differently-colored items not to be Equal")
	}
}

func TestMarkAsCustomRejectsConcavePolygon(t *testing.T) {
	it := mustItemFromBytes(t, 4, 4, raster.RGBA8, solidRGBA(4, 4, 0, 0, 0, 255))
	// A non-convex (notched) quad.
	concave := []Vertex{
		{XY: geom.Point{X: 0, Y: 0}, UV: geom.PointUV{X: 0, Y: 0}},
		{XY: geom.Point{X: 4, Y: 0}, UV: geom.PointUV{X: 4, Y: 0}},
		{XY: geom.Point{X: 2, Y: 2}, UV: geom.PointUV{X: 2, Y: 2}},
		{XY: geom.Point{X: 4, Y: 4}, UV: geom.PointUV{X: 4, Y: 4}},
	}
	if it.MarkAsCustom(concave) {
		t.Fatal("expected a concave polygon to be rejected")
	}
	if it.Status() != StatusInvalidPolygon {
		t.Fatalf("expected StatusInvalidPolygon, got %v", it.Status())
	}
}

func TestMarkAsCustomAcceptsConvexPolygon(t *testing.T) {
	it := mustItemFromBytes(t, 4, 4, raster.RGBA8, solidRGBA(4, 4, 0, 0, 0, 255))
	square := []Vertex{
		{XY: geom.Point{X: 0, Y: 0}, UV: geom.PointUV{X: 0, Y: 0}},
		{XY: geom.Point{X: 4, Y: 0}, UV: geom.PointUV{X: 4, Y: 0}},
		{XY: geom.Point{X: 4, Y: 4}, UV: geom.PointUV{X: 4, Y: 4}},
		{XY: geom.Point{X: 0, Y: 4}, UV: geom.PointUV{X: 0, Y: 4}},
	}
	if !it.MarkAsCustom(square) {
		t.Fatal("expected an axis-aligned square to be accepted as convex")
	}
	if it.Status() != StatusValid {
		t.Fatalf("expected StatusValid, got %v", it.Status())
	}
	if !it.IsRectangle() {
		t.Fatal("expected a 4-vertex convex polygon to be classified as a rectangle")
	}
}

func TestGetNineSliceRequiresRectangle(t *testing.T) {
	it := mustItemFromBytes(t, 4, 4, raster.RGBA8, solidRGBA(4, 4, 0, 0, 0, 255))
	it.isRectangle = false
	it.vertices = []Vertex{{XY: geom.Point{X: 0, Y: 0}, UV: geom.PointUV{X: 0, Y: 0}}}
	if _, err := it.GetNineSlice(geom.Rect{}, Transformation{}); err == nil {
		t.Fatal("expected an error for a non-rectangular item")
	}
}

// TestGenerateImagePolygonCircleProducesMultiVertexPolygon exercises
// the full contour-walk -> quickhull -> corner-cutoff -> clip pipeline
// on a non-rectangular alpha mask, rather than only its sub-primitives.
func TestGenerateImagePolygonCircleProducesMultiVertexPolygon(t *testing.T) {
	const size = 128
	const radius = 58.0
	center := float64(size) / 2
	buf := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			i := (y*size + x) * 4
			buf[i+0], buf[i+1], buf[i+2], buf[i+3] = 200, 150, 100, 255
		}
	}
	it := mustItemFromBytes(t, size, size, raster.RGBA8, buf)
	cfg := DefaultConfig()
	if err := it.generateImagePolygon(cfg); err != nil {
		t.Fatalf("generateImagePolygon: %v", err)
	}
	if it.Status() != StatusValid {
		t.Fatalf("expected StatusValid, got %v", it.Status())
	}
	if it.IsRectangle() {
		t.Fatal("expected a circular alpha mask to produce a non-rectangular polygon")
	}
	if n := len(it.Vertices()); n < 5 || n > 16 {
		t.Fatalf("expected the corner-cutoff pipeline to produce a modest polygon for a circle, got %d vertices", n)
	}
}

func TestGetNineSlicePartitionsIntoRegions(t *testing.T) {
	it := mustItemFromBytes(t, 10, 10, raster.RGBA8, solidRGBA(10, 10, 0, 0, 0, 255))
	cfg := DefaultConfig()
	if err := it.generateImagePolygon(cfg); err != nil {
		t.Fatalf("generateImagePolygon: %v", err)
	}
	guide := geom.Rect{Left: 2, Top: 2, Right: 8, Bottom: 8}
	regions, err := it.GetNineSlice(guide, it.Transform())
	if err != nil {
		t.Fatalf("GetNineSlice: %v", err)
	}
	if len(regions) == 0 {
		t.Fatal("expected at least one sliced region for a guide inside the item's bounds")
	}
	if len(regions) > 9 {
		t.Fatalf("expected at most 9 regions, got %d", len(regions))
	}
}
