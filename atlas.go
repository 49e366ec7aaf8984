package atlasgen

import (
	"math"

	packerpkg "github.com/sc-workshop/AtlasGenerator/internal/packer"
	"github.com/sc-workshop/AtlasGenerator/raster"
)

// newAtlasPage allocates a zeroed atlas buffer of the given size and
// depth.
func newAtlasPage(size packerpkg.Rect, depth raster.PixelDepth) raster.Image {
	return raster.New(size.W, size.H, depth)
}

// blitItem draws one item's source image into page at the placement
// recorded on it (bin-relative translation, quadrant rotation). It
// first builds an extruded copy of the source with
// extrude pixels of border replicated outward, then for every pixel of
// that extruded source computes where fixed-quadrant rotation sends it
// and writes it into page, alpha-threshold dropping anything under
// cfg.AlphaThreshold() while leaving the rest of the page untouched.
func blitItem(it *Item, page raster.Image, cfg Config) {
	src := it.handle.img
	extrude := cfg.Extrude()
	extruded := src.CopyMakeBorder(extrude)
	defer extruded.Close()

	ox := int(it.transform.Translation.X) - extrude
	oy := int(it.transform.Translation.Y) - extrude

	rot := quadrantOf(it.transform.Rotation)
	ew, eh := extruded.Width(), extruded.Height()

	for h := 0; h < eh; h++ {
		for w := 0; w < ew; w++ {
			if extruded.Alpha(w, h) < cfg.AlphaThreshold() {
				continue
			}
			sw, sh := rotateQuadrant(rot, w, h, ew, eh)
			dx, dy := sw+ox, sh+oy
			if dx < 0 || dy < 0 || dx >= page.Width() || dy >= page.Height() {
				continue
			}
			page.Set(dx, dy, extruded.At(w, h))
		}
	}
}

// quadrantOf reduces a Transformation's rotation (radians) back to one
// of the packer's four fixed quadrants, tolerating float rounding.
func quadrantOf(radians float64) packerpkg.Rotation {
	deg := radians * 180 / math.Pi
	switch {
	case deg > 45 && deg <= 135:
		return packerpkg.Rotate90
	case deg > 135 && deg <= 225:
		return packerpkg.Rotate180
	case deg > 225 && deg <= 315:
		return packerpkg.Rotate270
	default:
		return packerpkg.Rotate0
	}
}

// rotateQuadrant maps an extruded-source pixel (w, h), addressed in
// the unrotated source's own W x H (ew x eh) coordinate space, to the
// position it lands at after a fixed quadrant rotation.
func rotateQuadrant(rot packerpkg.Rotation, w, h, ew, eh int) (sw, sh int) {
	switch rot {
	case packerpkg.Rotate90:
		return eh - 1 - h, w
	case packerpkg.Rotate180:
		return ew - 1 - w, eh - 1 - h
	case packerpkg.Rotate270:
		return h, ew - 1 - w
	default:
		return w, h
	}
}
