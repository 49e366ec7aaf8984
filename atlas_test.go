package atlasgen

import (
	"math"
	"testing"

	packerpkg "github.com/sc-workshop/AtlasGenerator/internal/packer"
	"github.com/sc-workshop/AtlasGenerator/raster"
)

func TestNewAtlasPageHasRequestedSizeAndDepth(t *testing.T) {
	page := newAtlasPage(packerpkg.Rect{W: 32, H: 64}, raster.RGBA8)
	defer page.Close()
	if page.Width() != 32 || page.Height() != 64 {
		t.Fatalf("expected 32x64, got %dx%d", page.Width(), page.Height())
	}
	if page.Depth() != raster.RGBA8 {
		t.Fatalf("expected RGBA8, got %v", page.Depth())
	}
}

func TestQuadrantOfBucketsRotations(t *testing.T) {
	cases := []struct {
		deg  float64
		want packerpkg.Rotation
	}{
		{0, packerpkg.Rotate0},
		{90, packerpkg.Rotate90},
		{180, packerpkg.Rotate180},
		{270, packerpkg.Rotate270},
		{359, packerpkg.Rotate0},
	}
	for _, c := range cases {
		got := quadrantOf(c.deg * math.Pi / 180)
		if got != c.want {
			t.Errorf("quadrantOf(%v deg) = %v, want %v", c.deg, got, c.want)
		}
	}
}

func TestRotateQuadrantIdentity(t *testing.T) {
	sw, sh := rotateQuadrant(packerpkg.Rotate0, 3, 5, 10, 10)
	if sw != 3 || sh != 5 {
		t.Fatalf("expected identity mapping, got (%d,%d)", sw, sh)
	}
}

func TestRotateQuadrant90SwapsAxes(t *testing.T) {
	ew, eh := 10, 6
	sw, sh := rotateQuadrant(packerpkg.Rotate90, 0, 0, ew, eh)
	if sw != eh-1 || sh != 0 {
		t.Fatalf("expected (%d,0), got (%d,%d)", eh-1, sw, sh)
	}
}

func TestBlitItemDropsPixelsBelowAlphaThreshold(t *testing.T) {
	src, err := raster.FromBytes(2, 2, raster.RGBA8, []byte{
		255, 0, 0, 255, 0, 255, 0, 0,
		0, 0, 255, 0, 255, 255, 0, 10,
	})
	if err != nil {
		t.Fatalf("raster.FromBytes: %v", err)
	}
	it := FromImage(src, false)
	it.transform = Transformation{}
	cfg := NewConfig(1024, 1024, 1, 0, 1, false, 0.6, nil)

	page := raster.New(2, 2, raster.RGBA8)
	defer page.Close()
	blitItem(it, page, cfg)

	if got := page.At(0, 0); got[3] != 255 {
		t.Fatalf("expected opaque source pixel to be blitted, got alpha %d", got[3])
	}
	if got := page.At(1, 0); got[3] != 0 {
		t.Fatalf("expected below-threshold pixel to be left untouched, got alpha %d", got[3])
	}
}
