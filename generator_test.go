package atlasgen

import (
	"testing"

	"github.com/sc-workshop/AtlasGenerator/raster"
)

func solidItem(t *testing.T, w, h int, depth raster.PixelDepth, color []byte) *Item {
	t.Helper()
	buf := make([]byte, w*h*depth.Channels())
	for i := 0; i < w*h; i++ {
		copy(buf[i*depth.Channels():], color)
	}
	img, err := raster.FromBytes(w, h, depth, buf)
	if err != nil {
		t.Fatalf("raster.FromBytes: %v", err)
	}
	return FromImage(img, false)
}

func TestGenerateRejectsZeroDimensionItem(t *testing.T) {
	it := FromImage(raster.New(0, 0, raster.RGBA8), false)

	gen := NewGenerator(DefaultConfig())
	if _, err := gen.Generate([]*Item{it}); err == nil {
		t.Fatal("expected an error for a zero-dimension item")
	}
}

func TestGenerateRejectsItemLargerThanAtlas(t *testing.T) {
	cfg := NewConfig(MinTextureDimension, MinTextureDimension, 1, 0, 1, false, 0.6, nil)
	it := solidItem(t, MinTextureDimension+64, MinTextureDimension+64, raster.RGBA8, []byte{10, 20, 30, 255})

	gen := NewGenerator(cfg)
	if _, err := gen.Generate([]*Item{it}); err == nil {
		t.Fatal("expected an error for an item bigger than the atlas page")
	}
}

func TestGenerateMultipleDepthGroupsProduceSeparateAtlases(t *testing.T) {
	items := []*Item{
		solidItem(t, 16, 16, raster.RGBA8, []byte{1, 2, 3, 255}),
		solidItem(t, 16, 16, raster.L8, []byte{128}),
	}

	gen := NewGenerator(DefaultConfig())
	n, err := gen.Generate(items)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected one atlas page per distinct pixel depth, got %d", n)
	}
	if items[0].TextureIndex() == items[1].TextureIndex() {
		t.Fatal("expected distinct depth groups to land on separate atlas pages")
	}
}

func TestGeneratePacksDistinctItemsIntoAtlas(t *testing.T) {
	items := []*Item{
		solidItem(t, 16, 16, raster.RGBA8, []byte{255, 0, 0, 255}),
		solidItem(t, 16, 16, raster.RGBA8, []byte{0, 255, 0, 255}),
	}
	gen := NewGenerator(DefaultConfig())
	n, err := gen.Generate(items)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n == 0 || gen.AtlasCount() == 0 {
		t.Fatal("expected at least one atlas page to be produced")
	}
	for i, it := range items {
		if it.Status() != StatusValid {
			t.Fatalf("item %d: expected StatusValid, got %v", i, it.Status())
		}
		if len(it.Vertices()) == 0 {
			t.Fatalf("item %d: expected vertices to be populated", i)
		}
	}
}

func TestGenerateDeduplicatesIdenticalItems(t *testing.T) {
	same := []byte{10, 20, 30, 255}
	a := solidItem(t, 16, 16, raster.RGBA8, same)
	b := solidItem(t, 16, 16, raster.RGBA8, same)

	gen := NewGenerator(DefaultConfig())
	if _, err := gen.Generate([]*Item{a, b}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.TextureIndex() != b.TextureIndex() {
		t.Fatalf("expected duplicate items to share a texture index: %d vs %d", a.TextureIndex(), b.TextureIndex())
	}
	if len(a.Vertices()) != len(b.Vertices()) {
		t.Fatal("expected duplicate items to share the same vertex count")
	}
}

func TestGenerateGroupsByDepthInDescendingOrder(t *testing.T) {
	items := []*Item{
		solidItem(t, 16, 16, raster.L8, []byte{128}),
		solidItem(t, 16, 16, raster.RGBA8, []byte{1, 2, 3, 255}),
	}
	order := orderedDepths(items)
	if len(order) != 2 {
		t.Fatalf("expected 2 distinct depths, got %d", len(order))
	}
	if order[0] != raster.RGBA8 || order[1] != raster.L8 {
		t.Fatalf("expected RGBA8 before L8, got %v", order)
	}
}

func TestGenerateEmptyInputIsNoop(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	n, err := gen.Generate(nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n != 0 || gen.AtlasCount() != 0 {
		t.Fatalf("expected no atlas pages for empty input, got %d (count %d)", n, gen.AtlasCount())
	}
}
