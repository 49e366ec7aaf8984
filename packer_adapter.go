package atlasgen

import (
	"github.com/sc-workshop/AtlasGenerator/geom"
	packerpkg "github.com/sc-workshop/AtlasGenerator/internal/packer"
)

// packGroup runs the no-fit-polygon packer over one depth group's
// working items and writes back each
// item's texture_index (offset by binOffset, since atlases accumulate
// across groups) and transform. It returns the used size of every bin
// this group opened.
//
// Each item's own UV polygon (not just its bounding box) is handed to
// the packer so the occupancy grid it rasterizes reflects the sprite's
// actual silhouette; the polygon and the bounding box alike are
// inflated by 2*extrude before packing to reserve the minimum required
// spacing. The packer's returned offset is then shifted back by
// +extrude so the translation matches where the *un-padded* sprite
// belongs once the atlas builder un-shifts its own extruded buffer by
// -extrude (see atlas.go), keeping both halves of the padding
// bookkeeping consistent with each other.
func packGroup(items []*Item, cfg Config, binOffset int, onTick func(done, total int)) ([]packerpkg.Rect, error) {
	extrude := cfg.Extrude()
	inputs := make([]packerpkg.Item, len(items))
	for i, it := range items {
		inputs[i] = packerpkg.Item{
			ID:            i,
			Width:         int(it.currentSize.X) + 2*extrude,
			Height:        int(it.currentSize.Y) + 2*extrude,
			AllowRotation: true,
			Polygon:       uvPolygon(it, extrude),
		}
	}

	result, err := packerpkg.Pack(inputs, packerpkg.Config{
		BinWidth:  cfg.Width(),
		BinHeight: cfg.Height(),
		Accuracy:  cfg.Accuracy(),
		Progress:  onTick,
	})
	if err != nil {
		return nil, newError(Unknown, -1)
	}

	for _, p := range result.Placements {
		it := items[p.ItemID]
		it.textureIndex = binOffset + p.Bin
		it.transform = Transformation{
			Rotation: rotationRadians(p.Rotation.Degrees()),
			Translation: geom.Point{
				X: int32(p.X + cfg.Extrude()),
				Y: int32(p.Y + cfg.Extrude()),
			},
		}
	}

	sizes := make([]packerpkg.Rect, len(result.BinSize))
	for i, s := range result.BinSize {
		w := roundUp(s.W, cfg.Extrude())
		h := roundUp(s.H, cfg.Extrude())
		if w > cfg.Width() {
			w = cfg.Width()
		}
		if h > cfg.Height() {
			h = cfg.Height()
		}
		sizes[i] = packerpkg.Rect{W: w, H: h}
	}
	return sizes, nil
}

func roundUp(v, step int) int {
	if step <= 0 {
		return v
	}
	return ((v + step - 1) / step) * step
}

// uvPolygon converts an item's own UV vertices (local pixel space,
// spanning [0, currentSize]) into the packer's polygon footprint,
// inset by extrude on every side to match the padding already folded
// into the packer Item's Width/Height.
func uvPolygon(it *Item, extrude int) []packerpkg.Point {
	vertices := it.Vertices()
	if len(vertices) < 3 {
		return nil
	}
	poly := make([]packerpkg.Point, len(vertices))
	for i, v := range vertices {
		poly[i] = packerpkg.Point{
			X: float64(v.UV.X) + float64(extrude),
			Y: float64(v.UV.Y) + float64(extrude),
		}
	}
	return poly
}
