package atlasgen

import (
	"runtime"
	"sync"

	"github.com/sc-workshop/AtlasGenerator/raster"
)

// maxPolygonWorkers bounds the polygon-generation pass's worker pool
// when Config.Parallel is set.
const maxPolygonWorkers = 20

// Generator orchestrates the whole pipeline (component F): validate,
// group by depth, dedup, polygon-generate, pack, and blit.
type Generator struct {
	cfg         Config
	atlases     []raster.Image
	itemCounter int
}

// NewGenerator builds a Generator bound to cfg.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// AtlasCount returns how many atlas pages have been produced so far,
// across every Generate call this Generator has served.
func (g *Generator) AtlasCount() int { return len(g.atlases) }

// GetAtlas borrows atlas page i. Callers must not call Generate again
// while holding onto the returned value's backing buffer.
func (g *Generator) GetAtlas(i int) raster.Image { return g.atlases[i] }

// Generate runs the pipeline over items and returns the number of new
// atlas pages this call added.
func (g *Generator) Generate(items []*Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	g.itemCounter = 0
	atlasesBefore := len(g.atlases)

	for i, it := range items {
		if err := raster.Validate(it.handle.img, MinTextureDimension, MaxTextureDimension); err != nil {
			return 0, newError(UnsupportedImage, i)
		}
	}

	for _, depth := range orderedDepths(items) {
		if err := g.runGroup(items, depth); err != nil {
			return len(g.atlases) - atlasesBefore, err
		}
	}

	return len(g.atlases) - atlasesBefore, nil
}

// orderedDepths returns the distinct pixel depths present in items,
// descending by enum value, so RGBA8 groups are processed before
// RGB8, LA8, then L8.
func orderedDepths(items []*Item) []raster.PixelDepth {
	seen := map[raster.PixelDepth]bool{}
	var order []raster.PixelDepth
	for _, it := range items {
		d := it.handle.img.Depth()
		if !seen[d] {
			seen[d] = true
			order = append(order, d)
		}
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j] > order[j-1]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// runGroup processes one pixel-depth group: dedup, polygon generation,
// packing, blitting and writeback.
func (g *Generator) runGroup(items []*Item, depth raster.PixelDepth) error {
	var groupIdx []int
	for i, it := range items {
		if it.handle.img.Depth() == depth {
			groupIdx = append(groupIdx, i)
		}
	}

	var workingOriginalIdx []int
	dupMap := map[int]int{}
	for _, idx := range groupIdx {
		it := items[idx]
		dup := -1
		for _, widx := range workingOriginalIdx {
			if it.Equals(items[widx]) {
				dup = widx
				break
			}
		}
		if dup >= 0 {
			dupMap[idx] = dup
			g.itemCounter++
			g.cfg.tick(g.itemCounter)
		} else {
			workingOriginalIdx = append(workingOriginalIdx, idx)
		}
	}

	working := make([]*Item, len(workingOriginalIdx))
	for wi, oi := range workingOriginalIdx {
		working[wi] = items[oi]
	}

	if err := g.generatePolygons(working); err != nil {
		return err
	}

	for wi, it := range working {
		oi := workingOriginalIdx[wi]
		if it.Status() != StatusValid || len(it.Vertices()) == 0 {
			return newError(InvalidPolygon, oi)
		}
		if int(it.currentSize.X) > g.cfg.Width() || int(it.currentSize.Y) > g.cfg.Height() {
			return newError(TooBigImage, oi)
		}
	}

	binOffset := len(g.atlases)
	sizes, err := packGroup(working, g.cfg, binOffset, func(done, total int) {
		g.itemCounter++
		g.cfg.tick(g.itemCounter)
	})
	if err != nil {
		return err
	}

	for _, sz := range sizes {
		g.atlases = append(g.atlases, newAtlasPage(sz, depth))
	}

	for _, it := range working {
		blitItem(it, g.atlases[it.textureIndex], g.cfg)
	}

	for dupIdx, ownerIdx := range dupMap {
		src, dst := items[ownerIdx], items[dupIdx]
		dst.textureIndex = src.textureIndex
		dst.vertices = src.vertices
		dst.transform = src.transform
		dst.status = src.status
		dst.isRectangle = src.isRectangle
		dst.currentSize = src.currentSize
		dst.cropOffset = src.cropOffset
	}

	return nil
}

// generatePolygons runs generateImagePolygon over every working item,
// serially or via a bounded worker pool depending on Config.Parallel.
// Each task only touches its own Item's own image, contour buffer,
// hull buffer and triangle list, so no synchronization is needed
// beyond the fork-join itself.
func (g *Generator) generatePolygons(working []*Item) error {
	if !g.cfg.Parallel() || len(working) <= 1 {
		for _, it := range working {
			if err := it.generateImagePolygon(g.cfg); err != nil {
				return err
			}
		}
		return nil
	}

	workers := maxPolygonWorkers
	if n := runtime.NumCPU(); n < workers {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *Item)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				_ = it.generateImagePolygon(g.cfg)
			}
		}()
	}
	for _, it := range working {
		jobs <- it
	}
	close(jobs)
	wg.Wait()
	return nil
}
