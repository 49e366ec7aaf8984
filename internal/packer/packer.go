// Package packer arranges item footprints into one or more fixed-size
// bins. A true no-fit-polygon packer computes exact no-fit-polygons
// between concave shapes; no Go package in the retrieval pack does
// that, so this package approximates it by rasterizing each
// candidate's own polygon into a coarse occupancy grid and scanning it
// for a collision-free placement, bottom-left first the same way
// NfpPlacer's starting_point is configured (BOTTOM_LEFT, DONT_ALIGN)
// in Generator.cpp's pack_items.
package packer

import (
	"fmt"
	"sort"
)

// Rotation is one of the four fixed quadrant turns the atlas builder can
// apply to an item's image before it's blitted into a page.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) swapsAxes() bool {
	return r == Rotate90 || r == Rotate270
}

// Degrees returns the clockwise rotation angle, matching the sign
// convention pack_items uses when it negates libnest2d's rotation
// before calling cv::getRotationMatrix2D.
func (r Rotation) Degrees() float64 {
	return float64(r) * 90
}

// Point is a polygon vertex in an item's own local pixel space, the
// same space its Width/Height are measured in.
type Point struct{ X, Y float64 }

// Item is one footprint to place: its width/height already include the
// 2*extrude spacing margin pack_items folds into the libnest2d box
// (m_config.extrude() * 2, added by the caller before Pack is invoked).
type Item struct {
	ID            int
	Width, Height int
	AllowRotation bool

	// Polygon is the item's own local polygon footprint (same pixel
	// space as Width/Height). When nil, Pack falls back to packing the
	// item's plain bounding box; when present, it's rasterized into the
	// occupancy grid so concave neighbors can nest into each other's
	// empty corners instead of colliding on bounding-box overlap alone.
	Polygon []Point
}

// Placement is where an Item landed.
type Placement struct {
	ItemID   int
	Bin      int
	X, Y     int
	Rotation Rotation
}

// Config controls bin geometry and the occupancy grid's resolution.
type Config struct {
	BinWidth, BinHeight int

	// Accuracy in (0, 1] trades packing density for speed, the same
	// knob libnest2d exposes on NestConfig's placer_config.accuracy:
	// 1.0 scans every pixel row, lower values coarsen the occupancy
	// grid so large atlases pack faster at the cost of looser fit.
	Accuracy float64

	// Progress is invoked once per item placed, mirroring pack_items'
	// control.progressfn callback into Config.progress.
	Progress func(done, total int)
}

func (c Config) cellSize() int {
	a := c.Accuracy
	if a <= 0 || a > 1 {
		a = 1
	}
	size := int((1-a)*8) + 1
	if size > 64 {
		size = 64
	}
	return size
}

// Result is the outcome of a Pack call.
type Result struct {
	Placements []Placement
	// BinSize holds the width/height each bin actually used, derived
	// from the tightest bounding box over that bin's placements (the
	// same shrink-to-content pass sheet_size performs in pack_items
	// before atlases are allocated).
	BinSize []Rect
}

// Rect is a plain width/height pair.
type Rect struct{ W, H int }

// mask is a cell-quantized occupancy footprint: mask[row][col] is true
// where the item's rasterized polygon (or its plain bounding box, when
// no polygon was given) covers that cell.
type mask [][]bool

func (m mask) dims() (cw, ch int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}

// rasterizeMask builds the occupancy footprint for an item of itemW x
// itemH pixels oriented by rot, quantized to cell-sized grid squares. A
// cell is occupied when its center falls inside the rotated polygon;
// with no polygon supplied every cell in the bounding box is occupied.
func rasterizeMask(poly []Point, itemW, itemH int, rot Rotation, cell int) mask {
	w, h := itemW, itemH
	if rot.swapsAxes() {
		w, h = h, w
	}
	cw := (w + cell - 1) / cell
	ch := (h + cell - 1) / cell
	grid := make(mask, ch)
	for i := range grid {
		grid[i] = make([]bool, cw)
	}

	if len(poly) < 3 {
		for y := range grid {
			for x := range grid[y] {
				grid[y][x] = true
			}
		}
		return grid
	}

	rotated := make([]Point, len(poly))
	for i, p := range poly {
		rotated[i] = rotatePoint(p, float64(itemW), float64(itemH), rot)
	}

	for y := 0; y < ch; y++ {
		cy := float64(y*cell) + float64(cell)/2
		for x := 0; x < cw; x++ {
			cx := float64(x*cell) + float64(cell)/2
			if pointInPolygon(rotated, cx, cy) {
				grid[y][x] = true
			}
		}
	}
	return grid
}

// rotatePoint maps a local-space polygon vertex through one of the
// packer's four fixed quadrant rotations, using the same continuous
// analogue of the atlas builder's pixel remap (see atlas.go's
// rotateQuadrant).
func rotatePoint(p Point, w, h float64, rot Rotation) Point {
	switch rot {
	case Rotate90:
		return Point{X: h - p.Y, Y: p.X}
	case Rotate180:
		return Point{X: w - p.X, Y: h - p.Y}
	case Rotate270:
		return Point{X: p.Y, Y: w - p.X}
	default:
		return p
	}
}

// pointInPolygon is the standard even-odd ray cast test.
func pointInPolygon(poly []Point, px, py float64) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > py) != (pj.Y > py) &&
			px < (pj.X-pi.X)*(py-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

type bin struct {
	grid [][]bool // grid[row][col], true = occupied
	cell int
	cols int
	rows int
	maxX int
	maxY int
}

func newBin(width, height, cell int) *bin {
	cols := (width + cell - 1) / cell
	rows := (height + cell - 1) / cell
	grid := make([][]bool, rows)
	for i := range grid {
		grid[i] = make([]bool, cols)
	}
	return &bin{grid: grid, cell: cell, cols: cols, rows: rows}
}

// fits reports whether m, placed with its top-left cell at (cx, cy),
// stays inside the bin without any of its occupied cells landing on an
// already occupied cell.
func (b *bin) fits(cx, cy int, m mask) bool {
	cw, ch := m.dims()
	if cx < 0 || cy < 0 || cx+cw > b.cols || cy+ch > b.rows {
		return false
	}
	for r := 0; r < ch; r++ {
		row := b.grid[cy+r]
		mrow := m[r]
		for c := 0; c < cw; c++ {
			if mrow[c] && row[cx+c] {
				return false
			}
		}
	}
	return true
}

func (b *bin) occupy(cx, cy int, m mask) {
	for r, mrow := range m {
		row := b.grid[cy+r]
		for c, occ := range mrow {
			if occ {
				row[cx+c] = true
			}
		}
	}
}

// bottomLeft scans the occupancy grid for the first position that can
// hold m without collision, preferring the lowest Y and then the
// lowest X, the rasterized analogue of NfpPlacer's BOTTOM_LEFT
// starting_point.
func (b *bin) bottomLeft(m mask) (cx, cy int, ok bool) {
	cw, ch := m.dims()
	if cw > b.cols || ch > b.rows {
		return 0, 0, false
	}
	for y := 0; y <= b.rows-ch; y++ {
		for x := 0; x <= b.cols-cw; x++ {
			if b.fits(x, y, m) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func (b *bin) markUsed(cx, cy int, m mask, cell int) {
	cw, ch := m.dims()
	right := (cx + cw) * cell
	bottom := (cy + ch) * cell
	if right > b.maxX {
		b.maxX = right
	}
	if bottom > b.maxY {
		b.maxY = bottom
	}
}

// Pack places every item into as few fixed-size bins as possible,
// selecting items first-fit-decreasing by footprint area (the rasterized
// stand-in for libnest2d's FirstFitSelection) and scanning each bin's
// polygon-rasterized occupancy grid bottom-left for a free slot before
// opening a new bin, exactly the fallback pack_items relies on when
// nest() spills across bin_count bins.
func Pack(items []Item, cfg Config) (Result, error) {
	if cfg.BinWidth <= 0 || cfg.BinHeight <= 0 {
		return Result{}, fmt.Errorf("packer: bin dimensions must be positive, got %dx%d", cfg.BinWidth, cfg.BinHeight)
	}
	cell := cfg.cellSize()

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ai, aj := items[order[i]], items[order[j]]
		return ai.Width*ai.Height > aj.Width*aj.Height
	})

	var bins []*bin
	var placements []Placement

	candidateRotations := func(it Item) []Rotation {
		if !it.AllowRotation {
			return []Rotation{Rotate0}
		}
		return []Rotation{Rotate0, Rotate90, Rotate180, Rotate270}
	}

	place := func(it Item) (Placement, error) {
		for _, rot := range candidateRotations(it) {
			w, h := it.Width, it.Height
			if rot.swapsAxes() {
				w, h = h, w
			}
			if w > cfg.BinWidth || h > cfg.BinHeight {
				continue
			}
			m := rasterizeMask(it.Polygon, it.Width, it.Height, rot, cell)

			for bi, b := range bins {
				if cx, cy, ok := b.bottomLeft(m); ok {
					b.occupy(cx, cy, m)
					b.markUsed(cx, cy, m, cell)
					return Placement{ItemID: it.ID, Bin: bi, X: cx * cell, Y: cy * cell, Rotation: rot}, nil
				}
			}

			nb := newBin(cfg.BinWidth, cfg.BinHeight, cell)
			if cx, cy, ok := nb.bottomLeft(m); ok {
				nb.occupy(cx, cy, m)
				nb.markUsed(cx, cy, m, cell)
				bins = append(bins, nb)
				return Placement{ItemID: it.ID, Bin: len(bins) - 1, X: cx * cell, Y: cy * cell, Rotation: rot}, nil
			}
		}
		return Placement{}, fmt.Errorf("packer: item %d (%dx%d) does not fit in a %dx%d bin", it.ID, it.Width, it.Height, cfg.BinWidth, cfg.BinHeight)
	}

	for done, idx := range order {
		it := items[idx]
		p, err := place(it)
		if err != nil {
			return Result{}, err
		}
		placements = append(placements, p)
		if cfg.Progress != nil {
			cfg.Progress(done+1, len(items))
		}
	}

	binSizes := make([]Rect, len(bins))
	for i, b := range bins {
		binSizes[i] = Rect{W: b.maxX, H: b.maxY}
	}

	return Result{Placements: placements, BinSize: binSizes}, nil
}
