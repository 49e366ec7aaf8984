package atlasgen

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/sc-workshop/AtlasGenerator/geom"
	"github.com/sc-workshop/AtlasGenerator/imop"
	"github.com/sc-workshop/AtlasGenerator/utils"
)

var outlineColor = utils.HexToRGBA("#39ff14")

// page is one atlas page's worth of preview material, already
// composited: every item's placed polygon outline drawn src-over the
// atlas pixels via imop's Porter-Duff composite.
type page struct {
	img image.Image
}

// Gui is the basic struct containing all of the information needed for
// the preview window. It just cycles a fixed slice of atlas pages built
// once up front.
type Gui struct {
	pages   []page
	current int

	theme *material.Theme
	ctx   layout.Context
}

// newGui builds one page per atlas in gen, overlaying every item's
// placed polygon outline via a Porter-Duff SrcOver composite.
func newGui(gen *Generator, items []*Item) *Gui {
	byTexture := make(map[int][]*Item)
	for _, it := range items {
		byTexture[it.TextureIndex()] = append(byTexture[it.TextureIndex()], it)
	}

	pages := make([]page, gen.AtlasCount())
	compOp := imop.InitOp()
	compOp.Set(imop.SrcOver)

	for i := range pages {
		atlasNRGBA := toNRGBA(gen.GetAtlas(i))

		var loops [][]image.Point
		for _, it := range byTexture[i] {
			loop := make([]image.Point, len(it.Vertices()))
			for j, v := range it.Vertices() {
				p := it.Transform().TransformPoint(geom.Point{X: int32(v.UV.X), Y: int32(v.UV.Y)})
				loop[j] = image.Pt(int(p.X), int(p.Y))
			}
			loops = append(loops, loop)
		}
		outlineNRGBA := renderOutlines(atlasNRGBA.Bounds(), loops)

		bitmap := imop.NewBitmap(atlasNRGBA.Bounds())
		compOp.Draw(bitmap, outlineNRGBA, atlasNRGBA, nil)
		pages[i].img = bitmap.Img
	}

	theme := material.NewTheme()
	theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	theme.TextSize = unit.Sp(16)

	return &Gui{
		pages: pages,
		ctx:   layout.Context{Ops: new(op.Ops)},
		theme: theme,
	}
}

// renderOutlines draws every closed vertex loop onto a transparent
// NRGBA canvas of size bounds, in outlineColor, as the source image
// imop.Composite.Draw then lays src-over the atlas page.
func renderOutlines(bounds image.Rectangle, loops [][]image.Point) *image.NRGBA {
	canvas := image.NewNRGBA(bounds)
	for _, loop := range loops {
		for i := range loop {
			a := loop[i]
			b := loop[(i+1)%len(loop)]
			drawLine(canvas, a, b, outlineColor)
		}
	}
	return canvas
}

// drawLine rasterizes the segment a->b onto img via Bresenham's
// algorithm, the simplest line primitive that needs no extra
// dependency beyond what's already imported for image manipulation.
func drawLine(img *image.NRGBA, a, b image.Point, col color.NRGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X >= b.X {
		sx = -1
	}
	if a.Y >= b.Y {
		sy = -1
	}
	err := dx + dy

	x, y := a.X, a.Y
	for {
		if (image.Point{X: x, Y: y}).In(img.Bounds()) {
			img.SetNRGBA(x, y, col)
		}
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Run opens the preview window. Left/Right arrows cycle atlas pages;
// Escape closes the window.
func (g *Gui) Run() error {
	w := new(app.Window)
	w.Option(app.Title(g.windowTitle()))

	for {
		e := w.Event()
		switch e := e.(type) {
		case app.FrameEvent:
			g.ctx = app.NewContext(g.ctx.Ops, e)

			for {
				event, ok := g.ctx.Event(key.Filter{Name: key.NameEscape})
				if !ok {
					break
				}
				if _, ok := event.(key.Event); ok {
					w.Perform(system.ActionClose)
				}
			}
			for {
				event, ok := g.ctx.Event(key.Filter{Name: key.NameRightArrow})
				if !ok {
					break
				}
				if _, ok := event.(key.Event); ok {
					g.next(1)
					w.Option(app.Title(g.windowTitle()))
				}
			}
			for {
				event, ok := g.ctx.Event(key.Filter{Name: key.NameLeftArrow})
				if !ok {
					break
				}
				if _, ok := event.(key.Event); ok {
					g.next(-1)
					w.Option(app.Title(g.windowTitle()))
				}
			}

			g.draw()
			e.Frame(g.ctx.Ops)
		case app.DestroyEvent:
			return e.Err
		}
	}
}

func (g *Gui) windowTitle() string {
	if len(g.pages) == 0 {
		return "atlasgen preview (no atlases)"
	}
	return fmt.Sprintf("atlasgen preview - page %d/%d (←/→ to cycle, esc to quit)", g.current+1, len(g.pages))
}

func (g *Gui) next(delta int) {
	if len(g.pages) == 0 {
		return
	}
	g.current = (g.current + delta + len(g.pages)) % len(g.pages)
}

type (
	C = layout.Context
	D = layout.Dimensions
)

// draw paints the current composited atlas page and the window title.
func (g *Gui) draw() {
	paint.Fill(g.ctx.Ops, color.NRGBA{A: 0xff})

	if len(g.pages) == 0 {
		material.Label(g.theme, unit.Sp(24), "no atlas pages to preview").Layout(g.ctx)
		return
	}

	src := paint.NewImageOp(g.pages[g.current].img)
	src.Add(g.ctx.Ops)
	paint.PaintOp{}.Add(g.ctx.Ops)

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(4)}.Layout(g.ctx, func(gtx C) D {
		return material.Label(g.theme, unit.Sp(14), g.windowTitle()).Layout(gtx)
	})
}
