package parallax

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// whitePixel is a 1x1 white image scaled and tinted to draw solid boxes.
var whitePixel *ebiten.Image

func solidImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// labelMinAlpha is the world alpha below which labels are not drawn. The
// debug font has no alpha channel, so faded labels are hidden instead.
const labelMinAlpha = 0.5

// Draw renders the visible part of the page to screen. Boxes outside the
// viewport are culled.
func (p *Page) Draw(screen *ebiten.Image) {
	if p.ClearColor.A > 0 {
		screen.Fill(color.NRGBA{
			R: uint8(p.ClearColor.R * 255),
			G: uint8(p.ClearColor.G * 255),
			B: uint8(p.ClearColor.B * 255),
			A: uint8(p.ClearColor.A * 255),
		})
	}
	view := p.viewport.viewMatrix()
	cull := p.viewport.VisibleBounds()
	p.traverse(screen, p.root, view, cull)

	if p.ShowStats {
		p.drawStats(screen)
	}
	p.flushCaptures(screen)
}

// traverse draws n and its children in tree order. World transforms are
// those computed by the last Step.
func (p *Page) traverse(screen *ebiten.Image, n *Node, view [6]float64, cull Rect) {
	if !n.Visible || n.worldAlpha <= 0 {
		return
	}
	if n.Width > 0 && n.Height > 0 && n.Color.A > 0 {
		if worldAABB(n.worldTransform, n.Width, n.Height).Intersects(cull) {
			drawBox(screen, n, view)
		}
	}
	if n.Label != "" && n.worldAlpha >= labelMinAlpha {
		x, y := transformPoint(multiplyAffine(view, n.worldTransform), 0, 0)
		ebitenutil.DebugPrintAt(screen, n.Label, int(x), int(y))
	}
	for _, c := range n.children {
		p.traverse(screen, c, view, cull)
	}
}

// drawBox draws n's layout box as a tinted quad.
func drawBox(screen *ebiten.Image, n *Node, view [6]float64) {
	m := multiplyAffine(view, n.worldTransform)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(n.Width, n.Height)
	op.GeoM.Concat(geoM(m))
	a := n.Color.A * n.worldAlpha
	op.ColorScale.Scale(float32(n.Color.R*a), float32(n.Color.G*a), float32(n.Color.B*a), float32(a))
	screen.DrawImage(solidImage(), &op)
}

// geoM converts an affine matrix [a, b, c, d, tx, ty] to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}
