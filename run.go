package parallax

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowStats draws the FPS and trigger overlay.
	ShowStats bool
	// Resizable lets the user resize the window; triggers refresh on resize.
	Resizable bool
	// TPS overrides ebiten's default 60 ticks per second when positive.
	TPS int
}

// Run opens a window and drives page until the window closes or an update
// function returns an error.
func Run(page *Page, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = int(page.viewport.Width)
	}
	if cfg.Height <= 0 {
		cfg.Height = int(page.viewport.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	page.ShowStats = page.ShowStats || cfg.ShowStats
	page.RefreshAll()
	defer page.Close()
	return ebiten.RunGame(&game{page: page})
}

// game adapts a Page to ebiten.Game.
type game struct {
	page *Page
}

func (g *game) Update() error {
	return g.page.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	g.page.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	v := g.page.viewport
	if float64(outsideWidth) != v.Width || float64(outsideHeight) != v.Height {
		g.page.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
