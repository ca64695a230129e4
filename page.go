package parallax

import (
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

// Default input tuning for Page.Update.
const (
	defaultScrollSpeed = 60.0 // page units per wheel notch
	defaultKeyScroll   = 12.0 // page units per frame while an arrow key is held
	pageJumpDuration   = 0.45 // seconds for PageUp/PageDown/Home/End
)

// Page is the top-level object that owns the node tree, the viewport, the
// trigger registry and the ticker. It implements the per-frame loop: input,
// scroll, trigger evaluation, scrub smoothing, then effect ticks.
type Page struct {
	root     *Node
	viewport *Viewport
	registry *Registry
	ticker   *Ticker
	logger   *slog.Logger
	debug    bool

	// ClearColor fills the screen before the tree is drawn.
	ClearColor Color
	// ScrollSpeed is the distance scrolled per mouse wheel notch.
	ScrollSpeed float64
	// ShowStats draws the stats overlay in the top-left corner.
	ShowStats bool
	// ScreenshotDir receives frames queued with Capture.
	ScreenshotDir string

	updateFunc   func() error
	injectQueue  []syntheticEvent
	testRunner   *TestRunner
	captureQueue []string
	frame        uint64
}

// NewPage creates a page with a root container and a viewport of the given
// size.
func NewPage(width, height float64) *Page {
	root := NewContainer("root")
	root.root = true
	p := &Page{
		root:        root,
		viewport:    newViewport(width, height),
		registry:    NewRegistry(),
		ticker:      NewTicker(),
		logger:      discardLogger,
		ClearColor:  Color{0.06, 0.07, 0.09, 1},
		ScrollSpeed: defaultScrollSpeed,
	}
	return p
}

// Root returns the page's root container. Sections are added as its children
// and stacked top to bottom by the caller.
func (p *Page) Root() *Node { return p.root }

// Viewport returns the page viewport.
func (p *Page) Viewport() *Viewport { return p.viewport }

// Registry returns the page's scroll trigger registry.
func (p *Page) Registry() *Registry { return p.registry }

// Ticker returns the page's ticker.
func (p *Page) Ticker() *Ticker { return p.ticker }

// Logger returns the page's logger.
func (p *Page) Logger() *slog.Logger { return p.logger }

// Frame returns the number of frames stepped so far.
func (p *Page) Frame() uint64 { return p.frame }

// SetLogger sets the logger used by the page, its registry and scopes opened
// afterwards.
func (p *Page) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	p.logger = l
	p.registry.SetLogger(l)
}

// SetEventSink forwards trigger events to s.
func (p *Page) SetEventSink(s EventSink) {
	p.registry.SetEventSink(s)
}

// SetUpdateFunc registers a callback run at the start of every Update.
func (p *Page) SetUpdateFunc(fn func() error) {
	p.updateFunc = fn
}

// OpenScope opens an animation scope for the section rooted at root, bound to
// the page's registry and ticker.
func (p *Page) OpenScope(root *Node) *Scope {
	return OpenScope(root, p.registry, p.ticker)
}

// Update polls input and steps the page by one tick. It is called by Run
// through ebiten.Game.
func (p *Page) Update() error {
	if p.updateFunc != nil {
		if err := p.updateFunc(); err != nil {
			return err
		}
	}
	if len(p.injectQueue) == 0 {
		p.pollInput()
	}
	p.Step(1.0 / float64(ebiten.TPS()))
	return nil
}

// pollInput maps wheel and keyboard input onto the viewport.
func (p *Page) pollInput() {
	v := p.viewport
	if _, wy := ebiten.Wheel(); wy != 0 {
		v.ScrollBy(-wy * p.ScrollSpeed)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		v.ScrollBy(defaultKeyScroll)
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		v.ScrollBy(-defaultKeyScroll)
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.ScrollTo(v.ScrollY+v.Height*0.9, pageJumpDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		v.ScrollTo(v.ScrollY-v.Height*0.9, pageJumpDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.ScrollTo(0, pageJumpDuration, ease.OutCubic)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		v.ScrollTo(v.MaxScroll(), pageJumpDuration, ease.OutCubic)
	}
}

// Step advances the page by dt seconds without touching real input. The
// order within a frame is fixed: injected events, scroll animation, layout,
// trigger recompute, scrub smoothing, effect ticks.
func (p *Page) Step(dt float64) {
	p.viewport.ContentHeight = p.contentHeight()
	if p.testRunner != nil {
		p.testRunner.step(p)
	}
	p.processInjected()

	p.viewport.update(float32(dt))
	updateWorldTransform(p.root, identityTransform, 1.0, false)

	p.registry.Recompute(p.viewport.ScrollY, p.viewport.Height)
	p.registry.Advance(dt)
	p.ticker.Tick(dt)
	p.frame++
}

// contentHeight is the bottom edge of the lowest top-level section.
func (p *Page) contentHeight() float64 {
	h := 0.0
	for _, c := range p.root.children {
		if b := c.WorldBounds().Bottom(); b > h {
			h = b
		}
	}
	return h
}

// Resize changes the viewport size and refreshes every trigger.
func (p *Page) Resize(width, height float64) {
	p.viewport.SetSize(width, height)
	p.RefreshAll()
}

// RefreshAll re-resolves every trigger boundary against the current layout.
// Call it after changing section sizes or positions outside of an effect.
func (p *Page) RefreshAll() {
	p.viewport.ContentHeight = p.contentHeight()
	p.viewport.clamp()
	updateWorldTransform(p.root, identityTransform, 1.0, false)
	p.registry.refresh(p.viewport.ScrollY, p.viewport.Height)
}

// ScrollToNode animates the viewport so that n's top edge meets the top of
// the screen.
func (p *Page) ScrollToNode(n *Node, duration float32, fn ease.TweenFunc) {
	p.viewport.ScrollTo(n.WorldBounds().Y, duration, fn)
}

// Close unregisters every trigger and stops every effect.
func (p *Page) Close() {
	p.registry.KillAll()
	p.ticker.Clear()
}
