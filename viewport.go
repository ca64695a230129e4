package parallax

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Viewport is the visible window onto the page. ScrollY is the scroll offset:
// the page coordinate shown at the top edge of the screen.
type Viewport struct {
	ScrollY float64
	// Width and Height are the viewport size in page units.
	Width, Height float64
	// ContentHeight is the total page height. The page updates it every
	// frame from its root's children; scrolling is clamped to
	// [0, ContentHeight-Height].
	ContentHeight float64

	scrollTween *gween.Tween
}

// newViewport creates a Viewport of the given size scrolled to the top.
func newViewport(w, h float64) *Viewport {
	return &Viewport{Width: w, Height: h}
}

// MaxScroll returns the largest valid scroll offset.
func (v *Viewport) MaxScroll() float64 {
	return math.Max(0, v.ContentHeight-v.Height)
}

// ScrollBy moves the scroll offset by dy immediately and cancels any
// running ScrollTo animation.
func (v *Viewport) ScrollBy(dy float64) {
	v.scrollTween = nil
	v.ScrollY += dy
	v.clamp()
}

// SetScroll jumps to scroll offset y.
func (v *Viewport) SetScroll(y float64) {
	v.scrollTween = nil
	v.ScrollY = y
	v.clamp()
}

// ScrollTo animates the scroll offset to y over duration seconds.
func (v *Viewport) ScrollTo(y float64, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		v.SetScroll(y)
		return
	}
	v.scrollTween = gween.New(float32(v.ScrollY), float32(y), duration, easeFn)
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// SetSize changes the viewport size and re-clamps the scroll offset.
func (v *Viewport) SetSize(w, h float64) {
	v.Width = w
	v.Height = h
	v.clamp()
}

// update advances the scroll animation. Called from Page.Step.
func (v *Viewport) update(dt float32) {
	if v.scrollTween != nil {
		val, done := v.scrollTween.Update(dt)
		v.ScrollY = float64(val)
		if done {
			v.scrollTween = nil
		}
	}
	v.clamp()
}

func (v *Viewport) clamp() {
	v.ScrollY = math.Max(0, math.Min(v.ScrollY, v.MaxScroll()))
}

// VisibleBounds returns the page-space rectangle currently on screen.
func (v *Viewport) VisibleBounds() Rect {
	return Rect{X: 0, Y: v.ScrollY, Width: v.Width, Height: v.Height}
}

// WorldToScreen converts page coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx, wy - v.ScrollY
}

// ScreenToWorld converts screen coordinates to page coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx, sy + v.ScrollY
}

// viewMatrix returns the screen transform for the current scroll offset.
func (v *Viewport) viewMatrix() [6]float64 {
	return [6]float64{1, 0, 0, 1, 0, -v.ScrollY}
}
