package parallax

type syntheticKind uint8

const (
	injectScrollBy syntheticKind = iota
	injectScrollTo
	injectResize
	injectRefresh
)

// syntheticEvent is a single queued scroll, resize or refresh. One event is
// consumed per frame, ahead of real input.
type syntheticEvent struct {
	kind syntheticKind
	a, b float64
}

// InjectScroll queues a scroll by dy page units. The event is consumed on
// the next Step.
func (p *Page) InjectScroll(dy float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: injectScrollBy, a: dy})
}

// InjectScrollTo queues a jump to scroll offset y.
func (p *Page) InjectScrollTo(y float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: injectScrollTo, a: y})
}

// InjectSmoothScroll queues jumps from fromY to toY linearly interpolated over
// frames frames, ending exactly at toY. Minimum frames is 1.
func (p *Page) InjectSmoothScroll(fromY, toY float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		p.InjectScrollTo(fromY + (toY-fromY)*t)
	}
}

// InjectResize queues a viewport resize.
func (p *Page) InjectResize(w, h float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: injectResize, a: w, b: h})
}

// InjectRefresh queues a trigger refresh.
func (p *Page) InjectRefresh() {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: injectRefresh})
}

// Pending returns the number of queued synthetic events.
func (p *Page) Pending() int {
	return len(p.injectQueue)
}

// processInjected pops one event from the queue and applies it. Returns true
// if an event was consumed.
func (p *Page) processInjected() bool {
	if len(p.injectQueue) == 0 {
		return false
	}
	evt := p.injectQueue[0]
	copy(p.injectQueue, p.injectQueue[1:])
	p.injectQueue = p.injectQueue[:len(p.injectQueue)-1]

	switch evt.kind {
	case injectScrollBy:
		p.viewport.ScrollBy(evt.a)
	case injectScrollTo:
		p.viewport.SetScroll(evt.a)
	case injectResize:
		p.Resize(evt.a, evt.b)
	case injectRefresh:
		p.RefreshAll()
	}
	return true
}
