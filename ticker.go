package parallax

// Ticker drives top-level effects once per frame. Effects are advanced in
// the order they were first scheduled. Effects nested inside a timeline are
// never scheduled; their parent drives them.
type Ticker struct {
	entries []*playhead
	buf     []*playhead // reused snapshot for Tick
	frame   uint64
}

// NewTicker creates an empty ticker.
func NewTicker() *Ticker {
	return &Ticker{}
}

// Attach binds e to the ticker so that Play and friends schedule it here.
// If e is already advancing it is scheduled immediately.
func (tk *Ticker) Attach(e Effect) {
	p := e.core()
	if p.nested {
		return
	}
	p.ticker = tk
	if p.active && !p.scheduled {
		tk.add(p)
	}
}

func (tk *Ticker) add(p *playhead) {
	p.scheduled = true
	tk.entries = append(tk.entries, p)
}

// Tick advances every scheduled effect by dt seconds. Effects scheduled
// during the pass first advance on the next Tick. Effects that stopped are
// dropped from the schedule.
func (tk *Ticker) Tick(dt float64) {
	tk.frame++
	tk.buf = append(tk.buf[:0], tk.entries...)
	for _, p := range tk.buf {
		if p.active && !p.killed {
			p.advance(dt)
		}
	}
	clear(tk.buf)
	tk.buf = tk.buf[:0]

	n := 0
	for _, p := range tk.entries {
		if p.active && !p.killed && !p.nested {
			tk.entries[n] = p
			n++
			continue
		}
		p.scheduled = false
	}
	clear(tk.entries[n:])
	tk.entries = tk.entries[:n]
}

// Len returns the number of effects currently advancing.
func (tk *Ticker) Len() int {
	n := 0
	for _, p := range tk.entries {
		if p.active && !p.killed {
			n++
		}
	}
	return n
}

// Frame returns the number of Tick calls so far.
func (tk *Ticker) Frame() uint64 {
	return tk.frame
}

// Clear stops every scheduled effect without rendering.
func (tk *Ticker) Clear() {
	for _, p := range tk.entries {
		p.active = false
		p.scheduled = false
	}
	clear(tk.entries)
	tk.entries = tk.entries[:0]
}
