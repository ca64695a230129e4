package parallax

import (
	"log/slog"
	"math"
)

// PlayState describes where an effect is in its playback.
type PlayState uint8

const (
	StateIdle     PlayState = iota // at the start, not advancing
	StateRunning                   // advancing forward on the ticker
	StatePaused                    // halted by Pause, keeps its position
	StateReversed                  // advancing backward on the ticker
	StateComplete                  // at the end, not advancing
)

func (s PlayState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateReversed:
		return "reversed"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Effect is a playable animation: a *Tween or a *Timeline. Timelines accept
// any Effect as a child, so timelines nest.
type Effect interface {
	// Duration is the total length in seconds including delay and repeats.
	// It is +Inf for effects that repeat forever.
	Duration() float64
	Time() float64
	Progress() float64
	State() PlayState
	Reversed() bool

	Play()
	Pause()
	Resume()
	Reverse()
	Restart()
	Reset()
	Complete()
	Seek(progress float64)
	Update(dt float64)
	Kill()

	core() *playhead
	dispose() error
}

// host is implemented by the concrete effect types. The playhead owns the
// clock; the host maps a position within one cycle onto targets.
type host interface {
	cycleDuration() float64
	// apply renders cycle-local time local. before is set when the
	// playhead sits ahead of the effect's start (rewound or still in its
	// delay); backward reports that time decreased since the last render.
	apply(local float64, before, backward bool)
	seal()
}

// rewound is passed to renderAt to put an effect in its pre-start state.
const rewound = -1.0

// playhead is the clock shared by Tween and Timeline. It stores elapsed
// time in [0, Duration()] plus the direction of accumulation, and drives
// the host's apply on every render.
type playhead struct {
	host host

	time     float64
	delay    float64
	repeat   int
	yoyo     bool
	reversed bool
	paused   bool
	active   bool
	killed   bool

	local     float64 // cycle-local time of the last render
	rendered  bool    // renderAt has run at least once
	atStart   bool    // the last render put the effect in its pre-start state
	completed bool    // OnComplete fired for the current arrival at the end
	nested    bool    // driven by a parent timeline, never by the ticker

	ticker    *Ticker
	scheduled bool
	log       *slog.Logger

	// Callbacks (nil by default).
	OnStart           func()
	OnUpdate          func()
	OnComplete        func()
	OnReverseComplete func()
}

var discardLogger = slog.New(slog.DiscardHandler)

func (p *playhead) core() *playhead { return p }

func (p *playhead) logger() *slog.Logger {
	if p.log == nil {
		return discardLogger
	}
	return p.log
}

// SetDelay sets the seconds that pass before the first cycle starts. Call it
// before the effect is added to a timeline; timelines lay out children once.
func (p *playhead) SetDelay(d float64) {
	if d < 0 || math.IsNaN(d) {
		d = 0
	}
	p.delay = d
}

// SetRepeat sets how many extra cycles run after the first (-1 repeats
// forever). With yoyo, odd cycles play backward.
func (p *playhead) SetRepeat(n int, yoyo bool) {
	if n < -1 {
		n = -1
	}
	p.repeat = n
	p.yoyo = yoyo
}

// Duration returns the total length including delay and repeats.
func (p *playhead) Duration() float64 {
	cycle := p.host.cycleDuration()
	if p.repeat < 0 {
		if cycle == 0 {
			return p.delay
		}
		return math.Inf(1)
	}
	return p.delay + cycle*float64(p.repeat+1)
}

// Time returns the elapsed seconds along the total duration.
func (p *playhead) Time() float64 { return p.time }

// Reversed reports whether elapsed time currently accumulates backward.
func (p *playhead) Reversed() bool { return p.reversed }

// Progress returns Time as a fraction of Duration. Effects that repeat
// forever report progress within the current cycle.
func (p *playhead) Progress() float64 {
	total := p.Duration()
	switch {
	case math.IsInf(total, 1):
		cycle := p.host.cycleDuration()
		return clamp01(p.cycleTime(p.time) / cycle)
	case total == 0:
		if p.time >= total {
			return 1
		}
		return 0
	}
	return clamp01(p.time / total)
}

// State derives the play state from the clock.
func (p *playhead) State() PlayState {
	switch {
	case p.paused:
		return StatePaused
	case p.active && p.reversed:
		return StateReversed
	case p.active:
		return StateRunning
	case p.time >= p.Duration():
		return StateComplete
	}
	return StateIdle
}

// cycleTime maps total time t onto the position within the current cycle,
// folding repeats and yoyo.
func (p *playhead) cycleTime(t float64) float64 {
	cycle := p.host.cycleDuration()
	t -= p.delay
	if t <= 0 || cycle <= 0 {
		return 0
	}
	n := math.Floor(t / cycle)
	local := t - n*cycle
	if p.repeat >= 0 && n >= float64(p.repeat+1) {
		n = float64(p.repeat)
		local = cycle
	}
	if p.yoyo && int64(n)%2 == 1 {
		local = cycle - local
	}
	return local
}

// renderAt moves the clock to t and renders. Negative t rewinds to the
// pre-start state. Callbacks fire only when events is set.
func (p *playhead) renderAt(t float64, events bool) {
	total := p.Duration()
	before := t < 0 || t < p.delay
	if t > total {
		t = total
	}
	if t < 0 {
		t = 0
	}
	prev := p.time
	local := p.cycleTime(t)
	backward := local < p.local
	p.time = t
	p.local = local
	p.rendered = true
	p.atStart = before
	p.host.seal()
	p.host.apply(local, before, backward)

	if !events {
		p.completed = t >= total && !before
		return
	}
	if prev == 0 && t > 0 && p.OnStart != nil {
		p.OnStart()
	}
	if p.OnUpdate != nil {
		p.OnUpdate()
	}
	if t >= total && !before {
		if !p.completed {
			p.completed = true
			if p.OnComplete != nil {
				p.OnComplete()
			}
		}
	} else {
		p.completed = false
	}
	if t <= 0 && prev > 0 && p.OnReverseComplete != nil {
		p.OnReverseComplete()
	}
}

// advance moves the clock by dt in the current direction. It reports true
// when the effect has stopped advancing.
func (p *playhead) advance(dt float64) bool {
	if !p.active || p.killed {
		return true
	}
	total := p.Duration()
	t := p.time + dt
	if p.reversed {
		t = p.time - dt
	}
	if (!p.reversed && t >= total) || (p.reversed && t <= 0) {
		// Deactivate before rendering so a callback may restart the effect.
		p.active = false
	}
	p.renderAt(t, true)
	return !p.active
}

// canMove reports whether the clock has room in the current direction.
func (p *playhead) canMove() bool {
	if p.reversed {
		return p.time > 0
	}
	return p.time < p.Duration()
}

// activate starts advancing in the current direction and schedules the
// effect on its ticker.
func (p *playhead) activate() {
	if p.killed {
		return
	}
	p.active = true
	if p.ticker != nil && !p.nested && !p.scheduled {
		p.ticker.add(p)
	}
}

// Update advances a running effect by dt seconds. Effects attached to a
// Ticker are advanced by the ticker; call Update only for standalone effects.
func (p *playhead) Update(dt float64) {
	p.advance(dt)
}

// Play advances the effect. A reversed effect that has stopped away from
// its start (for example a complete effect after Reverse) runs backward to
// idle; otherwise the effect plays forward from its current position.
func (p *playhead) Play() {
	if p.killed {
		return
	}
	p.paused = false
	if p.reversed && !p.active && p.time > 0 {
		p.activate()
		return
	}
	p.reversed = false
	if p.time >= p.Duration() {
		p.active = false
		if p.Duration() == 0 {
			p.renderAt(0, true)
		}
		return
	}
	p.activate()
}

// Pause halts future ticks for the effect and keeps its position.
func (p *playhead) Pause() {
	if p.killed {
		return
	}
	p.paused = true
	p.active = false
}

// Resume continues a paused effect in its current direction.
func (p *playhead) Resume() {
	if !p.paused || p.killed {
		return
	}
	p.paused = false
	if p.canMove() {
		p.activate()
	}
}

// Reverse flips the direction of elapsed-time accumulation without
// resetting the position. An effect that is not advancing stays put until
// Play or Resume.
func (p *playhead) Reverse() {
	if p.killed {
		return
	}
	p.reversed = !p.reversed
	if p.active && !p.canMove() {
		p.active = false
	}
}

// playBackward runs the effect toward its start, starting it if needed.
// Scroll triggers use it for the "reverse" toggle action.
func (p *playhead) playBackward() {
	if p.killed {
		return
	}
	p.paused = false
	p.reversed = true
	if p.time > 0 {
		p.activate()
	} else {
		p.active = false
	}
}

// Restart rewinds to the start and plays forward.
func (p *playhead) Restart() {
	if p.killed {
		return
	}
	p.paused = false
	p.reversed = false
	p.renderAt(rewound, false)
	if p.Duration() == 0 {
		p.renderAt(0, true)
		return
	}
	p.activate()
}

// Reset rewinds to the start and stops.
func (p *playhead) Reset() {
	if p.killed {
		return
	}
	p.paused = false
	p.reversed = false
	p.active = false
	p.renderAt(rewound, false)
}

// Complete jumps to the end and stops. Effects that repeat forever stop at
// their current position instead.
func (p *playhead) Complete() {
	if p.killed {
		return
	}
	p.paused = false
	p.active = false
	total := p.Duration()
	if math.IsInf(total, 1) {
		return
	}
	p.renderAt(total, true)
}

// Seek moves to progress in [0, 1] of the total duration without changing
// whether the effect is advancing. For effects that repeat forever progress
// addresses the first cycle.
func (p *playhead) Seek(progress float64) {
	if p.killed || math.IsNaN(progress) {
		return
	}
	progress = clamp01(progress)
	total := p.Duration()
	t := progress * total
	if math.IsInf(total, 1) {
		t = p.delay + progress*p.host.cycleDuration()
	}
	p.renderAt(t, true)
	if p.active && !p.canMove() {
		p.active = false
	}
}

// Kill stops the effect permanently. Play controls become no-ops.
func (p *playhead) Kill() {
	p.killed = true
	p.active = false
	p.paused = false
}

// Killed reports whether Kill (or a scope revert) stopped the effect.
func (p *playhead) Killed() bool { return p.killed }
