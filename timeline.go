package parallax

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type offsetKind uint8

const (
	offsetAfterPrevious offsetKind = iota // previous entry's end + v
	offsetAbsolute                        // v seconds from the timeline start
	offsetWithPrevious                    // previous entry's start + v
)

// Offset positions an effect on a timeline. The zero value places the effect
// right after the previously added one.
type Offset struct {
	kind offsetKind
	v    float64
}

// At places an effect s seconds from the start of the timeline.
func At(s float64) Offset { return Offset{kind: offsetAbsolute, v: s} }

// Rel places an effect d seconds after the end of the previously added
// effect. A negative d overlaps the two.
func Rel(d float64) Offset { return Offset{kind: offsetAfterPrevious, v: d} }

// WithPrevious places an effect d seconds after the start of the previously
// added effect.
func WithPrevious(d float64) Offset { return Offset{kind: offsetWithPrevious, v: d} }

// ParseOffset parses the textual offset forms: "" (after previous), "+=0.3"
// and "-=0.5" (relative to the previous end), "<" and "<0.2" (relative to the
// previous start), and a plain number (absolute).
func ParseOffset(s string) (Offset, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Offset{}, nil
	case s == "<":
		return WithPrevious(0), nil
	case strings.HasPrefix(s, "<"):
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil {
			return Offset{}, fmt.Errorf("offset %q: %w", s, err)
		}
		return WithPrevious(v), nil
	case strings.HasPrefix(s, "+="), strings.HasPrefix(s, "-="):
		v, err := strconv.ParseFloat(s[2:], 64)
		if err != nil {
			return Offset{}, fmt.Errorf("offset %q: %w", s, err)
		}
		if s[0] == '-' {
			v = -v
		}
		return Rel(v), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Offset{}, fmt.Errorf("offset %q: %w", s, err)
	}
	return At(v), nil
}

func (o Offset) String() string {
	switch o.kind {
	case offsetAbsolute:
		return strconv.FormatFloat(o.v, 'g', -1, 64)
	case offsetWithPrevious:
		if o.v == 0 {
			return "<"
		}
		return "<" + strconv.FormatFloat(o.v, 'g', -1, 64)
	}
	if o.v < 0 {
		return "-=" + strconv.FormatFloat(-o.v, 'g', -1, 64)
	}
	return "+=" + strconv.FormatFloat(o.v, 'g', -1, 64)
}

// TimelineOptions configures a Timeline.
type TimelineOptions struct {
	Delay  float64
	Repeat int // extra cycles; -1 repeats forever
	Yoyo   bool
	// Paused keeps a scope-created timeline from starting on its own.
	Paused bool
}

// TimelineEntry is one child of a timeline at its resolved start time.
type TimelineEntry struct {
	Start  float64
	Effect Effect
}

// End returns the time at which the entry's effect finishes.
func (e TimelineEntry) End() float64 {
	return e.Start + e.Effect.Duration()
}

// Timeline sequences child effects at offsets on one shared clock. Children
// start in ascending offset order; entries with equal offsets start in the
// order they were added. A timeline is itself an Effect.
//
// Children may only be added before the timeline first renders; Add on a
// sealed timeline panics with ErrTimelineSealed.
type Timeline struct {
	playhead

	entries   []TimelineEntry
	duration  float64
	prevStart float64
	prevEnd   float64
	sealed    bool
	disposed  bool
}

// NewTimeline creates an empty, idle timeline.
func NewTimeline(opts TimelineOptions) *Timeline {
	tl := &Timeline{}
	tl.host = tl
	tl.SetDelay(opts.Delay)
	tl.SetRepeat(opts.Repeat, opts.Yoyo)
	return tl
}

// Add places e on the timeline at offset at and returns the timeline for
// chaining. Relative offsets resolve against the entry added just before;
// a start that resolves before zero is clamped to zero.
//
// A child stops being driven by its own ticker; the timeline drives it.
func (tl *Timeline) Add(e Effect, at Offset) *Timeline {
	if e == nil {
		panic("parallax: cannot add nil effect to timeline")
	}
	if tl.sealed {
		panic(fmt.Errorf("parallax: add %T: %w", e, ErrTimelineSealed))
	}
	child := e.core()
	if child == &tl.playhead {
		panic("parallax: timeline cannot contain itself")
	}
	if sub, ok := e.(*Timeline); ok && sub.contains(tl) {
		panic("parallax: adding timeline would create a cycle")
	}

	var start float64
	switch at.kind {
	case offsetAbsolute:
		start = at.v
	case offsetWithPrevious:
		start = tl.prevStart + at.v
	default:
		start = tl.prevEnd + at.v
	}
	if start < 0 || math.IsNaN(start) {
		start = 0
	}

	child.active = false
	child.paused = false
	child.nested = true
	child.ticker = nil
	if child.log == nil {
		child.log = tl.log
	}

	// Insert after every entry with start <= this one so that equal
	// offsets keep insertion order.
	i := len(tl.entries)
	for i > 0 && tl.entries[i-1].Start > start {
		i--
	}
	tl.entries = append(tl.entries, TimelineEntry{})
	copy(tl.entries[i+1:], tl.entries[i:])
	tl.entries[i] = TimelineEntry{Start: start, Effect: e}

	end := start + e.Duration()
	tl.prevStart = start
	tl.prevEnd = end
	if end > tl.duration {
		tl.duration = end
	}
	return tl
}

// AddAt places e at s seconds from the start of the timeline.
func (tl *Timeline) AddAt(e Effect, s float64) *Timeline {
	return tl.Add(e, At(s))
}

// Then adds e right after the previously added effect.
func (tl *Timeline) Then(e Effect) *Timeline {
	return tl.Add(e, Offset{})
}

// Entries returns the children in start order. The returned slice MUST NOT be
// mutated by the caller.
func (tl *Timeline) Entries() []TimelineEntry {
	return tl.entries
}

// Len returns the number of children.
func (tl *Timeline) Len() int {
	return len(tl.entries)
}

// Sealed reports whether the timeline has rendered and no longer accepts
// children.
func (tl *Timeline) Sealed() bool {
	return tl.sealed
}

// CycleDuration returns the length of one cycle: the latest child end.
func (tl *Timeline) CycleDuration() float64 { return tl.duration }

func (tl *Timeline) contains(other *Timeline) bool {
	for _, e := range tl.entries {
		if sub, ok := e.Effect.(*Timeline); ok {
			if sub == other || sub.contains(other) {
				return true
			}
		}
	}
	return false
}

func (tl *Timeline) cycleDuration() float64 { return tl.duration }

func (tl *Timeline) seal() { tl.sealed = true }

// apply drives every child to local - start. Children the clock has not
// reached yet are left alone unless they rendered before, in which case they
// are rewound. When time moves backward children are visited latest first so
// that earlier children win on shared properties.
func (tl *Timeline) apply(local float64, before, backward bool) {
	n := len(tl.entries)
	for k := 0; k < n; k++ {
		i := k
		if backward {
			i = n - 1 - k
		}
		e := tl.entries[i]
		child := e.Effect.core()
		if child.killed {
			continue
		}
		if before || local < e.Start {
			if child.rendered && !child.atStart {
				child.renderAt(rewound, child.time > 0 || child.completed)
			}
			continue
		}
		t := local - e.Start
		if total := e.Effect.Duration(); t > total {
			t = total
		}
		if child.rendered && !child.atStart && t == child.time {
			continue
		}
		child.renderAt(t, true)
	}
}

// dispose kills the timeline and disposes its children latest first.
func (tl *Timeline) dispose() error {
	if tl.disposed {
		tl.Kill()
		return nil
	}
	tl.disposed = true
	tl.Kill()
	var errs []error
	for i := len(tl.entries) - 1; i >= 0; i-- {
		if err := tl.entries[i].Effect.dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
