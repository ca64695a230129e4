package parallax

import (
	"fmt"
	"math"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PropRange is the start and end value of one animated property. A range
// built with To leaves the start unset; it is read from the target the first
// time the tween renders.
type PropRange struct {
	From    float64
	To      float64
	HasFrom bool
}

// To animates a property from its current value to v.
func To(v float64) PropRange {
	return PropRange{To: v}
}

// FromTo animates a property from a to b. The start value is written as soon
// as the tween is created.
func FromTo(a, b float64) PropRange {
	return PropRange{From: a, To: b, HasFrom: true}
}

// Props maps property names (see AnimatableProperties) to their ranges.
type Props map[string]PropRange

type tweenProp struct {
	name string
	prop property
	from float64
	to   float64
	set  bool // from is known
	orig float64
}

// Tween interpolates properties of one Node over a fixed duration. It is an
// Effect: play it on a Ticker, nest it in a Timeline, or call Update(dt)
// directly.
//
// If the target is disposed, or detached from the page after being attached,
// the tween stops at its next render and logs a warning once. Other effects
// are unaffected.
type Tween struct {
	playhead

	target   *Node
	props    []tweenProp
	duration float64
	curve    *gween.Tween // normalized 0..1 over duration 1

	started     bool
	wasAttached bool
	warned      bool
}

// NewTween creates a tween of props on target lasting duration seconds.
// It returns an error wrapping ErrInvalidTweenSpec when duration is negative
// or not finite, props is empty, or fn is nil, and ErrUnknownProperty for a
// name Node does not expose.
func NewTween(target *Node, props Props, duration float64, fn ease.TweenFunc) (*Tween, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrInvalidTweenSpec)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		return nil, fmt.Errorf("%w: duration %v", ErrInvalidTweenSpec, duration)
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: no properties", ErrInvalidTweenSpec)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil easing function", ErrInvalidTweenSpec)
	}

	tw := &Tween{
		target:      target,
		duration:    duration,
		curve:       gween.New(0, 1, 1, fn),
		wasAttached: target.Attached(),
	}
	tw.host = tw

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	immediate := false
	for _, name := range names {
		r := props[name]
		p, ok := properties[name]
		if !ok {
			return nil, fmt.Errorf("tween %q: property %q: %w", target.Name, name, ErrUnknownProperty)
		}
		if !finite(r.To) || (r.HasFrom && !finite(r.From)) {
			return nil, fmt.Errorf("%w: property %q has a non-finite value", ErrInvalidTweenSpec, name)
		}
		tw.props = append(tw.props, tweenProp{
			name: name,
			prop: p,
			from: r.From,
			to:   r.To,
			set:  r.HasFrom,
			orig: p.get(target),
		})
		immediate = immediate || r.HasFrom
	}

	if immediate && duration > 0 {
		tw.begin()
		tw.write(0)
	}
	return tw, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Target returns the animated node.
func (tw *Tween) Target() *Node { return tw.target }

// CycleDuration returns the length of one cycle, excluding delay and repeats.
func (tw *Tween) CycleDuration() float64 { return tw.duration }

// PropertyNames returns the animated property names in sorted order.
func (tw *Tween) PropertyNames() []string {
	names := make([]string, len(tw.props))
	for i := range tw.props {
		names[i] = tw.props[i].name
	}
	return names
}

// Range returns the resolved range of the named property. The start of a
// To range is only known once the tween has rendered.
func (tw *Tween) Range(name string) (PropRange, bool) {
	for i := range tw.props {
		p := &tw.props[i]
		if p.name == name {
			return PropRange{From: p.from, To: p.to, HasFrom: p.set}, true
		}
	}
	return PropRange{}, false
}

func (tw *Tween) cycleDuration() float64 { return tw.duration }

func (tw *Tween) seal() {}

func (tw *Tween) apply(local float64, before, _ bool) {
	if tw.detached() {
		tw.abandon()
		return
	}
	if before {
		if tw.started {
			tw.write(0)
		}
		return
	}
	if !tw.started {
		tw.begin()
	}
	progress := 1.0
	if tw.duration > 0 {
		progress = local / tw.duration
	}
	tw.write(progress)
}

// begin resolves the start of every To range from the target.
func (tw *Tween) begin() {
	tw.started = true
	for i := range tw.props {
		p := &tw.props[i]
		if !p.set {
			p.from = p.prop.get(tw.target)
			p.set = true
		}
	}
}

// write renders normalized progress. The endpoints are written exactly.
func (tw *Tween) write(progress float64) {
	switch {
	case progress <= 0:
		for i := range tw.props {
			p := &tw.props[i]
			p.prop.set(tw.target, p.from)
		}
	case progress >= 1:
		for i := range tw.props {
			p := &tw.props[i]
			p.prop.set(tw.target, p.to)
		}
	default:
		eased, _ := tw.curve.Set(float32(progress))
		k := float64(eased)
		for i := range tw.props {
			p := &tw.props[i]
			p.prop.set(tw.target, p.from+(p.to-p.from)*k)
		}
	}
	tw.target.transformDirty = true
}

func (tw *Tween) detached() bool {
	if tw.target.disposed {
		return true
	}
	return tw.wasAttached && !tw.target.Attached()
}

// abandon stops the tween for good after its target went away.
func (tw *Tween) abandon() {
	tw.Kill()
	if tw.warned {
		return
	}
	tw.warned = true
	tw.logger().Warn("tween target detached",
		"target", tw.target.Name,
		"err", ErrDetachedReference)
}

// dispose kills the tween and restores the values its target had when the
// tween was created.
func (tw *Tween) dispose() error {
	tw.Kill()
	if tw.target.disposed {
		return nil
	}
	for i := len(tw.props) - 1; i >= 0; i-- {
		p := &tw.props[i]
		p.prop.set(tw.target, p.orig)
	}
	tw.target.transformDirty = true
	return nil
}
