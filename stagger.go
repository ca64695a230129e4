package parallax

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
)

// StaggerFrom selects which target starts first.
type StaggerFrom uint8

const (
	StaggerStart  StaggerFrom = iota // targets[0] first
	StaggerEnd                       // last target first
	StaggerCenter                    // middle target(s) first, spreading outward
)

// StaggerSpec controls the delay between consecutive targets.
type StaggerSpec struct {
	// Each is the offset in seconds between consecutive positions.
	Each float64
	From StaggerFrom
	// Index, when set, overrides From and returns the position (in units of
	// Each) of target i out of n.
	Index func(i, n int) float64
}

// PropFunc computes a per-target end value. i is the target's index in the
// staggered list.
type PropFunc func(i int, target *Node) float64

// TweenTemplate describes the tween applied to every staggered target.
type TweenTemplate struct {
	Props Props
	// Funcs supply end values that vary per target. A name present in both
	// Props and Funcs takes its start from Props and its end from Funcs.
	Funcs    map[string]PropFunc
	Duration float64
	Ease     ease.TweenFunc
	Delay    float64
	Repeat   int
	Yoyo     bool
}

// props resolves the template for target i.
func (tmpl TweenTemplate) props(i int, target *Node) Props {
	out := make(Props, len(tmpl.Props)+len(tmpl.Funcs))
	for name, r := range tmpl.Props {
		out[name] = r
	}
	for name, fn := range tmpl.Funcs {
		r := out[name]
		r.To = fn(i, target)
		out[name] = r
	}
	return out
}

func (spec StaggerSpec) position(i, n int) float64 {
	if spec.Index != nil {
		return spec.Index(i, n)
	}
	switch spec.From {
	case StaggerEnd:
		return float64(n - 1 - i)
	case StaggerCenter:
		return math.Abs(float64(i) - float64(n-1)/2)
	}
	return float64(i)
}

// Stagger builds a timeline holding one tween per target, target i starting
// at position(i) * Each seconds. With the default From, target i starts at
// exactly i*Each and the timeline lasts (n-1)*Each + Duration.
//
// An empty target list yields an empty timeline that is already complete.
func Stagger(targets []*Node, tmpl TweenTemplate, spec StaggerSpec) (*Timeline, error) {
	if math.IsNaN(spec.Each) || math.IsInf(spec.Each, 0) || spec.Each < 0 {
		return nil, fmt.Errorf("%w: stagger each %v", ErrInvalidTweenSpec, spec.Each)
	}
	tl := NewTimeline(TimelineOptions{})
	n := len(targets)
	for i, target := range targets {
		tw, err := NewTween(target, tmpl.props(i, target), tmpl.Duration, tmpl.Ease)
		if err != nil {
			return nil, fmt.Errorf("stagger target %d: %w", i, err)
		}
		tw.SetDelay(tmpl.Delay)
		tw.SetRepeat(tmpl.Repeat, tmpl.Yoyo)
		pos := spec.position(i, n)
		if math.IsNaN(pos) || pos < 0 {
			pos = 0
		}
		tl.Add(tw, At(pos*spec.Each))
	}
	return tl, nil
}
