package parallax

import (
	"fmt"
	"strconv"
	"strings"
)

// Boundary is a parsed scroll boundary such as "top 80%": the point on the
// reference node ("top") that must meet the point on the viewport ("80%")
// for the boundary to be reached.
type Boundary struct {
	Element    float64 // fraction of the reference height: top 0, center 0.5, bottom 1
	ElementPx  float64 // extra pixels added to the reference point
	Viewport   float64 // fraction of the viewport height
	ViewportPx float64 // extra pixels added to the viewport point
}

// Defaults used when a trigger leaves Start or End empty.
const (
	DefaultStart = "top bottom"
	DefaultEnd   = "bottom top"
)

// ParseBoundary parses "<element> <viewport>". Each side is a keyword (top,
// center, bottom), a percentage ("80%"), or pixels ("100", "100px"),
// optionally followed by "+=N" or "-=N" pixels. A missing viewport side
// defaults to "top".
func ParseBoundary(s string) (Boundary, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return Boundary{}, fmt.Errorf("boundary %q: %w", s, ErrInvalidBoundary)
	}
	var b Boundary
	var err error
	if b.Element, b.ElementPx, err = parseEdge(fields[0]); err != nil {
		return Boundary{}, fmt.Errorf("boundary %q: %w", s, err)
	}
	if len(fields) == 2 {
		if b.Viewport, b.ViewportPx, err = parseEdge(fields[1]); err != nil {
			return Boundary{}, fmt.Errorf("boundary %q: %w", s, err)
		}
	}
	return b, nil
}

// parseEdge parses one side of a boundary into a fraction and a pixel offset.
func parseEdge(tok string) (frac, px float64, err error) {
	base, adj := tok, ""
	if i := strings.Index(tok, "+="); i > 0 {
		base, adj = tok[:i], tok[i+2:]
	} else if i := strings.Index(tok, "-="); i > 0 {
		base, adj = tok[:i], "-"+tok[i+2:]
	}
	switch base {
	case "top":
	case "center":
		frac = 0.5
	case "bottom":
		frac = 1
	default:
		switch {
		case strings.HasSuffix(base, "%"):
			v, perr := strconv.ParseFloat(strings.TrimSuffix(base, "%"), 64)
			if perr != nil {
				return 0, 0, ErrInvalidBoundary
			}
			frac = v / 100
		default:
			v, perr := strconv.ParseFloat(strings.TrimSuffix(base, "px"), 64)
			if perr != nil {
				return 0, 0, ErrInvalidBoundary
			}
			px = v
		}
	}
	if adj != "" {
		v, perr := strconv.ParseFloat(strings.TrimSuffix(adj, "px"), 64)
		if perr != nil {
			return 0, 0, ErrInvalidBoundary
		}
		px += v
	}
	return frac, px, nil
}

// resolve returns the scroll offset at which the boundary is reached for a
// reference box ref and a viewport of height viewportH.
func (b Boundary) resolve(ref Rect, viewportH float64) float64 {
	return ref.Y + b.Element*ref.Height + b.ElementPx - (b.Viewport*viewportH + b.ViewportPx)
}

// Action is what a trigger does to its animation on a transition.
type Action uint8

const (
	ActionNone Action = iota
	ActionPlay
	ActionPause
	ActionResume
	ActionReverse
	ActionRestart
	ActionReset
	ActionComplete
)

var actionNames = [...]string{
	ActionNone:     "none",
	ActionPlay:     "play",
	ActionPause:    "pause",
	ActionResume:   "resume",
	ActionReverse:  "reverse",
	ActionRestart:  "restart",
	ActionReset:    "reset",
	ActionComplete: "complete",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return ActionNone, fmt.Errorf("action %q: %w", s, ErrInvalidAction)
}

// apply performs the action on e.
func (a Action) apply(e Effect) {
	switch a {
	case ActionPlay:
		e.Play()
	case ActionPause:
		e.Pause()
	case ActionResume:
		e.Resume()
	case ActionReverse:
		e.core().playBackward()
	case ActionRestart:
		e.Restart()
	case ActionReset:
		e.Reset()
	case ActionComplete:
		e.Complete()
	}
}

// ToggleActions holds the action for each of the four transitions.
type ToggleActions struct {
	OnEnter     Action
	OnLeave     Action
	OnEnterBack Action
	OnLeaveBack Action
}

// DefaultToggleActions plays on enter and ignores the other transitions.
var DefaultToggleActions = ToggleActions{OnEnter: ActionPlay}

// ParseToggleActions parses four space-separated action names in the order
// enter, leave, enter-back, leave-back, e.g. "play none none reverse".
func ParseToggleActions(s string) (ToggleActions, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return ToggleActions{}, fmt.Errorf("toggle actions %q: want 4 actions, got %d: %w",
			s, len(fields), ErrInvalidAction)
	}
	var acts [4]Action
	for i, f := range fields {
		a, err := ParseAction(f)
		if err != nil {
			return ToggleActions{}, fmt.Errorf("toggle actions %q: %w", s, err)
		}
		acts[i] = a
	}
	return ToggleActions{acts[0], acts[1], acts[2], acts[3]}, nil
}

func (ta ToggleActions) String() string {
	return ta.OnEnter.String() + " " + ta.OnLeave.String() + " " +
		ta.OnEnterBack.String() + " " + ta.OnLeaveBack.String()
}

// Membership is the position of the scroll offset relative to a trigger's
// [start, end] range.
type Membership uint8

const (
	Before Membership = iota
	Inside
	After
)

func (m Membership) String() string {
	switch m {
	case Inside:
		return "inside"
	case After:
		return "after"
	default:
		return "before"
	}
}

// ToggleKind names a membership transition.
type ToggleKind uint8

const (
	ToggleEnter     ToggleKind = iota // before -> inside
	ToggleLeave                       // inside -> after
	ToggleEnterBack                   // after -> inside
	ToggleLeaveBack                   // inside -> before
)

func (k ToggleKind) String() string {
	switch k {
	case ToggleLeave:
		return "leave"
	case ToggleEnterBack:
		return "enterBack"
	case ToggleLeaveBack:
		return "leaveBack"
	default:
		return "enter"
	}
}

// TriggerSpec configures a scroll trigger.
type TriggerSpec struct {
	// Name identifies the trigger in logs and events. Defaults to Ref.Name.
	Name string
	// Ref is the node whose layout box the boundaries are measured against.
	Ref *Node
	// Start and End are boundary strings; see ParseBoundary.
	Start string
	End   string

	// Actions apply to Animation on each transition. The zero value means
	// DefaultToggleActions. Ignored when Scrub is set.
	Actions   ToggleActions
	Animation Effect

	// Scrub binds the animation's progress to the scroll position instead of
	// toggling it. Smoothing is the time constant in seconds with which the
	// progress catches up; zero follows the scroll exactly.
	Scrub     bool
	Smoothing float64

	// Once unregisters the trigger after its first enter.
	Once bool

	OnEnter     func(*Trigger)
	OnLeave     func(*Trigger)
	OnEnterBack func(*Trigger)
	OnLeaveBack func(*Trigger)
	// OnToggle runs once per transition after the per-transition callback.
	OnToggle func(*Trigger, ToggleKind)
	// OnUpdate runs on every recompute while the trigger is live.
	OnUpdate func(*Trigger)
}

// Trigger binds a reference node's scroll range to an animation.
type Trigger struct {
	ID   uint32
	Name string

	spec       TriggerSpec
	start, end Boundary
	startPos   float64
	endPos     float64
	membership Membership
	direction  Direction

	progress float64 // scrub progress applied to the animation
	target   float64 // scrub progress the scroll position asks for

	measured bool // startPos and endPos are current
	attached bool // Ref has been attached at least once

	frozen        bool
	killed        bool
	unregistering bool // unregistered during a pass; removed when it ends
	registry      *Registry
}

// Membership returns the trigger's last evaluated membership.
func (t *Trigger) Membership() Membership { return t.membership }

// Direction returns the scroll direction seen at the last evaluation.
func (t *Trigger) Direction() Direction { return t.direction }

// Start returns the resolved scroll offset of the start boundary.
func (t *Trigger) Start() float64 { return t.startPos }

// End returns the resolved scroll offset of the end boundary. It is never
// less than Start.
func (t *Trigger) End() float64 { return t.endPos }

// Progress returns the position of the scroll offset within [Start, End]
// as a fraction. For smoothed scrub triggers it is the applied progress,
// which trails the scroll position.
func (t *Trigger) Progress() float64 {
	if t.spec.Scrub {
		return t.progress
	}
	return t.target
}

// Animation returns the bound animation, or nil.
func (t *Trigger) Animation() Effect { return t.spec.Animation }

// Ref returns the reference node.
func (t *Trigger) Ref() *Node { return t.spec.Ref }

// Frozen reports whether the trigger stopped evaluating because its
// reference node was detached or disposed.
func (t *Trigger) Frozen() bool { return t.frozen }

// Killed reports whether the trigger was unregistered. An unregister issued
// from a trigger callback takes effect when the pass ends.
func (t *Trigger) Killed() bool { return t.killed }

// Kill unregisters the trigger from its registry.
func (t *Trigger) Kill() {
	if t.registry != nil {
		t.registry.Unregister(t)
		return
	}
	t.killed = true
}

func (t *Trigger) dispose() error {
	t.Kill()
	return nil
}

// membershipAt classifies scroll offset y. The range is closed on both ends.
func (t *Trigger) membershipAt(y float64) Membership {
	switch {
	case y < t.startPos:
		return Before
	case y > t.endPos:
		return After
	}
	return Inside
}
