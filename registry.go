package parallax

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// TriggerEvent describes one membership transition. Exactly one event is
// reported per transition, including jumps across the whole range.
type TriggerEvent struct {
	TriggerID uint32
	Name      string
	Kind      ToggleKind
	// Action is the toggle action applied for Kind (ActionNone for scrub
	// triggers and triggers without an animation).
	Action    Action
	From      Membership
	To        Membership
	Direction Direction
	// Skipped is set when a single recompute moved the scroll offset across
	// the whole range (before to after or back).
	Skipped  bool
	ScrollY  float64
	Progress float64
}

// EventSink receives trigger events as they happen.
type EventSink interface {
	EmitTrigger(TriggerEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(TriggerEvent)

// EmitTrigger calls f(ev).
func (f EventSinkFunc) EmitTrigger(ev TriggerEvent) { f(ev) }

// Registry holds the live scroll triggers and evaluates them against the
// scroll offset. Triggers are evaluated in registration order.
//
// Registering or unregistering from inside a trigger callback is deferred
// until the current pass ends: the pass always sees the table it started
// with, and a trigger unregistered mid-pass is still evaluated until the
// pass is over.
//
// Boundaries are measured when a trigger is first evaluated with an attached
// reference, and again on RefreshAll or a viewport height change. Between
// refreshes they are cached, so an animation that moves its own reference
// node does not shift its range.
type Registry struct {
	triggers []*Trigger
	snapshot []*Trigger
	pending  []*Trigger // registered during a pass
	removed  []*Trigger // unregistered during a pass
	inPass   bool
	nextID   uint32

	scrollY   float64
	viewportH float64
	seen      bool
	direction Direction

	logger *slog.Logger
	sink   EventSink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: discardLogger}
}

// SetLogger sets the logger used for trigger diagnostics.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	r.logger = l
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// SetEventSink sets the receiver of trigger events. nil disables events.
func (r *Registry) SetEventSink(s EventSink) { r.sink = s }

// Register validates spec and adds a trigger. The bound animation is paused
// so that only the trigger drives it. The trigger is first evaluated on the
// next Recompute or RefreshAll.
func (r *Registry) Register(spec TriggerSpec) (*Trigger, error) {
	if spec.Ref == nil {
		return nil, fmt.Errorf("%w: trigger has no reference node", ErrInvalidBoundary)
	}
	if spec.Start == "" {
		spec.Start = DefaultStart
	}
	if spec.End == "" {
		spec.End = DefaultEnd
	}
	start, err := ParseBoundary(spec.Start)
	if err != nil {
		return nil, fmt.Errorf("trigger start: %w", err)
	}
	end, err := ParseBoundary(spec.End)
	if err != nil {
		return nil, fmt.Errorf("trigger end: %w", err)
	}
	if math.IsNaN(spec.Smoothing) || math.IsInf(spec.Smoothing, 0) || spec.Smoothing < 0 {
		return nil, fmt.Errorf("%w: smoothing %v", ErrInvalidBoundary, spec.Smoothing)
	}
	if spec.Actions == (ToggleActions{}) {
		spec.Actions = DefaultToggleActions
	}
	name := spec.Name
	if name == "" {
		name = spec.Ref.Name
	}

	r.nextID++
	t := &Trigger{
		ID:         r.nextID,
		Name:       name,
		spec:       spec,
		start:      start,
		end:        end,
		membership: Before,
		registry:   r,
		attached:   spec.Ref.Attached(),
	}
	if spec.Animation != nil {
		spec.Animation.Pause()
	}
	if r.inPass {
		r.pending = append(r.pending, t)
	} else {
		r.triggers = append(r.triggers, t)
	}
	r.logger.Debug("trigger registered",
		"trigger", t.Name, "id", t.ID, "start", spec.Start, "end", spec.End, "scrub", spec.Scrub)
	return t, nil
}

// Unregister removes t. Unknown or already removed triggers are ignored.
func (r *Registry) Unregister(t *Trigger) {
	if t == nil || t.registry != r || t.killed || t.unregistering {
		return
	}
	if r.inPass {
		t.unregistering = true
		r.removed = append(r.removed, t)
		return
	}
	t.killed = true
	r.remove(t)
}

func (r *Registry) remove(t *Trigger) {
	if i := slices.Index(r.triggers, t); i >= 0 {
		r.triggers = slices.Delete(r.triggers, i, i+1)
		return
	}
	if i := slices.Index(r.pending, t); i >= 0 {
		r.pending = slices.Delete(r.pending, i, i+1)
	}
}

// Len returns the number of registered triggers.
func (r *Registry) Len() int {
	return len(r.triggers)
}

// Triggers returns a copy of the registered triggers in registration order.
func (r *Registry) Triggers() []*Trigger {
	return slices.Clone(r.triggers)
}

// KillAll unregisters every trigger.
func (r *Registry) KillAll() {
	if r.inPass {
		for _, t := range r.triggers {
			r.Unregister(t)
		}
		for _, t := range r.pending {
			r.Unregister(t)
		}
		return
	}
	for _, t := range r.triggers {
		t.killed = true
	}
	clear(r.triggers)
	r.triggers = r.triggers[:0]
}

// ScrollY returns the scroll offset of the last pass.
func (r *Registry) ScrollY() float64 { return r.scrollY }

// Direction returns the scroll direction of the last pass that moved.
func (r *Registry) Direction() Direction { return r.direction }

// RefreshAll re-resolves every boundary against the current layout and
// re-evaluates membership at the last known scroll offset. Call it after
// nodes move or the viewport resizes.
func (r *Registry) RefreshAll() {
	r.refresh(r.scrollY, r.viewportH)
}

// refresh drops every cached boundary and recomputes.
func (r *Registry) refresh(scrollY, viewportH float64) {
	if r.inPass {
		return
	}
	r.invalidate()
	r.Recompute(scrollY, viewportH)
}

func (r *Registry) invalidate() {
	for _, t := range r.triggers {
		t.measured = false
	}
	for _, t := range r.pending {
		t.measured = false
	}
}

// Recompute evaluates every trigger at scroll offset scrollY with a viewport
// of height viewportH. Cached boundaries are reused unless the viewport
// height changed. A Recompute issued from a trigger callback is ignored.
func (r *Registry) Recompute(scrollY, viewportH float64) {
	if r.inPass {
		return
	}
	if r.seen && viewportH != r.viewportH {
		r.invalidate()
	}
	if r.seen {
		if scrollY > r.scrollY {
			r.direction = Forward
		} else if scrollY < r.scrollY {
			r.direction = Backward
		}
	}
	r.seen = true
	r.scrollY = scrollY
	r.viewportH = viewportH

	r.inPass = true
	r.snapshot = append(r.snapshot[:0], r.triggers...)
	for _, t := range r.snapshot {
		r.evaluate(t)
	}
	clear(r.snapshot)
	r.snapshot = r.snapshot[:0]
	r.inPass = false
	r.commit()
}

// commit applies registrations deferred during a pass.
func (r *Registry) commit() {
	for _, t := range r.removed {
		t.unregistering = false
		t.killed = true
		r.remove(t)
	}
	clear(r.removed)
	r.removed = r.removed[:0]
	for _, t := range r.pending {
		if !t.killed {
			r.triggers = append(r.triggers, t)
		}
	}
	clear(r.pending)
	r.pending = r.pending[:0]
}

// Advance moves smoothed scrub triggers toward their target progress by dt
// seconds. Each step closes 1 - exp(-dt/Smoothing) of the remaining gap.
func (r *Registry) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	for _, t := range r.triggers {
		if t.killed || t.frozen || !t.spec.Scrub || t.spec.Smoothing == 0 {
			continue
		}
		if t.progress == t.target {
			continue
		}
		k := 1 - math.Exp(-dt/t.spec.Smoothing)
		t.progress += (t.target - t.progress) * k
		if math.Abs(t.target-t.progress) < 1e-4 {
			t.progress = t.target
		}
		if a := t.spec.Animation; a != nil {
			a.Seek(t.progress)
		}
	}
}

func (r *Registry) evaluate(t *Trigger) {
	if t.killed || t.frozen {
		return
	}
	ref := t.spec.Ref
	if !ref.Attached() {
		// A reference that was never attached is waiting to be mounted.
		if t.attached {
			t.frozen = true
			r.logger.Warn("trigger reference detached",
				"trigger", t.Name, "id", t.ID, "err", ErrDetachedReference)
		}
		return
	}
	t.attached = true
	if !t.measured {
		r.measure(t)
	}
	t.direction = r.direction

	switch span := t.endPos - t.startPos; {
	case span > 0:
		t.target = clamp01((r.scrollY - t.startPos) / span)
	case r.scrollY >= t.startPos:
		t.target = 1
	default:
		t.target = 0
	}
	if t.spec.Scrub && t.spec.Smoothing == 0 && t.progress != t.target {
		t.progress = t.target
		if a := t.spec.Animation; a != nil {
			a.Seek(t.progress)
		}
	}

	if m := t.membershipAt(r.scrollY); m != t.membership {
		from := t.membership
		t.membership = m
		r.transition(t, from, m)
	}
	if t.spec.OnUpdate != nil && !t.killed {
		t.spec.OnUpdate(t)
	}
}

// measure resolves t's boundaries against the reference's current box.
func (r *Registry) measure(t *Trigger) {
	box := t.spec.Ref.WorldBounds()
	t.startPos = t.start.resolve(box, r.viewportH)
	t.endPos = t.end.resolve(box, r.viewportH)
	if t.endPos < t.startPos {
		t.endPos = t.startPos
	}
	t.measured = true
}

// steps lists the transitions a membership change is made of. A jump across
// the whole range is two steps reported as one event.
func steps(from, to Membership) (kinds []ToggleKind, skipped bool) {
	switch {
	case from == Before && to == Inside:
		return []ToggleKind{ToggleEnter}, false
	case from == Inside && to == After:
		return []ToggleKind{ToggleLeave}, false
	case from == After && to == Inside:
		return []ToggleKind{ToggleEnterBack}, false
	case from == Inside && to == Before:
		return []ToggleKind{ToggleLeaveBack}, false
	case from == Before && to == After:
		return []ToggleKind{ToggleEnter, ToggleLeave}, true
	case from == After && to == Before:
		return []ToggleKind{ToggleEnterBack, ToggleLeaveBack}, true
	}
	return nil, false
}

func (r *Registry) transition(t *Trigger, from, to Membership) {
	kinds, skipped := steps(from, to)
	if len(kinds) == 0 {
		return
	}
	spec := &t.spec
	for _, k := range kinds {
		if t.killed {
			break
		}
		if spec.Animation != nil && !spec.Scrub {
			spec.Actions.action(k).apply(spec.Animation)
		}
		if fn := spec.callback(k); fn != nil {
			fn(t)
		}
	}
	last := kinds[len(kinds)-1]
	action := ActionNone
	if spec.Animation != nil && !spec.Scrub {
		action = spec.Actions.action(last)
	}
	if spec.OnToggle != nil && !t.killed {
		spec.OnToggle(t, last)
	}

	ev := TriggerEvent{
		TriggerID: t.ID,
		Name:      t.Name,
		Kind:      last,
		Action:    action,
		From:      from,
		To:        to,
		Direction: t.direction,
		Skipped:   skipped,
		ScrollY:   r.scrollY,
		Progress:  t.target,
	}
	r.logger.Debug("trigger toggled",
		"trigger", t.Name, "id", t.ID, "kind", last.String(),
		"from", from.String(), "to", to.String(), "skipped", skipped, "scrollY", r.scrollY)
	if r.sink != nil {
		r.sink.EmitTrigger(ev)
	}

	if spec.Once && !t.killed && (to == Inside || (skipped && to == After)) {
		r.Unregister(t)
	}
}

func (ta ToggleActions) action(k ToggleKind) Action {
	switch k {
	case ToggleLeave:
		return ta.OnLeave
	case ToggleEnterBack:
		return ta.OnEnterBack
	case ToggleLeaveBack:
		return ta.OnLeaveBack
	default:
		return ta.OnEnter
	}
}

func (s *TriggerSpec) callback(k ToggleKind) func(*Trigger) {
	switch k {
	case ToggleLeave:
		return s.OnLeave
	case ToggleEnterBack:
		return s.OnEnterBack
	case ToggleLeaveBack:
		return s.OnLeaveBack
	default:
		return s.OnEnter
	}
}
