package parallax

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/tanema/gween/ease"
)

// triggerFixture is a page-rooted section at Y=1000 with height 400 and a
// registry recording every event.
type triggerFixture struct {
	page    *Page
	section *Node
	reg     *Registry
	events  []TriggerEvent
}

func newTriggerFixture(t *testing.T) *triggerFixture {
	t.Helper()
	f := &triggerFixture{page: NewPage(800, 600)}
	f.section = NewContainer("section")
	f.section.SetPosition(0, 1000)
	f.section.SetSize(800, 400)
	f.page.Root().AddChild(f.section)
	f.reg = f.page.Registry()
	f.reg.SetEventSink(EventSinkFunc(func(ev TriggerEvent) {
		f.events = append(f.events, ev)
	}))
	return f
}

func (f *triggerFixture) kinds() []ToggleKind {
	out := make([]ToggleKind, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Kind
	}
	return out
}

func (f *triggerFixture) register(t *testing.T, spec TriggerSpec) *Trigger {
	t.Helper()
	if spec.Ref == nil {
		spec.Ref = f.section
	}
	tr, err := f.reg.Register(spec)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return tr
}

func TestRegistryFourTransitions(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{Start: "top 80%", End: "bottom 20%"})

	f.reg.Recompute(0, 600)
	assertNear(t, "Start", tr.Start(), 520)
	assertNear(t, "End", tr.End(), 1280)
	if len(f.events) != 0 {
		t.Fatalf("no transition expected at 0, got %v", f.kinds())
	}

	for _, y := range []float64{800, 1500, 1000, 0} {
		f.reg.Recompute(y, 600)
	}
	want := []ToggleKind{ToggleEnter, ToggleLeave, ToggleEnterBack, ToggleLeaveBack}
	if !slices.Equal(f.kinds(), want) {
		t.Fatalf("kinds = %v, want %v", f.kinds(), want)
	}
	dirs := []Direction{Forward, Forward, Backward, Backward}
	for i, ev := range f.events {
		if ev.Direction != dirs[i] {
			t.Errorf("event %d direction = %v, want %v", i, ev.Direction, dirs[i])
		}
		if ev.Skipped {
			t.Errorf("event %d should not be skipped", i)
		}
		if ev.TriggerID != tr.ID || ev.Name != "section" {
			t.Errorf("event %d identity = %d %q", i, ev.TriggerID, ev.Name)
		}
	}
	if f.events[0].From != Before || f.events[0].To != Inside {
		t.Errorf("enter event From/To = %v/%v", f.events[0].From, f.events[0].To)
	}
}

func TestRegistryDefaultBoundaries(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{})
	f.reg.Recompute(0, 600)
	// "top bottom" and "bottom top"
	assertNear(t, "Start", tr.Start(), 400)
	assertNear(t, "End", tr.End(), 1400)
}

func TestRegistryInclusiveBoundaries(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{Start: "top 80%", End: "bottom 20%"})

	f.reg.Recompute(520, 600)
	if tr.Membership() != Inside {
		t.Errorf("at start: %v, want inside", tr.Membership())
	}
	f.reg.Recompute(1280, 600)
	if tr.Membership() != Inside {
		t.Errorf("at end: %v, want inside", tr.Membership())
	}
	f.reg.Recompute(1280.5, 600)
	if tr.Membership() != After {
		t.Errorf("past end: %v, want after", tr.Membership())
	}
}

func TestRegistryJumpReportsOneEvent(t *testing.T) {
	f := newTriggerFixture(t)
	box := NewBox("box", 10, 10, ColorWhite)
	f.section.AddChild(box)
	tw := newTestTween(t, box, Props{"x": To(100)}, 1, ease.Linear)

	var callbacks []string
	var toggles []ToggleKind
	f.register(t, TriggerSpec{
		Start:       "top 80%",
		End:         "bottom 20%",
		Animation:   tw,
		Actions:     ToggleActions{OnEnter: ActionPlay, OnLeave: ActionComplete},
		OnEnter:     func(*Trigger) { callbacks = append(callbacks, "enter") },
		OnLeave:     func(*Trigger) { callbacks = append(callbacks, "leave") },
		OnEnterBack: func(*Trigger) { callbacks = append(callbacks, "enterBack") },
		OnLeaveBack: func(*Trigger) { callbacks = append(callbacks, "leaveBack") },
		OnToggle:    func(_ *Trigger, k ToggleKind) { toggles = append(toggles, k) },
	})

	f.reg.Recompute(0, 600)
	f.reg.Recompute(2000, 600)

	if len(f.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.events))
	}
	ev := f.events[0]
	if ev.Kind != ToggleLeave || !ev.Skipped || ev.From != Before || ev.To != After {
		t.Errorf("event = %+v", ev)
	}
	if ev.Action != ActionComplete {
		t.Errorf("Action = %v, want complete", ev.Action)
	}
	if !slices.Equal(callbacks, []string{"enter", "leave"}) {
		t.Errorf("callbacks = %v", callbacks)
	}
	if !slices.Equal(toggles, []ToggleKind{ToggleLeave}) {
		t.Errorf("OnToggle = %v, want [leave]", toggles)
	}
	assertNear(t, "x after play+complete", box.X, 100)

	callbacks = nil
	f.reg.Recompute(0, 600)
	if !slices.Equal(callbacks, []string{"enterBack", "leaveBack"}) {
		t.Errorf("backward jump callbacks = %v", callbacks)
	}
	if f.events[1].Kind != ToggleLeaveBack || !f.events[1].Skipped {
		t.Errorf("backward jump event = %+v", f.events[1])
	}
}

func TestRegistryScrubProgress(t *testing.T) {
	f := newTriggerFixture(t)
	f.section.SetPosition(0, 100)
	f.section.SetSize(800, 200)
	box := NewBox("box", 10, 10, ColorWhite)
	tw := newTestTween(t, box, Props{"x": To(100)}, 1, ease.Linear)
	tr := f.register(t, TriggerSpec{Start: "top top", End: "bottom top", Animation: tw, Scrub: true})

	tests := []struct {
		y, progress float64
	}{
		{100, 0},
		{200, 0.5},
		{300, 1},
		{50, 0},
		{350, 1},
		{150, 0.25},
	}
	for _, tt := range tests {
		f.reg.Recompute(tt.y, 600)
		assertNear(t, "Progress", tr.Progress(), tt.progress)
		assertNear(t, "x", box.X, 100*tt.progress)
	}
	for _, ev := range f.events {
		if ev.Action != ActionNone {
			t.Errorf("scrub trigger applied action %v", ev.Action)
		}
	}
	if tw.State() != StatePaused {
		t.Errorf("scrubbed animation State = %v, want paused", tw.State())
	}
}

func TestRegistryScrubSmoothing(t *testing.T) {
	f := newTriggerFixture(t)
	f.section.SetPosition(0, 100)
	f.section.SetSize(800, 200)
	box := NewBox("box", 10, 10, ColorWhite)
	tw := newTestTween(t, box, Props{"x": To(100)}, 1, ease.Linear)
	tr := f.register(t, TriggerSpec{Start: "top top", End: "bottom top", Animation: tw, Scrub: true, Smoothing: 0.1})

	f.reg.Recompute(300, 600)
	if tr.Progress() != 0 {
		t.Fatalf("smoothed progress jumped to %v", tr.Progress())
	}
	f.reg.Advance(1.0 / 60)
	first := tr.Progress()
	if first <= 0 || first >= 1 {
		t.Fatalf("progress after one step = %v, want in (0, 1)", first)
	}
	for range 120 {
		f.reg.Advance(1.0 / 60)
	}
	assertNear(t, "converged progress", tr.Progress(), 1)
	assertNear(t, "x", box.X, 100)
}

func TestRegistryRegisterPausesAnimation(t *testing.T) {
	f := newTriggerFixture(t)
	tw := newTestTween(t, NewContainer("n"), Props{"x": To(1)}, 1, ease.Linear)
	tw.Play()
	f.register(t, TriggerSpec{Animation: tw})
	if tw.State() != StatePaused {
		t.Errorf("State = %v, want paused", tw.State())
	}
}

func TestRegistryDefaultActionsPlayOnEnter(t *testing.T) {
	f := newTriggerFixture(t)
	tw := newTestTween(t, NewContainer("n"), Props{"x": To(1)}, 1, ease.Linear)
	f.register(t, TriggerSpec{Start: "top 80%", End: "bottom 20%", Animation: tw})
	f.reg.Recompute(800, 600)
	if tw.State() != StateRunning {
		t.Errorf("State = %v, want running", tw.State())
	}
	f.reg.Recompute(2000, 600)
	if tw.State() != StateRunning {
		t.Errorf("leave with action none changed State to %v", tw.State())
	}
}

func TestRegistryDeferredMutation(t *testing.T) {
	f := newTriggerFixture(t)
	var late *Trigger
	lateEntered := 0
	f.register(t, TriggerSpec{
		Name: "first",
		OnEnter: func(*Trigger) {
			var err error
			late, err = f.reg.Register(TriggerSpec{
				Name:    "late",
				Ref:     f.section,
				OnEnter: func(*Trigger) { lateEntered++ },
			})
			if err != nil {
				t.Error(err)
			}
			if f.reg.Len() != 1 {
				t.Errorf("Len during pass = %d, want 1", f.reg.Len())
			}
		},
	})

	f.reg.Recompute(800, 600)
	if lateEntered != 0 {
		t.Error("a trigger registered mid-pass must not be evaluated in that pass")
	}
	if f.reg.Len() != 2 {
		t.Fatalf("Len after pass = %d, want 2", f.reg.Len())
	}
	f.reg.Recompute(800, 600)
	if lateEntered != 1 {
		t.Errorf("late trigger entered %d times, want 1", lateEntered)
	}
	if late.Membership() != Inside {
		t.Errorf("late membership = %v", late.Membership())
	}
}

func TestRegistryUnregisterMidPassDeferred(t *testing.T) {
	f := newTriggerFixture(t)
	var second *Trigger
	secondFired := 0
	f.register(t, TriggerSpec{
		OnEnter: func(*Trigger) {
			second.Kill()
			if second.Killed() {
				t.Error("unregister inside a pass must wait for the pass to end")
			}
		},
	})
	second = f.register(t, TriggerSpec{
		OnEnter: func(*Trigger) { secondFired++ },
	})

	f.reg.Recompute(800, 600)
	if secondFired != 1 {
		t.Errorf("second fired %d times in the pass it was unregistered in, want 1", secondFired)
	}
	if !second.Killed() || f.reg.Len() != 1 {
		t.Errorf("Killed = %v, Len = %d", second.Killed(), f.reg.Len())
	}
	f.reg.Recompute(0, 600)
	f.reg.Recompute(800, 600)
	if secondFired != 1 {
		t.Errorf("second fired %d times after removal, want 1", secondFired)
	}
}

func TestRegistryKillAllMidPassDeferred(t *testing.T) {
	f := newTriggerFixture(t)
	fired := 0
	f.register(t, TriggerSpec{OnEnter: func(*Trigger) { f.reg.KillAll() }})
	last := f.register(t, TriggerSpec{OnEnter: func(*Trigger) { fired++ }})

	f.reg.Recompute(800, 600)
	if fired != 1 || !last.Killed() || f.reg.Len() != 0 {
		t.Errorf("fired = %d, Killed = %v, Len = %d", fired, last.Killed(), f.reg.Len())
	}
}

func TestRegistryReentrantRecomputeIgnored(t *testing.T) {
	f := newTriggerFixture(t)
	f.register(t, TriggerSpec{
		OnEnter: func(*Trigger) { f.reg.Recompute(0, 600) },
	})
	f.reg.Recompute(800, 600)
	if f.reg.ScrollY() != 800 {
		t.Errorf("ScrollY = %v, want 800", f.reg.ScrollY())
	}
	if len(f.events) != 1 {
		t.Errorf("events = %d, want 1", len(f.events))
	}
}

func TestRegistryDetachedReferenceFreezes(t *testing.T) {
	f := newTriggerFixture(t)
	var buf bytes.Buffer
	f.reg.SetLogger(NewLogger(&buf, "warn", "text"))
	other := NewContainer("other")
	f.page.Root().AddChild(other)
	tr := f.register(t, TriggerSpec{})
	live := f.register(t, TriggerSpec{Ref: other, Start: "top top", End: "bottom top"})

	f.section.RemoveFromParent()
	f.reg.Recompute(800, 600)
	f.reg.Recompute(900, 600)

	if !tr.Frozen() || tr.Membership() != Before {
		t.Errorf("Frozen = %v, Membership = %v", tr.Frozen(), tr.Membership())
	}
	if live.Frozen() {
		t.Error("other triggers keep evaluating")
	}
	if got := strings.Count(buf.String(), "trigger reference detached"); got != 1 {
		t.Errorf("warning logged %d times, want 1:\n%s", got, buf.String())
	}
}

func TestRegistryWaitsForUnmountedReference(t *testing.T) {
	f := newTriggerFixture(t)
	late := NewContainer("late")
	late.SetPosition(0, 1000)
	late.SetSize(800, 400)
	tr := f.register(t, TriggerSpec{Ref: late, Start: "top 80%", End: "bottom 20%"})

	f.page.Step(frameDT)
	if tr.Frozen() {
		t.Fatal("a reference that was never attached must not freeze the trigger")
	}

	f.page.Root().AddChild(late)
	f.page.RefreshAll()
	f.page.InjectScrollTo(900)
	f.page.Step(frameDT)
	if tr.Frozen() || tr.Membership() != Inside {
		t.Errorf("Frozen = %v, Membership = %v, want live and inside", tr.Frozen(), tr.Membership())
	}
	assertNear(t, "Start", tr.Start(), 520)

	late.RemoveFromParent()
	f.page.Step(frameDT)
	if !tr.Frozen() || tr.Membership() != Inside {
		t.Errorf("after removal Frozen = %v, Membership = %v", tr.Frozen(), tr.Membership())
	}
}

func TestRegistryOnce(t *testing.T) {
	f := newTriggerFixture(t)
	entered := 0
	tr := f.register(t, TriggerSpec{Once: true, OnEnter: func(*Trigger) { entered++ }})
	f.reg.Recompute(800, 600)
	f.reg.Recompute(0, 600)
	f.reg.Recompute(800, 600)
	if entered != 1 || !tr.Killed() || f.reg.Len() != 0 {
		t.Errorf("entered = %d, Killed = %v, Len = %d", entered, tr.Killed(), f.reg.Len())
	}
}

func TestRegistryRefreshAllUsesCurrentLayout(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{Start: "top 80%", End: "bottom 20%"})
	f.reg.Recompute(800, 600)
	if tr.Membership() != Inside {
		t.Fatalf("Membership = %v", tr.Membership())
	}

	f.section.SetPosition(0, 2000)
	f.reg.RefreshAll()
	assertNear(t, "Start", tr.Start(), 1520)
	if tr.Membership() != Before {
		t.Errorf("Membership after layout change = %v, want before", tr.Membership())
	}
	if got := f.kinds(); !slices.Equal(got, []ToggleKind{ToggleEnter, ToggleLeaveBack}) {
		t.Errorf("kinds = %v", got)
	}
}

func TestRegistryScrubOwnReferenceKeepsRange(t *testing.T) {
	f := newTriggerFixture(t)
	f.section.SetSize(800, 800)
	tw := newTestTween(t, f.section, Props{"yPercent": To(-10)}, 1, ease.Linear)
	tr := f.register(t, TriggerSpec{Animation: tw, Scrub: true})

	// "top bottom" to "bottom top": 400 to 1800, so 1100 is the midpoint.
	for range 6 {
		f.reg.Recompute(1100, 600)
		assertNear(t, "Start", tr.Start(), 400)
		assertNear(t, "End", tr.End(), 1800)
		assertNear(t, "Progress", tr.Progress(), 0.5)
		assertNear(t, "yPercent", f.section.YPercent, -5)
	}

	f.section.SetPosition(0, 1200)
	f.reg.RefreshAll()
	if tr.Start() <= 400 {
		t.Errorf("Start after RefreshAll = %v, want remeasured past 400", tr.Start())
	}
	start := tr.Start()
	f.reg.Recompute(1100, 600)
	assertNear(t, "Start between refreshes", tr.Start(), start)
}

func TestRegistryViewportHeightChangeRemeasures(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{Start: "top 80%"})
	f.reg.Recompute(0, 600)
	assertNear(t, "Start", tr.Start(), 520)
	f.reg.Recompute(0, 1000)
	assertNear(t, "Start", tr.Start(), 200)
}

func TestRegistrySweepFiresOncePerCrossing(t *testing.T) {
	f := newTriggerFixture(t)
	box := NewBox("box", 10, 10, ColorWhite)
	f.section.AddChild(box)
	tw := newTestTween(t, box, Props{"x": To(100)}, 1, ease.Linear)
	acts, err := ParseToggleActions("play reverse restart reverse")
	if err != nil {
		t.Fatal(err)
	}
	var callbacks []ToggleKind
	f.register(t, TriggerSpec{
		Start:     "top 80%",
		End:       "bottom 20%",
		Animation: tw,
		Actions:   acts,
		OnToggle:  func(_ *Trigger, k ToggleKind) { callbacks = append(callbacks, k) },
	})

	// Range is [520, 1280]. Every step below moves the scroll offset without
	// crossing more than one boundary at a time.
	f.reg.Recompute(0, 600)
	for _, y := range []float64{300, 600} {
		f.reg.Recompute(y, 600)
	}
	if tw.State() != StateRunning {
		t.Fatalf("after enter State = %v, want running", tw.State())
	}
	tw.Update(0.4)
	for _, y := range []float64{700, 900, 1100, 1280} {
		f.reg.Recompute(y, 600)
		if tw.State() != StateRunning || tw.Time() < 0.4-1e-9 {
			t.Fatalf("at %v: State = %v, Time = %v; inside-range scrolls must not restart", y, tw.State(), tw.Time())
		}
	}
	for _, y := range []float64{1400, 1800, 1200, 1000, 700, 500, 100} {
		f.reg.Recompute(y, 600)
	}

	want := []ToggleKind{ToggleEnter, ToggleLeave, ToggleEnterBack, ToggleLeaveBack}
	if !slices.Equal(f.kinds(), want) {
		t.Errorf("events = %v, want %v", f.kinds(), want)
	}
	if !slices.Equal(callbacks, want) {
		t.Errorf("callbacks = %v, want %v", callbacks, want)
	}
	acted := []Action{ActionPlay, ActionReverse, ActionRestart, ActionReverse}
	for i, ev := range f.events {
		if ev.Action != acted[i] || ev.Skipped {
			t.Errorf("event %d: Action = %v, Skipped = %v", i, ev.Action, ev.Skipped)
		}
	}
}

func TestRegistryEndClampedToStart(t *testing.T) {
	f := newTriggerFixture(t)
	tr := f.register(t, TriggerSpec{Start: "bottom top", End: "top top"})
	f.reg.Recompute(1400, 600)
	assertNear(t, "End", tr.End(), tr.Start())
	if tr.Membership() != Inside || tr.Progress() != 1 {
		t.Errorf("Membership = %v, Progress = %v", tr.Membership(), tr.Progress())
	}
}

func TestRegistryKillAllAndDirection(t *testing.T) {
	f := newTriggerFixture(t)
	f.register(t, TriggerSpec{})
	f.register(t, TriggerSpec{})

	f.reg.Recompute(0, 600)
	f.reg.Recompute(100, 600)
	if f.reg.Direction() != Forward {
		t.Errorf("Direction = %v, want forward", f.reg.Direction())
	}
	f.reg.Recompute(50, 600)
	f.reg.Recompute(50, 600)
	if f.reg.Direction() != Backward {
		t.Errorf("Direction = %v, want backward", f.reg.Direction())
	}

	trs := f.reg.Triggers()
	f.reg.KillAll()
	if f.reg.Len() != 0 {
		t.Errorf("Len = %d after KillAll", f.reg.Len())
	}
	for _, tr := range trs {
		if !tr.Killed() {
			t.Error("KillAll should mark triggers killed")
		}
	}
}

func TestRegistryInvalidSpecs(t *testing.T) {
	f := newTriggerFixture(t)
	tests := []struct {
		name string
		spec TriggerSpec
	}{
		{"nil ref", TriggerSpec{}},
		{"bad start", TriggerSpec{Ref: f.section, Start: "middle top"}},
		{"bad end", TriggerSpec{Ref: f.section, End: "bottom 1O%"}},
		{"negative smoothing", TriggerSpec{Ref: f.section, Scrub: true, Smoothing: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.reg.Register(tt.spec); !errors.Is(err, ErrInvalidBoundary) {
				t.Errorf("err = %v, want ErrInvalidBoundary", err)
			}
		})
	}
	if f.reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.reg.Len())
	}
}

func TestRegistryOnUpdate(t *testing.T) {
	f := newTriggerFixture(t)
	var seen []float64
	f.register(t, TriggerSpec{
		Start:    "top top",
		End:      "bottom top",
		OnUpdate: func(tr *Trigger) { seen = append(seen, tr.Progress()) },
	})
	f.reg.Recompute(1000, 600)
	f.reg.Recompute(1200, 600)
	if !slices.Equal(seen, []float64{0, 0.5}) {
		t.Errorf("OnUpdate progress = %v", seen)
	}
}
