package parallax

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tanema/gween/ease"
)

// disposer is anything a Scope owns and tears down on Revert.
type disposer interface {
	dispose() error
}

// cleanupFunc adapts a user cleanup function to disposer.
type cleanupFunc func() error

func (f cleanupFunc) dispose() error { return f() }

// ScopeState reports whether a scope still accepts new effects.
type ScopeState uint8

const (
	ScopeOpen ScopeState = iota
	ScopeReverted
)

func (s ScopeState) String() string {
	if s == ScopeReverted {
		return "reverted"
	}
	return "open"
}

var errNoRegistry = errors.New("parallax: scope has no registry")

// Scope groups the effects and triggers created for one page section so they
// can be torn down together. Tweens, timelines and staggers created through a
// scope start playing on the scope's ticker unless a trigger takes them over.
//
// Revert disposes everything in reverse creation order. Every owned item is
// disposed even when others fail; failures are returned as one
// *TeardownError.
type Scope struct {
	root     *Node
	registry *Registry
	ticker   *Ticker
	logger   *slog.Logger
	owned    []disposer
	state    ScopeState
}

// OpenScope creates a scope rooted at root. reg and tk may be nil; a scope
// without a registry cannot create triggers and one without a ticker leaves
// effects for the caller to Update.
func OpenScope(root *Node, reg *Registry, tk *Ticker) *Scope {
	if root == nil {
		panic("parallax: scope root is nil")
	}
	s := &Scope{root: root, registry: reg, ticker: tk, logger: discardLogger}
	if reg != nil {
		s.logger = reg.logger
	}
	return s
}

// Root returns the scope's root node.
func (s *Scope) Root() *Node { return s.root }

// State returns whether the scope is open or reverted.
func (s *Scope) State() ScopeState { return s.state }

// Len returns the number of items the scope owns.
func (s *Scope) Len() int { return len(s.owned) }

// Select returns the descendants of the scope root carrying class.
func (s *Scope) Select(class string) []*Node {
	return s.root.Select(class)
}

func (s *Scope) checkOpen() error {
	if s.state == ScopeReverted {
		return fmt.Errorf("scope %q: %w", s.root.Name, ErrScopeReverted)
	}
	return nil
}

// adopt records e as owned, attaches it to the scope's ticker and starts it.
func (s *Scope) adopt(e Effect, autoplay bool) {
	p := e.core()
	if p.log == nil {
		p.log = s.logger
	}
	s.owned = append(s.owned, e)
	if s.ticker != nil {
		s.ticker.Attach(e)
	}
	if autoplay {
		p.activate()
	}
}

// Tween creates a tween owned by the scope and starts it.
func (s *Scope) Tween(target *Node, props Props, duration float64, fn ease.TweenFunc) (*Tween, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	tw, err := NewTween(target, props, duration, fn)
	if err != nil {
		return nil, err
	}
	s.adopt(tw, true)
	return tw, nil
}

// FromTo creates a tween from explicit start values to end values. Names in
// to without a start in from animate from their current value.
func (s *Scope) FromTo(target *Node, from, to map[string]float64, duration float64, fn ease.TweenFunc) (*Tween, error) {
	props := make(Props, len(to))
	for name, v := range to {
		if a, ok := from[name]; ok {
			props[name] = FromTo(a, v)
			continue
		}
		props[name] = To(v)
	}
	for name := range from {
		if _, ok := to[name]; !ok {
			return nil, fmt.Errorf("%w: property %q has a start but no end", ErrInvalidTweenSpec, name)
		}
	}
	return s.Tween(target, props, duration, fn)
}

// Set writes props to target immediately, as a zero-length tween owned by the
// scope, so that Revert restores the previous values.
func (s *Scope) Set(target *Node, props Props) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	tw, err := NewTween(target, props, 0, ease.Linear)
	if err != nil {
		return err
	}
	s.adopt(tw, false)
	tw.Complete()
	return nil
}

// Timeline creates a timeline owned by the scope. Unless opts.Paused is set
// it starts on the next tick, so children may be added right after creation.
func (s *Scope) Timeline(opts TimelineOptions) (*Timeline, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	tl := NewTimeline(opts)
	s.adopt(tl, !opts.Paused)
	return tl, nil
}

// Stagger creates a staggered timeline owned by the scope and starts it. An
// empty target list yields a complete timeline that never schedules.
func (s *Scope) Stagger(targets []*Node, tmpl TweenTemplate, spec StaggerSpec) (*Timeline, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	tl, err := Stagger(targets, tmpl, spec)
	if err != nil {
		return nil, err
	}
	s.adopt(tl, len(targets) > 0)
	return tl, nil
}

// ScrollTrigger registers a trigger owned by the scope.
func (s *Scope) ScrollTrigger(spec TriggerSpec) (*Trigger, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.registry == nil {
		return nil, errNoRegistry
	}
	t, err := s.registry.Register(spec)
	if err != nil {
		return nil, err
	}
	s.owned = append(s.owned, t)
	return t, nil
}

// Own hands an effect built outside the scope to it for teardown. The
// effect is attached to the scope's ticker but its play state is unchanged.
func (s *Scope) Own(e Effect) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.adopt(e, false)
	return nil
}

// Cleanup registers fn to run during Revert, in reverse order with the
// scope's effects.
func (s *Scope) Cleanup(fn func() error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.owned = append(s.owned, cleanupFunc(fn))
	return nil
}

// Add runs fn against the scope. Everything fn creates through the scope is
// owned by it. If fn fails the scope is reverted, so a half-built section
// leaves nothing behind; the returned error joins fn's error with any
// teardown failure.
func (s *Scope) Add(fn func(*Scope) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := fn(s); err != nil {
		err = fmt.Errorf("scope %q: %w", s.root.Name, err)
		return errors.Join(err, s.Revert())
	}
	return nil
}

// Revert disposes everything the scope owns in reverse creation order:
// tweens and timelines are killed and their targets restored, triggers are
// unregistered, and cleanup functions run. A failing item does not stop the
// others. Calling Revert again is a no-op that returns nil.
func (s *Scope) Revert() error {
	if s.state == ScopeReverted {
		return nil
	}
	s.state = ScopeReverted

	var errs []error
	for i := len(s.owned) - 1; i >= 0; i-- {
		if err := safeDispose(s.owned[i]); err != nil {
			errs = append(errs, err)
		}
		s.owned[i] = nil
	}
	s.owned = nil

	if len(errs) == 0 {
		s.logger.Debug("scope reverted", "scope", s.root.Name)
		return nil
	}
	err := &TeardownError{Scope: s.root.Name, Errs: errs}
	s.logger.Error("scope revert failed", "scope", s.root.Name, "failures", len(errs), "err", err)
	return err
}

// safeDispose disposes d, turning a panic into an error.
func safeDispose(d disposer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("teardown panic: %w", e)
				return
			}
			err = fmt.Errorf("teardown panic: %v", r)
		}
	}()
	return d.dispose()
}
