package pagespec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phanxgames/parallax"
	"github.com/tanema/gween/ease"
)

// Mount is a page description built onto a Page. Unmount removes it again.
type Mount struct {
	page     *parallax.Page
	sections []*parallax.Node
	scopes   []*parallax.Scope
}

// Sections returns the mounted section nodes, top to bottom.
func (m *Mount) Sections() []*parallax.Node { return m.sections }

// Scope returns the animation scope of the named section, or nil.
func (m *Mount) Scope(section string) *parallax.Scope {
	for _, s := range m.scopes {
		if s.Root().Name == section {
			return s
		}
	}
	return nil
}

// Build creates the sections of spec under page's root, stacked below any
// sections already there, and builds each section's animations inside its
// own scope. On failure everything built so far is removed again.
func Build(page *parallax.Page, spec *PageSpec) (*Mount, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if spec.Background != nil {
		page.ClearColor = spec.Background.Color
	}

	m := &Mount{page: page}
	y := 0.0
	for _, c := range page.Root().Children() {
		if b := c.WorldBounds().Bottom(); b > y {
			y = b
		}
	}
	width := page.Viewport().Width
	for i := range spec.Sections {
		sec := &spec.Sections[i]
		node := parallax.NewContainer(sec.Name)
		node.Class = sec.Class
		node.Y = y
		node.Width = width
		node.Height = sec.Height
		if sec.Color != nil {
			node.Color = sec.Color.Color
		}
		for _, el := range sec.Elements {
			node.AddChild(buildElement(el))
		}
		page.Root().AddChild(node)
		m.sections = append(m.sections, node)
		y += sec.Height
	}
	page.RefreshAll()

	for i := range spec.Sections {
		sec := &spec.Sections[i]
		scope := page.OpenScope(m.sections[i])
		m.scopes = append(m.scopes, scope)
		err := scope.Add(func(s *parallax.Scope) error {
			for j := range sec.Animations {
				if err := buildAnimation(s, &sec.Animations[j]); err != nil {
					return fmt.Errorf("animation %d: %w", j, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("pagespec: build: %w", err), m.Unmount())
		}
	}
	page.Logger().Debug("page mounted", "sections", len(m.sections), "triggers", page.Registry().Len())
	return m, nil
}

// Unmount reverts every section scope, last section first, then removes and
// disposes the section nodes.
func (m *Mount) Unmount() error {
	var errs []error
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if err := m.scopes[i].Revert(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, n := range m.sections {
		n.Dispose()
	}
	m.scopes = nil
	m.sections = nil
	m.page.RefreshAll()
	return errors.Join(errs...)
}

func buildElement(el ElementSpec) *parallax.Node {
	var n *parallax.Node
	switch {
	case el.Label != "":
		n = parallax.NewLabel(el.Name, el.Label)
		n.Width, n.Height = el.Width, el.Height
	case el.Color != nil:
		n = parallax.NewBox(el.Name, el.Width, el.Height, el.Color.Color)
	default:
		n = parallax.NewContainer(el.Name)
		n.Width, n.Height = el.Width, el.Height
	}
	if el.Label != "" && el.Color != nil {
		n.Color = el.Color.Color
	}
	n.Class = el.Class
	n.X, n.Y = el.X, el.Y
	if el.Alpha != nil {
		n.Alpha = *el.Alpha
	}
	if len(el.Data) > 0 {
		n.Data = make(map[string]float64, len(el.Data))
		for k, v := range el.Data {
			n.Data[k] = v
		}
	}
	for _, c := range el.Children {
		n.AddChild(buildElement(c))
	}
	return n
}

// resolveTargets maps an element name or ".class" selector to nodes of the
// section. The section's own name selects the section.
func resolveTargets(root *parallax.Node, target string) ([]*parallax.Node, error) {
	if class, ok := strings.CutPrefix(target, "."); ok {
		return root.Select(class), nil
	}
	if target == root.Name {
		return []*parallax.Node{root}, nil
	}
	if n := root.Find(target); n != nil {
		return []*parallax.Node{n}, nil
	}
	return nil, fmt.Errorf("unknown target %q", target)
}

// targetEnv exposes a node to value expressions.
func targetEnv(n *parallax.Node) map[string]float64 {
	env := make(map[string]float64, len(n.Data)+4)
	for k, v := range n.Data {
		env[k] = v
	}
	env["x"] = n.X
	env["y"] = n.Y
	env["width"] = n.Width
	env["height"] = n.Height
	return env
}

// resolveProps evaluates from and to for target i of count.
func resolveProps(from, to map[string]Value, n *parallax.Node, i, count int) (parallax.Props, error) {
	env := Env{Index: i, Count: count, Target: targetEnv(n)}
	props := make(parallax.Props, len(to))
	for name, v := range to {
		end, err := v.Eval(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		start, ok := from[name]
		if !ok {
			props[name] = parallax.To(end)
			continue
		}
		a, err := start.Eval(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		props[name] = parallax.FromTo(a, end)
	}
	return props, nil
}

func buildAnimation(s *parallax.Scope, a *AnimationSpec) error {
	fn, err := parallax.EaseByName(a.Ease)
	if err != nil {
		return err
	}
	var anim parallax.Effect
	switch a.Kind {
	case KindSet:
		return buildSet(s, a)
	case KindTween, KindFromTo:
		anim, err = buildTween(s, a, fn)
	case KindStagger:
		anim, err = buildStagger(s, a, fn)
	case KindTimeline:
		anim, err = buildTimeline(s, a)
	default:
		err = fmt.Errorf("unknown kind %q", a.Kind)
	}
	if err != nil {
		return err
	}
	if a.Trigger == nil {
		return nil
	}
	return bindTrigger(s, a.Trigger, anim)
}

func buildSet(s *parallax.Scope, a *AnimationSpec) error {
	targets, err := resolveTargets(s.Root(), a.Target)
	if err != nil {
		return err
	}
	for i, n := range targets {
		props, err := resolveProps(nil, a.To, n, i, len(targets))
		if err != nil {
			return fmt.Errorf("set %s: %w", n.Name, err)
		}
		if err := s.Set(n, props); err != nil {
			return fmt.Errorf("set %s: %w", n.Name, err)
		}
	}
	return nil
}

// buildTween creates one tween per target. Several targets are grouped on a
// timeline starting together so that a trigger controls them as one.
func buildTween(s *parallax.Scope, a *AnimationSpec, fn ease.TweenFunc) (parallax.Effect, error) {
	targets, err := resolveTargets(s.Root(), a.Target)
	if err != nil {
		return nil, err
	}
	if len(targets) == 1 {
		props, err := resolveProps(a.From, a.To, targets[0], 0, 1)
		if err != nil {
			return nil, err
		}
		tw, err := s.Tween(targets[0], props, a.Duration, fn)
		if err != nil {
			return nil, err
		}
		tw.SetDelay(a.Delay)
		tw.SetRepeat(a.Repeat, a.Yoyo)
		return tw, nil
	}

	tl, err := s.Timeline(parallax.TimelineOptions{Delay: a.Delay})
	if err != nil {
		return nil, err
	}
	for i, n := range targets {
		props, err := resolveProps(a.From, a.To, n, i, len(targets))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Name, err)
		}
		tw, err := parallax.NewTween(n, props, a.Duration, fn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Name, err)
		}
		tw.SetRepeat(a.Repeat, a.Yoyo)
		tl.AddAt(tw, 0)
	}
	return tl, nil
}

func buildStagger(s *parallax.Scope, a *AnimationSpec, fn ease.TweenFunc) (parallax.Effect, error) {
	targets, err := resolveTargets(s.Root(), a.Target)
	if err != nil {
		return nil, err
	}
	from, err := parseStaggerFrom(a.StaggerFrom)
	if err != nil {
		return nil, err
	}

	tmpl := parallax.TweenTemplate{
		Props:    make(parallax.Props, len(a.To)),
		Funcs:    make(map[string]parallax.PropFunc),
		Duration: a.Duration,
		Ease:     fn,
		Delay:    a.Delay,
		Repeat:   a.Repeat,
		Yoyo:     a.Yoyo,
	}
	// Constant values go straight into the template. Per-target values are
	// evaluated up front so that evaluation errors surface here.
	for name, v := range a.To {
		start, hasStart := a.From[name]
		if hasStart && start.IsExpr() {
			return nil, fmt.Errorf("%s: start values of a stagger must be numbers", name)
		}
		r := parallax.To(0)
		if hasStart {
			r = parallax.FromTo(start.num, 0)
		}
		if !v.IsExpr() {
			r.To = v.num
			tmpl.Props[name] = r
			continue
		}
		tmpl.Props[name] = r
		ends := make([]float64, len(targets))
		for i, n := range targets {
			end, err := v.Eval(Env{Index: i, Count: len(targets), Target: targetEnv(n)})
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", n.Name, name, err)
			}
			ends[i] = end
		}
		tmpl.Funcs[name] = func(i int, _ *parallax.Node) float64 { return ends[i] }
	}
	return s.Stagger(targets, tmpl, parallax.StaggerSpec{Each: a.Stagger, From: from})
}

func buildTimeline(s *parallax.Scope, a *AnimationSpec) (parallax.Effect, error) {
	tl, err := s.Timeline(parallax.TimelineOptions{Delay: a.Delay, Repeat: a.Repeat, Yoyo: a.Yoyo})
	if err != nil {
		return nil, err
	}
	for k, st := range a.Steps {
		fn, err := parallax.EaseByName(st.Ease)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
		at, err := parallax.ParseOffset(st.Offset)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
		targets, err := resolveTargets(s.Root(), st.Target)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", k, err)
		}
		for i, n := range targets {
			props, err := resolveProps(st.From, st.To, n, i, len(targets))
			if err != nil {
				return nil, fmt.Errorf("step %d: %s: %w", k, n.Name, err)
			}
			tw, err := parallax.NewTween(n, props, st.Duration, fn)
			if err != nil {
				return nil, fmt.Errorf("step %d: %s: %w", k, n.Name, err)
			}
			if i == 0 {
				tl.Add(tw, at)
			} else {
				tl.Add(tw, parallax.WithPrevious(0))
			}
		}
	}
	return tl, nil
}

func bindTrigger(s *parallax.Scope, t *TriggerSpec, anim parallax.Effect) error {
	ref := s.Root()
	if t.Ref != "" && t.Ref != ref.Name {
		if ref = s.Root().Find(t.Ref); ref == nil {
			return fmt.Errorf("trigger: unknown ref %q", t.Ref)
		}
	}
	var actions parallax.ToggleActions
	if t.Actions != "" {
		var err error
		if actions, err = parallax.ParseToggleActions(t.Actions); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
	}
	_, err := s.ScrollTrigger(parallax.TriggerSpec{
		Ref:       ref,
		Start:     t.Start,
		End:       t.End,
		Actions:   actions,
		Animation: anim,
		Scrub:     t.Scrub.Enabled,
		Smoothing: t.Scrub.Smoothing,
		Once:      t.Once,
	})
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	return nil
}
