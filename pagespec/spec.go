// Package pagespec loads page descriptions from YAML and mounts them onto a
// parallax.Page: sections, their elements, and the animations and scroll
// triggers each section owns.
package pagespec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phanxgames/parallax"
	"gopkg.in/yaml.v3"
)

// Animation kinds.
const (
	KindTween    = "tween"
	KindFromTo   = "fromTo"
	KindSet      = "set"
	KindTimeline = "timeline"
	KindStagger  = "stagger"
)

// ErrInvalidSpec wraps every validation failure reported by Validate.
var ErrInvalidSpec = errors.New("pagespec: invalid spec")

type PageSpec struct {
	Viewport   ViewportSpec  `yaml:"viewport"`
	Background *Color        `yaml:"background"`
	Sections   []SectionSpec `yaml:"sections"`
}

type ViewportSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SectionSpec is one full-width band of the page. Sections stack top to
// bottom in file order.
type SectionSpec struct {
	Name       string          `yaml:"name"`
	Class      string          `yaml:"class"`
	Height     float64         `yaml:"height"`
	Color      *Color          `yaml:"color"`
	Elements   []ElementSpec   `yaml:"elements"`
	Animations []AnimationSpec `yaml:"animations"`
}

type ElementSpec struct {
	Name     string             `yaml:"name"`
	Class    string             `yaml:"class"`
	Label    string             `yaml:"label"`
	X        float64            `yaml:"x"`
	Y        float64            `yaml:"y"`
	Width    float64            `yaml:"width"`
	Height   float64            `yaml:"height"`
	Color    *Color             `yaml:"color"`
	Alpha    *float64           `yaml:"alpha"`
	Data     map[string]float64 `yaml:"data"`
	Children []ElementSpec      `yaml:"children"`
}

// AnimationSpec describes one animation of a section. Target is an element
// name or a ".class" selector scoped to the section.
type AnimationSpec struct {
	Kind        string           `yaml:"kind"`
	Target      string           `yaml:"target"`
	From        map[string]Value `yaml:"from"`
	To          map[string]Value `yaml:"to"`
	Duration    float64          `yaml:"duration"`
	Ease        string           `yaml:"ease"`
	Delay       float64          `yaml:"delay"`
	Repeat      int              `yaml:"repeat"`
	Yoyo        bool             `yaml:"yoyo"`
	Stagger     float64          `yaml:"stagger"`
	StaggerFrom string           `yaml:"stagger_from"`
	Steps       []StepSpec       `yaml:"steps"`
	Trigger     *TriggerSpec     `yaml:"trigger"`
}

// StepSpec is one child of a timeline animation. Offset uses the timeline
// offset syntax ("1.5", "+=0.2", "-=0.5", "<"); empty means after the
// previous step.
type StepSpec struct {
	Target   string           `yaml:"target"`
	From     map[string]Value `yaml:"from"`
	To       map[string]Value `yaml:"to"`
	Duration float64          `yaml:"duration"`
	Ease     string           `yaml:"ease"`
	Offset   string           `yaml:"offset"`
}

// TriggerSpec binds an animation to the scroll position. Ref defaults to
// the section itself.
type TriggerSpec struct {
	Ref     string `yaml:"ref"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	Actions string `yaml:"actions"`
	Scrub   Scrub  `yaml:"scrub"`
	Once    bool   `yaml:"once"`
}

// Load reads and validates the page description at path.
func Load(path string) (*PageSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pagespec: load %s: %w", path, err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pagespec: %s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes and validates a page description. Unknown keys are errors.
func Parse(data []byte) (*PageSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var spec PageSpec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidSpec)
		}
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the description without building anything. Every
// problem is reported, joined into one error wrapping ErrInvalidSpec.
func (s *PageSpec) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...)))
	}

	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		fail("viewport size %vx%v must be positive", s.Viewport.Width, s.Viewport.Height)
	}
	if len(s.Sections) == 0 {
		fail("no sections")
	}
	seen := make(map[string]bool, len(s.Sections))
	for i := range s.Sections {
		sec := &s.Sections[i]
		where := fmt.Sprintf("section %d", i)
		if sec.Name != "" {
			where = fmt.Sprintf("section %q", sec.Name)
		}
		switch {
		case sec.Name == "":
			fail("%s: missing name", where)
		case seen[sec.Name]:
			fail("%s: duplicate name", where)
		}
		seen[sec.Name] = true
		if sec.Height <= 0 {
			fail("%s: height %v must be positive", where, sec.Height)
		}
		names := make(map[string]bool)
		classes := make(map[string]bool)
		collectElements(sec.Elements, names, classes)
		for j := range sec.Animations {
			a := &sec.Animations[j]
			for _, msg := range a.problems(sec.Name, names, classes) {
				fail("%s: animation %d: %s", where, j, msg)
			}
		}
	}
	return errors.Join(errs...)
}

func collectElements(els []ElementSpec, names, classes map[string]bool) {
	for _, el := range els {
		if el.Name != "" {
			names[el.Name] = true
		}
		for _, c := range strings.Fields(el.Class) {
			classes[c] = true
		}
		collectElements(el.Children, names, classes)
	}
}

func (a *AnimationSpec) problems(section string, names, classes map[string]bool) []string {
	var out []string
	checkTarget := func(target string) {
		switch {
		case target == "":
			out = append(out, "missing target")
		case strings.HasPrefix(target, "."):
			if !classes[target[1:]] {
				out = append(out, fmt.Sprintf("no element has class %q", target[1:]))
			}
		case target != section && !names[target]:
			out = append(out, fmt.Sprintf("unknown target %q", target))
		}
	}
	checkProps := func(m map[string]Value) {
		for name := range m {
			if !parallax.IsAnimatable(name) {
				out = append(out, fmt.Sprintf("property %q is not animatable", name))
			}
		}
	}
	checkEase := func(name string) {
		if _, err := parallax.EaseByName(name); err != nil {
			out = append(out, err.Error())
		}
	}
	checkTween := func(from, to map[string]Value, duration float64) {
		if len(to) == 0 {
			out = append(out, "no end values")
		}
		checkProps(from)
		checkProps(to)
		for name := range from {
			if _, ok := to[name]; !ok {
				out = append(out, fmt.Sprintf("property %q has a start but no end", name))
			}
		}
		if duration < 0 {
			out = append(out, fmt.Sprintf("negative duration %v", duration))
		}
	}

	switch a.Kind {
	case KindTween, KindFromTo, KindStagger:
		checkTarget(a.Target)
		checkTween(a.From, a.To, a.Duration)
		checkEase(a.Ease)
		if a.Kind == KindFromTo && len(a.From) == 0 {
			out = append(out, "fromTo without start values")
		}
		if a.Kind == KindStagger {
			if a.Stagger < 0 {
				out = append(out, fmt.Sprintf("negative stagger %v", a.Stagger))
			}
			if _, err := parseStaggerFrom(a.StaggerFrom); err != nil {
				out = append(out, err.Error())
			}
		}
	case KindSet:
		checkTarget(a.Target)
		checkTween(nil, a.To, 0)
		if a.Trigger != nil {
			out = append(out, "set cannot have a trigger")
		}
	case KindTimeline:
		if len(a.Steps) == 0 {
			out = append(out, "timeline without steps")
		}
		for k, st := range a.Steps {
			n := len(out)
			checkTarget(st.Target)
			checkTween(st.From, st.To, st.Duration)
			checkEase(st.Ease)
			if st.Offset != "" {
				if _, err := parallax.ParseOffset(st.Offset); err != nil {
					out = append(out, err.Error())
				}
			}
			for i := n; i < len(out); i++ {
				out[i] = fmt.Sprintf("step %d: %s", k, out[i])
			}
		}
	case "":
		out = append(out, "missing kind")
	default:
		out = append(out, fmt.Sprintf("unknown kind %q", a.Kind))
	}
	if a.Delay < 0 {
		out = append(out, fmt.Sprintf("negative delay %v", a.Delay))
	}
	if a.Repeat < -1 {
		out = append(out, fmt.Sprintf("repeat %d must be -1 or more", a.Repeat))
	}

	if t := a.Trigger; t != nil {
		if t.Ref != "" && t.Ref != section && !names[t.Ref] {
			out = append(out, fmt.Sprintf("trigger: unknown ref %q", t.Ref))
		}
		for _, b := range []string{t.Start, t.End} {
			if b == "" {
				continue
			}
			if _, err := parallax.ParseBoundary(b); err != nil {
				out = append(out, "trigger: "+err.Error())
			}
		}
		if t.Actions != "" {
			if _, err := parallax.ParseToggleActions(t.Actions); err != nil {
				out = append(out, "trigger: "+err.Error())
			}
		}
		if a.Repeat == -1 && t.Scrub.Enabled {
			out = append(out, "trigger: cannot scrub an infinite animation")
		}
	}
	return out
}

func parseStaggerFrom(s string) (parallax.StaggerFrom, error) {
	switch s {
	case "", "start":
		return parallax.StaggerStart, nil
	case "end":
		return parallax.StaggerEnd, nil
	case "center":
		return parallax.StaggerCenter, nil
	}
	return 0, fmt.Errorf("unknown stagger_from %q", s)
}
