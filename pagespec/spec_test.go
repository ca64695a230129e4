package pagespec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPortfolio(t *testing.T) {
	spec, err := Load("testdata/portfolio.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1280.0, spec.Viewport.Width)
	assert.Equal(t, 720.0, spec.Viewport.Height)
	require.NotNil(t, spec.Background)

	var names []string
	for _, s := range spec.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"hero", "about", "skills", "experience", "projects", "contact"}, names)

	hero := spec.Sections[0]
	require.Len(t, hero.Animations, 3)
	assert.Equal(t, KindTimeline, hero.Animations[1].Kind)
	assert.Equal(t, "-=0.5", hero.Animations[1].Steps[1].Offset)
	assert.Equal(t, -1, hero.Animations[2].Repeat)

	about := spec.Sections[1]
	require.NotNil(t, about.Animations[1].Trigger)
	assert.Equal(t, Scrub{Enabled: true}, about.Animations[1].Trigger.Scrub)

	experience := spec.Sections[3]
	assert.Equal(t, Scrub{Enabled: true, Smoothing: 1}, experience.Animations[1].Trigger.Scrub)

	bars := spec.Sections[2].Animations[1]
	assert.True(t, bars.To["width"].IsExpr())
	assert.False(t, bars.From["width"].IsExpr())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte(`
viewport: { width: 800, height: 600 }
sections:
  - { name: a, height: 100, colour: "#ffffff" }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	require.ErrorIs(t, err, ErrInvalidSpec)
}

func TestValidateProblems(t *testing.T) {
	const head = "viewport: { width: 800, height: 600 }\n"
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"viewport", "viewport: { width: 0, height: 600 }\nsections: [{ name: a, height: 10 }]", "viewport size"},
		{"no sections", head, "no sections"},
		{"missing name", head + "sections: [{ height: 10 }]", "missing name"},
		{"duplicate", head + "sections: [{ name: a, height: 10 }, { name: a, height: 10 }]", "duplicate name"},
		{"height", head + "sections: [{ name: a, height: 0 }]", "height 0"},
		{"missing kind", head + `sections:
  - name: a
    height: 10
    animations: [{ target: a, to: { x: 1 } }]`, "missing kind"},
		{"unknown kind", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: morph, target: a, to: { x: 1 } }]`, `unknown kind "morph"`},
		{"unknown target", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: ghost, to: { x: 1 } }]`, `unknown target "ghost"`},
		{"unknown class", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: .card, to: { x: 1 } }]`, `no element has class "card"`},
		{"property", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: a, to: { skew: 1 } }]`, `"skew" is not animatable`},
		{"start without end", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: fromTo, target: a, from: { y: 1 }, to: { x: 1 } }]`, `"y" has a start but no end`},
		{"ease", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: a, to: { x: 1 }, ease: wobble }]`, "wobble"},
		{"stagger from", head + `sections:
  - name: a
    height: 10
    elements: [{ name: b, class: card }]
    animations: [{ kind: stagger, target: .card, to: { x: 1 }, stagger_from: middle }]`, `unknown stagger_from "middle"`},
		{"step offset", head + `sections:
  - name: a
    height: 10
    animations:
      - kind: timeline
        steps: [{ target: a, to: { x: 1 }, offset: "~1" }]`, "step 0"},
		{"boundary", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: a, to: { x: 1 }, trigger: { start: "middle nowhere" } }]`, "trigger:"},
		{"actions", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: a, to: { x: 1 }, trigger: { actions: "play jump" } }]`, "trigger:"},
		{"infinite scrub", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: tween, target: a, to: { x: 1 }, repeat: -1, trigger: { scrub: true } }]`, "cannot scrub"},
		{"set trigger", head + `sections:
  - name: a
    height: 10
    animations: [{ kind: set, target: a, to: { x: 1 }, trigger: {} }]`, "set cannot have a trigger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidSpec)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte(`
viewport: { width: 800, height: 600 }
sections:
  - name: a
    height: 10
    animations:
      - { kind: tween, target: ghost, to: { x: 1 } }
      - { kind: tween, target: a, to: { x: 1 }, delay: -1 }
`))
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Contains(t, err.Error(), "animation 0: unknown target")
	assert.Contains(t, err.Error(), "animation 1: negative delay")
}
