package parallax

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a scroll script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a scroll script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected scroll and resize events across frames for
// automated runs. Attach to a Page via SetTestRunner.
//
// Supported actions: scroll {y}, scrollTo {y}, sweep {fromY, toY, frames},
// resize {width, height}, refresh, wait {frames}, mark {label},
// capture {label}. Captures are written on the next Draw, so they only
// produce files when the page is drawn.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool

	// OnMark is called for every "mark" step with its label.
	OnMark func(label string, p *Page)
}

// LoadTestScript parses a JSON scroll script and returns a TestRunner ready
// to be attached to a Page via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "scroll", "scrollTo", "sweep", "resize", "refresh", "wait", "mark", "capture":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the page. The runner's step method
// is called from Page.Step before injected events are processed.
func (p *Page) SetTestRunner(runner *TestRunner) {
	p.testRunner = runner
}

// Done reports whether all steps in the script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Page.Step.
func (r *TestRunner) step(p *Page) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(p.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "scroll":
		p.InjectScroll(st.Y)
	case "scrollTo":
		p.InjectScrollTo(st.Y)
	case "sweep":
		p.InjectSmoothScroll(st.FromY, st.ToY, st.Frames)
	case "resize":
		p.InjectResize(st.Width, st.Height)
	case "refresh":
		p.InjectRefresh()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "capture":
		p.Capture(st.Label)
	case "mark":
		p.logger.Info("mark", "label", st.Label, "frame", p.frame, "scrollY", p.viewport.ScrollY)
		if r.OnMark != nil {
			r.OnMark(st.Label, p)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(p.injectQueue) == 0 {
		r.done = true
	}
}
