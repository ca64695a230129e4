package pagespec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"gopkg.in/yaml.v3"
)

// maxExprAllocs bounds the work a single value expression may do.
const maxExprAllocs = 4096

// Value is an animation end value: either a number or a tengo expression
// evaluated once per target. Expressions see three variables:
//
//	index   the target's position in the animation's target list
//	count   the number of targets
//	target  a map of the element's data plus x, y, width and height
//
// For example "target.level * 3" or "index * 40 + 10". The math module is
// importable: `import("math").floor(target.level / 10)`.
type Value struct {
	num      float64
	src      string
	compiled *tengo.Compiled
}

// Env is the per-target input of an expression.
type Env struct {
	Index  int
	Count  int
	Target map[string]float64
}

// Number returns a constant value.
func Number(v float64) Value { return Value{num: v} }

// Expr compiles src into an expression value.
func Expr(src string) (Value, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return Value{}, fmt.Errorf("empty expression")
	}
	script := tengo.NewScript([]byte("__value := (" + src + ")"))
	_ = script.Add("index", 0)
	_ = script.Add("count", 0)
	_ = script.Add("target", map[string]any{})
	script.SetImports(stdlib.GetModuleMap("math"))
	script.SetMaxAllocs(maxExprAllocs)

	compiled, err := script.Compile()
	if err != nil {
		return Value{}, fmt.Errorf("expression %q: %w", src, err)
	}
	return Value{src: src, compiled: compiled}, nil
}

// IsExpr reports whether v varies per target.
func (v Value) IsExpr() bool { return v.compiled != nil }

func (v Value) String() string {
	if v.compiled != nil {
		return v.src
	}
	return strconv.FormatFloat(v.num, 'g', -1, 64)
}

// Eval returns the value for one target. Constants ignore env.
func (v Value) Eval(env Env) (float64, error) {
	if v.compiled == nil {
		return v.num, nil
	}
	target := make(map[string]any, len(env.Target))
	for k, f := range env.Target {
		target[k] = f
	}
	c := v.compiled.Clone()
	if err := c.Set("index", env.Index); err != nil {
		return 0, err
	}
	if err := c.Set("count", env.Count); err != nil {
		return 0, err
	}
	if err := c.Set("target", target); err != nil {
		return 0, err
	}
	if err := c.Run(); err != nil {
		return 0, fmt.Errorf("expression %q: %w", v.src, err)
	}
	f, ok := tengo.ToFloat64(c.Get("__value").Object())
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expression %q: result %s is not a finite number", v.src, c.Get("__value").String())
	}
	return f, nil
}

// UnmarshalYAML accepts a number or a string holding an expression.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a number or an expression", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = Number(f)
		return nil
	}
	parsed, err := Expr(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// Scrub is a trigger's scrub setting. In YAML it is either a boolean or a
// number of seconds the animation takes to catch up with the scroll
// position ("scrub: 1").
type Scrub struct {
	Enabled   bool
	Smoothing float64
}

func (s *Scrub) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: scrub must be a boolean or a number", node.Line)
	}
	if node.Tag == "!!bool" {
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = Scrub{Enabled: b}
		return nil
	}
	f, err := strconv.ParseFloat(node.Value, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) {
		return fmt.Errorf("line %d: invalid scrub %q", node.Line, node.Value)
	}
	*s = Scrub{Enabled: true, Smoothing: f}
	return nil
}
