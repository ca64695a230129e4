package parallax

import (
	"fmt"
	"sort"
)

// property binds an animatable name to a Node field.
type property struct {
	get func(n *Node) float64
	set func(n *Node, v float64)
}

// properties is the table of names a Tween may animate. "opacity" and
// "scale" are aliases that read and write the same fields as "alpha" and
// "scaleX"/"scaleY".
var properties = map[string]property{
	"x":        {func(n *Node) float64 { return n.X }, func(n *Node, v float64) { n.X = v }},
	"y":        {func(n *Node) float64 { return n.Y }, func(n *Node, v float64) { n.Y = v }},
	"xPercent": {func(n *Node) float64 { return n.XPercent }, func(n *Node, v float64) { n.XPercent = v }},
	"yPercent": {func(n *Node) float64 { return n.YPercent }, func(n *Node, v float64) { n.YPercent = v }},
	"scaleX":   {func(n *Node) float64 { return n.ScaleX }, func(n *Node, v float64) { n.ScaleX = v }},
	"scaleY":   {func(n *Node) float64 { return n.ScaleY }, func(n *Node, v float64) { n.ScaleY = v }},
	"scale":    {func(n *Node) float64 { return n.ScaleX }, func(n *Node, v float64) { n.ScaleX, n.ScaleY = v, v }},
	"rotation": {func(n *Node) float64 { return n.Rotation }, func(n *Node, v float64) { n.Rotation = v }},
	"alpha":    {func(n *Node) float64 { return n.Alpha }, func(n *Node, v float64) { n.Alpha = v }},
	"opacity":  {func(n *Node) float64 { return n.Alpha }, func(n *Node, v float64) { n.Alpha = v }},
	"width":    {func(n *Node) float64 { return n.Width }, func(n *Node, v float64) { n.Width = v }},
	"height":   {func(n *Node) float64 { return n.Height }, func(n *Node, v float64) { n.Height = v }},
	"red":      {func(n *Node) float64 { return n.Color.R }, func(n *Node, v float64) { n.Color.R = v }},
	"green":    {func(n *Node) float64 { return n.Color.G }, func(n *Node, v float64) { n.Color.G = v }},
	"blue":     {func(n *Node) float64 { return n.Color.B }, func(n *Node, v float64) { n.Color.B = v }},
}

// IsAnimatable reports whether name is a property Tween can drive.
func IsAnimatable(name string) bool {
	_, ok := properties[name]
	return ok
}

// AnimatableProperties returns the sorted list of property names.
func AnimatableProperties() []string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Property returns the current value of the named property.
func (n *Node) Property(name string) (float64, error) {
	p, ok := properties[name]
	if !ok {
		return 0, fmt.Errorf("property %q: %w", name, ErrUnknownProperty)
	}
	return p.get(n), nil
}

// SetProperty assigns the named property and marks the node dirty.
func (n *Node) SetProperty(name string, v float64) error {
	p, ok := properties[name]
	if !ok {
		return fmt.Errorf("property %q: %w", name, ErrUnknownProperty)
	}
	p.set(n, v)
	n.transformDirty = true
	return nil
}
