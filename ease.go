package parallax

import (
	"fmt"
	"strings"

	"github.com/tanema/gween/ease"
)

// easeFamilies maps a curve family to its in/out/inOut variants.
// The power1..power4 names follow the polynomial degree used by CSS-style
// animation libraries: power1 is quadratic, power4 quintic.
var easeFamilies = map[string][3]ease.TweenFunc{
	"power1":  {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
	"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
	"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
}

// EaseByName resolves names such as "none", "linear", "power3.out" or
// "sine.inOut" to a gween easing function. A bare family name ("power2")
// selects the out variant.
func EaseByName(name string) (ease.TweenFunc, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "", "none", "linear":
		return ease.Linear, nil
	}
	family, variant, _ := strings.Cut(name, ".")
	fns, ok := easeFamilies[family]
	if !ok {
		return nil, fmt.Errorf("ease %q: unknown family", name)
	}
	switch variant {
	case "in":
		return fns[0], nil
	case "", "out":
		return fns[1], nil
	case "inOut":
		return fns[2], nil
	}
	return nil, fmt.Errorf("ease %q: unknown variant %q", name, variant)
}
