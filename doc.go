// Package parallax is a scroll-driven animation runtime for [Ebitengine].
//
// A page is a tree of [Node] sections stacked vertically. As the viewport
// scrolls, scroll triggers watch where each section sits relative to the
// viewport and play, reverse, restart or scrub the animations bound to them.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	page := parallax.NewPage(1280, 720)
//	// ... add sections to page.Root() ...
//	parallax.Run(page, parallax.RunConfig{Title: "Portfolio"})
//
// For full control, implement [ebiten.Game] yourself and call [Page.Update]
// and [Page.Draw] directly. Headless code (tests, the CLI simulator) calls
// [Page.Step] with a fixed dt and injects scroll events.
//
// # Effects
//
// A [Tween] interpolates named properties of one node (see
// [AnimatableProperties]) with a gween easing function. A [Timeline]
// sequences effects at offsets such as "-=0.5" ([ParseOffset]) and nests.
// [Stagger] builds a timeline that starts one tween per target at evenly
// spaced offsets.
//
//	tl := parallax.NewTimeline(parallax.TimelineOptions{Delay: 0.5})
//	tl.Then(title).Add(subtitle, parallax.Rel(-0.5))
//
// Every effect shares one play model: Play, Pause, Resume, Reverse, Restart,
// Reset, Complete and Seek. A [Ticker] advances the effects that are
// running, once per frame.
//
// # Scroll triggers
//
// A [Trigger] measures a reference node against the viewport. Start and end
// boundaries are written as "<node edge> <viewport edge>", for example
// "top 80%". Crossing them fires the four toggle transitions (enter, leave,
// enter-back, leave-back), each mapped to an [Action]. With Scrub set, the
// animation's progress follows the scroll offset instead.
//
// The [Registry] evaluates triggers in registration order every frame and
// re-resolves boundaries from the current layout, so a resize never leaves
// stale offsets behind.
//
// # Scopes
//
// A [Scope] owns everything created for one section. [Scope.Revert] kills the
// section's effects, restores the properties they touched, unregisters its
// triggers and runs cleanup functions, collecting failures into a
// [TeardownError] instead of stopping at the first.
//
// # Declarative pages
//
// Package parallax/pagespec loads whole pages from YAML, with per-target
// values written as tengo expressions, and hot-reloads them. Package
// parallax/ecs forwards trigger events into a Donburi world.
//
// [Ebitengine]: https://ebitengine.org
package parallax
