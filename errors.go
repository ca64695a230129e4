package parallax

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTweenSpec is returned when a tween is built with a non-finite
	// or negative duration, no properties, or no easing function.
	ErrInvalidTweenSpec = errors.New("parallax: invalid tween spec")

	// ErrUnknownProperty is returned for a property name Node does not expose.
	ErrUnknownProperty = errors.New("parallax: unknown property")

	// ErrDetachedReference reports a target or trigger reference that is no
	// longer attached to the page. It is logged, never returned from a tick.
	ErrDetachedReference = errors.New("parallax: detached reference")

	// ErrTimelineSealed reports an Add on a timeline that has already rendered.
	ErrTimelineSealed = errors.New("parallax: timeline sealed")

	// ErrInvalidBoundary is returned for a boundary string that cannot be parsed.
	ErrInvalidBoundary = errors.New("parallax: invalid boundary")

	// ErrInvalidAction is returned for an unknown toggle action name.
	ErrInvalidAction = errors.New("parallax: invalid toggle action")

	// ErrScopeReverted is returned by scope factory methods after Revert.
	ErrScopeReverted = errors.New("parallax: scope reverted")
)

// TeardownError aggregates the failures collected while reverting a Scope.
// Every owned effect is still disposed; Errs holds one entry per failure.
type TeardownError struct {
	Scope string
	Errs  []error
}

func (e *TeardownError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("parallax: revert scope %q: %d teardown failure(s): %s",
		e.Scope, len(e.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TeardownError) Unwrap() []error {
	return e.Errs
}
