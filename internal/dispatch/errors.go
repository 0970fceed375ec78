package dispatch

import (
	"fmt"

	"github.com/vk/wardengo/internal/route"
)

// RouteNotFoundError reports an event that matched no registered route.
// It is a warning condition, not a failure: stale buttons outlive their
// module, and commands race module unloads.
type RouteNotFoundError struct {
	Kind route.Kind
	// Key is what resolution searched for: the command name, the
	// component custom id, or the task name.
	Key string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no %s route for %q", e.Kind, e.Key)
}
