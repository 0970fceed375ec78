package container

import (
	"fmt"
	"strings"
)

// ServiceNotFoundError reports a Get for a name nothing registered.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %q is not registered", e.Name)
}

// CircularDependencyError reports a resolution chain that reached a name
// already being constructed further up the same chain.
type CircularDependencyError struct {
	// Path is the resolution chain, ending with the name that closed the
	// cycle, e.g. ["store", "audit", "store"].
	Path []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}
