package module

import "fmt"

// DuplicateModuleError reports a Load of a module that is already live.
type DuplicateModuleError struct {
	Name string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %q is already loaded", e.Name)
}

// NotLoadedError reports an Unload or Reload of a module that is not
// live.
type NotLoadedError struct {
	Name string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("module %q is not loaded", e.Name)
}
