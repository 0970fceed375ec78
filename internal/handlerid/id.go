// internal/handlerid/id.go
package handlerid

// ID is the parsed form of a handler reference.
type ID struct {
	// Module is the owning module's name, e.g. "moderation".
	Module string
	// Handler is the handler's name within the module, e.g. "warn".
	Handler string
}

// String serializes the ID into its canonical `module.handler` form.
func (id ID) String() string {
	return id.Module + "." + id.Handler
}

// Equal checks two IDs for equality.
func (id ID) Equal(other ID) bool {
	return id == other
}
