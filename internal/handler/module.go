package handler

import "github.com/vk/wardengo/internal/container"

// Module is implemented by every feature module compiled into the binary.
// Name must match the module's directory under the modules path, because
// that is how its on-disk route files are tied back to its handlers.
type Module interface {
	Name() string
	Register(r *Registry)
}

// ServiceProvider is implemented by modules that contribute services to
// the container, under dotted `<module>.<service>` names.
type ServiceProvider interface {
	RegisterServices(c *container.Container) error
}
