package mvc

import (
	"fmt"

	"github.com/km-arc/go-activation/framework/activation"
)

// ControllerActivator obtains a controller for a request and releases it
// once the request has been served.
type ControllerActivator interface {
	Create(ctx *ControllerContext) (any, error)
	Release(ctx *ControllerContext, controller any) error
}

// SourceActivator is implemented by activators that can tell whether a
// controller came from the registry or was built. The pipeline uses it to
// label activation metrics.
type SourceActivator interface {
	ControllerActivator
	Activate(ctx *ControllerContext) (any, activation.Source, error)
}

// Activator is the ControllerActivator backed by an activation.Activator.
//
// Built with NewContainerActivator it returns the first registered instance
// the lookup knows for the controller type and builds one through the
// factory cache otherwise. Built with NewDefaultActivator it always builds.
type Activator struct {
	core *activation.Activator
}

// NewContainerActivator activates controllers from lookup first, falling
// back to cache. A nil cache gets a fresh one.
func NewContainerActivator(lookup activation.Lookup, cache *activation.Cache) (*Activator, error) {
	if lookup == nil {
		return nil, fmt.Errorf("%w: lookup is nil", activation.ErrInvalidArgument)
	}
	return &Activator{core: activation.New(lookup, cache)}, nil
}

// NewDefaultActivator builds every controller through cache.
func NewDefaultActivator(cache *activation.Cache) *Activator {
	return &Activator{core: activation.New(nil, cache)}
}

// Create implements ControllerActivator.
func (a *Activator) Create(ctx *ControllerContext) (any, error) {
	controller, _, err := a.Activate(ctx)
	return controller, err
}

// Activate implements SourceActivator.
func (a *Activator) Activate(ctx *ControllerContext) (any, activation.Source, error) {
	if ctx == nil {
		return nil, 0, fmt.Errorf("%w: controller context is nil", activation.ErrInvalidArgument)
	}
	if ctx.ControllerType == nil {
		return nil, 0, fmt.Errorf("%w: controller type is nil", activation.ErrInvalidArgument)
	}
	return a.core.Activate(ctx.ControllerType, ctx.Services)
}

// Release disposes controller when it is an activation.Disposer or an
// io.Closer. Disposal errors are returned unchanged.
func (a *Activator) Release(ctx *ControllerContext, controller any) error {
	if ctx == nil {
		return fmt.Errorf("%w: controller context is nil", activation.ErrInvalidArgument)
	}
	return a.core.Release(controller)
}

// Cache returns the factory cache the activator builds through.
func (a *Activator) Cache() *activation.Cache { return a.core.Cache() }

var _ SourceActivator = (*Activator)(nil)
