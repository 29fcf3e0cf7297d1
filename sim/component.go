package sim

// A Component is an element of the simulated system. It handles its own
// events and exposes hooks to observers.
type Component interface {
	Named
	Handler
	Hookable
}

// ComponentBase provides the name and hook support shared by all
// components.
type ComponentBase struct {
	HookableBase
	NamedBase
}

// NewComponentBase creates a new ComponentBase. It panics if the name is not
// valid.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.NamedBase = MakeNamedBase(name)

	return c
}
