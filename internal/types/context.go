package types

import "reflect"

// ExecutionContext carries caller identity into a tool invocation. An empty
// Tenant means no tenant; Context is never nil once normalized.
type ExecutionContext struct {
	Actor   any
	Tenant  string
	Context map[string]any
}

// Normalize returns a copy of ec with a non-nil Context map.
func (ec ExecutionContext) Normalize() ExecutionContext {
	if ec.Context == nil {
		ec.Context = map[string]any{}
	}
	return ec
}

// Equal reports whether two contexts carry the same identity.
func (ec ExecutionContext) Equal(other ExecutionContext) bool {
	a, b := ec.Normalize(), other.Normalize()
	return a.Tenant == b.Tenant &&
		reflect.DeepEqual(a.Actor, b.Actor) &&
		reflect.DeepEqual(a.Context, b.Context)
}
