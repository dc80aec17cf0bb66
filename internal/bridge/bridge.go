// Package bridge maps caller identity between an inbound request and the
// per-session assignment store of the protocol engine.
package bridge

import (
	"context"

	"github.com/barnabasJ/ash-ai/internal/types"
)

// Assignment keys owned by the bridge. Other keys in a session's store
// belong to someone else and are never read or written here.
const (
	KeyActor   = "actor"
	KeyTenant  = "tenant"
	KeyContext = "context"
)

// Private is the identity a transport attaches to an inbound request.
type Private struct {
	Actor   any
	Tenant  string
	Context map[string]any
}

// Assigns is a session's key-value assignment store.
type Assigns map[string]any

type privateKey struct{}

// WithPrivate attaches p to ctx.
func WithPrivate(ctx context.Context, p *Private) context.Context {
	return context.WithValue(ctx, privateKey{}, p)
}

// PrivateFrom returns the identity attached to ctx, or nil.
func PrivateFrom(ctx context.Context) *Private {
	p, _ := ctx.Value(privateKey{}).(*Private)
	return p
}

// ToSession stores the identity from p into a copy of assigns. A nil p
// stores an absent actor, no tenant and an empty context. Keys other than
// actor, tenant and context are carried over untouched.
func ToSession(p *Private, assigns Assigns) Assigns {
	out := make(Assigns, len(assigns)+3)
	for k, v := range assigns {
		out[k] = v
	}

	var (
		actor  any
		tenant string
		ctx    = map[string]any{}
	)
	if p != nil {
		actor = p.Actor
		tenant = p.Tenant
		if p.Context != nil {
			ctx = p.Context
		}
	}
	out[KeyActor] = actor
	out[KeyTenant] = tenant
	out[KeyContext] = ctx
	return out
}

// FromSession reads the execution context back out of assigns.
func FromSession(assigns Assigns) types.ExecutionContext {
	ec := types.ExecutionContext{Actor: assigns[KeyActor]}
	if tenant, ok := assigns[KeyTenant].(string); ok {
		ec.Tenant = tenant
	}
	if ctx, ok := assigns[KeyContext].(map[string]any); ok && ctx != nil {
		ec.Context = ctx
	} else {
		ec.Context = map[string]any{}
	}
	return ec
}
