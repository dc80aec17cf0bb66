package bridge

import (
	"encoding/json"
	"log"
	"net/http"
)

// Identity headers read by HeaderIdentity.
const (
	HeaderActor   = "X-Actor-Id"
	HeaderTenant  = "X-Tenant"
	HeaderContext = "X-Context"
)

// HeaderIdentity attaches a Private built from request headers, unless an
// upstream middleware already attached one. The actor is represented as
// {"id": <header value>}; X-Context must hold a JSON object.
func HeaderIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrivateFrom(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		p := &Private{Tenant: r.Header.Get(HeaderTenant)}
		if id := r.Header.Get(HeaderActor); id != "" {
			p.Actor = map[string]any{"id": id}
		}
		if raw := r.Header.Get(HeaderContext); raw != "" {
			var ctx map[string]any
			if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
				log.Printf("Warning: ignoring malformed %s header: %v", HeaderContext, err)
			} else {
				p.Context = ctx
			}
		}
		next.ServeHTTP(w, r.WithContext(WithPrivate(r.Context(), p)))
	})
}
