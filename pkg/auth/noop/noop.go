// Package noop provides an authenticator that accepts every request with
// an anonymous identity. Used for development setups.
package noop

import (
	"context"
	"net/http"

	"github.com/listora/listora/pkg/auth"
)

// Authenticator always returns Yes with a default anonymous identity.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.Result {
	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject:     "anonymous",
			ServiceTier: "default",
		},
	}
}
