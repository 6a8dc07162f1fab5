package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/isdelr/postgate/internal/repository"
	"github.com/rs/zerolog/log"
)

type contextKey string

// PrincipalKey is the context key for the authenticated caller.
const PrincipalKey = contextKey("principal")

// PrincipalFrom returns the caller stored by Require.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(Principal)
	return p, ok
}

// OwnerResolver builds the OwnerFunc for a request, usually from a URL param.
type OwnerResolver func(r *http.Request) OwnerFunc

// Require protects a route with the policy registered for action. Failure
// bodies are generic so they do not reveal which check failed.
func (g *Gateway) Require(action Action, resolve OwnerResolver) func(http.Handler) http.Handler {
	op, known := Policies[action]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !known {
				log.Error().Str("action", string(action)).Msg("No policy registered for action")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if op.Public {
				next.ServeHTTP(w, r)
				return
			}

			var owner OwnerFunc
			if resolve != nil {
				owner = resolve(r)
			}

			principal, err := g.Authorize(r.Context(), r.Header.Get("Authorization"), op, owner)
			if err != nil {
				log.Warn().Err(err).
					Str("action", string(action)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("Request denied")

				switch {
				case errors.Is(err, ErrUnauthenticated):
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				case errors.Is(err, repository.ErrNotFound):
					http.Error(w, "Not found", http.StatusNotFound)
				default:
					http.Error(w, "Forbidden", http.StatusForbidden)
				}
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
