package middleware

import (
	"net/http"

	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	apperrors "github.com/Lala-Rental/lala-rental-backend/pkg/errors"
	httputil "github.com/Lala-Rental/lala-rental-backend/pkg/http"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"
	"github.com/Lala-Rental/lala-rental-backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TokenParser interface {
	Parse(token string) (*auth.Actor, error)
}

// Authenticate attaches the bearer token's actor to the request context.
// Requests without a token pass through anonymously; routes that need an
// actor wrap their handle with RequireAuth or RequireRoles.
func Authenticate(tokens TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := tokens.Parse(auth.BearerToken(header))
			if err != nil {
				log.Debug("Rejected access token",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func RequireAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := auth.ActorFromContext(r.Context()); !ok {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
			return
		}
		next(w, r, ps)
	}
}

func RequireRoles(next httprouter.Handle, roles ...model.Role) httprouter.Handle {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, _ := auth.ActorFromContext(r.Context())
		if !actor.HasRole(roles...) {
			_ = httputil.WriteError(w, apperrors.Forbidden("You don't have right to this resources"))
			return
		}
		next(w, r, ps)
	})
}
