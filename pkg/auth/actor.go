package auth

import (
	"context"

	"github.com/Lala-Rental/lala-rental-backend/pkg/model"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == model.RoleAdmin
}

func (a *Actor) HasRole(roles ...model.Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// RenterScope returns the renter id a query must be restricted to, or "" for
// admins who see every booking.
func (a *Actor) RenterScope() string {
	if a.IsAdmin() {
		return ""
	}
	return a.ID
}

type actorKey struct{}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(*Actor)
	return actor, ok && actor != nil
}
