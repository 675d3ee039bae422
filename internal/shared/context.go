package shared

import "context"

// Role enumerates staff privilege levels.
type Role string

const (
	// RoleAdmin grants every operation including reopening a closed day.
	RoleAdmin Role = "admin"
	// RoleStaff covers day-to-day order and shift operations.
	RoleStaff Role = "staff"
)

// Actor identifies the authenticated caller of a request.
type Actor struct {
	ID   int64
	Name string
	Role Role
}

// IsAdmin reports whether the actor holds administrator privilege.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

type actorContextKey struct{}

// ContextWithActor stores the authenticated actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
