package employee

import "context"

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	EmployeeID string
	Level      AccessLevel
	Active     bool
}

func (a Actor) Privileged() bool {
	return a.Active && a.Level >= PrivilegedLevel
}

// CanActOn is the single authorization capability: the record owner or a
// privileged actor.
func (a Actor) CanActOn(ownerID string) bool {
	if !a.Active {
		return false
	}
	return a.EmployeeID == ownerID || a.Privileged()
}

// Authorize returns ErrPermissionDenied when CanActOn fails.
func (a Actor) Authorize(ownerID string) error {
	if !a.CanActOn(ownerID) {
		return ErrPermissionDenied
	}
	return nil
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
