package service

import (
	"context"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// Authorizer is consulted by the allocator before every assignment write or
// delete, independently of any HTTP-layer access control.
type Authorizer interface {
	CanAssign(ctx context.Context, learner models.Learner, session models.CatalogSession) error
	CanRemove(ctx context.Context, learner models.Learner) error
}

type actorContextKey struct{}

// WithActor stores the authenticated actor's claims on the context so the
// authorizer can evaluate them deep inside a placement.
func WithActor(ctx context.Context, claims *models.JWTClaims) context.Context {
	return context.WithValue(ctx, actorContextKey{}, claims)
}

// ActorFromContext returns the authenticated actor's claims, if any.
func ActorFromContext(ctx context.Context) (*models.JWTClaims, bool) {
	claims, ok := ctx.Value(actorContextKey{}).(*models.JWTClaims)
	return claims, ok && claims != nil
}

// RoleAuthorizer grants assignment mutations to admins and coordinators.
// Viewers, and requests with no actor at all, are denied.
type RoleAuthorizer struct{}

// NewRoleAuthorizer constructs the default authorizer.
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

// CanAssign implements Authorizer.
func (a *RoleAuthorizer) CanAssign(ctx context.Context, learner models.Learner, session models.CatalogSession) error {
	return a.check(ctx)
}

// CanRemove implements Authorizer.
func (a *RoleAuthorizer) CanRemove(ctx context.Context, learner models.Learner) error {
	return a.check(ctx)
}

func (a *RoleAuthorizer) check(ctx context.Context) error {
	claims, ok := ActorFromContext(ctx)
	if !ok {
		return appErrors.Clone(appErrors.ErrAuthorizationDenied, "no authenticated actor")
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleCoordinator:
		return nil
	default:
		return appErrors.Clone(appErrors.ErrAuthorizationDenied, "role may not modify assignments")
	}
}
