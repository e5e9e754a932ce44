// Package session: вход по табельному номеру, роль администратора
// и идентичность текущего запроса.
package session

import (
	"context"

	"column-tracker/internal/common"
	"column-tracker/internal/models"
)

// Identity: кто выполняет операцию. Живёт в context.Context запроса.
type Identity struct {
	UserID     uint
	EmployeeID string
	Name       string
	IsAdmin    bool
}

func IdentityOf(u models.User) Identity {
	return Identity{
		UserID:     u.ID,
		EmployeeID: u.EmployeeID,
		Name:       u.Name,
		IsAdmin:    u.IsAdmin,
	}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.UserID != 0
}

func RequireUser(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, common.ErrUnauthenticated
	}
	return id, nil
}

func RequireAdmin(ctx context.Context) (Identity, error) {
	id, err := RequireUser(ctx)
	if err != nil {
		return id, err
	}
	if !id.IsAdmin {
		return id, common.ErrAccessDenied
	}
	return id, nil
}
