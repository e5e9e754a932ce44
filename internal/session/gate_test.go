package session

import (
	"context"
	"testing"

	"column-tracker/internal/common"
	"column-tracker/internal/database/dbtest"
	"column-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	return NewGate(dbtest.New(t).DB, zap.NewNop())
}

func adminCtx() context.Context {
	return WithIdentity(context.Background(), Identity{UserID: 1, EmployeeID: "ADM", IsAdmin: true})
}

func TestAuthenticate(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	require.NoError(t, g.db.Create(&models.User{Name: "Ann", EmployeeID: "E100"}).Error)
	require.NoError(t, g.db.Create(&models.User{Name: "Boss", EmployeeID: "A1", IsAdmin: true}).Error)

	id, err := g.Authenticate(ctx, "E100")
	require.NoError(t, err)
	assert.Equal(t, "E100", id.EmployeeID)
	assert.Equal(t, "Ann", id.Name)
	assert.False(t, id.IsAdmin)

	id, err = g.Authenticate(ctx, "  A1 ")
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)

	// точное совпадение, регистр важен
	_, err = g.Authenticate(ctx, "e100")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = g.Authenticate(ctx, "E999")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = g.Authenticate(ctx, "   ")
	assert.ErrorIs(t, err, common.ErrValidationEmpty)
}

func TestLookup(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	u := models.User{Name: "Ann", EmployeeID: "E100"}
	require.NoError(t, g.db.Create(&u).Error)

	id, err := g.Lookup(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)

	_, err = g.Lookup(ctx, 4242)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRegisterUser(t *testing.T) {
	g := newGate(t)

	t.Run("requires login", func(t *testing.T) {
		_, err := g.RegisterUser(context.Background(), NewUser{Name: "X", EmployeeID: "E1"})
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
	})

	t.Run("non admin is denied", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{UserID: 2, EmployeeID: "E2"})
		_, err := g.RegisterUser(ctx, NewUser{Name: "X", EmployeeID: "E1"})
		assert.ErrorIs(t, err, common.ErrAccessDenied)

		var count int64
		g.db.Model(&models.User{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("blank fields", func(t *testing.T) {
		_, err := g.RegisterUser(adminCtx(), NewUser{Name: " ", EmployeeID: "E1"})
		assert.ErrorIs(t, err, common.ErrValidationEmpty)
		_, err = g.RegisterUser(adminCtx(), NewUser{Name: "X", EmployeeID: ""})
		assert.ErrorIs(t, err, common.ErrValidationEmpty)
	})

	t.Run("admin registers", func(t *testing.T) {
		u, err := g.RegisterUser(adminCtx(), NewUser{Name: "Carl", EmployeeID: "E3", IsAdmin: true})
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.True(t, u.IsAdmin)

		_, err = g.RegisterUser(adminCtx(), NewUser{Name: "Carl again", EmployeeID: "E3"})
		assert.ErrorIs(t, err, common.ErrConflict)
	})
}

func TestEnsureDefaultAdmin(t *testing.T) {
	g := newGate(t)
	ctx := context.Background()

	require.NoError(t, g.EnsureDefaultAdmin(ctx, "", "nobody"))
	require.NoError(t, g.EnsureDefaultAdmin(ctx, "ADMIN", "Administrator"))
	require.NoError(t, g.EnsureDefaultAdmin(ctx, "OTHER", "Second"))

	var admins []models.User
	require.NoError(t, g.db.Where("is_admin = ?", true).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "ADMIN", admins[0].EmployeeID)
}

func TestRequireAdmin(t *testing.T) {
	_, err := RequireAdmin(context.Background())
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = RequireAdmin(WithIdentity(context.Background(), Identity{UserID: 5}))
	assert.ErrorIs(t, err, common.ErrAccessDenied)

	id, err := RequireAdmin(adminCtx())
	require.NoError(t, err)
	assert.Equal(t, "ADM", id.EmployeeID)
}
