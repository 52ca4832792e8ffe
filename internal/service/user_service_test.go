package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclasstourism/travelbill-sub003/internal/apperr"
	"github.com/mclasstourism/travelbill-sub003/internal/ledger"
	"github.com/mclasstourism/travelbill-sub003/internal/model"
)

func TestUserLifecycle(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	created, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "manager01",
		Email:    "manager01@example.com",
		Password: "secret123",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, created.Role)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := env.users.CreateUser(ctx, CreateUserRequest{
			Username: "manager01",
			Email:    "other@example.com",
			Password: "secret123",
			Role:     model.RoleStaff,
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, _, err := env.users.Login(ctx, LoginUserRequest{
			Email:    "manager01@example.com",
			Password: "nope",
		})
		var validationErr *apperr.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("update role", func(t *testing.T) {
		updated, err := env.users.UpdateUser(ctx, created.ID, UpdateUserRequest{Role: model.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, env.users.DeleteUser(ctx, created.ID))
		_, err := env.users.GetUserByID(ctx, created.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t, ledger.PolicyPermissive)
	ctx := context.Background()

	_, err := env.users.CreateUser(ctx, CreateUserRequest{
		Username: "staff01",
		Email:    "staff01@example.com",
		Password: "secret123",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)

	pair, user, err := env.users.Login(ctx, LoginUserRequest{
		Email:    "staff01@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	next, err := env.users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The consumed token is gone for good
	_, err = env.users.Refresh(ctx, pair.RefreshToken)
	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// The rotated one still works until logout
	require.NoError(t, env.users.Logout(ctx, next.RefreshToken))
	_, err = env.users.Refresh(ctx, next.RefreshToken)
	assert.ErrorAs(t, err, &validationErr)
}
