package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var repoStub = NewStubUserRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewUserService(repoStub)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func TestServiceImpl_GetOrCreate(t *testing.T) {
	t.Run("should provision a user on first sight", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		u, err := service.GetOrCreate(ctx, "uid-123", "someone@example.com")

		// then
		require.NoError(t, err)
		assert.NotZero(t, u.Id)
		assert.Equal(t, "uid-123", u.SupabaseUid)
		assert.Equal(t, "someone@example.com", u.Email)
	})

	t.Run("should return the same user on later calls", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		first, err := service.GetOrCreate(ctx, "uid-123", "someone@example.com")
		require.NoError(t, err)

		// when
		second, err := service.GetOrCreate(ctx, "uid-123", "someone@example.com")

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
	})
}

func TestServiceImpl_GetCurrentUser(t *testing.T) {
	t.Run("should read the user from the context", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		userCtx := WithUser(ctx, User{Id: 7, SupabaseUid: "uid-7"})

		// when
		u, err := service.GetCurrentUser(userCtx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 7, u.Id)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetCurrentUser(ctx)

		// then
		assert.ErrorIs(t, err, ErrNoUser)
	})
}
