package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingName))
	user, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingName, user.State)
}

func TestUserCodec(t *testing.T) {
	user := entity.NewUser(7, 70)
	user.SetState(entity.StateAwaitingPhoto)
	user.Patient = entity.Patient{Name: "Ann", Age: 30}

	data, err := encodeUser(user)
	require.NoError(t, err)

	decoded, err := decodeUser(data)
	require.NoError(t, err)
	require.Equal(t, user, decoded)

	decoded, err = decodeUser([]byte(`{"id":7,"chat_id":70}`))
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, decoded.State)

	_, err = decodeUser([]byte("not json"))
	require.Error(t, err)

	require.Equal(t, "derma:user:7", userKey(7))
}
