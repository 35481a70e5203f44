package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
}

func TestUser_CanTransition(t *testing.T) {
	u := NewUser(1, 10)
	require.True(t, u.CanTransition(StateAwaitingName))
	require.False(t, u.CanTransition(StateAwaitingPhoto))

	u.SetState(StateAwaitingAge)
	require.True(t, u.CanTransition(StateAwaitingPhoto))
	require.True(t, u.CanTransition(StateMainMenu))
	require.False(t, u.CanTransition(StateProcessing))
}

func TestUser_Reset(t *testing.T) {
	u := NewUser(1, 10)
	u.SetState(StateAwaitingPhoto)
	u.Patient = Patient{Name: "Ann", Age: 30}

	u.Reset()
	require.Equal(t, StateMainMenu, u.State)
	require.Empty(t, u.Patient.Name)
}
