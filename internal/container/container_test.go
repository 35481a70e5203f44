package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/config"
	"derma-bot/internal/infrastructure/storage"
)

func TestNew(t *testing.T) {
	c := New(storage.NewMemoryUserRepository(), nil)
	require.NotNil(t, c.UserService)
	require.Nil(t, c.DiagnosisService)

	user, err := c.UserService.Get(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), user.ChatID)
}

func TestClose_ReverseOrder(t *testing.T) {
	var order []int
	c := &Container{closers: nil}
	for i := 0; i < 3; i++ {
		i := i
		c.closers = append(c.closers, closerFunc(func() { order = append(order, i) }))
	}

	c.Close()
	require.Equal(t, []int{2, 1, 0}, order)

	c.Close()
	require.Len(t, order, 3)
}

func TestBuild_MissingModel(t *testing.T) {
	cfg := &config.Config{
		ClassifierBackend:    "onnx",
		ModelPath:            t.TempDir() + "/absent.onnx",
		MetadataPath:         t.TempDir() + "/absent.json",
		UncertaintyThreshold: 50,
		ModerateThreshold:    75,
		SeverityBeforeGate:   true,
	}

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
}
