package vision

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/internal/domain/entity"
)

func TestColorize_Extremes(t *testing.T) {
	m := &entity.SaliencyMap{Width: 2, Height: 1, Values: []float32{0, 1}}
	img := Colorize(m)

	require.Equal(t, 2, img.Bounds().Dx())
	cold := img.RGBAAt(0, 0)
	hot := img.RGBAAt(1, 0)

	// холодные области синие, горячие красные
	require.Greater(t, cold.B, cold.R)
	require.Greater(t, hot.R, hot.B)
	require.Equal(t, uint8(255), hot.A)
}

func TestQuantize(t *testing.T) {
	require.Equal(t, uint8(0), quantize(-1))
	require.Equal(t, uint8(0), quantize(0))
	require.Equal(t, uint8(128), quantize(0.5))
	require.Equal(t, uint8(255), quantize(2))
}

func TestFloat32Bytes(t *testing.T) {
	b := float32Bytes([]float32{1})
	require.Equal(t, []byte{0, 0, 0x80, 0x3f}, b)
}

func TestJet_Zero(t *testing.T) {
	require.Equal(t, color.RGBA{R: 0, G: 0, B: 128, A: 255}, jet(0))
}

func TestBlobInput(t *testing.T) {
	// 1x2 пикселя, RGB
	tensor, err := entity.NewImageTensor(1, 2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	sizes, data, err := blobInput(tensor, 0, false)
	require.Error(t, err)
	require.Nil(t, sizes)
	require.Nil(t, data)

	square, err := entity.NewImageTensor(2, 2, 3, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	require.NoError(t, err)

	sizes, data, err = blobInput(square, 2, false)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 2, 3}, sizes)
	require.Equal(t, square.Data, data)

	sizes, data, err = blobInput(square, 2, true)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 2, 2}, sizes)
	require.Equal(t, []float32{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}, data)
}

func TestToProbabilities(t *testing.T) {
	probs, err := toProbabilities([]float32{0, 0}, 2, true)
	require.NoError(t, err)
	require.InDelta(t, 0.5, probs[0], 1e-6)
	require.NoError(t, probs.Validate())

	probs, err = toProbabilities([]float32{0.25, 0.75}, 2, false)
	require.NoError(t, err)
	require.Equal(t, entity.ProbabilityVector{0.25, 0.75}, probs)

	_, err = toProbabilities([]float32{0.25, 0.75}, 3, false)
	require.ErrorIs(t, err, entity.ErrSchemaMismatch)
}
