package explain

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/internal/domain/entity"
)

type stubSource struct {
	acts *entity.Activations
	err  error
}

func (s *stubSource) Activations(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (*entity.Activations, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.acts, nil
}

func grayTensor(t *testing.T, size int, v float32) *entity.ImageTensor {
	t.Helper()
	data := make([]float32, size*size*3)
	for i := range data {
		data[i] = v
	}
	tensor, err := entity.NewImageTensor(size, size, 3, data)
	require.NoError(t, err)
	return tensor
}

func blobActivations() *entity.Activations {
	const c, h, w = 4, 7, 7
	a := &entity.Activations{Channels: c, Height: h, Width: w}
	a.Features = make([]float32, c*h*w)
	a.Gradients = make([]float32, c*h*w)
	for k := 0; k < c; k++ {
		for i := 0; i < h*w; i++ {
			y, x := i/w, i%w
			a.Features[k*h*w+i] = float32((x+1)*(y+1)) / float32(k+1)
			a.Gradients[k*h*w+i] = float32(k) - 1
		}
	}
	return a
}

func TestClassActivationMap_Normalized(t *testing.T) {
	a := &entity.Activations{
		Channels: 1, Height: 2, Width: 2,
		Features:  []float32{1, 2, 3, 4},
		Gradients: []float32{1, 1, 1, 1},
	}

	m, err := ClassActivationMap(a)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.25, 0.5, 0.75, 1}, m.Values, 1e-6)
}

func TestClassActivationMap_NegativeContributionsDiscarded(t *testing.T) {
	a := &entity.Activations{
		Channels: 2, Height: 1, Width: 2,
		Features:  []float32{1, 0, 0, 4},
		Gradients: []float32{2, 2, -1, -1},
	}

	// cam = 2*[1,0] - 1*[0,4] = [2,-4] → [2,0] → [1,0]
	m, err := ClassActivationMap(a)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{1, 0}, m.Values, 1e-6)
}

func TestClassActivationMap_ZeroGradients(t *testing.T) {
	a := &entity.Activations{
		Channels: 3, Height: 7, Width: 7,
		Features:  make([]float32, 3*49),
		Gradients: make([]float32, 3*49),
	}
	for i := range a.Features {
		a.Features[i] = float32(i)
	}

	m, err := ClassActivationMap(a)
	require.NoError(t, err)
	for _, v := range m.Values {
		require.Equal(t, float32(0), v)
	}
}

func TestClassActivationMap_InvalidShape(t *testing.T) {
	_, err := ClassActivationMap(&entity.Activations{Channels: 1, Height: 2, Width: 2, Features: []float32{1}})
	require.ErrorIs(t, err, entity.ErrExplanationUnavailable)
}

func TestExplain_MapMatchesImage(t *testing.T) {
	g := NewGradCAM(&stubSource{acts: blobActivations()}, 0)
	tensor := grayTensor(t, entity.InputSize, 0.5)

	first, err := g.Explain(context.Background(), tensor, 3)
	require.NoError(t, err)
	require.Equal(t, 3, first.ClassIndex)
	require.Equal(t, entity.InputSize, first.Map.Width)
	require.Equal(t, entity.InputSize, first.Map.Height)
	require.Len(t, first.Map.Values, entity.InputSize*entity.InputSize)
	require.Equal(t, image.Rect(0, 0, entity.InputSize, entity.InputSize), first.Overlay.Bounds())

	for _, v := range first.Map.Values {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}

	second, err := g.Explain(context.Background(), tensor, 3)
	require.NoError(t, err)
	require.Equal(t, first.Map.Values, second.Map.Values)
	require.Equal(t, first.Overlay, second.Overlay)
}

func TestExplain_SourceErrors(t *testing.T) {
	g := NewGradCAM(&stubSource{err: fmt.Errorf("%w: dense model", entity.ErrExplanationUnavailable)}, 0.4)
	_, err := g.Explain(context.Background(), grayTensor(t, 8, 0), 0)
	require.ErrorIs(t, err, entity.ErrExplanationUnavailable)

	g = NewGradCAM(nil, 0.4)
	_, err = g.Explain(context.Background(), grayTensor(t, 8, 0), 0)
	require.ErrorIs(t, err, entity.ErrExplanationUnavailable)
}

func TestUpsample_KeepsRange(t *testing.T) {
	m := &entity.SaliencyMap{Width: 2, Height: 2, Values: []float32{0, 1, 1, 0}}

	up := Upsample(m, 16, 16)
	require.Equal(t, 16, up.Width)
	require.Len(t, up.Values, 256)
	for _, v := range up.Values {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}

	same := Upsample(m, 2, 2)
	require.Equal(t, m.Values, same.Values)
}

func TestBlend(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 1, 1))
	base.SetRGBA(0, 0, color.RGBA{A: 255})
	heat := image.NewRGBA(image.Rect(0, 0, 1, 1))
	heat.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := Blend(base, heat, DefaultHeatmapAlpha)
	require.Equal(t, color.RGBA{R: 102, G: 102, B: 102, A: 255}, out.RGBAAt(0, 0))
}
