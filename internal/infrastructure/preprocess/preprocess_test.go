package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/internal/domain/entity"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess_ShapeAndRange(t *testing.T) {
	p := New(entity.InputSize)

	img, err := p.Decode(encodePNG(t, solid(640, 480, color.NRGBA{R: 255, G: 0, B: 51, A: 255})))
	require.NoError(t, err)

	tensor, err := p.Preprocess(img)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 224, 224, 3}, tensor.Shape())
	require.Len(t, tensor.Data, 224*224*3)

	for _, v := range tensor.Data {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
	require.InDelta(t, 1.0, tensor.At(100, 100, 0), 1e-6)
	require.InDelta(t, 0.0, tensor.At(100, 100, 1), 1e-6)
	require.InDelta(t, 0.2, tensor.At(100, 100, 2), 1e-6)
}

func TestPreprocess_GrayscaleBecomesRGB(t *testing.T) {
	p := New(32)

	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}

	tensor, err := p.Preprocess(gray)
	require.NoError(t, err)
	require.Equal(t, 3, tensor.Channels)
	require.Equal(t, tensor.At(5, 5, 0), tensor.At(5, 5, 1))
	require.Equal(t, tensor.At(5, 5, 1), tensor.At(5, 5, 2))
}

func TestPreprocess_DropsAlpha(t *testing.T) {
	p := New(8)

	tensor, err := p.Preprocess(solid(8, 8, color.NRGBA{R: 200, G: 100, B: 50, A: 10}))
	require.NoError(t, err)
	require.InDelta(t, 200.0/255.0, tensor.At(0, 0, 0), 1e-6)
}

func TestPreprocess_Deterministic(t *testing.T) {
	p := New(entity.InputSize)

	src := image.NewNRGBA(image.Rect(0, 0, 37, 53))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 31)
	}

	a, err := p.Preprocess(src)
	require.NoError(t, err)
	b, err := p.Preprocess(src)
	require.NoError(t, err)
	require.Equal(t, a.Data, b.Data)
}

func TestDecode_Invalid(t *testing.T) {
	p := New(entity.InputSize)

	_, err := p.Decode(nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = p.Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = p.Preprocess(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestImageFromTensor(t *testing.T) {
	tensor, err := entity.NewImageTensor(1, 2, 3, []float32{1, 0, 0.5, 0, 1, 2})
	require.NoError(t, err)

	img := ImageFromTensor(tensor)
	require.Equal(t, color.RGBA{R: 255, G: 0, B: 128, A: 255}, img.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{R: 0, G: 255, B: 255, A: 255}, img.RGBAAt(1, 0))
}
