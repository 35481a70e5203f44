// Package explain строит карту значимости по градиентам карт признаков (Grad-CAM).
package explain

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
	"derma-bot/internal/infrastructure/preprocess"
	"derma-bot/internal/infrastructure/vision"
)

const (
	// Epsilon защищает нормировку от деления на ноль
	Epsilon = 1e-8
	// DefaultHeatmapAlpha доля раскрашенной карты при наложении (60% оригинал / 40% карта)
	DefaultHeatmapAlpha = 0.4
)

// GradCAM объяснитель поверх источника активаций
type GradCAM struct {
	source port.ActivationSource
	alpha  float64
}

// NewGradCAM создаёт объяснитель. alpha вне (0,1] заменяется значением по умолчанию.
func NewGradCAM(source port.ActivationSource, alpha float64) *GradCAM {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultHeatmapAlpha
	}
	return &GradCAM{source: source, alpha: alpha}
}

// Explain строит карту для класса classIndex и накладывает её на уменьшенный снимок
func (g *GradCAM) Explain(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (*entity.Explanation, error) {
	if g.source == nil {
		return nil, fmt.Errorf("%w: classifier does not expose activations", entity.ErrExplanationUnavailable)
	}

	acts, err := g.source.Activations(ctx, tensor, classIndex)
	if err != nil {
		return nil, err
	}

	cam, err := ClassActivationMap(acts)
	if err != nil {
		return nil, err
	}

	saliency := Upsample(cam, tensor.Width, tensor.Height)
	heat := vision.Colorize(saliency)
	overlay := Blend(preprocess.ImageFromTensor(tensor), heat, g.alpha)

	return &entity.Explanation{
		ClassIndex: classIndex,
		Map:        saliency,
		Overlay:    overlay,
	}, nil
}

// ClassActivationMap усредняет градиенты каждого канала по пространству, берёт взвешенную
// сумму карт, отсекает отрицательное и нормирует на максимум.
func ClassActivationMap(a *entity.Activations) (*entity.SaliencyMap, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrExplanationUnavailable, err)
	}

	plane := a.Height * a.Width
	cam := make([]float64, plane)
	for k := 0; k < a.Channels; k++ {
		var weight float64
		for _, g := range a.Gradients[k*plane : (k+1)*plane] {
			weight += float64(g)
		}
		weight /= float64(plane)
		if weight == 0 {
			continue
		}

		features := a.Features[k*plane : (k+1)*plane]
		for i, f := range features {
			cam[i] += weight * float64(f)
		}
	}

	var peak float64
	for i, v := range cam {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite activation at %d", entity.ErrExplanationUnavailable, i)
		}
		if v < 0 {
			cam[i] = 0
			continue
		}
		if v > peak {
			peak = v
		}
	}

	values := make([]float32, plane)
	for i, v := range cam {
		values[i] = float32(v / (peak + Epsilon))
	}

	return &entity.SaliencyMap{Width: a.Width, Height: a.Height, Values: values}, nil
}

// Upsample билинейно растягивает карту до размера снимка. Значения остаются в [0,1].
func Upsample(m *entity.SaliencyMap, width, height int) *entity.SaliencyMap {
	if m.Width == width && m.Height == height {
		values := append([]float32(nil), m.Values...)
		return &entity.SaliencyMap{Width: width, Height: height, Values: values}
	}

	src := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			src.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(float64(clamp01(m.At(x, y))) * 0xffff))})
		}
	}

	scaled := resize.Resize(uint(width), uint(height), src, resize.Bilinear)

	values := make([]float32, 0, width*height)
	bounds := scaled.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v, _, _, _ := scaled.At(x, y).RGBA()
			values = append(values, float32(v)/0xffff)
		}
	}

	return &entity.SaliencyMap{Width: width, Height: height, Values: values}
}

// Blend смешивает снимок и раскрашенную карту: (1-alpha)·base + alpha·heat
func Blend(base, heat *image.RGBA, alpha float64) *image.RGBA {
	bounds := base.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			b := base.RGBAAt(x, y)
			h := heat.RGBAAt(x-bounds.Min.X+heat.Bounds().Min.X, y-bounds.Min.Y+heat.Bounds().Min.Y)
			out.SetRGBA(x, y, color.RGBA{
				R: mix(b.R, h.R, alpha),
				G: mix(b.G, h.G, alpha),
				B: mix(b.B, h.B, alpha),
				A: 255,
			})
		}
	}
	return out
}

func mix(a, b uint8, alpha float64) uint8 {
	return uint8(math.Round((1-alpha)*float64(a) + alpha*float64(b)))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Проверка реализации интерфейса
var _ port.Explainer = (*GradCAM)(nil)
