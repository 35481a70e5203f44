package entity

import (
	"fmt"
	"math"
)

const (
	// InputSize сторона квадратного входа классификатора
	InputSize = 224
	// InputChannels количество каналов входа (RGB)
	InputChannels = 3
	// ProbabilityTolerance допуск на сумму вероятностей
	ProbabilityTolerance = 1e-3
)

// ImageTensor нормализованное изображение [1, H, W, C] в порядке NHWC, значения в [0,1].
// После создания не изменяется.
type ImageTensor struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// NewImageTensor проверяет размерность данных и создаёт тензор
func NewImageTensor(height, width, channels int, data []float32) (*ImageTensor, error) {
	if height <= 0 || width <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid tensor shape %dx%dx%d", height, width, channels)
	}
	if len(data) != height*width*channels {
		return nil, fmt.Errorf("tensor data has %d values, want %d", len(data), height*width*channels)
	}
	return &ImageTensor{Height: height, Width: width, Channels: channels, Data: data}, nil
}

// Shape возвращает форму с ведущей размерностью батча
func (t *ImageTensor) Shape() []int64 {
	return []int64{1, int64(t.Height), int64(t.Width), int64(t.Channels)}
}

// At возвращает значение пикселя (y, x) в канале c
func (t *ImageTensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*t.Channels+c]
}

// CHW возвращает копию данных в порядке каналов [C, H, W]
func (t *ImageTensor) CHW() []float32 {
	out := make([]float32, len(t.Data))
	plane := t.Height * t.Width
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			for c := 0; c < t.Channels; c++ {
				out[c*plane+y*t.Width+x] = t.At(y, x, c)
			}
		}
	}
	return out
}

// ProbabilityVector распределение вероятностей по таблице классов
type ProbabilityVector []float32

// Validate проверяет неотрицательность и сумму значений
func (p ProbabilityVector) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty vector", ErrInvalidProbabilities)
	}

	var sum float64
	for i, v := range p {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return fmt.Errorf("%w: value %v at index %d", ErrInvalidProbabilities, v, i)
		}
		sum += f
	}
	if math.Abs(sum-1) > ProbabilityTolerance {
		return fmt.Errorf("%w: sum is %.6f", ErrInvalidProbabilities, sum)
	}

	return nil
}

// Softmax численно устойчиво переводит оценки модели в вероятности
func Softmax(logits []float32) ProbabilityVector {
	if len(logits) == 0 {
		return nil
	}
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make(ProbabilityVector, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxVal))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
