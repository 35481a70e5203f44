package onnx

import (
	"fmt"
	"math"

	"derma-bot/internal/domain/entity"
)

// DenseHead голова классификации: глобальное усреднение по пространству и полносвязный слой.
// Weights хранятся как [каналы][классы].
type DenseHead struct {
	Weights [][]float32 `json:"weights"`
	Bias    []float32   `json:"bias"`
}

// Validate проверяет размеры весов
func (h *DenseHead) Validate(channels, classes int) error {
	if len(h.Weights) != channels {
		return fmt.Errorf("head has %d input channels, feature layer has %d", len(h.Weights), channels)
	}
	for k, row := range h.Weights {
		if len(row) != classes {
			return fmt.Errorf("head row %d has %d classes, want %d", k, len(row), classes)
		}
	}
	if len(h.Bias) != 0 && len(h.Bias) != classes {
		return fmt.Errorf("head bias has %d classes, want %d", len(h.Bias), classes)
	}
	return nil
}

// Logits оценки классов до softmax по картам признаков [C, H, W]
func (h *DenseHead) Logits(a *entity.Activations) []float32 {
	classes := len(h.Weights[0])
	plane := a.Height * a.Width

	logits := make([]float32, classes)
	if len(h.Bias) == classes {
		copy(logits, h.Bias)
	}
	for k := 0; k < a.Channels; k++ {
		var sum float64
		for _, v := range a.Features[k*plane : (k+1)*plane] {
			sum += float64(v)
		}
		pooled := float32(sum / float64(plane))
		for c := 0; c < classes; c++ {
			logits[c] += h.Weights[k][c] * pooled
		}
	}
	return logits
}

// Gradient производная оценки класса по каждому элементу карт признаков.
// Для усреднения и полносвязного слоя ∂logit_c/∂A_k(i,j) = W[k][c] / (H·W).
func (h *DenseHead) Gradient(classIndex, channels, height, width int) []float32 {
	plane := height * width
	grads := make([]float32, channels*plane)
	for k := 0; k < channels; k++ {
		g := h.Weights[k][classIndex] / float32(plane)
		row := grads[k*plane : (k+1)*plane]
		for i := range row {
			row[i] = g
		}
	}
	return grads
}

// headTolerance относительный допуск расхождения головы с выходом модели
const headTolerance = 1e-3

// Matches сверяет выход головы по картам признаков с выходом самой модели
// из того же прогона. Расхождение значит, что веса головы не от этой модели.
func (h *DenseHead) Matches(a *entity.Activations, modelOutput []float32, outputIsLogits bool) error {
	expected := h.Logits(a)
	if len(expected) != len(modelOutput) {
		return fmt.Errorf("head yields %d classes, model output has %d", len(expected), len(modelOutput))
	}

	if !outputIsLogits {
		expected = entity.Softmax(expected)
	}

	for i, want := range modelOutput {
		got := expected[i]
		scale := math.Max(1, math.Abs(float64(want)))
		if diff := math.Abs(float64(got - want)); diff > headTolerance*scale || math.IsNaN(diff) {
			return fmt.Errorf("head output %d is %.6f, model output is %.6f", i, got, want)
		}
	}
	return nil
}

// toCHW переставляет тензор [H, W, C] в [C, H, W]
func toCHW(data []float32, height, width, channels int) []float32 {
	out := make([]float32, len(data))
	plane := height * width
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				out[c*plane+y*width+x] = data[(y*width+x)*channels+c]
			}
		}
	}
	return out
}
