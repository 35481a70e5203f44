//go:build !gocv
// +build !gocv

package vision

import (
	"image"

	"derma-bot/internal/domain/entity"
)

// Colorize раскрашивает карту значимости палитрой JET (синий → красный)
func Colorize(m *entity.SaliencyMap) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.SetRGBA(x, y, jet(quantize(m.At(x, y))))
		}
	}
	return out
}
