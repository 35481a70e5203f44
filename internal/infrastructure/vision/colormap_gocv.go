//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	"derma-bot/internal/domain/entity"
)

// Colorize раскрашивает карту значимости палитрой JET средствами OpenCV
func Colorize(m *entity.SaliencyMap) *image.RGBA {
	gray := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			gray.Pix[y*gray.Stride+x] = quantize(m.At(x, y))
		}
	}

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return image.NewRGBA(gray.Bounds())
	}
	defer src.Close()

	colored := gocv.NewMat()
	defer colored.Close()
	gocv.ApplyColorMap(src, &colored, gocv.ColormapJet)

	img, err := colored.ToImage()
	if err != nil {
		return image.NewRGBA(gray.Bounds())
	}

	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
