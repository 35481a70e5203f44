// Package preprocess приводит загруженный снимок к входу классификатора.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// Preprocessor преобразует изображение в тензор [1, Size, Size, 3].
// Чистая функция входа, без побочных эффектов.
type Preprocessor struct {
	Size   int
	Filter resize.InterpolationFunction
}

// New создаёт препроцессор с детерминированной билинейной интерполяцией
func New(size int) *Preprocessor {
	if size <= 0 {
		size = entity.InputSize
	}
	return &Preprocessor{
		Size:   size,
		Filter: resize.Bilinear,
	}
}

// Decode декодирует JPEG, PNG или GIF
func (p *Preprocessor) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", entity.ErrInvalidImage)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: zero area", entity.ErrInvalidImage)
	}

	return img, nil
}

// Preprocess переводит в RGB, масштабирует до Size×Size и нормирует значения в [0,1]
func (p *Preprocessor) Preprocess(img image.Image) (*entity.ImageTensor, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: zero area", entity.ErrInvalidImage)
	}

	resized := resize.Resize(uint(p.Size), uint(p.Size), toRGB(img), p.Filter)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]float32, 0, width*height*entity.InputChannels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data = append(data,
				float32(r>>8)/255.0,
				float32(g>>8)/255.0,
				float32(b>>8)/255.0,
			)
		}
	}

	return entity.NewImageTensor(height, width, entity.InputChannels, data)
}

// toRGB отбрасывает альфа-канал: непрозрачный NRGBA с исходными цветами
func toRGB(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c.A = 255
			out.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return out
}

// ImageFromTensor восстанавливает 8-битное изображение из тензора
func ImageFromTensor(t *entity.ImageTensor) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			out.SetRGBA(x, y, color.RGBA{
				R: toByte(t.At(y, x, 0)),
				G: toByte(t.At(y, x, 1)),
				B: toByte(t.At(y, x, 2)),
				A: 255,
			})
		}
	}
	return out
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Проверка реализации интерфейса
var _ port.ImagePreprocessor = (*Preprocessor)(nil)
