package port

import (
	"image"

	"derma-bot/internal/domain/entity"
)

// ImagePreprocessor приводит изображение к входу классификатора
type ImagePreprocessor interface {
	// Decode декодирует байты загруженного файла
	Decode(data []byte) (image.Image, error)

	// Preprocess возвращает тензор [1, 224, 224, 3] со значениями в [0,1]
	Preprocess(img image.Image) (*entity.ImageTensor, error)
}
