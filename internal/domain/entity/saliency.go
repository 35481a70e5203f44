package entity

import (
	"fmt"
	"image"
)

// Activations карты признаков последнего пространственного слоя и градиенты
// оценки класса по ним. Обе матрицы хранятся по каналам: [C, H, W].
type Activations struct {
	Channels  int
	Height    int
	Width     int
	Features  []float32
	Gradients []float32
}

// Validate проверяет согласованность размеров
func (a *Activations) Validate() error {
	n := a.Channels * a.Height * a.Width
	if a.Channels <= 0 || a.Height <= 0 || a.Width <= 0 {
		return fmt.Errorf("invalid activation shape %dx%dx%d", a.Channels, a.Height, a.Width)
	}
	if len(a.Features) != n || len(a.Gradients) != n {
		return fmt.Errorf("activation size mismatch: features=%d gradients=%d want=%d",
			len(a.Features), len(a.Gradients), n)
	}
	return nil
}

// SaliencyMap двумерная карта значимости в [0,1], строки подряд
type SaliencyMap struct {
	Width  int
	Height int
	Values []float32
}

// At возвращает значение в точке (x, y)
func (m *SaliencyMap) At(x, y int) float32 {
	return m.Values[y*m.Width+x]
}

// Explanation результат объяснения: карта и наложение на изображение
type Explanation struct {
	ClassIndex int
	Map        *SaliencyMap
	Overlay    image.Image
}
