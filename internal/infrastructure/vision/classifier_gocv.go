//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// GoCVClassifier запускает ONNX-модель через модуль DNN OpenCV.
// Карты признаков не отдаёт, поэтому объяснение для него недоступно.
type GoCVClassifier struct {
	mu   sync.Mutex
	net  gocv.Net
	opts GoCVOptions
}

// NewGoCVClassifier загружает модель
func NewGoCVClassifier(opts GoCVOptions) (*GoCVClassifier, error) {
	net := gocv.ReadNetFromONNX(opts.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to read model %s", opts.ModelPath)
	}
	return &GoCVClassifier{net: net, opts: opts}, nil
}

// Classify собирает вход в раскладке модели и выполняет прямой проход
func (c *GoCVClassifier) Classify(ctx context.Context, tensor *entity.ImageTensor) (entity.ProbabilityVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sizes, data, err := blobInput(tensor, c.opts.Size, c.opts.ChannelsFirst)
	if err != nil {
		return nil, err
	}

	blob, err := gocv.NewMatWithSizesFromBytes(sizes, gocv.MatTypeCV32F, float32Bytes(data))
	if err != nil {
		return nil, fmt.Errorf("tensor to blob: %w", err)
	}
	defer blob.Close()

	c.mu.Lock()
	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	c.mu.Unlock()
	defer out.Close()

	if out.Empty() {
		return nil, errors.New("empty network output")
	}

	raw, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	return toProbabilities(raw, c.opts.Classes, c.opts.OutputIsLogits)
}

// Close освобождает сеть
func (c *GoCVClassifier) Close() error {
	return c.net.Close()
}

// Проверка реализации интерфейса
var _ port.Classifier = (*GoCVClassifier)(nil)
