//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"derma-bot/internal/domain/entity"
)

// GoCVClassifier заглушка для сборки без OpenCV
type GoCVClassifier struct{}

// NewGoCVClassifier возвращает ошибку, если сборка без тега gocv
func NewGoCVClassifier(opts GoCVOptions) (*GoCVClassifier, error) {
	_ = opts
	return nil, errors.New("gocv build tag is not enabled")
}

// Classify возвращает ошибку, если сборка без тега gocv
func (c *GoCVClassifier) Classify(ctx context.Context, tensor *entity.ImageTensor) (entity.ProbabilityVector, error) {
	_ = ctx
	_ = tensor
	return nil, errors.New("gocv build tag is not enabled")
}

// Close ничего не делает
func (c *GoCVClassifier) Close() error {
	return nil
}
