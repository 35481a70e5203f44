package port

import (
	"context"

	"derma-bot/internal/domain/entity"
)

// Explainer строит карту значимости для предсказанного класса
type Explainer interface {
	Explain(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (*entity.Explanation, error)
}
