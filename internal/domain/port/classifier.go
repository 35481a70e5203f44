package port

import (
	"context"

	"derma-bot/internal/domain/entity"
)

// Classifier интерфейс предобученного классификатора
type Classifier interface {
	// Classify возвращает вероятности классов для одного тензора.
	// Индекс i соответствует метке ClassTable.Label(i).
	Classify(ctx context.Context, tensor *entity.ImageTensor) (entity.ProbabilityVector, error)
}

// ActivationSource классификатор, умеющий отдавать карты признаков последнего
// пространственного слоя и градиенты оценки класса по ним.
type ActivationSource interface {
	// Activations возвращает entity.ErrExplanationUnavailable, если у модели нет пространственного слоя
	Activations(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (*entity.Activations, error)
}
