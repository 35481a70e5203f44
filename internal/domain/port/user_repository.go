package port

import (
	"context"

	"derma-bot/internal/domain/entity"
)

// UserRepository интерфейс хранилища состояния диалога.
// Состоянием владеет фронтенд, ядро конвейера его не читает.
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя вместе с данными анкеты
	Save(ctx context.Context, user *entity.User) error

	// UpdateState обновляет только состояние пользователя
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error
}
