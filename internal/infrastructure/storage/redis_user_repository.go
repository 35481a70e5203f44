package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

const userKeyPrefix = "derma:user:"

// RedisUserRepository хранит состояние анкеты в Redis, чтобы диалог переживал перезапуск
type RedisUserRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUserRepository создаёт хранилище и проверяет соединение
func NewRedisUserRepository(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisUserRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	return &RedisUserRepository{client: client, ttl: ttl}, nil
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *RedisUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	data, err := r.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		user := entity.NewUser(userID, chatID)
		if err := r.Save(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}

	user, err := decodeUser(data)
	if err != nil {
		return nil, fmt.Errorf("decode user %d: %w", userID, err)
	}
	return user, nil
}

// Save сохраняет пользователя целиком
func (r *RedisUserRepository) Save(ctx context.Context, user *entity.User) error {
	data, err := encodeUser(user)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, userKey(user.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

// UpdateState обновляет состояние пользователя, если он уже известен
func (r *RedisUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	data, err := r.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user %d: %w", userID, err)
	}

	user, err := decodeUser(data)
	if err != nil {
		return fmt.Errorf("decode user %d: %w", userID, err)
	}
	user.SetState(state)
	return r.Save(ctx, user)
}

// Close закрывает соединение
func (r *RedisUserRepository) Close() error {
	return r.client.Close()
}

func userKey(userID int64) string {
	return fmt.Sprintf("%s%d", userKeyPrefix, userID)
}

func encodeUser(user *entity.User) ([]byte, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user %d: %w", user.ID, err)
	}
	return data, nil
}

func decodeUser(data []byte) (*entity.User, error) {
	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	if user.State == "" {
		user.State = entity.StateMainMenu
	}
	return &user, nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*RedisUserRepository)(nil)
