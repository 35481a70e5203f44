package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

var (
	// ErrInvalidTransition переход не разрешён из текущего состояния
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidName пустое имя пациента
	ErrInvalidName = errors.New("patient name is empty")
	// ErrInvalidAge возраст не число или вне диапазона
	ErrInvalidAge = errors.New("patient age must be a number between 1 and 120")
)

// UserService ведёт пользователя по анкете: имя → возраст → фото
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// SetState меняет только состояние, данные анкеты в хранилище не перезаписываются
func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if !user.CanTransition(state) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, user.State, state)
	}

	if err := s.repo.UpdateState(ctx, userID, state); err != nil {
		return nil, err
	}
	user.SetState(state)

	return user, nil
}

// BeginCheck начинает новую анкету, забывая данные прошлой
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.Reset()
	user.SetState(entity.StateAwaitingName)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SubmitName сохраняет имя пациента и переходит к вопросу о возрасте
func (s *UserService) SubmitName(ctx context.Context, userID, chatID int64, name string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	return s.update(ctx, userID, chatID, entity.StateAwaitingAge, func(u *entity.User) {
		u.Patient.Name = name
	})
}

// SubmitAge разбирает возраст и переходит к ожиданию фото
func (s *UserService) SubmitAge(ctx context.Context, userID, chatID int64, text string) (*entity.User, error) {
	age, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || age < entity.MinPatientAge || age > entity.MaxPatientAge {
		return nil, ErrInvalidAge
	}

	return s.update(ctx, userID, chatID, entity.StateAwaitingPhoto, func(u *entity.User) {
		u.Patient.Age = age
	})
}

// StartProcessing фиксирует, что фото принято в обработку
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateProcessing)
}

// Retry возвращает пользователя к ожиданию фото после неудачной обработки
func (s *UserService) Retry(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// Cancel возвращает в главное меню и очищает анкету
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.Reset()
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, next entity.UserState, apply func(*entity.User)) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if !user.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, user.State, next)
	}

	apply(user)
	user.SetState(next)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
