package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage изображение не декодируется или имеет нулевую площадь
	ErrInvalidImage = errors.New("invalid image")

	// ErrSchemaMismatch выход классификатора не согласован с таблицей классов
	ErrSchemaMismatch = errors.New("classifier output does not match class table")

	// ErrInvalidProbabilities вектор не является распределением вероятностей
	ErrInvalidProbabilities = errors.New("invalid probability vector")

	// ErrExplanationUnavailable объяснение для модели построить нельзя
	ErrExplanationUnavailable = errors.New("explanation unavailable")

	// ErrClassifierUnavailable классификатор не сконфигурирован
	ErrClassifierUnavailable = errors.New("classifier is not configured")
)

// SchemaMismatchError описывает расхождение длины выхода модели и таблицы классов.
type SchemaMismatchError struct {
	Expected int
	Actual   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d classes, got %d", ErrSchemaMismatch, e.Expected, e.Actual)
}

// Is позволяет сравнивать через errors.Is(err, ErrSchemaMismatch)
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
