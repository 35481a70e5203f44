package app

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// SeverityOrder порядок применения правила высокого риска и порога неопределённости
type SeverityOrder int

const (
	// SeverityBeforeGate высокорисковый top-1 класс никогда не скрывается как "Uncertain"
	SeverityBeforeGate SeverityOrder = iota
	// GateBeforeSeverity порог неопределённости применяется первым для всех классов
	GateBeforeSeverity
)

// DecisionPolicy настраиваемые пороги движка решений
type DecisionPolicy struct {
	UncertaintyThreshold float64 // ниже этого процента исход "Uncertain"
	ModerateThreshold    float64 // от этого процента тяжесть Moderate
	Order                SeverityOrder
	TopK                 int
}

// DefaultDecisionPolicy политика по умолчанию
func DefaultDecisionPolicy() DecisionPolicy {
	return DecisionPolicy{
		UncertaintyThreshold: 50,
		ModerateThreshold:    75,
		Order:                SeverityBeforeGate,
		TopK:                 3,
	}
}

// Validate проверяет диапазоны порогов
func (p DecisionPolicy) Validate() error {
	if p.UncertaintyThreshold < 0 || p.UncertaintyThreshold > 100 {
		return fmt.Errorf("uncertainty threshold %.2f is outside [0,100]", p.UncertaintyThreshold)
	}
	if p.ModerateThreshold < 0 || p.ModerateThreshold > 100 {
		return fmt.Errorf("moderate threshold %.2f is outside [0,100]", p.ModerateThreshold)
	}
	if p.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", p.TopK)
	}
	if p.Order != SeverityBeforeGate && p.Order != GateBeforeSeverity {
		return fmt.Errorf("unknown severity order %d", p.Order)
	}
	return nil
}

// DecisionEngine превращает вектор вероятностей в исход с тяжестью и top-K.
// Не имеет изменяемого состояния, безопасен для конкурентного использования.
type DecisionEngine struct {
	classes *entity.ClassTable
	kb      port.KnowledgeBase
	policy  DecisionPolicy
}

// NewDecisionEngine создаёт движок решений
func NewDecisionEngine(classes *entity.ClassTable, kb port.KnowledgeBase, policy DecisionPolicy) (*DecisionEngine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &DecisionEngine{classes: classes, kb: kb, policy: policy}, nil
}

// Decide строит исход по вектору вероятностей.
// Несовпадение длины с таблицей классов возвращает *entity.SchemaMismatchError.
func (e *DecisionEngine) Decide(probs entity.ProbabilityVector) (entity.DecisionOutcome, error) {
	if len(probs) != e.classes.Len() {
		return entity.DecisionOutcome{}, &entity.SchemaMismatchError{Expected: e.classes.Len(), Actual: len(probs)}
	}
	if err := probs.Validate(); err != nil {
		return entity.DecisionOutcome{}, err
	}

	idx := argmax(probs)
	confidence := toPercent(probs[idx])
	label := e.classes.Label(idx)

	outcome := entity.DecisionOutcome{
		Label:             label,
		ClassIndex:        idx,
		ConfidencePercent: confidence,
		TopK:              e.topK(probs),
	}

	highRisk := e.kb.IsHighRisk(label)
	switch {
	case highRisk && e.policy.Order == SeverityBeforeGate:
		outcome.Severity = entity.SeveritySevere
	case confidence < e.policy.UncertaintyThreshold:
		outcome.Label = entity.UncertainLabel
		outcome.Severity = entity.SeverityUnknown
	default:
		outcome.Severity = e.Severity(label, confidence)
	}

	return outcome, nil
}

// Severity чистая функция от метки и уверенности: высокий риск всегда Severe,
// иначе корзина по уверенности.
func (e *DecisionEngine) Severity(label string, confidencePercent float64) entity.Severity {
	if label == entity.UncertainLabel {
		return entity.SeverityUnknown
	}
	if e.kb.IsHighRisk(label) {
		return entity.SeveritySevere
	}
	if confidencePercent >= e.policy.ModerateThreshold {
		return entity.SeverityModerate
	}
	return entity.SeverityMild
}

// topK сортирует по убыванию вероятности, при равенстве по возрастанию индекса
func (e *DecisionEngine) topK(probs entity.ProbabilityVector) []entity.Prediction {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})

	k := e.policy.TopK
	if k > len(order) {
		k = len(order)
	}

	out := make([]entity.Prediction, 0, k)
	for _, i := range order[:k] {
		out = append(out, entity.Prediction{
			Label:             e.classes.Label(i),
			ConfidencePercent: toPercent(probs[i]),
		})
	}
	return out
}

// argmax первый индекс максимального значения
func argmax(probs entity.ProbabilityVector) int {
	best := 0
	for i, v := range probs {
		if v > probs[best] {
			best = i
		}
	}
	return best
}

// toPercent переводит вероятность в проценты с округлением до 2 знаков
func toPercent(p float32) float64 {
	return decimal.NewFromFloat32(p).Shift(2).Round(2).InexactFloat64()
}
