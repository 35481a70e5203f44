package port

import "derma-bot/internal/domain/entity"

// KnowledgeBase справочник метка → запись о заболевании
type KnowledgeBase interface {
	// Lookup никогда не падает: неизвестные метки получают общую запись
	Lookup(label string) entity.DiseaseRecord

	// Has сообщает, есть ли у метки собственная запись
	Has(label string) bool

	// IsHighRisk сообщает, помечена ли метка как высокорисковая
	IsHighRisk(label string) bool
}
