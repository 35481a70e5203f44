package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// Base неизменяемый справочник заболеваний. Блокировки не нужны.
type Base struct {
	records  map[string]entity.DiseaseRecord
	fallback entity.DiseaseRecord
}

// New проверяет, что справочник покрывает каждый класс таблицы и ничего лишнего,
// и возвращает ошибку при любом пропуске.
func New(classes *entity.ClassTable, records map[string]entity.DiseaseRecord, fallback entity.DiseaseRecord) (*Base, error) {
	if err := validateRecord("fallback", fallback); err != nil {
		return nil, err
	}

	var missing []string
	for _, label := range classes.Labels() {
		if _, ok := records[label]; !ok {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("knowledge base is missing %d labels: %s", len(missing), strings.Join(missing, "; "))
	}

	var extra []string
	for label := range records {
		if _, ok := classes.Index(label); !ok {
			extra = append(extra, label)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("knowledge base has labels outside class table: %s", strings.Join(extra, "; "))
	}

	b := &Base{
		records:  make(map[string]entity.DiseaseRecord, len(records)),
		fallback: cloneRecord(fallback),
	}
	for label, rec := range records {
		if err := validateRecord(label, rec); err != nil {
			return nil, err
		}
		b.records[label] = cloneRecord(rec)
	}

	return b, nil
}

// NewDefault собирает встроенный справочник для таблицы классов
func NewDefault(classes *entity.ClassTable) (*Base, error) {
	return New(classes, DefaultRecords, FallbackRecord)
}

// Lookup возвращает запись по метке. "Uncertain" и неизвестные метки получают общую запись.
func (b *Base) Lookup(label string) entity.DiseaseRecord {
	rec, ok := b.records[label]
	if !ok {
		return cloneRecord(b.fallback)
	}
	return cloneRecord(rec)
}

// Has сообщает, есть ли собственная запись у метки
func (b *Base) Has(label string) bool {
	_, ok := b.records[label]
	return ok
}

// IsHighRisk сообщает, помечена ли метка как высокорисковая
func (b *Base) IsHighRisk(label string) bool {
	return b.records[label].HighRisk
}

func validateRecord(label string, rec entity.DiseaseRecord) error {
	if strings.TrimSpace(rec.Symptoms) == "" {
		return fmt.Errorf("knowledge base record %q has no symptoms", label)
	}
	if len(rec.Medicines) == 0 {
		return fmt.Errorf("knowledge base record %q has no medicines", label)
	}
	if strings.TrimSpace(rec.Specialist) == "" {
		return fmt.Errorf("knowledge base record %q has no specialist", label)
	}
	return nil
}

// cloneRecord не даёт вызывающему изменить срез лекарств в справочнике
func cloneRecord(rec entity.DiseaseRecord) entity.DiseaseRecord {
	rec.Medicines = append([]string(nil), rec.Medicines...)
	return rec
}

// Проверка реализации интерфейса
var _ port.KnowledgeBase = (*Base)(nil)
