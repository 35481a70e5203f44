package app

import (
	"image"
	"path/filepath"
	"strings"

	"derma-bot/internal/domain/entity"
)

// AssembleInput всё, что нужно для сборки отчёта
type AssembleInput struct {
	Patient         entity.Patient
	Outcome         entity.DecisionOutcome
	Disease         entity.DiseaseRecord
	Overlay         image.Image
	ReferenceLabel  string
	ExplanationNote string
}

// AssembleReport чистая функция слияния: без ввода-вывода, без часов и идентификаторов.
// Возраст ограничивается диапазоном 1–120.
func AssembleReport(in AssembleInput) *entity.Report {
	medicines := append([]string(nil), in.Disease.Medicines...)
	topK := append([]entity.Prediction(nil), in.Outcome.TopK...)

	report := &entity.Report{
		Patient: entity.Patient{
			Name: strings.TrimSpace(in.Patient.Name),
			Age:  clampAge(in.Patient.Age),
		},
		Outcome:         in.Outcome,
		Disease:         in.Disease,
		Overlay:         in.Overlay,
		ExplanationNote: in.ExplanationNote,
		Disclaimer:      entity.Disclaimer,
	}
	report.Outcome.TopK = topK
	report.Disease.Medicines = medicines

	if in.ReferenceLabel != "" {
		report.ReferenceLabel = in.ReferenceLabel
		report.ReferenceAgrees = in.ReferenceLabel == in.Outcome.Label
	}

	return report
}

// ReferenceLabelFromFilename берёт метку из имени файла вида "Label_xxx.jpg".
// Без подчёркивания возвращает пустую строку.
func ReferenceLabelFromFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	prefix, _, found := strings.Cut(base, "_")
	if !found {
		return ""
	}
	return strings.TrimSpace(prefix)
}

func clampAge(age int) int {
	if age < entity.MinPatientAge {
		return entity.MinPatientAge
	}
	if age > entity.MaxPatientAge {
		return entity.MaxPatientAge
	}
	return age
}
