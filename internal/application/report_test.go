package app

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-bot/internal/domain/entity"
)

func TestAssembleReport(t *testing.T) {
	outcome := entity.DecisionOutcome{
		Label:             "Eczema",
		ConfidencePercent: 88.5,
		Severity:          entity.SeverityModerate,
		TopK:              []entity.Prediction{{Label: "Eczema", ConfidencePercent: 88.5}},
	}
	disease := entity.DiseaseRecord{Symptoms: "Dry skin", Medicines: []string{"Emollients"}, Specialist: "Dermatologist"}
	overlay := image.NewRGBA(image.Rect(0, 0, 2, 2))

	report := AssembleReport(AssembleInput{
		Patient:        entity.Patient{Name: "  Ann  ", Age: 42},
		Outcome:        outcome,
		Disease:        disease,
		Overlay:        overlay,
		ReferenceLabel: "Eczema",
	})

	require.Equal(t, "Ann", report.Patient.Name)
	require.Equal(t, 42, report.Patient.Age)
	require.Equal(t, outcome, report.Outcome)
	require.Equal(t, disease, report.Disease)
	require.True(t, report.HasOverlay())
	require.True(t, report.ReferenceAgrees)
	require.Equal(t, entity.Disclaimer, report.Disclaimer)
	require.Empty(t, report.ID)

	// отчёт не делит срезы с входом
	disease.Medicines[0] = "changed"
	require.Equal(t, "Emollients", report.Disease.Medicines[0])
}

func TestAssembleReport_ClampsAge(t *testing.T) {
	require.Equal(t, 1, AssembleReport(AssembleInput{Patient: entity.Patient{Age: 0}}).Patient.Age)
	require.Equal(t, 1, AssembleReport(AssembleInput{Patient: entity.Patient{Age: -5}}).Patient.Age)
	require.Equal(t, 120, AssembleReport(AssembleInput{Patient: entity.Patient{Age: 300}}).Patient.Age)
	require.Equal(t, 65, AssembleReport(AssembleInput{Patient: entity.Patient{Age: 65}}).Patient.Age)
}

func TestAssembleReport_ReferenceDisagrees(t *testing.T) {
	report := AssembleReport(AssembleInput{
		Outcome:        entity.DecisionOutcome{Label: entity.UncertainLabel},
		ReferenceLabel: "Eczema",
	})
	require.Equal(t, "Eczema", report.ReferenceLabel)
	require.False(t, report.ReferenceAgrees)
	require.False(t, report.HasOverlay())
}

func TestReferenceLabelFromFilename(t *testing.T) {
	require.Equal(t, "Eczema", ReferenceLabelFromFilename("Eczema_0012.jpg"))
	require.Equal(t, "Urticaria Hives", ReferenceLabelFromFilename("/tmp/upload/Urticaria Hives_3.png"))
	require.Equal(t, "", ReferenceLabelFromFilename("photo.jpg"))
	require.Equal(t, "", ReferenceLabelFromFilename(""))
}
