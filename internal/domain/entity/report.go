package entity

import (
	"image"
	"time"
)

const (
	MinPatientAge = 1
	MaxPatientAge = 120
	// DefaultPatientAge подставляется, если фронтенд не спросил возраст
	DefaultPatientAge = 25

	// Disclaimer печатается в каждом отчёте
	Disclaimer = "This system is for educational purposes only and does not replace professional medical diagnosis."
)

// Patient данные пациента, введённые во фронтенде
type Patient struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// Report собранный отчёт для внешнего рендерера. Ядро его не хранит.
type Report struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	Patient         Patient         `json:"patient"`
	Outcome         DecisionOutcome `json:"outcome"`
	Disease         DiseaseRecord   `json:"disease"`
	ReferenceLabel  string          `json:"reference_label,omitempty"`
	ReferenceAgrees bool            `json:"reference_agrees,omitempty"`
	ExplanationNote string          `json:"explanation_note,omitempty"`
	Overlay         image.Image     `json:"-"`
	Disclaimer      string          `json:"disclaimer"`
}

// HasOverlay сообщает, есть ли карта значимости в отчёте
func (r *Report) HasOverlay() bool {
	return r.Overlay != nil
}
