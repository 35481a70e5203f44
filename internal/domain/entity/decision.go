package entity

// Severity грубая оценка тяжести для сортировки пациентов
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityUnknown  Severity = "Unknown"
)

// Prediction класс и его уверенность в процентах
type Prediction struct {
	Label             string  `json:"label"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// DecisionOutcome итог одного вызова классификатора
type DecisionOutcome struct {
	Label             string       `json:"label"`              // метка класса или "Uncertain"
	ClassIndex        int          `json:"class_index"`        // индекс top-1 класса, даже если исход неопределённый
	ConfidencePercent float64      `json:"confidence_percent"` // уверенность top-1, 2 знака
	Severity          Severity     `json:"severity"`
	TopK              []Prediction `json:"top_k"`
}

// Uncertain сообщает, что уверенность не прошла порог
func (o DecisionOutcome) Uncertain() bool {
	return o.Label == UncertainLabel
}
