package entity

// DiseaseRecord справочная запись о заболевании
type DiseaseRecord struct {
	Symptoms   string   `json:"symptoms"`
	Medicines  []string `json:"medicines"`
	Specialist string   `json:"specialist"`
	HighRisk   bool     `json:"high_risk"` // высокий риск всегда даёт Severe
}
