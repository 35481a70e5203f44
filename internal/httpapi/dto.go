package httpapi

import (
	app "derma-bot/internal/application"
	"derma-bot/internal/domain/entity"
)

// ClassesResponse список меток в порядке индексов модели
type ClassesResponse struct {
	Classes []string `json:"classes"`
}

// DiagnosisResponse отчёт плюс ссылки и карта значимости в base64
type DiagnosisResponse struct {
	Report     *entity.Report `json:"report"`
	Links      LinksDTO       `json:"links"`
	OverlayPNG string         `json:"overlay_png,omitempty"`
}

// LinksDTO внешние ссылки по рекомендациям
type LinksDTO struct {
	Medicines  map[string]string `json:"medicines"`
	Specialist string            `json:"specialist"`
}

func linksFor(rec entity.DiseaseRecord) LinksDTO {
	links := LinksDTO{
		Medicines:  make(map[string]string, len(rec.Medicines)),
		Specialist: app.SpecialistLink(rec.Specialist),
	}
	for _, m := range rec.Medicines {
		links.Medicines[m] = app.MedicineLink(m)
	}
	return links
}
