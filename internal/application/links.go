package app

import "net/url"

const (
	medicineSearchURL   = "https://www.webmd.com/search/search_results/default.aspx?query="
	specialistSearchURL = "https://www.google.com/maps/search/"
)

// MedicineLink ссылка на справку о лекарстве для фронтендов
func MedicineLink(name string) string {
	return medicineSearchURL + url.QueryEscape(name)
}

// SpecialistLink поиск ближайшего специалиста на карте
func SpecialistLink(specialist string) string {
	return specialistSearchURL + url.QueryEscape(specialist+" near me")
}
