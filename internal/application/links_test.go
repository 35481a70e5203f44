package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMedicineLink(t *testing.T) {
	require.Equal(t,
		"https://www.webmd.com/search/search_results/default.aspx?query=Vitamin+D+analogues",
		MedicineLink("Vitamin D analogues"))
	require.Equal(t,
		"https://www.webmd.com/search/search_results/default.aspx?query=5-Fluorouracil",
		MedicineLink("5-Fluorouracil"))
}

func TestSpecialistLink(t *testing.T) {
	require.Equal(t, "https://www.google.com/maps/search/Dermatologist+near+me", SpecialistLink("Dermatologist"))
}
