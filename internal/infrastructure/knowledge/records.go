package knowledge

import "derma-bot/internal/domain/entity"

// FallbackRecord общая запись для неопределённых и неизвестных меток
var FallbackRecord = entity.DiseaseRecord{
	Symptoms:   "The condition could not be identified with sufficient confidence",
	Medicines:  []string{"Consult a specialist"},
	Specialist: "Dermatologist",
}

// DefaultRecords встроенный справочник по всем 23 классам.
// Меняется только новой поставкой, не во время работы.
var DefaultRecords = map[string]entity.DiseaseRecord{
	"Acne and Rosacea": {
		Symptoms:   "Pimples, redness, oily skin",
		Medicines:  []string{"Benzoyl Peroxide", "Adapalene", "Clindamycin"},
		Specialist: "Dermatologist",
	},
	"Actinic Keratosis Basal Cell Carcinoma and other Malignant Lesions": {
		Symptoms:   "Scaly patches, non-healing sores",
		Medicines:  []string{"5-Fluorouracil", "Imiquimod"},
		Specialist: "Dermato-oncologist",
		HighRisk:   true,
	},
	"Atopic Dermatitis": {
		Symptoms:   "Dry itchy inflamed skin",
		Medicines:  []string{"Moisturizers", "Hydrocortisone"},
		Specialist: "Dermatologist",
	},
	"Bullous Disease": {
		Symptoms:   "Fluid-filled blisters",
		Medicines:  []string{"Systemic corticosteroids"},
		Specialist: "Immunodermatologist",
	},
	"Cellulitis Impetigo and other Bacterial Infections": {
		Symptoms:   "Red swollen painful skin",
		Medicines:  []string{"Mupirocin", "Antibiotics"},
		Specialist: "Dermatologist",
	},
	"Eczema": {
		Symptoms:   "Dry cracked itchy skin",
		Medicines:  []string{"Emollients", "Topical steroids"},
		Specialist: "Dermatologist",
	},
	"Exanthems and Drug Eruptions": {
		Symptoms:   "Sudden rash",
		Medicines:  []string{"Antihistamines"},
		Specialist: "Dermatologist",
	},
	"Hair Loss Photos Alopecia and other Hair Diseases": {
		Symptoms:   "Hair thinning, bald patches",
		Medicines:  []string{"Minoxidil", "Biotin"},
		Specialist: "Trichologist",
	},
	"Herpes HPV and other STDs": {
		Symptoms:   "Painful blisters, warts",
		Medicines:  []string{"Acyclovir"},
		Specialist: "Dermatologist",
	},
	"Light Diseases and Disorders of Pigmentation": {
		Symptoms:   "Dark or light skin patches",
		Medicines:  []string{"Azelaic Acid", "Sunscreen"},
		Specialist: "Dermatologist",
	},
	"Lupus and other Connective Tissue Diseases": {
		Symptoms:   "Butterfly rash",
		Medicines:  []string{"Hydroxychloroquine"},
		Specialist: "Rheumatologist",
	},
	"Melanoma Skin Cancer Nevi and Moles": {
		Symptoms:   "Irregular mole, color change",
		Medicines:  []string{"Specialist evaluation"},
		Specialist: "Dermato-oncologist",
		HighRisk:   true,
	},
	"Nail Fungus and other Nail Disease": {
		Symptoms:   "Discolored thick nails",
		Medicines:  []string{"Antifungal lacquer"},
		Specialist: "Dermatologist",
	},
	"Poison Ivy Photos and other Contact Dermatitis": {
		Symptoms:   "Itchy contact rash",
		Medicines:  []string{"Topical steroids"},
		Specialist: "Dermatologist",
	},
	"Psoriasis pictures Lichen Planus and Related Diseases": {
		Symptoms:   "Silvery scaly plaques",
		Medicines:  []string{"Vitamin D analogues", "Coal tar"},
		Specialist: "Dermatologist",
	},
	"Scabies Lyme Disease and other Infestations and Bites": {
		Symptoms:   "Severe itching",
		Medicines:  []string{"Permethrin cream"},
		Specialist: "Dermatologist",
	},
	"Seborrheic Keratoses and other Benign Tumors": {
		Symptoms:   "Benign growths",
		Medicines:  []string{"Observation"},
		Specialist: "Dermatologist",
	},
	"Systemic Disease": {
		Symptoms:   "Skin signs of internal disease",
		Medicines:  []string{"Treat underlying disease"},
		Specialist: "Physician",
	},
	"Tinea Ringworm Candidiasis and other Fungal Infections": {
		Symptoms:   "Ring-shaped itchy rash",
		Medicines:  []string{"Clotrimazole", "Ketoconazole"},
		Specialist: "Dermatologist",
	},
	"Urticaria Hives": {
		Symptoms:   "Raised itchy wheals",
		Medicines:  []string{"Antihistamines"},
		Specialist: "Allergist",
	},
	"Vascular Tumors": {
		Symptoms:   "Red/purple lesions",
		Medicines:  []string{"Laser therapy"},
		Specialist: "Dermatologist",
	},
	"Vasculitis Photos": {
		Symptoms:   "Purpura, ulcers",
		Medicines:  []string{"Immunosuppressants"},
		Specialist: "Rheumatologist",
	},
	"Warts Molluscum and other Viral Infections": {
		Symptoms:   "Warts, bumps",
		Medicines:  []string{"Salicylic acid"},
		Specialist: "Dermatologist",
	},
}
