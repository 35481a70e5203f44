package entity

import "fmt"

// UncertainLabel метка исхода, когда уверенность ниже порога
const UncertainLabel = "Uncertain"

// DefaultClassLabels фиксированный список из 23 классов.
// Порядок совпадает с индексами выхода классификатора и не должен меняться отдельно от модели.
var DefaultClassLabels = []string{
	"Acne and Rosacea",
	"Actinic Keratosis Basal Cell Carcinoma and other Malignant Lesions",
	"Atopic Dermatitis",
	"Bullous Disease",
	"Cellulitis Impetigo and other Bacterial Infections",
	"Eczema",
	"Exanthems and Drug Eruptions",
	"Hair Loss Photos Alopecia and other Hair Diseases",
	"Herpes HPV and other STDs",
	"Light Diseases and Disorders of Pigmentation",
	"Lupus and other Connective Tissue Diseases",
	"Melanoma Skin Cancer Nevi and Moles",
	"Nail Fungus and other Nail Disease",
	"Poison Ivy Photos and other Contact Dermatitis",
	"Psoriasis pictures Lichen Planus and Related Diseases",
	"Scabies Lyme Disease and other Infestations and Bites",
	"Seborrheic Keratoses and other Benign Tumors",
	"Systemic Disease",
	"Tinea Ringworm Candidiasis and other Fungal Infections",
	"Urticaria Hives",
	"Vascular Tumors",
	"Vasculitis Photos",
	"Warts Molluscum and other Viral Infections",
}

// ClassTable неизменяемое отображение индекс → метка класса
type ClassTable struct {
	labels []string
	index  map[string]int
}

// NewClassTable создаёт таблицу классов. Пустые и повторяющиеся метки недопустимы.
func NewClassTable(labels []string) (*ClassTable, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("class table is empty")
	}

	t := &ClassTable{
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("class %d has empty label", i)
		}
		if label == UncertainLabel {
			return nil, fmt.Errorf("class %d uses reserved label %q", i, label)
		}
		if _, dup := t.index[label]; dup {
			return nil, fmt.Errorf("duplicate class label %q", label)
		}
		t.labels[i] = label
		t.index[label] = i
	}

	return t, nil
}

// DefaultClassTable возвращает таблицу из 23 встроенных классов
func DefaultClassTable() *ClassTable {
	t, err := NewClassTable(DefaultClassLabels)
	if err != nil {
		panic(err)
	}
	return t
}

// Len возвращает количество классов
func (t *ClassTable) Len() int {
	return len(t.labels)
}

// Label возвращает метку по индексу
func (t *ClassTable) Label(i int) string {
	return t.labels[i]
}

// Index возвращает индекс метки и признак её наличия
func (t *ClassTable) Index(label string) (int, bool) {
	i, ok := t.index[label]
	return i, ok
}

// Labels возвращает копию списка меток в порядке индексов
func (t *ClassTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}
