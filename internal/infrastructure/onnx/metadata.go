package onnx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	LayoutNHWC = "NHWC"
	LayoutNCHW = "NCHW"
)

// Metadata описание модели рядом с файлом .onnx
type Metadata struct {
	Classes        []string `json:"classes"`
	InputName      string   `json:"input_name"`
	OutputName     string   `json:"output_name"`
	InputShape     []int64  `json:"input_shape"`
	Layout         string   `json:"layout"`
	OutputIsLogits bool     `json:"output_is_logits"`

	// Последний пространственный слой перед головой классификации.
	// Если пусто, ищется по структуре модели.
	FeatureOutput string     `json:"feature_output"`
	FeatureLayout string     `json:"feature_layout"`
	Head          *DenseHead `json:"head"`
	HeadPath      string     `json:"head_path"`
}

// LoadMetadata читает JSON, проставляет значения по умолчанию и проверяет поля
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if meta.Head == nil && meta.HeadPath != "" {
		headPath := meta.HeadPath
		if !filepath.IsAbs(headPath) {
			headPath = filepath.Join(filepath.Dir(path), headPath)
		}
		head, err := loadHead(headPath)
		if err != nil {
			return nil, err
		}
		meta.Head = head
	}

	meta.applyDefaults()
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	return &meta, nil
}

func loadHead(path string) (*DenseHead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read head weights: %w", err)
	}
	var head DenseHead
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to parse head weights: %w", err)
	}
	return &head, nil
}

func (m *Metadata) applyDefaults() {
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	m.Layout = strings.ToUpper(m.Layout)
	if m.Layout == "" {
		m.Layout = LayoutNHWC
	}
	m.FeatureLayout = strings.ToUpper(m.FeatureLayout)
	if m.FeatureLayout == "" {
		m.FeatureLayout = LayoutNHWC
	}
	if len(m.InputShape) == 0 {
		if m.Layout == LayoutNCHW {
			m.InputShape = []int64{1, 3, 224, 224}
		} else {
			m.InputShape = []int64{1, 224, 224, 3}
		}
	}
}

// Validate проверяет согласованность формы входа и раскладки
func (m *Metadata) Validate() error {
	if m.Layout != LayoutNHWC && m.Layout != LayoutNCHW {
		return fmt.Errorf("unsupported input layout %q", m.Layout)
	}
	if m.FeatureLayout != LayoutNHWC && m.FeatureLayout != LayoutNCHW {
		return fmt.Errorf("unsupported feature layout %q", m.FeatureLayout)
	}
	if len(m.InputShape) != 4 || m.InputShape[0] != 1 {
		return fmt.Errorf("input shape must be [1,...] with 4 dimensions, got %v", m.InputShape)
	}
	channels := m.InputShape[3]
	if m.Layout == LayoutNCHW {
		channels = m.InputShape[1]
	}
	if channels != 3 {
		return fmt.Errorf("input must have 3 channels, got %d", channels)
	}
	return nil
}

// InputSize высота и ширина входа
func (m *Metadata) InputSize() (height, width int) {
	if m.Layout == LayoutNCHW {
		return int(m.InputShape[2]), int(m.InputShape[3])
	}
	return int(m.InputShape[1]), int(m.InputShape[2])
}
