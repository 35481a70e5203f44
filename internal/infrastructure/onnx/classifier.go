// Package onnx запускает классификатор через ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// featureLayer разрешённый один раз на модель пространственный слой
type featureLayer struct {
	name     string
	shape    ort.Shape
	channels int
	height   int
	width    int
}

// Classifier адаптер ONNX-модели. Сессия владеет привязанными буферами входа и выхода,
// поэтому каждый запуск сериализуется мьютексом.
type Classifier struct {
	mu       sync.Mutex
	meta     Metadata
	classes  *entity.ClassTable
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	features *ort.Tensor[float32]
	layer    *featureLayer
	log      logrus.FieldLogger
}

// Options параметры загрузки модели
type Options struct {
	ModelPath   string
	LibraryPath string // путь к libonnxruntime, по умолчанию системный
	Metadata    *Metadata
	Classes     *entity.ClassTable
	Log         logrus.FieldLogger
}

// NewClassifier загружает модель один раз на процесс и проверяет её против таблицы классов
func NewClassifier(opts Options) (*Classifier, error) {
	meta := opts.Metadata
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if err := checkClasses(meta.Classes, opts.Classes); err != nil {
		return nil, err
	}

	if !ort.IsInitialized() {
		if opts.LibraryPath != "" {
			ort.SetSharedLibraryPath(opts.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	_, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model outputs: %w", err)
	}

	if err := checkOutput(outputs, meta.OutputName, opts.Classes.Len()); err != nil {
		return nil, err
	}

	layer, err := resolveFeatureLayer(outputs, meta, opts.Classes.Len())
	if err != nil {
		log.WithError(err).Warn("saliency disabled for this model")
		layer = nil
	}

	c := &Classifier{meta: *meta, classes: opts.Classes, layer: layer, log: log}
	if err := c.createSession(opts.ModelPath); err != nil {
		c.Close()
		return nil, err
	}

	fields := logrus.Fields{"model": opts.ModelPath, "classes": opts.Classes.Len()}
	if layer != nil {
		fields["feature_layer"] = layer.name
	}
	log.WithFields(fields).Info("classifier loaded")

	return c, nil
}

func (c *Classifier) createSession(modelPath string) error {
	var err error

	c.input, err = ort.NewEmptyTensor[float32](ort.NewShape(c.meta.InputShape...))
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}

	c.output, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(c.classes.Len())))
	if err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}

	outputNames := []string{c.meta.OutputName}
	outputs := []ort.Value{c.output}
	if c.layer != nil {
		c.features, err = ort.NewEmptyTensor[float32](c.layer.shape)
		if err != nil {
			return fmt.Errorf("failed to create feature tensor: %w", err)
		}
		outputNames = append(outputNames, c.layer.name)
		outputs = append(outputs, c.features)
	}

	c.session, err = ort.NewAdvancedSession(modelPath,
		[]string{c.meta.InputName}, outputNames,
		[]ort.Value{c.input}, outputs,
		nil)
	if err != nil {
		return fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return nil
}

// Classify прогоняет тензор через модель и возвращает распределение по классам
func (c *Classifier) Classify(ctx context.Context, tensor *entity.ImageTensor) (entity.ProbabilityVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.run(tensor); err != nil {
		return nil, err
	}

	return c.probabilities(), nil
}

// Activations прогоняет тензор и возвращает карты последнего пространственного слоя
// вместе с градиентом оценки класса classIndex по ним.
func (c *Classifier) Activations(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (*entity.Activations, error) {
	if c.layer == nil || c.meta.Head == nil {
		return nil, fmt.Errorf("%w: model has no spatial feature layer", entity.ErrExplanationUnavailable)
	}
	if classIndex < 0 || classIndex >= c.classes.Len() {
		return nil, fmt.Errorf("class index %d is out of range", classIndex)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if err := c.run(tensor); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	raw := append([]float32(nil), c.features.GetData()...)
	output := append([]float32(nil), c.output.GetData()...)
	c.mu.Unlock()

	l := c.layer
	features := raw
	if c.meta.FeatureLayout == LayoutNHWC {
		features = toCHW(raw, l.height, l.width, l.channels)
	}

	acts := &entity.Activations{
		Channels: l.channels,
		Height:   l.height,
		Width:    l.width,
		Features: features,
	}

	// Градиент считается по весам из метаданных, поэтому они обязаны воспроизводить выход модели
	if err := c.meta.Head.Matches(acts, output, c.meta.OutputIsLogits); err != nil {
		c.log.WithError(err).Warn("classification head does not match the model")
		return nil, fmt.Errorf("%w: %v", entity.ErrExplanationUnavailable, err)
	}

	acts.Gradients = c.meta.Head.Gradient(classIndex, l.channels, l.height, l.width)
	return acts, nil
}

// run вызывается под мьютексом
func (c *Classifier) run(tensor *entity.ImageTensor) error {
	height, width := c.meta.InputSize()
	if tensor.Height != height || tensor.Width != width || tensor.Channels != 3 {
		return fmt.Errorf("tensor %dx%dx%d does not match model input %dx%dx3",
			tensor.Height, tensor.Width, tensor.Channels, height, width)
	}

	data := tensor.Data
	if c.meta.Layout == LayoutNCHW {
		data = tensor.CHW()
	}
	copy(c.input.GetData(), data)

	if err := c.session.Run(); err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}
	return nil
}

func (c *Classifier) probabilities() entity.ProbabilityVector {
	raw := c.output.GetData()
	if c.meta.OutputIsLogits {
		return entity.Softmax(raw)
	}
	out := make(entity.ProbabilityVector, len(raw))
	copy(out, raw)
	return out
}

// Explainable сообщает, найден ли пространственный слой и веса головы
func (c *Classifier) Explainable() bool {
	return c.layer != nil && c.meta.Head != nil
}

// Close освобождает сессию и тензоры
func (c *Classifier) Close() {
	if c.input != nil {
		c.input.Destroy()
	}
	if c.output != nil {
		c.output.Destroy()
	}
	if c.features != nil {
		c.features.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// checkClasses классы модели должны совпадать с таблицей по порядку
func checkClasses(modelClasses []string, table *entity.ClassTable) error {
	if len(modelClasses) == 0 {
		return nil
	}
	if len(modelClasses) != table.Len() {
		return &entity.SchemaMismatchError{Expected: table.Len(), Actual: len(modelClasses)}
	}
	for i, label := range modelClasses {
		if table.Label(i) != label {
			return fmt.Errorf("%w: class %d is %q in model, %q in table", entity.ErrSchemaMismatch, i, label, table.Label(i))
		}
	}
	return nil
}

// checkOutput выход классификатора должен давать по значению на каждый класс таблицы
func checkOutput(outputs []ort.InputOutputInfo, name string, classes int) error {
	for _, o := range outputs {
		if o.Name != name {
			continue
		}
		if len(o.Dimensions) == 0 {
			return fmt.Errorf("model output %q has no dimensions", name)
		}
		width := o.Dimensions[len(o.Dimensions)-1]
		if width > 0 && width != int64(classes) {
			return &entity.SchemaMismatchError{Expected: classes, Actual: int(width)}
		}
		return nil
	}
	return fmt.Errorf("model has no output %q", name)
}

// resolveFeatureLayer находит последний пространственный выход модели: явно заданный в
// метаданных или первый выход ранга 4.
func resolveFeatureLayer(outputs []ort.InputOutputInfo, meta *Metadata, classes int) (*featureLayer, error) {
	if meta.Head == nil {
		return nil, fmt.Errorf("%w: classification head weights are missing", entity.ErrExplanationUnavailable)
	}

	var info *ort.InputOutputInfo
	for i := range outputs {
		o := &outputs[i]
		if meta.FeatureOutput != "" {
			if o.Name == meta.FeatureOutput {
				info = o
				break
			}
			continue
		}
		if o.Name != meta.OutputName && len(o.Dimensions) == 4 {
			info = o
			break
		}
	}
	if info == nil {
		return nil, fmt.Errorf("%w: no spatial output in model", entity.ErrExplanationUnavailable)
	}
	if len(info.Dimensions) != 4 {
		return nil, fmt.Errorf("%w: output %q has rank %d", entity.ErrExplanationUnavailable, info.Name, len(info.Dimensions))
	}

	shape := ort.NewShape(info.Dimensions...)
	if shape[0] < 0 {
		shape[0] = 1
	}
	for _, d := range shape[1:] {
		if d <= 0 {
			return nil, fmt.Errorf("%w: output %q has dynamic shape %v", entity.ErrExplanationUnavailable, info.Name, info.Dimensions)
		}
	}

	layer := &featureLayer{name: info.Name, shape: shape}
	if meta.FeatureLayout == LayoutNCHW {
		layer.channels, layer.height, layer.width = int(shape[1]), int(shape[2]), int(shape[3])
	} else {
		layer.height, layer.width, layer.channels = int(shape[1]), int(shape[2]), int(shape[3])
	}

	if err := meta.Head.Validate(layer.channels, classes); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrExplanationUnavailable, err)
	}

	return layer, nil
}

// Проверка реализации интерфейсов
var (
	_ port.Classifier       = (*Classifier)(nil)
	_ port.ActivationSource = (*Classifier)(nil)
)
