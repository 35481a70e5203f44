package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

// ExplanationUnavailableNote пишется в отчёт, если карту значимости построить не удалось
const ExplanationUnavailableNote = "Explanation unavailable"

// DiagnosisRequest один загруженный снимок с данными пациента
type DiagnosisRequest struct {
	Image    []byte
	Filename string // необязательно, из имени берётся эталонная метка
	Patient  entity.Patient
	Explain  bool
}

// DiagnosisService синхронный конвейер: изображение → тензор → классификатор →
// решение → (карта значимости) → справочник → отчёт.
//
// Сам сервис состояния не хранит. Классификатор общий и только для чтения;
// его адаптер отвечает за сериализацию вызовов среды выполнения.
type DiagnosisService struct {
	preprocessor port.ImagePreprocessor
	classifier   port.Classifier
	engine       *DecisionEngine
	kb           port.KnowledgeBase
	explainer    port.Explainer
	renderer     port.ReportRenderer
	log          logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// NewDiagnosisService создаёт конвейер. explainer и renderer могут быть nil.
func NewDiagnosisService(
	preprocessor port.ImagePreprocessor,
	classifier port.Classifier,
	engine *DecisionEngine,
	kb port.KnowledgeBase,
	explainer port.Explainer,
	renderer port.ReportRenderer,
	log logrus.FieldLogger,
) *DiagnosisService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DiagnosisService{
		preprocessor: preprocessor,
		classifier:   classifier,
		engine:       engine,
		kb:           kb,
		explainer:    explainer,
		renderer:     renderer,
		log:          log,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Diagnose прогоняет один снимок через конвейер.
// Неопределённый исход не ошибка: отчёт строится с общей записью справочника.
func (s *DiagnosisService) Diagnose(ctx context.Context, req DiagnosisRequest) (*entity.Report, error) {
	if s.classifier == nil {
		return nil, entity.ErrClassifierUnavailable
	}

	img, err := s.preprocessor.Decode(req.Image)
	if err != nil {
		return nil, err
	}

	tensor, err := s.preprocessor.Preprocess(img)
	if err != nil {
		return nil, err
	}

	probs, err := s.classifier.Classify(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	outcome, err := s.engine.Decide(probs)
	if err != nil {
		if errors.Is(err, entity.ErrSchemaMismatch) {
			s.log.WithError(err).Error("classifier and class table are out of sync")
		}
		return nil, fmt.Errorf("decide: %w", err)
	}

	var (
		overlay image.Image
		note    string
	)
	if req.Explain {
		overlay, note = s.explain(ctx, tensor, outcome.ClassIndex)
	}

	reference := ReferenceLabelFromFilename(req.Filename)
	if reference != "" && !s.kb.Has(reference) {
		s.log.WithField("reference", reference).Debug("ignoring unknown reference label")
		reference = ""
	}

	report := AssembleReport(AssembleInput{
		Patient:         req.Patient,
		Outcome:         outcome,
		Disease:         s.kb.Lookup(outcome.Label),
		Overlay:         overlay,
		ReferenceLabel:  reference,
		ExplanationNote: note,
	})
	report.ID = s.newID()
	report.CreatedAt = s.now()

	s.log.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"label":      outcome.Label,
		"confidence": outcome.ConfidencePercent,
		"severity":   outcome.Severity,
		"explained":  overlay != nil,
	}).Info("diagnosis completed")

	return report, nil
}

// Render передаёт отчёт внешнему рендереру и возвращает байты и MIME-тип
func (s *DiagnosisService) Render(ctx context.Context, report *entity.Report) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", errors.New("report renderer is not configured")
	}
	data, err := s.renderer.Render(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("render report %s: %w", report.ID, err)
	}
	return data, s.renderer.ContentType(), nil
}

// Classes возвращает метки классов в порядке индексов
func (s *DiagnosisService) Classes() []string {
	return s.engine.classes.Labels()
}

// explain объяснение строго дополнительное: любая ошибка превращается в пометку в отчёте
func (s *DiagnosisService) explain(ctx context.Context, tensor *entity.ImageTensor, classIndex int) (image.Image, string) {
	if s.explainer == nil {
		return nil, ExplanationUnavailableNote
	}

	explanation, err := s.explainer.Explain(ctx, tensor, classIndex)
	if err != nil {
		s.log.WithError(err).WithField("class_index", classIndex).Warn("explanation unavailable")
		return nil, ExplanationUnavailableNote
	}

	return explanation.Overlay, ""
}
