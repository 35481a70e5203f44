package container

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"derma-bot/config"
	app "derma-bot/internal/application"
	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
	"derma-bot/internal/infrastructure/explain"
	"derma-bot/internal/infrastructure/knowledge"
	"derma-bot/internal/infrastructure/modelstore"
	"derma-bot/internal/infrastructure/onnx"
	"derma-bot/internal/infrastructure/preprocess"
	"derma-bot/internal/infrastructure/render"
	"derma-bot/internal/infrastructure/storage"
	"derma-bot/internal/infrastructure/vision"
)

type Container struct {
	UserService      *app.UserService
	DiagnosisService *app.DiagnosisService

	closers []io.Closer
}

func New(userRepo port.UserRepository, diagnosis *app.DiagnosisService) *Container {
	return &Container{
		UserService:      app.NewUserService(userRepo),
		DiagnosisService: diagnosis,
	}
}

// Build собирает конвейер из конфигурации: справочник проверяется при старте,
// модель загружается один раз на процесс.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Container, error) {
	classes := entity.DefaultClassTable()

	kb, err := knowledge.NewDefault(classes)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: %w", err)
	}

	policy := app.DefaultDecisionPolicy()
	policy.UncertaintyThreshold = cfg.UncertaintyThreshold
	policy.ModerateThreshold = cfg.ModerateThreshold
	if !cfg.SeverityBeforeGate {
		policy.Order = app.GateBeforeSeverity
	}
	engine, err := app.NewDecisionEngine(classes, kb, policy)
	if err != nil {
		return nil, fmt.Errorf("decision engine: %w", err)
	}

	if err := modelstore.NewFetcher(nil, log).Ensure(ctx, cfg.ModelPath, cfg.ModelURL); err != nil {
		return nil, err
	}

	meta, err := onnx.LoadMetadata(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}

	c := &Container{}

	var (
		classifier port.Classifier
		explainer  port.Explainer
	)
	switch cfg.ClassifierBackend {
	case "gocv":
		size, _ := meta.InputSize()
		gc, err := vision.NewGoCVClassifier(vision.GoCVOptions{
			ModelPath:      cfg.ModelPath,
			Classes:        classes.Len(),
			Size:           size,
			ChannelsFirst:  meta.Layout == onnx.LayoutNCHW,
			OutputIsLogits: meta.OutputIsLogits,
		})
		if err != nil {
			return nil, fmt.Errorf("gocv classifier: %w", err)
		}
		c.closers = append(c.closers, gc)
		classifier = gc
	default:
		oc, err := onnx.NewClassifier(onnx.Options{
			ModelPath:   cfg.ModelPath,
			LibraryPath: cfg.ONNXRuntimeLib,
			Metadata:    meta,
			Classes:     classes,
			Log:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("onnx classifier: %w", err)
		}
		c.closers = append(c.closers, closerFunc(oc.Close))
		classifier = oc
		if cfg.Explain && oc.Explainable() {
			explainer = explain.NewGradCAM(oc, cfg.OverlayAlpha)
		}
	}

	if cfg.Explain && explainer == nil {
		log.Warn("explanations requested but the classifier has no spatial feature layer")
	}

	var userRepo port.UserRepository
	if cfg.RedisAddr != "" {
		repo, err := storage.NewRedisUserRepository(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, repo)
		userRepo = repo
	} else {
		userRepo = storage.NewMemoryUserRepository()
	}

	height, _ := meta.InputSize()
	diagnosis := app.NewDiagnosisService(
		preprocess.New(height),
		classifier,
		engine,
		kb,
		explainer,
		render.NewPDFRenderer(),
		log,
	)

	built := New(userRepo, diagnosis)
	built.closers = c.closers
	return built, nil
}

// Close освобождает модель и соединения
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i].Close()
	}
	c.closers = nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
