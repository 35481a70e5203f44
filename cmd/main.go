package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"derma-bot/config"
	telegram "derma-bot/internal/api"
	"derma-bot/internal/container"
	"derma-bot/internal/httpapi"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	if cfg.TelegramToken == "" && !cfg.HTTPEnabled() {
		log.Fatal("nothing to run: set TELEGRAM_TOKEN or HTTP_ADDR")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("service stopped")
	}
}

// run владеет контейнером, поэтому модель и соединения закрываются на любом пути выхода
func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Собираем конвейер: модель, справочник, хранилище анкет
	appContainer, err := container.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer appContainer.Close()

	errs := make(chan error, 2)

	if cfg.HTTPEnabled() {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewServer(appContainer.DiagnosisService, cfg.CORSOrigins, log).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", cfg.HTTPAddr).Info("http api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, log)
		if err != nil {
			return err
		}
		go func() {
			log.Info("bot is running")
			if err := bot.Run(ctx); err != nil {
				errs <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	case err := <-errs:
		return err
	}
}
