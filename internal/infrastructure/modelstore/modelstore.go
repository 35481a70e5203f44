// Package modelstore один раз скачивает веса модели, если их нет на диске.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Fetcher скачивает файлы модели по HTTP
type Fetcher struct {
	Client *http.Client
	Log    logrus.FieldLogger
}

// NewFetcher создаёт загрузчик с переданным клиентом
func NewFetcher(client *http.Client, log logrus.FieldLogger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fetcher{Client: client, Log: log}
}

// Ensure возвращает nil, если файл уже есть. Иначе скачивает его из url во временный
// файл рядом и атомарно переименовывает.
func (f *Fetcher) Ensure(ctx context.Context, localPath, url string) error {
	if _, err := os.Stat(localPath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	if url == "" {
		return fmt.Errorf("model %s is missing and no download url is configured", localPath)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	f.Log.WithFields(logrus.Fields{"path": localPath, "url": url}).Info("downloading model weights")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	written, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	if err := os.Rename(tmpName, localPath); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}

	f.Log.WithFields(logrus.Fields{"path": localPath, "bytes": written}).Info("model weights downloaded")
	return nil
}
