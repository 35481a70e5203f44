package modelstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestEnsure_DownloadsOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("weights"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "models", "model.onnx")
	f := NewFetcher(srv.Client(), quietLogger())

	require.NoError(t, f.Ensure(context.Background(), path, srv.URL))
	require.NoError(t, f.Ensure(context.Background(), path, srv.URL))
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "weights", string(data))
}

func TestEnsure_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "model.onnx")
	f := NewFetcher(srv.Client(), quietLogger())

	err := f.Ensure(context.Background(), path, srv.URL)
	require.ErrorContains(t, err, "unexpected status")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestEnsure_MissingWithoutURL(t *testing.T) {
	f := NewFetcher(nil, quietLogger())
	err := f.Ensure(context.Background(), filepath.Join(t.TempDir(), "model.onnx"), "")
	require.ErrorContains(t, err, "no download url")
}
