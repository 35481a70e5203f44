package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	app "derma-bot/internal/application"
	"derma-bot/internal/domain/entity"
	"derma-bot/internal/infrastructure/knowledge"
	"derma-bot/internal/infrastructure/preprocess"
	"derma-bot/internal/infrastructure/render"
)

type fixedClassifier struct {
	probs entity.ProbabilityVector
}

func (f *fixedClassifier) Classify(ctx context.Context, t *entity.ImageTensor) (entity.ProbabilityVector, error) {
	out := make(entity.ProbabilityVector, len(f.probs))
	copy(out, f.probs)
	return out, nil
}

func newTestServer(t *testing.T, peakIndex int, peak float32) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classes := entity.DefaultClassTable()
	kb, err := knowledge.NewDefault(classes)
	require.NoError(t, err)
	engine, err := app.NewDecisionEngine(classes, kb, app.DefaultDecisionPolicy())
	require.NoError(t, err)

	n := classes.Len()
	probs := make(entity.ProbabilityVector, n)
	rest := (1 - peak) / float32(n-1)
	for i := range probs {
		probs[i] = rest
	}
	probs[peakIndex] = peak

	logger, _ := test.NewNullLogger()
	svc := app.NewDiagnosisService(
		preprocess.New(entity.InputSize),
		&fixedClassifier{probs: probs},
		engine,
		kb,
		nil,
		render.NewPDFRenderer(),
		logger,
	)
	return NewServer(svc, nil, logger)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 10), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, image []byte, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if image != nil {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, 0, 0.9).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestClasses(t *testing.T) {
	router := newTestServer(t, 0, 0.9).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ClassesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, entity.DefaultClassLabels, resp.Classes)
}

func TestDiagnose(t *testing.T) {
	router := newTestServer(t, 11, 0.8).Router()

	req := multipartRequest(t, "/api/v1/diagnoses", pngBytes(t), "Eczema_photo.png", map[string]string{
		"name": "Ann",
		"age":  "34",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DiagnosisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, entity.DefaultClassLabels[11], resp.Report.Outcome.Label)
	require.Equal(t, 80.0, resp.Report.Outcome.ConfidencePercent)
	require.Equal(t, entity.SeveritySevere, resp.Report.Outcome.Severity)
	require.Equal(t, "Ann", resp.Report.Patient.Name)
	require.Equal(t, 34, resp.Report.Patient.Age)
	require.Equal(t, "Eczema", resp.Report.ReferenceLabel)
	require.False(t, resp.Report.ReferenceAgrees)
	require.Equal(t, app.ExplanationUnavailableNote, resp.Report.ExplanationNote)
	require.Empty(t, resp.OverlayPNG)
	require.NotEmpty(t, resp.Links.Specialist)
	require.Len(t, resp.Links.Medicines, len(resp.Report.Disease.Medicines))
}

func TestDiagnose_Uncertain(t *testing.T) {
	router := newTestServer(t, 3, 0.3).Router()

	req := multipartRequest(t, "/api/v1/diagnoses", pngBytes(t), "upload.png", map[string]string{"explain": "false"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DiagnosisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Report.Outcome.Uncertain())
	require.Equal(t, entity.DefaultPatientAge, resp.Report.Patient.Age)
	require.Equal(t, knowledge.FallbackRecord.Specialist, resp.Report.Disease.Specialist)
	require.Empty(t, resp.Report.ExplanationNote)
}

func TestDiagnose_BadRequests(t *testing.T) {
	router := newTestServer(t, 0, 0.9).Router()

	cases := []struct {
		name   string
		image  []byte
		fields map[string]string
		want   string
	}{
		{name: "missing image", want: "image file is required"},
		{name: "not an image", image: []byte("plain text"), want: entity.ErrInvalidImage.Error()},
		{name: "bad age", image: pngBytes(t), fields: map[string]string{"age": "old"}, want: "age must be an integer"},
		{name: "bad explain", image: pngBytes(t), fields: map[string]string{"explain": "sometimes"}, want: "explain must be a boolean"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, "/api/v1/diagnoses", tc.image, "x.png", tc.fields))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestReport_PDF(t *testing.T) {
	router := newTestServer(t, 5, 0.95).Router()

	req := multipartRequest(t, "/api/v1/reports", pngBytes(t), "x.png", map[string]string{"name": "Bob", "age": "200"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInvalidImage))
	require.Equal(t, http.StatusServiceUnavailable, statusFor(entity.ErrClassifierUnavailable))
	require.Equal(t, http.StatusInternalServerError, statusFor(entity.ErrSchemaMismatch))
}
