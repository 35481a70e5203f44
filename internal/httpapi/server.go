package httpapi

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "derma-bot/internal/application"
	"derma-bot/internal/domain/entity"
)

// MaxUploadBytes предел размера загружаемого снимка
const MaxUploadBytes = 10 << 20

// Server HTTP-фронтенд поверх того же конвейера, что и бот
type Server struct {
	diagnosis      *app.DiagnosisService
	allowedOrigins []string
	log            logrus.FieldLogger
}

// NewServer создаёт сервер. Пустой список источников разрешает любой CORS-origin.
func NewServer(diagnosis *app.DiagnosisService, allowedOrigins []string, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		diagnosis:      diagnosis,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

// Router настраивает маршруты gin
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = MaxUploadBytes

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.GET("/classes", s.handleClasses)
		api.POST("/diagnoses", s.handleDiagnose)
		api.POST("/reports", s.handleReport)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleClasses(c *gin.Context) {
	c.JSON(http.StatusOK, ClassesResponse{Classes: s.diagnosis.Classes()})
}

func (s *Server) handleDiagnose(c *gin.Context) {
	report, ok := s.diagnose(c)
	if !ok {
		return
	}

	resp := DiagnosisResponse{Report: report, Links: linksFor(report.Disease)}
	if report.HasOverlay() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, report.Overlay); err != nil {
			s.log.WithError(err).WithField("report_id", report.ID).Warn("encode overlay")
		} else {
			resp.OverlayPNG = base64.StdEncoding.EncodeToString(buf.Bytes())
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReport(c *gin.Context) {
	report, ok := s.diagnose(c)
	if !ok {
		return
	}

	data, contentType, err := s.diagnosis.Render(c.Request.Context(), report)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.pdf"`, report.ID))
	c.Data(http.StatusOK, contentType, data)
}

// diagnose разбирает multipart-форму и прогоняет снимок через конвейер
func (s *Server) diagnose(c *gin.Context) (*entity.Report, bool) {
	req, err := parseDiagnosisForm(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return nil, false
	}

	report, err := s.diagnosis.Diagnose(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, statusFor(err), err)
		return nil, false
	}

	return report, true
}

func parseDiagnosisForm(c *gin.Context) (app.DiagnosisRequest, error) {
	var req app.DiagnosisRequest

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, errors.New("image file is required")
		}
		return req, fmt.Errorf("invalid upload: %w", err)
	}
	if header.Size > MaxUploadBytes {
		return req, fmt.Errorf("image exceeds %d bytes", MaxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return req, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	req.Image, err = io.ReadAll(io.LimitReader(f, MaxUploadBytes))
	if err != nil {
		return req, fmt.Errorf("read upload: %w", err)
	}
	req.Filename = header.Filename
	req.Patient.Name = strings.TrimSpace(c.PostForm("name"))

	// Возраст необязателен, без него берётся значение по умолчанию
	req.Patient.Age = entity.DefaultPatientAge
	if raw := strings.TrimSpace(c.PostForm("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("age must be an integer, got %q", raw)
		}
		req.Patient.Age = age
	}

	req.Explain = true
	if raw := strings.TrimSpace(c.PostForm("explain")); raw != "" {
		explain, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("explain must be a boolean, got %q", raw)
		}
		req.Explain = explain
	}

	return req, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrClassifierUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("http request")
	}
}
