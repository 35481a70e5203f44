package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string
	HTTPAddr      string // "-" отключает HTTP API
	CORSOrigins   []string
	LogLevel      string

	// Модель
	ClassifierBackend string // onnx | gocv
	ModelPath         string
	MetadataPath      string
	ModelURL          string
	ONNXRuntimeLib    string

	// Политика решений
	UncertaintyThreshold float64
	ModerateThreshold    float64
	SeverityBeforeGate   bool

	// Объяснение
	Explain      bool
	OverlayAlpha float64

	// Redis для состояния диалога, если пусто, то память процесса
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
}

// Load загружает конфигурацию из переменных окружения с дефолтными значениями
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		HTTPAddr:          getEnvString("HTTP_ADDR", ":8080"),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		ClassifierBackend: strings.ToLower(getEnvString("CLASSIFIER_BACKEND", "onnx")),
		ModelPath:         getEnvString("MODEL_PATH", "models/model.onnx"),
		MetadataPath:      getEnvString("MODEL_METADATA_PATH", "models/model_metadata.json"),
		ModelURL:          os.Getenv("MODEL_URL"),
		ONNXRuntimeLib:    os.Getenv("ONNXRUNTIME_LIB"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:       getEnvList("CORS_ORIGINS"),
	}

	var err error
	cfg.UncertaintyThreshold, err = getEnvFloat("UNCERTAINTY_THRESHOLD", 50)
	collect(err)
	cfg.ModerateThreshold, err = getEnvFloat("MODERATE_THRESHOLD", 75)
	collect(err)
	cfg.SeverityBeforeGate, err = getEnvBool("SEVERITY_BEFORE_GATE", true)
	collect(err)
	cfg.Explain, err = getEnvBool("EXPLAIN", true)
	collect(err)
	cfg.OverlayAlpha, err = getEnvFloat("OVERLAY_ALPHA", 0.4)
	collect(err)
	cfg.RedisDB, err = getEnvInt("REDIS_DB", 0)
	collect(err)
	ttlHours, err := getEnvInt("SESSION_TTL_HOURS", 24)
	collect(err)
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	if c.UncertaintyThreshold < 0 || c.UncertaintyThreshold > 100 {
		return fmt.Errorf("UNCERTAINTY_THRESHOLD must be within [0,100], got %.2f", c.UncertaintyThreshold)
	}
	if c.ModerateThreshold < 0 || c.ModerateThreshold > 100 {
		return fmt.Errorf("MODERATE_THRESHOLD must be within [0,100], got %.2f", c.ModerateThreshold)
	}
	if c.OverlayAlpha <= 0 || c.OverlayAlpha > 1 {
		return fmt.Errorf("OVERLAY_ALPHA must be within (0,1], got %.2f", c.OverlayAlpha)
	}
	if c.ClassifierBackend != "onnx" && c.ClassifierBackend != "gocv" {
		return fmt.Errorf("CLASSIFIER_BACKEND must be onnx or gocv, got %q", c.ClassifierBackend)
	}
	return nil
}

// HTTPEnabled сообщает, нужно ли поднимать HTTP API
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && c.HTTPAddr != "-"
}

func getEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList разбирает список через запятую, пустые элементы отбрасываются
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return f, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}
