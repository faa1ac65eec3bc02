package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// GraderBackend selects which cogency-grading backend a run uses.
type GraderBackend string

const (
	GraderOpenAI GraderBackend = "openai"
	GraderGemini GraderBackend = "gemini"
)

// RenderQuality selects the ffmpeg encoder preset used by the render stage.
type RenderQuality string

const (
	QualityHigh   RenderQuality = "high"
	QualityMedium RenderQuality = "medium"
	QualityFast   RenderQuality = "fast"
)

// Config holds every setting a clipper run needs. Fields are grouped by
// the pipeline stage that consumes them.
type Config struct {
	// Server (clipper serve)
	ServerPort         string
	CorsAllowedOrigins string

	// Persistence
	DatabaseURL string
	RedisURL    string

	// ASR / transcription
	OpenAIKey  string
	ASRBaseURL string // override for a self-hosted Whisper-compatible endpoint

	// Cogency grading
	Grader       GraderBackend
	GeminiAPIKey string
	GraderModel  string

	// Window generation
	WindowDurationS  float64
	WindowStrideS    float64
	SceneSnapThresholdS float64
	MinWindowRatio   float64

	// Scene detection
	SceneThreshold float64 // ffmpeg scene-score cut threshold, 0..1

	// Ranking
	TopK int

	// Render
	Quality    RenderQuality
	OutputDir  string
	TempDir    string

	// Concurrency caps
	ScoreConcurrency  int
	RenderConcurrency int

	// External storage (optional upload of finished clips)
	GCSBucket           string
	GCSCredentialsFile  string
}

// Load reads a .env file (if present) and environment variables into a
// Config, applying defaults and validating the fields a run cannot
// proceed without.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("CLIPPER_SERVER_PORT", "8080"),
		CorsAllowedOrigins: getEnv("CLIPPER_CORS_ALLOWED_ORIGINS", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		ASRBaseURL: getEnv("CLIPPER_ASR_BASE_URL", ""),

		Grader:       GraderBackend(getEnv("CLIPPER_GRADER", string(GraderOpenAI))),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GraderModel:  getEnv("CLIPPER_GRADER_MODEL", "gpt-4o-mini"),

		WindowDurationS:     getEnvFloat("CLIPPER_WINDOW_DURATION_S", 90.0),
		WindowStrideS:       getEnvFloat("CLIPPER_WINDOW_STRIDE_S", 15.0),
		SceneSnapThresholdS: getEnvFloat("CLIPPER_SCENE_SNAP_THRESHOLD_S", 5.0),
		MinWindowRatio:      getEnvFloat("CLIPPER_MIN_WINDOW_RATIO", 0.8),

		SceneThreshold: getEnvFloat("CLIPPER_SCENE_THRESHOLD", 0.3),

		TopK: getEnvInt("CLIPPER_TOP_K", 5),

		Quality:   RenderQuality(getEnv("CLIPPER_QUALITY", string(QualityMedium))),
		OutputDir: getEnv("CLIPPER_OUTPUT_DIR", "./out"),
		TempDir:   getEnv("CLIPPER_TEMP_DIR", os.TempDir()),

		ScoreConcurrency:  getEnvInt("CLIPPER_SCORE_CONCURRENCY", 4),
		RenderConcurrency: getEnvInt("CLIPPER_RENDER_CONCURRENCY", 2),

		GCSBucket:          getEnv("CLIPPER_GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("CLIPPER_GCS_CREDENTIALS_FILE", ""),
	}

	if cfg.Grader == GraderOpenAI && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when CLIPPER_GRADER=openai")
	}
	if cfg.Grader == GraderGemini && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when CLIPPER_GRADER=gemini")
	}
	if cfg.Grader != GraderOpenAI && cfg.Grader != GraderGemini {
		return nil, fmt.Errorf("CLIPPER_GRADER must be %q or %q, got %q", GraderOpenAI, GraderGemini, cfg.Grader)
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for transcription")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
