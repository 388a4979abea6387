package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	LLMProvider    string
	LLMModel       string
	GeminiAPIKey   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	LLMTimeout     time.Duration
	LLMMaxAttempts int

	MinJobDescriptionChars int
	MinResumeTextChars     int
	MaxResumeBytes         int64

	ResumeArchive string
	LocalStoreDir string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string
	MinIO         MinIOConfig

	RedisURL                string
	RateLimitAnalyzePerMin  int
	RateLimitGeneratePerMin int
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

const (
	ArchiveOff   = "off"
	ArchiveLocal = "local"
	ArchiveS3    = "s3"
	ArchiveMinIO = "minio"
)

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if err := bindEnv(v); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	geminiKey := v.GetString("llm.gemini_api_key")
	if geminiKey == "" {
		geminiKey = v.GetString("llm.google_api_key")
	}

	cfg := Config{
		Port:                    v.GetString("api.port"),
		Env:                     normalizeEnv(v.GetString("env")),
		CORSAllowOrigin:         splitAndTrim(v.GetString("api.cors_allow_origins")),
		DatabaseURL:             strings.TrimSpace(v.GetString("database.url")),
		LLMProvider:             strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
		LLMModel:                strings.TrimSpace(v.GetString("llm.model")),
		GeminiAPIKey:            geminiKey,
		OpenAIAPIKey:            v.GetString("llm.openai_api_key"),
		OpenAIBaseURL:           v.GetString("llm.openai_base_url"),
		LLMTimeout:              time.Duration(v.GetInt("llm.timeout_seconds")) * time.Second,
		LLMMaxAttempts:          v.GetInt("llm.max_attempts"),
		MinJobDescriptionChars:  v.GetInt("validation.min_job_description_chars"),
		MinResumeTextChars:      v.GetInt("validation.min_resume_text_chars"),
		MaxResumeBytes:          v.GetInt64("validation.max_resume_bytes"),
		ResumeArchive:           normalizeArchive(v.GetString("archive.kind")),
		LocalStoreDir:           v.GetString("archive.local_dir"),
		AWSRegion:               v.GetString("archive.aws_region"),
		S3Bucket:                v.GetString("archive.s3_bucket"),
		S3Prefix:                v.GetString("archive.s3_prefix"),
		SSEKMSKeyID:             v.GetString("archive.sse_kms_key_id"),
		RedisURL:                strings.TrimSpace(v.GetString("redis.url")),
		RateLimitAnalyzePerMin:  v.GetInt("ratelimit.analyze_per_min"),
		RateLimitGeneratePerMin: v.GetInt("ratelimit.generate_per_min"),
		MinIO: MinIOConfig{
			Endpoint:        v.GetString("minio.endpoint"),
			AccessKeyID:     v.GetString("minio.access_key_id"),
			SecretAccessKey: v.GetString("minio.secret_access_key"),
			UseSSL:          v.GetBool("minio.use_ssl"),
			Bucket:          v.GetString("minio.bucket"),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// IsDevLike reports whether missing infrastructure may fall back to in-memory implementations.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.cors_allow_origins", "http://localhost:5173")
	v.SetDefault("env", "dev")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.max_attempts", 2)
	v.SetDefault("validation.min_job_description_chars", 50)
	v.SetDefault("validation.min_resume_text_chars", 50)
	v.SetDefault("validation.max_resume_bytes", 5*1024*1024)
	v.SetDefault("archive.kind", ArchiveOff)
	v.SetDefault("archive.local_dir", "./data")
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("ratelimit.analyze_per_min", 10)
	v.SetDefault("ratelimit.generate_per_min", 10)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                             "PORT",
		"api.cors_allow_origins":               "CORS_ALLOW_ORIGINS",
		"env":                                  "ENV",
		"database.url":                         "DATABASE_URL",
		"llm.provider":                         "LLM_PROVIDER",
		"llm.model":                            "LLM_MODEL",
		"llm.gemini_api_key":                   "GEMINI_API_KEY",
		"llm.google_api_key":                   "GOOGLE_API_KEY",
		"llm.openai_api_key":                   "OPENAI_API_KEY",
		"llm.openai_base_url":                  "OPENAI_BASE_URL",
		"llm.timeout_seconds":                  "LLM_TIMEOUT_SECONDS",
		"llm.max_attempts":                     "LLM_MAX_ATTEMPTS",
		"validation.min_job_description_chars": "MIN_JOB_DESCRIPTION_CHARS",
		"validation.min_resume_text_chars":     "MIN_RESUME_TEXT_CHARS",
		"validation.max_resume_bytes":          "MAX_RESUME_BYTES",
		"archive.kind":                         "RESUME_ARCHIVE",
		"archive.local_dir":                    "LOCAL_STORE_DIR",
		"archive.aws_region":                   "AWS_REGION",
		"archive.s3_bucket":                    "S3_BUCKET",
		"archive.s3_prefix":                    "S3_PREFIX",
		"archive.sse_kms_key_id":               "SSE_KMS_KEY_ID",
		"minio.endpoint":                       "MINIO_ENDPOINT",
		"minio.access_key_id":                  "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":              "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                        "MINIO_USE_SSL",
		"minio.bucket":                         "MINIO_BUCKET",
		"redis.url":                            "REDIS_URL",
		"ratelimit.analyze_per_min":            "RATE_LIMIT_ANALYZE_PER_MIN",
		"ratelimit.generate_per_min":           "RATE_LIMIT_GENERATE_PER_MIN",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required in production")
	}
	switch cfg.LLMProvider {
	case "gemini", "openai", "placeholder":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if cfg.LLMTimeout <= 0 {
		return errors.New("LLM_TIMEOUT_SECONDS must be positive")
	}
	if cfg.LLMMaxAttempts < 1 {
		return errors.New("LLM_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.MinJobDescriptionChars < 1 {
		return errors.New("MIN_JOB_DESCRIPTION_CHARS must be at least 1")
	}
	if cfg.MinResumeTextChars < 1 {
		return errors.New("MIN_RESUME_TEXT_CHARS must be at least 1")
	}
	if cfg.MaxResumeBytes <= 0 {
		return errors.New("MAX_RESUME_BYTES must be positive")
	}
	switch cfg.ResumeArchive {
	case ArchiveS3:
		if cfg.S3Bucket == "" {
			return errors.New("RESUME_ARCHIVE=s3 requires S3_BUCKET")
		}
	case ArchiveMinIO:
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.Bucket == "" {
			return errors.New("RESUME_ARCHIVE=minio requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeArchive(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ArchiveLocal:
		return ArchiveLocal
	case ArchiveS3:
		return ArchiveS3
	case ArchiveMinIO:
		return ArchiveMinIO
	default:
		return ArchiveOff
	}
}
