package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Parser   ParserConfig
	Upload   UploadConfig
	Suggest  SuggestConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// ParserConfig configures the remote statement-parse endpoint.
type ParserConfig struct {
	BaseURL           string
	APIKey            string
	PreferredProvider string
	RequestTimeout    time.Duration
}

// UploadConfig bounds the upload orchestrator.
type UploadConfig struct {
	MaxFileSizeBytes int64
	MaxAttempts      int
	BackoffBase      time.Duration
	BackoffCap       time.Duration
	PDFRetryDelay    time.Duration
}

// SuggestConfig controls the optional GigaChat assist for low-confidence
// category suggestions. Disabled unless the flag is set and an API key is
// configured.
type SuggestConfig struct {
	LLMEnabled         bool
	GigaChatAPIKey     string
	GigaChatScope      string
	InsecureSkipVerify bool
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables are used directly
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	parseTimeout, _ := strconv.Atoi(getEnv("PARSER_REQUEST_TIMEOUT", "90"))
	maxFileSize, _ := strconv.ParseInt(getEnv("UPLOAD_MAX_FILE_SIZE", "10485760"), 10, 64)
	maxAttempts, _ := strconv.Atoi(getEnv("UPLOAD_MAX_ATTEMPTS", "3"))
	backoffBase, _ := strconv.Atoi(getEnv("UPLOAD_BACKOFF_BASE_MS", "500"))
	backoffCap, _ := strconv.Atoi(getEnv("UPLOAD_BACKOFF_CAP_MS", "2000"))
	pdfRetryDelay, _ := strconv.Atoi(getEnv("UPLOAD_PDF_RETRY_DELAY_MS", "1500"))
	llmEnabled := getEnv("SUGGEST_LLM_ENABLED", "false") == "true"
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finbook"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Parser: ParserConfig{
			BaseURL:           getEnv("PARSER_BASE_URL", "http://localhost:9090"),
			APIKey:            getEnv("PARSER_API_KEY", ""),
			PreferredProvider: getEnv("PARSER_PREFERRED_PROVIDER", ""),
			RequestTimeout:    time.Duration(parseTimeout) * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSizeBytes: maxFileSize,
			MaxAttempts:      maxAttempts,
			BackoffBase:      time.Duration(backoffBase) * time.Millisecond,
			BackoffCap:       time.Duration(backoffCap) * time.Millisecond,
			PDFRetryDelay:    time.Duration(pdfRetryDelay) * time.Millisecond,
		},
		Suggest: SuggestConfig{
			LLMEnabled:         llmEnabled,
			GigaChatAPIKey:     getEnv("GIGACHAT_API_KEY", ""),
			GigaChatScope:      getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
