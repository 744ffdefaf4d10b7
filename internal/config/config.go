package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Vitals     VitalsConfig
	Resilience ResilienceConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	// SeedDemo loads the demo patient on startup when running on the in-memory store.
	SeedDemo bool
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Groq         string
	HuggingFace  string
}

type AIConfig struct {
	PrimaryProvider   string // "gemini", "groq", "huggingface", "ollama" or "none"
	PrimaryModel      string
	SecondaryProvider string
	SecondaryModel    string
	OllamaBaseURL     string
	// RequireRemote makes startup fail when neither provider has credentials.
	RequireRemote bool
}

type VitalsConfig struct {
	FPS                int
	WindowSeconds      int
	EveryNFrames       int
	CalibrationSeconds float64
	CascadePath        string
	LiveTTL            time.Duration
}

type ResilienceConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	PrimaryTimeout   time.Duration
	SecondaryTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SeedDemo:           getEnvAsBool("SEED_DEMO_DATA", true),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			PrimaryProvider:   getEnv("LLM_PRIMARY_PROVIDER", "gemini"),
			PrimaryModel:      getEnv("LLM_PRIMARY_MODEL", ""),
			SecondaryProvider: getEnv("LLM_SECONDARY_PROVIDER", "groq"),
			SecondaryModel:    getEnv("LLM_SECONDARY_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RequireRemote:     getEnvAsBool("LLM_REQUIRE_REMOTE", false),
		},
		Vitals: VitalsConfig{
			FPS:                getEnvAsInt("VITALS_FPS", 30),
			WindowSeconds:      getEnvAsInt("VITALS_WINDOW_SECONDS", 15),
			EveryNFrames:       getEnvAsInt("VITALS_EVERY_N_FRAMES", 15),
			CalibrationSeconds: getEnvAsFloat("VITALS_CALIBRATION_SECONDS", 8),
			CascadePath:        getEnv("FACE_CASCADE_PATH", "data/facefinder"),
			LiveTTL:            getEnvAsDuration("VITALS_LIVE_TTL", 30*time.Second),
		},
		Resilience: ResilienceConfig{
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 3),
			ResetTimeout:     getEnvAsDuration("BREAKER_RESET_TIMEOUT", 30*time.Second),
			PrimaryTimeout:   getEnvAsDuration("LLM_PRIMARY_TIMEOUT", 5*time.Second),
			SecondaryTimeout: getEnvAsDuration("LLM_SECONDARY_TIMEOUT", 8*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("5s") or plain seconds ("5").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.ParseFloat(strValue, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
