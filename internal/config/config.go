package config

import (
	"os"
	"strconv"
)

// EnvironmentProduction enables production-only behavior such as CloudWatch
const EnvironmentProduction = "production"

// History backends
const (
	HistorySQLite   = "sqlite"
	HistoryPostgres = "postgres"
	HistoryFile     = "file"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Output
	OutputDir string

	// History
	HistoryBackend string // "sqlite", "postgres" or "file"
	DatabaseURL    string // DSN for postgres, file path for sqlite
	HistoryFile    string
	HistoryLimit   int

	// Request limits
	MaxLengthSeconds int
	MaxTempo         int

	// Rendering
	SoundFontPath  string
	FluidSynthPath string
	SampleRate     int

	// Melody generation
	MelodyScript      string
	PythonPath        string
	BundleDir         string
	MelodySeedNote    string
	PresetsFile       string // optional YAML presets merged over the embedded ones
	OpenAIAPIKey      string
	OpenAIMelodyModel string
	GeminiAPIKey      string
	GeminiMelodyModel string

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool
	CloudWatchEnabled bool

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OutputDir:         getEnv("OUTPUT_DIR", "generated_music_files"),
		HistoryBackend:    getEnv("HISTORY_BACKEND", HistorySQLite),
		DatabaseURL:       getEnv("DATABASE_URL", "history.db"),
		HistoryFile:       getEnv("HISTORY_FILE", "history.json"),
		HistoryLimit:      getEnvInt("HISTORY_LIMIT", 50),
		MaxLengthSeconds:  getEnvInt("MAX_LENGTH_SECONDS", 600),
		MaxTempo:          getEnvInt("MAX_TEMPO", 300),
		SoundFontPath:     getEnv("SOUNDFONT_PATH", "soundfonts/FluidR3_GM.sf2"),
		FluidSynthPath:    getEnv("FLUIDSYNTH_PATH", "fluidsynth"),
		SampleRate:        getEnvInt("SAMPLE_RATE", 44100),
		MelodyScript:      getEnv("MELODY_SCRIPT", "scripts/generate_melody.py"),
		PythonPath:        getEnv("PYTHON_PATH", "python3"),
		BundleDir:         getEnv("BUNDLE_DIR", "bundles"),
		MelodySeedNote:    getEnv("MELODY_SEED_NOTE", "C4"),
		PresetsFile:       getEnv("PRESETS_FILE", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIMelodyModel: getEnv("OPENAI_MELODY_MODEL", "gpt-5-mini"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiMelodyModel: getEnv("GEMINI_MELODY_MODEL", "gemini-2.5-flash"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
		CloudWatchEnabled: getEnv("CLOUDWATCH_ENABLED", "false") == "true",
		AuthMode:          getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
