package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "ESG_ADVISOR_"

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string
	Timezone    string

	LLMProvider   string // openai | anthropic
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	GenerationTimeoutSec int
	LLMMaxTokens         int
	LLMTemperature       float64
}

// LoadDotEnv reads KEY=VALUE pairs from the given files into the process environment.
// Variables already set are left alone and missing files are skipped. Files that exist
// but fail to parse are reported; the remaining files are still loaded.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var errs []error
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func FromEnv() Config {
	dataDir := stringOrDefault(envPrefix+"DATA_DIR", "/data")
	dbPath := stringOrDefault(envPrefix+"DB_PATH", filepath.Join(dataDir, "esg-advisor", "summaries.sqlite"))

	return Config{
		Environment: stringOrDefault(envPrefix+"ENV", "development"),
		HTTPAddr:    stringOrDefault(envPrefix+"HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,
		Timezone:    stringOrDefault(envPrefix+"TIMEZONE", "Asia/Taipei"),

		LLMProvider:   providerOrDefault(envPrefix+"LLM_PROVIDER", "openai"),
		LLMBaseURL:    strings.TrimSpace(os.Getenv(envPrefix + "LLM_BASE_URL")),
		LLMAPIKey:     strings.TrimSpace(os.Getenv(envPrefix + "LLM_API_KEY")),
		LLMModel:      strings.TrimSpace(os.Getenv(envPrefix + "LLM_MODEL")),
		LLMTimeoutSec: intOrDefault(envPrefix+"LLM_TIMEOUT_SECONDS", 45),

		GenerationTimeoutSec: intOrDefault(envPrefix+"GENERATION_TIMEOUT_SECONDS", 30),
		LLMMaxTokens:         intOrDefault(envPrefix+"LLM_MAX_TOKENS", 300),
		LLMTemperature:       floatOrDefault(envPrefix+"LLM_TEMPERATURE", 0.55),
	}
}

func (c Config) GenerationTimeout() time.Duration {
	return time.Duration(c.GenerationTimeoutSec) * time.Second
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// Location resolves Timezone, falling back to a fixed UTC+8 zone when the tz database
// does not know the name.
func (c Config) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return location
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func providerOrDefault(name, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "openai", "anthropic":
		return value
	default:
		return fallback
	}
}

func floatOrDefault(name string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
