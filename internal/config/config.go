package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string

	// MongoDB
	MongoURI string

	// Groq (LLM)
	GroqAPIKey string
	GroqModel  string

	// ElevenLabs (TTS)
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModel   string

	// Agora (RTC + Conversational AI)
	AgoraAppID          string
	AgoraAppCertificate string
	AgoraAPIKey         string
	AgoraAPISecret      string

	// HeyGen (video avatar)
	HeyGenAPIKey   string
	HeyGenAvatarID string
	HeyGenBaseURL  string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI: getEnv("MONGODB_URI", ""),

		GroqAPIKey: getEnv("GROQ_API_KEY", ""),
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"), // Rachel
		ElevenLabsModel:   getEnv("ELEVENLABS_MODEL", "eleven_turbo_v2_5"),

		AgoraAppID:          getEnv("AGORA_APP_ID", ""),
		AgoraAppCertificate: getEnv("AGORA_APP_CERTIFICATE", ""),
		AgoraAPIKey:         getEnv("AGORA_API_KEY", ""),
		AgoraAPISecret:      getEnv("AGORA_API_SECRET", ""),

		HeyGenAPIKey:   getEnv("HEYGEN_API_KEY", ""),
		HeyGenAvatarID: getEnv("HEYGEN_AVATAR_ID", ""),
		HeyGenBaseURL:  getEnv("HEYGEN_BASE_URL", "https://api.heygen.com"),
	}
}

// Validate checks that the required baseline configuration is present.
// Optional vendor keys (ElevenLabs, HeyGen, Agora certificate) are not
// required here; the corresponding features degrade gracefully instead.
func (c *Config) Validate() error {
	var missing []string

	if c.MongoURI == "" {
		missing = append(missing, "MONGODB_URI")
	}
	if c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.AgoraAppID == "" {
		missing = append(missing, "AGORA_APP_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s (check your .env file)", strings.Join(missing, ", "))
	}
	return nil
}

// TTSEnabled reports whether ElevenLabs is configured.
func (c *Config) TTSEnabled() bool {
	return c.ElevenLabsAPIKey != "" && c.ElevenLabsAPIKey != "your-elevenlabs-api-key"
}

// HeyGenEnabled reports whether HeyGen is configured.
func (c *Config) HeyGenEnabled() bool {
	return c.HeyGenAPIKey != "" && c.HeyGenAPIKey != "your-heygen-api-key"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
