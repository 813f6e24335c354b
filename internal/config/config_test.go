package config

import "testing"

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/luna")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("AGORA_APP_ID", "app-id")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	if cfg.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Port)
	}
	if cfg.GroqModel != "llama-3.3-70b-versatile" {
		t.Errorf("Unexpected default model: %s", cfg.GroqModel)
	}
	if cfg.ElevenLabsModel != "eleven_turbo_v2_5" {
		t.Errorf("Unexpected default TTS model: %s", cfg.ElevenLabsModel)
	}
	if cfg.HeyGenBaseURL != "https://api.heygen.com" {
		t.Errorf("Unexpected default HeyGen base URL: %s", cfg.HeyGenBaseURL)
	}
}

func TestValidate(t *testing.T) {
	setRequired(t)
	if err := Load().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	t.Setenv("GROQ_API_KEY", "")
	if err := Load().Validate(); err == nil {
		t.Error("Expected error for missing GROQ_API_KEY")
	}
}

func TestFeatureToggles(t *testing.T) {
	setRequired(t)

	cfg := Load()
	if cfg.TTSEnabled() {
		t.Error("TTS must be disabled without a key")
	}
	if cfg.HeyGenEnabled() {
		t.Error("HeyGen must be disabled without a key")
	}

	t.Setenv("ELEVENLABS_API_KEY", "your-elevenlabs-api-key")
	t.Setenv("HEYGEN_API_KEY", "your-heygen-api-key")
	cfg = Load()
	if cfg.TTSEnabled() || cfg.HeyGenEnabled() {
		t.Error("Placeholder keys must count as unconfigured")
	}

	t.Setenv("ELEVENLABS_API_KEY", "real-key")
	t.Setenv("HEYGEN_API_KEY", "real-key")
	cfg = Load()
	if !cfg.TTSEnabled() || !cfg.HeyGenEnabled() {
		t.Error("Real keys must enable the features")
	}
}
