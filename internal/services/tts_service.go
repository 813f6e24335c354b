package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// VoiceSettings tunes ElevenLabs speech generation
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the settings used when a request does
// not override them
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		UseSpeakerBoost: true,
	}
}

// SpeechOptions selects voice, model and tuning for one conversion.
// Zero-value fields fall back to the service defaults.
type SpeechOptions struct {
	VoiceID  string
	Model    string
	Settings *VoiceSettings
}

// TTSService converts text to MP3 audio through the ElevenLabs API.
// The service is disabled when no API key is configured; conversion
// calls then fail fast without touching the network.
type TTSService struct {
	apiKey     string
	voiceID    string
	model      string
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

// NewTTSService creates a TTS service. A missing or placeholder API key
// leaves the service disabled.
func NewTTSService(apiKey, voiceID, model string) *TTSService {
	enabled := apiKey != "" && apiKey != "your-elevenlabs-api-key"
	if !enabled {
		log.Println("⚠️ ElevenLabs API key not configured, TTS disabled")
	}
	if model == "" {
		model = "eleven_turbo_v2_5"
	}
	return &TTSService{
		apiKey:     apiKey,
		voiceID:    voiceID,
		model:      model,
		baseURL:    elevenLabsBaseURL,
		enabled:    enabled,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key is configured
func (s *TTSService) Enabled() bool {
	return s.enabled
}

// Convert synthesizes speech for text and returns the complete MP3 body
func (s *TTSService) Convert(ctx context.Context, text string, opts SpeechOptions) ([]byte, error) {
	body, err := s.convert(ctx, text, opts, false)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	log.Printf("✅ Generated %d bytes of audio", len(audio))
	return audio, nil
}

// ConvertStream synthesizes speech for text and returns the response
// body as a stream. The caller must close it.
func (s *TTSService) ConvertStream(ctx context.Context, text string, opts SpeechOptions) (io.ReadCloser, error) {
	return s.convert(ctx, text, opts, true)
}

func (s *TTSService) convert(ctx context.Context, text string, opts SpeechOptions, stream bool) (io.ReadCloser, error) {
	if !s.enabled {
		return nil, fmt.Errorf("elevenlabs is not configured")
	}

	voiceID := opts.VoiceID
	if voiceID == "" {
		voiceID = s.voiceID
	}
	model := opts.Model
	if model == "" {
		model = s.model
	}
	settings := DefaultVoiceSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.baseURL, voiceID)
	if stream {
		url += "/stream"
	}

	payload, err := json.Marshal(map[string]interface{}{
		"text":           text,
		"model_id":       model,
		"voice_settings": settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		details, _ := io.ReadAll(resp.Body)
		log.Printf("❌ ElevenLabs API error: %d - %s", resp.StatusCode, string(details))
		return nil, &APIError{
			Vendor:     "ElevenLabs",
			StatusCode: resp.StatusCode,
			Details:    string(details),
		}
	}

	return resp.Body, nil
}

// Voices lists the voices available to the account. A disabled service
// returns an empty list without error.
func (s *TTSService) Voices(ctx context.Context) ([]map[string]interface{}, error) {
	if !s.enabled {
		return []map[string]interface{}{}, nil
	}

	result, err := s.getJSON(ctx, s.baseURL+"/voices")
	if err != nil {
		return nil, err
	}

	raw, _ := result["voices"].([]interface{})
	voices := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			voices = append(voices, m)
		}
	}
	return voices, nil
}

// GetVoice fetches details for one voice, defaulting to the configured
// voice when id is empty
func (s *TTSService) GetVoice(ctx context.Context, voiceID string) (map[string]interface{}, error) {
	if !s.enabled {
		return nil, fmt.Errorf("elevenlabs is not configured")
	}
	if voiceID == "" {
		voiceID = s.voiceID
	}
	return s.getJSON(ctx, fmt.Sprintf("%s/voices/%s", s.baseURL, voiceID))
}

func (s *TTSService) getJSON(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read elevenlabs response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			Vendor:     "ElevenLabs",
			StatusCode: resp.StatusCode,
			Details:    string(body),
		}
	}

	result := map[string]interface{}{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse elevenlabs response: %w", err)
	}
	return result, nil
}
