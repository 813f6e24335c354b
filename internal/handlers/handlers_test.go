package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/config"
	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/services"
)

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestChatRequiresMessage(t *testing.T) {
	app := fiber.New()
	handler := NewChatHandler(services.NewAgentService("test-key", "test-model", nil))
	app.Post("/api/chat", handler.Chat)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/chat", map[string]string{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["error"] != "Message is required" {
		t.Errorf("Unexpected error body: %+v", body)
	}
}

func TestTokenTestingMode(t *testing.T) {
	cfg := &config.Config{AgoraAppID: "test-app-id"}
	agora := services.NewAgoraService(cfg)
	sessions := services.NewSessionManager(agora, services.NewHeyGenService("", "", ""))

	app := fiber.New()
	handler := NewAgoraHandler(agora, sessions)
	app.Post("/api/agora/token", handler.Token)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/agora/token", map[string]interface{}{
		"channel_name": "test-channel",
		"uid":          42,
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["testing_mode"] != true {
		t.Errorf("Expected testing_mode true, got %v", body["testing_mode"])
	}
	if token, ok := body["token"]; !ok || token != nil {
		t.Errorf("Expected explicit null token, got %v", body["token"])
	}
	if body["app_id"] != "test-app-id" || body["channel_name"] != "test-channel" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestTokenRequiresChannelName(t *testing.T) {
	cfg := &config.Config{AgoraAppID: "test-app-id"}
	agora := services.NewAgoraService(cfg)
	sessions := services.NewSessionManager(agora, services.NewHeyGenService("", "", ""))

	app := fiber.New()
	handler := NewAgoraHandler(agora, sessions)
	app.Post("/api/agora/token", handler.Token)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/agora/token", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestStopConversationalAIUnknownChannel(t *testing.T) {
	cfg := &config.Config{AgoraAppID: "test-app-id"}
	agora := services.NewAgoraService(cfg)
	sessions := services.NewSessionManager(agora, services.NewHeyGenService("", "", ""))

	app := fiber.New()
	handler := NewAgoraHandler(agora, sessions)
	app.Post("/api/agora/conversational-ai/stop", handler.StopConversationalAI)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/agora/conversational-ai/stop", map[string]interface{}{
		"channel_name": "ghost-channel",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["error"] != "No active session found" {
		t.Errorf("Unexpected error body: %+v", body)
	}
}

func TestHeyGenSpeakUnknownSession(t *testing.T) {
	heygen := services.NewHeyGenService("key", "", "https://api.heygen.com/v2")
	sessions := services.NewSessionManager(services.NewAgoraService(&config.Config{}), heygen)

	app := fiber.New()
	handler := NewHeyGenHandler(heygen, sessions)
	app.Post("/api/heygen/streaming/speak", handler.Speak)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/heygen/streaming/speak", map[string]interface{}{
		"session_id": "ghost-session",
		"text":       "hello",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["error"] != "Session not found" {
		t.Errorf("Unexpected error body: %+v", body)
	}
}

func TestHeyGenSpeakRequiresFields(t *testing.T) {
	heygen := services.NewHeyGenService("key", "", "https://api.heygen.com/v2")
	sessions := services.NewSessionManager(services.NewAgoraService(&config.Config{}), heygen)

	app := fiber.New()
	handler := NewHeyGenHandler(heygen, sessions)
	app.Post("/api/heygen/streaming/speak", handler.Speak)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/heygen/streaming/speak", map[string]interface{}{
		"session_id": "s1",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateVideoRequiresScript(t *testing.T) {
	heygen := services.NewHeyGenService("key", "", "https://api.heygen.com/v2")
	sessions := services.NewSessionManager(services.NewAgoraService(&config.Config{}), heygen)

	app := fiber.New()
	handler := NewHeyGenHandler(heygen, sessions)
	app.Post("/api/heygen/video/create", handler.CreateVideo)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/heygen/video/create", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestTTSNotConfigured(t *testing.T) {
	app := fiber.New()
	handler := NewTTSHandler(services.NewTTSService("", "", ""))
	app.Post("/api/tts", handler.Synthesize)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/tts", map[string]interface{}{
		"text": "Hello!",
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["hint"] == nil {
		t.Error("Expected a configuration hint")
	}
}

func TestTTSRequiresText(t *testing.T) {
	app := fiber.New()
	handler := NewTTSHandler(services.NewTTSService("real-key", "voice", ""))
	app.Post("/api/tts", handler.Synthesize)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/tts", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}
