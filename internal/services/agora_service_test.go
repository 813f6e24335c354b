package services

import (
	"context"
	"encoding/json"
	"errors"
	"hash/crc32"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AgoraIO-Community/go-tokenbuilder/accesstoken"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AgoraAppID:          "test-app-id",
		AgoraAppCertificate: "0123456789abcdef0123456789abcdef",
		AgoraAPIKey:         "key",
		AgoraAPISecret:      "secret",
		GroqAPIKey:          "groq-key",
		GroqModel:           "test-model",
		ElevenLabsAPIKey:    "eleven-key",
		ElevenLabsVoiceID:   "voice",
		ElevenLabsModel:     "eleven_turbo_v2_5",
		HeyGenAPIKey:        "heygen-key",
		HeyGenAvatarID:      "avatar",
	}
}

func TestGenerateRTCTokenTestingMode(t *testing.T) {
	cfg := testConfig()
	cfg.AgoraAppCertificate = ""
	svc := NewAgoraService(cfg)

	token, testingMode, err := svc.GenerateRTCToken("test-channel", 12345, RolePublisher, 3600)
	if err != nil {
		t.Fatalf("Testing mode must not error: %v", err)
	}
	if !testingMode {
		t.Error("Expected testing mode with empty certificate")
	}
	if token != "" {
		t.Errorf("Expected empty token in testing mode, got %q", token)
	}
}

func TestGenerateRTCTokenPlaceholderCertificate(t *testing.T) {
	cfg := testConfig()
	cfg.AgoraAppCertificate = "your-app-certificate"
	svc := NewAgoraService(cfg)

	_, testingMode, err := svc.GenerateRTCToken("test-channel", 0, RoleSubscriber, 3600)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !testingMode {
		t.Error("Placeholder certificate must behave like an absent one")
	}
}

func TestGenerateRTCToken(t *testing.T) {
	svc := NewAgoraService(testConfig())

	token, testingMode, err := svc.GenerateRTCToken("test-channel", 12345, RolePublisher, 3600)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if testingMode {
		t.Error("Did not expect testing mode with a certificate")
	}
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	var decoded accesstoken.AccessToken
	if !decoded.FromString(token) {
		t.Fatal("Generated token does not decode")
	}

	// Privilege expiries are absolute unix timestamps
	now := uint32(time.Now().Unix())
	joinExpiry := decoded.Message[accesstoken.KJoinChannel]
	if joinExpiry <= now {
		t.Errorf("Join privilege expired at %d, before now (%d)", joinExpiry, now)
	}
	if joinExpiry > now+3600+10 {
		t.Errorf("Join privilege expires at %d, beyond the requested hour", joinExpiry)
	}

	if _, ok := decoded.Message[accesstoken.KPublishAudioStream]; !ok {
		t.Error("Publisher token must carry publish privileges")
	}
}

func TestGenerateRTCTokenSubscriberRole(t *testing.T) {
	svc := NewAgoraService(testConfig())

	token, _, err := svc.GenerateRTCToken("test-channel", 12345, RoleSubscriber, 600)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded accesstoken.AccessToken
	if !decoded.FromString(token) {
		t.Fatal("Generated token does not decode")
	}
	if _, ok := decoded.Message[accesstoken.KJoinChannel]; !ok {
		t.Error("Subscriber token must carry the join privilege")
	}
	if _, ok := decoded.Message[accesstoken.KPublishAudioStream]; ok {
		t.Error("Subscriber token must not carry publish privileges")
	}
}

func TestStartConversationalAI(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/conversational-ai-agent/v2/projects/test-app-id/join") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			t.Error("Expected basic auth header")
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"agent_uid": "agent-42"}`))
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	result, err := svc.StartConversationalAI(context.Background(), "my-channel", "", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result["agent_uid"] != "agent-42" {
		t.Errorf("Expected vendor agent uid, got %v", result["agent_uid"])
	}

	if gotPayload["channel_name"] != "my-channel" {
		t.Errorf("Unexpected channel in payload: %v", gotPayload["channel_name"])
	}
	greeting, _ := gotPayload["greeting"].(string)
	if !strings.Contains(greeting, "Luna") {
		t.Errorf("Expected default greeting, got %q", greeting)
	}
	if gotPayload["llm"] == nil {
		t.Error("Expected llm block in join payload")
	}
	tts, _ := gotPayload["tts"].(map[string]interface{})
	params, _ := tts["params"].(map[string]interface{})
	if params["output_format"] != "pcm_24000" {
		t.Errorf("Expected pcm_24000 output format, got %v", params["output_format"])
	}
	avatar, _ := gotPayload["avatar"].(map[string]interface{})
	if avatar == nil {
		t.Fatal("Expected avatar block when avatar is enabled")
	}
	avatarParams, _ := avatar["params"].(map[string]interface{})
	avatarUID, _ := avatarParams["agora_uid"].(string)
	avatarToken, _ := avatarParams["agora_token"].(string)
	if avatarUID == "" || avatarToken == "" {
		t.Fatalf("Expected avatar uid and token, got uid=%q token=%q", avatarUID, avatarToken)
	}

	// The avatar token must be signed for the uid the avatar joins with
	var decoded accesstoken.AccessToken
	if !decoded.FromString(avatarToken) {
		t.Fatal("Avatar token does not decode")
	}
	if decoded.CrcUid != crc32.ChecksumIEEE([]byte(avatarUID)) {
		t.Errorf("Avatar token signed for a different uid than agora_uid %s", avatarUID)
	}
}

func TestStartConversationalAIWithoutAvatar(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	result, err := svc.StartConversationalAI(context.Background(), "my-channel", "Hi there", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotPayload["avatar"] != nil {
		t.Error("Did not expect avatar block")
	}
	if gotPayload["greeting"] != "Hi there" {
		t.Errorf("Custom greeting was not forwarded: %v", gotPayload["greeting"])
	}
	// Response without an agent uid falls back to the locally chosen one
	if result["agent_uid"] == nil || result["agent_uid"] == "" {
		t.Error("Expected a fallback agent uid")
	}
}

func TestAgoraVendorErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"reason": "not allowed"}`))
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	_, err := svc.StartConversationalAI(context.Background(), "my-channel", "", false)
	if err == nil {
		t.Fatal("Expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.Vendor != "Agora" || apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("Unexpected error detail: %+v", apiErr)
	}
}

func TestStartCloudRecording(t *testing.T) {
	var startPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cloud_recording/acquire"):
			w.Write([]byte(`{"resourceId": "res-1"}`))
		case strings.HasSuffix(r.URL.Path, "/cloud_recording/resourceid/res-1/mode/mix/start"):
			json.NewDecoder(r.Body).Decode(&startPayload)
			w.Write([]byte(`{"resourceId": "res-1", "sid": "sid-1"}`))
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	result, err := svc.StartCloudRecording(context.Background(), "my-channel", "999", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result["sid"] != "sid-1" {
		t.Errorf("Unexpected result: %+v", result)
	}
	if startPayload["cname"] != "my-channel" || startPayload["uid"] != "999" {
		t.Errorf("Unexpected start payload: %+v", startPayload)
	}
}

func TestStartCloudRecordingWithoutResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/cloud_recording/acquire") {
			t.Errorf("Recording must not start without a resource id: %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	_, err := svc.StartCloudRecording(context.Background(), "my-channel", "999", nil)
	if err == nil || !strings.Contains(err.Error(), "resource id") {
		t.Errorf("Expected missing resource id error, got %v", err)
	}
}

func TestStopConversationalAI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/agents/agent-42/interrupt") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := NewAgoraService(testConfig())
	svc.baseURL = server.URL

	result, err := svc.StopConversationalAI(context.Background(), "agent-42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result["status"] != "stopped" || result["agent_uid"] != "agent-42" {
		t.Errorf("Unexpected result: %+v", result)
	}
}
