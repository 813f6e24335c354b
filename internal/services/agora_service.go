package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	rtctokenbuilder "github.com/AgoraIO-Community/go-tokenbuilder/rtctokenbuilder"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/config"
)

const agoraBaseURL = "https://api.agora.io"

// Role values accepted by the token endpoint
const (
	RolePublisher  = 1
	RoleSubscriber = 2
)

// AgoraService issues RTC tokens and drives the Conversational AI Engine.
// All calls are synchronous request/response with no retries.
type AgoraService struct {
	appID          string
	appCertificate string
	apiKey         string
	apiSecret      string
	baseURL        string
	httpClient     *http.Client

	cfg *config.Config
}

// NewAgoraService creates an Agora service from configuration
func NewAgoraService(cfg *config.Config) *AgoraService {
	return &AgoraService{
		appID:          cfg.AgoraAppID,
		appCertificate: cfg.AgoraAppCertificate,
		apiKey:         cfg.AgoraAPIKey,
		apiSecret:      cfg.AgoraAPISecret,
		baseURL:        agoraBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		cfg:            cfg,
	}
}

// AppID returns the configured Agora app id
func (s *AgoraService) AppID() string {
	return s.appID
}

// GenerateRTCToken builds a signed RTC token for joining a channel.
// When no app certificate is configured the project runs in testing
// mode: an empty token is returned with testingMode=true and no error,
// and callers must treat the absent token as valid.
func (s *AgoraService) GenerateRTCToken(channelName string, uid uint32, role int, expireSeconds uint32) (string, bool, error) {
	if s.appCertificate == "" || s.appCertificate == "your-app-certificate" {
		log.Println("⚠️ No Agora App Certificate configured, running in testing mode (no token required)")
		return "", true, nil
	}

	tokenRole := rtctokenbuilder.Role(rtctokenbuilder.RoleSubscriber)
	if role == RolePublisher {
		tokenRole = rtctokenbuilder.Role(rtctokenbuilder.RolePublisher)
	}

	// The builder wants an absolute unix timestamp for privilege expiry
	expireTs := uint32(time.Now().Unix()) + expireSeconds
	token, err := rtctokenbuilder.BuildTokenWithUID(s.appID, s.appCertificate, channelName, uid, tokenRole, expireTs)
	if err != nil {
		return "", false, fmt.Errorf("failed to build RTC token for channel %s: %w", channelName, err)
	}

	log.Printf("✅ Generated Agora token for channel: %s", channelName)
	return token, false, nil
}

// StartConversationalAI joins a Conversational AI agent to a channel,
// wiring the Groq LLM, ElevenLabs TTS (24kHz PCM for avatar lip sync)
// and, optionally, a HeyGen avatar publisher. Returns the decoded
// vendor response, which includes the agent uid.
func (s *AgoraService) StartConversationalAI(ctx context.Context, channelName, greeting string, enableAvatar bool) (map[string]interface{}, error) {
	now := time.Now().Unix()
	agentUID := strconv.FormatInt(now, 10)
	avatarUIDNum := now + 1
	avatarUID := strconv.FormatInt(avatarUIDNum, 10)

	if greeting == "" {
		greeting = "Hello! I'm Luna, your AI productivity assistant. How can I help you today?"
	}

	payload := map[string]interface{}{
		"channel_name": channelName,
		"uid":          agentUID,
		"greeting":     greeting,
	}

	if s.cfg.GroqAPIKey != "" {
		payload["llm"] = map[string]interface{}{
			"vendor": "groq",
			"params": map[string]interface{}{
				"api_key":     s.cfg.GroqAPIKey,
				"model":       s.cfg.GroqModel,
				"max_tokens":  1000,
				"temperature": 0.7,
			},
		}
	}

	if s.cfg.TTSEnabled() {
		payload["tts"] = map[string]interface{}{
			"vendor": "elevenlabs",
			"params": map[string]interface{}{
				"api_key":       s.cfg.ElevenLabsAPIKey,
				"voice_id":      s.cfg.ElevenLabsVoiceID,
				"model":         s.cfg.ElevenLabsModel,
				"output_format": "pcm_24000",
			},
		}
	}

	if enableAvatar && s.cfg.HeyGenEnabled() {
		// The token must be signed for the same uid the avatar joins with
		avatarToken, _, err := s.GenerateRTCToken(channelName, uint32(avatarUIDNum), RolePublisher, 3600)
		if err != nil {
			return nil, fmt.Errorf("failed to generate avatar token: %w", err)
		}

		avatar := map[string]interface{}{
			"api_key":               s.cfg.HeyGenAPIKey,
			"quality":               "low",
			"agora_uid":             avatarUID,
			"agora_token":           avatarToken,
			"activity_idle_timeout": 600,
			"disable_idle_timeout":  false,
		}
		if s.cfg.HeyGenAvatarID != "" && s.cfg.HeyGenAvatarID != "your-avatar-id" {
			avatar["avatar_id"] = s.cfg.HeyGenAvatarID
		}
		payload["avatar"] = map[string]interface{}{
			"vendor": "heygen",
			"enable": true,
			"params": avatar,
		}
	}

	log.Printf("🚀 Starting Agora Conversational AI agent (channel: %s, uid: %s, avatar: %t)", channelName, agentUID, enableAvatar)

	url := fmt.Sprintf("%s/api/conversational-ai-agent/v2/projects/%s/join", s.baseURL, s.appID)
	result, err := s.postJSON(ctx, url, payload)
	if err != nil {
		return nil, err
	}

	// The v2 join response reports the uid it assigned; fall back to ours
	if _, ok := result["agent_uid"]; !ok {
		result["agent_uid"] = agentUID
	}

	log.Println("✅ Agora Conversational AI agent started successfully")
	return result, nil
}

// StopConversationalAI interrupts and stops an agent
func (s *AgoraService) StopConversationalAI(ctx context.Context, agentUID string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/conversational-ai-agent/v2/projects/%s/agents/%s/interrupt", s.baseURL, s.appID, agentUID)
	if _, err := s.postJSON(ctx, url, map[string]interface{}{}); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "stopped", "agent_uid": agentUID}, nil
}

// AgentSpeak makes the agent speak text through its TTS pipeline
func (s *AgoraService) AgentSpeak(ctx context.Context, agentUID, text string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/conversational-ai-agent/v2/projects/%s/agents/%s/speak", s.baseURL, s.appID, agentUID)
	return s.postJSON(ctx, url, map[string]interface{}{"text": text})
}

// SendMessageToAgent relays a text message to the agent
func (s *AgoraService) SendMessageToAgent(ctx context.Context, agentUID, message string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/v1/projects/%s/rtc/conversational-ai/agents/%s/messages", s.baseURL, s.appID, agentUID)
	return s.postJSON(ctx, url, map[string]interface{}{
		"message":  message,
		"metadata": map[string]interface{}{},
	})
}

// GetChannelUsers lists the users currently in a channel
func (s *AgoraService) GetChannelUsers(ctx context.Context, channelName string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/dev/v1/channel/user/%s/%s", s.baseURL, s.appID, channelName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	return s.doJSON(req)
}

// StartCloudRecording acquires a cloud recording resource for a channel
// and starts a mixed-stream recording with it. recordingConfig is passed
// through as the start clientRequest; nil means vendor defaults.
func (s *AgoraService) StartCloudRecording(ctx context.Context, channelName, uid string, recordingConfig map[string]interface{}) (map[string]interface{}, error) {
	acquireURL := fmt.Sprintf("%s/v1/apps/%s/cloud_recording/acquire", s.baseURL, s.appID)
	resource, err := s.postJSON(ctx, acquireURL, map[string]interface{}{
		"cname": channelName,
		"uid":   uid,
		"clientRequest": map[string]interface{}{
			"resourceExpiredHour": 24,
			"scene":               0,
		},
	})
	if err != nil {
		return nil, err
	}

	resourceID, _ := resource["resourceId"].(string)
	if resourceID == "" {
		return nil, fmt.Errorf("cloud recording acquire returned no resource id")
	}

	if recordingConfig == nil {
		recordingConfig = map[string]interface{}{}
	}

	log.Printf("🎥 Starting cloud recording (channel: %s, uid: %s)", channelName, uid)
	startURL := fmt.Sprintf("%s/v1/apps/%s/cloud_recording/resourceid/%s/mode/mix/start", s.baseURL, s.appID, resourceID)
	return s.postJSON(ctx, startURL, map[string]interface{}{
		"cname":         channelName,
		"uid":           uid,
		"clientRequest": recordingConfig,
	})
}

func (s *AgoraService) postJSON(ctx context.Context, url string, payload interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	return s.doJSON(req)
}

func (s *AgoraService) doJSON(req *http.Request) (map[string]interface{}, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agora request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agora response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("❌ Agora API error: %d - %s", resp.StatusCode, string(respBody))
		return nil, &APIError{
			Vendor:     "Agora",
			StatusCode: resp.StatusCode,
			Details:    string(respBody),
		}
	}

	result := map[string]interface{}{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse agora response: %w", err)
		}
	}
	return result, nil
}

func (s *AgoraService) setHeaders(req *http.Request) {
	auth := base64.StdEncoding.EncodeToString([]byte(s.apiKey + ":" + s.apiSecret))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+auth)
}
