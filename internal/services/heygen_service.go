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

const (
	heygenStreamingBaseURL = "https://api.heygen.com/v1"

	videoPollInterval = 5 * time.Second
	videoWaitBudget   = 300 * time.Second
)

// HeyGenService wraps the HeyGen avatar APIs: the v2 video generation
// endpoints and the v1 real-time streaming endpoints. All responses are
// returned decoded but otherwise unmodified so handlers can pass the
// vendor payload straight through.
type HeyGenService struct {
	apiKey   string
	avatarID string
	// baseURL covers the v2 video endpoints; streamingURL the v1
	// streaming ones, which live under a fixed path even when the
	// base is overridden.
	baseURL      string
	streamingURL string
	httpClient   *http.Client
}

// NewHeyGenService creates a HeyGen service. baseURL should point at
// the versioned API root, e.g. https://api.heygen.com/v2.
func NewHeyGenService(apiKey, avatarID, baseURL string) *HeyGenService {
	return &HeyGenService{
		apiKey:       apiKey,
		avatarID:     avatarID,
		baseURL:      baseURL,
		streamingURL: heygenStreamingBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ListAvatars lists the avatars available to the account
func (s *HeyGenService) ListAvatars(ctx context.Context) ([]map[string]interface{}, error) {
	result, err := s.getJSON(ctx, s.baseURL+"/avatars")
	if err != nil {
		return nil, err
	}
	return extractDataList(result, "avatars"), nil
}

// ListVoices lists the voices available for avatar videos
func (s *HeyGenService) ListVoices(ctx context.Context) ([]map[string]interface{}, error) {
	result, err := s.getJSON(ctx, s.baseURL+"/voices")
	if err != nil {
		return nil, err
	}
	return extractDataList(result, "voices"), nil
}

// VideoOptions customizes avatar video generation
type VideoOptions struct {
	AvatarID        string
	VoiceID         string
	BackgroundColor string
	AspectRatio     string
	Title           string
}

// CreateVideo submits a video generation job where the avatar speaks
// the script. Returns the vendor response containing the video id.
func (s *HeyGenService) CreateVideo(ctx context.Context, script string, opts VideoOptions) (map[string]interface{}, error) {
	avatarID := opts.AvatarID
	if avatarID == "" {
		avatarID = s.avatarID
	}
	background := opts.BackgroundColor
	if background == "" {
		background = "#FFFFFF"
	}
	aspect := opts.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}

	width, height := 1920, 1080
	switch aspect {
	case "1:1":
		width, height = 1080, 1080
	case "9:16":
		width, height = 1080, 1920
	}

	voice := map[string]interface{}{
		"type":       "text",
		"input_text": script,
	}
	if opts.VoiceID != "" {
		voice["voice_id"] = opts.VoiceID
	}

	payload := map[string]interface{}{
		"video_inputs": []map[string]interface{}{
			{
				"character": map[string]interface{}{
					"type":         "avatar",
					"avatar_id":    avatarID,
					"avatar_style": "normal",
				},
				"voice": voice,
			},
		},
		"dimension": map[string]interface{}{
			"width":  width,
			"height": height,
		},
		"background_color": background,
		"aspect_ratio":     aspect,
	}
	if opts.Title != "" {
		payload["title"] = opts.Title
	}

	log.Printf("🎬 Creating HeyGen video (avatar: %s, aspect: %s)", avatarID, aspect)
	return s.postJSON(ctx, s.baseURL+"/video/generate", payload)
}

// GetVideoStatus fetches the status of a video generation job
func (s *HeyGenService) GetVideoStatus(ctx context.Context, videoID string) (map[string]interface{}, error) {
	return s.getJSON(ctx, fmt.Sprintf("%s/video/status/%s", s.baseURL, videoID))
}

// WaitForVideo polls until the video completes, fails or the wait
// budget runs out. Context cancellation aborts the wait early.
func (s *HeyGenService) WaitForVideo(ctx context.Context, videoID string) (map[string]interface{}, error) {
	deadline := time.Now().Add(videoWaitBudget)
	ticker := time.NewTicker(videoPollInterval)
	defer ticker.Stop()

	for {
		status, err := s.GetVideoStatus(ctx, videoID)
		if err != nil {
			return nil, err
		}

		switch videoState(status) {
		case "completed":
			log.Printf("✅ HeyGen video %s completed", videoID)
			return status, nil
		case "failed":
			return status, fmt.Errorf("video generation failed")
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("video generation timed out")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func videoState(status map[string]interface{}) string {
	data, _ := status["data"].(map[string]interface{})
	state, _ := data["status"].(string)
	return state
}

// StreamingOptions customizes a real-time avatar session
type StreamingOptions struct {
	AvatarID string
	VoiceID  string
	Quality  string
}

// CreateStreamingSession opens a new real-time avatar session. The
// avatar id is only sent when one is actually configured; HeyGen picks
// a default otherwise.
func (s *HeyGenService) CreateStreamingSession(ctx context.Context, opts StreamingOptions) (map[string]interface{}, error) {
	avatarID := opts.AvatarID
	if avatarID == "" {
		avatarID = s.avatarID
	}
	quality := opts.Quality
	if quality == "" {
		quality = "low"
	}

	payload := map[string]interface{}{"quality": quality}
	if avatarID != "" && avatarID != "your-avatar-id" {
		payload["avatar_id"] = avatarID
	}
	if opts.VoiceID != "" {
		payload["voice_id"] = opts.VoiceID
	}

	log.Printf("🎬 Creating HeyGen streaming session (quality: %s)", quality)
	result, err := s.postJSON(ctx, s.streamingURL+"/streaming.new", payload)
	if err != nil {
		return nil, err
	}
	log.Println("✅ HeyGen streaming session created successfully")
	return result, nil
}

// Speak submits a talk task to a streaming session
func (s *HeyGenService) Speak(ctx context.Context, sessionID, text string) (map[string]interface{}, error) {
	return s.postJSON(ctx, s.streamingURL+"/streaming.task", map[string]interface{}{
		"session_id": sessionID,
		"text":       text,
		"task_type":  "talk",
	})
}

// StopStreamingSession closes a streaming session
func (s *HeyGenService) StopStreamingSession(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	return s.postJSON(ctx, s.streamingURL+"/streaming.stop", map[string]interface{}{
		"session_id": sessionID,
	})
}

// ICEServers fetches the WebRTC ICE configuration for a session
func (s *HeyGenService) ICEServers(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	return s.postJSON(ctx, s.streamingURL+"/streaming.ice", map[string]interface{}{
		"session_id": sessionID,
	})
}

// StartStreaming completes the WebRTC handshake by handing the client's
// SDP answer to the session
func (s *HeyGenService) StartStreaming(ctx context.Context, sessionID string, sdp map[string]interface{}) (map[string]interface{}, error) {
	return s.postJSON(ctx, s.streamingURL+"/streaming.start", map[string]interface{}{
		"session_id": sessionID,
		"sdp":        sdp,
	})
}

func (s *HeyGenService) postJSON(ctx context.Context, url string, payload interface{}) (map[string]interface{}, error) {
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

func (s *HeyGenService) getJSON(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	return s.doJSON(req)
}

func (s *HeyGenService) doJSON(req *http.Request) (map[string]interface{}, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("heygen request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read heygen response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("❌ HeyGen API error: %d - %s", resp.StatusCode, string(respBody))
		return nil, &APIError{
			Vendor:     "HeyGen",
			StatusCode: resp.StatusCode,
			Details:    string(respBody),
			Hint:       heygenHint(resp.StatusCode),
		}
	}

	result := map[string]interface{}{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return nil, fmt.Errorf("failed to parse heygen response: %w", err)
		}
	}
	return result, nil
}

// heygenHint maps common failure codes to actionable guidance for the
// API caller
func heygenHint(statusCode int) string {
	switch statusCode {
	case http.StatusNotFound:
		return "The video avatar feature may require a HeyGen Enterprise account. You can use voice chat instead."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Check your HEYGEN_API_KEY and make sure your account has access to the Streaming API feature."
	case http.StatusTooManyRequests:
		return "HeyGen API rate limit exceeded. Please wait and try again."
	}
	return ""
}

func (s *HeyGenService) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)
}

// extractDataList pulls data.<key> out of a vendor response as a list
// of objects, tolerating absent or oddly-shaped payloads
func extractDataList(result map[string]interface{}, key string) []map[string]interface{} {
	data, _ := result["data"].(map[string]interface{})
	raw, _ := data[key].([]interface{})
	items := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items
}
