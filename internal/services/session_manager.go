package services

import (
	"context"
	"log"
	"sync"
)

// ConversationalAgentSession tracks one Conversational AI agent joined
// to a channel. Only Start talks to the vendor while inactive; every
// other operation fails fast with ErrNotActive.
type ConversationalAgentSession struct {
	agora *AgoraService

	mu          sync.Mutex
	channelName string
	agentUID    string
	active      bool
}

// NewConversationalAgentSession creates an inactive session wrapper
func NewConversationalAgentSession(agora *AgoraService) *ConversationalAgentSession {
	return &ConversationalAgentSession{agora: agora}
}

// Start joins the agent to the channel and activates the session.
// Calling Start on an already active session starts a fresh agent; the
// previous one is simply forgotten.
func (s *ConversationalAgentSession) Start(ctx context.Context, channelName, greeting string, enableAvatar bool) (map[string]interface{}, error) {
	result, err := s.agora.StartConversationalAI(ctx, channelName, greeting, enableAvatar)
	if err != nil {
		return nil, err
	}

	agentUID, _ := result["agent_uid"].(string)

	s.mu.Lock()
	s.channelName = channelName
	s.agentUID = agentUID
	s.active = true
	s.mu.Unlock()

	return result, nil
}

// Stop interrupts the agent and clears the session state
func (s *ConversationalAgentSession) Stop(ctx context.Context) (map[string]interface{}, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	agentUID := s.agentUID
	s.channelName = ""
	s.agentUID = ""
	s.active = false
	s.mu.Unlock()

	return s.agora.StopConversationalAI(ctx, agentUID)
}

// Speak makes the active agent speak text
func (s *ConversationalAgentSession) Speak(ctx context.Context, text string) (map[string]interface{}, error) {
	agentUID, err := s.activeAgent()
	if err != nil {
		return nil, err
	}
	return s.agora.AgentSpeak(ctx, agentUID, text)
}

// SendMessage relays a text message to the active agent
func (s *ConversationalAgentSession) SendMessage(ctx context.Context, message string) (map[string]interface{}, error) {
	agentUID, err := s.activeAgent()
	if err != nil {
		return nil, err
	}
	return s.agora.SendMessageToAgent(ctx, agentUID, message)
}

// Active reports whether an agent is currently joined
func (s *ConversationalAgentSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AgentUID returns the uid of the active agent, or empty
func (s *ConversationalAgentSession) AgentUID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentUID
}

func (s *ConversationalAgentSession) activeAgent() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.agentUID == "" {
		return "", ErrNotActive
	}
	return s.agentUID, nil
}

// AvatarSession tracks one HeyGen streaming avatar session with the
// same state machine as the agent wrapper
type AvatarSession struct {
	heygen *HeyGenService

	mu        sync.Mutex
	sessionID string
	avatarID  string
	active    bool
}

// NewAvatarSession creates an inactive avatar session wrapper
func NewAvatarSession(heygen *HeyGenService) *AvatarSession {
	return &AvatarSession{heygen: heygen}
}

// Start opens a streaming session and activates the wrapper
func (s *AvatarSession) Start(ctx context.Context, opts StreamingOptions) (map[string]interface{}, error) {
	result, err := s.heygen.CreateStreamingSession(ctx, opts)
	if err != nil {
		return nil, err
	}

	data, _ := result["data"].(map[string]interface{})
	sessionID, _ := data["session_id"].(string)

	s.mu.Lock()
	s.sessionID = sessionID
	s.avatarID = opts.AvatarID
	s.active = sessionID != ""
	s.mu.Unlock()

	return result, nil
}

// Speak makes the active avatar speak text
func (s *AvatarSession) Speak(ctx context.Context, text string) (map[string]interface{}, error) {
	sessionID, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	return s.heygen.Speak(ctx, sessionID, text)
}

// Stop closes the streaming session and clears state
func (s *AvatarSession) Stop(ctx context.Context) (map[string]interface{}, error) {
	s.mu.Lock()
	if !s.active || s.sessionID == "" {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	sessionID := s.sessionID
	s.sessionID = ""
	s.avatarID = ""
	s.active = false
	s.mu.Unlock()

	return s.heygen.StopStreamingSession(ctx, sessionID)
}

// ICEServers fetches the WebRTC ICE configuration for the active session
func (s *AvatarSession) ICEServers(ctx context.Context) (map[string]interface{}, error) {
	sessionID, err := s.activeSession()
	if err != nil {
		return nil, err
	}
	return s.heygen.ICEServers(ctx, sessionID)
}

// Active reports whether a streaming session is open
func (s *AvatarSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SessionID returns the vendor session id, or empty
func (s *AvatarSession) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *AvatarSession) activeSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.sessionID == "" {
		return "", ErrNotActive
	}
	return s.sessionID, nil
}

// SessionManager owns the live sessions: conversational agents keyed by
// channel name and avatar sessions keyed by the vendor session id
type SessionManager struct {
	agora  *AgoraService
	heygen *HeyGenService

	mu      sync.RWMutex
	agents  map[string]*ConversationalAgentSession
	avatars map[string]*AvatarSession
}

// NewSessionManager creates an empty session manager
func NewSessionManager(agora *AgoraService, heygen *HeyGenService) *SessionManager {
	return &SessionManager{
		agora:   agora,
		heygen:  heygen,
		agents:  make(map[string]*ConversationalAgentSession),
		avatars: make(map[string]*AvatarSession),
	}
}

// StartAgent joins a conversational agent to a channel and records the
// session under the channel name
func (m *SessionManager) StartAgent(ctx context.Context, channelName, greeting string, enableAvatar bool) (map[string]interface{}, error) {
	session := NewConversationalAgentSession(m.agora)
	result, err := session.Start(ctx, channelName, greeting, enableAvatar)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.agents[channelName] = session
	m.mu.Unlock()

	log.Printf("📋 Tracking conversational agent on channel %s", channelName)
	return result, nil
}

// Agent returns the session for a channel, or nil
func (m *SessionManager) Agent(channelName string) *ConversationalAgentSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.agents[channelName]
}

// StopAgent stops the agent on a channel and removes it. Returns nil
// and ErrNotActive when no session exists for the channel.
func (m *SessionManager) StopAgent(ctx context.Context, channelName string) (map[string]interface{}, error) {
	m.mu.Lock()
	session := m.agents[channelName]
	delete(m.agents, channelName)
	m.mu.Unlock()

	if session == nil {
		return nil, ErrNotActive
	}
	return session.Stop(ctx)
}

// StartAvatar opens a streaming avatar session and records it under
// the vendor session id
func (m *SessionManager) StartAvatar(ctx context.Context, opts StreamingOptions) (map[string]interface{}, error) {
	session := NewAvatarSession(m.heygen)
	result, err := session.Start(ctx, opts)
	if err != nil {
		return nil, err
	}

	if id := session.SessionID(); id != "" {
		m.mu.Lock()
		m.avatars[id] = session
		m.mu.Unlock()
		log.Printf("📋 Tracking avatar session %s", id)
	}
	return result, nil
}

// Avatar returns the avatar session for an id, or nil
func (m *SessionManager) Avatar(sessionID string) *AvatarSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.avatars[sessionID]
}

// StopAvatar stops an avatar session and removes it
func (m *SessionManager) StopAvatar(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	m.mu.Lock()
	session := m.avatars[sessionID]
	delete(m.avatars, sessionID)
	m.mu.Unlock()

	if session == nil {
		return nil, ErrNotActive
	}
	return session.Stop(ctx)
}
