package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AgoraIO-Community/SFTechWeek-2025-Hackathon/internal/tools"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// maxHistoryMessages bounds the retained conversation; oldest messages
// are trimmed first.
const maxHistoryMessages = 100

const systemPrompt = `You are Luna, a friendly and efficient personal productivity assistant.
You help users manage their todo lists and reminders through natural conversation.

Your capabilities include:
- Creating todos with title, description, priority (low/medium/high/urgent), and due dates
- Listing and searching todos
- Completing and updating todos
- Deleting todos
- Creating reminders with text, importance (low/medium/high/urgent), and dates
- Listing reminders
- Deleting reminders

When users ask you to create todos or reminders:
- Always ask for clarification if important details are missing
- Make reasonable assumptions for priority/importance if not specified (default to medium)
- For due dates, if not specified, default to today
- Be conversational and natural in your responses
- Keep responses brief since they will be read aloud

Guidelines:
- Shopping tasks: typically medium priority
- Work/urgent tasks: typically high priority
- Personal/hobby tasks: typically low priority
- If user says "today" or "now", use current date/time
- Always confirm actions after completing them

When listing todos or reminders, present them in a clear, easy-to-understand format.`

// AgentService is the tool-calling conversation loop. It owns the
// conversation history and executes whichever tools the LLM selects
// against the registry, then asks the LLM for a final spoken reply.
type AgentService struct {
	client   *openai.Client
	model    string
	registry *tools.Registry

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

// NewAgentService creates an agent backed by Groq's OpenAI-compatible API
func NewAgentService(apiKey, model string, registry *tools.Registry) *AgentService {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return NewAgentServiceWithClient(openai.NewClientWithConfig(cfg), model, registry)
}

// NewAgentServiceWithClient creates an agent with a caller-supplied client
func NewAgentServiceWithClient(client *openai.Client, model string, registry *tools.Registry) *AgentService {
	return &AgentService{
		client:   client,
		model:    model,
		registry: registry,
	}
}

// Chat processes one user message and returns the assistant's reply.
// Tool calls the LLM makes are executed before the final reply is
// produced; tool failures become tool-result strings, never errors.
func (s *AgentService) Chat(ctx context.Context, userMessage string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendMessage(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    s.promptMessages(),
		Tools:       s.toolDefinitions(),
		ToolChoice:  "auto",
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	message := resp.Choices[0].Message

	// Tool calls with names outside the registry are dropped entirely:
	// not executed, and not part of the recorded exchange.
	var known []openai.ToolCall
	for _, call := range message.ToolCalls {
		if _, ok := s.registry.Get(call.Function.Name); ok {
			known = append(known, call)
		} else {
			log.Printf("⚠️ [AGENT] Ignoring unknown tool call: %s", call.Function.Name)
		}
	}

	assistantReply := message.Content

	if len(known) > 0 {
		s.appendMessage(openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   message.Content,
			ToolCalls: known,
		})

		for _, call := range known {
			result := s.executeToolCall(ctx, call)
			s.appendMessage(openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}

		// Second pass without the tool menu produces the spoken reply
		final, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.model,
			Messages:    s.promptMessages(),
			MaxTokens:   1000,
			Temperature: 0.7,
		})
		if err != nil {
			return "", fmt.Errorf("follow-up completion failed: %w", err)
		}
		if len(final.Choices) == 0 {
			return "", fmt.Errorf("follow-up completion returned no choices")
		}
		assistantReply = final.Choices[0].Message.Content
	}

	s.appendMessage(openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: assistantReply,
	})

	return assistantReply, nil
}

// executeToolCall runs one tool and always returns a human-readable
// result string for the tool message.
func (s *AgentService) executeToolCall(ctx context.Context, call openai.ToolCall) string {
	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			log.Printf("❌ [AGENT] Bad arguments for %s: %v", call.Function.Name, err)
			return fmt.Sprintf("Error: invalid arguments for %s", call.Function.Name)
		}
	}

	log.Printf("🔧 [AGENT] Executing tool: %s", call.Function.Name)
	result, err := s.registry.Execute(ctx, call.Function.Name, args)
	if err != nil {
		return fmt.Sprintf("Error executing %s: %v", call.Function.Name, err)
	}
	return result
}

// Reset clears the conversation history
func (s *AgentService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// HistoryLength returns the number of retained messages
func (s *AgentService) HistoryLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *AgentService) appendMessage(msg openai.ChatCompletionMessage) {
	s.history = append(s.history, msg)
	if len(s.history) <= maxHistoryMessages {
		return
	}

	start := len(s.history) - maxHistoryMessages
	// A tool result must not outlive the assistant message that carries
	// its tool call; a transcript opening with orphaned tool messages is
	// rejected by the API.
	for start < len(s.history) && s.history[start].Role == openai.ChatMessageRoleTool {
		start++
	}
	s.history = s.history[start:]
}

// promptMessages builds the system instruction plus full history
func (s *AgentService) promptMessages() []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(s.history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	return append(messages, s.history...)
}

func (s *AgentService) toolDefinitions() []openai.Tool {
	defs := make([]openai.Tool, 0, s.registry.Count())
	for _, def := range s.registry.List() {
		fn := def["function"].(map[string]interface{})
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        fn["name"].(string),
				Description: fn["description"].(string),
				Parameters:  fn["parameters"],
			},
		})
	}
	return defs
}
