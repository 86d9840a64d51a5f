package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the fixed completion model identifier.
	DefaultModel = "llama-3.2-11b-vision-preview"
	// DefaultTemperature matches the provider's own default. The request type
	// always serializes temperature, so it has to be set explicitly.
	DefaultTemperature = 1.0
)

var (
	ErrAPIKeyRequired = errors.New("groq api key is required")
	ErrNoChoices      = errors.New("groq returned no choices")
)

// Config describes how to reach the Groq completion endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// ChatModel adapts Groq's chat completions API to eino's ChatModel interface.
type ChatModel struct {
	llm   *openai.LLM
	model string
}

var _ model.ChatModel = (*ChatModel)(nil)

// NewChatModel builds a client against the configured Groq endpoint.
func NewChatModel(cfg Config) (*ChatModel, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = DefaultModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(modelName),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}

	return &ChatModel{llm: llm, model: modelName}, nil
}

// Generate sends the full message list and returns the first choice verbatim.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	messages, err := toMessageContent(input)
	if err != nil {
		return nil, err
	}

	resp, err := m.llm.GenerateContent(ctx, messages, callOptions(m.model, opts)...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return schema.AssistantMessage(resp.Choices[0].Content, nil), nil
}

// Stream delivers the complete response as a single chunk; token streaming is not used.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is unsupported; the chat flow never uses tool calls.
func (m *ChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) == 0 {
		return nil
	}
	return fmt.Errorf("groq chat model does not support tool binding")
}

func callOptions(modelName string, opts []model.Option) []llms.CallOption {
	common := model.GetCommonOptions(&model.Options{}, opts...)

	temperature := DefaultTemperature
	if common.Temperature != nil {
		temperature = float64(*common.Temperature)
	}

	callOpts := []llms.CallOption{
		llms.WithModel(modelName),
		llms.WithTemperature(temperature),
	}
	if common.TopP != nil {
		callOpts = append(callOpts, llms.WithTopP(float64(*common.TopP)))
	}
	if common.MaxTokens != nil {
		callOpts = append(callOpts, llms.WithMaxTokens(*common.MaxTokens))
	}
	if len(common.Stop) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(common.Stop))
	}
	return callOpts
}

func toMessageContent(input []*schema.Message) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}

		var role llms.ChatMessageType
		switch msg.Role {
		case schema.System:
			role = llms.ChatMessageTypeSystem
		case schema.User:
			role = llms.ChatMessageTypeHuman
		case schema.Assistant:
			role = llms.ChatMessageTypeAI
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}

		out = append(out, llms.TextParts(role, msg.Content))
	}
	return out, nil
}
