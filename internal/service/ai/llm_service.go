package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	"github.com/alpacachat/alpaca/backend/internal/model/persona"
)

var errEmptyResponse = errors.New("provider returned an empty response")

// ProviderCallError is the single error kind for any failed completion call.
type ProviderCallError struct {
	Err error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("Error in completion API call: %v", e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// Options tunes the AI service.
type Options struct {
	Persona persona.Persona
	// TokenCounter defaults to HeuristicCounter.
	TokenCounter TokenCounter
	// TokenWarnLimit logs a warning when a request is estimated above it. Zero disables the check.
	TokenWarnLimit int
}

// Service encapsulates AI-powered chat functionality
type Service struct {
	persona      persona.Persona
	systemPrompt string
	counter      TokenCounter
	warnLimit    int
	chain        compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewService creates a new AI service instance
func NewService(ctx context.Context, chatModel model.ChatModel, opts Options) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	counter := opts.TokenCounter
	if counter == nil {
		counter = HeuristicCounter{}
	}

	return &Service{
		persona:      opts.Persona,
		systemPrompt: NewPersonaPromptManager().BuildSystemPrompt(opts.Persona),
		counter:      counter,
		warnLimit:    opts.TokenWarnLimit,
		chain:        runnable,
	}, nil
}

// SystemPrompt returns the rendered system message for the configured persona.
func (s *Service) SystemPrompt() string {
	return s.systemPrompt
}

// Respond builds the request for the full transcript and returns the assistant's reply.
func (s *Service) Respond(ctx context.Context, turns []chat.Turn) (string, error) {
	messages, err := BuildRequest(ctx, s.systemPrompt, turns)
	if err != nil {
		return "", err
	}

	if s.warnLimit > 0 {
		if estimate := s.counter.Count(messages); estimate > s.warnLimit {
			log.Printf("[ai] request for persona=%s is ~%d tokens (limit %d); full history is still sent", s.persona.ID, estimate, s.warnLimit)
		}
	}

	return s.Complete(ctx, messages)
}

// Complete sends messages to the provider and returns the first completion verbatim.
func (s *Service) Complete(ctx context.Context, messages []*schema.Message) (string, error) {
	response, err := s.chain.Invoke(ctx, messages)
	if err != nil {
		log.Printf("[ai] completion call failed: %v", err)
		return "", &ProviderCallError{Err: err}
	}
	if response == nil {
		return "", &ProviderCallError{Err: errEmptyResponse}
	}

	log.Printf("[ai] generated response persona=%s, messages=%d, length=%d", s.persona.ID, len(messages), len(response.Content))
	return response.Content, nil
}
