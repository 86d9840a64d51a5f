package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	"github.com/alpacachat/alpaca/backend/internal/model/persona"
	"github.com/alpacachat/alpaca/backend/internal/provider/groq"
)

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

type countingCounter struct {
	calls int
}

func (c *countingCounter) Count(messages []*schema.Message) int {
	c.calls++
	return 1_000_000
}

func defaultPersona() persona.Persona {
	return persona.Seed()[0]
}

func newTestService(t *testing.T, fake *fakeChatModel, opts Options) *Service {
	t.Helper()
	if opts.Persona.ID == "" {
		opts.Persona = defaultPersona()
	}
	svc, err := NewService(context.Background(), fake, opts)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	return svc
}

func TestSystemPromptUsesPersonaNames(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{}, Options{})

	want := "You are a chill chat assistant from the hood created by Pramit Acharjya. This chatbot is called Alpaca."
	if got := svc.SystemPrompt(); got != want {
		t.Fatalf("unexpected system prompt:\n got %q\nwant %q", got, want)
	}
}

func TestBuildSystemPromptFallsBackForUnknownPersona(t *testing.T) {
	pm := NewPersonaPromptManager()
	got := pm.BuildSystemPrompt(persona.Persona{ID: "other", Creator: "Ada", Product: "Bot"})

	if !strings.Contains(got, "created by Ada") || !strings.Contains(got, "called Bot") {
		t.Fatalf("unexpected fallback prompt: %q", got)
	}
}

func TestRespondSendsSystemPlusTranscript(t *testing.T) {
	fake := &fakeChatModel{reply: "all good fam"}
	svc := newTestService(t, fake, Options{})

	turns := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi", Timestamp: "2024-01-01 00:00:00"},
		{Role: chat.RoleAssistant, Content: "hey", Timestamp: "2024-01-01 00:00:01"},
		{Role: chat.RoleUser, Content: "how are you", Timestamp: "2024-01-01 00:00:02"},
	}

	reply, err := svc.Respond(context.Background(), turns)
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if reply != "all good fam" {
		t.Fatalf("unexpected reply: %q", reply)
	}

	if len(fake.received) != len(turns)+1 {
		t.Fatalf("expected %d messages, got %d", len(turns)+1, len(fake.received))
	}
	if fake.received[0].Role != schema.System || fake.received[0].Content != svc.SystemPrompt() {
		t.Fatalf("unexpected system message: %+v", fake.received[0])
	}
	if fake.received[3].Role != schema.User || fake.received[3].Content != "how are you" {
		t.Fatalf("unexpected last message: %+v", fake.received[3])
	}
}

func TestCompleteWrapsProviderFailure(t *testing.T) {
	cause := errors.New("rate limit exceeded")
	svc := newTestService(t, &fakeChatModel{err: cause}, Options{})

	_, err := svc.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})

	var callErr *ProviderCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected ProviderCallError, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("expected underlying message in error, got %q", err.Error())
	}
}

func TestCompleteWrapsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-3", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	chatModel, err := groq.NewChatModel(groq.Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewChatModel err: %v", err)
	}
	svc, err := NewService(context.Background(), chatModel, Options{Persona: defaultPersona()})
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}

	reply, err := svc.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})

	var callErr *ProviderCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected ProviderCallError, got %v", err)
	}
	if reply != "" {
		t.Fatalf("expected no reply, got %q", reply)
	}
}

func TestCompleteReturnsContentVerbatim(t *testing.T) {
	reply := "  **markdown**\n\nwith spacing  "
	svc := newTestService(t, &fakeChatModel{reply: reply}, Options{})

	got, err := svc.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if got != reply {
		t.Fatalf("expected verbatim reply, got %q", got)
	}
}

func TestRespondChecksTokenEstimateWithoutTruncating(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	counter := &countingCounter{}
	svc := newTestService(t, fake, Options{TokenCounter: counter, TokenWarnLimit: 10})

	turns := make([]chat.Turn, 0, 50)
	for i := 0; i < 50; i++ {
		turns = append(turns, chat.Turn{Role: chat.RoleUser, Content: "message"})
	}

	if _, err := svc.Respond(context.Background(), turns); err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if counter.calls != 1 {
		t.Fatalf("expected token counter to run once, ran %d times", counter.calls)
	}
	if len(fake.received) != 51 {
		t.Fatalf("expected full history to be sent, got %d messages", len(fake.received))
	}
}

func TestNewServiceRequiresModel(t *testing.T) {
	if _, err := NewService(context.Background(), nil, Options{}); err == nil {
		t.Fatal("expected error for nil chat model")
	}
}
