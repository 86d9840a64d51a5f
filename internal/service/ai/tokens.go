package ai

import (
	"log"

	"github.com/cloudwego/eino/schema"
	"github.com/pkoukk/tiktoken-go"
)

// perMessageOverhead approximates the role and separator tokens chat APIs add per message.
const perMessageOverhead = 4

// TokenCounter estimates the prompt size of an outbound request.
type TokenCounter interface {
	Count(messages []*schema.Message) int
}

// HeuristicCounter estimates tokens as len(text)/4.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(messages []*schema.Message) int {
	total := 0
	for _, msg := range messages {
		total += perMessageOverhead + approxTokens(msg.Content)
	}
	return total
}

func approxTokens(s string) int {
	if s == "" {
		return 0
	}
	t := len(s) / 4
	if t < 1 {
		t = 1
	}
	return t
}

// TiktokenCounter counts with the cl100k_base encoding.
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

// NewTiktokenCounter loads cl100k_base. The encoding may need to be downloaded on first use.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoder: encoder}, nil
}

func (c *TiktokenCounter) Count(messages []*schema.Message) int {
	total := 0
	for _, msg := range messages {
		total += perMessageOverhead + len(c.encoder.Encode(msg.Content, nil, nil))
	}
	return total
}

// NewTokenCounter prefers tiktoken and falls back to the heuristic when the encoding is unavailable.
func NewTokenCounter() TokenCounter {
	counter, err := NewTiktokenCounter()
	if err != nil {
		log.Printf("[ai] tiktoken unavailable, using heuristic token estimate: %v", err)
		return HeuristicCounter{}
	}
	return counter
}
