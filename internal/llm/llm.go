package llm

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("llm unavailable")
	ErrGeneration  = errors.New("llm generation failed")
)

const (
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.55
)

type MessageInput struct {
	SystemPrompt string
	Text         string
	MaxTokens    int
	Temperature  float64
}

// Generator produces raw reply text for a system prompt and a user message.
// Implementations wrap backend failures, including empty content, in ErrGeneration.
type Generator interface {
	Reply(ctx context.Context, input MessageInput) (string, error)
}

// Sampling returns the token budget and temperature to send, applying defaults to zero values.
func (input MessageInput) Sampling() (int, float64) {
	maxTokens := input.MaxTokens
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokens
	}
	temperature := input.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return maxTokens, temperature
}
