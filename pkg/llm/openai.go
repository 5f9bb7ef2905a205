package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIHandler implements LLM on top of the chat completions API.
type OpenAIHandler struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewOpenAIHandler creates a handler; baseURL may be empty for the public endpoint.
func NewOpenAIHandler(apiKey, baseURL, model string, logger *logrus.Logger) *OpenAIHandler {
	if logger == nil {
		logger = logrus.New()
	}
	if model == "" {
		model = openai.GPT4
	}
	h := &OpenAIHandler{model: model, logger: logger}
	if apiKey == "" {
		return h
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	h.client = openai.NewClientWithConfig(cfg)
	return h
}

func (h *OpenAIHandler) Name() string { return "OpenAI" }

func (h *OpenAIHandler) Query(ctx context.Context, persona, text string) (string, error) {
	if h.client == nil {
		return "", ErrNoAPIKey
	}
	start := time.Now()
	resp, err := h.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: persona},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		h.logger.WithError(err).WithField("model", h.model).Warn("openai chat completion failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	h.logger.WithFields(logrus.Fields{
		"model":    h.model,
		"tokens":   resp.Usage.TotalTokens,
		"duration": time.Since(start),
	}).Debug("openai chat completion")
	return resp.Choices[0].Message.Content, nil
}
