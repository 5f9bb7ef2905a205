package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	geminiTemperature    = 0.7
	geminiCandidateCount = 1
)

// GeminiHandler implements LLM on top of the Gemini generateContent API.
type GeminiHandler struct {
	client *genai.Client
	model  string
	logger *logrus.Logger
}

// NewGeminiHandler creates a handler. Without an API key the handler is
// still usable and answers every query with ErrNoAPIKey.
func NewGeminiHandler(ctx context.Context, apiKey, baseURL, model string, logger *logrus.Logger) (*GeminiHandler, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	h := &GeminiHandler{model: model, logger: logger}
	if apiKey == "" {
		return h, nil
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	h.client = client
	return h, nil
}

func (h *GeminiHandler) Name() string { return "Gemini" }

func (h *GeminiHandler) Query(ctx context.Context, persona, text string) (string, error) {
	if h.client == nil {
		return "", ErrNoAPIKey
	}
	start := time.Now()
	resp, err := h.client.Models.GenerateContent(ctx, h.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
			Temperature:       genai.Ptr[float32](geminiTemperature),
			CandidateCount:    geminiCandidateCount,
		},
	)
	if err != nil {
		h.logger.WithError(err).WithField("model", h.model).Warn("gemini generate content failed")
		return "", err
	}
	reply := resp.Text()
	if reply == "" {
		return "", errors.New("no candidates returned")
	}
	h.logger.WithFields(logrus.Fields{
		"model":    h.model,
		"duration": time.Since(start),
	}).Debug("gemini generate content")
	return reply, nil
}
