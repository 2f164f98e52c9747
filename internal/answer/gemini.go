package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/friendbook/internal/config"
)

// Gemini answers questions through Google's Gemini API. Every failure path
// (network error, timeout, empty candidates) falls back to the mock response
// instead of returning an error; availability wins over fidelity here.
type Gemini struct {
	client      *genai.Client
	fallback    *Mock
	log         *slog.Logger
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// NewGemini creates a Gemini-backed provider.
func NewGemini(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger := log.With("component", "gemini_answer")
	logger.Info("Gemini answer provider initialized", "model", cfg.Model)

	return &Gemini{
		client:      client,
		fallback:    NewMock(log),
		log:         logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Ask queries Gemini for an answer about the profession.
func (g *Gemini) Ask(ctx context.Context, profession, description, question string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildPrompt(profession, description, question)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		MaxOutputTokens:   g.maxTokens,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}

	g.log.DebugContext(ctx, "Gemini request", "model", g.model, "profession", profession)

	resp, err := g.client.Models.GenerateContent(reqCtx, g.model, contents, cfg)
	if err != nil {
		g.log.WarnContext(ctx, "Gemini API call failed, using mock response", "error", err)
		return g.fallback.Ask(ctx, profession, description, question)
	}

	text := extractText(resp)
	if text == "" {
		g.log.WarnContext(ctx, "Gemini returned empty response, using mock response")
		return g.fallback.Ask(ctx, profession, description, question)
	}

	g.log.InfoContext(ctx, "Gemini response received", "length", len(text))
	return text, nil
}

// extractText concatenates the text parts of the first candidate. Blocked or
// empty responses yield an empty string, which the caller treats as failure.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
