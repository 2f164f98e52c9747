// Package answer provides profession question answering backed either by a
// deterministic mock or by Google's Gemini API. The backend variant never
// surfaces its own failures: any error degrades to the mock response.
package answer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/edgard/friendbook/internal/config"
)

const (
	maxDescriptionChars = 100

	systemInstruction = "You are a professional advisor. Provide helpful, concise advice."
)

// Provider answers a question about a friend's profession.
type Provider interface {
	Ask(ctx context.Context, profession, description, question string) (string, error)
}

// New selects a provider once from configuration. Provider "gemini" without
// an API key, or one whose client fails to initialize, degrades to the mock
// with a logged warning rather than an error.
func New(ctx context.Context, cfg config.AIConfig, log *slog.Logger) Provider {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.Provider != "gemini" {
		log.Info("Using mock answer provider")
		return NewMock(log)
	}

	if cfg.APIKey == "" {
		log.Warn("Gemini API key not configured, falling back to mock answer provider")
		return NewMock(log)
	}

	gem, err := NewGemini(ctx, cfg, log)
	if err != nil {
		log.Warn("Failed to initialize Gemini client, falling back to mock answer provider", "error", err)
		return NewMock(log)
	}
	return gem
}

// buildPrompt assembles a bounded prompt from the profession context. The
// description is capped so one long record cannot blow up the request.
func buildPrompt(profession, description, question string) string {
	context := profession
	if context == "" {
		context = "Unknown"
	}

	if desc := strings.TrimSpace(description); desc != "" {
		// Cap counts characters, not bytes, so multi-byte text is neither
		// over-truncated nor split mid-rune.
		if r := []rune(desc); len(r) > maxDescriptionChars {
			desc = string(r[:maxDescriptionChars])
		}
		context += fmt.Sprintf(" (%s)", desc)
	}

	return fmt.Sprintf("You are a professional advisor. Answer briefly about: %s\n\nQuestion: %s\n\nKeep response under 150 words.", context, question)
}
