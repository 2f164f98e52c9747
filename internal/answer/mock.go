package answer

import (
	"context"
	"fmt"
	"log/slog"
)

// Mock is a deterministic answer provider used when no backend is configured
// or reachable. It always succeeds and embeds the profession and question
// verbatim in a fixed template.
type Mock struct {
	log *slog.Logger
}

// NewMock creates a mock provider.
func NewMock(log *slog.Logger) *Mock {
	return &Mock{log: log.With("component", "mock_answer")}
}

// Ask returns the fixed-template response.
func (m *Mock) Ask(ctx context.Context, profession, description, question string) (string, error) {
	m.log.InfoContext(ctx, "Mock answer requested", "profession", profession)

	return fmt.Sprintf(
		"For more functionality purchase Pro plan\n\n"+
			"💼 Profession: %s\n"+
			"📝 Question: %s\n\n"+
			"Note: This is a mock response. To unlock AI-powered insights, "+
			"upgrade to Pro plan with Gemini integration.",
		profession, question), nil
}
