package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure PromptGenerator implements the interface.
var _ driven.Generator = (*PromptGenerator)(nil)

// DefaultMaxTokens bounds generated answers when no limit is configured.
const DefaultMaxTokens = 500

// PromptGenerator answers questions by filling the tutor prompt and calling an LLM.
type PromptGenerator struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	maxTokens int
}

// NewPromptGenerator creates a generator. A nil prompt store uses the
// built-in template; maxTokens <= 0 uses DefaultMaxTokens.
func NewPromptGenerator(llm driven.LLMService, prompts driven.PromptStore, maxTokens int) *PromptGenerator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &PromptGenerator{
		llm:       llm,
		prompts:   prompts,
		maxTokens: maxTokens,
	}
}

// ModelName returns the underlying LLM's model.
func (g *PromptGenerator) ModelName() string {
	return g.llm.ModelName()
}

// Answer generates an answer grounded in documents.
func (g *PromptGenerator) Answer(ctx context.Context, question string, documents []domain.ScoredRecord) (string, error) {
	contents := make([]string, len(documents))
	for i, d := range documents {
		contents[i] = d.Content
	}

	prompt := fmt.Sprintf(g.template(), strings.Join(contents, "\n\n"), question)
	logger.Debug("Generating answer with %s (%d context chunks)", g.llm.ModelName(), len(documents))

	answer, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: g.maxTokens})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// template loads the tutor prompt, falling back to the built-in one when the
// stored template is missing or does not have exactly two %s verbs.
func (g *PromptGenerator) template() string {
	if g.prompts == nil {
		return domain.TutorAnswerTemplate
	}

	tmpl, err := g.prompts.Load(driven.PromptTutorAnswer)
	if err != nil {
		logger.Debug("Prompt %s unavailable, using default: %v", driven.PromptTutorAnswer, err)
		return domain.TutorAnswerTemplate
	}
	if strings.Count(tmpl, "%s") != 2 || strings.Count(tmpl, "%") != 2 {
		logger.Warn("Prompt %s must contain exactly two %%s placeholders; using default", driven.PromptTutorAnswer)
		return domain.TutorAnswerTemplate
	}
	return tmpl
}
