package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

func TestPromptGenerator_DefaultTemplate(t *testing.T) {
	llm := &mockLLM{answer: "answer"}
	g := NewPromptGenerator(llm, nil, 0)

	got, err := g.Answer(context.Background(), "why is the sky blue?", hits(2))
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	want := fmt.Sprintf(domain.TutorAnswerTemplate, "passage 0\n\npassage 1", "why is the sky blue?")
	assert.Equal(t, want, llm.lastPrompt)
	assert.Equal(t, DefaultMaxTokens, llm.lastOpts.MaxTokens)
	assert.Equal(t, "mock-llm", g.ModelName())
}

func TestPromptGenerator_CustomTemplate(t *testing.T) {
	llm := &mockLLM{}
	prompts := &mockPromptStore{prompts: map[string]string{
		driven.PromptTutorAnswer: "CTX[%s] Q[%s]",
	}}
	g := NewPromptGenerator(llm, prompts, 128)

	_, err := g.Answer(context.Background(), "q", hits(1))
	require.NoError(t, err)
	assert.Equal(t, "CTX[passage 0] Q[q]", llm.lastPrompt)
	assert.Equal(t, 128, llm.lastOpts.MaxTokens)
}

func TestPromptGenerator_InvalidTemplateFallsBack(t *testing.T) {
	tests := map[string]string{
		"one placeholder":    "only %s",
		"three":              "%s %s %s",
		"stray verb":         "%d %s %s",
		"missing from store": "",
	}

	for name, tmpl := range tests {
		t.Run(name, func(t *testing.T) {
			prompts := &mockPromptStore{prompts: map[string]string{}}
			if tmpl != "" {
				prompts.prompts[driven.PromptTutorAnswer] = tmpl
			}
			llm := &mockLLM{}

			_, err := NewPromptGenerator(llm, prompts, 0).Answer(context.Background(), "q", nil)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf(domain.TutorAnswerTemplate, "", "q"), llm.lastPrompt)
		})
	}
}

func TestPromptGenerator_Error(t *testing.T) {
	llmErr := errors.New("overloaded")
	_, err := NewPromptGenerator(&mockLLM{err: llmErr}, nil, 0).Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, llmErr)
}
