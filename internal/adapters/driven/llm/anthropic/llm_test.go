package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewLLMService(Config{APIKey: "sk-ant", BaseURL: srv.URL})
	require.NoError(t, err)
	return s
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	s, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
}

func TestGenerate(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 500, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "explain algebra", req.Messages[0].Content)

		fmt.Fprint(w, `{"content":[{"type":"text","text":"Algebra "},{"type":"tool_use"},{"type":"text","text":"is symbols."}]}`)
	})

	got, err := s.Generate(context.Background(), "explain algebra", driven.GenerateOptions{MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "Algebra is symbols.", got)
}

func TestGenerate_DefaultMaxTokens(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	})

	_, err := s.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.NoError(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{name: "api error", code: http.StatusBadRequest, body: `{"error":{"type":"invalid_request_error","message":"prompt too long"}}`, want: "prompt too long"},
		{name: "not json", code: http.StatusBadGateway, body: "upstream", want: "status 502"},
		{name: "no text", code: http.StatusOK, body: `{"content":[]}`, want: "no text content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				fmt.Fprint(w, tt.body)
			})
			_, err := s.Generate(context.Background(), "q", driven.GenerateOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate_Unreachable(t *testing.T) {
	s, err := NewLLMService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("x-api-key") != "sk-ant" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
