package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ============ TESTES DO CLIENTE ============

// TestStreamWithoutKey - Sem chave o erro volta antes de qualquer requisição
func TestStreamWithoutKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, nil)

	_, err := c.Stream(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, c.Configured())
}

// TestStreamGatewayStatus - Status não-2xx vira GatewayError com o código
func TestStreamGatewayStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"limite"}`))
		}))

		c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, nil)
		_, err := c.Stream(context.Background(), ChatRequest{})

		var gwErr *GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, status, gwErr.StatusCode)
		srv.Close()
	}
}

// TestStreamRequestShape - Requisição leva modelo padrão, stream e bearer
func TestStreamRequestShape(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Model: "m1"}, nil)
	s, err := c.Stream(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "oi"}}})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, got.Stream)
	assert.Equal(t, "m1", got.Model)
	require.Len(t, got.Messages, 1)
}

// TestComplete - Completion devolve texto e tool calls
func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Pronto!  ","tool_calls":[{"id":"c1","type":"function","function":{"name":"add_note","arguments":"{\"content\":\"x\"}"}}]},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, nil)
	out, err := c.Complete(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Pronto!", out.Content)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "add_note", out.ToolCalls[0].Function.Name)
	assert.Equal(t, "stop", out.FinishReason)
}

// TestCompleteNoChoices - Resposta sem choices é erro
func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, nil)
	_, err := c.Complete(context.Background(), ChatRequest{})
	assert.Error(t, err)
}

// TestLogsDefaultModel - Requisição sem modelo loga o modelo padrão efetivamente enviado
func TestLogsDefaultModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "text/event-stream" {
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte("data: [DONE]\n\n"))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Model: "gemini-padrao"}, zap.New(core))

	_, err := c.Complete(context.Background(), ChatRequest{})
	require.NoError(t, err)
	s, err := c.Stream(context.Background(), ChatRequest{})
	require.NoError(t, err)
	s.Close()

	for _, msg := range []string{"completion concluída", "streaming iniciado"} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, "gemini-padrao", entries[0].ContextMap()["model"], msg)
	}
}

// ============ TESTES DO STREAM ============

// TestStreamAssemblesToolCalls - Deltas de tool call são montados por índice
func TestStreamAssemblesToolCalls(t *testing.T) {
	body := strings.Join([]string{
		`: keep-alive`,
		`data: {"choices":[{"delta":{"role":"assistant","content":"Vou "}}]}`,
		`data: {"choices":[{"delta":{"content":"anotar."}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":1,"id":"b","function":{"name":"add_note","arguments":"{\"content\""}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"a","function":{"name":"create_lead","arguments":"{\"name\":"}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Ana\"}"}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":1,"function":{"arguments":":\"x\"}"}}]}}]}`,
		`data: [DONE]`,
		``,
	}, "\n")

	s := NewStream(io.NopCloser(strings.NewReader(body)))
	var events []StreamEvent
	for {
		ev, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		events = append(events, ev)
	}

	require.Len(t, events, 4)
	assert.Equal(t, StreamEvent{Type: EventContent, Content: "Vou "}, events[0])
	assert.Equal(t, "anotar.", events[1].Content)

	assert.Equal(t, EventToolCall, events[2].Type)
	assert.Equal(t, "a", events[2].ToolCall.ID)
	assert.Equal(t, "create_lead", events[2].ToolCall.Function.Name)
	assert.JSONEq(t, `{"name":"Ana"}`, events[2].ToolCall.Function.Arguments)

	assert.Equal(t, "add_note", events[3].ToolCall.Function.Name)
	assert.JSONEq(t, `{"content":"x"}`, events[3].ToolCall.Function.Arguments)
}

// TestStreamWithoutDone - Fim do corpo sem [DONE] também encerra
func TestStreamWithoutDone(t *testing.T) {
	s := NewStream(io.NopCloser(strings.NewReader(`data: {"choices":[{"delta":{"content":"oi"}}]}` + "\n")))

	ev, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "oi", ev.Content)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

// TestStreamErrorChunk - Chunk de erro interrompe o stream
func TestStreamErrorChunk(t *testing.T) {
	s := NewStream(io.NopCloser(strings.NewReader(`data: {"error":{"message":"quota"}}` + "\n")))

	_, err := s.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}
