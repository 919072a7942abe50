package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalizePhone - Telefones viram dígitos com DDI
func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "5511999999999", NormalizePhone("(11) 99999-9999"))
	assert.Equal(t, "5511999999999", NormalizePhone("+55 11 99999-9999"))
	assert.Equal(t, "551133334444", NormalizePhone("11 3333-4444"))
	assert.Equal(t, "", NormalizePhone("9999"))
}

// TestSendReminderNotConfigured - Sem token não há requisição
func TestSendReminderNotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	err := c.SendReminder(context.Background(), "11999999999", "Ana", "ligar", "amanhã")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// TestSendReminderPayload - Template de lembrete com os três parâmetros
func TestSendReminderPayload(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/phone-1/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{AccessToken: "tok", PhoneID: "phone-1", BaseURL: srv.URL}, nil)
	err := c.SendReminder(context.Background(), "(11) 99999-9999", "Ana", "ligar", "20/10/2026 às 10:00")
	require.NoError(t, err)

	assert.Equal(t, "5511999999999", payload["to"])
	tpl := payload["template"].(map[string]any)
	assert.Equal(t, "lembrete_concierge", tpl["name"])
	params := tpl["components"].([]any)[0].(map[string]any)["parameters"].([]any)
	require.Len(t, params, 3)
	assert.Equal(t, "ligar", params[1].(map[string]any)["text"])
}

// TestSendMessageAPIError - Erro da Graph API é propagado
func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"template inexistente","code":132001}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{AccessToken: "tok", PhoneID: "p", BaseURL: srv.URL}, nil)
	err := c.SendReminder(context.Background(), "11999999999", "Ana", "ligar", "hoje")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template inexistente")
}
