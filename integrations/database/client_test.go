package database

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgError "github.com/AxelF0/whatsapp-system/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserParsesIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/validate/59171111111", r.URL.Path)
		assert.Equal(t, "processing-module", r.Header.Get("X-Source"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"valid": true,
			"data": map[string]any{
				"id":           7,
				"nombre":       "Carla",
				"cargo_nombre": "Gerente",
				"telefono":     "59171111111",
				"estado":       1,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	validation, err := client.ValidateUser(context.Background(), "59171111111")

	require.NoError(t, err)
	require.True(t, validation.Valid)
	require.NotNil(t, validation.Data)
	assert.Equal(t, 7, validation.Data.ID)
	assert.Equal(t, "gerente", validation.Data.Role())
	assert.True(t, validation.Data.Active())
}

func TestValidateSessionSendsPhonePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/validate", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "59171111111", body["phoneNumber"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"valid": true,
				"user": map[string]any{
					"id":           3,
					"nombre":       "Pedro",
					"cargo_nombre": "Agente",
					"telefono":     "59171111111",
					"estado":       1,
				},
				"session": map[string]any{"_id": "abc123"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	session, err := client.ValidateSession(context.Background(), "59171111111")

	require.NoError(t, err)
	assert.True(t, session.Success)
	assert.True(t, session.Data.Valid)
	require.NotNil(t, session.Data.User)
	assert.Equal(t, "Pedro", session.Data.User.Nombre)
	assert.Equal(t, "abc123", session.Data.Session.ID)
}

func TestConversationHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations/59170000001/59171337051", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"messages": []map[string]any{
					{"from": "59170000001", "body": "hola"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	conversation, err := client.ConversationHistory(context.Background(), "59170000001", "59171337051")

	require.NoError(t, err)
	require.NotNil(t, conversation)
	require.Len(t, conversation.Messages, 1)
	assert.Equal(t, "hola", conversation.Messages[0].Body)
}

func TestServerErrorBecomesCollaboratorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.ValidateUser(context.Background(), "59171111111")

	require.Error(t, err)
	var collabErr pkgError.CollaboratorError
	assert.ErrorAs(t, err, &collabErr)
}

func TestHealthUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	err := client.Health(context.Background())

	require.Error(t, err)
	var collabErr pkgError.CollaboratorError
	assert.ErrorAs(t, err, &collabErr)
}
