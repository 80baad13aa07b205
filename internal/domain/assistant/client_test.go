package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete_ChoicesShape(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hola"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini", MaxTokens: 500})
	got, err := c.Complete(context.Background(), "sistema", "usuario")
	require.NoError(t, err)

	assert.Equal(t, "hola", got)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	assert.Equal(t, 500, gotBody.MaxTokens)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "sistema", gotBody.Messages[0].Content)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
}

func TestClient_Complete_ContentBlocksShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"respuesta en bloques"}]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test"})
	got, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "respuesta en bloques", got)
}

func TestClient_Complete_PlainStringShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":"respuesta plana"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test"})
	got, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "respuesta plana", got)
}

func TestClient_Complete_ChoicesPreferredOverContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"primera"}}],"content":"segunda"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test"})
	got, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "primera", got)
}

func TestClient_Complete_MissingAPIKey(t *testing.T) {
	c := NewClient(ClientConfig{APIURL: "http://unused"})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrAPIKeyNotConfigured)
}

func TestClient_Complete_DevProxySkipsAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	// No key configured at all: the proxy injects its own.
	c := NewClient(ClientConfig{APIURL: srv.URL, DevProxy: true})
	_, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"insufficient balance"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test"})
	_, err := c.Complete(context.Background(), "s", "u")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "insufficient balance")
}

func TestClient_Complete_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, APIKey: "sk-test"})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
