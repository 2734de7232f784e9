package openrouter_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdraw/internal/naming/openrouter"
	"teamdraw/internal/services"
)

func chatReply(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestClient_TeamNames_Success(t *testing.T) {
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		chatReply(w, `["Rockets", "Owls", "Pandas"]`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "test-key", srv.URL+"/", "test-model", nil)

	names, err := client.TeamNames(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rockets", "Owls"}, names)
	assert.Equal(t, "test-model", gotReq["model"])
}

func TestClient_TeamNames_BadJSON_Retry_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			chatReply(w, "Rockets and Owls")
			return
		}
		chatReply(w, `["Rockets", "Owls"]`)
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil)

	names, err := client.TeamNames(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "expected original call plus one retry")
	assert.Equal(t, []string{"Rockets", "Owls"}, names)
}

func TestClient_TeamNames_BadJSON_Retry_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chatReply(w, "still not json")
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil)

	_, err := client.TeamNames(context.Background(), 2)
	require.ErrorIs(t, err, services.ErrNamingUnavailable)
}

func TestClient_FallbackModel(t *testing.T) {
	var models []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		models = append(models, req.Model)

		if req.Model == "primary" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		chatReply(w, "Three cheers for Ann!")
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "primary", []string{"backup"})

	text, err := client.Announce(context.Background(), "Ann", "Mug")
	require.NoError(t, err)
	assert.Equal(t, "Three cheers for Ann!", text)
	assert.Equal(t, []string{"primary", "backup"}, models)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	client := openrouter.NewClient(srv.Client(), "key", srv.URL, "model", nil)

	_, err := client.Announce(context.Background(), "Ann", "Mug")
	require.ErrorIs(t, err, services.ErrNamingUnavailable)

	_, err = client.TeamNames(context.Background(), 3)
	require.ErrorIs(t, err, services.ErrNamingUnavailable)
}
