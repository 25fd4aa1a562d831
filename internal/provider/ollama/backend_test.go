package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodocai/repodoc/internal/config"
	"github.com/repodocai/repodoc/internal/provider"
)

func backendFor(url string) *Backend {
	return New(config.BackendConfig{
		Provider:          "ollama",
		BaseURL:           url,
		Model:             "test-model",
		CallTimeout:       5 * time.Second,
		RequestsPerSecond: 100,
		Accelerated:       true,
	})
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{
			Response:     "generated text",
			EvalCount:    200,
			EvalDuration: int64(2 * time.Second),
			Done:         true,
		})
	}))
	defer srv.Close()

	res, err := backendFor(srv.URL).Generate(context.Background(), provider.GenerationRequest{
		Prompt: "describe the repo",
		System: "you are a doc writer",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated text", res.Text)
	assert.Equal(t, 200, res.TokensEvaluated)
	assert.Equal(t, 100.0, res.TokensPerSecond())
	assert.True(t, res.Accelerated)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "describe the repo", got.Prompt)
	assert.Equal(t, "you are a doc writer", got.System)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.3, got.Options.Temperature)
	assert.Equal(t, 0.9, got.Options.TopP)
	assert.Equal(t, 4096, got.Options.NumPredict)
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := backendFor(srv.URL).Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, provider.Retryable(err))
}

func TestGenerateBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown model", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := backendFor(srv.URL).Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.False(t, provider.Retryable(err))
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := backendFor(srv.URL).Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, provider.Retryable(err))
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server can observe the client
		// disconnect and cancel the request context.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	b := backendFor(srv.URL)
	b.callTimeout = 50 * time.Millisecond

	_, err := b.Generate(context.Background(), provider.GenerationRequest{Prompt: "x"})
	require.Error(t, err)

	var be *provider.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, provider.KindTimeout, be.Kind)
	assert.True(t, provider.Retryable(err))
}

func TestGenerateCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := backendFor(srv.URL).Generate(ctx, provider.GenerationRequest{Prompt: "x"})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.False(t, provider.Retryable(err))
}

func TestCheckHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "deepseek-coder:6.7b"},
				{"name": "llama3:8b"},
			},
		})
	}))
	defer srv.Close()

	h, err := backendFor(srv.URL).CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, []string{"deepseek-coder:6.7b", "llama3:8b"}, h.Models)
}

func TestCheckHealthOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	h, err := backendFor(srv.URL).CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "offline", h.Status)
	assert.NotEmpty(t, h.Message)
}

func TestFactoryRegistration(t *testing.T) {
	b, err := provider.New(config.BackendConfig{Provider: "ollama", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &Backend{}, b)
}
